package ward

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/davengard/ward/session"
	"github.com/davengard/ward/token"
)

// Engine is the authentication orchestrator. It owns no durable or
// per-request state: accounts live in the [AccountStore], session claims
// behind the caller's [session.Handle], and token validity inside the
// registered providers. Configure an Engine through [Builder.Build] and
// treat it as immutable afterwards.
type Engine struct {
	config   Config
	store    AccountStore
	hasher   Hasher
	mailer   Mailer
	registry *token.Registry
	audit    *auditDispatcher
	metrics  *Metrics
	logger   *zap.Logger
}

// Close stops the audit dispatcher, draining buffered events.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// Registry exposes the token provider registry so hosts can register
// additional kinds at startup.
func (e *Engine) Registry() *token.Registry {
	if e == nil {
		return nil
	}
	return e.registry
}

// AuditDropped reports how many audit events were dropped by a full buffer.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot copies the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, accountID int64, cause error, meta func() map[string]string) {
	if e == nil || e.audit == nil {
		return
	}
	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		AccountID: accountID,
		Success:   success,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	if meta != nil {
		event.Metadata = meta()
	}
	e.audit.Emit(ctx, event)
}

func (e *Engine) ready() error {
	if e == nil || e.store == nil || e.hasher == nil || e.registry == nil || e.mailer == nil {
		return ErrEngineNotReady
	}
	return nil
}

func claimsFor(a *Account, persistent bool) session.Claims {
	return session.Claims{AccountID: a.ID, Persistent: persistent}
}

func tokenSubject(a *Account) token.Subject {
	return token.Subject{AccountID: a.ID, Stamp: a.Stamp}
}

// composeMail substitutes placeholders and hands the message to the mailer.
// Token and email values are URL-escaped before substitution so templates
// can inline them into query strings.
func (e *Engine) composeMail(ctx context.Context, tpl MailTemplate, to string, repl map[string]string) error {
	pairs := make([]string, 0, len(repl)*2)
	for key, value := range repl {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	r := strings.NewReplacer(pairs...)

	msg := Message{
		To:      to,
		Subject: tpl.Subject,
		HTML:    r.Replace(tpl.HTML),
		Text:    r.Replace(tpl.Text),
	}
	if tpl.HTML == "" {
		msg.HTML = ""
	}
	if tpl.Text == "" {
		msg.Text = ""
	}

	if err := e.mailer.Send(ctx, msg); err != nil {
		e.metricInc(MetricMailFailure)
		e.logger.Warn("mail delivery failed",
			zap.String("subject", tpl.Subject),
			zap.Error(err))
		return wrapMail(err)
	}
	e.metricInc(MetricMailSent)
	e.emitAudit(ctx, auditEventMailSent, true, 0, nil, func() map[string]string {
		return map[string]string{"subject": tpl.Subject}
	})
	return nil
}

func (e *Engine) link(path, tok, email string) string {
	return e.config.Links.BaseURL + path +
		"?token=" + url.QueryEscape(tok) +
		"&email=" + url.QueryEscape(email)
}
