package ward

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/davengard/ward/password"
	"github.com/davengard/ward/token"
)

// Builder assembles an [Engine]. Construction is allocation-only; no I/O
// happens until engine methods are called.
type Builder struct {
	config Config

	store     AccountStore
	hasher    Hasher
	mailer    Mailer
	logger    *zap.Logger
	auditSink AuditSink

	providers map[token.Kind]token.Provider

	built bool
}

// New starts a builder with default configuration.
func New() *Builder {
	return &Builder{
		config:    defaultConfig(),
		providers: make(map[token.Kind]token.Provider),
	}
}

// WithConfig replaces the whole configuration. Zero-valued sections fall
// back to defaults during Build.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore sets the account persistence collaborator. Required.
func (b *Builder) WithStore(store AccountStore) *Builder {
	b.store = store
	return b
}

// WithHasher overrides the default argon2id hasher.
func (b *Builder) WithHasher(h Hasher) *Builder {
	b.hasher = h
	return b
}

// WithMailer sets the notification collaborator. Defaults to [NopMailer].
func (b *Builder) WithMailer(m Mailer) *Builder {
	b.mailer = m
	return b
}

// WithLogger sets the structured logger. Defaults to a nop logger.
func (b *Builder) WithLogger(l *zap.Logger) *Builder {
	b.logger = l
	return b
}

// WithAuditSink sets the audit destination; audit stays disabled unless
// Config.Audit.Enabled is also set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithTokenProvider registers p under kind, overriding (or extending) the
// default registrations. Last write per kind wins.
func (b *Builder) WithTokenProvider(kind token.Kind, p token.Provider) *Builder {
	b.providers[kind] = p
	return b
}

// WithMetricsEnabled toggles the counter set.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates configuration, fills defaulted collaborators, and returns
// the ready engine. A builder can build once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	normalizeConfig(&b.config)
	if err := validateConfig(b.config); err != nil {
		return nil, err
	}
	if b.store == nil {
		return nil, errors.New("account store is required")
	}

	hasher := b.hasher
	if hasher == nil {
		var err error
		hasher, err = password.NewArgon2(password.Config{
			Memory:      b.config.Password.Memory,
			Time:        b.config.Password.Time,
			Parallelism: b.config.Password.Parallelism,
			SaltLength:  b.config.Password.SaltLength,
			KeyLength:   b.config.Password.KeyLength,
		})
		if err != nil {
			return nil, err
		}
	}

	registry, err := b.buildRegistry()
	if err != nil {
		return nil, err
	}

	mailer := b.mailer
	if mailer == nil {
		mailer = NopMailer{}
	}
	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		config:   b.config,
		store:    b.store,
		hasher:   hasher,
		mailer:   mailer,
		registry: registry,
		audit:    newAuditDispatcher(b.config.Audit, b.auditSink),
		metrics:  newMetrics(b.config.Metrics.Enabled),
		logger:   logger,
	}, nil
}

func (b *Builder) buildRegistry() (*token.Registry, error) {
	registry := token.NewRegistry()

	_, hasTotp := b.providers[token.KindTotp]
	_, hasProtect := b.providers[token.KindDataProtection]
	if len(b.config.Tokens.Secret) == 0 && (!hasTotp || !hasProtect) {
		return nil, errors.New("token secret is required unless both default provider kinds are overridden")
	}

	if !hasTotp {
		p, err := token.NewTotpProvider(b.config.Tokens.Secret, token.TotpConfig{
			Digits: b.config.Totp.Digits,
			Period: b.config.Totp.Period,
			Skew:   b.config.Totp.Skew,
		})
		if err != nil {
			return nil, err
		}
		registry.Register(token.KindTotp, p)
	}
	if !hasProtect {
		p, err := token.NewDataProtectProvider(b.config.Tokens.Secret, token.DataProtectConfig{
			TTL: maxDuration(b.config.Tokens.LinkTTL, time.Minute),
		})
		if err != nil {
			return nil, err
		}
		registry.Register(token.KindDataProtection, p)
	}

	for kind, p := range b.providers {
		registry.Register(kind, p)
	}
	return registry, nil
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
