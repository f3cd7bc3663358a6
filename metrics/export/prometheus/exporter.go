// Package prometheus renders engine counters in Prometheus text exposition
// format. It owns no HTTP server; callers mount Handler wherever they serve
// metrics.
package prometheus

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	ward "github.com/davengard/ward"
	"github.com/davengard/ward/metrics/export/internaldefs"
)

type metricsSource interface {
	MetricsSnapshot() ward.MetricsSnapshot
	AuditDropped() uint64
}

// Exporter reads one metrics source and renders it on demand.
type Exporter struct {
	source metricsSource
}

// New creates an exporter reading from engine.
func New(engine *ward.Engine) *Exporter {
	return &Exporter{source: engine}
}

// NewFromSource creates an exporter from any snapshot source; tests use
// this to render fixed snapshots.
func NewFromSource(source metricsSource) *Exporter {
	return &Exporter{source: source}
}

// Handler serves the current render as text/plain.
func (e *Exporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_ = e.WriteTo(w)
	})
}

// WriteTo streams every counter plus the audit drop counter in exposition
// format.
func (e *Exporter) WriteTo(w io.Writer) error {
	if e == nil || e.source == nil {
		return nil
	}
	snap := e.source.MetricsSnapshot()
	for _, def := range internaldefs.CounterDefs {
		if err := emit(w, def.Name, def.Help, snap.Counters[def.ID]); err != nil {
			return err
		}
	}
	return emit(w, "ward_audit_dropped_total", "Audit events dropped by dispatcher backpressure.", e.source.AuditDropped())
}

// Render returns the exposition text as a string.
func (e *Exporter) Render() string {
	var b strings.Builder
	b.Grow(4096)
	_ = e.WriteTo(&b)
	return b.String()
}

func emit(w io.Writer, name, help string, value uint64) error {
	_, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s %d\n", name, help, name, name, value)
	return err
}
