// Package otel binds engine counters to OpenTelemetry observable
// instruments. One callback reads a metrics snapshot per collection cycle;
// the caller owns the MeterProvider.
package otel

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/metric"

	ward "github.com/davengard/ward"
	"github.com/davengard/ward/metrics/export/internaldefs"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() ward.MetricsSnapshot
	AuditDropped() uint64
}

// Exporter holds the instrument registration. Close unregisters it.
type Exporter struct {
	source      metricsSource
	unregister  metric.Registration
	instruments map[ward.MetricID]metric.Int64ObservableCounter
	drops       metric.Int64ObservableCounter
}

// New registers observable counters for every engine metric on meter.
func New(meter metric.Meter, engine *ward.Engine) (*Exporter, error) {
	return NewFromSource(meter, engine)
}

func NewFromSource(meter metric.Meter, source metricsSource) (*Exporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &Exporter{
		source:      source,
		instruments: make(map[ward.MetricID]metric.Int64ObservableCounter, len(internaldefs.CounterDefs)),
	}

	newCounter := func(name, help string) (metric.Int64ObservableCounter, error) {
		ins, err := meter.Int64ObservableCounter(name, metric.WithDescription(help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", name, err)
		}
		return ins, nil
	}

	all := make([]metric.Observable, 0, len(internaldefs.CounterDefs)+1)
	for _, def := range internaldefs.CounterDefs {
		ins, err := newCounter(def.Name, def.Help)
		if err != nil {
			return nil, err
		}
		e.instruments[def.ID] = ins
		all = append(all, ins)
	}

	drops, err := newCounter("ward_audit_dropped_total", "Audit events dropped by dispatcher backpressure.")
	if err != nil {
		return nil, err
	}
	e.drops = drops
	all = append(all, drops)

	e.unregister, err = meter.RegisterCallback(e.observe, all...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	return e, nil
}

func (e *Exporter) observe(_ context.Context, o metric.Observer) error {
	snap := e.source.MetricsSnapshot()
	for id, ins := range e.instruments {
		o.ObserveInt64(ins, int64(snap.Counters[id]))
	}
	o.ObserveInt64(e.drops, int64(e.source.AuditDropped()))
	return nil
}

func (e *Exporter) Close() error {
	if e == nil || e.unregister == nil {
		return nil
	}
	return e.unregister.Unregister()
}
