package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/martinmn/defsched/core/metrics"
)

// PromSink records scheduling events in Prometheus metrics.
type PromSink struct {
	events   *prometheus.CounterVec
	workload *prometheus.GaugeVec
}

// NewPromSink registers scheduling metrics on the default Prometheus
// registerer.
func NewPromSink() (coremetrics.ScheduleSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.ScheduleSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "defense_schedule_events_total",
		Help: "Total number of finalized scheduling decisions",
	}, []string{"status", "tier"})
	workload := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "defense_examiner_assignments",
		Help: "Examiner-seat assignments per examiner at the end of a run",
	}, []string{"code"})

	if err := reg.Register(events); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			events = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(workload); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			workload = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	return &PromSink{events: events, workload: workload}, nil
}

// RecordScheduleEvents increments the event counter per decision.
func (s *PromSink) RecordScheduleEvents(events []coremetrics.ScheduleEvent) error {
	for _, ev := range events {
		s.events.WithLabelValues(ev.Status.String(), strconv.Itoa(ev.Tier)).Inc()
	}
	return nil
}

// RecordWorkload sets the per-examiner gauges.
func (s *PromSink) RecordWorkload(samples []coremetrics.WorkloadSample) error {
	for _, sm := range samples {
		s.workload.WithLabelValues(sm.Code).Set(float64(sm.Assignments))
	}
	return nil
}
