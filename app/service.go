// Package app wires configuration, ingestion, the scheduling engine and the
// output writers into one runnable service.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/martinmn/defsched/config"
	coremetrics "github.com/martinmn/defsched/core/metrics"
	"github.com/martinmn/defsched/core/model"
	"github.com/martinmn/defsched/core/schedule"
	"github.com/martinmn/defsched/infra/logger"
	"github.com/martinmn/defsched/infra/metrics"
	"github.com/martinmn/defsched/infra/mqtt"
	"github.com/martinmn/defsched/internal/eventbus"
	"github.com/martinmn/defsched/pkg/export"
	"github.com/martinmn/defsched/pkg/ingest"
)

// Service runs one scheduling pass from input files to output tables.
type Service struct {
	cfg       *config.Config
	bus       eventbus.EventBus
	log       logger.Logger
	sink      coremetrics.ScheduleSink
	publisher *mqtt.Publisher
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	log := logger.New("service")

	sink, err := metrics.NewSink(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	var publisher *mqtt.Publisher
	if cfg.MQTT.Enabled {
		publisher, err = mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
	}

	return &Service{
		cfg:       cfg,
		bus:       eventbus.New(),
		log:       log,
		sink:      sink,
		publisher: publisher,
	}, nil
}

// Run executes one scheduling run and writes the output tables.
func (s *Service) Run(ctx context.Context) error {
	start := time.Now()
	inputStep := time.Duration(s.cfg.Schedule.InputSlotMinutes) * time.Minute
	step := time.Duration(s.cfg.Schedule.SlotMinutes) * time.Minute

	examiners, horizon, err := ingest.LoadExaminers(s.cfg.Inputs.Availability, inputStep, step)
	if err != nil {
		return fmt.Errorf("load availability: %w", err)
	}
	requests, err := ingest.LoadRequests(s.cfg.Inputs.Requests)
	if err != nil {
		return fmt.Errorf("load requests: %w", err)
	}
	s.log.Infof("loaded %d examiners, %d requests, %d slots", len(examiners), len(requests), horizon.Len())

	engine, err := schedule.NewEngine(s.cfg.Schedule, horizon, examiners, logger.New("engine"), s.bus, s.sink)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	events := s.bus.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.traceEvents(events)
	}()

	results, err := engine.ScheduleAll(requests)
	if err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	s.bus.Unsubscribe(events)
	<-done

	if err := ctx.Err(); err != nil {
		return err
	}

	compiled := schedule.Compile(engine, results)
	if err := s.writeOutputs(compiled); err != nil {
		return err
	}
	if s.publisher != nil {
		if err := s.publisher.PublishRun(compiled); err != nil {
			s.log.Errorf("publish run: %v", err)
		}
	}

	sum := compiled.Summary
	s.log.Infof("run %s finished in %s: %d field+time, %d time-only, %d unscheduled, %d duplicates dropped",
		sum.RunID, time.Since(start).Round(time.Millisecond),
		sum.FieldAndTime, sum.TimeOnly, sum.NotScheduled, sum.Duplicates)
	s.log.Infof("examiner workload: min %d, max %d, mean %.2f, stddev %.2f",
		sum.Workload.Min, sum.Workload.Max, sum.Workload.Mean, sum.Workload.StdDev)
	return nil
}

// traceEvents logs engine events as they happen; the heavy aggregation goes
// through the metrics sink instead.
func (s *Service) traceEvents(events <-chan eventbus.Event) {
	for ev := range events {
		switch e := ev.(type) {
		case schedule.ScheduledEvent:
			s.log.Debugf("event: %s scheduled at %s (%s)", e.RequestID, e.Slot, e.Status)
		case schedule.FallbackEvent:
			s.log.Debugf("event: %s fell back to time-only: %s", e.RequestID, e.Reason)
		case schedule.UnresolvedSupervisorEvent:
			s.log.Debugf("event: %s has unknown supervisor %q", e.RequestID, e.Reference)
		case schedule.FailedEvent:
			s.log.Debugf("event: %s not scheduled: %s", e.RequestID, e.Reason)
		}
	}
}

func (s *Service) writeOutputs(c schedule.Compiled) error {
	out := s.cfg.Outputs
	if err := os.MkdirAll(out.Dir, 0o755); err != nil {
		return fmt.Errorf("output dir: %w", err)
	}
	writers := []struct {
		name  string
		write func(*os.File) error
	}{
		{out.ResultsCSV, func(f *os.File) error { return export.WriteResultsCSV(f, c.Results) }},
		{out.ResultsJSON, func(f *os.File) error { return export.WriteResultsJSON(f, c.Results) }},
		{out.OccupancyCSV, func(f *os.File) error { return export.WriteOccupancyCSV(f, c.Occupancy) }},
		{out.ExaminersCSV, func(f *os.File) error { return export.WriteExaminerScheduleCSV(f, c.Examiners) }},
		{out.SummaryJSON, func(f *os.File) error { return export.WriteSummaryJSON(f, c.Summary) }},
	}
	for _, w := range writers {
		path := filepath.Join(out.Dir, w.name)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if err := w.write(f); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", path, err)
		}
		s.log.Debugf("wrote %s", path)
	}
	return nil
}

// Validate loads the inputs and reports basic consistency problems without
// scheduling anything.
func (s *Service) Validate() error {
	inputStep := time.Duration(s.cfg.Schedule.InputSlotMinutes) * time.Minute
	step := time.Duration(s.cfg.Schedule.SlotMinutes) * time.Minute

	examiners, horizon, err := ingest.LoadExaminers(s.cfg.Inputs.Availability, inputStep, step)
	if err != nil {
		return fmt.Errorf("load availability: %w", err)
	}
	requests, err := ingest.LoadRequests(s.cfg.Inputs.Requests)
	if err != nil {
		return fmt.Errorf("load requests: %w", err)
	}

	known := make(map[string]*model.Examiner, len(examiners))
	for _, ex := range examiners {
		if prev, dup := known[ex.Code]; dup {
			s.log.Warnf("examiner code %s appears twice (%s, %s)", ex.Code, prev.Name, ex.Name)
		}
		known[ex.Code] = ex
	}
	resolver := schedule.NewDurationResolver(s.cfg.Schedule)
	groupSizes := make(map[string]int)
	for _, r := range requests {
		if r.IsGroup() {
			groupSizes[r.GroupID]++
		}
	}
	for gid, size := range groupSizes {
		if _, err := resolver.Resolve(size); err != nil {
			return fmt.Errorf("group %s: %w", gid, err)
		}
	}
	s.log.Infof("inputs valid: %d examiners, %d requests, %d groups, %d slots",
		len(examiners), len(requests), len(groupSizes), horizon.Len())
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.publisher != nil {
		s.publisher.Close()
	}
	s.bus.Close()
	return nil
}
