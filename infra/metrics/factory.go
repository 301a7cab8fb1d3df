package metrics

import (
	"fmt"

	coremetrics "github.com/martinmn/defsched/core/metrics"
)

// NewSink builds the configured sinks and combines them. An empty sink list
// yields a NopSink.
func NewSink(cfg coremetrics.Config) (coremetrics.ScheduleSink, error) {
	if len(cfg.Sinks) == 0 {
		return coremetrics.NopSink{}, nil
	}
	sinks := make([]coremetrics.ScheduleSink, 0, len(cfg.Sinks))
	for _, sc := range cfg.Sinks {
		switch sc.Type {
		case "nop", "":
			sinks = append(sinks, coremetrics.NopSink{})
		case "prometheus":
			s, err := NewPromSink()
			if err != nil {
				return nil, fmt.Errorf("prometheus sink: %w", err)
			}
			sinks = append(sinks, s)
		case "influx":
			sinks = append(sinks, NewInfluxSinkWithFallback(sc.Influx))
		default:
			return nil, fmt.Errorf("unknown sink type %q", sc.Type)
		}
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return coremetrics.NewMultiSink(sinks...), nil
}
