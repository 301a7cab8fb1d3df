package metrics

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []SinkConfig `json:"sinks"`
}

// SinkConfig selects and configures one sink.
type SinkConfig struct {
	// Type is one of "nop", "prometheus" or "influx".
	Type   string       `json:"type"`
	Influx InfluxConfig `json:"influx"`
}

// InfluxConfig holds the InfluxDB connection parameters.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}
