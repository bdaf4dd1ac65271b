package config

// Auction carries the auction module parameters. Fractions are decimal
// strings so they survive the TOML round trip without float rounding.
type Auction struct {
	DefaultBidPeriodSeconds int64  `toml:"DefaultBidPeriodSeconds"`
	DefaultBidIncrease      string `toml:"DefaultBidIncrease"`
	MinBidIncrease          string `toml:"MinBidIncrease"`
	MaxMinPriceRatio        string `toml:"MaxMinPriceRatio"`
	// ApplyRoyalties defaults to true when omitted.
	ApplyRoyalties *bool `toml:"ApplyRoyalties"`
}

// Logging controls the structured log sink.
type Logging struct {
	Level      string `toml:"Level"`
	File       string `toml:"File"`
	MaxSizeMB  int    `toml:"MaxSizeMB"`
	MaxBackups int    `toml:"MaxBackups"`
	MaxAgeDays int    `toml:"MaxAgeDays"`
}

// RPC configures the JSON-RPC listener.
type RPC struct {
	JWTSecret          string `toml:"JWTSecret"`
	RateLimitPerMinute int    `toml:"RateLimitPerMinute"`
	Burst              int    `toml:"Burst"`
	MaxBodyBytes       int64  `toml:"MaxBodyBytes"`
	ReadTimeoutSeconds int    `toml:"ReadTimeoutSeconds"`
}

// Telemetry configures OTLP trace export.
type Telemetry struct {
	Endpoint string `toml:"Endpoint"`
	Insecure bool   `toml:"Insecure"`
	Traces   bool   `toml:"Traces"`
	Headers  string `toml:"Headers"`
	// SampleRatio of root spans to keep; 0 keeps all.
	SampleRatio float64 `toml:"SampleRatio"`
}

// Indexer locates the event journal. An empty path keeps it in memory.
type Indexer struct {
	Path string `toml:"Path"`
}
