package config

// Config is the top-level YAML structure for the service.
type Config struct {
	Server  ServerConf  `yaml:"server"`
	Dataset DatasetConf `yaml:"dataset"`
	Network NetworkConf `yaml:"network"`
}

// ServerConf holds HTTP server settings.
type ServerConf struct {
	Addr           string `yaml:"addr"`
	ReadTimeoutMs  int    `yaml:"read_timeout_ms"`
	WriteTimeoutMs int    `yaml:"write_timeout_ms"`
	IdleTimeoutMs  int    `yaml:"idle_timeout_ms"`
}

// DatasetConf points at the observed-data file the CPDs are estimated from.
type DatasetConf struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// NetworkConf holds estimation and refresh settings.
type NetworkConf struct {
	// LaplaceCount is the smoothing count passed to every CPD build.
	LaplaceCount int `yaml:"laplace_count"`
	// RebuildWorkers bounds the goroutines used for the full-network CPD
	// refresh after a dataset reload.
	RebuildWorkers int `yaml:"rebuild_workers"`
}
