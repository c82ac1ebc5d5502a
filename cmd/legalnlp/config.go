package main

// Config is the on-disk CLI configuration, loaded from a YAML file (see
// rootCmd.PersistentPreRunE in commands.go). Every field has a usable zero
// value, so a missing config file is not fatal.
type Config struct {
	// LogDir enables file logging alongside stderr. See pkg/logging.Config.
	LogDir string `yaml:"log_dir"`
	// LogJSON switches stderr logging to JSON.
	LogJSON bool `yaml:"log_json"`
	// CacheDir, if set, backs the snapshot cache with an on-disk badger
	// database at this path instead of an in-memory one.
	CacheDir string `yaml:"cache_dir"`
	// ServeAddr is the default bind address for the serve subcommand.
	ServeAddr string `yaml:"serve_addr"`
}

func defaultConfig() Config {
	return Config{ServeAddr: ":8080"}
}
