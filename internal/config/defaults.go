package config

const (
	defaultDataDir      = "~/.local/share/splice"
	defaultRegistryName = "registry.db"
	defaultLogDir       = "~/.local/share/splice/logs"
	defaultBackend      = "files"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Storage: Storage{
			Backend: defaultBackend,
		},
		Load: Load{
			Parallelism: 0,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
