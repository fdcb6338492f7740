package config

const (
	defaultMaxParserThreads      = 2
	defaultMaxThumbnailerThreads = 1
	defaultEngineTimeoutSeconds  = 0
	defaultFetchMetaNetTimeout   = 10
	defaultThumbnailScratchDir   = "~/.local/share/preparser/scratch"
	defaultThumbnailMinFreeBytes = 64 * 1024 * 1024
	defaultThumbnailWidth        = 320
	defaultThumbnailHeight       = 180
	defaultThumbnailPreciseExtra = 150
	defaultAuditPath             = "~/.local/share/preparser/audit.db"
	defaultDaemonLockPath        = "~/.local/share/preparser/preparserd.lock"
	defaultDaemonSocketPath      = "~/.local/share/preparser/preparserd.sock"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogDir                = "~/.local/share/preparser/logs"
)

// Default returns a Config populated with repository defaults: all four
// domain executors configured, engine-wide timeout disabled, audit journal and
// daemon paths under the user's local data directory.
func Default() Config {
	return Config{
		Engine: Engine{
			Types:                 []string{"parse", "fetchmeta_local", "fetchmeta_net", "thumbnail"},
			MaxParserThreads:      defaultMaxParserThreads,
			MaxThumbnailerThreads: defaultMaxThumbnailerThreads,
			TimeoutSeconds:        defaultEngineTimeoutSeconds,
		},
		FetchMetaNet: FetchMetaNet{
			TimeoutSeconds: defaultFetchMetaNetTimeout,
		},
		Thumbnail: Thumbnail{
			ScratchDir:     defaultThumbnailScratchDir,
			MinFreeBytes:   defaultThumbnailMinFreeBytes,
			Width:          defaultThumbnailWidth,
			Height:         defaultThumbnailHeight,
			PreciseExtraMS: defaultThumbnailPreciseExtra,
		},
		Audit: Audit{
			Path: defaultAuditPath,
		},
		Daemon: Daemon{
			LockPath:   defaultDaemonLockPath,
			SocketPath: defaultDaemonSocketPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			Dir:    defaultLogDir,
		},
	}
}
