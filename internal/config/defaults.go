package config

const (
	defaultRequestTimeout       = 30
	defaultNotifyRequestTimeout = 10
	defaultLockFile             = "~/.local/share/albumsync/sync.lock"
	defaultHistoryPath          = "~/.local/share/albumsync/history.db"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			RequestTimeout: defaultRequestTimeout,
		},
		Sync: Sync{
			LockFile: defaultLockFile,
		},
		History: History{
			Enabled:      true,
			DatabasePath: defaultHistoryPath,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
