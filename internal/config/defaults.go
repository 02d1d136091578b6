package config

const (
	defaultStagingDir             = "~/.local/share/spool/staging"
	defaultLogDir                 = "~/.local/share/spool/logs"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultSlicerBinary           = "orca-slicer"
	defaultSlicerTimeout          = 900
	defaultBuildPlate             = "textured_pei"
	defaultPrinterRequestTimeout  = 15
	defaultPrinterUploadTimeout   = 300
	defaultDownloadRequestTimeout = 120
	defaultDownloadMaxSizeMiB     = 256
	defaultQueuePollInterval      = 5
	defaultErrorRetryInterval     = 10
	defaultHeartbeatInterval      = 15
	defaultHeartbeatTimeout       = 120
	defaultNotifyRequestTimeout   = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Printer: Printer{
			RequestTimeout: defaultPrinterRequestTimeout,
			UploadTimeout:  defaultPrinterUploadTimeout,
		},
		Slicer: Slicer{
			Binary:            defaultSlicerBinary,
			Timeout:           defaultSlicerTimeout,
			DefaultBuildPlate: defaultBuildPlate,
		},
		Download: Download{
			RequestTimeout: defaultDownloadRequestTimeout,
			MaxSizeMiB:     defaultDownloadMaxSizeMiB,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Jobs:           true,
			Errors:         true,
		},
	}
}
