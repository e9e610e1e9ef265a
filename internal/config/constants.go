package config

const (
	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// Diff Defaults
	DefaultDiffEngine               = "dmp"
	DefaultDiffGranularity          = "word"
	DefaultDiffStrategy             = "edit_script"
	DefaultDiffMaxInputSizeMB       = 10
	DefaultDiffNormalizeLineEndings = true

	// Table Defaults
	DefaultTableHeaderRow = 0

	// Storage Defaults
	DefaultStorageSQLiteDBPath        = "database/diffchecker.db"
	DefaultStorageMaxSavedComparisons = 100
	DefaultStorageParquetExportDir    = "database/exports"
	DefaultStorageCompressionCodec    = "zstd"

	// Server Defaults
	DefaultServerListenAddress    = "127.0.0.1:8080"
	DefaultServerMaxUploadSizeMB  = 20
	DefaultServerReadTimeoutSecs  = 30
	DefaultServerWriteTimeoutSecs = 60
	DefaultServerSessionHeader    = "X-Diffchecker-Session"

	// Reporter Defaults
	DefaultReporterPresentation = "split"
	DefaultReporterColor        = true
	DefaultReporterTitle        = "Diffchecker"

	// ConfigPathEnv overrides the config file location
	ConfigPathEnv = "DIFFCHECKER_CONFIG_PATH"
)
