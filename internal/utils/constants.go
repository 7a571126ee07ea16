package utils

const (
	// ApplicationName is the command name and the user configuration directory name.
	ApplicationName = "fln"
	// ConfigFileName is the per-project and global configuration file name.
	ConfigFileName = ".fln.json"
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
	// GeneratedMarker is the signature written at the top of every Markdown document fln produces.
	GeneratedMarker = "<!-- 🥞 fln"
	// DefaultMaximumFileSizeBytes is the per-file limit applied when none is configured.
	DefaultMaximumFileSizeBytes int64 = 10 * mebibyte
	// LargeOutputTokenThreshold triggers the large output warning.
	LargeOutputTokenThreshold = 200_000
)

// EmptyString represents a reusable empty string constant.
const EmptyString = ""

// ErrorLogFormat defines the formatting string for error log messages.
const ErrorLogFormat = "Error: %v"

const (
	// LoggerInitializationFailedMessageFormat reports a logger construction failure.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes fatal CLI errors.
	ApplicationExecutionFailedMessage = "fln failed"
)
