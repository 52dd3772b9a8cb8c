package flags

import (
	"os"
	"strings"

	"github.com/spf13/pflag"
)

const (
	// Env vars
	EnvVarConfigFile = "CONVTREE_CONFIG_FILE"
	EnvVarLogPath    = "CONVTREE_LOG_PATH"
	EnvVarLogLevel   = "CONVTREE_LOG_LEVEL"

	// Defaults
	DefaultConfigFile = ".convtree.toml"
	DefaultLogPath    = ""
	DefaultLogLevel   = "info"

	// Flag names
	FlagNameConfigFile = "config-file"
	FlagNameLogPath    = "log-path"
	FlagNameLogLevel   = "log-level"
)

var (
	ConfigFile string
	LogPath    string
	LogLevel   string
)

// InitFlags registers the global flags on fs. Values come from the flag, then the environment, then defaults.
func InitFlags(fs *pflag.FlagSet) {
	initConfigFile(fs)
	initLogger(fs)
}

func initConfigFile(fs *pflag.FlagSet) {
	if ConfigFile == "" {
		ConfigFile = envOrDefault(EnvVarConfigFile, DefaultConfigFile)
	}
	fs.StringVar(&ConfigFile, FlagNameConfigFile, ConfigFile, "path to config file")
}

func initLogger(fs *pflag.FlagSet) {
	if LogPath == "" {
		LogPath = envOrDefault(EnvVarLogPath, DefaultLogPath)
	}
	fs.StringVar(&LogPath, FlagNameLogPath, LogPath, "path to generated log file")

	if LogLevel == "" {
		LogLevel = strings.ToLower(envOrDefault(EnvVarLogLevel, DefaultLogLevel))
	}
	fs.StringVar(&LogLevel, FlagNameLogLevel, LogLevel, "log level for convtree logs")
}

func envOrDefault(key string, fallback string) string {
	if env := strings.TrimSpace(os.Getenv(key)); env != "" {
		return env
	}
	return fallback
}
