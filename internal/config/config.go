package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FileName is the optional config file searched in the config directories.
const FileName = "dsview.cfg.json"

// EnvPrefix prefixes every environment variable, e.g. DSVIEW_INPUT_PATH.
const EnvPrefix = "DSVIEW"

// InspectConfig holds the report settings
type InspectConfig struct {
	InputPath    string `json:"inputPath" mapstructure:"inputPath"`
	PreviewCount int    `json:"previewCount" mapstructure:"previewCount"`
	ShowDetails  bool   `json:"showDetails" mapstructure:"showDetails"`
	Color        string `json:"color" mapstructure:"color"`
}

// ExportConfig holds the JSON mirror settings
type ExportConfig struct {
	Path     string `json:"exportJsonPath" mapstructure:"exportJsonPath"`
	Compress bool   `json:"compress" mapstructure:"compress"`
	Progress bool   `json:"progress" mapstructure:"progress"`
}

// DatabaseConfig holds the connection settings for the "postgres" input
type DatabaseConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// defaults lists every key in the order they are documented.
var defaults = []struct {
	key   string
	value any
}{
	{"inputPath", "dataset/BX_test.json.gz"},
	{"previewCount", 3},
	{"showDetails", true},
	{"color", "auto"},

	{"exportJsonPath", ""},
	{"export.compress", false},
	{"export.progress", false},

	{"logLevel", "info"},
	{"logsDir", ""},

	{"db.host", "localhost"},
	{"db.port", "5432"},
	{"db.username", "postgres"},
	{"db.password", "postgres"},
	{"db.database", "dsview"},

	{"otel.enabled", false},
	{"otel.serviceName", "dsview"},
	{"otel.batchTimeout", "5s"},
	{"otel.endpoint", ""},
	{"otel.insecure", true},
}

// Load sets default values, binds DSVIEW_* environment variables and reads
// the config file from the first of configDirs that has one.
// A missing config file is not an error.
func Load(configDirs ...string) error {
	for _, d := range defaults {
		viper.SetDefault(d.key, d.value)
		if err := viper.BindEnv(d.key, EnvName(d.key)); err != nil {
			return fmt.Errorf("error binding env for %s: %v", d.key, err)
		}
	}

	viper.SetConfigName(FileName)
	viper.SetConfigType("json")
	for _, dir := range configDirs {
		if dir != "" {
			viper.AddConfigPath(dir)
		}
	}
	if len(configDirs) == 0 {
		viper.AddConfigPath(".")
	}

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// EnvName maps a config key to its environment variable:
// "inputPath" -> DSVIEW_INPUT_PATH, "export.compress" -> DSVIEW_EXPORT_COMPRESS.
func EnvName(key string) string {
	var b strings.Builder
	b.WriteString(EnvPrefix)
	b.WriteByte('_')
	prev := rune(0)
	for _, r := range key {
		switch {
		case r == '.':
			b.WriteByte('_')
		case unicode.IsUpper(r) && prev != 0 && prev != '.' && !unicode.IsUpper(prev):
			b.WriteByte('_')
			b.WriteRune(r)
		default:
			b.WriteRune(unicode.ToUpper(r))
		}
		prev = r
	}
	return b.String()
}

// BindFlags registers the command-line flags on fs and binds them to their
// config keys. Flags only override config when set.
func BindFlags(fs *pflag.FlagSet) error {
	fs.String("config-dir", "", "directory containing "+FileName)
	fs.StringP("input", "i", "", "archive to inspect (file path or postgres URL)")
	fs.IntP("preview", "n", 0, "number of samples to preview")
	fs.Bool("details", true, "print sample previews")
	fs.String("export-json", "", "write a JSON mirror to this path")
	fs.Bool("compress", false, "gzip the JSON mirror")
	fs.Bool("progress", false, "show a progress bar while exporting")
	fs.String("color", "", "colorize output: auto, always or never")
	fs.String("log-level", "", "log level: debug, info, warn or error")
	fs.String("logs-dir", "", "write logs to a file in this directory")

	bindings := map[string]string{
		"inputPath":       "input",
		"previewCount":    "preview",
		"showDetails":     "details",
		"exportJsonPath":  "export-json",
		"export.compress": "compress",
		"export.progress": "progress",
		"color":           "color",
		"logLevel":        "log-level",
		"logsDir":         "logs-dir",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("error binding flag %s: %v", flag, err)
		}
	}
	return nil
}

// GetInspectConfig returns the report settings
func GetInspectConfig() InspectConfig {
	n := viper.GetInt("previewCount")
	if n < 0 {
		n = 0
	}
	return InspectConfig{
		InputPath:    viper.GetString("inputPath"),
		PreviewCount: n,
		ShowDetails:  viper.GetBool("showDetails"),
		Color:        viper.GetString("color"),
	}
}

// GetExportConfig returns the JSON mirror settings
func GetExportConfig() ExportConfig {
	return ExportConfig{
		Path:     viper.GetString("exportJsonPath"),
		Compress: viper.GetBool("export.compress"),
		Progress: viper.GetBool("export.progress"),
	}
}

// GetDatabaseConfig returns the Postgres connection settings
func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: viper.GetString("db.password"),
		Database: viper.GetString("db.database"),
	}
}

// GetOTelConfig returns the OpenTelemetry settings
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}
