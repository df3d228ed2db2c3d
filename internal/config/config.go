package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "launch_dashboard.cfg.json"

// EnvPrefix prefixes environment overrides, e.g. LAUNCHDASH_SERVER_PORT.
const EnvPrefix = "LAUNCHDASH"

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Addr returns host:port for the listener.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// DataConfig holds the launch CSV settings
type DataConfig struct {
	CSVPath       string
	ImportOnStart bool
}

// SliderConfig holds the payload slider bounds
type SliderConfig struct {
	Min  float64
	Max  float64
	Step float64
}

// DashboardConfig holds page settings
type DashboardConfig struct {
	Title         string
	PayloadSlider SliderConfig
	CacheFigures  bool
	// CacheSize caps the figure cache entries
	CacheSize int
}

// MemoryConfig holds in-memory storage backend settings
type MemoryConfig struct {
	ExportDir string `json:"exportDir" mapstructure:"exportDir"`
	Compress  bool   `json:"compress" mapstructure:"compress"`
}

// SQLiteConfig holds SQLite storage backend settings
type SQLiteConfig struct {
	Path         string        `json:"path" mapstructure:"path"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

// DBConfig holds Postgres connection settings
type DBConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// StorageConfig holds storage backend settings
type StorageConfig struct {
	Type   string
	Memory MemoryConfig
	SQLite SQLiteConfig
	DB     DBConfig
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// InfluxConfig holds interaction metrics settings
type InfluxConfig struct {
	Enabled    bool
	Host       string
	Port       string
	Protocol   string
	Token      string
	Org        string
	Bucket     string
	BackupPath string
}

// GraylogConfig holds GELF log shipping settings
type GraylogConfig struct {
	Enabled bool
	Address string
}

// SetDefaults registers every default value and the environment binding.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", 8050)
	viper.SetDefault("server.readTimeout", "10s")
	viper.SetDefault("server.writeTimeout", "30s")
	viper.SetDefault("server.shutdownTimeout", "5s")

	viper.SetDefault("data.csvPath", "spacex_launch_dash.csv")
	viper.SetDefault("data.importOnStart", true)

	viper.SetDefault("dashboard.title", "SpaceX Launch Records Dashboard")
	viper.SetDefault("dashboard.payloadSlider.min", 0)
	viper.SetDefault("dashboard.payloadSlider.max", 10000)
	viper.SetDefault("dashboard.payloadSlider.step", 1)
	viper.SetDefault("dashboard.cacheFigures", true)
	viper.SetDefault("dashboard.cacheSize", 256)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.exportDir", "")
	viper.SetDefault("storage.memory.compress", true)
	viper.SetDefault("storage.sqlite.path", "")
	viper.SetDefault("storage.sqlite.dumpInterval", "0s")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "launches")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "launch-dashboard")
	viper.SetDefault("influx.bucket", "dashboard_interactions")
	viper.SetDefault("influx.backupPath", "./logs/influx_backup.lp.gz")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "launch-dashboard")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file. Defaults stay in
// effect when the file is missing; the error is returned for the caller to log.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

func GetServerConfig() ServerConfig {
	return ServerConfig{
		Host:            viper.GetString("server.host"),
		Port:            viper.GetInt("server.port"),
		ReadTimeout:     viper.GetDuration("server.readTimeout"),
		WriteTimeout:    viper.GetDuration("server.writeTimeout"),
		ShutdownTimeout: viper.GetDuration("server.shutdownTimeout"),
	}
}

func GetDataConfig() DataConfig {
	return DataConfig{
		CSVPath:       viper.GetString("data.csvPath"),
		ImportOnStart: viper.GetBool("data.importOnStart"),
	}
}

func GetDashboardConfig() DashboardConfig {
	return DashboardConfig{
		Title: viper.GetString("dashboard.title"),
		PayloadSlider: SliderConfig{
			Min:  viper.GetFloat64("dashboard.payloadSlider.min"),
			Max:  viper.GetFloat64("dashboard.payloadSlider.max"),
			Step: viper.GetFloat64("dashboard.payloadSlider.step"),
		},
		CacheFigures: viper.GetBool("dashboard.cacheFigures"),
		CacheSize:    viper.GetInt("dashboard.cacheSize"),
	}
}

func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: strings.ToLower(viper.GetString("storage.type")),
		Memory: MemoryConfig{
			ExportDir: viper.GetString("storage.memory.exportDir"),
			Compress:  viper.GetBool("storage.memory.compress"),
		},
		SQLite: SQLiteConfig{
			Path:         viper.GetString("storage.sqlite.path"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
		DB: DBConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetString("db.port"),
			Username: viper.GetString("db.username"),
			Password: viper.GetString("db.password"),
			Database: viper.GetString("db.database"),
		},
	}
}

func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:    viper.GetBool("influx.enabled"),
		Host:       viper.GetString("influx.host"),
		Port:       viper.GetString("influx.port"),
		Protocol:   viper.GetString("influx.protocol"),
		Token:      viper.GetString("influx.token"),
		Org:        viper.GetString("influx.org"),
		Bucket:     viper.GetString("influx.bucket"),
		BackupPath: viper.GetString("influx.backupPath"),
	}
}

func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}
