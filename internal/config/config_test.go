package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"data": { "csvPath": "/data/launches.csv" },
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "/data/launches.csv", viper.GetString("data.csvPath"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./logs", viper.GetString("logsDir"))
	assert.Equal(t, "127.0.0.1", viper.GetString("server.host"))
	assert.Equal(t, 8050, viper.GetInt("server.port"))
	assert.Equal(t, "spacex_launch_dash.csv", viper.GetString("data.csvPath"))
	assert.Equal(t, true, viper.GetBool("data.importOnStart"))
	assert.Equal(t, "SpaceX Launch Records Dashboard", viper.GetString("dashboard.title"))
	assert.Equal(t, "memory", viper.GetString("storage.type"))
	assert.Equal(t, "launches", viper.GetString("db.database"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, "dashboard_interactions", viper.GetString("influx.bucket"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, false, viper.GetBool("otel.enabled"))
	assert.Equal(t, "launch-dashboard", viper.GetString("otel.serviceName"))
}

func TestLoad_MissingFileKeepsDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")

	assert.Equal(t, 8050, GetServerConfig().Port)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("LAUNCHDASH_SERVER_PORT", "9000")
	t.Setenv("LAUNCHDASH_STORAGE_TYPE", "sqlite")

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, 9000, GetServerConfig().Port)
	assert.Equal(t, "sqlite", GetStorageConfig().Type)
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}

func TestGetInt(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testInt", 42)
	assert.Equal(t, 42, GetInt("testInt"))
}

func TestGetBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testBool", true)
	assert.Equal(t, true, GetBool("testBool"))
}

func TestGetServerConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{"server": {"host": "0.0.0.0", "port": 8080, "shutdownTimeout": "1s"}}`)))

	sc := GetServerConfig()
	assert.Equal(t, "0.0.0.0", sc.Host)
	assert.Equal(t, 8080, sc.Port)
	assert.Equal(t, "0.0.0.0:8080", sc.Addr())
	assert.Equal(t, 10*time.Second, sc.ReadTimeout)
	assert.Equal(t, 30*time.Second, sc.WriteTimeout)
	assert.Equal(t, time.Second, sc.ShutdownTimeout)
}

func TestGetDashboardConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{"dashboard": {"payloadSlider": {"step": 500}, "cacheFigures": false}}`)))

	dc := GetDashboardConfig()
	assert.Equal(t, "SpaceX Launch Records Dashboard", dc.Title)
	assert.Equal(t, SliderConfig{Min: 0, Max: 10000, Step: 500}, dc.PayloadSlider)
	assert.False(t, dc.CacheFigures)
}

func TestGetDashboardConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	dc := GetDashboardConfig()
	assert.Equal(t, SliderConfig{Min: 0, Max: 10000, Step: 1}, dc.PayloadSlider)
	assert.True(t, dc.CacheFigures)
	assert.Equal(t, 256, dc.CacheSize)
}

func TestGetDataConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{"data": {"importOnStart": false}}`)))

	dc := GetDataConfig()
	assert.Equal(t, "spacex_launch_dash.csv", dc.CSVPath)
	assert.False(t, dc.ImportOnStart)
}

func TestGetStorageConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetStorageConfig()
	assert.Equal(t, "memory", cfg.Type)
	assert.Equal(t, MemoryConfig{ExportDir: "", Compress: true}, cfg.Memory)
	assert.Equal(t, "", cfg.SQLite.Path)
	assert.Equal(t, time.Duration(0), cfg.SQLite.DumpInterval)
	assert.Equal(t, DBConfig{Host: "localhost", Port: "5432", Username: "postgres", Password: "postgres", Database: "launches"}, cfg.DB)
}

func TestGetStorageConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{
		"storage": {
			"type": "SQLite",
			"sqlite": { "path": "/tmp/launches.db", "dumpInterval": "10m" }
		}
	}`)))

	sc := GetStorageConfig()
	assert.Equal(t, "sqlite", sc.Type)
	assert.Equal(t, "/tmp/launches.db", sc.SQLite.Path)
	assert.Equal(t, 10*time.Minute, sc.SQLite.DumpInterval)
}

func TestGetOTelConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetOTelConfig()
	assert.Equal(t, false, cfg.Enabled)
	assert.Equal(t, "launch-dashboard", cfg.ServiceName)
	assert.Equal(t, 5*time.Second, cfg.BatchTimeout)
	assert.Equal(t, "", cfg.Endpoint)
	assert.Equal(t, true, cfg.Insecure)
}

func TestGetOTelConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{
		"otel": {
			"enabled": true,
			"serviceName": "my-service",
			"batchTimeout": "30s",
			"endpoint": "localhost:4317",
			"insecure": false
		}
	}`)))

	oc := GetOTelConfig()
	assert.Equal(t, true, oc.Enabled)
	assert.Equal(t, "my-service", oc.ServiceName)
	assert.Equal(t, 30*time.Second, oc.BatchTimeout)
	assert.Equal(t, "localhost:4317", oc.Endpoint)
	assert.Equal(t, false, oc.Insecure)
}

func TestGetInfluxAndGraylogConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{"influx": {"enabled": true, "token": "t0k"}, "graylog": {"enabled": true}}`)))

	ic := GetInfluxConfig()
	assert.True(t, ic.Enabled)
	assert.Equal(t, "t0k", ic.Token)
	assert.Equal(t, "launch-dashboard", ic.Org)
	assert.Equal(t, "./logs/influx_backup.lp.gz", ic.BackupPath)

	gc := GetGraylogConfig()
	assert.Equal(t, GraylogConfig{Enabled: true, Address: "localhost:12201"}, gc)
}
