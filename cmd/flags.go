package cmd

import (
	"time"

	"github.com/foomo/themeserver/pkg/theme"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func logLevelFlag(v *viper.Viper) string {
	return v.GetString("log.level")
}

func addLogLevelFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("log-level", "info", "log level")
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindEnv("log.level", "LOG_LEVEL")
}

func logFormatFlag(v *viper.Viper) string {
	return v.GetString("log.format")
}

func addLogFormatFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("log-format", "json", "log format")
	_ = v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = v.BindEnv("log.format", "LOG_FORMAT")
}

func addressFlag(v *viper.Viper) string {
	return v.GetString("address")
}

func addAddressFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("address", ":8080", "Address to bind to (host:port)")
	_ = v.BindPFlag("address", flags.Lookup("address"))
	_ = v.BindEnv("address", "THEME_SERVER_ADDRESS")
}

func basePathFlag(v *viper.Viper) string {
	return v.GetString("base_path")
}

func addBasePathFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("base-path", "/themeserver", "Base path to export the webserver on")
	_ = v.BindPFlag("base_path", flags.Lookup("base-path"))
	_ = v.BindEnv("base_path", "THEME_SERVER_BASE_PATH")
}

func maxUploadSizeFlag(v *viper.Viper) int64 {
	return v.GetInt64("max_upload_size")
}

func addMaxUploadSizeFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Int64("max-upload-size", 64<<20, "Maximum size of an uploaded theme archive in bytes")
	_ = v.BindPFlag("max_upload_size", flags.Lookup("max-upload-size"))
	_ = v.BindEnv("max_upload_size", "THEME_SERVER_MAX_UPLOAD_SIZE")
}

func storageTypeFlag(v *viper.Viper) string {
	return v.GetString("storage.type")
}

func addStorageTypeFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("storage-type", "filesystem", "Storage backend: filesystem or blob")
	_ = v.BindPFlag("storage.type", flags.Lookup("storage-type"))
	_ = v.BindEnv("storage.type", "THEME_SERVER_STORAGE_TYPE")
}

func storageDirFlag(v *viper.Viper) string {
	return v.GetString("storage.dir")
}

func addStorageDirFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("storage-dir", "/var/lib/themeserver", "Where to put my data when using filesystem storage")
	_ = v.BindPFlag("storage.dir", flags.Lookup("storage-dir"))
	_ = v.BindEnv("storage.dir", "THEME_SERVER_STORAGE_DIR")
}

func storageBlobBucketFlag(v *viper.Viper) string {
	return v.GetString("storage.blob.bucket")
}

func addStorageBlobBucketFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("storage-blob-bucket", "", "Bucket url, e.g. gs://bucket, s3://bucket or azblob://container")
	_ = v.BindPFlag("storage.blob.bucket", flags.Lookup("storage-blob-bucket"))
	_ = v.BindEnv("storage.blob.bucket", "THEME_SERVER_STORAGE_BLOB_BUCKET")
}

func storageBlobPrefixFlag(v *viper.Viper) string {
	return v.GetString("storage.blob.prefix")
}

func addStorageBlobPrefixFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("storage-blob-prefix", "", "Key prefix inside the bucket")
	_ = v.BindPFlag("storage.blob.prefix", flags.Lookup("storage-blob-prefix"))
	_ = v.BindEnv("storage.blob.prefix", "THEME_SERVER_STORAGE_BLOB_PREFIX")
}

func defaultThemePathFlag(v *viper.Viper) string {
	return v.GetString("theme.default_path")
}

func addDefaultThemePathFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("default-theme-path", "", "Local directory seeded into stores without themes")
	_ = v.BindPFlag("theme.default_path", flags.Lookup("default-theme-path"))
	_ = v.BindEnv("theme.default_path", "THEME_SERVER_DEFAULT_THEME_PATH")
}

func seedRootFlag(v *viper.Viper) string {
	return v.GetString("theme.seed_root")
}

func addSeedRootFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("seed-root", "", "Local directory theme path overrides are resolved in, overrides are disabled when empty")
	_ = v.BindPFlag("theme.seed_root", flags.Lookup("seed-root"))
	_ = v.BindEnv("theme.seed_root", "THEME_SERVER_SEED_ROOT")
}

func themeDefaultFoldersFlag(v *viper.Viper) []string {
	return v.GetStringSlice("theme.default_folders")
}

func addThemeDefaultFoldersFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.StringSlice("theme-default-folders", theme.DefaultFolders, "Top level folders of the canonical theme layout")
	_ = v.BindPFlag("theme.default_folders", flags.Lookup("theme-default-folders"))
	_ = v.BindEnv("theme.default_folders", "THEME_SERVER_THEME_DEFAULT_FOLDERS")
}

func gracefulPeriodFlag(v *viper.Viper) time.Duration {
	return v.GetDuration("graceful_period")
}

func addGracefulPeriodFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Duration("graceful-period", 0, "Graceful period before shutting down")
	_ = v.BindPFlag("graceful_period", flags.Lookup("graceful-period"))
	_ = v.BindEnv("graceful_period", "THEME_SERVER_GRACEFUL_PERIOD")
}

func clientTimeoutFlag(v *viper.Viper) time.Duration {
	return v.GetDuration("client.timeout")
}

func addClientTimeoutFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Duration("client-timeout", 5*time.Minute, "Timeout of requests against a remote theme server")
	_ = v.BindPFlag("client.timeout", flags.Lookup("client-timeout"))
	_ = v.BindEnv("client.timeout", "THEME_SERVER_CLIENT_TIMEOUT")
}

func gzipLevelFlag(v *viper.Viper) int {
	return v.GetInt("gzip.level")
}

func addGzipLevelFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Int("gzip-level", -1, "Gzip compression level of replies, -1 is the default level")
	_ = v.BindPFlag("gzip.level", flags.Lookup("gzip-level"))
	_ = v.BindEnv("gzip.level", "THEME_SERVER_GZIP_LEVEL")
}

func serviceHealthzEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.healthz.enabled")
}

func addServiceHealthzEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-healthz-enabled", false, "Enable healthz service")
	_ = v.BindPFlag("service.healthz.enabled", flags.Lookup("service-healthz-enabled"))
}

func servicePrometheusEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.prometheus.enabled")
}

func addServicePrometheusEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-prometheus-enabled", false, "Enable prometheus service")
	_ = v.BindPFlag("service.prometheus.enabled", flags.Lookup("service-prometheus-enabled"))
}

func servicePProfEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.pprof.enabled")
}

func addServicePProfEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-pprof-enabled", false, "Enable pprof service")
	_ = v.BindPFlag("service.pprof.enabled", flags.Lookup("service-pprof-enabled"))
}

func otelEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("otel.enabled")
}

func addOtelEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("otel-enabled", false, "Enable otel service")
	_ = v.BindPFlag("otel.enabled", flags.Lookup("otel-enabled"))
	_ = v.BindEnv("otel.enabled", "OTEL_ENABLED")
}

// addStorageFlags registers the flags read by createStorage
func addStorageFlags(flags *pflag.FlagSet, v *viper.Viper) {
	addStorageTypeFlag(flags, v)
	addStorageDirFlag(flags, v)
	addStorageBlobBucketFlag(flags, v)
	addStorageBlobPrefixFlag(flags, v)
}

// addThemeFlags registers the flags read by newService
func addThemeFlags(flags *pflag.FlagSet, v *viper.Viper) {
	addDefaultThemePathFlag(flags, v)
	addSeedRootFlag(flags, v)
	addThemeDefaultFoldersFlag(flags, v)
}
