package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"news-classifier/internal/shared/apperr"
)

// Store backends.
const (
	StoreCloudant = "cloudant"
	StorePostgres = "postgres"
	StoreS3       = "s3"
	StoreMemory   = "memory"
)

const defaultIAMTokenURL = "https://iam.cloud.ibm.com/identity/token"

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	ShutdownTimeout time.Duration

	NLUAPIKey   string
	NLUURL      string
	NLUVersion  string
	NLUTimeout  time.Duration
	IAMTokenURL string

	StoreBackend     string
	CloudantUsername string
	CloudantAPIKey   string
	CloudantURL      string
	StoreDB          string
	DatabaseURL      string
	AWSRegion        string
	S3Bucket         string
	S3KMSKeyID       string
	StoreTimeout     time.Duration
	StoreAsyncWrites bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	v := viper.New()
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(v, ".env", "cmd/.env")
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) Config {
	v.AutomaticEnv()
	v.SetDefault("port", "5000")
	v.SetDefault("env", "dev")
	v.SetDefault("shutdown_timeout_seconds", 15)
	v.SetDefault("nlu_version", "2023-03-25")
	v.SetDefault("nlu_timeout_seconds", 30)
	v.SetDefault("iam_token_url", defaultIAMTokenURL)
	v.SetDefault("store_backend", StoreCloudant)
	v.SetDefault("store_timeout_seconds", 10)
	v.SetDefault("store_async_writes", false)

	storeDB := strings.TrimSpace(v.GetString("store_db"))
	if storeDB == "" {
		storeDB = strings.TrimSpace(v.GetString("cloudant_db"))
	}

	return Config{
		Port:            strings.TrimSpace(v.GetString("port")),
		Env:             normalizeEnv(v.GetString("env")),
		ShutdownTimeout: seconds(v.GetInt("shutdown_timeout_seconds"), 15),

		NLUAPIKey:   strings.TrimSpace(v.GetString("nlu_apikey")),
		NLUURL:      strings.TrimSpace(v.GetString("nlu_url")),
		NLUVersion:  strings.TrimSpace(v.GetString("nlu_version")),
		NLUTimeout:  seconds(v.GetInt("nlu_timeout_seconds"), 30),
		IAMTokenURL: strings.TrimSpace(v.GetString("iam_token_url")),

		StoreBackend:     normalizeStoreBackend(v.GetString("store_backend")),
		CloudantUsername: strings.TrimSpace(v.GetString("cloudant_username")),
		CloudantAPIKey:   strings.TrimSpace(v.GetString("cloudant_apikey")),
		CloudantURL:      strings.TrimSpace(v.GetString("cloudant_url")),
		StoreDB:          storeDB,
		DatabaseURL:      strings.TrimSpace(v.GetString("database_url")),
		AWSRegion:        strings.TrimSpace(v.GetString("aws_region")),
		S3Bucket:         strings.TrimSpace(v.GetString("store_s3_bucket")),
		S3KMSKeyID:       strings.TrimSpace(v.GetString("store_s3_kms_key_id")),
		StoreTimeout:     seconds(v.GetInt("store_timeout_seconds"), 10),
		StoreAsyncWrites: v.GetBool("store_async_writes"),
	}
}

// ValidateNLU reports every missing analysis-service parameter at once.
func (c Config) ValidateNLU() error {
	var missing []string
	if c.NLUAPIKey == "" {
		missing = append(missing, "NLU_APIKEY")
	}
	if c.NLUURL == "" {
		missing = append(missing, "NLU_URL")
	}
	if len(missing) > 0 {
		return apperr.New(apperr.KindConfiguration, "missing required environment variables: "+strings.Join(missing, ", "))
	}
	return nil
}

// StoreMissing lists the document store parameters the selected backend
// needs but does not have. An empty result means the store can be opened.
func (c Config) StoreMissing() []string {
	var missing []string
	need := func(val, name string) {
		if val == "" {
			missing = append(missing, name)
		}
	}
	switch c.StoreBackend {
	case StorePostgres:
		need(c.DatabaseURL, "DATABASE_URL")
		need(c.StoreDB, "STORE_DB")
	case StoreS3:
		need(c.S3Bucket, "STORE_S3_BUCKET")
		need(c.StoreDB, "STORE_DB")
	case StoreMemory:
		need(c.StoreDB, "STORE_DB")
	default:
		need(c.CloudantUsername, "CLOUDANT_USERNAME")
		need(c.CloudantAPIKey, "CLOUDANT_APIKEY")
		need(c.CloudantURL, "CLOUDANT_URL")
		need(c.StoreDB, "CLOUDANT_DB")
	}
	return missing
}

// IsDevLike reports whether the environment is a local development one.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}

func seconds(n, def int) time.Duration {
	if n <= 0 {
		n = def
	}
	return time.Duration(n) * time.Second
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreBackend(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case StorePostgres, "pg":
		return StorePostgres
	case StoreS3:
		return StoreS3
	case StoreMemory:
		return StoreMemory
	default:
		return StoreCloudant
	}
}
