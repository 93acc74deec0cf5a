package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Storage  StorageConfig
	JWT      JWTConfig
	OpenAI   OpenAIConfig
	Registry RegistryConfig
	Import   ImportConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type StorageConfig struct {
	Backend   string // "fs" or "s3"
	FsRoot    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

type OpenAIConfig struct {
	APIKey      string
	Model       string
	Timeout     time.Duration
	MaxRetries  int
	Temperature float32
}

type RegistryConfig struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

type ImportConfig struct {
	// DefaultDirection is applied when the company's own tax id is not
	// configured yet: "passive" treats everything as a purchase.
	DefaultDirection string
	FallbackWorkers  int
	MaxZipEntries    int
}

func Load() (*Config, error) {
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	refreshExp, _ := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168"))
	openaiTimeout, _ := strconv.Atoi(getEnv("OPENAI_TIMEOUT_SECONDS", "60"))
	openaiRetries, _ := strconv.Atoi(getEnv("OPENAI_MAX_RETRIES", "3"))
	registryTimeout, _ := strconv.Atoi(getEnv("REGISTRY_TIMEOUT_SECONDS", "10"))
	registryRetries, _ := strconv.Atoi(getEnv("REGISTRY_MAX_RETRIES", "2"))
	fallbackWorkers, _ := strconv.Atoi(getEnv("IMPORT_FALLBACK_WORKERS", "2"))
	maxZipEntries, _ := strconv.Atoi(getEnv("IMPORT_MAX_ZIP_ENTRIES", "200"))

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "fatturaflow"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Storage: StorageConfig{
			Backend:   getEnv("STORAGE_BACKEND", "fs"),
			FsRoot:    getEnv("STORAGE_FS_ROOT", "blobs"),
			Endpoint:  getEnv("S3_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
			Bucket:    getEnv("S3_BUCKET", "fatturaflow"),
			UseSSL:    getEnv("S3_USE_SSL", "false") == "true",
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
		},
		OpenAI: OpenAIConfig{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			Timeout:     time.Duration(openaiTimeout) * time.Second,
			MaxRetries:  openaiRetries,
			Temperature: 0.1,
		},
		Registry: RegistryConfig{
			BaseURL:    getEnv("REGISTRY_BASE_URL", ""),
			Timeout:    time.Duration(registryTimeout) * time.Second,
			MaxRetries: registryRetries,
		},
		Import: ImportConfig{
			DefaultDirection: getEnv("IMPORT_DEFAULT_DIRECTION", "passive"),
			FallbackWorkers:  fallbackWorkers,
			MaxZipEntries:    maxZipEntries,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
