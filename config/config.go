package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DatabaseURL    string
	DBHost         string
	DBPort         string
	DBName         string
	DBUser         string
	DBPassword     string
	DBCharset      string
	DBSSLMode      string
	DBMaxOpenConns int
	DBMaxIdleConns int

	ServerPort string
	StaticDir  string

	// TokenLength is the length of issued bearer tokens in hex characters.
	TokenLength int

	UploadDirs        map[string]string
	AllowedExtensions []string
	MaxUploadSize     int64

	LogLevel  string
	LogFormat string
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBName:      getEnv("DB_NAME", "taskboard"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBCharset:   getEnv("DB_CHARSET", "UTF8"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		StaticDir:   os.Getenv("STATIC_DIR"),
		UploadDirs: map[string]string{
			"projects": getEnv("UPLOAD_PROJECTS_DIR", "uploads/projects"),
			"tasks":    getEnv("UPLOAD_TASKS_DIR", "uploads/tasks"),
		},
		AllowedExtensions: splitList(getEnv("UPLOAD_ALLOWED_EXTENSIONS", "jpg,jpeg,png,gif,webp")),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.TokenLength, err = getEnvInt("TOKEN_LENGTH", 40); err != nil {
		return nil, err
	}
	if cfg.TokenLength <= 0 {
		return nil, fmt.Errorf("TOKEN_LENGTH must be positive, got %d", cfg.TokenLength)
	}
	if cfg.DBMaxOpenConns, err = getEnvInt("DB_MAX_OPEN_CONNS", 25); err != nil {
		return nil, err
	}
	if cfg.DBMaxIdleConns, err = getEnvInt("DB_MAX_IDLE_CONNS", 5); err != nil {
		return nil, err
	}
	maxSize, err := getEnvInt("UPLOAD_MAX_SIZE", 5*1024*1024)
	if err != nil {
		return nil, err
	}
	cfg.MaxUploadSize = int64(maxSize)

	return cfg, nil
}

// DSN returns the postgres connection string. DATABASE_URL wins over the
// individual DB_* settings.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme: "postgresql",
		Host:   c.DBHost + ":" + c.DBPort,
		Path:   "/" + c.DBName,
	}
	if c.DBPassword != "" {
		u.User = url.UserPassword(c.DBUser, c.DBPassword)
	} else {
		u.User = url.User(c.DBUser)
	}
	q := url.Values{}
	q.Set("sslmode", c.DBSSLMode)
	if c.DBCharset != "" {
		q.Set("client_encoding", c.DBCharset)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(part), ".")))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
