package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	ServerPort string
	JWTSecret  string
	JWTExpiry  int

	RedisURL string

	UploadDir   string
	MaxUploadMB int

	NotifyWorkers         int
	ProjectNotifySample   int
	NotificationsPageSize int

	LogLevel  string
	LogFormat string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Warn("⚠️  No .env file found, using system environment variables")
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "tracker_user"),
		DBPassword: getEnv("DB_PASSWORD", "tracker_pass"),
		DBName:     getEnv("DB_NAME", "tracker_db"),
		ServerPort: getEnv("SERVER_PORT", "8080"),
		JWTSecret:  getEnv("JWT_SECRET", "supersecretkey"),
		JWTExpiry:  getEnvInt("JWT_EXPIRY_HOURS", 24),

		RedisURL: getEnv("REDIS_URL", ""),

		UploadDir:   getEnv("UPLOAD_DIR", "storage/attachments"),
		MaxUploadMB: getEnvInt("MAX_UPLOAD_MB", 10),

		NotifyWorkers:         getEnvInt("NOTIFY_WORKERS", 4),
		ProjectNotifySample:   getEnvInt("PROJECT_NOTIFY_SAMPLE", 5),
		NotificationsPageSize: getEnvInt("NOTIFICATIONS_PAGE_SIZE", 20),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// DSN builds the postgres connection string used by gorm.
func (c *Config) DSN() string {
	return "host=" + c.DBHost + " port=" + c.DBPort + " user=" + c.DBUser +
		" password=" + c.DBPassword + " dbname=" + c.DBName + " sslmode=disable"
}

// MigrateURL is the same database addressed for golang-migrate's pgx/v5 driver.
func (c *Config) MigrateURL() string {
	return "pgx5://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort +
		"/" + c.DBName + "?sslmode=disable"
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger() *log.Logger {
	logger := log.New()
	if lvl, err := log.ParseLevel(c.LogLevel); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.Warnf("invalid LOG_LEVEL %q, using info", c.LogLevel)
	}
	if c.LogFormat == "json" {
		logger.SetFormatter(&log.JSONFormatter{})
	}
	return logger
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warnf("invalid %s=%q, using %d", key, v, defaultVal)
		return defaultVal
	}
	return n
}
