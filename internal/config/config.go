package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	ListOrderInsertion = "insertion"
	ListOrderStartDate = "start_date"
)

type Config struct {
	HTTPAddr       string
	RequestTimeout time.Duration
	CORSOrigins    string

	DBDriver    string
	DatabaseURL string

	JWTSecret string
	JWTTTL    time.Duration

	TelegramToken string
	TelegramDebug bool

	BaseAdminEmail    string
	BaseAdminPassword string

	// Блокируют ли отклоненные заявки новые заявки на те же даты
	RejectedBlocksOverlap bool
	AbsenceListOrder      string

	RedisURL       string
	LoginRateLimit int

	// JSON производственного календаря, загружается при старте
	NonWorkingDaysFile string
}

var instance *Config
var once sync.Once

// GetConfig загружает конфиг один раз; при ошибке завершает процесс
func GetConfig() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			logrus.Warnf("no .env file loaded: %s", err.Error())
		}

		cfg, err := Load()
		if err != nil {
			logrus.Fatalf("error loading config: %s", err.Error())
		}
		instance = cfg
	})

	return instance
}

// Load читает конфиг из переменных окружения
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:              getEnv("HTTP_ADDR", ":8000"),
		RequestTimeout:        getEnvAsDuration("REQUEST_TIMEOUT", 5*time.Second),
		CORSOrigins:           getEnv("CORS_ORIGINS", "*"),
		DBDriver:              strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DatabaseURL:           getEnv("DATABASE_URL", "absences.db"),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		JWTTTL:                getEnvAsDuration("JWT_TTL", 24*time.Hour),
		TelegramToken:         getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramDebug:         getEnvAsBool("TELEGRAM_DEBUG", false),
		BaseAdminEmail:        getEnv("BASE_ADMIN_EMAIL", ""),
		BaseAdminPassword:     getEnv("BASE_ADMIN_PASSWORD", ""),
		RejectedBlocksOverlap: getEnvAsBool("ABSENCE_REJECTED_BLOCKS", true),
		AbsenceListOrder:      getEnv("ABSENCE_LIST_ORDER", ListOrderInsertion),
		RedisURL:              getEnv("REDIS_URL", ""),
		LoginRateLimit:        int(getEnvAsInt("LOGIN_RATE_LIMIT", 5)),
		NonWorkingDaysFile:    getEnv("NON_WORKING_DAYS_FILE", ""),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("could not get JWT_SECRET")
	}

	switch cfg.DBDriver {
	case "sqlite", "postgres", "mysql":
	default:
		return nil, errors.New("unsupported DB_DRIVER " + cfg.DBDriver)
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("could not get db url")
	}

	if cfg.AbsenceListOrder != ListOrderInsertion && cfg.AbsenceListOrder != ListOrderStartDate {
		return nil, errors.New("ABSENCE_LIST_ORDER must be insertion or start_date")
	}

	return cfg, nil
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsInt(name string, defaultVal int64) int64 {
	valStr := getEnv(name, "")
	if val, err := strconv.Atoi(valStr); err == nil {
		return int64(val)
	}

	return defaultVal
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valStr := getEnv(name, "")
	if val, err := time.ParseDuration(valStr); err == nil {
		return val
	}

	return defaultVal
}
