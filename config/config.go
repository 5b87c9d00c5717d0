package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config is the service configuration, read from the environment and an
// optional .env file.
type Config struct {
	Port           string
	APIURL         string
	APITimeout     time.Duration
	JWTSecret      string
	SessionTTL     time.Duration
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	ProfileDir     string
	SaleColor      string
	SaleRate       float64
	DebounceDelay  time.Duration
	AllowedOrigins []string
	OrderRate      float64
	LogLevel       string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", ":8080")
	v.SetDefault("API_URL", "http://localhost:4000")
	v.SetDefault("API_TIMEOUT", "10s")
	v.SetDefault("JWT_SECRET", "your_secret_key")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("PROFILE_DIR", "data/profiles")
	v.SetDefault("SALE_COLOR", "Black")
	v.SetDefault("SALE_RATE", 0.7)
	v.SetDefault("DEBOUNCE_DELAY", "500ms")
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("ORDER_RATE", 5)
	v.SetDefault("LOG_LEVEL", "info")
}

// Load reads .env if present, then the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		zap.L().Info("no .env file found; using system environment")
	}
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) Config {
	port := v.GetString("PORT")
	if port != "" && port[0] != ':' {
		port = ":" + port
	}

	var origins []string
	for _, o := range strings.Split(v.GetString("ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return Config{
		Port:           port,
		APIURL:         strings.TrimRight(v.GetString("API_URL"), "/"),
		APITimeout:     v.GetDuration("API_TIMEOUT"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		SessionTTL:     v.GetDuration("SESSION_TTL"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		RedisDB:        v.GetInt("REDIS_DB"),
		ProfileDir:     v.GetString("PROFILE_DIR"),
		SaleColor:      v.GetString("SALE_COLOR"),
		SaleRate:       v.GetFloat64("SALE_RATE"),
		DebounceDelay:  v.GetDuration("DEBOUNCE_DELAY"),
		AllowedOrigins: origins,
		OrderRate:      v.GetFloat64("ORDER_RATE"),
		LogLevel:       v.GetString("LOG_LEVEL"),
	}
}

// Logger builds the production logger at the configured level.
func (c Config) Logger() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(c.LogLevel); err == nil {
		zc.Level = lvl
	}
	return zc.Build()
}
