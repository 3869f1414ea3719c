package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

type Config struct {
	ServerAddr   string
	MySQLDSN     string
	RedisAddr    string
	KafkaBrokers []string
	JWTSecret    string
	Gemini       GeminiConfig
}

// Load reads configuration from the environment with local defaults so the
// service can run against a docker-compose stack without any setup.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_ADDR", ":8080")
	v.SetDefault("MYSQL_DSN", "root:@tcp(127.0.0.1:3306)/grocery-db?parseTime=true")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092,localhost:9093,localhost:9094")
	v.SetDefault("JWT_SECRET", "secret")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("GEMINI_TIMEOUT", "60s")

	return &Config{
		ServerAddr:   v.GetString("SERVER_ADDR"),
		MySQLDSN:     v.GetString("MYSQL_DSN"),
		RedisAddr:    v.GetString("REDIS_ADDR"),
		KafkaBrokers: strings.Split(v.GetString("KAFKA_BROKERS"), ","),
		JWTSecret:    v.GetString("JWT_SECRET"),
		Gemini: GeminiConfig{
			APIKey:  v.GetString("GEMINI_API_KEY"),
			Model:   v.GetString("GEMINI_MODEL"),
			Timeout: v.GetDuration("GEMINI_TIMEOUT"),
		},
	}
}
