package config

import (
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR,default=:8080"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	MySQLDSN string `env:"MYSQL_DSN,default=user:password@tcp(127.0.0.1:3306)/civichub?charset=utf8mb4&parseTime=True"`

	RedisAddr     string `env:"REDIS_ADDR,default=127.0.0.1:6379"`
	RedisPassword string `env:"REDIS_PASSWORD,default="`
	RedisDB       int    `env:"REDIS_DB,default=0"`

	KafkaBrokers string `env:"KAFKA_BROKERS,default="` // 逗号分隔，为空则不启用事件投递
	KafkaTopic   string `env:"KAFKA_TOPIC,default=civichub.membership"`

	JWTAccessSecret  string `env:"JWT_ACCESS_SECRET,default="`
	JWTRefreshSecret string `env:"JWT_REFRESH_SECRET,default="`

	SMTPHost     string `env:"SMTP_HOST,default="`
	SMTPPort     int    `env:"SMTP_PORT,default=587"`
	SMTPUsername string `env:"SMTP_USERNAME,default="`
	SMTPPassword string `env:"SMTP_PASSWORD,default="`
	SMTPFrom     string `env:"SMTP_FROM,default=CivicHub <no-reply@civichub.local>"`
}

// Load 读取 .env（存在则加载）再从环境变量解码
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) KafkaBrokerList() []string {
	if c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
