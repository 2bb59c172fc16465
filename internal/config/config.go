package config

import (
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port    string
	BaseURL string
}

type SessionConfig struct {
	TTL         time.Duration
	RememberTTL time.Duration
	Secure      bool
}

type TokenConfig struct {
	Secret   string
	ResetTTL time.Duration
}

type Argon2Config struct {
	Time       uint32
	Memory     uint32
	Threads    uint8
	KeyLength  uint32
	SaltLength int
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

type UploadsConfig struct {
	Dir string
}

type Config struct {
	Server  ServerConfig
	Session SessionConfig
	Token   TokenConfig
	Argon2  Argon2Config
	SMTP    SMTPConfig
	Uploads UploadsConfig
}

// Load reads .env and environment variables into viper and returns the
// typed configuration. Environment variables override file values.
func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()
	viper.ReadInConfig()

	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("server.base_url", "BASE_URL")

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("session.ttl", "SESSION_TTL")
	viper.BindEnv("session.remember_ttl", "SESSION_REMEMBER_TTL")
	viper.BindEnv("session.secure", "SESSION_SECURE")

	viper.BindEnv("token.secret", "TOKEN_SECRET")
	viper.BindEnv("token.reset_ttl", "TOKEN_RESET_TTL")

	viper.BindEnv("argon2.time", "ARGON2_TIME")
	viper.BindEnv("argon2.memory", "ARGON2_MEMORY")
	viper.BindEnv("argon2.threads", "ARGON2_THREADS")
	viper.BindEnv("argon2.key_length", "ARGON2_KEY_LENGTH")
	viper.BindEnv("argon2.salt_length", "ARGON2_SALT_LENGTH")

	viper.BindEnv("smtp.host", "SMTP_HOST")
	viper.BindEnv("smtp.port", "SMTP_PORT")
	viper.BindEnv("smtp.username", "SMTP_USERNAME")
	viper.BindEnv("smtp.password", "SMTP_PASSWORD")
	viper.BindEnv("smtp.sender", "SMTP_SENDER")

	viper.BindEnv("uploads.dir", "UPLOADS_DIR")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("session.ttl", 24*time.Hour)
	viper.SetDefault("session.remember_ttl", 30*24*time.Hour)
	viper.SetDefault("session.secure", false)
	viper.SetDefault("token.secret", "development")
	viper.SetDefault("token.reset_ttl", 1800*time.Second)
	viper.SetDefault("argon2.time", 1)
	viper.SetDefault("argon2.memory", 64*1024)
	viper.SetDefault("argon2.threads", 4)
	viper.SetDefault("argon2.key_length", 32)
	viper.SetDefault("argon2.salt_length", 16)
	viper.SetDefault("smtp.host", "localhost")
	viper.SetDefault("smtp.port", 587)
	viper.SetDefault("smtp.sender", "Budgetbook <no-reply@budgetbook.local>")
	viper.SetDefault("uploads.dir", "./static/profile-images")

	return &Config{
		Server: ServerConfig{
			Port:    viper.GetString("server.port"),
			BaseURL: viper.GetString("server.base_url"),
		},
		Session: SessionConfig{
			TTL:         viper.GetDuration("session.ttl"),
			RememberTTL: viper.GetDuration("session.remember_ttl"),
			Secure:      viper.GetBool("session.secure"),
		},
		Token: TokenConfig{
			Secret:   viper.GetString("token.secret"),
			ResetTTL: viper.GetDuration("token.reset_ttl"),
		},
		Argon2: Argon2Config{
			Time:       viper.GetUint32("argon2.time"),
			Memory:     viper.GetUint32("argon2.memory"),
			Threads:    uint8(viper.GetUint("argon2.threads")),
			KeyLength:  viper.GetUint32("argon2.key_length"),
			SaltLength: viper.GetInt("argon2.salt_length"),
		},
		SMTP: SMTPConfig{
			Host:     viper.GetString("smtp.host"),
			Port:     viper.GetInt("smtp.port"),
			Username: viper.GetString("smtp.username"),
			Password: viper.GetString("smtp.password"),
			Sender:   viper.GetString("smtp.sender"),
		},
		Uploads: UploadsConfig{
			Dir: viper.GetString("uploads.dir"),
		},
	}
}
