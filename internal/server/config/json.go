package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/portfolio/internal/flagx"
	"github.com/dmitrijs2005/portfolio/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so that both "30m" and integer nanoseconds are accepted.
// Absent or zero fields leave the current value alone.
type JsonConfig struct {
	HTTPAddr        string         `json:"http_addr"`
	GRPCAddr        string         `json:"grpc_addr"`
	DatabaseDSN     string         `json:"database_dsn"`
	LogLevel        string         `json:"log_level"`
	ShutdownTimeout timex.Duration `json:"shutdown_timeout"`

	SecretKey           string         `json:"secret_key"`
	Algorithm           string         `json:"algorithm"`
	AccessTokenValidity timex.Duration `json:"access_token_validity"`
	BcryptCost          int            `json:"bcrypt_cost"`

	AdminUsername string `json:"admin_username"`
	AdminPassword string `json:"admin_password"`
	AdminEmail    string `json:"admin_email"`

	CORSOrigins    []string `json:"cors_origins"`
	TrustedProxies []string `json:"trusted_proxies"`

	RateLimitBackend string `json:"rate_limit_backend"`
	RedisAddr        string `json:"redis_addr"`
	RedisPassword    string `json:"redis_password"`
	RedisDB          int    `json:"redis_db"`
	RedisPrefix      string `json:"redis_prefix"`

	RevalidateURL     string         `json:"revalidate_url"`
	RevalidateSecret  string         `json:"revalidate_secret"`
	RevalidateTimeout timex.Duration `json:"revalidate_timeout"`

	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
}

// parseJson loads the file named by -c/-config, if any, and overlays its
// non-zero values onto config.
func parseJson(config *Config) error {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	c.apply(config)
	return nil
}

func (c *JsonConfig) apply(config *Config) {
	setStr(&config.HTTPAddr, c.HTTPAddr)
	setStr(&config.GRPCAddr, c.GRPCAddr)
	setStr(&config.DatabaseDSN, c.DatabaseDSN)
	setStr(&config.LogLevel, c.LogLevel)
	setDur(&config.ShutdownTimeout, c.ShutdownTimeout)

	setStr(&config.SecretKey, c.SecretKey)
	setStr(&config.Algorithm, c.Algorithm)
	setDur(&config.AccessTokenValidity, c.AccessTokenValidity)
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}

	setStr(&config.AdminUsername, c.AdminUsername)
	setStr(&config.AdminPassword, c.AdminPassword)
	setStr(&config.AdminEmail, c.AdminEmail)

	if c.CORSOrigins != nil {
		config.CORSOrigins = c.CORSOrigins
	}
	if c.TrustedProxies != nil {
		config.TrustedProxies = c.TrustedProxies
	}

	setStr(&config.RateLimitBackend, c.RateLimitBackend)
	setStr(&config.RedisAddr, c.RedisAddr)
	setStr(&config.RedisPassword, c.RedisPassword)
	if c.RedisDB != 0 {
		config.RedisDB = c.RedisDB
	}
	setStr(&config.RedisPrefix, c.RedisPrefix)

	setStr(&config.RevalidateURL, c.RevalidateURL)
	setStr(&config.RevalidateSecret, c.RevalidateSecret)
	setDur(&config.RevalidateTimeout, c.RevalidateTimeout)

	setStr(&config.S3RootUser, c.S3RootUser)
	setStr(&config.S3RootPassword, c.S3RootPassword)
	setStr(&config.S3Bucket, c.S3Bucket)
	setStr(&config.S3Region, c.S3Region)
	setStr(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setStr(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDur(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
