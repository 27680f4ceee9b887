package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type envVar struct {
	names []string
	set   func(c *Config, v string) error
}

func str(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

func list(field func(*Config) *[]string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = splitList(v)
		return nil
	}
}

func integer(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func duration(field func(*Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}
}

// envVars lists recognised variables. When several names map to one field
// the first one present wins; the minutes form of the token validity is
// applied before, and so overridden by, the duration form.
var envVars = []envVar{
	{[]string{"PORTFOLIO_HTTP_ADDR"}, str(func(c *Config) *string { return &c.HTTPAddr })},
	{[]string{"PORTFOLIO_GRPC_ADDR"}, str(func(c *Config) *string { return &c.GRPCAddr })},
	{[]string{"PORTFOLIO_DATABASE_DSN", "DATABASE_URL"}, str(func(c *Config) *string { return &c.DatabaseDSN })},
	{[]string{"PORTFOLIO_LOG_LEVEL"}, str(func(c *Config) *string { return &c.LogLevel })},
	{[]string{"PORTFOLIO_SHUTDOWN_TIMEOUT"}, duration(func(c *Config) *time.Duration { return &c.ShutdownTimeout })},

	{[]string{"PORTFOLIO_SECRET_KEY", "SECRET_KEY"}, str(func(c *Config) *string { return &c.SecretKey })},
	{[]string{"PORTFOLIO_ALGORITHM", "ALGORITHM"}, str(func(c *Config) *string { return &c.Algorithm })},
	{[]string{"ACCESS_TOKEN_EXPIRE_MINUTES"}, func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.AccessTokenValidity = time.Duration(n) * time.Minute
		return nil
	}},
	{[]string{"PORTFOLIO_ACCESS_TOKEN_VALIDITY"}, duration(func(c *Config) *time.Duration { return &c.AccessTokenValidity })},
	{[]string{"PORTFOLIO_BCRYPT_COST"}, integer(func(c *Config) *int { return &c.BcryptCost })},

	{[]string{"PORTFOLIO_ADMIN_USERNAME"}, str(func(c *Config) *string { return &c.AdminUsername })},
	{[]string{"PORTFOLIO_ADMIN_PASSWORD"}, str(func(c *Config) *string { return &c.AdminPassword })},
	{[]string{"PORTFOLIO_ADMIN_EMAIL"}, str(func(c *Config) *string { return &c.AdminEmail })},

	{[]string{"PORTFOLIO_CORS_ORIGINS"}, list(func(c *Config) *[]string { return &c.CORSOrigins })},
	{[]string{"PORTFOLIO_TRUSTED_PROXIES"}, list(func(c *Config) *[]string { return &c.TrustedProxies })},

	{[]string{"PORTFOLIO_RATE_LIMIT_BACKEND"}, str(func(c *Config) *string { return &c.RateLimitBackend })},
	{[]string{"PORTFOLIO_REDIS_ADDR"}, str(func(c *Config) *string { return &c.RedisAddr })},
	{[]string{"PORTFOLIO_REDIS_PASSWORD"}, str(func(c *Config) *string { return &c.RedisPassword })},
	{[]string{"PORTFOLIO_REDIS_DB"}, integer(func(c *Config) *int { return &c.RedisDB })},
	{[]string{"PORTFOLIO_REDIS_PREFIX"}, str(func(c *Config) *string { return &c.RedisPrefix })},

	{[]string{"PORTFOLIO_REVALIDATE_URL"}, str(func(c *Config) *string { return &c.RevalidateURL })},
	{[]string{"PORTFOLIO_REVALIDATE_SECRET", "REVALIDATE_SECRET"}, str(func(c *Config) *string { return &c.RevalidateSecret })},
	{[]string{"PORTFOLIO_REVALIDATE_TIMEOUT"}, duration(func(c *Config) *time.Duration { return &c.RevalidateTimeout })},

	{[]string{"PORTFOLIO_S3_ROOT_USER"}, str(func(c *Config) *string { return &c.S3RootUser })},
	{[]string{"PORTFOLIO_S3_ROOT_PASSWORD"}, str(func(c *Config) *string { return &c.S3RootPassword })},
	{[]string{"PORTFOLIO_S3_BUCKET"}, str(func(c *Config) *string { return &c.S3Bucket })},
	{[]string{"PORTFOLIO_S3_REGION"}, str(func(c *Config) *string { return &c.S3Region })},
	{[]string{"PORTFOLIO_S3_BASE_ENDPOINT"}, str(func(c *Config) *string { return &c.S3BaseEndpoint })},
}

// parseEnv overlays values from dotenvPath and the process environment. The
// process environment wins over the file; a missing file is not an error.
func parseEnv(cfg *Config, dotenvPath string) error {
	file := map[string]string{}
	if dotenvPath != "" {
		m, err := godotenv.Read(dotenvPath)
		switch {
		case err == nil:
			file = m
		case errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("read %s: %w", dotenvPath, err)
		}
	}

	lookup := func(name string) (string, bool) {
		if v, ok := os.LookupEnv(name); ok {
			return v, true
		}
		v, ok := file[name]
		return v, ok
	}

	for _, ev := range envVars {
		for _, name := range ev.names {
			v, ok := lookup(name)
			if !ok {
				continue
			}
			if err := ev.set(cfg, v); err != nil {
				return fmt.Errorf("env %s: %w", name, err)
			}
			break
		}
	}
	return nil
}

func splitList(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
