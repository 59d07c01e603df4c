// Package config resolves runtime settings from .env, an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"hospitality/utils"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port           string   `yaml:"port"`
	MongoURI       string   `yaml:"mongoUri"`
	MongoDB        string   `yaml:"mongoDb"`
	RedisAddr      string   `yaml:"redisAddr"`
	RedisPassword  string   `yaml:"redisPassword"`
	RedisDB        int      `yaml:"redisDb"`
	CacheTTL       int      `yaml:"cacheTtlSeconds"`
	PublicBaseURL  string   `yaml:"publicBaseUrl"`
	UploadDir      string   `yaml:"uploadDir"`
	VoucherSecret  string   `yaml:"voucherSecret"`
	CORSOrigins    []string `yaml:"corsOrigins"`
	RateLimitRPS   float64  `yaml:"rateLimitRps"`
	RateLimitBurst int      `yaml:"rateLimitBurst"`
	LogLevel       string   `yaml:"logLevel"`
	LogFormat      string   `yaml:"logFormat"`
}

func Default() Config {
	return Config{
		Port:           ":8080",
		MongoURI:       "mongodb://localhost:27017",
		MongoDB:        "hospitality",
		CacheTTL:       300,
		PublicBaseURL:  "http://localhost:8080",
		UploadDir:      "static/uploads",
		CORSOrigins:    []string{"*"},
		RateLimitRPS:   5,
		RateLimitBurst: 10,
		LogLevel:       "info",
		LogFormat:      "console",
	}
}

func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// Load reads .env (if present), then the YAML file at path (if non-empty), then
// environment overrides. path defaults to $CONFIG_PATH.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if port := cfg.Port; port != "" && port[0] != ':' {
		cfg.Port = ":" + port
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"PORT":            &c.Port,
		"MONGO_URI":       &c.MongoURI,
		"MONGO_DB":        &c.MongoDB,
		"REDIS_ADDR":      &c.RedisAddr,
		"REDIS_PASSWORD":  &c.RedisPassword,
		"PUBLIC_BASE_URL": &c.PublicBaseURL,
		"UPLOAD_DIR":      &c.UploadDir,
		"VOUCHER_SECRET":  &c.VoucherSecret,
		"LOG_LEVEL":       &c.LogLevel,
		"LOG_FORMAT":      &c.LogFormat,
	}
	for key, dst := range str {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"REDIS_DB":          &c.RedisDB,
		"CACHE_TTL_SECONDS": &c.CacheTTL,
		"RATE_LIMIT_BURST":  &c.RateLimitBurst,
	}
	for key, dst := range ints {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}

	if v, ok := os.LookupEnv("RATE_LIMIT_RPS"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		c.RateLimitRPS = f
	}
	if v, ok := os.LookupEnv("CORS_ORIGINS"); ok && v != "" {
		c.CORSOrigins = utils.SplitList(v)
	}
	return nil
}
