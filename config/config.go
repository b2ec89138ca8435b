package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type SMTP struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type Config struct {
	Addr        string `yaml:"addr"`
	PublicURL   string `yaml:"public_url"`
	DatabaseURL string `yaml:"database_url"`
	JWTSecret   string `yaml:"jwt_secret"`
	StorageDir  string `yaml:"storage_dir"`
	SMTP        SMTP   `yaml:"smtp"`

	// CrossProcessNotify turns on the Postgres LISTEN/NOTIFY bridge for
	// incoming-message subscriptions. Leave off for single-process runs.
	CrossProcessNotify bool `yaml:"cross_process_notify"`
}

// Load reads the YAML file at path when it exists and then applies
// environment overrides, so deployments can keep secrets out of the file.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Addr:       ":8443",
		PublicURL:  "http://localhost:8443",
		StorageDir: "data/files",
		SMTP:       SMTP{Port: 587, From: "Red Guardián"},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg.Addr, "ADDR")
	applyEnv(&cfg.PublicURL, "PUBLIC_URL")
	applyEnv(&cfg.DatabaseURL, "DATABASE_URL")
	applyEnv(&cfg.JWTSecret, "JWT_SECRET")
	applyEnv(&cfg.StorageDir, "STORAGE_DIR")
	applyEnv(&cfg.SMTP.Host, "SMTP_HOST")
	applyEnv(&cfg.SMTP.Username, "SMTP_USERNAME")
	applyEnv(&cfg.SMTP.Password, "SMTP_PASSWORD")
	applyEnv(&cfg.SMTP.From, "SMTP_FROM")
	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", v, err)
		}
		cfg.SMTP.Port = port
	}

	return cfg, nil
}

func applyEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
