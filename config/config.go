package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Workbook   WorkbookConfig   `yaml:"workbook"`
	Machines   []string         `yaml:"machines"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// WorkbookConfig describes the interchange spreadsheet and its lock marker.
type WorkbookConfig struct {
	Path               string        `yaml:"path"`
	LockPath           string        `yaml:"lock_path"`
	LockPollMillis     int           `yaml:"lock_poll_ms"`
	LockTimeoutSeconds int           `yaml:"lock_timeout_seconds"`
	LockPoll           time.Duration `yaml:"-"` // Ignored by YAML parser
	LockTimeout        time.Duration `yaml:"-"`
	// Sheets maps mirror table names to workbook sheet names.
	Sheets map[string]string `yaml:"sheets"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"`
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// DefaultSheets is the default mirror-table → sheet-name mapping. The sheet
// names match the workbook the plant already uses, so an existing file
// imports without any configuration.
func DefaultSheets() map[string]string {
	return map[string]string{
		"stock_raw":         "Estoque MP",
		"stock_finished":    "Estoque Injetados",
		"production":        "Produção - injeção+ Zamac",
		"production_orders": "Ordens de Produção",
	}
}

// DefaultMachines is the fixed machine board shown when none are configured.
func DefaultMachines() []string {
	return []string{
		"Oriente 45", "Oriente 35", "Himaco 80", "Himaco 40",
		"Jasot", "MG", "Máq. 1 (Zamac)", "Máq. 2 (Zamac)",
	}
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "./database.db"
	}

	if cfg.Workbook.Path == "" {
		cfg.Workbook.Path = "./Indicadores_CPP1.xlsx"
	}
	if cfg.Workbook.LockPath == "" {
		cfg.Workbook.LockPath = "./.write_lock"
	}
	if cfg.Workbook.LockPollMillis <= 0 {
		cfg.Workbook.LockPollMillis = 50
	}
	cfg.Workbook.LockPoll = time.Duration(cfg.Workbook.LockPollMillis) * time.Millisecond
	if cfg.Workbook.LockTimeoutSeconds <= 0 {
		cfg.Workbook.LockTimeoutSeconds = 10
	}
	cfg.Workbook.LockTimeout = time.Duration(cfg.Workbook.LockTimeoutSeconds) * time.Second
	if len(cfg.Workbook.Sheets) == 0 {
		cfg.Workbook.Sheets = DefaultSheets()
	}

	if len(cfg.Machines) == 0 {
		cfg.Machines = DefaultMachines()
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}
