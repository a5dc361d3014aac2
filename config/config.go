package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration. Values come from environment
// variables named FM_<SECTION>_<KEY> (for example FM_SERVER_HTTP_PORT);
// command-line flags override them in main.
type Config struct {
	Server  ServerConfig
	Browse  BrowseConfig
	Tasks   TaskConfig
	Logging LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host      string `envconfig:"HTTP_HOST" default:"127.0.0.1"`
	Port      string `envconfig:"HTTP_PORT" default:"8080"`
	// Templates is the directory holding index.html.tmpl.
	Templates string `envconfig:"TEMPLATE_DIR" default:"."`
	UploadDir string `envconfig:"UPLOAD_DIR" default:"./uploads"`
}

// BrowseConfig holds browsing and startup behaviour.
type BrowseConfig struct {
	StartPath string `envconfig:"START_PATH" default:"/"`
	Journal   string `envconfig:"JOURNAL_FILE" default:"modifications.jsonl"`
	Elevate   bool   `envconfig:"ELEVATE" default:"false"`
	// Write enables the actions that change the filesystem.
	Write     bool   `envconfig:"WRITE" default:"false"`
}

// TaskConfig sizes the background task pool.
type TaskConfig struct {
	Workers   int `envconfig:"TASK_WORKERS" default:"0"`
	QueueSize int `envconfig:"TASK_QUEUE" default:"16"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
	ErrorFile   string `envconfig:"LOG_FILE" default:"file_manager.log"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("FM", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
