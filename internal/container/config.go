// Package container provides dependency injection and lifecycle management
// for the ledger auditor following Clean Architecture principles.
package container

import (
	"fmt"
	"time"

	"github.com/garyjia/ledger-auditor/internal/domain/entity"
)

// Config holds all configuration for the Container.
// It aggregates configurations for all subsystems.
type Config struct {
	Database DatabaseConfig
	Lark     LarkConfig
	OpenAI   OpenAIConfig
	Audit    AuditConfig
	Schedule ScheduleConfig
	Server   ServerConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file, or database.MemoryPath
	Path string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// LarkConfig holds Lark bot settings. An empty AppID disables Lark delivery.
type LarkConfig struct {
	AppID     string
	AppSecret string

	// ChatID is the group chat that receives audit notifications
	ChatID string
}

// OpenAIConfig holds OpenAI API settings. An empty APIKey selects the keyword classifier.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	PromptsPath string
}

// AuditConfig seeds the configuration store and the reference averages.
type AuditConfig struct {
	Initial          entity.AuditConfiguration
	CategoryAverages entity.CategoryAverages
}

// ScheduleConfig holds background worker settings.
type ScheduleConfig struct {
	DailyCron  string
	WeeklyCron string
	Location   *time.Location

	// QueueSize bounds the real-time batch queue
	QueueSize int

	// ClassifyInterval is the period of the classification sweep; zero disables it
	ClassifyInterval time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            "data/ledger.db",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Audit: AuditConfig{
			Initial:          entity.DefaultAuditConfiguration(),
			CategoryAverages: entity.CategoryAverages{},
		},
		Schedule: ScheduleConfig{
			DailyCron:        "0 2 * * *",
			WeeklyCron:       "0 3 * * 1",
			Location:         time.Local,
			QueueSize:        64,
			ClassifyInterval: time.Hour,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Lark.AppID != "" {
		if c.Lark.AppSecret == "" {
			return fmt.Errorf("lark.app_secret is required")
		}
		if c.Lark.ChatID == "" {
			return fmt.Errorf("lark.chat_id is required")
		}
	}

	if err := c.Audit.Initial.Validate(); err != nil {
		return err
	}

	if c.Schedule.DailyCron == "" || c.Schedule.WeeklyCron == "" {
		return fmt.Errorf("schedule cron expressions are required")
	}

	return nil
}
