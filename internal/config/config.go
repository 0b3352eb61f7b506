package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/garyjia/ledger-auditor/internal/domain/entity"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Lark     LarkConfig     `mapstructure:"lark"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Audit    AuditConfig    `mapstructure:"audit"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// LarkConfig holds Lark bot configuration. Notifications are only logged
// when the credentials are left empty.
type LarkConfig struct {
	AppID     string `mapstructure:"app_id"`
	AppSecret string `mapstructure:"app_secret"`
	ChatID    string `mapstructure:"chat_id"`
}

// Enabled reports whether Lark credentials were supplied
func (c LarkConfig) Enabled() bool {
	return c.AppID != "" && c.AppSecret != ""
}

// OpenAIConfig holds OpenAI API configuration. The keyword classifier is
// used when no API key is set.
type OpenAIConfig struct {
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	PromptsPath string `mapstructure:"prompts_path"`
}

// AuditConfig is the initial audit configuration plus the reference averages
// used for categories with too little history
type AuditConfig struct {
	entity.AuditConfiguration `mapstructure:",squash"`
	CategoryAverages          map[string]float64 `mapstructure:"category_averages"`
}

// ScheduleConfig holds the background worker settings
type ScheduleConfig struct {
	DailyCron        string        `mapstructure:"daily_cron"`
	WeeklyCron       string        `mapstructure:"weekly_cron"`
	Timezone         string        `mapstructure:"timezone"`
	QueueSize        int           `mapstructure:"queue_size"`
	ClassifyInterval time.Duration `mapstructure:"classify_interval"`
}

// Location resolves the configured timezone, defaulting to local time
func (c ScheduleConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(cfg.Audit.CategoryAverages) == 0 {
		cfg.Audit.CategoryAverages = DefaultCategoryAverages()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	v.SetDefault("database.path", "data/ledger.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("openai.model", "gpt-4o-mini")

	defaults := entity.DefaultAuditConfiguration()
	v.SetDefault("audit.frequency", string(defaults.Frequency))
	v.SetDefault("audit.validation_level", string(defaults.ValidationLevel))
	v.SetDefault("audit.apply_corrections_automatically", defaults.ApplyCorrectionsAutomatically)
	v.SetDefault("audit.notify_on_inconsistency", defaults.NotifyOnInconsistency)
	v.SetDefault("audit.confidence_threshold", defaults.ConfidenceThreshold)
	v.SetDefault("audit.persist_history", defaults.PersistHistory)
	v.SetDefault("audit.use_ai", defaults.UseAI)

	v.SetDefault("schedule.daily_cron", "0 2 * * *")
	v.SetDefault("schedule.weekly_cron", "0 3 * * 1")
	v.SetDefault("schedule.queue_size", 64)
	v.SetDefault("schedule.classify_interval", time.Hour)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars(v *viper.Viper) {
	// Sensitive credentials from environment
	_ = v.BindEnv("lark.app_id", "LARK_APP_ID")
	_ = v.BindEnv("lark.app_secret", "LARK_APP_SECRET")
	_ = v.BindEnv("lark.chat_id", "LARK_CHAT_ID")
	_ = v.BindEnv("openai.api_key", "OPENAI_API_KEY")
}

// DefaultCategoryAverages returns the reference averages shipped with the engine
func DefaultCategoryAverages() map[string]float64 {
	return map[string]float64{
		entity.CategorySales:     5000,
		entity.CategoryPayroll:   15000,
		entity.CategorySuppliers: 3000,
		entity.CategoryTaxes:     2000,
		entity.CategoryRent:      4000,
		entity.CategoryUtilities: 800,
	}
}

var knownCategories = []string{
	entity.CategorySales,
	entity.CategoryPayroll,
	entity.CategorySuppliers,
	entity.CategoryTaxes,
	entity.CategoryRent,
	entity.CategoryUtilities,
	entity.CategoryOther,
}

// Averages returns the configured averages keyed by canonical category name.
// Viper lowercases map keys, so known categories are matched case-insensitively.
func (c AuditConfig) Averages() entity.CategoryAverages {
	averages := make(entity.CategoryAverages, len(c.CategoryAverages))
	for key, avg := range c.CategoryAverages {
		name := key
		for _, known := range knownCategories {
			if strings.EqualFold(known, key) {
				name = known
				break
			}
		}
		averages[name] = avg
	}
	return averages
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Audit.AuditConfiguration.Validate(); err != nil {
		return err
	}

	if c.Lark.Enabled() && c.Lark.ChatID == "" {
		return fmt.Errorf("lark.chat_id is required when lark credentials are set")
	}
	if c.Lark.AppID != "" && c.Lark.AppSecret == "" {
		return fmt.Errorf("lark.app_secret is required")
	}

	for category, avg := range c.Audit.CategoryAverages {
		if avg <= 0 {
			return fmt.Errorf("audit.category_averages.%s must be positive", category)
		}
	}

	if _, err := c.Schedule.Location(); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	if c.Schedule.DailyCron == "" || c.Schedule.WeeklyCron == "" {
		return fmt.Errorf("schedule.daily_cron and schedule.weekly_cron are required")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	return nil
}
