package config

import (
	"github.com/garyjia/ledger-auditor/internal/container"
)

// ToContainerConfig converts the application Config to a container.Config.
// This provides a bridge between the file-based config loaded by viper
// and the container's configuration structure.
func (c *Config) ToContainerConfig() (*container.Config, error) {
	location, err := c.Schedule.Location()
	if err != nil {
		return nil, err
	}

	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
		},
		Lark: container.LarkConfig{
			AppID:     c.Lark.AppID,
			AppSecret: c.Lark.AppSecret,
			ChatID:    c.Lark.ChatID,
		},
		OpenAI: container.OpenAIConfig{
			APIKey:      c.OpenAI.APIKey,
			Model:       c.OpenAI.Model,
			PromptsPath: c.OpenAI.PromptsPath,
		},
		Audit: container.AuditConfig{
			Initial:          c.Audit.AuditConfiguration,
			CategoryAverages: c.Audit.Averages(),
		},
		Schedule: container.ScheduleConfig{
			DailyCron:        c.Schedule.DailyCron,
			WeeklyCron:       c.Schedule.WeeklyCron,
			Location:         location,
			QueueSize:        c.Schedule.QueueSize,
			ClassifyInterval: c.Schedule.ClassifyInterval,
		},
		Server: container.ServerConfig{
			Host:         c.Server.Host,
			Port:         c.Server.Port,
			ReadTimeout:  c.Server.ReadTimeout,
			WriteTimeout: c.Server.WriteTimeout,
		},
	}, nil
}
