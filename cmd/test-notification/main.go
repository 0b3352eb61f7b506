package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/garyjia/ledger-auditor/internal/config"
	"github.com/garyjia/ledger-auditor/internal/container"
	"github.com/garyjia/ledger-auditor/pkg/utils"
)

// Isolated test for Lark IM message sending.
// It sends one text message to the configured chat without starting the engine.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	message := flag.String("message", "", "Message to send (defaults to a test notice)")
	timeout := flag.Duration("timeout", 15*time.Second, "API call timeout")
	flag.Parse()

	fmt.Println("=== Lark IM Notification Test ===")

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if !cfg.Lark.Enabled() {
		fmt.Fprintln(os.Stderr, "ERROR: lark.app_id and lark.app_secret are not configured (LARK_APP_ID / LARK_APP_SECRET)")
		os.Exit(1)
	}

	fmt.Printf("App ID: %s\n", mask(cfg.Lark.AppID))
	fmt.Printf("Chat ID: %s\n", cfg.Lark.ChatID)

	logger, err := utils.NewCLILogger(true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	sender, err := container.ProvideMessageSender(&container.LarkConfig{
		AppID:     cfg.Lark.AppID,
		AppSecret: cfg.Lark.AppSecret,
		ChatID:    cfg.Lark.ChatID,
	}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create sender: %v\n", err)
		os.Exit(1)
	}

	text := *message
	if text == "" {
		text = fmt.Sprintf("[LOW] Ledger auditor test\n\nNotification channel check at %s", time.Now().Format(time.RFC3339))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fmt.Println("\nSending message...")
	if err := sender.SendText(ctx, text); err != nil {
		fmt.Fprintf(os.Stderr, "✗ Failed to send message: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Message sent")
}

func mask(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
