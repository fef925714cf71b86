package config

import (
	"errors"
	"fmt"
	"log"
	"os"

	"automod-bot/model"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables (.env supported) and
// the optional data/automod.yaml tuning file.
func Load() (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("BOT_TOKEN environment variable not set")
	}

	logChannelID := os.Getenv("LOG_CHANNEL_ID")
	if logChannelID == "" {
		log.Println("Warning: LOG_CHANNEL_ID not set, channel logging will be disabled")
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "data/automod.db"
	}

	cfg := &model.Config{
		BotToken:     token,
		AppID:        os.Getenv("APP_ID"),
		LogChannelID: logChannelID,
		DBPath:       dbPath,
	}

	if err := loadTuning(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadTuning reads detector thresholds and scheduler limits from
// data/automod.yaml, falling back to built-in defaults when the file is
// missing.
func loadTuning(cfg *model.Config) error {
	v := viper.New()
	v.SetConfigName("automod")
	v.SetConfigType("yaml")
	v.AddConfigPath("data")

	v.SetDefault("automod.repeat_threshold", 3)
	v.SetDefault("automod.link_threshold", 3)
	v.SetDefault("automod.mention_threshold", 5)
	v.SetDefault("automod.caps_ratio", 0.7)
	v.SetDefault("automod.caps_min_length", 15)
	v.SetDefault("automod.scan_limit", 200)
	v.SetDefault("scheduler.max_pending", 100)
	v.SetDefault("scheduler.result_max_length", 200)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read automod.yaml: %w", err)
		}
		log.Println("Warning: data/automod.yaml not found, using default thresholds")
	}

	if err := v.UnmarshalKey("automod", &cfg.Automod); err != nil {
		return fmt.Errorf("failed to parse automod settings: %w", err)
	}
	if err := v.UnmarshalKey("scheduler", &cfg.Scheduler); err != nil {
		return fmt.Errorf("failed to parse scheduler settings: %w", err)
	}
	return nil
}
