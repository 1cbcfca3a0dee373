package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Telegram Telegram
	Gemini   Gemini
	Store    Store
	Server   Server
}

type Telegram struct {
	Token string
	// AdminIDs is the allow-list of Telegram user ids permitted to run /collect.
	AdminIDs []int64
}

type Gemini struct {
	ApiKey  string
	Model   string
	Timeout time.Duration
}

type Store struct {
	Path string
}

type Server struct {
	Port string
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("LOG_FILE_PATH", "ir_homework_log.csv")
	viper.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	viper.SetDefault("GEMINI_TIMEOUT_SECONDS", 60)
	viper.SetDefault("SERVER_PORT", "8080")

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Telegram.Token = viper.GetString("TELEGRAM_BOT_TOKEN")
	config.Gemini.ApiKey = viper.GetString("GEMINI_API_KEY")
	config.Gemini.Model = viper.GetString("GEMINI_MODEL")
	config.Gemini.Timeout = time.Duration(viper.GetInt("GEMINI_TIMEOUT_SECONDS")) * time.Second
	config.Store.Path = viper.GetString("LOG_FILE_PATH")
	config.Server.Port = viper.GetString("SERVER_PORT")

	adminIDs, err := parseAdminIDs(viper.GetString("ADMIN_IDS"))
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS: %w", err)
	}
	config.Telegram.AdminIDs = adminIDs

	if config.Telegram.Token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN must be set")
	}
	if config.Gemini.ApiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY must be set")
	}

	log.Info().
		Str("store_path", config.Store.Path).
		Str("gemini_model", config.Gemini.Model).
		Dur("gemini_timeout", config.Gemini.Timeout).
		Int("admin_ids", len(config.Telegram.AdminIDs)).
		Str("server_port", config.Server.Port).
		Msg("Config loaded")
	return &config, nil
}

func parseAdminIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid admin id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
