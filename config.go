package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DataPath    string `yaml:"data_path"`
	DBPath      string `yaml:"db_path"`
	CuratorPath string `yaml:"curator_path"`
	Timezone    string `yaml:"timezone"`

	FeedPageSize               int `yaml:"feed_page_size"`
	ExternalHTTPTimeoutSeconds int `yaml:"external_http_timeout_seconds"`

	HarvestSchedule string `yaml:"harvest_schedule"`
	HarvestLimit    int    `yaml:"harvest_limit"`

	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	LLMModel        string `yaml:"llm_model"`
	LLMBatchSize    int    `yaml:"llm_batch_size"`

	SlackBotToken   string `yaml:"slack_bot_token"`
	ReviewChannelID string `yaml:"review_channel_id"`

	Location *time.Location `yaml:"-"`
}

func LoadConfig() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg := &Config{}

	data, err := os.ReadFile(configPath)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Fatalf("Failed to parse config file %s: %v", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("Failed to read config file %s: %v", configPath, err)
	}

	// Environment variables override file values
	envOverride(&cfg.DataPath, "DATA_PATH")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.CuratorPath, "CURATOR_PATH")
	envOverride(&cfg.Timezone, "TIMEZONE")
	envOverrideInt(&cfg.FeedPageSize, "FEED_PAGE_SIZE")
	envOverrideInt(&cfg.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS")
	envOverride(&cfg.HarvestSchedule, "HARVEST_SCHEDULE")
	envOverrideInt(&cfg.HarvestLimit, "HARVEST_LIMIT")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverrideInt(&cfg.LLMBatchSize, "LLM_BATCH_SIZE")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.ReviewChannelID, "REVIEW_CHANNEL_ID")

	// Defaults
	if cfg.DataPath == "" {
		cfg.DataPath = "./data/doom.json"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./doomscroll.db"
	}
	if cfg.CuratorPath == "" {
		cfg.CuratorPath = "./curator.txt"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}
	if cfg.FeedPageSize == 0 {
		cfg.FeedPageSize = 10
	}
	if cfg.ExternalHTTPTimeoutSeconds == 0 {
		cfg.ExternalHTTPTimeoutSeconds = int(defaultExternalHTTPTimeout / time.Second)
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = defaultLLMModel
	}
	if cfg.LLMBatchSize == 0 {
		cfg.LLMBatchSize = 20
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("Invalid timezone %q: %v", cfg.Timezone, err)
	}
	cfg.Location = loc

	if cfg.FeedPageSize < 1 {
		log.Fatalf("feed_page_size must be positive, got %d", cfg.FeedPageSize)
	}
	if cfg.HarvestLimit < 0 {
		log.Fatalf("harvest_limit must not be negative, got %d", cfg.HarvestLimit)
	}

	return cfg
}

// LLMConfigured reports whether harvest runs can call the categorizer.
// Without a key the keyword guesser handles categories on its own.
func (c *Config) LLMConfigured() bool {
	return c.AnthropicAPIKey != ""
}

// SlackConfigured reports whether harvest summaries go to a review channel.
func (c *Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.ReviewChannelID != ""
}

func envOverride(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func envOverrideInt(target *int, key string) {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("Invalid value for %s: %q", key, v)
		}
		*target = n
	}
}
