package config

import (
	"time"

	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application"
)

var (
	bizConfig *TodoConfig
)

func GetBizConfig() *TodoConfig {
	return bizConfig
}

// TodoConfig 业务配置, 由 loader 从 app 配置的 biz_config 子树填充。
type TodoConfig struct {
	Datasource string          `yaml:"datasource" json:"datasource"`
	Search     SearchConfig    `yaml:"search" json:"search"`
	Auth       AuthConfig      `yaml:"auth" json:"auth"`
	RateLimit  RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
	Events     EventsConfig    `yaml:"events" json:"events"`
}

type SearchConfig struct {
	CacheCapacity int           `yaml:"cache_capacity" json:"cache_capacity"`
	CacheTTL      time.Duration `yaml:"cache_ttl" json:"cache_ttl"`
}

type AuthConfig struct {
	Secret      string   `yaml:"secret" json:"secret"`
	TokenTTL    string   `yaml:"token_ttl" json:"token_ttl"`
	PublicPaths []string `yaml:"public_paths" json:"public_paths"`
}

type RateLimitConfig struct {
	Enabled    bool  `yaml:"enabled" json:"enabled"`
	DailyLimit int64 `yaml:"daily_limit" json:"daily_limit"`
}

type EventsConfig struct {
	Enabled       bool   `yaml:"enabled" json:"enabled"`
	ChannelPrefix string `yaml:"channel_prefix" json:"channel_prefix"`
}

func init() {
	bizConfig = &TodoConfig{}
	app := application.GetApp()
	app.SetBizConfig(bizConfig)
}
