package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"blobqueue/model"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("queue.required_votes", 10)
	v.SetDefault("queue.required_difference", 5)
	v.SetDefault("queue.compare_timeout", 60*time.Second)
	v.SetDefault("queue.verbose_compare", false)
	v.SetDefault("queue.max_note_length", 1000)
	v.SetDefault("queue.max_asset_bytes", 261888)
	v.SetDefault("queue.approve_emoji", "✅")
	v.SetDefault("queue.deny_emoji", "❌")
	v.SetDefault("database.path", "./data/blobqueue.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("redis.channel", "blobqueue:events")
	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("reconcile.spec", "@every 10m")
}

// LoadConfig 读取配置文件 (config.yaml), 环境变量优先
// An empty path searches the working directory.
func LoadConfig(path string) (*model.Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg model.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings the queue cannot run without.
func Validate(cfg *model.Config) error {
	var errs []error
	if cfg.Token == "" {
		errs = append(errs, errors.New("TOKEN is required"))
	}

	q := cfg.Queue
	required := map[string]string{
		"queue.suggestions_channel_id": q.SuggestionsChannelID,
		"queue.review_channel_id":      q.ReviewChannelID,
		"queue.public_channel_id":      q.PublicChannelID,
		"queue.buffer_guild_id":        q.BufferGuildID,
	}
	for key, val := range required {
		if val == "" {
			errs = append(errs, fmt.Errorf("%s is required", key))
		}
	}

	if q.RequiredVotes < 1 {
		errs = append(errs, errors.New("queue.required_votes must be positive"))
	}
	if q.RequiredDifference < 1 {
		errs = append(errs, errors.New("queue.required_difference must be positive"))
	}
	if q.CompareTimeout <= 0 {
		errs = append(errs, errors.New("queue.compare_timeout must be positive"))
	}
	return errors.Join(errs...)
}
