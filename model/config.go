package model

import "time"

// Config 对应于 config.yaml 的顶级结构
type Config struct {
	Token     string    `mapstructure:"TOKEN"`
	Commands  Commands  `mapstructure:"commands"`
	Queue     Queue     `mapstructure:"queue"`
	Database  Database  `mapstructure:"database"`
	Log       Log       `mapstructure:"log"`
	Redis     Redis     `mapstructure:"redis"`
	Metrics   Metrics   `mapstructure:"metrics"`
	Reconcile Reconcile `mapstructure:"reconcile"`
}

// Commands 对应 "commands" 部分
type Commands struct {
	Allowguils []string `mapstructure:"allowguils"`
	Auth       Auth     `mapstructure:"auth"`
}

// Auth 对应 "auth" 部分
type Auth struct {
	Developers   []string `mapstructure:"Developers"`
	CouncilRoles []string `mapstructure:"CouncilRoles"`
}

// Queue holds the channels and thresholds of the suggestion queue.
type Queue struct {
	SuggestionsChannelID    string `mapstructure:"suggestions_channel_id"`
	SuggestionsLogChannelID string `mapstructure:"suggestions_log_channel_id"`
	ReviewChannelID         string `mapstructure:"review_channel_id"`
	PublicChannelID         string `mapstructure:"public_channel_id"`
	ChangelogChannelID      string `mapstructure:"changelog_channel_id"`
	LogChannelID            string `mapstructure:"log_channel_id"`
	BufferGuildID           string `mapstructure:"buffer_guild_id"`

	// ApproveEmoji and DenyEmoji are a unicode emoji or a custom one as "name:id" / "<:name:id>".
	ApproveEmoji string `mapstructure:"approve_emoji"`
	DenyEmoji    string `mapstructure:"deny_emoji"`

	RequiredVotes      int           `mapstructure:"required_votes"`
	RequiredDifference int           `mapstructure:"required_difference"`
	CompareTimeout     time.Duration `mapstructure:"compare_timeout"`
	VerboseCompare     bool          `mapstructure:"verbose_compare"`
	MaxNoteLength      int           `mapstructure:"max_note_length"`
	MaxAssetBytes      int           `mapstructure:"max_asset_bytes"`
}

type Database struct {
	Path string `mapstructure:"path"`
}

type Log struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

type Metrics struct {
	Addr string `mapstructure:"addr"`
}

type Reconcile struct {
	Spec string `mapstructure:"spec"`
}
