package model

// Config is the process-wide configuration loaded at startup from the
// environment and data/automod.yaml.
type Config struct {
	BotToken     string
	AppID        string
	LogChannelID string
	DBPath       string
	Automod      AutomodConfig
	Scheduler    SchedulerConfig
}

// AutomodConfig holds the default thresholds for the pattern detectors.
type AutomodConfig struct {
	RepeatThreshold  int     `mapstructure:"repeat_threshold"`
	LinkThreshold    int     `mapstructure:"link_threshold"`
	MentionThreshold int     `mapstructure:"mention_threshold"`
	CapsRatio        float64 `mapstructure:"caps_ratio"`
	CapsMinLength    int     `mapstructure:"caps_min_length"`
	ScanLimit        int     `mapstructure:"scan_limit"`
}

// SchedulerConfig bounds the deferred-task scheduler.
type SchedulerConfig struct {
	MaxPending      int `mapstructure:"max_pending"`
	ResultMaxLength int `mapstructure:"result_max_length"`
}
