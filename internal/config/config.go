package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// CategoryRule maps one category tag to its match patterns and the Exist
// attribute the category's minutes are published under. App patterns match
// window app names, domain patterns match URL hostnames; both are
// case-insensitive substrings.
type CategoryRule struct {
	Attribute string   `mapstructure:"attribute"`
	Apps      []string `mapstructure:"apps"`
	Domains   []string `mapstructure:"domains"`
}

type FocusConfig struct {
	NoiseThresholdSeconds float64 `mapstructure:"noise_threshold_seconds"`
	SensitivityK          float64 `mapstructure:"sensitivity_k"`
	SessionBonusCapMin    float64 `mapstructure:"session_bonus_cap_minutes"`
	DeepWorkMinutes       float64 `mapstructure:"deep_work_minutes"`
	FragmentationMinutes  float64 `mapstructure:"fragmentation_minutes"`
	EmptyDayScore         float64 `mapstructure:"empty_day_score"`
}

type ActivityWatchConfig struct {
	APIBase        string `mapstructure:"api_base"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type ExistConfig struct {
	APIBase        string `mapstructure:"api_base"`
	AccessToken    string `mapstructure:"access_token"`
	ScreenTimeAttr string `mapstructure:"screen_time_attr"`
	FocusScoreAttr string `mapstructure:"focus_score_attr"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type Config struct {
	StatePath     string                  `mapstructure:"state_path"`
	BackfillDays  int                     `mapstructure:"backfill_days"`
	ActivityWatch ActivityWatchConfig     `mapstructure:"activitywatch"`
	Exist         ExistConfig             `mapstructure:"exist"`
	Focus         FocusConfig             `mapstructure:"focus"`
	Categories    map[string]CategoryRule `mapstructure:"categories"`
}

func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/awsync")
		viper.AddConfigPath("/etc/awsync/")
	}

	viper.SetEnvPrefix("AWSYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // e.g. AWSYNC_EXIST_ACCESS_TOKEN

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file not found, using defaults.")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.validate()
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("state_path", "awsync.db")
	viper.SetDefault("backfill_days", 7)

	viper.SetDefault("activitywatch.api_base", "http://localhost:5600/api/0")
	viper.SetDefault("activitywatch.timeout_seconds", 10)

	viper.SetDefault("exist.api_base", "https://exist.io/api/2")
	viper.SetDefault("exist.access_token", "")
	viper.SetDefault("exist.screen_time_attr", "screen_time")
	viper.SetDefault("exist.focus_score_attr", "focus_score")
	viper.SetDefault("exist.timeout_seconds", 15)

	viper.SetDefault("focus.noise_threshold_seconds", 5.0)
	viper.SetDefault("focus.sensitivity_k", 0.05)
	viper.SetDefault("focus.session_bonus_cap_minutes", 20.0)
	viper.SetDefault("focus.deep_work_minutes", 15.0)
	viper.SetDefault("focus.fragmentation_minutes", 2.0)
	viper.SetDefault("focus.empty_day_score", 50.0)

	viper.SetDefault("categories", map[string]CategoryRule{
		"social": {
			Attribute: "social_networks",
			Apps: []string{
				"telegram-desktop",
				"Telegram",
				"org.telegram.desktop",
				"telegramdesktop",
			},
		},
		"ai-assistant": {
			Attribute: "ai_assistants",
			Domains: []string{
				"chat.openai.com",
				"chatgpt.com",
				"gemini.google.com",
				"perplexity.ai",
				"claude.ai",
				"poe.com",
				"bard.google.com",
			},
		},
	})
}

// validate clamps obviously broken values back to their defaults so a bad
// config file degrades loudly rather than producing nonsense metrics.
func (c *Config) validate() {
	if c.Focus.NoiseThresholdSeconds < 0 {
		log.Printf("Warning: negative focus.noise_threshold_seconds, resetting to 5")
		c.Focus.NoiseThresholdSeconds = 5
	}
	if c.Focus.SensitivityK <= 0 {
		log.Printf("Warning: non-positive focus.sensitivity_k, resetting to 0.05")
		c.Focus.SensitivityK = 0.05
	}
	if c.Focus.SessionBonusCapMin < 0 {
		log.Printf("Warning: negative focus.session_bonus_cap_minutes, resetting to 20")
		c.Focus.SessionBonusCapMin = 20
	}
	if c.Focus.EmptyDayScore < 0 || c.Focus.EmptyDayScore > 100 {
		log.Printf("Warning: focus.empty_day_score %.1f outside [0,100], resetting to 50", c.Focus.EmptyDayScore)
		c.Focus.EmptyDayScore = 50
	}
	if c.BackfillDays < 1 {
		log.Println("Warning: backfill_days too low, setting to 1")
		c.BackfillDays = 1
	}
	for tag, rule := range c.Categories {
		if rule.Attribute == "" {
			log.Printf("Warning: category %q has no exist attribute, it will not be published", tag)
		}
	}
}

func (a ActivityWatchConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

func (e ExistConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

func (f FocusConfig) NoiseThreshold() time.Duration {
	return time.Duration(f.NoiseThresholdSeconds * float64(time.Second))
}
