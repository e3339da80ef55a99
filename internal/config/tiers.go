package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Tier is one premium bracket of a leaderboard. Tables are evaluated top
// down; the first tier whose Min the premium meets or exceeds wins, so a
// table must be sorted by Min descending and end at zero.
type Tier struct {
	Min   float64 `mapstructure:"min"`
	Label string  `mapstructure:"label"`
	Icon  string  `mapstructure:"icon"`
}

// Suffix is a per-row trailing icon bracket, same matching rule as Tier.
type Suffix struct {
	Min  float64 `mapstructure:"min"`
	Icon string  `mapstructure:"icon"`
}

// TierConfig holds the weekly and monthly club tables.
type TierConfig struct {
	Weekly        []Tier   `mapstructure:"weekly"`
	Monthly       []Tier   `mapstructure:"monthly"`
	WeeklySuffix  []Suffix `mapstructure:"weeklySuffix"`
	MonthlySuffix []Suffix `mapstructure:"monthlySuffix"`
}

func DefaultTierConfig() TierConfig {
	return TierConfig{
		Weekly: []Tier{
			{Min: 20000, Label: "20K CLUB", Icon: "🚀"},
			{Min: 10000, Label: "10K CLUB", Icon: "👑"},
			{Min: 5000, Label: "5K CLUB", Icon: "⭐"},
			{Min: 0.01, Label: "DBAB", Icon: "😤"},
			{Min: 0, Label: "SLACKERS", Icon: "😴"},
		},
		Monthly: []Tier{
			{Min: 40000, Label: "40K CLUB", Icon: "🚀"},
			{Min: 30000, Label: "30K CLUB", Icon: "👑"},
			{Min: 20000, Label: "20K CLUB", Icon: "⭐"},
			{Min: 10000, Label: "10K CLUB", Icon: "📈"},
			{Min: 5000, Label: "DBAB", Icon: "😤"},
			{Min: 0, Label: "BROKE", Icon: "😞"},
		},
		WeeklySuffix: []Suffix{
			{Min: 20000, Icon: "🤯"},
			{Min: 10000, Icon: "🏆"},
			{Min: 5000, Icon: "🤑"},
			{Min: 2500, Icon: "📣"},
			{Min: 1000, Icon: "😤"},
			{Min: 0.01, Icon: "🤡"},
			{Min: 0, Icon: "💤"},
		},
		MonthlySuffix: []Suffix{
			{Min: 40000, Icon: "🔥"},
			{Min: 30000, Icon: "💎"},
			{Min: 20000, Icon: "🤯"},
			{Min: 10000, Icon: "🏆"},
			{Min: 5000, Icon: "🤑"},
			{Min: 0.01, Icon: "🤡"},
			{Min: 0, Icon: "💤"},
		},
	}
}

// TierConfigHolder serves the current tier tables and hot-reloads them when
// the backing file changes.
type TierConfigHolder struct {
	current atomic.Value // holds TierConfig
}

// NewTierConfigHolder loads the tier tables from an optional yml file,
// falling back to the built-in defaults, and watches the file for changes.
func NewTierConfigHolder(cfg Config) (*TierConfigHolder, error) {
	v := viper.New()

	v.SetConfigName(cfg.Display.TiersFile)
	v.SetConfigType("yml")
	for _, dir := range cfg.Display.TiersFileDirs {
		if strings.TrimSpace(dir) != "" {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix("SALESBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	watch := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// no file on disk: run on defaults, nothing to watch
		watch = false
	}

	tiers := DefaultTierConfig()
	if watch {
		if err := v.UnmarshalKey("tiers", &tiers); err != nil {
			return nil, err
		}
	}
	if err := validateTierConfig(tiers); err != nil {
		return nil, err
	}

	holder := &TierConfigHolder{}
	holder.current.Store(tiers)

	if watch {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			updated := DefaultTierConfig()
			if err := v.UnmarshalKey("tiers", &updated); err != nil {
				log.Printf("[tiers-config] reload failed: %v", err)
				return
			}
			if err := validateTierConfig(updated); err != nil {
				log.Printf("[tiers-config] invalid config ignored: %v", err)
				return
			}
			holder.current.Store(updated)
			log.Printf("[tiers-config] reloaded from %s", e.Name)
		})
	}

	return holder, nil
}

func (h *TierConfigHolder) Get() TierConfig {
	return h.current.Load().(TierConfig)
}

func validateTierConfig(cfg TierConfig) error {
	if err := validateTiers(cfg.Weekly); err != nil {
		return err
	}
	if err := validateTiers(cfg.Monthly); err != nil {
		return err
	}
	if err := validateSuffixes(cfg.WeeklySuffix); err != nil {
		return err
	}
	return validateSuffixes(cfg.MonthlySuffix)
}

func validateTiers(tiers []Tier) error {
	if len(tiers) == 0 {
		return errors.New("tiers table cannot be empty")
	}
	for i := 1; i < len(tiers); i++ {
		if tiers[i].Min >= tiers[i-1].Min {
			return errors.New("tiers must be sorted by min descending")
		}
	}
	if tiers[len(tiers)-1].Min != 0 {
		return errors.New("last tier must have min 0")
	}
	return nil
}

func validateSuffixes(suffixes []Suffix) error {
	if len(suffixes) == 0 {
		return errors.New("suffix table cannot be empty")
	}
	for i := 1; i < len(suffixes); i++ {
		if suffixes[i].Min >= suffixes[i-1].Min {
			return errors.New("suffixes must be sorted by min descending")
		}
	}
	return nil
}
