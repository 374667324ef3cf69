package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// MatchingRules tunes how match predicates are scored against truck
// tickets. The weight spread must keep a single more-specific dimension
// ahead of any combination of less-specific ones.
type MatchingRules struct {
	ValueWeight   int  `mapstructure:"valueWeight"`
	NotSetWeight  int  `mapstructure:"notSetWeight"`
	AnyWeight     int  `mapstructure:"anyWeight"`
	AllowCatchAll bool `mapstructure:"allowCatchAll"`
}

func DefaultMatchingRules() MatchingRules {
	return MatchingRules{
		ValueWeight:   100,
		NotSetWeight:  10,
		AnyWeight:     1,
		AllowCatchAll: true,
	}
}

// MatchingRulesHolder serves the current rules to the matching service
// and hot-reloads them when the config file changes, so weight tuning
// does not require a restart.
type MatchingRulesHolder struct {
	current atomic.Value // holds MatchingRules
}

func NewMatchingRulesHolder() (*MatchingRulesHolder, error) {
	v := viper.New()

	v.SetConfigName("matching")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/haulbase/config") // Volume-mounted config
	v.AddConfigPath("/etc/haulbase")            // System config
	v.AddConfigPath(".")                        // Current directory (dev mode)

	v.SetEnvPrefix("HAULBASE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultMatchingRules()
	v.SetDefault("matching.valueWeight", defaults.ValueWeight)
	v.SetDefault("matching.notSetWeight", defaults.NotSetWeight)
	v.SetDefault("matching.anyWeight", defaults.AnyWeight)
	v.SetDefault("matching.allowCatchAll", defaults.AllowCatchAll)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var rules MatchingRules
	if err := v.UnmarshalKey("matching", &rules); err != nil {
		return nil, err
	}
	if err := validateMatchingRules(rules); err != nil {
		return nil, err
	}

	holder := &MatchingRulesHolder{}
	holder.current.Store(rules)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated MatchingRules
		if err := v.UnmarshalKey("matching", &updated); err != nil {
			log.Printf("[matching-config] reload failed: %v", err)
			return
		}
		if err := validateMatchingRules(updated); err != nil {
			log.Printf("[matching-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[matching-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *MatchingRulesHolder) Get() MatchingRules {
	return h.current.Load().(MatchingRules)
}

// NewStaticMatchingRulesHolder skips file watching; test use.
func NewStaticMatchingRulesHolder(rules MatchingRules) *MatchingRulesHolder {
	holder := &MatchingRulesHolder{}
	holder.current.Store(rules)
	return holder
}

func validateMatchingRules(rules MatchingRules) error {
	if rules.ValueWeight <= rules.NotSetWeight || rules.NotSetWeight <= rules.AnyWeight {
		return errors.New("matching weights must be strictly decreasing: value > notSet > any")
	}
	if rules.AnyWeight < 0 {
		return errors.New("matching.anyWeight cannot be negative")
	}
	// Four lower-tier dimensions must never outrank one higher tier.
	if 4*rules.NotSetWeight >= rules.ValueWeight || 4*rules.AnyWeight >= rules.NotSetWeight {
		return errors.New("matching weight spread too narrow: a single specific dimension must dominate")
	}
	return nil
}
