// Package vmconfig layers VM tuning knobs the way a production CLI
// layers configuration: compiled-in defaults, an optional YAML file,
// then environment variable overrides, each layer replacing only the
// fields it sets.
package vmconfig

import (
	"fmt"
	"os"
	"strconv"

	env "github.com/caarlos0/env/v6"
	"github.com/jordyorel/orus-lang-sub003/internal/jit"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable the profiler and JIT tier-up controller
// consult at startup.
type Config struct {
	// LoopHitThreshold is the back-edge count a loop must reach before
	// QueueTierUp is even attempted.
	LoopHitThreshold uint64 `yaml:"loop_hit_threshold" env:"VM_LOOP_HIT_THRESHOLD" envDefault:"1000"`

	// MaxProfiledLoops holds the configured size of the profiler's
	// loop-hit table. vmstate.New does not pass it to the profiler, so
	// the table is not bounded by it.
	MaxProfiledLoops int `yaml:"max_profiled_loops" env:"VM_MAX_PROFILED_LOOPS" envDefault:"4096"`

	// JITEnabled gates the tier-up controller entirely.
	JITEnabled bool `yaml:"jit_enabled" env:"VM_JIT_ENABLED" envDefault:"true"`

	// InitialRolloutStage names the RolloutStage the JIT starts at;
	// validated and converted by Stage().
	InitialRolloutStage string `yaml:"initial_rollout_stage" env:"VM_JIT_INITIAL_ROLLOUT_STAGE" envDefault:"i32-only"`

	// FailureHistorySize bounds the JIT's translation-failure ring
	// buffer.
	FailureHistorySize int `yaml:"failure_history_size" env:"ORUS_JIT_TRANSLATION_FAILURE_HISTORY" envDefault:"64"`
}

// Default returns the compiled-in baseline before any file layer is
// applied; env.Parse also reads any of the fields' environment
// variables that are already set. This is the only place env.Parse's
// envDefault tags get applied — caarlos0/env reapplies envDefault on
// every call regardless of the field's current value, so calling it
// again later would stomp a value the YAML layer had already set.
func Default() Config {
	var c Config
	_ = env.Parse(&c)
	return c
}

// Load builds a Config by layering, in order: compiled-in defaults, an
// optional YAML file at path (skipped silently if it does not exist,
// since the file layer is optional by design), then environment
// variable overrides. Each later layer only overwrites the fields it
// actually sets; the environment layer is applied field-by-field via
// os.LookupEnv rather than a second env.Parse call, precisely to avoid
// that envDefault-reapplication pitfall.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("vmconfig: parsing %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// no file layer; defaults stand as-is
		default:
			return Config{}, fmt.Errorf("vmconfig: reading %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, fmt.Errorf("vmconfig: applying environment overrides: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if raw, ok := os.LookupEnv("VM_LOOP_HIT_THRESHOLD"); ok {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("VM_LOOP_HIT_THRESHOLD: %w", err)
		}
		cfg.LoopHitThreshold = v
	}
	if raw, ok := os.LookupEnv("VM_MAX_PROFILED_LOOPS"); ok {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("VM_MAX_PROFILED_LOOPS: %w", err)
		}
		cfg.MaxProfiledLoops = v
	}
	if raw, ok := os.LookupEnv("VM_JIT_ENABLED"); ok {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("VM_JIT_ENABLED: %w", err)
		}
		cfg.JITEnabled = v
	}
	if raw, ok := os.LookupEnv("VM_JIT_INITIAL_ROLLOUT_STAGE"); ok {
		cfg.InitialRolloutStage = raw
	}
	if raw, ok := os.LookupEnv("ORUS_JIT_TRANSLATION_FAILURE_HISTORY"); ok {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("ORUS_JIT_TRANSLATION_FAILURE_HISTORY: %w", err)
		}
		cfg.FailureHistorySize = v
	}
	return nil
}

// Stage converts InitialRolloutStage to a jit.RolloutStage, defaulting
// to the most conservative stage on an unrecognized value rather than
// failing Load outright.
func (c Config) Stage() jit.RolloutStage {
	switch c.InitialRolloutStage {
	case "i32-only":
		return jit.StageI32Only
	case "wide-int":
		return jit.StageWideInt
	case "floats":
		return jit.StageFloats
	case "strings":
		return jit.StageStrings
	default:
		return jit.StageI32Only
	}
}
