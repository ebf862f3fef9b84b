package audioengine

import (
	"time"

	"github.com/spf13/viper"
)

// Config seeds the engine's initial State and the tuning constants the appliers and render
// loop use. It never feeds back from committed state — the engine does not persist state
// across runs (spec.md Non-goals); this is a one-shot read at construction.
type Config struct {
	InitialRenderMode      RenderMode
	InitialMuteMode        MuteMode
	InitialInputFollowMode bool

	StartRetryCount    int
	StartRetryInterval time.Duration
	PrepareSettleDelay time.Duration

	DefaultDeviceDebounce time.Duration

	ManualSampleRate     int
	ManualMaxFrameCount  int

	DeviceWatcherMinInterval time.Duration
	DeviceWatcherMaxInterval time.Duration
}

// DefaultConfig returns the literal values spec.md pins down (10 retries / 100 ms, 500 ms
// debounce, 3072-frame manual cap, 48 kHz manual format).
func DefaultConfig() Config {
	return Config{
		InitialRenderMode:      RenderModeDevice,
		InitialMuteMode:        MuteModeVoiceProcessing,
		InitialInputFollowMode: true,

		StartRetryCount:    10,
		StartRetryInterval: 100 * time.Millisecond,
		PrepareSettleDelay: 100 * time.Millisecond,

		DefaultDeviceDebounce: 500 * time.Millisecond,

		ManualSampleRate:    48000,
		ManualMaxFrameCount: 3072,

		DeviceWatcherMinInterval: 50 * time.Millisecond,
		DeviceWatcherMaxInterval: 200 * time.Millisecond,
	}
}

// LoadConfig reads overrides from an optional YAML file at path (pass "" to skip) and from
// AUDIOENGINE_-prefixed environment variables, using viper the same way the pack's
// ijakenorton-Roundtable and lisuiheng-xiaozhi-go repos configure themselves. Unset keys keep
// DefaultConfig's values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix("AUDIOENGINE")
	v.AutomaticEnv()

	v.SetDefault("start_retry_count", cfg.StartRetryCount)
	v.SetDefault("start_retry_interval_ms", int(cfg.StartRetryInterval/time.Millisecond))
	v.SetDefault("prepare_settle_delay_ms", int(cfg.PrepareSettleDelay/time.Millisecond))
	v.SetDefault("default_device_debounce_ms", int(cfg.DefaultDeviceDebounce/time.Millisecond))
	v.SetDefault("manual_sample_rate", cfg.ManualSampleRate)
	v.SetDefault("manual_max_frame_count", cfg.ManualMaxFrameCount)
	v.SetDefault("input_follow_mode", cfg.InitialInputFollowMode)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, &EngineError{Kind: KindInitFailure, Code: ErrInitFailure, Message: "failed to read config file", Err: err}
		}
	}

	cfg.StartRetryCount = v.GetInt("start_retry_count")
	cfg.StartRetryInterval = time.Duration(v.GetInt("start_retry_interval_ms")) * time.Millisecond
	cfg.PrepareSettleDelay = time.Duration(v.GetInt("prepare_settle_delay_ms")) * time.Millisecond
	cfg.DefaultDeviceDebounce = time.Duration(v.GetInt("default_device_debounce_ms")) * time.Millisecond
	cfg.ManualSampleRate = v.GetInt("manual_sample_rate")
	cfg.ManualMaxFrameCount = v.GetInt("manual_max_frame_count")
	cfg.InitialInputFollowMode = v.GetBool("input_follow_mode")

	return cfg, nil
}
