package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"keyword-assistant/errorsx"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	ProviderOpenAI  = "openai"
	ProviderWhisper = "whisper"
	ProviderHTTP    = "http"

	SampleRate = 16000
	Channels   = 1
)

type Config struct {
	ModelPath    string            `mapstructure:"model_path"`
	Keyword      string            `mapstructure:"keyword"`
	OpenAIAPIKey string            `mapstructure:"openai_api_key"`
	LogLevel     string            `mapstructure:"log_level"`
	LogFormat    string            `mapstructure:"log_format"`
	Audio        AudioConfig       `mapstructure:"audio"`
	Output       OutputConfig      `mapstructure:"output"`
	Command      CommandConfig     `mapstructure:"command"`
	Transcriber  TranscriberConfig `mapstructure:"transcriber"`
	Generator    GeneratorConfig   `mapstructure:"generator"`
}

type AudioConfig struct {
	SampleRate int `mapstructure:"sample_rate"`
	Channels   int `mapstructure:"channels"`
	ChunkSize  int `mapstructure:"chunk_size"`
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

type CommandConfig struct {
	Mode             string        `mapstructure:"mode"`
	SilenceLimit     time.Duration `mapstructure:"silence_limit"`
	MaxDuration      time.Duration `mapstructure:"max_duration"`
	SilenceThreshold float64       `mapstructure:"silence_threshold"`
}

type TranscriberConfig struct {
	Provider         string `mapstructure:"provider"`
	Model            string `mapstructure:"model"`
	WhisperModelPath string `mapstructure:"whisper_model_path"`
	BaseURL          string `mapstructure:"base_url"`
}

type GeneratorConfig struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	BaseURL     string  `mapstructure:"base_url"`
	APIHost     string  `mapstructure:"api_host"`
}

// Load reads path (optional) on top of the defaults, then the ASSISTANT_*
// environment, then overrides. Empty override values are ignored.
func Load(path string, overrides map[string]any) (Config, error) {
	v := viper.New()
	v.SetDefault("model_path", "")
	v.SetDefault("keyword", "")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("audio.sample_rate", SampleRate)
	v.SetDefault("audio.channels", Channels)
	v.SetDefault("audio.chunk_size", 4096)
	v.SetDefault("output.dir", "transcriptions")
	v.SetDefault("command.mode", "duration")
	v.SetDefault("command.silence_limit", "3s")
	v.SetDefault("command.max_duration", "15s")
	v.SetDefault("command.silence_threshold", 0.02)
	v.SetDefault("transcriber.provider", ProviderOpenAI)
	v.SetDefault("transcriber.model", "whisper-1")
	v.SetDefault("transcriber.whisper_model_path", "")
	v.SetDefault("transcriber.base_url", "")
	v.SetDefault("generator.provider", ProviderOpenAI)
	v.SetDefault("generator.model", "gpt-3.5-turbo-instruct")
	v.SetDefault("generator.temperature", 0.7)
	v.SetDefault("generator.max_tokens", 150)
	v.SetDefault("generator.base_url", "")
	v.SetDefault("generator.api_host", "")

	v.SetEnvPrefix("assistant")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("openai_api_key", "ASSISTANT_OPENAI_API_KEY", "OPENAI_API_KEY"); err != nil {
		return Config{}, errorsx.Wrap(fmt.Errorf("bind env: %w", err), errorsx.ReasonConfig)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errorsx.Wrap(fmt.Errorf("read config: %w", err), errorsx.ReasonConfig)
		}
	}

	for key, value := range overrides {
		if s, ok := value.(string); ok && s == "" {
			continue
		}
		v.Set(key, value)
	}

	var cfg Config
	err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc()))
	if err != nil {
		return Config{}, errorsx.Wrap(fmt.Errorf("unmarshal: %w", err), errorsx.ReasonConfig)
	}

	expandEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, errorsx.Wrap(fmt.Errorf("validate config: %w", err), errorsx.ReasonConfig)
	}

	return cfg, nil
}

func expandEnv(cfg *Config) {
	for _, s := range []*string{
		&cfg.ModelPath,
		&cfg.OpenAIAPIKey,
		&cfg.Output.Dir,
		&cfg.Transcriber.WhisperModelPath,
		&cfg.Transcriber.BaseURL,
		&cfg.Generator.BaseURL,
		&cfg.Generator.APIHost,
	} {
		*s = os.ExpandEnv(*s)
	}
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.ModelPath) == "" {
		return fmt.Errorf("model_path is required")
	}
	if c.Keyword == "" {
		return fmt.Errorf("keyword is required")
	}
	// the spotter and both WAV files assume 16 kHz mono
	if c.Audio.SampleRate != SampleRate {
		return fmt.Errorf("audio.sample_rate must be %d, got %d", SampleRate, c.Audio.SampleRate)
	}
	if c.Audio.Channels != Channels {
		return fmt.Errorf("audio.channels must be %d, got %d", Channels, c.Audio.Channels)
	}
	if c.Audio.ChunkSize <= 0 {
		return fmt.Errorf("audio.chunk_size must be positive")
	}

	switch c.Command.Mode {
	case "duration", "silence":
	default:
		return fmt.Errorf("command.mode must be duration or silence, got %q", c.Command.Mode)
	}

	switch c.Transcriber.Provider {
	case ProviderOpenAI:
	case ProviderWhisper:
		if strings.TrimSpace(c.Transcriber.WhisperModelPath) == "" {
			return fmt.Errorf("transcriber.whisper_model_path is required for the whisper provider")
		}
	default:
		return fmt.Errorf("unknown transcriber.provider %q", c.Transcriber.Provider)
	}

	switch c.Generator.Provider {
	case ProviderOpenAI:
	case ProviderHTTP:
		if strings.TrimSpace(c.Generator.APIHost) == "" {
			return fmt.Errorf("generator.api_host is required for the http provider")
		}
	default:
		return fmt.Errorf("unknown generator.provider %q", c.Generator.Provider)
	}

	if c.usesOpenAI() && strings.TrimSpace(c.OpenAIAPIKey) == "" {
		return fmt.Errorf("openai_api_key (or OPENAI_API_KEY) is required for openai providers")
	}

	return nil
}

func (c *Config) usesOpenAI() bool {
	return c.Transcriber.Provider == ProviderOpenAI || c.Generator.Provider == ProviderOpenAI
}
