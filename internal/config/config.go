package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type TelemetryConfig struct {
	LogLevel     string `yaml:"log_level"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	OTLPInsecure bool   `yaml:"otlp_insecure"`
}

type QuestionsConfig struct {
	Path  string `yaml:"path"`
	Sheet string `yaml:"sheet"`
}

type AudioConfig struct {
	Mode             string  `yaml:"mode"` // device, mock
	SampleRate       int     `yaml:"sample_rate"`
	Channels         int     `yaml:"channels"`
	ListenTimeoutSec int     `yaml:"listen_timeout_sec"`
	SilenceThreshold float64 `yaml:"silence_threshold"`
	EndPauseMS       int     `yaml:"end_pause_ms"`
	FrameDurationMS  int     `yaml:"frame_duration_ms"`
}

type STTConfig struct {
	Mode      string `yaml:"mode"` // mock, remote, exec
	Endpoint  string `yaml:"endpoint"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	Command   string `yaml:"command"`
	ModelPath string `yaml:"model_path"`
	Language  string `yaml:"language"`
}

type ScoringConfig struct {
	Mode        string  `yaml:"mode"` // exact, model
	Endpoint    string  `yaml:"endpoint"`
	Model       string  `yaml:"model"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	TimeoutSec  int     `yaml:"timeout_sec"`
}

type StoreConfig struct {
	Path          string `yaml:"path"`
	VacuumOnStart bool   `yaml:"vacuum_on_start"`
}

type TTSConfig struct {
	Enabled bool   `yaml:"enabled"`
	Mode    string `yaml:"mode"` // mock, exec
	Command string `yaml:"command"`
	Voice   string `yaml:"voice"`
}

type Config struct {
	AppName   string          `yaml:"app_name"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Questions QuestionsConfig `yaml:"questions"`
	Audio     AudioConfig     `yaml:"audio"`
	STT       STTConfig       `yaml:"stt"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Store     StoreConfig     `yaml:"store"`
	TTS       TTSConfig       `yaml:"tts"`
}

func Default() Config {
	return Config{
		AppName: "viva",
		Telemetry: TelemetryConfig{
			LogLevel:     "info",
			OTLPEndpoint: "",
			OTLPInsecure: true,
		},
		Questions: QuestionsConfig{
			Path: "./questions.xlsx",
		},
		Audio: AudioConfig{
			Mode:             "device",
			SampleRate:       16000,
			Channels:         1,
			ListenTimeoutSec: 10,
			SilenceThreshold: 0.015,
			EndPauseMS:       900,
			FrameDurationMS:  30,
		},
		STT: STTConfig{
			Mode:      "remote",
			Endpoint:  "https://api.openai.com/v1",
			Model:     "whisper-1",
			APIKeyEnv: "OPENAI_API_KEY",
			Language:  "en",
		},
		Scoring: ScoringConfig{
			Mode:        "model",
			Endpoint:    "https://openrouter.ai/api/v1",
			Model:       "openai/gpt-4o",
			APIKeyEnv:   "OPENROUTER_API_KEY",
			MaxTokens:   5,
			Temperature: 0,
			TimeoutSec:  30,
		},
		Store: StoreConfig{
			Path: "./data/interviews.db",
		},
		TTS: TTSConfig{
			Enabled: false,
			Mode:    "mock",
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ScoringAPIKey resolves the scoring credential from the configured environment
// variable. Required when scoring runs in model mode.
func (c Config) ScoringAPIKey() (string, error) {
	if c.Scoring.Mode != "model" {
		return "", nil
	}
	key := strings.TrimSpace(os.Getenv(c.Scoring.APIKeyEnv))
	if key == "" {
		return "", fmt.Errorf("scoring credential missing: set %s in the environment", c.Scoring.APIKeyEnv)
	}
	return key, nil
}

// STTAPIKey resolves the transcription credential. Only required in remote mode.
func (c Config) STTAPIKey() (string, error) {
	if c.STT.Mode != "remote" {
		return "", nil
	}
	key := strings.TrimSpace(os.Getenv(c.STT.APIKeyEnv))
	if key == "" {
		return "", fmt.Errorf("transcription credential missing: set %s in the environment", c.STT.APIKeyEnv)
	}
	return key, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.AppName, "VIVA_APP_NAME")
	overrideString(&cfg.Telemetry.LogLevel, "VIVA_TELEMETRY_LOG_LEVEL")
	overrideString(&cfg.Telemetry.OTLPEndpoint, "VIVA_TELEMETRY_OTLP_ENDPOINT")
	overrideBool(&cfg.Telemetry.OTLPInsecure, "VIVA_TELEMETRY_OTLP_INSECURE")
	overrideString(&cfg.Questions.Path, "VIVA_QUESTIONS_PATH")
	overrideString(&cfg.Questions.Sheet, "VIVA_QUESTIONS_SHEET")
	overrideString(&cfg.Audio.Mode, "VIVA_AUDIO_MODE")
	overrideInt(&cfg.Audio.SampleRate, "VIVA_AUDIO_SAMPLE_RATE")
	overrideInt(&cfg.Audio.Channels, "VIVA_AUDIO_CHANNELS")
	overrideInt(&cfg.Audio.ListenTimeoutSec, "VIVA_AUDIO_LISTEN_TIMEOUT_SEC")
	overrideFloat(&cfg.Audio.SilenceThreshold, "VIVA_AUDIO_SILENCE_THRESHOLD")
	overrideInt(&cfg.Audio.EndPauseMS, "VIVA_AUDIO_END_PAUSE_MS")
	overrideInt(&cfg.Audio.FrameDurationMS, "VIVA_AUDIO_FRAME_DURATION_MS")
	overrideString(&cfg.STT.Mode, "VIVA_STT_MODE")
	overrideString(&cfg.STT.Endpoint, "VIVA_STT_ENDPOINT")
	overrideString(&cfg.STT.Model, "VIVA_STT_MODEL")
	overrideString(&cfg.STT.APIKeyEnv, "VIVA_STT_API_KEY_ENV")
	overrideString(&cfg.STT.Command, "VIVA_STT_COMMAND")
	overrideString(&cfg.STT.ModelPath, "VIVA_STT_MODEL_PATH")
	overrideString(&cfg.STT.Language, "VIVA_STT_LANGUAGE")
	overrideString(&cfg.Scoring.Mode, "VIVA_SCORING_MODE")
	overrideString(&cfg.Scoring.Endpoint, "VIVA_SCORING_ENDPOINT")
	overrideString(&cfg.Scoring.Model, "VIVA_SCORING_MODEL")
	overrideString(&cfg.Scoring.APIKeyEnv, "VIVA_SCORING_API_KEY_ENV")
	overrideInt(&cfg.Scoring.MaxTokens, "VIVA_SCORING_MAX_TOKENS")
	overrideFloat(&cfg.Scoring.Temperature, "VIVA_SCORING_TEMPERATURE")
	overrideInt(&cfg.Scoring.TimeoutSec, "VIVA_SCORING_TIMEOUT_SEC")
	overrideString(&cfg.Store.Path, "VIVA_STORE_PATH")
	overrideBool(&cfg.Store.VacuumOnStart, "VIVA_STORE_VACUUM_ON_START")
	overrideBool(&cfg.TTS.Enabled, "VIVA_TTS_ENABLED")
	overrideString(&cfg.TTS.Mode, "VIVA_TTS_MODE")
	overrideString(&cfg.TTS.Command, "VIVA_TTS_COMMAND")
	overrideString(&cfg.TTS.Voice, "VIVA_TTS_VOICE")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func overrideFloat(target *float64, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			*target = parsed
		}
	}
}

func validate(cfg Config) error {
	if cfg.AppName == "" {
		return errors.New("app_name must not be empty")
	}
	if cfg.Questions.Path == "" {
		return errors.New("questions.path must not be empty")
	}
	switch cfg.Audio.Mode {
	case "device", "mock":
	default:
		return errors.New("audio.mode must be one of device|mock")
	}
	if cfg.Audio.SampleRate <= 0 {
		return errors.New("audio.sample_rate must be positive")
	}
	if cfg.Audio.Channels <= 0 {
		return errors.New("audio.channels must be positive")
	}
	if cfg.Audio.ListenTimeoutSec <= 0 {
		return errors.New("audio.listen_timeout_sec must be positive")
	}
	if cfg.Audio.SilenceThreshold < 0 || cfg.Audio.SilenceThreshold > 1 {
		return errors.New("audio.silence_threshold must be between 0 and 1")
	}
	if cfg.Audio.EndPauseMS <= 0 {
		return errors.New("audio.end_pause_ms must be positive")
	}
	if cfg.Audio.FrameDurationMS <= 0 {
		return errors.New("audio.frame_duration_ms must be positive")
	}
	switch cfg.STT.Mode {
	case "mock", "remote", "exec":
	default:
		return errors.New("stt.mode must be one of mock|remote|exec")
	}
	if cfg.STT.Mode == "remote" && cfg.STT.Endpoint == "" {
		return errors.New("stt.endpoint must be set when mode=remote")
	}
	if cfg.STT.Mode == "remote" && cfg.STT.APIKeyEnv == "" {
		return errors.New("stt.api_key_env must be set when mode=remote")
	}
	if cfg.STT.Mode == "exec" && cfg.STT.Command == "" {
		return errors.New("stt.command must be set when mode=exec")
	}
	switch cfg.Scoring.Mode {
	case "exact", "model":
	default:
		return errors.New("scoring.mode must be one of exact|model")
	}
	if cfg.Scoring.Mode == "model" {
		if cfg.Scoring.Endpoint == "" {
			return errors.New("scoring.endpoint must be set when mode=model")
		}
		if cfg.Scoring.Model == "" {
			return errors.New("scoring.model must be set when mode=model")
		}
		if cfg.Scoring.APIKeyEnv == "" {
			return errors.New("scoring.api_key_env must be set when mode=model")
		}
		if cfg.Scoring.MaxTokens <= 0 {
			return errors.New("scoring.max_tokens must be positive")
		}
		if cfg.Scoring.TimeoutSec <= 0 {
			return errors.New("scoring.timeout_sec must be positive")
		}
	}
	if cfg.Store.Path == "" {
		return errors.New("store.path must not be empty")
	}
	if cfg.TTS.Enabled {
		switch cfg.TTS.Mode {
		case "mock", "exec":
		default:
			return errors.New("tts.mode must be one of mock|exec")
		}
		if cfg.TTS.Mode == "exec" && cfg.TTS.Command == "" {
			return errors.New("tts.command must be set when mode=exec")
		}
	}
	return nil
}
