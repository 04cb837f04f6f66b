package srv

import (
	"log/slog"

	"github.com/reverie-ai/reverie/pkg/ai"
	"github.com/reverie-ai/reverie/pkg/ai/canned"
	"github.com/reverie-ai/reverie/pkg/ai/gemini"
	"github.com/reverie-ai/reverie/pkg/ai/openai"
)

// ReflectConfig selects the reflection backend. An empty token always
// degrades to the canned driver so the journal keeps working offline.
type ReflectConfig struct {
	Driver          string `toml:"driver"` // openai / gemini / canned
	Token           string `toml:"token"`
	Proxy           string `toml:"proxy"`
	Model           string `toml:"model"`
	Prompt          string `toml:"prompt"`
	MaxPromptTokens int    `toml:"max_prompt_tokens"`
}

type TranscribeConfig struct {
	Driver string `toml:"driver"` // openai / canned
	Token  string `toml:"token"`
	Proxy  string `toml:"proxy"`
}

func SetupReflect(cfg ReflectConfig) ai.ReflectDriver {
	if cfg.Token == "" {
		if cfg.Driver != canned.NAME && cfg.Driver != "" {
			slog.Warn("reflect driver has no token, falling back to canned responses", slog.String("driver", cfg.Driver))
		}
		return canned.New()
	}

	switch cfg.Driver {
	case gemini.NAME:
		return gemini.New(cfg.Token, cfg.Model)
	case canned.NAME:
		return canned.New()
	default:
		return openai.New(cfg.Token, cfg.Proxy, cfg.Model)
	}
}

func ApplyReflect(cfg ReflectConfig) ApplyFunc {
	return func(s *Srv) {
		s.reflectCfg = cfg
		s.reflect = SetupReflect(cfg)
	}
}

func SetupTranscribe(cfg TranscribeConfig) ai.TranscribeDriver {
	if cfg.Token == "" {
		return canned.New()
	}

	switch cfg.Driver {
	case canned.NAME:
		return canned.New()
	default:
		return openai.New(cfg.Token, cfg.Proxy, "")
	}
}

func ApplyTranscribe(cfg TranscribeConfig) ApplyFunc {
	return func(s *Srv) {
		s.transcribe = SetupTranscribe(cfg)
	}
}
