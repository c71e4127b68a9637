package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/forPelevin/dmcut/internal/domain/highlights"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validatePadding(); err != nil {
		return err
	}
	if err := c.validateSubtitle(); err != nil {
		return err
	}
	if err := c.validateCover(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateAnalysis() error {
	engine := c.EngineConfig()
	err := engine.Validate()
	if err == nil {
		_, err = highlights.NewWeigher(engine.Rules, engine.LongTextChars, engine.LongTextBonus)
	}
	var cfgErr *highlights.ConfigError
	if errors.As(err, &cfgErr) {
		section := "analysis"
		if strings.HasPrefix(cfgErr.Field, "rules") || strings.HasPrefix(cfgErr.Field, "long_text") {
			section = "weights"
		}
		return fmt.Errorf("%s.%s %s", section, cfgErr.Field, cfgErr.Reason)
	}
	return err
}

func (c *Config) validatePadding() error {
	if c.Padding.PreSentences < 0 {
		return errors.New("padding.pre_sentences must not be negative")
	}
	if c.Padding.PostSentences < 0 {
		return errors.New("padding.post_sentences must not be negative")
	}
	return nil
}

func (c *Config) validateSubtitle() error {
	switch c.Subtitle.Orientation {
	case "horizontal", "vertical":
	default:
		return fmt.Errorf("subtitle.orientation must be horizontal or vertical, got %q", c.Subtitle.Orientation)
	}
	if c.Subtitle.FontSize <= 0 {
		return errors.New("subtitle.font_size must be positive")
	}
	if c.Subtitle.MaxChars < 0 {
		return errors.New("subtitle.max_chars must not be negative")
	}
	return nil
}

func (c *Config) validateCover() error {
	if c.Cover.Count < 0 {
		return errors.New("cover.count must not be negative")
	}
	if c.Cover.FontSize <= 0 {
		return errors.New("cover.font_size must be positive")
	}
	for name, v := range map[string]float64{"cover.top_y": c.Cover.TopY, "cover.bottom_y": c.Cover.BottomY} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}
	return nil
}

// validateLLM leaves a missing API key to the adapter so --no-llm runs work
// without one.
func (c *Config) validateLLM() error {
	if c.LLM.TimeoutSeconds < 0 {
		return errors.New("llm.timeout_seconds must not be negative")
	}
	if c.LLM.MaxTokens < 0 {
		return errors.New("llm.max_tokens must not be negative")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "text", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
