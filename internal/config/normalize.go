package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.Subtitle.Orientation = strings.ToLower(strings.TrimSpace(c.Subtitle.Orientation))
	if c.Subtitle.Orientation == "" {
		c.Subtitle.Orientation = "horizontal"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.StateDB, err = expandPath(c.Paths.StateDB); err != nil {
		return fmt.Errorf("paths.state_db: %w", err)
	}
	if c.Paths.FontsDir, err = expandPath(c.Paths.FontsDir); err != nil {
		return fmt.Errorf("paths.fonts_dir: %w", err)
	}
	if c.Cover.FontFile, err = expandPath(c.Cover.FontFile); err != nil {
		return fmt.Errorf("cover.font_file: %w", err)
	}
	if c.Correction.Dictionary, err = expandPath(c.Correction.Dictionary); err != nil {
		return fmt.Errorf("correction.dictionary: %w", err)
	}
	if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}

// normalizeLLM lets the environment (including a .env file loaded by the
// CLI) supply or override the service settings.
func (c *Config) normalizeLLM() {
	if v, ok := lookupEnv("DMCUT_LLM_API_KEY"); ok {
		c.LLM.APIKey = v
	}
	if v, ok := lookupEnv("DMCUT_LLM_BASE_URL"); ok {
		c.LLM.BaseURL = v
	}
	if v, ok := lookupEnv("DMCUT_LLM_MODEL"); ok {
		c.LLM.Model = v
	}
	if v, ok := lookupEnv("DMCUT_LLM_ALLOWED_HOSTS"); ok {
		c.LLM.AllowedHosts = strings.Split(v, ",")
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}
