package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/forPelevin/dmcut/internal/config"
	"github.com/forPelevin/dmcut/internal/logging"
	"github.com/forPelevin/dmcut/internal/pipeline"
)

type commandContext struct {
	configFlag *string
	logLevel   *string

	once      sync.Once
	cfg       *config.Config
	cfgPath   string
	cfgExists bool
	log       *slog.Logger
	err       error
}

func newCommandContext(configFlag, logLevel *string) *commandContext {
	return &commandContext{configFlag: configFlag, logLevel: logLevel}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.once.Do(func() {
		cfg, path, exists, err := config.Load(strings.TrimSpace(*c.configFlag))
		if err != nil {
			c.err = err
			return
		}
		if lvl := strings.TrimSpace(*c.logLevel); lvl != "" {
			cfg.Logging.Level = lvl
		}
		opts := logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format}
		if cfg.Logging.File != "" {
			opts.OutputPaths = []string{"stderr", cfg.Logging.File}
		}
		log, err := logging.New(opts)
		if err != nil {
			c.err = err
			return
		}
		c.cfg, c.cfgPath, c.cfgExists, c.log = cfg, path, exists, log
	})
	return c.cfg, c.err
}

// runner opens the adapters and returns a pipeline runner with a closer.
func (c *commandContext) runner(ctx context.Context, noLLM, withHistory bool) (*pipeline.Runner, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	deps, err := pipeline.OpenDeps(ctx, cfg, c.log, noLLM, withHistory)
	if err != nil {
		return nil, nil, err
	}
	return pipeline.New(cfg, c.log, deps), func() { _ = deps.Close() }, nil
}

// signalContext cancels on Ctrl-C or SIGTERM so ffmpeg children are killed.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
