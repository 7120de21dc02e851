package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/sqlwall/internal/audit"
	"github.com/leapstack-labs/sqlwall/internal/cli/output"
	"github.com/leapstack-labs/sqlwall/internal/config"
	"github.com/leapstack-labs/sqlwall/pkg/firewall"
	_ "github.com/leapstack-labs/sqlwall/pkg/wall/checks" // register checks
)

type configKey struct{}

type loggerKey struct{}

// WithConfig stores the loaded configuration in ctx.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// WithLogger stores the logger in ctx.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext collects the configuration, logger and renderer for cmd.
// A command run without the root command (as in tests) gets the built-in
// defaults and a discarding logger.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, ok := ctx.Value(configKey{}).(*config.Config)
	if !ok || cfg == nil {
		cfg = config.Default()
	}
	logger, ok := ctx.Value(loggerKey{}).(*slog.Logger)
	if !ok || logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output)),
	}
}

// WithFormat replaces the renderer when a per-command format is given.
func (c *CommandContext) WithFormat(cmd *cobra.Command, format string) *CommandContext {
	if format != "" {
		c.Renderer = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(format))
	}
	return c
}

// Firewall builds a firewall from the loaded policy.
func (c *CommandContext) Firewall(opts ...firewall.Option) *firewall.Firewall {
	opts = append([]firewall.Option{
		firewall.WithLogger(c.Logger),
		firewall.WithEngineOptions(c.Cfg.EngineOptions()...),
	}, opts...)
	return firewall.New(c.Cfg.Policy(), opts...)
}

// OpenStore opens the audit database named by the configuration, or path
// when it is not empty.
func (c *CommandContext) OpenStore(ctx context.Context, path string) (*audit.Store, error) {
	if path == "" {
		path = c.Cfg.AuditDB
	}
	return audit.Open(ctx, path, audit.WithLogger(c.Logger))
}

func isTerminalFile(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
