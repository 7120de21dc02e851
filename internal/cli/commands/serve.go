package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlwall/internal/audit"
	"github.com/leapstack-labs/sqlwall/internal/config"
	"github.com/leapstack-labs/sqlwall/internal/server"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	NoAudit bool // Run without the audit database
	NoWatch bool // Do not reload the policy when the config file changes
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the firewall over HTTP",
		Long: `Start the HTTP firewall service.

Applications POST SQL to /v1/check and get the decision back. Every decision
is recorded in the audit database unless --no-audit is given. When the policy
comes from a config file, edits to the file are applied without a restart.

Endpoints:
  POST /v1/check        check {"sql": ...} or {"sqls": [...]}
  GET  /v1/checks       registered checks
  GET  /v1/stats        counters since start
  GET  /v1/audit        recent decisions
  GET  /v1/audit/{id}   one decision
  GET  /healthz         liveness`,
		Example: `  # Serve on the configured address
  sqlwall serve

  # Serve on another port without auditing
  sqlwall serve --listen :9090 --no-audit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.NoAudit, "no-audit", false, "Do not record decisions")
	cmd.Flags().BoolVar(&opts.NoWatch, "no-watch", false, "Do not reload the policy on config file changes")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, opts *ServeOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	logger := cmdCtx.Logger

	var store *audit.Store
	if !opts.NoAudit {
		var err error
		store, err = cmdCtx.OpenStore(ctx, "")
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
	}

	srvCfg := server.Config{
		Firewall: cmdCtx.Firewall(),
		Store:    store,
		Addr:     cfg.Listen,
		Logger:   logger,
	}
	if cfg.Source != "" && !opts.NoWatch {
		flags := cmd.Root().PersistentFlags()
		srvCfg.Holder = config.NewHolder(cfg)
		srvCfg.ConfigFile = cfg.Source
		srvCfg.Loader = func() (*config.Config, error) {
			return config.Load(cfg.Source, flags)
		}
	}

	cmdCtx.Renderer.Success(fmt.Sprintf("sqlwall listening on %s", cfg.Listen))
	if srvCfg.ConfigFile != "" {
		cmdCtx.Renderer.Println(cmdCtx.Renderer.Styles().Muted.Render("watching " + cfg.Source))
	}
	return server.New(srvCfg).Serve(ctx)
}
