package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	portssvc "github.com/SscSPs/statement_importer/internal/core/ports/services"
	"github.com/SscSPs/statement_importer/internal/middleware"
	"github.com/SscSPs/statement_importer/internal/platform/app"
	"github.com/SscSPs/statement_importer/internal/platform/config"
	"github.com/spf13/cobra"
)

const skipBootstrap = "skipBootstrap"

// bootstrapFunc wires the services a command needs and returns a function releasing them.
type bootstrapFunc func(ctx context.Context, logger *slog.Logger) (*portssvc.ServiceContainer, func() error, error)

func defaultBootstrap(ctx context.Context, logger *slog.Logger) (*portssvc.ServiceContainer, func() error, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return application.Services, application.Close, nil
}

// cli holds the state shared by every subcommand of one invocation.
type cli struct {
	bootstrap bootstrapFunc
	logger    *slog.Logger
	services  *portssvc.ServiceContainer
	release   func() error
	userID    string
	out       io.Writer
}

// newRootCmd builds the command tree. Tests pass their own bootstrap to run against mocks.
func newRootCmd(bootstrap bootstrapFunc, out io.Writer) (*cobra.Command, *cli) {
	c := &cli{bootstrap: bootstrap, out: out}

	rootCmd := &cobra.Command{
		Use:           "importer",
		Short:         "Import bank statements and manage staged batches and exchange rates",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			c.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			cmd.SetContext(middleware.WithLogger(cmd.Context(), c.logger))

			if cmd.Annotations[skipBootstrap] == "true" {
				return nil
			}
			services, release, err := c.bootstrap(cmd.Context(), c.logger)
			if err != nil {
				return err
			}
			c.services, c.release = services, release
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug output to stderr")
	rootCmd.PersistentFlags().StringVarP(&c.userID, "user", "u", "cli", "user recorded as importer or reviewer")

	rootCmd.AddCommand(c.importCmd(), c.batchCmd(), c.fxCmd(), c.migrateCmd())
	return rootCmd, c
}

// execute runs one invocation and releases whatever the bootstrap acquired, also on failure.
func execute(ctx context.Context, bootstrap bootstrapFunc, out io.Writer, args []string) (err error) {
	rootCmd, c := newRootCmd(bootstrap, out)
	rootCmd.SetArgs(args)
	defer func() {
		if c.release == nil {
			return
		}
		if closeErr := c.release(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

// Execute runs the CLI against the configured database.
func Execute() {
	if err := execute(context.Background(), defaultBootstrap, os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// printJSON writes v as indented JSON.
func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
