// Package cli implements the foundation command line: serving the demo
// application and managing its bootstrap snapshot.
package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/km-arc/go-foundation/app"
	foundation "github.com/km-arc/go-foundation/framework/app"
	"github.com/km-arc/go-foundation/framework/bootstrap"
	"github.com/km-arc/go-foundation/framework/logging"
)

// CLI holds the flags shared by every command.
type CLI struct {
	out      io.Writer
	errOut   io.Writer
	basePath string
	envFiles []string
	verbose  bool
}

// New creates a CLI writing command output to out and logs to errOut.
func New(out, errOut io.Writer) *CLI {
	return &CLI{out: out, errOut: errOut}
}

// RootCommand builds the command tree.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "foundation",
		Short:        "Service container with provider snapshots",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&c.basePath, "base", ".", "application base path (holds .env and cache/)")
	root.PersistentFlags().StringSliceVar(&c.envFiles, "env", nil, "env files to load instead of <base>/.env")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.providersCommand())
	return root
}

// application builds the demo application with its providers configured.
func (c *CLI) application() (*foundation.Application, error) {
	var opts []foundation.Option
	if len(c.envFiles) > 0 {
		opts = append(opts, foundation.WithEnvFiles(c.envFiles...))
	}
	if c.verbose {
		opts = append(opts, foundation.WithLogger(logging.NewConsole(c.errOut, zapcore.DebugLevel)))
	}

	a, err := foundation.Build(c.basePath, opts...)
	if err != nil {
		return nil, err
	}
	app.Register(a.Table())
	if err := a.WithProviders(app.Providers...); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// ── serve ────────────────────────────────────────────────────────────────────

func (c *CLI) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Fire the application and serve HTTP on APP_PORT",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.application()
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Run(cmd.Context())
		},
	}
}

// ── cache ────────────────────────────────────────────────────────────────────

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the bootstrap snapshot",
	}
	cmd.AddCommand(c.cacheBuildCommand())
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cacheShowCommand())
	return cmd
}

func (c *CLI) cacheBuildCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Classify the providers and rewrite the snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.application()
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := a.Cache().Build(cmd.Context(), a.Providers())
			if err != nil {
				return err
			}
			a.Logger().Info("snapshot built",
				zap.String("location", a.Cache().Store().Location()),
				zap.Int("eager", len(snap.Providers)),
				zap.Int("deferred", len(snap.Deferred)))
			fmt.Fprintln(c.out, a.Cache().Store().Location())
			return nil
		},
	}
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.application()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Cache().Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "cleared %s\n", a.Cache().Store().Location())
			return nil
		},
	}
}

func (c *CLI) cacheShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.application()
			if err != nil {
				return err
			}
			defer a.Close()

			cached, err := a.Cache().Cached(cmd.Context())
			if err != nil {
				return err
			}
			if !cached {
				return fmt.Errorf("no snapshot at %s; run \"cache build\" first", a.Cache().Store().Location())
			}

			data, err := a.Cache().Store().Read(cmd.Context())
			if err != nil {
				return err
			}
			_, err = c.out.Write(data)
			return err
		},
	}
}

// ── providers ────────────────────────────────────────────────────────────────

func (c *CLI) providersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the configured providers and how they load",
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := c.application()
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := bootstrap.Classify(a.Table(), a.Providers())
			if err != nil {
				return err
			}
			owned := make(map[string][]string)
			for service, provider := range snap.Deferred {
				owned[provider] = append(owned[provider], service)
			}

			w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tLOAD\tSERVICES")
			for _, id := range a.Providers() {
				if services, ok := owned[id]; ok {
					sort.Strings(services)
					fmt.Fprintf(w, "%s\tdeferred\t%s\n", id, strings.Join(services, ", "))
					continue
				}
				fmt.Fprintf(w, "%s\teager\t-\n", id)
			}
			return w.Flush()
		},
	}
}
