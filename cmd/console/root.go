package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"positions-console/internal/app"
	"positions-console/internal/config"
	"positions-console/internal/guard"
	"positions-console/internal/logger"
)

// cli carries the streams and global flags shared by every command.
type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	apiBaseURL string
	logLevel   string
	tokenStore string
}

func newRootCmd(in io.Reader, out io.Writer, errOut io.Writer) *cobra.Command {
	c := &cli{in: in, out: out, errOut: errOut}

	cmd := &cobra.Command{
		Use:           "positions-console",
		Short:         "Sign in to the positions API and manage positions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	flags := cmd.PersistentFlags()
	flags.StringVar(&c.apiBaseURL, "api-base-url", "", "base URL of the remote API (overrides API_BASE_URL)")
	flags.StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	flags.StringVar(&c.tokenStore, "token-store", "", "file, sqlite, redis or memory (overrides TOKEN_STORE)")

	cmd.AddCommand(newLoginCmd(c))
	cmd.AddCommand(newRegisterCmd(c))
	cmd.AddCommand(newLogoutCmd(c))
	cmd.AddCommand(newWhoamiCmd(c))
	cmd.AddCommand(newPositionsCmd(c))
	cmd.AddCommand(newServeCmd(c))
	return cmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, userMessage(err))
		os.Exit(exitCode(err))
	}
}

// config loads the environment and applies the global flags on top.
func (c *cli) config(adjust func(cfg *config.Config)) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, withCode(exitUsage, err)
	}

	if strings.TrimSpace(c.apiBaseURL) != "" {
		cfg.APIBaseURL = strings.TrimSpace(c.apiBaseURL)
	}
	if strings.TrimSpace(c.logLevel) != "" {
		cfg.LogLevel = c.logLevel
	}
	if strings.TrimSpace(c.tokenStore) != "" {
		cfg.TokenStore = strings.ToLower(strings.TrimSpace(c.tokenStore))
	}
	if adjust != nil {
		adjust(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, withCode(exitUsage, err)
	}
	return cfg, nil
}

// core builds the shared console core. Guard navigations outside the web
// server become hints on stderr.
func (c *cli) core(ctx context.Context, adjust func(cfg *config.Config)) (*app.Core, error) {
	cfg, err := c.config(adjust)
	if err != nil {
		return nil, err
	}

	_, noColor := os.LookupEnv("NO_COLOR")
	log := logger.New(c.errOut, cfg.LogLevel, noColor)

	core, err := app.NewCore(ctx, cfg, log, guard.NavigatorFunc(c.navigate))
	if err != nil {
		return nil, err
	}
	return core, nil
}

func (c *cli) navigate(view guard.View) {
	switch view {
	case guard.ViewLogin:
		fmt.Fprintln(c.errOut, "Not signed in. Run `positions-console login` to continue.")
	case guard.ViewDashboard:
		fmt.Fprintln(c.errOut, "Already signed in. Run `positions-console whoami` for details.")
	}
}
