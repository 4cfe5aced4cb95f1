package main

import (
	"github.com/spf13/cobra"

	"positions-console/internal/app"
	"positions-console/internal/config"
)

func newServeCmd(c *cli) *cobra.Command {
	var host, port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local web console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			core, err := c.core(cmd.Context(), func(cfg *config.Config) {
				if host != "" {
					cfg.ServerHost = host
				}
				if port != "" {
					cfg.ServerPort = port
				}
			})
			if err != nil {
				return err
			}
			defer core.Close()

			application, err := app.New(core)
			if err != nil {
				return err
			}
			return application.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen address (overrides SERVER_HOST)")
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides SERVER_PORT)")
	return cmd
}
