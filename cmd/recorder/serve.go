package main

import (
	"github.com/spf13/cobra"

	"mic-recorder/internal/infra/audio"
)

func newServeCmd(root *rootFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve captures over HTTP and push results to websocket subscribers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := root.cfg
			logger := root.logger
			ctx := cmd.Context()

			if cmd.Flags().Changed("addr") {
				cfg.Host.HTTPAddr = addr
			}

			device, err := createDevice(cfg, logger)
			if err != nil {
				return err
			}

			httpHost := audio.NewHTTPHost(cfg.Host.HTTPAddr, cfg.Host.AuthToken, logger)
			recorder, err := createRecorder(cfg, device, createPermission(cfg, cmd.ErrOrStderr()), httpHost, logger)
			if err != nil {
				return err
			}
			httpHost.Bind(recorder)

			if err := httpHost.Start(ctx); err != nil {
				return err
			}
			defer httpHost.Stop()

			logger.Info("recorder host ready", "addr", cfg.Host.HTTPAddr, "source", device.Name(), "duration", recorder.Duration())
			<-ctx.Done()
			logger.Info("shutting down")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides host.http_addr)")
	return cmd
}
