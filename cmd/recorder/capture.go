package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"mic-recorder/internal/application"
)

func newCaptureCmd(root *rootFlags) *cobra.Command {
	var (
		durationMs int
		expected   string
	)

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Record one clip and deliver it to the configured host",
		Example: `  recorder capture
  recorder capture --duration 2000
  recorder capture --expect "I want to learn French"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := root.cfg
			logger := root.logger

			if cmd.Flags().Changed("duration") {
				if durationMs <= 0 {
					return fmt.Errorf("--duration must be positive")
				}
				cfg.Capture.DurationMs = durationMs
			}
			if expected == "" {
				expected = cfg.Practice.ExpectedPhrase
			}
			if cfg.Host.Mode == "http" {
				return fmt.Errorf("host.mode http is served by `recorder serve`")
			}

			device, err := createDevice(cfg, logger)
			if err != nil {
				return err
			}
			recorder, err := createRecorder(cfg, device, createPermission(cfg, cmd.ErrOrStderr()), createHost(cfg, cmd.OutOrStdout()), logger)
			if err != nil {
				return err
			}

			logger.Info("starting capture", "source", device.Name(), "host", cfg.Host.Mode, "duration", recorder.Duration())

			payload, err := recorder.Record(cmd.Context())
			if err != nil {
				return err
			}

			if expected == "" {
				return nil
			}

			practice := application.NewPractice(createSpeechToText(cfg), logger)
			assessment, err := practice.Assess(cmd.Context(), payload, expected)
			if err != nil {
				return fmt.Errorf("assessing capture: %w", err)
			}

			enc := json.NewEncoder(cmd.ErrOrStderr())
			enc.SetIndent("", "  ")
			if err := enc.Encode(assessment); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), assessment.Verdict.Message())
			return nil
		},
	}

	cmd.Flags().IntVar(&durationMs, "duration", 0, "capture window in milliseconds (overrides capture.duration_ms)")
	cmd.Flags().StringVar(&expected, "expect", "", "phrase to score the recording against")
	return cmd
}
