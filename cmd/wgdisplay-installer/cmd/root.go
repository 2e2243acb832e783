package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/wgdisplay-installer/internal/config"
	"github.com/oshokin/wgdisplay-installer/internal/logger"
	"github.com/oshokin/wgdisplay-installer/internal/service/installer"
	"github.com/oshokin/wgdisplay-installer/internal/version"
)

var (
	// configPath to the optional settings YAML file.
	configPath string
	// logLevel is the minimum level of printed messages.
	logLevel string
	// machine overrides the detected machine identifier.
	machine string

	// rootCmd downloads WG Display and provisions the device.
	rootCmd = &cobra.Command{
		Use:   "wgdisplay-installer",
		Short: "Install WG Display on this Raspberry Pi and reboot.",
		Long: `Installs the WG Display release matching this Raspberry Pi and prepares the
device to start it on boot:

  1. detect the CPU architecture and pick the release artifact,
  2. download it and make it executable,
  3. install iptables and patch ~/.bashrc to launch the display,
  4. rename the host to wgdisplay and enable console autologin,
  5. reboot.

Settings are read from wgdisplay-installer.yaml when present.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("unknown log level %q", logLevel)
			}

			logger.SetLevel(level)

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &installer.Options{
				ConfigPath: configPath,
				Machine:    machine,
			}

			return installer.Run(ctx, options)
		},
	}
)

// Execute runs the installer CLI and exits with status 1 on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to settings file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")

	// Hidden override for images where uname does not report the real CPU.
	rootCmd.Flags().StringVar(&machine, "machine", "", "machine identifier to install for")

	err := rootCmd.Flags().MarkHidden("machine")
	if err != nil {
		panic(err)
	}
}
