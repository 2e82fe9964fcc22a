package cli

import (
	"fmt"
	"os"
	"strings"

	"platestack/internal/config"
	"platestack/internal/filename"

	"github.com/spf13/cobra"
)

func newConfigCmd(root *Root) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long:  "Show, validate, or initialize the platestack configuration",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.configShow()
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := root.cfg.Validate(); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "Configuration is valid")
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current configuration to the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultPath()
			if err := config.Save(root.cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Configuration written to %s\n", path)
			return nil
		},
	}

	cmd.AddCommand(showCmd, validateCmd, initCmd)
	return cmd
}

func (r *Root) configShow() error {
	fmt.Fprintf(os.Stdout, "Current configuration:\n")
	fmt.Fprintf(os.Stdout, "Config file: %s\n\n", config.DefaultPath())

	fmt.Fprintf(os.Stdout, "Channels:\n")
	fmt.Fprintf(os.Stdout, "  Selected: %s\n", strings.Join(r.cfg.Channels.Selected, ", "))
	fmt.Fprintf(os.Stdout, "  Scanned:  %s\n", strings.Join(r.cfg.ExpandedChannels(), ", "))
	fmt.Fprintf(os.Stdout, "  Known:    %s\n", strings.Join(filename.DefaultVocabulary, ", "))

	fmt.Fprintf(os.Stdout, "\nRun:\n")
	fmt.Fprintf(os.Stdout, "  Plate size:     %d\n", r.cfg.Plate.Size)
	fmt.Fprintf(os.Stdout, "  Erase raw:      %t\n", r.cfg.Run.EraseRaw)
	fmt.Fprintf(os.Stdout, "  On group error: %s\n", r.cfg.Run.OnGroupError)
	fmt.Fprintf(os.Stdout, "  Settle window:  %ds\n", r.cfg.Watch.SettleSeconds)

	fmt.Fprintf(os.Stdout, "\nPaths:\n")
	fmt.Fprintf(os.Stdout, "  Default input: %s\n", r.cfg.Paths.DefaultInput)
	fmt.Fprintf(os.Stdout, "  Database:      %s\n", r.cfg.Paths.DatabasePath)

	fmt.Fprintf(os.Stdout, "\nLogging:\n")
	fmt.Fprintf(os.Stdout, "  Level:  %s\n", r.cfg.Logging.Level)
	fmt.Fprintf(os.Stdout, "  Format: %s\n", r.cfg.Logging.Format)
	if r.cfg.Logging.FileOutput {
		fmt.Fprintf(os.Stdout, "  File:   %s\n", r.cfg.Logging.LogDir)
	}
	return nil
}
