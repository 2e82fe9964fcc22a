package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"platestack/internal/config"
	"platestack/internal/fsutil"
	"platestack/internal/normalize"
	"platestack/internal/organize"
	"platestack/internal/plate"
	"platestack/internal/storage"
	"platestack/internal/watch"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root Cobra command.
func NewRootCmd(cfg *config.Config, log *slog.Logger, store *storage.Store) *cobra.Command {
	return newRootCommand(NewRoot(cfg, log, store))
}

func newRootCommand(root *Root) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "platestack",
		Short: "Platestack assembles plate-reader TIFF exports into joined stacks",
		Long: `Platestack normalizes plate-reader filenames, sorts the images into
per-well directories, and joins each well/position series into one
multi-dimensional TIFF stack.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newRunCmd(root))
	rootCmd.AddCommand(newNormalizeCmd(root))
	rootCmd.AddCommand(newScanCmd(root))
	rootCmd.AddCommand(newWatchCmd(root))
	rootCmd.AddCommand(newCleanCmd(root))
	rootCmd.AddCommand(newRunsCmd(root))
	rootCmd.AddCommand(newConfigCmd(root))
	rootCmd.AddCommand(newVersionCmd(root))

	return rootCmd
}

func newRunCmd(root *Root) *cobra.Command {
	var (
		channels   []string
		plateSize  int
		eraseRaw   bool
		onError    string
		noProgress bool
	)

	cmd := &cobra.Command{
		Use:   "run <input_directory>",
		Short: "Process a plate directory end to end",
		Long: `Normalize filenames, organize images into per-well directories, and
assemble one joined TIFF stack per well/position group.

Examples:
  # Single bright-field channel, defaults from config
  platestack run /data/plate-2026-08-20/

  # Fluorescence channels on a 24-well plate, erase raw data afterwards
  platestack run /data/plate/ --channels GFP --channels DAPI --plate 24 --erase-raw`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.runOnce(cmd.Context(), args[0], runOverrides{
				channels:     channels,
				plateSize:    plateSize,
				eraseRaw:     eraseRaw,
				onGroupError: onError,
				progress:     !noProgress,
			})
		},
	}

	cmd.Flags().StringSliceVarP(&channels, "channels", "c", nil, "channel names to scan for (repeatable), defaults to config selection")
	cmd.Flags().IntVarP(&plateSize, "plate", "p", 0, "plate size for bounds warnings (1|2|6|24|96|384), defaults to config")
	cmd.Flags().BoolVar(&eraseRaw, "erase-raw", false, "remove the RAW_DATA tree after a fully clean run")
	cmd.Flags().StringVar(&onError, "on-error", "", "group failure policy (continue|abort), defaults to config")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")

	return cmd
}

func newNormalizeCmd(root *Root) *cobra.Command {
	var channels []string

	cmd := &cobra.Command{
		Use:   "normalize <input_directory>",
		Short: "Rewrite filenames into canonical form without assembling",
		Long: `Split concatenated read-step tokens, insert missing Z indices, and
strip channel-name tokens. Files are renamed in place; nothing is
moved or assembled.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			cfg := *root.cfg
			if len(channels) > 0 {
				cfg.Channels.Selected = channels
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			names, err := fsutil.ListTIFFs(input)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				return fmt.Errorf("no TIFF files in %s", input)
			}

			rep, _, err := normalize.Apply(input, names, cfg.ExpandedChannels())
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Renamed %d of %d files (%d already canonical)\n",
				rep.Renamed, len(names), rep.Skipped)
			for _, w := range rep.Warnings {
				fmt.Fprintf(os.Stdout, "warning: %s\n", w)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&channels, "channels", "c", nil, "channel names to scan for (repeatable), defaults to config selection")

	return cmd
}

func newScanCmd(root *Root) *cobra.Command {
	var (
		channels  []string
		plateSize int
	)

	cmd := &cobra.Command{
		Use:   "scan <input_directory>",
		Short: "Preview the coordinate space and groups without touching files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			cfg := *root.cfg
			if len(channels) > 0 {
				cfg.Channels.Selected = channels
			}
			if plateSize > 0 {
				cfg.Plate.Size = plateSize
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			names, err := fsutil.ListTIFFs(input)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				return fmt.Errorf("no TIFF files in %s", input)
			}

			expanded := cfg.ExpandedChannels()
			space := plate.BuildCoordinateSpace(names, expanded)
			groups := plate.EnumerateGroups(space, len(expanded))

			fmt.Fprintf(os.Stdout, "Files:      %d\n", len(names))
			fmt.Fprintf(os.Stdout, "Wells:      %d %v\n", len(space.Wells), space.Wells)
			fmt.Fprintf(os.Stdout, "Positions:  %d\n", space.MaxPosition)
			fmt.Fprintf(os.Stdout, "Z steps:    %d\n", space.MaxZ+1)
			fmt.Fprintf(os.Stdout, "Timepoints: %d\n", space.MaxTimepoint)
			fmt.Fprintf(os.Stdout, "Channels:   %d %v\n", len(expanded), expanded)
			fmt.Fprintf(os.Stdout, "Groups:     %d\n", len(groups))
			for _, g := range groups {
				fmt.Fprintf(os.Stdout, "  %s SP%d  %s\n", g.Well, g.Position, g.Pattern)
			}

			if layout, err := plate.LayoutFor(cfg.Plate.Size); err == nil {
				for _, w := range plate.BoundsWarnings(layout, space.Wells) {
					fmt.Fprintf(os.Stdout, "warning: %s\n", w)
				}
			}
			for _, w := range space.Warnings {
				fmt.Fprintf(os.Stdout, "warning: %s\n", w)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&channels, "channels", "c", nil, "channel names to scan for (repeatable), defaults to config selection")
	cmd.Flags().IntVarP(&plateSize, "plate", "p", 0, "plate size for bounds warnings (1|2|6|24|96|384), defaults to config")

	return cmd
}

func newWatchCmd(root *Root) *cobra.Command {
	var (
		channels   []string
		plateSize  int
		eraseRaw   bool
		onError    string
		settleSecs int
		noProgress bool
	)

	cmd := &cobra.Command{
		Use:   "watch <input_directory>",
		Short: "Wait for an acquisition to settle, then process it once",
		Long: `Watch the directory for incoming TIFF files. Once no file has been
written for the settle window, run the full pipeline over the
directory and exit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			settle := time.Duration(settleSecs) * time.Second
			if settleSecs <= 0 {
				settle = time.Duration(root.cfg.Watch.SettleSeconds) * time.Second
			}
			if err := watch.Wait(cmd.Context(), input, settle, root.log); err != nil {
				return err
			}
			return root.runOnce(cmd.Context(), input, runOverrides{
				channels:     channels,
				plateSize:    plateSize,
				eraseRaw:     eraseRaw,
				onGroupError: onError,
				progress:     !noProgress,
			})
		},
	}

	cmd.Flags().StringSliceVarP(&channels, "channels", "c", nil, "channel names to scan for (repeatable), defaults to config selection")
	cmd.Flags().IntVarP(&plateSize, "plate", "p", 0, "plate size for bounds warnings (1|2|6|24|96|384), defaults to config")
	cmd.Flags().BoolVar(&eraseRaw, "erase-raw", false, "remove the RAW_DATA tree after a fully clean run")
	cmd.Flags().StringVar(&onError, "on-error", "", "group failure policy (continue|abort), defaults to config")
	cmd.Flags().IntVar(&settleSecs, "settle", 0, "seconds without activity before the acquisition counts as finished, defaults to config")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")

	return cmd
}

func newCleanCmd(root *Root) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clean <input_directory>",
		Short: "Remove the RAW_DATA tree left by a previous run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			if !yes {
				return fmt.Errorf("refusing to delete %s without --yes",
					filepath.Join(input, organize.RawDirName))
			}
			if err := organize.RemoveRaw(input); err != nil {
				return err
			}
			root.log.Info("raw data removed", "dir", input)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deletion")

	return cmd
}

func newRunsCmd(root *Root) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent pipeline runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := root.store.RecentRuns(limit)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Fprintln(os.Stdout, "No runs recorded")
				return nil
			}
			for _, rec := range recs {
				fmt.Fprintf(os.Stdout, "%s  %-9s  %d/%d groups  %s\n",
					rec.CreatedAt.Format("2006-01-02 15:04:05"),
					rec.Status,
					rec.GroupsTotal-rec.GroupsFailed, rec.GroupsTotal,
					rec.InputDir)
				if rec.Error != "" {
					fmt.Fprintf(os.Stdout, "    error: %s\n", rec.Error)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum runs to list")

	return cmd
}

func newVersionCmd(root *Root) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("Platestack v1.0.0")
		},
	}
}
