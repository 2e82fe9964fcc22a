// Package cli wires the batch pipeline, storage, and watcher into the
// platestack command tree.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"platestack/internal/assemble"
	"platestack/internal/config"
	"platestack/internal/pipeline"
	"platestack/internal/storage"

	"github.com/schollz/progressbar/v3"
)

type runFunc func(ctx context.Context, opts pipeline.Options) (*pipeline.Summary, error)

// Root holds the shared command dependencies. runFn and newAssembler
// are swappable for tests.
type Root struct {
	cfg          *config.Config
	log          *slog.Logger
	store        *storage.Store
	runFn        runFunc
	newAssembler func() assemble.Assembler
}

// NewRoot constructs the command dependencies with the ImageMagick
// assembler.
func NewRoot(cfg *config.Config, logger *slog.Logger, store *storage.Store) *Root {
	return &Root{
		cfg:   cfg,
		log:   logger,
		store: store,
		runFn: pipeline.Run,
		newAssembler: func() assemble.Assembler {
			return assemble.NewMagickAssembler()
		},
	}
}

// runOverrides carries per-invocation flag overrides on top of the
// loaded configuration.
type runOverrides struct {
	channels     []string
	plateSize    int
	eraseRaw     bool
	onGroupError string
	progress     bool
}

func (r *Root) runOnce(ctx context.Context, input string, ov runOverrides) error {
	cfg := *r.cfg
	if len(ov.channels) > 0 {
		cfg.Channels.Selected = ov.channels
	}
	if ov.plateSize > 0 {
		cfg.Plate.Size = ov.plateSize
	}
	if ov.onGroupError != "" {
		cfg.Run.OnGroupError = ov.onGroupError
	}
	if ov.eraseRaw {
		cfg.Run.EraseRaw = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts := pipeline.Options{
		RunID:        newID("run"),
		InputDir:     input,
		Channels:     cfg.ExpandedChannels(),
		PlateSize:    cfg.Plate.Size,
		EraseRaw:     cfg.Run.EraseRaw,
		OnGroupError: cfg.Run.OnGroupError,
		Assembler:    r.newAssembler(),
		Store:        r.store,
		Log:          r.log,
	}
	if ov.progress {
		var bar *progressbar.ProgressBar
		opts.Progress = func(done, total int) {
			if bar == nil {
				bar = progressbar.Default(int64(total), "assembling")
			}
			_ = bar.Set(done)
		}
	}

	sum, err := r.runFn(ctx, opts)
	if sum != nil {
		printSummary(sum)
	}
	return err
}

func printSummary(sum *pipeline.Summary) {
	fmt.Fprintf(os.Stdout, "\nRun %s\n", sum.RunID)
	fmt.Fprintf(os.Stdout, "  Wells:      %d\n", len(sum.Space.Wells))
	fmt.Fprintf(os.Stdout, "  Positions:  %d\n", sum.Space.MaxPosition)
	fmt.Fprintf(os.Stdout, "  Z steps:    %d\n", sum.Space.MaxZ+1)
	fmt.Fprintf(os.Stdout, "  Timepoints: %d\n", sum.Space.MaxTimepoint)
	fmt.Fprintf(os.Stdout, "  Groups:     %d (%d completed, %d failed)\n",
		len(sum.Groups), sum.Completed, sum.Failed)
	if sum.ErasedRaw {
		fmt.Fprintln(os.Stdout, "  Raw data erased")
	}
	for _, g := range sum.Groups {
		if g.Err != nil {
			fmt.Fprintf(os.Stdout, "  FAILED %s SP%d: %v\n", g.Group.Well, g.Group.Position, g.Err)
		}
	}
	for _, w := range sum.Warnings {
		fmt.Fprintf(os.Stdout, "  warning: %s\n", w)
	}
}

func newID(prefix string) string {
	ts := time.Now().UTC().Format("20060102T150405")
	return fmt.Sprintf("%s-%s-%04d", prefix, ts, rand.Intn(10000))
}
