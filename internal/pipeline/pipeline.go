// Package pipeline orchestrates one batch run: list, normalize, build
// the coordinate space, organize into wells, assemble every group, and
// optionally erase the raw tree. All phases run strictly in sequence;
// the working directory is mutated destructively and must not be
// touched by anything else while a run is in flight.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"platestack/internal/assemble"
	"platestack/internal/config"
	"platestack/internal/fsutil"
	"platestack/internal/normalize"
	"platestack/internal/organize"
	"platestack/internal/plate"
	"platestack/internal/storage"
)

// Options configures one run. Everything is decided up front; there are
// no interaction points mid-run.
type Options struct {
	RunID    string
	InputDir string
	// Channels is the expanded channel selection.
	Channels  []string
	PlateSize int
	EraseRaw  bool
	// OnGroupError is config.OnGroupErrorContinue or ...Abort.
	OnGroupError string

	Assembler assemble.Assembler
	// Progress, when set, is invoked after each group with the number of
	// groups finished and the total. Presentation is the caller's
	// concern.
	Progress func(done, total int)
	Store    *storage.Store
	Log      *slog.Logger
}

// GroupOutcome records the result of assembling one group.
type GroupOutcome struct {
	Group     plate.Group
	Output    string
	FileCount int
	Err       error
}

// Summary is the final report of a run.
type Summary struct {
	RunID     string
	Space     plate.CoordinateSpace
	Groups    []GroupOutcome
	Completed int
	Failed    int
	ErasedRaw bool
	Warnings  []string
}

// ErrAborted is returned when a group failure stops the run under the
// abort policy.
var ErrAborted = errors.New("run aborted after group failure")

// Run executes the whole batch pipeline over opts.InputDir.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.InputDir == "" {
		return nil, errors.New("input directory not set")
	}
	if opts.Assembler == nil {
		return nil, errors.New("no assembler configured")
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	if opts.OnGroupError == "" {
		opts.OnGroupError = config.OnGroupErrorContinue
	}
	channelCount := len(opts.Channels)
	if channelCount == 0 {
		channelCount = 1
	}

	names, err := fsutil.ListTIFFs(opts.InputDir)
	if err != nil {
		return nil, fmt.Errorf("list input directory: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no TIFF files in %s", opts.InputDir)
	}
	log.Info("run started", "run_id", opts.RunID, "input", opts.InputDir, "files", len(names))

	rep, names, err := normalize.Apply(opts.InputDir, names, opts.Channels)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	log.Info("filenames normalized", "renamed", rep.Renamed, "skipped", rep.Skipped)

	summary := &Summary{RunID: opts.RunID}
	summary.Warnings = append(summary.Warnings, rep.Warnings...)

	space := plate.BuildCoordinateSpace(names, opts.Channels)
	summary.Space = space
	summary.Warnings = append(summary.Warnings, space.Warnings...)
	if layout, lerr := plate.LayoutFor(opts.PlateSize); lerr == nil {
		summary.Warnings = append(summary.Warnings, plate.BoundsWarnings(layout, space.Wells)...)
	}
	for _, w := range summary.Warnings {
		log.Warn(w)
	}
	log.Info("coordinate space built",
		"wells", len(space.Wells),
		"positions", space.MaxPosition,
		"z_steps", space.MaxZ+1,
		"timepoints", space.MaxTimepoint,
		"channels", channelCount,
	)

	groups := plate.EnumerateGroups(space, channelCount)
	if opts.Store != nil {
		if serr := opts.Store.RecordRunStart(storage.RunRecord{
			ID:          opts.RunID,
			InputDir:    opts.InputDir,
			Wells:       len(space.Wells),
			Positions:   space.MaxPosition,
			ZSteps:      space.MaxZ + 1,
			Timepoints:  space.MaxTimepoint,
			Channels:    channelCount,
			GroupsTotal: len(groups),
		}); serr != nil {
			log.Warn("failed to record run start", "error", serr)
		}
	}

	if err := organize.IntoWells(opts.InputDir, names, space.Wells); err != nil {
		finishRun(opts, summary, "failed", err)
		return nil, fmt.Errorf("organize into wells: %w", err)
	}

	for i, g := range groups {
		if ctx.Err() != nil {
			finishRun(opts, summary, "failed", ctx.Err())
			return summary, ctx.Err()
		}

		outcome := assembleGroup(ctx, opts, g)
		summary.Groups = append(summary.Groups, outcome)
		recordGroup(opts, log, outcome)

		if outcome.Err != nil {
			summary.Failed++
			log.Error("group failed", "well", g.Well, "position", g.Position, "error", outcome.Err)
			if opts.OnGroupError == config.OnGroupErrorAbort {
				finishRun(opts, summary, "aborted", outcome.Err)
				return summary, fmt.Errorf("%w: well %s SP%d: %v", ErrAborted, g.Well, g.Position, outcome.Err)
			}
		} else {
			summary.Completed++
			log.Info("group assembled", "well", g.Well, "position", g.Position, "output", outcome.Output, "planes", outcome.FileCount)
		}

		if opts.Progress != nil {
			opts.Progress(i+1, len(groups))
		}
	}

	// Raw data is only erased after a fully clean run; a failed group
	// leaves its inputs on disk for inspection and retry.
	if opts.EraseRaw && summary.Failed == 0 {
		if err := organize.RemoveRaw(opts.InputDir); err != nil {
			finishRun(opts, summary, "failed", err)
			return summary, err
		}
		summary.ErasedRaw = true
	}

	finishRun(opts, summary, "completed", nil)
	log.Info("run finished",
		"run_id", opts.RunID,
		"groups", len(summary.Groups),
		"completed", summary.Completed,
		"failed", summary.Failed,
		"erased_raw", summary.ErasedRaw,
	)
	return summary, nil
}

func assembleGroup(ctx context.Context, opts Options, g plate.Group) GroupOutcome {
	wellDir := organize.WellDir(opts.InputDir, g.Well)
	output := organize.JointPath(opts.InputDir, g.Well, g.FirstFile, assemble.JointSuffix)

	files, err := assemble.MemberFiles(wellDir, g, opts.Channels)
	if err != nil {
		return GroupOutcome{Group: g, Err: err}
	}
	if len(files) == 0 {
		return GroupOutcome{Group: g, Err: fmt.Errorf("no files for well %s SP%d", g.Well, g.Position)}
	}

	res, err := opts.Assembler.Assemble(ctx, assemble.Request{Group: g, Files: files, Output: output})
	if err != nil {
		return GroupOutcome{Group: g, FileCount: len(files), Err: err}
	}
	return GroupOutcome{Group: g, Output: res.Output, FileCount: len(files)}
}

func recordGroup(opts Options, log *slog.Logger, outcome GroupOutcome) {
	if opts.Store == nil {
		return
	}
	rec := storage.GroupRecord{
		RunID:     opts.RunID,
		Well:      outcome.Group.Well,
		Position:  outcome.Group.Position,
		FirstFile: outcome.Group.FirstFile,
		Pattern:   outcome.Group.Pattern,
		FileCount: outcome.FileCount,
		Status:    "completed",
	}
	if outcome.Err != nil {
		rec.Status = "failed"
		rec.Error = outcome.Err.Error()
	}
	if err := opts.Store.RecordGroup(rec); err != nil {
		log.Warn("failed to record group", "error", err)
	}
}

func finishRun(opts Options, summary *Summary, status string, err error) {
	if opts.Store == nil {
		return
	}
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	_ = opts.Store.RecordRunResult(opts.RunID, status, summary.Failed, summary.ErasedRaw, msg)
}
