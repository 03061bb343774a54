// Package extract runs batches of envelope files through the decoder and
// writes the recovered content next to each input.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/bave/unp7m"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Default settings.
const (
	DefaultExtension     = ".p7m"
	DefaultOutputDirName = "unsigned output"
)

// Option configures an Extractor.
type Option func(*Extractor)

// WithFs sets the filesystem inputs are read from and outputs written to.
func WithFs(fs afero.Fs) Option {
	return func(e *Extractor) {
		e.fs = fs
	}
}

// WithLogger sets the logger for the extractor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// WithExtension sets the envelope extension that selects batch files.
// A missing leading dot is added.
func WithExtension(ext string) Option {
	return func(e *Extractor) {
		e.extension = normalizeExtension(ext)
	}
}

// WithOutputDirName sets the name of the directory created next to each
// input to hold its extracted content.
func WithOutputDirName(name string) Option {
	return func(e *Extractor) {
		e.outputDirName = name
	}
}

// WithOverwrite controls whether existing output files are replaced. When
// disabled, an existing output fails the file with ErrOutputCollision.
func WithOverwrite(overwrite bool) Option {
	return func(e *Extractor) {
		e.overwrite = overwrite
	}
}

// WithNested enables unwrapping envelopes nested inside envelopes.
func WithNested(nested bool) Option {
	return func(e *Extractor) {
		e.nested = nested
	}
}

// Extractor processes batches of envelope files.
type Extractor struct {
	fs            afero.Fs
	logger        *slog.Logger
	extension     string
	outputDirName string
	overwrite     bool
	nested        bool
}

// New creates an Extractor. Without options it works on the OS filesystem
// and selects ".p7m" files.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		fs:            afero.NewOsFs(),
		logger:        slog.Default(),
		extension:     DefaultExtension,
		outputDirName: DefaultOutputDirName,
		overwrite:     true,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Matches reports whether path carries the envelope extension.
func (e *Extractor) Matches(path string) bool {
	return strings.EqualFold(filepath.Ext(path), e.extension)
}

// Filter returns the paths that carry the envelope extension, in order.
func (e *Extractor) Filter(paths []string) []string {
	var batch []string
	for _, p := range paths {
		if e.Matches(p) {
			batch = append(batch, p)
		}
	}
	return batch
}

// Start filters paths and processes the batch on a new goroutine. The
// returned channel receives one Progress event per batch file and then a
// single Summary event, after which it is closed.
//
// The channel holds every event of the batch, so the worker never waits on
// the caller: a caller that cancels ctx and stops reading does not leave it
// behind. Cancelling ctx skips the files not yet started; the Summary is
// still delivered.
func (e *Extractor) Start(ctx context.Context, paths []string) <-chan Event {
	batch := e.Filter(paths)
	events := make(chan Event, len(batch)+1)

	go e.run(ctx, batch, events)

	return events
}

// Run processes paths synchronously, handing every event to fn, and returns
// the Summary. fn may be nil.
func (e *Extractor) Run(ctx context.Context, paths []string, fn func(Event)) *Summary {
	var summary *Summary
	for ev := range e.Start(ctx, paths) {
		if fn != nil {
			fn(ev)
		}
		if ev.Summary != nil {
			summary = ev.Summary
		}
	}
	return summary
}

func (e *Extractor) run(ctx context.Context, batch []string, events chan<- Event) {
	defer close(events)

	id := uuid.NewString()
	logger := e.logger.With("batch", id)
	summary := &Summary{BatchID: id, Total: len(batch)}

	logger.Info("batch started", "files", len(batch))

	for i, path := range batch {
		var out Outcome
		if ctx.Err() != nil {
			out = Outcome{Path: path, Kind: KindSkipped, Reason: "cancelled"}
		} else {
			out = e.extractOne(path)
		}

		switch out.Kind {
		case KindSuccess:
			logger.Info("extracted", "path", path, "output", out.Output, "layers", out.Layers)
		case KindFailed:
			logger.Warn("extraction failed", "path", path, "error", out.Err)
		case KindSkipped:
			logger.Debug("skipped", "path", path, "reason", out.Reason)
		}

		summary.add(out)
		events <- Event{Progress: &Progress{
			Processed: i + 1,
			Total:     len(batch),
			Current:   path,
			Outcome:   out,
		}}
	}

	logger.Info("batch finished",
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped)

	events <- Event{Summary: summary}
}

func (e *Extractor) extractOne(path string) Outcome {
	fail := func(err error) Outcome {
		return Outcome{Path: path, Kind: KindFailed, Err: err}
	}

	info, err := e.fs.Stat(path)
	if err != nil {
		return fail(fmt.Errorf("%w: %w", ErrIO, err))
	}
	if !info.Mode().IsRegular() {
		return Outcome{Path: path, Kind: KindSkipped, Reason: "not a regular file"}
	}

	data, err := afero.ReadFile(e.fs, path)
	if err != nil {
		return fail(fmt.Errorf("%w: %w", ErrIO, err))
	}

	var payload *cms.Payload
	if e.nested {
		payload, err = cms.Unwrap(data, cms.MaxLayers)
	} else {
		payload, err = cms.Decode(data)
	}
	if err != nil {
		return fail(err)
	}

	dir := OutputDir(path, e.outputDirName)
	if err = e.fs.MkdirAll(dir, 0755); err != nil {
		return fail(fmt.Errorf("%w: %w", ErrIO, err))
	}

	target := filepath.Join(dir, OutputName(path, payload, e.extension))

	if !e.overwrite {
		exists, err := afero.Exists(e.fs, target)
		if err != nil {
			return fail(fmt.Errorf("%w: %w", ErrIO, err))
		}
		if exists {
			return fail(fmt.Errorf("%w: %s", ErrOutputCollision, target))
		}
	}

	if err = afero.WriteFile(e.fs, target, payload.Data, 0644); err != nil {
		return fail(fmt.Errorf("%w: %w", ErrIO, err))
	}

	return Outcome{Path: path, Kind: KindSuccess, Output: target, Layers: payload.Layers}
}
