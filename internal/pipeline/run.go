// Package pipeline wires the parse and load stages together.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/dumpstat/internal/config"
	"github.com/jonathan/dumpstat/internal/ingestion"
	"github.com/jonathan/dumpstat/internal/loader"
	"github.com/jonathan/dumpstat/internal/logging"
	"github.com/jonathan/dumpstat/internal/records"
	"github.com/jonathan/dumpstat/internal/report"
	"github.com/jonathan/dumpstat/internal/schemas"
	"github.com/jonathan/dumpstat/internal/store"
	"github.com/jonathan/dumpstat/internal/store/mongostore"
	"github.com/jonathan/dumpstat/internal/store/pgstore"
)

// Step names used in progress events.
const (
	StepParse     = "parse"
	StepArtifact  = "artifact"
	StepLoad      = "load"
	StepAggregate = "aggregate"
	StepReport    = "report"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Opener opens the store described by cfg.
type Opener func(ctx context.Context, cfg config.StoreConfig, log *logging.Logger) (store.Store, error)

// ParseOptions holds configuration for the parse stage
type ParseOptions struct {
	DataDir    string
	JSONFile   string
	Log        *logging.Logger
	OnProgress ProgressCallback
}

// ParseResult summarizes a parse run.
type ParseResult struct {
	RunID   uuid.UUID
	Stats   records.Stats
	Removed bool // a previous artifact was replaced
}

// LoadOptions holds configuration for the load stage
type LoadOptions struct {
	Store          config.StoreConfig
	JSONFile       string
	ResultFile     string
	ValidateSchema bool   // require every document to carry a string filename
	Open           Opener // defaults to OpenStore
	Log            *logging.Logger
	OnProgress     ProgressCallback
}

// LoadResult summarizes a load run.
type LoadResult struct {
	RunID    uuid.UUID
	Inserted int
	Rows     []report.Row
}

type run struct {
	id         uuid.UUID
	log        *logging.Logger
	onProgress ProgressCallback
}

func newRun(log *logging.Logger, onProgress ProgressCallback) run {
	id := uuid.New()
	if log == nil {
		log = logging.Nop()
	}
	l := log.With().Str("run_id", id.String()).Logger()
	return run{id: id, log: &l, onProgress: onProgress}
}

// emit calls the progress callback if configured
func (r run) emit(step, format string, args ...any) {
	if r.onProgress != nil {
		r.onProgress(ProgressEvent{Step: step, Message: fmt.Sprintf(format, args...), RunID: r.id.String()})
	}
}

// Parse extracts records from every file in DataDir and writes the artifact.
// Bad blocks are logged and skipped; a missing directory or an unwritable
// artifact fails the run.
func Parse(ctx context.Context, opts ParseOptions) (*ParseResult, error) {
	r := newRun(opts.Log, opts.OnProgress)

	coll, stats, err := records.ParseDir(ctx, opts.DataDir, r.log)
	if err != nil {
		return nil, err
	}
	r.log.Info().
		Int("files", stats.Files).
		Int("blocks", stats.Blocks).
		Int("records", stats.Records).
		Int("rejected", stats.Rejected).
		Msg("parsed data directory")
	r.emit(StepParse, "Parsed %d records from %d files (%d blocks rejected)", stats.Records, stats.Files, stats.Rejected)

	removed, err := records.WriteArtifact(opts.JSONFile, coll)
	if err != nil {
		return nil, err
	}
	if removed {
		r.emit(StepArtifact, "Existing result file '%s' has been removed.", opts.JSONFile)
	}
	r.emit(StepArtifact, "Combined JSON output has been written to: %s", opts.JSONFile)

	return &ParseResult{RunID: r.id, Stats: stats, Removed: removed}, nil
}

// Load reads the artifact, replaces the store collection with it, runs the
// size aggregation and writes the CSV report.
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	r := newRun(opts.Log, opts.OnProgress)

	art, err := loader.ReadArtifact(opts.JSONFile)
	if err != nil {
		return nil, err
	}
	r.log.Debug().Str("encoding", string(art.Encoding)).Int("documents", len(art.Docs)).Msg("read artifact")
	if art.Encoding == ingestion.UTF8Lossy {
		r.log.Warn().Str("path", opts.JSONFile).Msg("artifact is not valid UTF-8; invalid bytes replaced with U+FFFD")
	}

	if opts.ValidateSchema {
		if err := schemas.ValidateRecords([]byte(art.Text)); err != nil {
			return nil, fmt.Errorf("artifact %s does not match the record schema: %w", opts.JSONFile, err)
		}
	}

	open := opts.Open
	if open == nil {
		open = OpenStore
	}
	st, err := open(ctx, opts.Store, r.log)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := st.Close(context.WithoutCancel(ctx)); err != nil {
			r.log.Warn().Err(err).Msg("failed to close store")
		}
	}()

	inserted, err := st.ReplaceCollection(ctx, opts.Store.Collection, art.Docs)
	if err != nil {
		return nil, err
	}
	r.log.Info().Str("collection", opts.Store.Collection).Int("inserted", inserted).Msg("collection replaced")
	r.emit(StepLoad, "Data successfully saved to %s (%d documents)", opts.Store.Collection, inserted)

	rows, err := st.AggregateSizes(ctx, opts.Store.Collection)
	if err != nil {
		return nil, err
	}
	r.emit(StepAggregate, "Aggregated %d projects", len(rows))

	if err := report.WriteCSV(opts.ResultFile, rows); err != nil {
		return nil, err
	}
	r.emit(StepReport, "Aggregation result written to %s", opts.ResultFile)

	return &LoadResult{RunID: r.id, Inserted: inserted, Rows: rows}, nil
}

// OpenStore opens the backend selected by the URL scheme.
func OpenStore(ctx context.Context, cfg config.StoreConfig, log *logging.Logger) (store.Store, error) {
	kind, err := store.KindOf(cfg.URL)
	if err != nil {
		return nil, err
	}
	switch kind {
	case store.KindPostgres:
		s, err := pgstore.Open(ctx, cfg.URL, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		s, err := mongostore.Open(ctx, cfg.URL, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Run parses the data directory and loads the resulting artifact.
func Run(ctx context.Context, parse ParseOptions, load LoadOptions) (*ParseResult, *LoadResult, error) {
	pr, err := Parse(ctx, parse)
	if err != nil {
		return nil, nil, fmt.Errorf("parse: %w", err)
	}
	lr, err := Load(ctx, load)
	if err != nil {
		return pr, nil, fmt.Errorf("load: %w", err)
	}
	return pr, lr, nil
}
