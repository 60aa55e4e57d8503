package records

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jonathan/dumpstat/internal/extract"
	"github.com/jonathan/dumpstat/internal/ingestion"
	"github.com/jonathan/dumpstat/internal/logging"
)

// Stats counts what a scan saw.
type Stats struct {
	Files      int `json:"files"`
	Blocks     int `json:"blocks"`
	Records    int `json:"records"`
	Rejected   int `json:"rejected"`
	Collisions int `json:"collisions"`
}

func (s *Stats) add(o Stats) {
	s.Files += o.Files
	s.Blocks += o.Blocks
	s.Records += o.Records
	s.Rejected += o.Rejected
	s.Collisions += o.Collisions
}

// ParseDir parses every regular file in dir, in file name order.
// Subdirectories are skipped. Blocks that fail to decode are logged and
// dropped; only a missing or unreadable directory or file fails the scan.
func ParseDir(ctx context.Context, dir string, log *logging.Logger) (Collection, Stats, error) {
	if log == nil {
		log = logging.Nop()
	}

	// os.ReadDir returns entries sorted by file name, which fixes the order
	// of records across platforms.
	entries, err := os.ReadDir(dir)
	if err != nil {
		msg := "failed to read data directory"
		if errors.Is(err, fs.ErrNotExist) {
			msg = "data directory not found"
		}
		return nil, Stats{}, &ScanError{Path: dir, Message: msg, Cause: err}
	}

	coll := Collection{}
	var stats Stats
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil {
			return nil, stats, &ScanError{Path: path, Message: "failed to stat file", Cause: err}
		}
		if !info.Mode().IsRegular() {
			log.Debug().Str("path", path).Msg("skipping non-regular file")
			continue
		}

		recs, fileStats, err := ParseFile(path, log)
		if err != nil {
			return nil, stats, err
		}
		coll = append(coll, recs...)
		stats.add(fileStats)
	}

	return coll, stats, nil
}

// ParseFile extracts the records of a single file.
func ParseFile(path string, log *logging.Logger) (Collection, Stats, error) {
	if log == nil {
		log = logging.Nop()
	}

	text, enc, err := ingestion.ReadText(path)
	if err != nil {
		return nil, Stats{}, &ScanError{Path: path, Message: "failed to read export file", Cause: err}
	}

	base := FileBase(path)
	flog := log.With().Str("file", base).Logger()
	switch enc {
	case ingestion.UTF8:
	case ingestion.UTF8Lossy:
		flog.Warn().Msg("export is not valid UTF-8; invalid bytes replaced with U+FFFD")
	default:
		flog.Debug().Str("encoding", string(enc)).Msg("decoded non UTF-8 export")
	}

	coll := Collection{}
	stats := Stats{Files: 1}
	for obj, err := range extract.Objects(text) {
		stats.Blocks++
		if err != nil {
			stats.Rejected++
			var derr *extract.DecodeError
			if errors.As(err, &derr) {
				derr.File = path
				flog.Warn().Str("block", derr.Block).Err(derr.Cause).Msg("skipping block that is not valid JSON")
			} else {
				flog.Warn().Err(err).Msg("skipping block")
			}
			continue
		}

		if c := Decorate(obj, base); c != nil {
			stats.Collisions++
			flog.Warn().Str("previous", c.Previous).Msgf("block already has a %q field; overwriting", FilenameKey)
		}
		coll = append(coll, obj)
		stats.Records++
	}

	flog.Debug().Int("blocks", stats.Blocks).Int("records", stats.Records).Msg("parsed export file")
	return coll, stats, nil
}
