package ingest

import (
	"io"

	"github.com/maryakemi70/HY4RES-WP2/internal/model"
)

// SeriesParser reads a single canonical series from a source.
type SeriesParser interface {
	Parse(r io.Reader) (model.Series, error)
}

// GridMixReader reads per-day grid mix rows from a source.
type GridMixReader interface {
	Parse(r io.Reader) ([]model.GridMixRow, error)
}
