package geophys

import (
	"log/slog"
	"runtime"
)

// Options configures dataset construction.
type Options struct {
	// MaxTransferBytes caps the size of any single bulk array transfer from
	// the underlying source. Larger arrays are copied in chunks of at most
	// this many bytes. Defaults to 500 MB.
	MaxTransferBytes int

	// Logger receives debug messages around KD-tree builds, subset masking
	// and grid interpolation. If nil, log output is discarded. The engine
	// never logs at info level or above on its own.
	Logger *slog.Logger
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		MaxTransferBytes: 500000000,
		Logger:           nil,
	}
}

// CatalogOptions controls parallel catalog building.
type CatalogOptions struct {
	// Workers bounds the number of datasets opened concurrently.
	// If 0, defaults to runtime.NumCPU().
	Workers int

	// SkipErrors causes BuildCatalog to skip datasets that fail to open
	// instead of aborting on the first failure.
	SkipErrors bool

	// Options is applied to every dataset opened by BuildCatalog.
	Options Options
}

// DefaultCatalogOptions returns catalog options with sensible defaults.
func DefaultCatalogOptions() CatalogOptions {
	return CatalogOptions{
		Workers:    runtime.NumCPU(),
		SkipErrors: true,
		Options:    DefaultOptions(),
	}
}
