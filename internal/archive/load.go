package archive

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/h2non/filetype"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/coachme/dsview/internal/codec"
	"github.com/coachme/dsview/internal/database"
	"github.com/coachme/dsview/internal/dataset"
)

// Loader reads archives. The zero value is not usable; use NewLoader.
type Loader struct {
	logger      *slog.Logger
	postgresDSN string
	loaded      metric.Int64Counter
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(ld *Loader) { ld.logger = l }
}

// WithPostgresDSN sets the connection string used for the "postgres" input.
func WithPostgresDSN(dsn string) Option {
	return func(ld *Loader) { ld.postgresDSN = dsn }
}

// WithMeter records the number of loaded records on meter.
func WithMeter(meter metric.Meter) Option {
	return func(ld *Loader) {
		c, err := meter.Int64Counter("dsview.archive.records_loaded",
			metric.WithDescription("Records read from archives"),
			metric.WithUnit("{record}"),
		)
		if err == nil {
			ld.loaded = c
		}
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	ld := &Loader{logger: slog.Default()}
	WithMeter(noop.Meter{})(ld)
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Load reads path with a default Loader.
func Load(ctx context.Context, path string) (*dataset.Dataset, error) {
	return NewLoader().Load(ctx, path)
}

// Load reads the archive at path, which is a file or a postgres URL.
// Every failure is returned as a *LoadError.
func (ld *Loader) Load(ctx context.Context, path string) (*dataset.Dataset, error) {
	start := time.Now()
	ds, err := ld.load(ctx, path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	ds.Source = path

	ld.loaded.Add(ctx, int64(ds.Len()), metric.WithAttributes(attribute.String("format", ds.Format)))
	ld.logger.DebugContext(ctx, "Loaded archive",
		"path", path,
		"format", ds.Format,
		"records", ds.Len(),
		"duration", time.Since(start),
	)
	return ds, nil
}

func (ld *Loader) load(ctx context.Context, path string) (*dataset.Dataset, error) {
	if database.IsPostgresDSN(path) {
		return ld.loadPostgres(ctx, path)
	}
	if path == PostgresAlias && ld.postgresDSN != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return ld.loadPostgres(ctx, ld.postgresDSN)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	compressed := false
	if filetype.Is(data, "gz") {
		if data, err = gunzip(data); err != nil {
			return nil, fmt.Errorf("failed to decompress: %w", err)
		}
		compressed = true
	}

	if filetype.Is(data, "sqlite") {
		if compressed {
			return ld.loadSQLiteBytes(ctx, data)
		}
		return ld.loadSQLite(ctx, path, FormatSQLite)
	}

	records, err := codec.DecodeRecords(data)
	if err != nil {
		return nil, err
	}
	format := documentFormat(path)
	if compressed {
		format += gzipSuffix
	}
	return &dataset.Dataset{Format: format, Records: records}, nil
}

func (ld *Loader) loadPostgres(ctx context.Context, dsn string) (*dataset.Dataset, error) {
	m := database.NewManager(ld.logger)
	if err := m.OpenPostgres(dsn); err != nil {
		return nil, err
	}
	defer m.Close()

	return ld.readDatabase(ctx, m, FormatPostgres)
}

func (ld *Loader) loadSQLite(ctx context.Context, path, format string) (*dataset.Dataset, error) {
	m := database.NewManager(ld.logger)
	if err := m.OpenSQLite(path); err != nil {
		return nil, err
	}
	defer m.Close()

	return ld.readDatabase(ctx, m, format)
}

// readDatabase loads samples and the stored archive description. A missing
// or unreadable description leaves Origin nil.
func (ld *Loader) readDatabase(ctx context.Context, m *database.Manager, format string) (*dataset.Dataset, error) {
	records, err := m.LoadDataset(ctx)
	if err != nil {
		return nil, err
	}
	ds := &dataset.Dataset{Format: format, Records: records}

	info, err := m.ArchiveInfo(ctx)
	if err != nil {
		ld.logger.WarnContext(ctx, "Failed to read archive info", "error", err)
		return ds, nil
	}
	if info != nil {
		ds.Origin = &dataset.Origin{
			Name:       info.Name,
			SourcePath: info.SourcePath,
			SourceType: info.SourceType,
			Samples:    info.SampleCount,
		}
	}
	return ds, nil
}

// loadSQLiteBytes opens a decompressed database image through a temp file.
func (ld *Loader) loadSQLiteBytes(ctx context.Context, data []byte) (*dataset.Dataset, error) {
	f, err := os.CreateTemp("", "dsview-*.db")
	if err != nil {
		return nil, err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return ld.loadSQLite(ctx, tmp, FormatSQLite+gzipSuffix)
}

func gunzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
