package archive

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/coachme/dsview/internal/codec"
	"github.com/coachme/dsview/internal/database"
	"github.com/coachme/dsview/internal/dataset"
)

// Write stores ds at path. The format follows the extension: .json, .yaml
// or .yml (each optionally .gz), .db or .sqlite, or a postgres URL.
func (ld *Loader) Write(ctx context.Context, ds *dataset.Dataset, path string) error {
	switch {
	case database.IsPostgresDSN(path):
		return ld.writeDatabase(ctx, ds, func(m *database.Manager) error { return m.OpenPostgres(path) })
	case isSQLitePath(path):
		if err := prepareFile(path); err != nil {
			return err
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("error removing existing DB file: %w", err)
		}
		return ld.writeDatabase(ctx, ds, func(m *database.Manager) error { return m.OpenSQLite(path) })
	case isDocumentPath(path):
		return writeDocument(ds, path)
	}
	return fmt.Errorf("%s: %w", path, ErrUnknownFormat)
}

func (ld *Loader) writeDatabase(ctx context.Context, ds *dataset.Dataset, open func(*database.Manager) error) error {
	m := database.NewManager(ld.logger)
	if err := open(m); err != nil {
		return err
	}
	defer m.Close()

	if err := m.Setup(); err != nil {
		return err
	}
	return m.SaveDataset(ctx, ds)
}

func writeDocument(ds *dataset.Dataset, path string) (err error) {
	if err := prepareFile(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	var w io.Writer = f
	if strings.HasSuffix(strings.ToLower(path), gzipSuffix) {
		gw := gzip.NewWriter(f)
		defer func() {
			if cerr := gw.Close(); err == nil && cerr != nil {
				err = cerr
			}
		}()
		w = gw
	}

	if documentFormat(path) == FormatYAML {
		return codec.EncodeYAML(w, ds.Records)
	}
	return codec.EncodeJSON(w, ds.Records)
}

func prepareFile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return nil
}
