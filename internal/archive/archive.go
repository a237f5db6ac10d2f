// Package archive loads datasets from document or relational archives and
// writes them back out in any supported format.
package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/coachme/dsview/internal/database"
)

// Format names as reported by Dataset.Format.
const (
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatSQLite   = "sqlite"
	FormatPostgres = "postgres"

	gzipSuffix = ".gz"
)

// PostgresAlias is the input that selects the configured Postgres database.
const PostgresAlias = "postgres"

// ErrUnknownFormat is returned when an output path has no supported extension.
var ErrUnknownFormat = errors.New("unknown archive format")

// LoadError reports an archive that could not be read.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// documentFormat picks json or yaml from the path, ignoring a .gz suffix.
func documentFormat(path string) string {
	switch strings.ToLower(filepath.Ext(strings.TrimSuffix(strings.ToLower(path), gzipSuffix))) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

func isSQLitePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

func isDocumentPath(path string) bool {
	switch strings.ToLower(filepath.Ext(strings.TrimSuffix(strings.ToLower(path), gzipSuffix))) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// Exists reports whether path names an existing archive. Database URLs and
// the postgres alias are assumed to exist and fail on load instead.
func Exists(path string) bool {
	if database.IsPostgresDSN(path) || path == PostgresAlias {
		return true
	}
	_, err := os.Stat(path)
	return err == nil
}
