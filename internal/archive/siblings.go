package archive

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/coachme/dsview/internal/database"
)

// KnownArchives are the dataset splits shipped alongside each other.
var KnownArchives = []string{"BX_test", "BX_train", "BX_standard", "FS_test", "FS_train", "FS_standard"}

var siblingSuffixes = []string{".json.gz", ".json", ".yaml.gz", ".yaml", ".yml", ".db", ".sqlite"}

// Siblings returns the other known archives that exist next to path,
// preferring the same extension as path.
func Siblings(path string) []string {
	if database.IsPostgresDSN(path) || path == PostgresAlias {
		return nil
	}
	dir := filepath.Dir(path)
	stem, suffix := splitSuffix(filepath.Base(path))

	suffixes := siblingSuffixes
	if suffix != "" {
		suffixes = append([]string{suffix}, siblingSuffixes...)
	}

	var out []string
	for _, name := range KnownArchives {
		if name == stem {
			continue
		}
		for _, s := range suffixes {
			candidate := filepath.Join(dir, name+s)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				out = append(out, candidate)
				break
			}
		}
	}
	return out
}

// splitSuffix splits "BX_test.json.gz" into "BX_test" and ".json.gz".
func splitSuffix(base string) (string, string) {
	if i := strings.Index(base, "."); i > 0 {
		return base[:i], base[i:]
	}
	return base, ""
}
