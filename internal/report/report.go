// Package report renders the human-readable inspection report: overview,
// schema of the first record, statistics and per-sample previews.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/coachme/dsview/internal/dataset"
	"github.com/coachme/dsview/internal/stats"
)

const (
	bannerWidth = 80
	fieldWidth  = 25
)

// Color modes accepted by ColorEnabled.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Reporter writes report sections to an io.Writer. Write errors are
// sticky: after the first failure nothing more is written and Err returns it.
type Reporter struct {
	out io.Writer
	err error

	banner  *color.Color
	heading *color.Color
	warn    *color.Color
	dim     *color.Color
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithColor forces color output on or off.
func WithColor(enabled bool) Option {
	return func(r *Reporter) {
		for _, c := range []*color.Color{r.banner, r.heading, r.warn, r.dim} {
			if enabled {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
	}
}

// New creates a Reporter writing to w. Color is off unless WithColor(true)
// is passed.
func New(w io.Writer, opts ...Option) *Reporter {
	r := &Reporter{
		out:     w,
		banner:  color.New(color.FgCyan),
		heading: color.New(color.Bold),
		warn:    color.New(color.FgYellow, color.Bold),
		dim:     color.New(color.Faint),
	}
	WithColor(false)(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ColorEnabled resolves a color mode against the destination writer.
// "auto" enables color only for terminals.
func ColorEnabled(mode string, w io.Writer) bool {
	switch strings.ToLower(mode) {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Err returns the first write error.
func (r *Reporter) Err() error {
	return r.err
}

func (r *Reporter) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.out, format, args...)
}

func (r *Reporter) line(c *color.Color, s string) {
	if c != nil {
		s = c.Sprint(s)
	}
	r.printf("%s\n", s)
}

func (r *Reporter) rule() {
	r.line(r.banner, strings.Repeat("=", bannerWidth))
}

// Header prints the opening banner naming the archive.
func (r *Reporter) Header(source string) {
	r.rule()
	r.line(r.heading, "📦 Dataset: "+source)
	r.rule()
	r.printf("\n")
}

// LoadFailed prints the diagnostic for an archive that could not be read.
func (r *Reporter) LoadFailed(err error) {
	r.line(r.warn, fmt.Sprintf("❌ Failed to read: %v", err))
}

// Missing prints the diagnostic for an archive path that does not exist.
func (r *Reporter) Missing(path string) {
	r.line(r.warn, fmt.Sprintf("❌ File not found: %s", path))
	r.printf("💡 Run from the project root or set inputPath\n")
}

// Inspect runs the full report for a loaded dataset: schema, statistics,
// previews (when previewCount > 0 and showDetails is set) and tips.
func (r *Reporter) Inspect(ds *dataset.Dataset, showDetails bool, previewCount int) error {
	if !r.Schema(ds) {
		return r.Err()
	}
	r.Statistics(stats.Compute(ds))
	if showDetails {
		r.Samples(ds, previewCount)
	}
	r.Tips()
	return r.Err()
}

// Tips prints the closing hints block.
func (r *Reporter) Tips() {
	r.rule()
	r.line(r.heading, "💡 Tips:")
	r.printf("   - set exportJsonPath or run `dsview export <file>` to write a JSON mirror\n")
	r.printf("   - set previewCount to preview more samples\n")
	r.rule()
	r.printf("\n")
}

// OtherArchives lists sibling archives that can be inspected next.
func (r *Reporter) OtherArchives(paths []string) {
	if len(paths) == 0 {
		return
	}
	r.printf("\n")
	r.rule()
	r.line(r.heading, "🔍 Other datasets:")
	for _, p := range paths {
		r.printf("   - %s\n", p)
	}
	r.rule()
}

// Exported prints the confirmation line for a written JSON mirror.
func (r *Reporter) Exported(path string) {
	r.printf("✅ Exported to: %s\n", path)
}
