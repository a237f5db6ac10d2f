// Package dataset holds the in-memory model of a motion-capture dataset:
// an ordered list of records, each an ordered set of optional fields.
package dataset

// Dataset is the ordered record sequence loaded from one archive.
type Dataset struct {
	// Source is the path or DSN the records were loaded from.
	Source string
	// Format names the archive format, e.g. "json", "json.gz", "sqlite".
	Format  string
	Records []*Record
	// Origin is the stored description of a relational archive; nil for
	// document archives and databases written without one.
	Origin *Origin
}

// Origin describes the archive a relational dataset was converted from.
type Origin struct {
	Name       string
	SourcePath string
	SourceType string
	Samples    int
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// First returns record 0, or nil for an empty dataset.
func (d *Dataset) First() *Record {
	if d.Len() == 0 {
		return nil
	}
	return d.Records[0]
}
