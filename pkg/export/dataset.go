// Package export renders tabular catalog data for download.
package export

import "fmt"

// Dataset is a table keyed by header name. Footer, when set, is rendered as a
// trailing totals row using the same header keys.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
	Footer  map[string]string
}

func (d Dataset) validate(format string) error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("%s export needs at least one column", format)
	}
	return nil
}

func (d Dataset) record(row map[string]string) []string {
	out := make([]string, len(d.Headers))
	for i, header := range d.Headers {
		out[i] = row[header]
	}
	return out
}
