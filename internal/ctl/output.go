package ctl

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/pmezard/go-difflib/difflib"

	"ledger/internal/core"
	"ledger/internal/entity"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeTable prints one row per record, unset values as "-".
func writeTable[T core.Identified](w io.Writer, fields []entity.Field[T], records []T) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	labels := make([]string, 0, len(fields))
	for _, f := range fields {
		labels = append(labels, strings.ToUpper(f.Label))
	}
	fmt.Fprintln(tw, strings.Join(labels, "\t"))
	for _, record := range records {
		cells := make([]string, 0, len(fields))
		for _, f := range fields {
			v, ok := f.Get(record)
			if !ok {
				v = "-"
			}
			cells = append(cells, v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// formatRecord renders a record as "Label: value" lines.
func formatRecord[T core.Identified](fields []entity.Field[T], record T) string {
	var b strings.Builder
	for _, f := range fields {
		v, ok := f.Get(record)
		if !ok {
			v = "-"
		}
		fmt.Fprintf(&b, "%s: %s\n", f.Label, v)
	}
	return b.String()
}

// recordDiff returns a unified diff of two formatted records, "" when they
// are equal.
func recordDiff(name, before, after string) (string, error) {
	if before == after {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: name + " (current)",
		ToFile:   name + " (saved)",
		Context:  3,
	})
}
