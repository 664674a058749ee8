// Package report summarises an annotation store for display.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uitable"

	"github.com/menta2k/voc-inspector/pkg/annotation"
)

// ClassCount is one row of the class frequency table.
type ClassCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Summary holds dataset statistics.
type Summary struct {
	Files           int                       `json:"files"`
	Total           int                       `json:"total"`
	UniqueImages    int                       `json:"unique_images"`
	AveragePerImage float64                   `json:"average_per_image"`
	Classes         int                       `json:"classes"`
	TopClasses      []ClassCount              `json:"top_classes"`
	Failures        annotation.FailureSummary `json:"failures"`
}

// Summarize computes statistics over store. topN limits TopClasses; 0 or
// less keeps every class.
func Summarize(store *annotation.Store, failures []annotation.Failure, topN int) Summary {
	counts := store.ClassCounts()
	s := Summary{
		Files:        store.Files(),
		Total:        store.Len(),
		UniqueImages: len(store.Images()),
		Classes:      len(counts),
		TopClasses:   RankClasses(counts),
		Failures:     annotation.Summarize(failures),
	}
	if s.UniqueImages > 0 {
		s.AveragePerImage = float64(s.Total) / float64(s.UniqueImages)
	}
	if topN > 0 && len(s.TopClasses) > topN {
		s.TopClasses = s.TopClasses[:topN]
	}
	return s
}

// RankClasses orders a frequency table by descending count, breaking ties by label.
func RankClasses(counts map[string]int) []ClassCount {
	ranked := make([]ClassCount, 0, len(counts))
	for label, n := range counts {
		ranked = append(ranked, ClassCount{Label: label, Count: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Label < ranked[j].Label
	})
	return ranked
}

// Write prints the summary as two tables: totals, then the top classes.
func Write(w io.Writer, s Summary) error {
	totals := uitable.New()
	totals.RightAlign(1)
	totals.AddRow("Annotation files:", humanize.Comma(int64(s.Files)))
	totals.AddRow("Total annotations:", humanize.Comma(int64(s.Total)))
	totals.AddRow("Unique images:", humanize.Comma(int64(s.UniqueImages)))
	totals.AddRow("Average per image:", fmt.Sprintf("%.1f", s.AveragePerImage))
	totals.AddRow("Classes:", humanize.Comma(int64(s.Classes)))
	if n := s.Failures.Total(); n > 0 {
		totals.AddRow("Skipped documents:", humanize.Comma(int64(s.Failures.SkippedDocuments)))
		totals.AddRow("Skipped entries:", humanize.Comma(int64(s.Failures.SkippedEntries)))
	}
	if _, err := fmt.Fprintln(w, totals); err != nil {
		return err
	}

	if len(s.TopClasses) == 0 {
		return nil
	}
	classes := uitable.New()
	classes.MaxColWidth = 30
	classes.RightAlign(1)
	classes.AddRow("CLASS", "ANNOTATIONS")
	for _, c := range s.TopClasses {
		classes.AddRow(c.Label, humanize.Comma(int64(c.Count)))
	}
	_, err := fmt.Fprintf(w, "\nTop %d object classes:\n%s\n", len(s.TopClasses), classes)
	return err
}

// WriteHead prints the first n records as a table, in store order.
func WriteHead(w io.Writer, records []annotation.Record, n int) error {
	if n <= 0 || len(records) == 0 {
		return nil
	}
	if len(records) > n {
		records = records[:n]
	}
	table := uitable.New()
	table.MaxColWidth = 30
	table.AddRow("IMAGE", "LABEL", "XMIN", "YMIN", "XMAX", "YMAX")
	for _, r := range records {
		table.AddRow(r.ImageID, r.Label, r.XMin, r.YMin, r.XMax, r.YMax)
	}
	_, err := fmt.Fprintf(w, "First %d annotations:\n%s\n\n", len(records), table)
	return err
}
