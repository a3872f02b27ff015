package store

import (
	"cmp"
	"slices"

	"github.com/matzehuels/mindmap/pkg/document"
)

// SortSummaries orders summaries by UpdatedAt descending, then by id.
func SortSummaries(s []document.Summary) {
	slices.SortFunc(s, func(a, b document.Summary) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
