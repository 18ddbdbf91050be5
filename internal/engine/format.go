// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/lore-engine/pkg/types"
)

// FormatTable writes the snapshot as a human-readable cheat sheet grouped
// by category. Within a group, records keep the SortRecords display order.
func FormatTable(w io.Writer, recs []*types.EntityRecord) {
	if len(recs) == 0 {
		fmt.Fprintln(w, "No entities tracked yet.")
		return
	}

	sorted := make([]*types.EntityRecord, len(recs))
	copy(sorted, recs)
	SortRecords(sorted)

	for _, cat := range types.Categories {
		var group []*types.EntityRecord
		for _, rec := range sorted {
			if rec.Category == cat {
				group = append(group, rec)
			}
		}
		if len(group) == 0 {
			continue
		}

		fmt.Fprintf(w, "%s\n", cat)
		fmt.Fprintln(w, strings.Repeat("-", len(cat)))
		fmt.Fprintf(w, "%-36s  %-5s  %-8s  %s\n", "Name", "Score", "Mentions", "Description")
		for _, rec := range group {
			name := rec.CanonicalName
			if len(name) > 36 {
				name = name[:33] + "..."
			}
			fmt.Fprintf(w, "%-36s  %-5d  %-8d  %s\n",
				name, rec.BaseImportanceScore, rec.MentionCount, rec.Description)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%d entities\n", len(sorted))
}
