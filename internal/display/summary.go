package display

import (
	"fmt"
	"strings"

	"github.com/neurobids/bidsmapper/internal/mapping"
)

// PrintMapSummary prints the human-facing map listing: one column-aligned
// row per stored run template, grouped the way Summarize emits them.
func PrintMapSummary(rows []mapping.Summary) {
	if len(rows) == 0 {
		fmt.Println("  (empty map)")
		return
	}

	modW := len("Modality")
	nameW := len("Rendered Name")
	for _, r := range rows {
		if len(r.Modality) > modW {
			modW = len(r.Modality)
		}
		if len(r.RenderedName) > nameW {
			nameW = len(r.RenderedName)
		}
	}

	header := fmt.Sprintf("  %-*s  %-*s  %s", modW, "Modality", nameW, "Rendered Name", "Provenance")
	fmt.Println(header)
	fmt.Println("  " + strings.Repeat("─", len(header)-2))

	for _, r := range rows {
		fmt.Printf("  %-*s  %-*s  %s\n", modW, string(r.Modality), nameW, r.RenderedName, r.Provenance)
	}
	fmt.Println()
}
