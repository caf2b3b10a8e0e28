package extractor

import (
	"fmt"
	"strings"
)

// RationaleSlot is the per-question outcome of reconciling the text and
// markup streams. Both flags may be set; the caller decides what to display.
type RationaleSlot struct {
	Position int  `json:"position"`
	HasText  bool `json:"has_text"`
	HasImage bool `json:"has_image"`
}

type ReconcileResult struct {
	Slots       []RationaleSlot `json:"slots"`
	Missing     []int           `json:"missing"`
	Diagnostics []Diagnostic    `json:"diagnostics"`
}

// Reconcile merges segmented questions with correlated images. The two
// streams share nothing but ordinal position: the Nth rationale flag
// occurrence in text order is taken to be the Nth occurrence in markup
// order, and that in turn maps onto the Nth question. Unequal occurrence
// counts between the streams are reported instead of silently misaligning.
func Reconcile(questions []Question, images ImageResult, textOccurrences int) ReconcileResult {
	result := ReconcileResult{
		Slots:       make([]RationaleSlot, 0, len(questions)),
		Missing:     []int{},
		Diagnostics: []Diagnostic{},
	}

	if textOccurrences != images.RationaleOccurrences {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Line: -1,
			Reason: fmt.Sprintf(
				"rationale flag count differs between text (%d) and markup (%d), image indices may be misaligned",
				textOccurrences, images.RationaleOccurrences,
			),
		})
	}

	imageAt := make(map[int]bool, len(images.Images))
	for _, img := range images.Images {
		imageAt[img.RationaleIndex] = true
	}

	for i, q := range questions {
		slot := RationaleSlot{
			Position: i,
			HasText:  strings.TrimSpace(q.Rationale) != "",
			HasImage: imageAt[i],
		}
		result.Slots = append(result.Slots, slot)
		if !slot.HasText && !slot.HasImage {
			result.Missing = append(result.Missing, i)
		}
	}

	return result
}
