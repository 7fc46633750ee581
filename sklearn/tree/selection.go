package tree

import (
	"github.com/YuminosukeSato/id3/dataset"
)

// gainTolerance is how much a later attribute must beat the current best by
// to replace it.
const gainTolerance = 1e-12

// Selection is the result of SelectAttribute.
type Selection struct {
	// Attribute is the winner; empty when OK is false.
	Attribute string
	// Gains holds the information gain of every candidate.
	Gains map[string]float64
	// OK is false when there was nothing to select from.
	OK bool
}

// SelectAttribute returns the attribute with the highest information gain.
//
// An empty dataset or an empty attribute list is not an error: the result
// has OK false and an empty Gains map. Ties go to the attribute listed
// first; a later one wins only if its gain is larger by more than 1e-12.
func SelectAttribute(ds dataset.Dataset, attributes []string, labelKey string) (Selection, error) {
	sel := Selection{Gains: make(map[string]float64, len(attributes))}
	if len(ds) == 0 || len(attributes) == 0 {
		return sel, nil
	}

	var best float64
	for _, a := range attributes {
		gain, err := InformationGain(ds, a, labelKey)
		if err != nil {
			return Selection{}, err
		}
		sel.Gains[a] = gain
		if !sel.OK || gain > best+gainTolerance {
			sel.Attribute = a
			best = gain
			sel.OK = true
		}
	}
	return sel, nil
}
