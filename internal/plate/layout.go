// Package plate models well-plate geometry and derives the coordinate
// space (wells, positions, Z-steps, timepoints) from a set of tagged
// filenames.
package plate

import (
	"fmt"
	"regexp"
	"strconv"
)

// Layout describes a plate format as rows by columns.
type Layout struct {
	Wells int
	Rows  int
	Cols  int
}

var layouts = map[int]Layout{
	1:   {Wells: 1, Rows: 1, Cols: 1},
	2:   {Wells: 2, Rows: 1, Cols: 2},
	6:   {Wells: 6, Rows: 2, Cols: 3},
	24:  {Wells: 24, Rows: 4, Cols: 6},
	96:  {Wells: 96, Rows: 8, Cols: 12},
	384: {Wells: 384, Rows: 16, Cols: 24},
}

// LayoutFor returns the layout for a supported plate size.
func LayoutFor(wells int) (Layout, error) {
	l, ok := layouts[wells]
	if !ok {
		return Layout{}, fmt.Errorf("unsupported plate size %d (supported: 1, 2, 6, 24, 96, 384)", wells)
	}
	return l, nil
}

// Labels returns every well label of the layout in row-major order:
// rows lettered A, B, C..., columns numbered from 1.
func (l Layout) Labels() []string {
	labels := make([]string, 0, l.Rows*l.Cols)
	for r := 0; r < l.Rows; r++ {
		for c := 1; c <= l.Cols; c++ {
			labels = append(labels, fmt.Sprintf("%c%d", 'A'+r, c))
		}
	}
	return labels
}

var wellLabelRe = regexp.MustCompile(`^([A-Z])([0-9]+)$`)

// Contains reports whether a well label falls inside the layout.
func (l Layout) Contains(well string) bool {
	m := wellLabelRe.FindStringSubmatch(well)
	if m == nil {
		return false
	}
	row := int(m[1][0] - 'A')
	col, err := strconv.Atoi(m[2])
	if err != nil {
		return false
	}
	return row < l.Rows && col >= 1 && col <= l.Cols
}
