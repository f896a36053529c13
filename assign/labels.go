package assign

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Label is a ground truth entry [x, y, w, h, class...] with the box center
// and size normalized to the image dimensions.  Every field after the
// fourth is a class id, so a box can carry several labels.
//
// Field 0 is scaled by the grid height and selects the first spatial index
// of the Target, field 1 is scaled by the grid width and selects the
// second.  Decoders reading a Model trained on these targets must use the
// same mapping.
//
// Fields are kept at float64 so a center read from text just below a cell
// boundary stays in its cell when scaled onto the grid
type Label []float64

// Box returns the center-form box of the label
func (l Label) Box() (x, y, w, h float32) {
	return float32(l[0]), float32(l[1]), float32(l[2]), float32(l[3])
}

// Classes returns the class ids attached to the label
func (l Label) Classes() []int {

	if len(l) <= 4 {
		return nil
	}

	ids := make([]int, 0, len(l)-4)

	for _, k := range l[4:] {
		ids = append(ids, int(k))
	}

	return ids
}

// ParseLabels reads the labels of one image, one label per line with
// whitespace separated fields.  Blank lines are skipped.  Field counts are
// not checked here, Assign rejects labels with fewer than four fields
func ParseLabels(r io.Reader) ([]Label, error) {

	scanner := bufio.NewScanner(r)

	var labels []Label
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())

		if len(fields) == 0 {
			continue
		}

		label := make(Label, len(fields))

		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)

			if err != nil {
				return nil, fmt.Errorf("line %d field %d: %w", lineNo, i, err)
			}

			label[i] = v
		}

		labels = append(labels, label)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading labels: %w", err)
	}

	return labels, nil
}

// ReadLabelFile reads the labels of one image from the given text file
func ReadLabelFile(file string) ([]Label, error) {

	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	defer f.Close()

	labels, err := ParseLabels(f)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	return labels, nil
}
