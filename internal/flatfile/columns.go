package flatfile

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// FrequencyPrefix marks columns holding observed Fourier amplitudes; the
// remainder of the name is the frequency in Hz (e.g. "freq0.1318").
const FrequencyPrefix = "freq"

// FrequencyColumns is the sorted set of amplitude columns in a flatfile.
// Names, Freqs and Positions are aligned and ascending by frequency.
type FrequencyColumns struct {
	Names     []string
	Freqs     []float64
	Positions []int // index of each column in the table header
}

// Len returns the number of frequency columns.
func (fc FrequencyColumns) Len() int { return len(fc.Names) }

// ResolveFrequencyColumns selects the header names carrying the frequency
// prefix, parses their suffixes and sorts them by frequency. Columns with
// equal frequency keep their header order.
func ResolveFrequencyColumns(header []string) (FrequencyColumns, error) {
	var fc FrequencyColumns
	for pos, name := range header {
		if !strings.HasPrefix(name, FrequencyPrefix) {
			continue
		}
		suffix := name[len(FrequencyPrefix):]
		f, err := strconv.ParseFloat(suffix, 64)
		if err != nil {
			return FrequencyColumns{}, configErrorf("column %q: cannot parse frequency %q", name, suffix)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
			return FrequencyColumns{}, configErrorf("column %q: frequency must be positive and finite, got %v", name, f)
		}
		fc.Names = append(fc.Names, name)
		fc.Freqs = append(fc.Freqs, f)
		fc.Positions = append(fc.Positions, pos)
	}
	if len(fc.Names) == 0 {
		return FrequencyColumns{}, configErrorf("no '%s*' columns found in input file", FrequencyPrefix)
	}

	order := make([]int, len(fc.Names))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return fc.Freqs[order[a]] < fc.Freqs[order[b]]
	})

	sorted := FrequencyColumns{
		Names:     make([]string, len(order)),
		Freqs:     make([]float64, len(order)),
		Positions: make([]int, len(order)),
	}
	for i, j := range order {
		sorted.Names[i] = fc.Names[j]
		sorted.Freqs[i] = fc.Freqs[j]
		sorted.Positions[i] = fc.Positions[j]
	}
	return sorted, nil
}
