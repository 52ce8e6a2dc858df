package gmm

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/banshee-data/residuals.report/internal/flatfile"
	"github.com/banshee-data/residuals.report/internal/fsutil"
)

var (
	// ErrUnsupportedRegion is returned for regions the model has no
	// coefficients for.
	ErrUnsupportedRegion = errors.New("unsupported region")

	// ErrInvalidScenario is returned when a scenario is outside the domain
	// of the functional form (e.g. non-positive Vs30).
	ErrInvalidScenario = errors.New("invalid scenario")
)

// Coefficients is one frequency row of the BA18 coefficient table.
type Coefficients struct {
	Freq float64
	C1   float64
	C2   float64
	C3   float64
	CN   float64
	CM   float64
	C4   float64
	C5   float64
	C6   float64
	CHM  float64
	C7   float64
	C8   float64
	C9   float64
	C10  float64
	C11  float64
}

// CoefficientColumns is the header a coefficient CSV must provide.
var CoefficientColumns = []string{
	"freq", "c1", "c2", "c3", "cn", "cM", "c4", "c5", "c6", "chm", "c7", "c8", "c9", "c10", "c11",
}

func (c *Coefficients) fields() []*float64 {
	return []*float64{
		&c.Freq, &c.C1, &c.C2, &c.C3, &c.CN, &c.CM, &c.C4, &c.C5, &c.C6, &c.CHM,
		&c.C7, &c.C8, &c.C9, &c.C10, &c.C11,
	}
}

// Reference-depth and geometric-spreading constants of the functional form.
const (
	vs30Cap      = 1000.0 // m/s
	z1Cap        = 2.0    // km
	z1Offset     = 0.01   // km
	ztorCap      = 20.0   // km
	farDistance  = 50.0   // km, transition to -0.5 spreading
	z1RefSlope   = -7.15 / 4
	z1RefVsKnee  = 570.94
	z1RefVsPivot = 1360.0
)

// Z1Ref returns the reference depth to the 1.0 km/s horizon (km) for a
// California site with the given Vs30.
func Z1Ref(vs30 float64) float64 {
	num := math.Pow(vs30, 4) + math.Pow(z1RefVsKnee, 4)
	den := math.Pow(z1RefVsPivot, 4) + math.Pow(z1RefVsKnee, 4)
	return math.Exp(z1RefSlope*math.Log(num/den)) / 1000
}

// LnEAS evaluates the functional form for one coefficient row.
func (c Coefficients) LnEAS(s Scenario, z1ref float64) float64 {
	fM := c.C1 + c.C2*(s.Mag-6) + ((c.C2-c.C3)/c.CN)*math.Log(1+math.Exp(c.CN*(c.CM-s.Mag)))

	r := s.DistRup
	fP := c.C4*math.Log(r+c.C5*math.Cosh(c.C6*math.Max(s.Mag-c.CHM, 0))) +
		(-0.5-c.C4)*math.Log(math.Sqrt(r*r+farDistance*farDistance)) +
		c.C7*r

	fS := c.C8 * math.Log(math.Min(s.Vs30, vs30Cap)/vs30Cap)

	fZtor := c.C9 * math.Min(s.DepthTor, ztorCap)

	var fNM float64
	if s.Mechanism == Normal {
		fNM = c.C10
	}

	var fZ1 float64
	if s.Depth1_0 >= 0 {
		fZ1 = c.C11 * math.Log((math.Min(s.Depth1_0, z1Cap)+z1Offset)/(math.Min(z1ref, z1Cap)+z1Offset))
	}

	return fM + fP + fS + fZtor + fNM + fZ1
}

// BA18 evaluates the Bayless & Abrahamson (2018) EAS model over a
// coefficient table supplied by the caller.
type BA18 struct {
	coeffs []Coefficients
}

// NewBA18 sorts coeffs by frequency and checks the grid is usable.
func NewBA18(coeffs []Coefficients) (*BA18, error) {
	if len(coeffs) == 0 {
		return nil, errors.New("ba18: empty coefficient table")
	}
	sorted := append([]Coefficients(nil), coeffs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Freq < sorted[j].Freq })
	for i, c := range sorted {
		if !(c.Freq > 0) || math.IsInf(c.Freq, 0) {
			return nil, fmt.Errorf("ba18: coefficient row %d has invalid frequency %v", i, c.Freq)
		}
		if i > 0 && c.Freq == sorted[i-1].Freq {
			return nil, fmt.Errorf("ba18: duplicate coefficient frequency %v", c.Freq)
		}
		if c.CN == 0 {
			return nil, fmt.Errorf("ba18: coefficient row at %v Hz has cn = 0", c.Freq)
		}
	}
	return &BA18{coeffs: sorted}, nil
}

// Freqs returns the model's frequency grid.
func (m *BA18) Freqs() []float64 {
	out := make([]float64, len(m.coeffs))
	for i, c := range m.coeffs {
		out[i] = c.Freq
	}
	return out
}

// Evaluate implements Model.
func (m *BA18) Evaluate(s Scenario) (Prediction, error) {
	if region := strings.ToLower(strings.TrimSpace(s.Region)); region != "" && region != RegionCalifornia {
		return Prediction{}, fmt.Errorf("ba18: %w %q", ErrUnsupportedRegion, s.Region)
	}
	if err := checkScenario(s); err != nil {
		return Prediction{}, err
	}

	z1ref := Z1Ref(s.Vs30)
	p := Prediction{
		Freqs: make([]float64, len(m.coeffs)),
		LnEAS: make([]float64, len(m.coeffs)),
	}
	for i, c := range m.coeffs {
		p.Freqs[i] = c.Freq
		p.LnEAS[i] = c.LnEAS(s, z1ref)
	}
	return p, nil
}

func checkScenario(s Scenario) error {
	switch {
	case math.IsNaN(s.Mag) || math.IsInf(s.Mag, 0):
		return fmt.Errorf("ba18: %w: magnitude %v", ErrInvalidScenario, s.Mag)
	case !(s.DistRup >= 0) || math.IsInf(s.DistRup, 0):
		return fmt.Errorf("ba18: %w: rupture distance %v", ErrInvalidScenario, s.DistRup)
	case !(s.Vs30 > 0) || math.IsInf(s.Vs30, 0):
		return fmt.Errorf("ba18: %w: vs30 %v", ErrInvalidScenario, s.Vs30)
	case math.IsNaN(s.DepthTor):
		return fmt.Errorf("ba18: %w: ztor %v", ErrInvalidScenario, s.DepthTor)
	}
	return nil
}

// ParseCoefficients reads coefficient rows from a table whose header
// contains CoefficientColumns (extra columns are ignored).
func ParseCoefficients(t *flatfile.Table) ([]Coefficients, error) {
	for _, col := range CoefficientColumns {
		if _, ok := t.ColumnIndex(col); !ok {
			return nil, fmt.Errorf("coefficient table missing column %q", col)
		}
	}
	out := make([]Coefficients, t.Len())
	for i := range out {
		fields := out[i].fields()
		for k, col := range CoefficientColumns {
			cell, _ := t.Cell(i, col)
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("coefficient row %d column %q: %w", i, col, err)
			}
			*fields[k] = v
		}
	}
	return out, nil
}

// LoadCoefficients reads a coefficient CSV from fsys.
func LoadCoefficients(fsys fsutil.FileSystem, path string) ([]Coefficients, error) {
	t, err := flatfile.LoadTable(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load coefficients: %w", err)
	}
	return ParseCoefficients(t)
}

// LoadBA18 loads a coefficient CSV and builds the model.
func LoadBA18(fsys fsutil.FileSystem, path string) (*BA18, error) {
	coeffs, err := LoadCoefficients(fsys, path)
	if err != nil {
		return nil, err
	}
	return NewBA18(coeffs)
}
