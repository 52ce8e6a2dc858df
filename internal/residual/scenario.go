package residual

import (
	"fmt"

	"github.com/banshee-data/residuals.report/internal/flatfile"
	"github.com/banshee-data/residuals.report/internal/gmm"
	"github.com/banshee-data/residuals.report/internal/units"
)

// BuildScenario assembles the model input for rec.
func BuildScenario(rec flatfile.Record, mech gmm.Mechanism, opts Options) (gmm.Scenario, error) {
	z1, err := units.DepthToKM(rec.Z1, opts.Z1Units)
	if err != nil {
		return gmm.Scenario{}, fmt.Errorf("row %d: %w", rec.Index, err)
	}
	return gmm.Scenario{
		Mag:       rec.Mag,
		DistRup:   rec.Rrup,
		Vs30:      rec.Vs30,
		Depth1_0:  z1,
		DepthTor:  rec.Ztor,
		Mechanism: mech,
		Region:    opts.Region,
		VsSource:  opts.VsSource,
	}, nil
}
