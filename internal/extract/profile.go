package extract

import (
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/polychlorinated/structured-data-web-scraper/internal/shared/types"
)

// ProfileColumns summarizes the extracted records per resolved column.
// Numeric columns get summary statistics over the values that parse;
// unparseable values still count toward Count.
func ProfileColumns(headers HeaderSet, records []map[string]interface{}) []types.ColumnProfile {
	profiles := make([]types.ColumnProfile, 0, len(headers.Names))

	for _, name := range headers.Names {
		profile := types.ColumnProfile{
			Name:    name,
			Numeric: NumericColumn(name),
		}

		var values []float64
		for _, record := range records {
			raw, ok := record[name]
			if !ok {
				continue
			}
			text, _ := raw.(string)
			if text == "" {
				continue
			}
			profile.Count++

			if profile.Numeric {
				if v, err := strconv.ParseFloat(text, 64); err == nil {
					values = append(values, v)
				}
			}
		}

		if profile.Numeric && len(values) > 0 {
			profile.Mean = stat.Mean(values, nil)
			profile.Min = floats.Min(values)
			profile.Max = floats.Max(values)
			if len(values) > 1 {
				profile.StdDev = stat.StdDev(values, nil)
			}
		}

		profiles = append(profiles, profile)
	}

	return profiles
}
