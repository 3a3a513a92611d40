// internal/scoring/normalizer.go
package scoring

import (
	"math"

	"github.com/stackpick/stackpick-backend/internal/models"
)

// Normalize converts one raw metric value into a 0-100 sub-score using its
// definition's normalization parameters. It is total: absent values, values
// of the wrong type, out-of-range numbers, and unknown string options all
// produce a defined score instead of an error, because products are routinely
// only partially populated and metric taxonomies evolve.
func Normalize(def models.MetricDefinition, value *models.MetricValue) int {
	if value == nil {
		return 0
	}

	switch def.DataType {
	case models.MetricTypeNumber:
		if value.NumberValue == nil {
			return 0
		}
		return normalizeNumber(def, *value.NumberValue)
	case models.MetricTypeBoolean:
		if value.BooleanValue == nil || !*value.BooleanValue {
			return 0
		}
		return 100
	case models.MetricTypeString:
		if value.StringValue == nil {
			return 0
		}
		return normalizeString(def, *value.StringValue)
	}

	return 0
}

func normalizeNumber(def models.MetricDefinition, v float64) int {
	span := def.RangeMax - def.RangeMin
	if span <= 0 {
		return 0
	}

	scaled := (v - def.RangeMin) / span * 100
	if def.LowerIsBetter {
		scaled = 100 - scaled
	}

	return clampScore(int(math.Round(scaled)))
}

// normalizeString maps categorical values through the definition's fixed
// option table. Unknown strings score 0 rather than erroring.
func normalizeString(def models.MetricDefinition, v string) int {
	if def.Options == nil {
		return 0
	}

	raw, ok := def.Options[v]
	if !ok {
		return 0
	}

	// JSONB numbers decode as float64.
	switch n := raw.(type) {
	case float64:
		return clampScore(int(math.Round(n)))
	case int:
		return clampScore(n)
	}
	return 0
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
