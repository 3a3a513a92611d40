// internal/scoring/normalizer_test.go
package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stackpick/stackpick-backend/internal/models"
)

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }
func stringPtr(v string) *string  { return &v }

func numberDef(min, max float64, lowerIsBetter bool) models.MetricDefinition {
	return models.MetricDefinition{
		DataType:      models.MetricTypeNumber,
		RangeMin:      min,
		RangeMax:      max,
		LowerIsBetter: lowerIsBetter,
	}
}

func TestNormalizeNumber(t *testing.T) {
	tests := []struct {
		name  string
		def   models.MetricDefinition
		value float64
		want  int
	}{
		{"midpoint", numberDef(0, 100, false), 50, 50},
		{"at minimum", numberDef(0, 100, false), 0, 0},
		{"at maximum", numberDef(0, 100, false), 100, 100},
		{"offset range", numberDef(10, 20, false), 15, 50},
		{"lower is better inverts", numberDef(0, 90, true), 30, 67},
		{"above range clamps", numberDef(0, 100, false), 250, 100},
		{"below range clamps", numberDef(0, 100, false), -40, 0},
		{"above range with inversion clamps low", numberDef(0, 90, true), 200, 0},
		{"below range with inversion clamps high", numberDef(0, 90, true), -10, 100},
		{"degenerate range scores zero", numberDef(50, 50, false), 50, 0},
		{"inverted bounds score zero", numberDef(100, 0, false), 50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.def, &models.MetricValue{NumberValue: floatPtr(tt.value)})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeBoolean(t *testing.T) {
	def := models.MetricDefinition{DataType: models.MetricTypeBoolean}

	assert.Equal(t, 100, Normalize(def, &models.MetricValue{BooleanValue: boolPtr(true)}))
	assert.Equal(t, 0, Normalize(def, &models.MetricValue{BooleanValue: boolPtr(false)}))
	assert.Equal(t, 0, Normalize(def, &models.MetricValue{}))
}

func TestNormalizeString(t *testing.T) {
	def := models.MetricDefinition{
		DataType: models.MetricTypeString,
		Options: models.JSONB{
			"cloud":      float64(100),
			"hybrid":     float64(70),
			"on_premise": float64(40),
		},
	}

	assert.Equal(t, 100, Normalize(def, &models.MetricValue{StringValue: stringPtr("cloud")}))
	assert.Equal(t, 70, Normalize(def, &models.MetricValue{StringValue: stringPtr("hybrid")}))
	assert.Equal(t, 0, Normalize(def, &models.MetricValue{StringValue: stringPtr("mainframe")}),
		"unknown options score zero instead of erroring")

	noOptions := models.MetricDefinition{DataType: models.MetricTypeString}
	assert.Equal(t, 0, Normalize(noOptions, &models.MetricValue{StringValue: stringPtr("cloud")}))
}

func TestNormalizeIsTotal(t *testing.T) {
	def := numberDef(0, 100, false)

	assert.Equal(t, 0, Normalize(def, nil), "absent value")
	assert.Equal(t, 0, Normalize(def, &models.MetricValue{StringValue: stringPtr("50")}),
		"wrong-typed value")
	assert.Equal(t, 0, Normalize(models.MetricDefinition{DataType: "garbage"}, &models.MetricValue{NumberValue: floatPtr(50)}),
		"unrecognized data type")
}

func TestNormalizeResultAlwaysInRange(t *testing.T) {
	defs := []models.MetricDefinition{
		numberDef(0, 10, false),
		numberDef(0, 10, true),
		numberDef(-50, 50, false),
		{DataType: models.MetricTypeString, Options: models.JSONB{"big": float64(900), "negative": float64(-5)}},
	}
	values := []*models.MetricValue{
		nil,
		{},
		{NumberValue: floatPtr(-1000)},
		{NumberValue: floatPtr(1000)},
		{StringValue: stringPtr("big")},
		{StringValue: stringPtr("negative")},
	}

	for _, def := range defs {
		for _, value := range values {
			got := Normalize(def, value)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		}
	}
}
