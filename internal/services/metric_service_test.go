// internal/services/metric_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackpick/stackpick-backend/internal/models"
)

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }
func stringPtr(v string) *string  { return &v }

// countingFinder records every query so tests can assert the batching
// contract.
type countingFinder struct {
	calls [][2][]uuid.UUID
	rows  []models.MetricValue
	err   error
}

func (f *countingFinder) FindValues(productIDs []uuid.UUID, definitionIDs []uuid.UUID) ([]models.MetricValue, error) {
	f.calls = append(f.calls, [2][]uuid.UUID{productIDs, definitionIDs})
	return f.rows, f.err
}

func testDefinition(code string, dataType models.MetricDataType) models.MetricDefinition {
	def := models.MetricDefinition{
		Code:     code,
		Label:    code,
		DataType: dataType,
	}
	def.ID = uuid.New()
	return def
}

func TestValuesForIssuesOneQuery(t *testing.T) {
	definitions := []models.MetricDefinition{
		testDefinition("implementation_days", models.MetricTypeNumber),
		testDefinition("api_available", models.MetricTypeBoolean),
		testDefinition("deployment_model", models.MetricTypeString),
	}
	productA := uuid.New()
	productB := uuid.New()
	productC := uuid.New()

	finder := &countingFinder{
		rows: []models.MetricValue{
			{ProductID: productA, MetricDefinitionID: definitions[0].ID, NumberValue: floatPtr(14)},
			{ProductID: productA, MetricDefinitionID: definitions[1].ID, BooleanValue: boolPtr(true)},
			{ProductID: productB, MetricDefinitionID: definitions[2].ID, StringValue: stringPtr("cloud")},
		},
	}
	svc := &MetricService{finder: finder}

	matrix, err := svc.ValuesFor([]uuid.UUID{productA, productB, productC}, definitions)
	require.NoError(t, err)

	// Three products, three definitions, one round trip.
	require.Len(t, finder.calls, 1)
	assert.Len(t, finder.calls[0][0], 3)
	assert.Len(t, finder.calls[0][1], 3)

	require.Contains(t, matrix, productA)
	assert.Equal(t, float64(14), *matrix[productA]["implementation_days"].NumberValue)
	assert.True(t, *matrix[productA]["api_available"].BooleanValue)
	assert.Equal(t, "cloud", *matrix[productB]["deployment_model"].StringValue)

	// Products with no values still appear with an empty map.
	require.Contains(t, matrix, productC)
	assert.Empty(t, matrix[productC])
}

func TestValuesForSkipsQueryWhenNothingToFetch(t *testing.T) {
	finder := &countingFinder{}
	svc := &MetricService{finder: finder}

	matrix, err := svc.ValuesFor(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, matrix)
	assert.Empty(t, finder.calls, "no products and no definitions means no query")

	matrix, err = svc.ValuesFor([]uuid.UUID{uuid.New()}, nil)
	require.NoError(t, err)
	assert.Len(t, matrix, 1)
	assert.Empty(t, finder.calls)
}

func TestValuesForIgnoresRowsOutsideDefinitionSet(t *testing.T) {
	definitions := []models.MetricDefinition{
		testDefinition("uptime_sla", models.MetricTypeNumber),
	}
	productID := uuid.New()

	finder := &countingFinder{
		rows: []models.MetricValue{
			{ProductID: productID, MetricDefinitionID: uuid.New(), NumberValue: floatPtr(1)},
		},
	}
	svc := &MetricService{finder: finder}

	matrix, err := svc.ValuesFor([]uuid.UUID{productID}, definitions)
	require.NoError(t, err)
	assert.Empty(t, matrix[productID])
}

func TestValueViews(t *testing.T) {
	number := testDefinition("implementation_days", models.MetricTypeNumber)
	number.Unit = "days"
	boolean := testDefinition("api_available", models.MetricTypeBoolean)
	str := testDefinition("deployment_model", models.MetricTypeString)
	unset := testDefinition("uptime_sla", models.MetricTypeNumber)

	views := ValueViews(
		[]models.MetricDefinition{number, boolean, str, unset},
		map[string]*models.MetricValue{
			"implementation_days": {NumberValue: floatPtr(14)},
			"api_available":       {BooleanValue: boolPtr(false)},
			"deployment_model":    {StringValue: stringPtr("hybrid")},
		},
	)

	require.Len(t, views, 3)
	assert.Equal(t, float64(14), views["implementation_days"].Value)
	assert.Equal(t, "days", views["implementation_days"].Unit)
	assert.Equal(t, false, views["api_available"].Value)
	assert.Equal(t, "hybrid", views["deployment_model"].Value)
	assert.NotContains(t, views, "uptime_sla", "unset metrics are omitted")
}

func TestValueViewsSkipsMistypedRows(t *testing.T) {
	number := testDefinition("implementation_days", models.MetricTypeNumber)

	views := ValueViews(
		[]models.MetricDefinition{number},
		map[string]*models.MetricValue{
			"implementation_days": {StringValue: stringPtr("fourteen")},
		},
	)
	assert.Empty(t, views)
}

func TestValidateValueType(t *testing.T) {
	number := testDefinition("implementation_days", models.MetricTypeNumber)
	boolean := testDefinition("api_available", models.MetricTypeBoolean)

	assert.NoError(t, validateValueType(number, &UpsertMetricValueRequest{NumberValue: floatPtr(5)}))
	assert.Error(t, validateValueType(number, &UpsertMetricValueRequest{}),
		"empty request")
	assert.Error(t, validateValueType(number, &UpsertMetricValueRequest{NumberValue: floatPtr(5), BooleanValue: boolPtr(true)}),
		"two fields set")
	assert.Error(t, validateValueType(number, &UpsertMetricValueRequest{BooleanValue: boolPtr(true)}),
		"wrong type for a number metric")
	assert.Error(t, validateValueType(boolean, &UpsertMetricValueRequest{StringValue: stringPtr("yes")}),
		"wrong type for a boolean metric")
}
