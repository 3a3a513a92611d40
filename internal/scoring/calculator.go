// internal/scoring/calculator.go
package scoring

import (
	"math"
	"strings"

	"github.com/stackpick/stackpick-backend/internal/models"
)

// Well-known metric codes consumed directly by dimension factors. Every
// category seeds a definition for each of these.
const (
	CodeImplementationDays = "implementation_days"
	CodeDeploymentModel    = "deployment_model"
	CodeComplexity         = "complexity"
	CodeAPIAvailable       = "api_available"
)

// Config carries the tunable parameters of the scoring formula. The dimension
// weights are documented product policy; the review prior controls how hard
// low review counts are discounted toward a neutral rating.
type Config struct {
	FitWeight         float64
	FeatureWeight     float64
	IntegrationWeight float64
	ReviewWeight      float64

	// Bayesian prior for the review dimension: a product is treated as if it
	// already had ReviewPriorWeight reviews at ReviewPriorRating stars.
	ReviewPriorRating float64
	ReviewPriorWeight float64
}

func DefaultConfig() Config {
	return Config{
		FitWeight:         0.30,
		FeatureWeight:     0.25,
		IntegrationWeight: 0.25,
		ReviewWeight:      0.20,
		ReviewPriorRating: 3.0,
		ReviewPriorWeight: 5,
	}
}

type Factor struct {
	Name   string  `json:"name"`
	Score  int     `json:"score"`
	Weight float64 `json:"weight"`
}

type Dimension struct {
	Score   int      `json:"score"`
	Factors []Factor `json:"factors"`
}

// Breakdown is the derived score record cached on a product. All scores are
// integers in [0,100].
type Breakdown struct {
	Fit         Dimension `json:"fit"`
	Feature     Dimension `json:"feature"`
	Integration Dimension `json:"integration"`
	Review      Dimension `json:"review"`
	Overall     int       `json:"overall"`
}

// ReviewStats is the aggregate review input to the calculator.
type ReviewStats struct {
	AverageRating float64
	ReviewCount   int64
}

// Category-to-ecosystem compatibility. Reflects how integration-rich the
// surrounding tool ecosystem is for each domain.
var ecosystemCompat = map[models.CategoryKey]int{
	models.CategoryHR:        75,
	models.CategoryLegal:     70,
	models.CategoryMarketing: 85,
	models.CategoryDevTools:  90,
}

type Calculator struct {
	cfg Config
}

func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// ComputeScores derives the four dimension scores and the weighted overall
// score for a product. It is a pure function: any missing input (no metric
// values, zero reviews, nil buyer) contributes 0 to its factor, so the result
// is always defined and never NaN.
func (c *Calculator) ComputeScores(
	product *models.Product,
	definitions []models.MetricDefinition,
	values map[string]*models.MetricValue,
	stats ReviewStats,
	features []models.Feature,
	buyer *models.BuyerProfile,
) Breakdown {
	metrics := newMetricSet(definitions, values)

	fit := c.fitDimension(product, metrics, buyer)
	feature := c.featureDimension(product, features)
	integration := c.integrationDimension(product, metrics, buyer)
	review := c.reviewDimension(stats)

	return Breakdown{
		Fit:         fit,
		Feature:     feature,
		Integration: integration,
		Review:      review,
		Overall:     c.Overall(fit.Score, feature.Score, integration.Score, review.Score),
	}
}

// Overall combines the four dimension scores per the documented weights,
// rounded to an integer.
func (c *Calculator) Overall(fit, feature, integration, review int) int {
	sum := c.cfg.FitWeight*float64(fit) +
		c.cfg.FeatureWeight*float64(feature) +
		c.cfg.IntegrationWeight*float64(integration) +
		c.cfg.ReviewWeight*float64(review)
	return clampScore(int(math.Round(sum)))
}

func (c *Calculator) fitDimension(product *models.Product, metrics metricSet, buyer *models.BuyerProfile) Dimension {
	return weighted(
		Factor{Name: "implementation_time", Score: metrics.normalized(CodeImplementationDays), Weight: 0.35},
		Factor{Name: "deployment_model", Score: metrics.normalized(CodeDeploymentModel), Weight: 0.25},
		Factor{Name: "complexity", Score: metrics.normalized(CodeComplexity), Weight: 0.25},
		Factor{Name: "buyer_industry_match", Score: industryMatch(product, buyer), Weight: 0.15},
	)
}

func (c *Calculator) featureDimension(product *models.Product, features []models.Feature) Dimension {
	highValue := 0
	for _, f := range features {
		if f.HighValue {
			highValue++
		}
	}

	return weighted(
		Factor{Name: "description_completeness", Score: descriptionCompleteness(product.Description), Weight: 0.30},
		Factor{Name: "description_quality", Score: descriptionQuality(product.Description), Weight: 0.20},
		Factor{Name: "feature_count", Score: saturating(len(features), 10), Weight: 0.30},
		Factor{Name: "high_value_features", Score: saturating(highValue, 5), Weight: 0.20},
	)
}

func (c *Calculator) integrationDimension(product *models.Product, metrics metricSet, buyer *models.BuyerProfile) Dimension {
	return weighted(
		Factor{Name: "deployment_type", Score: metrics.normalized(CodeDeploymentModel), Weight: 0.30},
		Factor{Name: "ecosystem_compatibility", Score: ecosystemCompat[product.Category], Weight: 0.30},
		Factor{Name: "api_availability", Score: metrics.normalized(CodeAPIAvailable), Weight: 0.25},
		Factor{Name: "buyer_deployment_match", Score: deploymentMatch(metrics, buyer), Weight: 0.15},
	)
}

// reviewDimension scales the average rating to 0-100 after discounting it
// toward a neutral prior when the sample is small, then adds a saturating
// volume boost. A product with zero reviews scores 0: the prior only tempers
// ratings that exist, it does not invent one.
func (c *Calculator) reviewDimension(stats ReviewStats) Dimension {
	if stats.ReviewCount <= 0 {
		return weighted(
			Factor{Name: "adjusted_rating", Score: 0, Weight: 0.70},
			Factor{Name: "review_volume", Score: 0, Weight: 0.30},
		)
	}

	n := float64(stats.ReviewCount)
	adjusted := (stats.AverageRating*n + c.cfg.ReviewPriorRating*c.cfg.ReviewPriorWeight) /
		(n + c.cfg.ReviewPriorWeight)

	ratingScore := clampScore(int(math.Round(adjusted * 20)))
	volumeScore := saturating(int(stats.ReviewCount), 50)

	return weighted(
		Factor{Name: "adjusted_rating", Score: ratingScore, Weight: 0.70},
		Factor{Name: "review_volume", Score: volumeScore, Weight: 0.30},
	)
}

// weighted combines named factors into a dimension score.
func weighted(factors ...Factor) Dimension {
	var sum float64
	for _, f := range factors {
		sum += f.Weight * float64(f.Score)
	}
	return Dimension{
		Score:   clampScore(int(math.Round(sum))),
		Factors: factors,
	}
}

// saturating maps a count onto 0-100, capping at max.
func saturating(count, max int) int {
	if count <= 0 {
		return 0
	}
	if count >= max {
		return 100
	}
	return int(math.Round(float64(count) / float64(max) * 100))
}

func descriptionCompleteness(desc string) int {
	const targetLength = 800
	return saturating(len(desc), targetLength)
}

// descriptionQuality is a structure heuristic, not a language model: multiple
// sentences, paragraph breaks, and a reasonable word count each earn a share.
func descriptionQuality(desc string) int {
	if desc == "" {
		return 0
	}

	score := 0
	if strings.Count(desc, ".") >= 3 {
		score += 40
	}
	if strings.Contains(desc, "\n") {
		score += 30
	}
	if len(strings.Fields(desc)) >= 100 {
		score += 30
	}
	return score
}

func industryMatch(product *models.Product, buyer *models.BuyerProfile) int {
	if buyer == nil || buyer.Industry == "" {
		return 0
	}
	for _, tag := range product.Tags {
		if strings.EqualFold(tag, buyer.Industry) {
			return 100
		}
	}
	return 0
}

func deploymentMatch(metrics metricSet, buyer *models.BuyerProfile) int {
	if buyer == nil || buyer.PreferredDeployment == "" {
		return 0
	}

	deployment := metrics.stringValue(CodeDeploymentModel)
	if deployment == "" {
		return 0
	}
	if strings.EqualFold(deployment, buyer.PreferredDeployment) {
		return 100
	}
	// Hybrid products partially satisfy either preference.
	if strings.EqualFold(deployment, "hybrid") || strings.EqualFold(buyer.PreferredDeployment, "hybrid") {
		return 60
	}
	return 0
}

// metricSet pairs a category's definitions with one product's values for
// code-based lookup.
type metricSet struct {
	defs   map[string]models.MetricDefinition
	values map[string]*models.MetricValue
}

func newMetricSet(definitions []models.MetricDefinition, values map[string]*models.MetricValue) metricSet {
	defs := make(map[string]models.MetricDefinition, len(definitions))
	for _, d := range definitions {
		defs[d.Code] = d
	}
	if values == nil {
		values = map[string]*models.MetricValue{}
	}
	return metricSet{defs: defs, values: values}
}

func (m metricSet) normalized(code string) int {
	def, ok := m.defs[code]
	if !ok {
		return 0
	}
	return Normalize(def, m.values[code])
}

func (m metricSet) stringValue(code string) string {
	v, ok := m.values[code]
	if !ok || v == nil || v.StringValue == nil {
		return ""
	}
	return *v.StringValue
}
