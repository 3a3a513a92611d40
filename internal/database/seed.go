// internal/database/seed.go
package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/stackpick/stackpick-backend/internal/models"
)

// deploymentOptions is the fixed lookup table for the deployment_model
// metric. Unknown values normalize to 0, so extending the taxonomy later is
// safe.
var deploymentOptions = models.JSONB{
	"cloud":      float64(100),
	"hybrid":     float64(70),
	"on_premise": float64(40),
}

// sharedDefinitions are seeded into every category. Their codes are consumed
// directly by the score calculator's fit and integration dimensions.
func sharedDefinitions(category models.CategoryKey) []models.MetricDefinition {
	return []models.MetricDefinition{
		{
			Category: category, Code: "implementation_days", Label: "Implementation time",
			Unit: "days", DataType: models.MetricTypeNumber, SortOrder: 1,
			RangeMin: 0, RangeMax: 90, LowerIsBetter: true,
		},
		{
			Category: category, Code: "deployment_model", Label: "Deployment model",
			DataType: models.MetricTypeString, Qualitative: true, SortOrder: 2,
			Options: deploymentOptions,
		},
		{
			Category: category, Code: "complexity", Label: "Setup complexity",
			DataType: models.MetricTypeNumber, SortOrder: 3,
			RangeMin: 1, RangeMax: 5, LowerIsBetter: true,
		},
		{
			Category: category, Code: "api_available", Label: "Public API",
			DataType: models.MetricTypeBoolean, SortOrder: 4,
		},
	}
}

func categoryDefinitions() []models.MetricDefinition {
	var defs []models.MetricDefinition

	for _, cat := range models.AllCategories {
		defs = append(defs, sharedDefinitions(cat)...)
	}

	defs = append(defs,
		// HR & People Ops
		models.MetricDefinition{
			Category: models.CategoryHR, Code: "employee_capacity", Label: "Employee capacity",
			Unit: "employees", DataType: models.MetricTypeNumber, SortOrder: 5,
			RangeMin: 0, RangeMax: 10000,
		},
		models.MetricDefinition{
			Category: models.CategoryHR, Code: "sso_support", Label: "Single sign-on",
			DataType: models.MetricTypeBoolean, SortOrder: 6,
		},
		models.MetricDefinition{
			Category: models.CategoryHR, Code: "payroll_integration", Label: "Payroll integration",
			DataType: models.MetricTypeBoolean, SortOrder: 7,
		},
		models.MetricDefinition{
			Category: models.CategoryHR, Code: "compliance_certifications", Label: "Compliance certifications",
			DataType: models.MetricTypeNumber, SortOrder: 8,
			RangeMin: 0, RangeMax: 10,
		},
		models.MetricDefinition{
			Category: models.CategoryHR, Code: "support_sla_hours", Label: "Support SLA",
			Unit: "hours", DataType: models.MetricTypeNumber, SortOrder: 9,
			RangeMin: 0, RangeMax: 72, LowerIsBetter: true,
		},
		models.MetricDefinition{
			Category: models.CategoryHR, Code: "data_residency", Label: "Data residency",
			DataType: models.MetricTypeString, Qualitative: true, SortOrder: 10,
			Options: models.JSONB{"eu": float64(100), "us": float64(80), "global": float64(60)},
		},

		// Legal & Compliance
		models.MetricDefinition{
			Category: models.CategoryLegal, Code: "contract_templates", Label: "Contract templates",
			DataType: models.MetricTypeNumber, SortOrder: 5,
			RangeMin: 0, RangeMax: 500,
		},
		models.MetricDefinition{
			Category: models.CategoryLegal, Code: "esignature", Label: "E-signature",
			DataType: models.MetricTypeBoolean, SortOrder: 6,
		},
		models.MetricDefinition{
			Category: models.CategoryLegal, Code: "clause_library", Label: "Clause library",
			DataType: models.MetricTypeBoolean, SortOrder: 7,
		},
		models.MetricDefinition{
			Category: models.CategoryLegal, Code: "jurisdiction_coverage", Label: "Jurisdiction coverage",
			Unit: "jurisdictions", DataType: models.MetricTypeNumber, SortOrder: 8,
			RangeMin: 0, RangeMax: 50,
		},
		models.MetricDefinition{
			Category: models.CategoryLegal, Code: "audit_trail", Label: "Audit trail",
			DataType: models.MetricTypeBoolean, SortOrder: 9,
		},

		// Marketing & Growth
		models.MetricDefinition{
			Category: models.CategoryMarketing, Code: "channel_count", Label: "Supported channels",
			Unit: "channels", DataType: models.MetricTypeNumber, SortOrder: 5,
			RangeMin: 0, RangeMax: 20,
		},
		models.MetricDefinition{
			Category: models.CategoryMarketing, Code: "automation_workflows", Label: "Automation workflows",
			DataType: models.MetricTypeBoolean, SortOrder: 6,
		},
		models.MetricDefinition{
			Category: models.CategoryMarketing, Code: "ab_testing", Label: "A/B testing",
			DataType: models.MetricTypeBoolean, SortOrder: 7,
		},
		models.MetricDefinition{
			Category: models.CategoryMarketing, Code: "crm_sync", Label: "CRM sync",
			DataType: models.MetricTypeBoolean, SortOrder: 8,
		},
		models.MetricDefinition{
			Category: models.CategoryMarketing, Code: "analytics_depth", Label: "Analytics depth",
			DataType: models.MetricTypeString, Qualitative: true, SortOrder: 9,
			Options: models.JSONB{"realtime": float64(100), "daily": float64(70), "weekly": float64(40)},
		},

		// Developer Tools
		models.MetricDefinition{
			Category: models.CategoryDevTools, Code: "ci_integrations", Label: "CI integrations",
			DataType: models.MetricTypeNumber, SortOrder: 5,
			RangeMin: 0, RangeMax: 30,
		},
		models.MetricDefinition{
			Category: models.CategoryDevTools, Code: "sdk_languages", Label: "SDK languages",
			DataType: models.MetricTypeNumber, SortOrder: 6,
			RangeMin: 0, RangeMax: 15,
		},
		models.MetricDefinition{
			Category: models.CategoryDevTools, Code: "uptime_sla", Label: "Uptime SLA",
			Unit: "%", DataType: models.MetricTypeNumber, SortOrder: 7,
			RangeMin: 90, RangeMax: 100,
		},
		models.MetricDefinition{
			Category: models.CategoryDevTools, Code: "error_rate", Label: "Error rate",
			Unit: "%", DataType: models.MetricTypeNumber, SortOrder: 8,
			RangeMin: 0, RangeMax: 5, LowerIsBetter: true,
		},
		models.MetricDefinition{
			Category: models.CategoryDevTools, Code: "self_hosted_option", Label: "Self-hosted option",
			DataType: models.MetricTypeBoolean, SortOrder: 9,
		},
		models.MetricDefinition{
			Category: models.CategoryDevTools, Code: "container_support", Label: "Container support",
			DataType: models.MetricTypeBoolean, SortOrder: 10,
		},
	)

	return defs
}

// SeedMetricDefinitions inserts the per-category metric reference data.
// Existing (category, code) rows are left untouched; definitions are
// immutable once shipped.
func SeedMetricDefinitions(db *gorm.DB) error {
	log.Println("Seeding metric definitions...")

	for _, def := range categoryDefinitions() {
		var count int64
		if err := db.Model(&models.MetricDefinition{}).
			Where("category = ? AND code = ?", def.Category, def.Code).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check metric definition %s/%s: %w", def.Category, def.Code, err)
		}
		if count > 0 {
			continue
		}

		if err := db.Create(&def).Error; err != nil {
			return fmt.Errorf("failed to create metric definition %s/%s: %w", def.Category, def.Code, err)
		}
	}

	log.Println("Metric definition seeding completed")
	return nil
}
