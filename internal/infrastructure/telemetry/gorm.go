package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/gorm"
)

// RegisterGormTracing attaches the otelgorm plugin so every SQL
// statement becomes a span under the active request trace. Query
// variables stay out of the spans.
func RegisterGormTracing(db *gorm.DB, dbName string) error {
	return db.Use(otelgorm.NewPlugin(
		otelgorm.WithDBName(dbName),
		otelgorm.WithoutQueryVariables(),
	))
}
