package persistence

import (
	"strings"

	"github.com/buchmeister/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// applyPagination applies page and ordering options to a query. The
// order column is checked against an allow-list per repository, never
// interpolated from raw input.
func applyPagination(query *gorm.DB, filter shared.Filter, sortable map[string]bool, defaultOrder string) *gorm.DB {
	if filter.OrderBy != "" && sortable[filter.OrderBy] {
		dir := "ASC"
		if strings.EqualFold(filter.OrderDir, "desc") {
			dir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + dir)
	} else if defaultOrder != "" {
		query = query.Order(defaultOrder)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}
