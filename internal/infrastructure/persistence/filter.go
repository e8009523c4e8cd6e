package persistence

import (
	"strings"

	"github.com/crm/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// applyPagination applies page/size and ordering from the filter.
// defaultOrder is used when the filter does not name a column.
func applyPagination(query *gorm.DB, filter shared.Filter, defaultOrder string) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else if defaultOrder != "" {
		query = query.Order(defaultOrder)
	}

	return query
}

// applySearch applies an ILIKE search over the given columns
func applySearch(query *gorm.DB, search string, columns ...string) *gorm.DB {
	if search == "" || len(columns) == 0 {
		return query
	}
	pattern := "%" + search + "%"
	conds := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		conds[i] = col + " ILIKE ?"
		args[i] = pattern
	}
	return query.Where(strings.Join(conds, " OR "), args...)
}
