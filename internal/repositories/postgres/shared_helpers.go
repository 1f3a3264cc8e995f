package postgres

import (
	"fmt"

	"gorm.io/gorm"
)

// handleDBError is a package-level helper for wrapping database errors.
// gorm.ErrRecordNotFound stays in the chain so services can map it.
func handleDBError(err error, operation string) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s failed: %w", operation, err)
}

// applyPaginationAndSorting validates sort input against a column
// whitelist and applies limit/offset.
func applyPaginationAndSorting(query *gorm.DB, limit, offset int, sortBy, sortOrder string, sortKeyToColumn map[string]string, defaultColumn string) *gorm.DB {
	column, ok := sortKeyToColumn[sortBy]
	if !ok {
		column = defaultColumn
	}

	order := "DESC"
	if sortOrder == "asc" || sortOrder == "ASC" {
		order = "ASC"
	}

	// Only use the mapped SQL column name and constant sort order
	query = query.Order(fmt.Sprintf("%s %s", column, order))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}
