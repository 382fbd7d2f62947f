package postgres

import (
	"fmt"
	"slices"
	"strings"

	"gorm.io/gorm"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// SharedHelpers carries query helpers shared by the postgres stores.
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplyPaginationAndSort applies an allow-listed ORDER BY plus LIMIT/OFFSET.
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int, allowed []string, fallback string) *gorm.DB {
	return h.ApplyPagination(h.ApplySort(query, sortBy, sortOrder, allowed, fallback), limit, offset)
}

// ApplySort orders by sortBy when it is allow-listed, otherwise by fallback. Ties break on id.
func (h *SharedHelpers) ApplySort(query *gorm.DB, sortBy, sortOrder string, allowed []string, fallback string) *gorm.DB {
	if !slices.Contains(allowed, sortBy) {
		sortBy = fallback
	}

	order := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		order = "ASC"
	}
	return query.Order(fmt.Sprintf("%s %s, id %s", sortBy, order, order))
}

func (h *SharedHelpers) ApplyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return query.Limit(limit).Offset(offset)
}

// Window returns the [offset, offset+limit) slice bounds for n already-loaded rows.
func (h *SharedHelpers) Window(n, limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := offset + limit
	if end > n {
		end = n
	}
	return offset, end
}
