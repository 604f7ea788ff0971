package persistence

import (
	"fmt"
	"strings"

	"github.com/statyba/storefront/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when whitelisted, otherwise defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

var (
	BrandSortFields = map[string]bool{
		"created_at": true, "updated_at": true, "name": true, "slug": true, "sort_order": true,
	}
	CollectionSortFields = map[string]bool{
		"created_at": true, "updated_at": true, "name": true, "sort_order": true,
	}
	StockSortFields = map[string]bool{
		"created_at": true, "updated_at": true, "quantity": true, "reserved": true,
	}
)

// paginate applies a whitelisted order and page window from filter
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	f := filter.Normalize()
	field := ValidateSortField(f.OrderBy, allowed, defaultField)
	query = query.Order(fmt.Sprintf("%s %s", field, ValidateSortOrder(f.OrderDir)))
	if field != "id" {
		query = query.Order("id ASC")
	}
	return query.Offset(f.Offset()).Limit(f.PageSize)
}

// pageWindow clamps a raw page/pageSize pair
func pageWindow(page, pageSize int) (offset, limit int) {
	f := shared.Filter{Page: page, PageSize: pageSize}.Normalize()
	return f.Offset(), f.PageSize
}

// likePattern builds a case-insensitive LIKE pattern with wildcards escaped
func likePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(search))) + "%"
}
