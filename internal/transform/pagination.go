package transform

import (
	"encoding/json"

	"github.com/saltbo/openapi-rest-admin-sub002/internal/domain"
)

// DefaultPaginationKeys names the nested objects probed for pagination
// metadata before falling back to root-level fields.
var DefaultPaginationKeys = []string{"pagination", "meta"}

// Field name sets recognized for each pagination value.
var (
	pageKeys     = []string{"page", "current", "current_page", "currentPage"}
	pageSizeKeys = []string{"pageSize", "page_size", "size", "limit", "per_page", "perPage"}
	totalKeys    = []string{"total", "totalCount", "total_count", "count"}
)

// singlePage is the default pagination for a bare-array response.
func singlePage(total int) domain.PaginationInfo {
	return domain.PaginationInfo{
		Page:       1,
		PageSize:   total,
		Total:      total,
		TotalPages: 1,
	}
}

// extractPagination reads pagination metadata out of an envelope object. It
// looks first for a nested pagination object, then scans root-level fields
// with the same name sets. When no total is found the single-page assumption
// applies: total defaults to pageSize.
func (t *Transformer) extractPagination(envelope map[string]interface{}, dataLen int) domain.PaginationInfo {
	source := envelope
	for _, key := range t.paginationKeys {
		if nested, ok := envelope[key].(map[string]interface{}); ok {
			source = nested
			break
		}
	}

	page, ok := lookupInt(source, pageKeys)
	if !ok || page <= 0 {
		page = 1
	}
	pageSize, ok := lookupInt(source, pageSizeKeys)
	if !ok || pageSize < 0 {
		pageSize = dataLen
	}
	total, ok := lookupInt(source, totalKeys)
	if !ok {
		total = pageSize
	}

	totalPages := 1
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	if totalPages < 1 {
		totalPages = 1
	}

	return domain.PaginationInfo{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

func lookupInt(obj map[string]interface{}, keys []string) (int, bool) {
	for _, key := range keys {
		if v, ok := obj[key]; ok {
			if n, ok := asInt(v); ok {
				return n, true
			}
		}
	}
	return 0, false
}

// asInt coerces the numeric shapes a decoded JSON body can carry.
func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}
