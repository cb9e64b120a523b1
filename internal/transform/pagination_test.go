package transform_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saltbo/openapi-rest-admin-sub002/internal/domain"
	"github.com/saltbo/openapi-rest-admin-sub002/internal/transform"
)

func transformEnvelope(t *testing.T, body string) domain.PaginationInfo {
	t.Helper()
	tr := transform.New(transform.Options{})
	result, err := tr.TransformList(decode(t, body), userSchema)
	require.NoError(t, err)
	return result.Pagination
}

func TestPagination_NestedObject(t *testing.T) {
	p := transformEnvelope(t, `{
	  "data": [{"id": 1}, {"id": 2}],
	  "pagination": {"page": 3, "pageSize": 2, "total": 41}
	}`)
	assert.Equal(t, domain.PaginationInfo{Page: 3, PageSize: 2, Total: 41, TotalPages: 21}, p)
}

func TestPagination_NestedObjectAliases(t *testing.T) {
	p := transformEnvelope(t, `{
	  "data": [{"id": 1}],
	  "pagination": {"current": 2, "size": 10, "totalCount": 95}
	}`)
	assert.Equal(t, domain.PaginationInfo{Page: 2, PageSize: 10, Total: 95, TotalPages: 10}, p)
}

func TestPagination_RootLevelFields(t *testing.T) {
	p := transformEnvelope(t, `{
	  "data": [{"id": 1}],
	  "page": 2,
	  "limit": 25,
	  "total": 120
	}`)
	assert.Equal(t, domain.PaginationInfo{Page: 2, PageSize: 25, Total: 120, TotalPages: 5}, p)
}

func TestPagination_MetaObject(t *testing.T) {
	p := transformEnvelope(t, `{
	  "data": [{"id": 1}],
	  "meta": {"page": 1, "per_page": 20, "total_count": 7}
	}`)
	assert.Equal(t, domain.PaginationInfo{Page: 1, PageSize: 20, Total: 7, TotalPages: 1}, p)
}

func TestPagination_TotalDefaultsToPageSize(t *testing.T) {
	// Single-page assumption: no total anywhere, page size declared.
	p := transformEnvelope(t, `{
	  "data": [{"id": 1}, {"id": 2}],
	  "pageSize": 50
	}`)
	assert.Equal(t, domain.PaginationInfo{Page: 1, PageSize: 50, Total: 50, TotalPages: 1}, p)
}

func TestPagination_NoMetadataAtAll(t *testing.T) {
	p := transformEnvelope(t, `{"data": [{"id": 1}, {"id": 2}, {"id": 3}]}`)
	assert.Equal(t, domain.PaginationInfo{Page: 1, PageSize: 3, Total: 3, TotalPages: 1}, p)
}

func TestPagination_CeilingOfTotalPages(t *testing.T) {
	p := transformEnvelope(t, `{
	  "data": [{"id": 1}],
	  "pagination": {"page": 1, "pageSize": 10, "total": 11}
	}`)
	assert.Equal(t, 2, p.TotalPages)
}
