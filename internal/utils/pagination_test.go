package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testContext(url string) *gin.Context {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", url, nil)
	return c
}

func TestParsePaginationDefaults(t *testing.T) {
	page, limit := ParsePagination(testContext("/api/products"), 12)
	assert.Equal(t, 1, page)
	assert.Equal(t, 12, limit)
}

func TestParsePaginationExplicit(t *testing.T) {
	page, limit := ParsePagination(testContext("/api/products?page=3&limit=25"), 12)
	assert.Equal(t, 3, page)
	assert.Equal(t, 25, limit)
}

func TestParsePaginationClamps(t *testing.T) {
	page, limit := ParsePagination(testContext("/api/products?page=-2&limit=9999"), 12)
	assert.Equal(t, 1, page)
	assert.Equal(t, 100, limit)

	page, limit = ParsePagination(testContext("/api/products?page=abc&limit=0"), 12)
	assert.Equal(t, 1, page)
	assert.Equal(t, 12, limit)
}

func TestBuildPagination(t *testing.T) {
	p := BuildPagination(2, 10, 35)

	assert.Equal(t, 2, p.CurrentPage)
	assert.Equal(t, 4, p.TotalPages)
	assert.Equal(t, int64(35), p.Total)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)
	assert.Equal(t, 10, p.Limit)
}

func TestBuildPaginationEdges(t *testing.T) {
	first := BuildPagination(1, 10, 35)
	assert.False(t, first.HasPrev)
	assert.True(t, first.HasNext)

	last := BuildPagination(4, 10, 35)
	assert.True(t, last.HasPrev)
	assert.False(t, last.HasNext)

	empty := BuildPagination(1, 10, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrev)

	exact := BuildPagination(3, 10, 30)
	assert.Equal(t, 3, exact.TotalPages)
	assert.False(t, exact.HasNext)
}
