package unbtest

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// pageParams are the standard listing query parameters.
type pageParams struct {
	limit int
	sort  string
	page  int
}

// parsePageParams reads limit, sort, and page with the API's defaults.
func parsePageParams(c *gin.Context, defaultSort string) pageParams {
	p := pageParams{limit: maxPageSize, sort: defaultSort, page: 1}

	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.limit = min(n, maxPageSize)
		}
	}

	if raw := c.Query("sort"); raw != "" {
		p.sort = raw
	}

	if raw := c.Query("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.page = n
		}
	}

	return p
}

// paginate returns the slice bounds and total page count for n elements.
func (p pageParams) paginate(n int) (start, end, totalPages int) {
	totalPages = (n + p.limit - 1) / p.limit
	if totalPages < 1 {
		totalPages = 1
	}

	start = (p.page - 1) * p.limit
	if start > n {
		start = n
	}

	end = start + p.limit
	if end > n {
		end = n
	}

	return start, end, totalPages
}
