package handlers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kitaphana/kitaphana-backend/internal/types"
)

const dateParamLayout = "2006-01-02"

// contentTypeParam validates the :type path segment.
func contentTypeParam(c *gin.Context) (types.ContentType, error) {
	return types.ParseContentType(c.Param("type"))
}

// idParam validates the :id path segment.
func idParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", c.Param("id"))
	}
	return id, nil
}

// pageParam returns the 1-based page, clamping anything below 1.
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// dateQuery validates an optional YYYY-MM-DD query parameter.
func dateQuery(c *gin.Context, name string) (string, *time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return "", nil, nil
	}
	t, err := time.Parse(dateParamLayout, raw)
	if err != nil {
		return "", nil, fmt.Errorf("invalid %s %q, expected YYYY-MM-DD", name, raw)
	}
	return raw, &t, nil
}
