package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kitaphana/kitaphana-backend/internal/logger"
	"github.com/kitaphana/kitaphana-backend/internal/search"
	"github.com/kitaphana/kitaphana-backend/internal/services"
	"github.com/kitaphana/kitaphana-backend/internal/types"
)

type SearchHandler struct {
	log           *logger.Logger
	searchService services.SearchService
	pageSize      int
}

func NewSearchHandler(log *logger.Logger, searchService services.SearchService, pageSize int) *SearchHandler {
	return &SearchHandler{
		log:           log.With("handler", "SearchHandler"),
		searchService: searchService,
		pageSize:      pageSize,
	}
}

// Search handles GET /search.
func (h *SearchHandler) Search(c *gin.Context) {
	req, err := h.parseRequest(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_search_request", err)
		return
	}

	resp, err := h.searchService.Search(c.Request.Context(), req, c.Request.URL.Path, c.Request.URL.Query())
	if err != nil {
		if errors.Is(err, services.ErrSearchUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":   "Search service temporarily unavailable",
				"message": "Please try again later",
			})
			return
		}
		h.log.Error("Search failed", "query", req.Query, "error", err)
		RespondError(c, http.StatusInternalServerError, "search_failed", err)
		return
	}
	RespondOK(c, resp)
}

func (h *SearchHandler) parseRequest(c *gin.Context) (search.Request, error) {
	req := search.Request{
		Query:        strings.TrimSpace(c.Query("q")),
		Page:         pageParam(c),
		PageSize:     h.pageSize,
		Language:     c.Query("language"),
		ArticleType:  c.Query("type"),
		Author:       c.Query("author"),
		CategoryName: c.Query("category_name"),
	}

	if raw := c.Query("content_type"); raw != "" {
		contentType, err := types.ParseContentType(raw)
		if err != nil {
			return search.Request{}, err
		}
		req.ContentType = contentType
	}

	var err error
	if req.PublicationDate, _, err = dateQuery(c, "publication_date"); err != nil {
		return search.Request{}, err
	}
	if req.PublicationDateGte, _, err = dateQuery(c, "publication_date__gte"); err != nil {
		return search.Request{}, err
	}
	if req.PublicationDateLte, _, err = dateQuery(c, "publication_date__lte"); err != nil {
		return search.Request{}, err
	}

	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			return search.Request{}, fmt.Errorf("invalid category_id %q", raw)
		}
		req.CategoryID = id
	}

	return req, nil
}
