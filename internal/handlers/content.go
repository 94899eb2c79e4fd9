package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kitaphana/kitaphana-backend/internal/logger"
	"github.com/kitaphana/kitaphana-backend/internal/middleware"
	"github.com/kitaphana/kitaphana-backend/internal/repos"
	"github.com/kitaphana/kitaphana-backend/internal/services"
)

type ContentHandler struct {
	log            *logger.Logger
	contentService services.ContentService
	pageSize       int
}

func NewContentHandler(log *logger.Logger, contentService services.ContentService, pageSize int) *ContentHandler {
	return &ContentHandler{
		log:            log.With("handler", "ContentHandler"),
		contentService: contentService,
		pageSize:       pageSize,
	}
}

// List handles GET /content/:type.
func (h *ContentHandler) List(c *gin.Context) {
	contentType, err := contentTypeParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_content_type", err)
		return
	}

	filter := repos.ContentFilter{
		Language:    c.Query("language"),
		ArticleType: c.Query("type"),
		Page:        pageParam(c),
		PageSize:    h.pageSize,
	}
	if _, filter.DateExact, err = dateQuery(c, "publication_date"); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_filter", err)
		return
	}
	if _, filter.DateGte, err = dateQuery(c, "publication_date__gte"); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_filter", err)
		return
	}
	if _, filter.DateLte, err = dateQuery(c, "publication_date__lte"); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_filter", err)
		return
	}
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			RespondError(c, http.StatusBadRequest, "invalid_filter", fmt.Errorf("invalid category_id %q", raw))
			return
		}
		filter.CategoryID = id
	}

	records, err := h.contentService.List(c.Request.Context(), contentType, filter, c.Request.URL.Path, c.Request.URL.Query())
	if err != nil {
		h.log.Error("List failed", "content_type", contentType, "error", err)
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"results": records, "page": filter.Page, "page_size": filter.PageSize})
}

// Detail handles GET /content/:type/:id.
func (h *ContentHandler) Detail(c *gin.Context) {
	contentType, err := contentTypeParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_content_type", err)
		return
	}
	id, err := idParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	var userID *uuid.UUID
	if uid, ok := middleware.UserID(c); ok {
		userID = &uid
	}

	detail, err := h.contentService.GetDetail(c.Request.Context(), contentType, id, userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			RespondError(c, http.StatusNotFound, "content_not_found", err)
			return
		}
		h.log.Error("Detail failed", "content_type", contentType, "content_id", id, "error", err)
		RespondError(c, http.StatusInternalServerError, "detail_failed", err)
		return
	}
	RespondOK(c, detail)
}

// Create handles POST /content/:type.
func (h *ContentHandler) Create(c *gin.Context) {
	contentType, err := contentTypeParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_content_type", err)
		return
	}
	var input services.ContentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	rec, err := h.contentService.Create(c.Request.Context(), contentType, input)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			RespondError(c, http.StatusBadRequest, "invalid_input", err)
			return
		}
		h.log.Error("Create failed", "content_type", contentType, "error", err)
		RespondError(c, http.StatusInternalServerError, "create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// Update handles PUT /content/:type/:id.
func (h *ContentHandler) Update(c *gin.Context) {
	contentType, err := contentTypeParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_content_type", err)
		return
	}
	id, err := idParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var input services.ContentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	rec, err := h.contentService.Update(c.Request.Context(), contentType, id, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			RespondError(c, http.StatusNotFound, "content_not_found", err)
		case errors.Is(err, services.ErrInvalidInput):
			RespondError(c, http.StatusBadRequest, "invalid_input", err)
		default:
			h.log.Error("Update failed", "content_type", contentType, "content_id", id, "error", err)
			RespondError(c, http.StatusInternalServerError, "update_failed", err)
		}
		return
	}
	RespondOK(c, rec)
}

// Delete handles DELETE /content/:type/:id.
func (h *ContentHandler) Delete(c *gin.Context) {
	contentType, err := contentTypeParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_content_type", err)
		return
	}
	id, err := idParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	if err := h.contentService.Delete(c.Request.Context(), contentType, id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			RespondError(c, http.StatusNotFound, "content_not_found", err)
			return
		}
		h.log.Error("Delete failed", "content_type", contentType, "content_id", id, "error", err)
		RespondError(c, http.StatusInternalServerError, "delete_failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Categories handles GET /categories/:type.
func (h *ContentHandler) Categories(c *gin.Context) {
	contentType, err := contentTypeParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_content_type", err)
		return
	}
	categories, err := h.contentService.Categories(c.Request.Context(), contentType)
	if err != nil {
		h.log.Error("Categories failed", "content_type", contentType, "error", err)
		RespondError(c, http.StatusInternalServerError, "categories_failed", err)
		return
	}
	RespondOK(c, gin.H{"categories": categories})
}
