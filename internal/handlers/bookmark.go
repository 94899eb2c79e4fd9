package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kitaphana/kitaphana-backend/internal/logger"
	"github.com/kitaphana/kitaphana-backend/internal/middleware"
	"github.com/kitaphana/kitaphana-backend/internal/services"
)

type BookmarkHandler struct {
	log             *logger.Logger
	bookmarkService services.BookmarkService
}

func NewBookmarkHandler(log *logger.Logger, bookmarkService services.BookmarkService) *BookmarkHandler {
	return &BookmarkHandler{
		log:             log.With("handler", "BookmarkHandler"),
		bookmarkService: bookmarkService,
	}
}

// Toggle handles POST /bookmarks/:type/:id.
func (h *BookmarkHandler) Toggle(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
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

	added, err := h.bookmarkService.Toggle(c.Request.Context(), userID, contentType, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			RespondError(c, http.StatusNotFound, "content_not_found", err)
			return
		}
		h.log.Error("Toggle failed", "content_type", contentType, "content_id", id, "error", err)
		RespondError(c, http.StatusInternalServerError, "bookmark_toggle_failed", err)
		return
	}
	RespondOK(c, gin.H{"added": added, "is_bookmarked": added})
}

// ListMine handles GET /bookmarks.
func (h *BookmarkHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	list, err := h.bookmarkService.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("ListMine failed", "user_id", userID, "error", err)
		RespondError(c, http.StatusInternalServerError, "bookmark_list_failed", err)
		return
	}
	RespondOK(c, list)
}
