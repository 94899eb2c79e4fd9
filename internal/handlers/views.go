package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kitaphana/kitaphana-backend/internal/logger"
	"github.com/kitaphana/kitaphana-backend/internal/middleware"
	"github.com/kitaphana/kitaphana-backend/internal/repos"
	"github.com/kitaphana/kitaphana-backend/internal/services"
)

type ViewHandler struct {
	log         *logger.Logger
	viewService services.ViewService
}

func NewViewHandler(log *logger.Logger, viewService services.ViewService) *ViewHandler {
	return &ViewHandler{
		log:         log.With("handler", "ViewHandler"),
		viewService: viewService,
	}
}

// RegisterView handles POST /views/:type/:id.
func (h *ViewHandler) RegisterView(c *gin.Context) {
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

	var identity repos.ViewerIdentity
	if userID, ok := middleware.UserID(c); ok {
		identity.UserID = &userID
	} else if sessionKey, ok := middleware.SessionKey(c); ok {
		identity.SessionKey = &sessionKey
	} else {
		RespondError(c, http.StatusInternalServerError, "identity_unresolved", nil)
		return
	}

	result, err := h.viewService.RegisterView(c.Request.Context(), identity, contentType, id)
	if err != nil {
		h.log.Error("RegisterView failed", "content_type", contentType, "content_id", id, "error", err)
		RespondError(c, http.StatusInternalServerError, "view_register_failed", err)
		return
	}
	RespondOK(c, result)
}
