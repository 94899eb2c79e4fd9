package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kitaphana/kitaphana-backend/internal/logger"
	"github.com/kitaphana/kitaphana-backend/internal/middleware"
	"github.com/kitaphana/kitaphana-backend/internal/services"
	"github.com/kitaphana/kitaphana-backend/internal/types"
)

type RatingHandler struct {
	log           *logger.Logger
	ratingService services.RatingService
}

func NewRatingHandler(log *logger.Logger, ratingService services.RatingService) *RatingHandler {
	return &RatingHandler{
		log:           log.With("handler", "RatingHandler"),
		ratingService: ratingService,
	}
}

type rateRequest struct {
	ContentType string `json:"content_type" binding:"required"`
	ContentID   int64  `json:"content_id" binding:"required"`
	Rating      int    `json:"rating" binding:"required"`
}

// Rate handles POST /rate.
func (h *RatingHandler) Rate(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var body rateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	contentType, err := types.ParseContentType(body.ContentType)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_content_type", err)
		return
	}

	created, err := h.ratingService.Rate(c.Request.Context(), userID, contentType, body.ContentID, body.Rating)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			RespondError(c, http.StatusBadRequest, "invalid_rating", err)
		case errors.Is(err, services.ErrNotFound):
			RespondError(c, http.StatusNotFound, "content_not_found", err)
		default:
			h.log.Error("Rate failed", "content_type", contentType, "content_id", body.ContentID, "error", err)
			RespondError(c, http.StatusInternalServerError, "rate_failed", err)
		}
		return
	}

	status := http.StatusOK
	message := "Rating updated"
	if created {
		status = http.StatusCreated
		message = "Rating created"
	}
	c.JSON(status, gin.H{
		"success": true,
		"message": message,
		"rating":  body.Rating,
	})
}
