package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/api/middleware"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/errors"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/models"
	service "github.com/aaravmahajanofficial/pharmacy-checkout/internal/services"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/utils"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type ReviewHandler struct {
	reviewService service.ReviewService
	validator     *validator.Validate
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, validator: validator.New()}
}

// ListPending godoc
//	@Summary		List prescriptions awaiting review
//	@Tags			Reviews
//	@Produce		json
//	@Param			page		query		int							false	"Page number"	default(1)
//	@Param			pageSize	query		int							false	"Page size"		default(10)
//	@Success		200			{object}	models.PaginatedResponse
//	@Failure		401			{object}	response.ErrorResponse
//	@Failure		403			{object}	response.ErrorResponse
//	@Security		BearerAuth
//	@Router			/reviews [get]
func (h *ReviewHandler) ListPending() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		// invalid values fall back to the service defaults
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

		reviews, err := h.reviewService.ListPending(r.Context(), page, pageSize)
		if err != nil {
			logger.Error("Failed to list prescription reviews", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, reviews)
	}
}

// Decide godoc
//	@Summary		Verify or reject a prescription
//	@Tags			Reviews
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string						true	"Review ID"	Format(uuid)
//	@Param			decision	body		models.ReviewDecisionRequest	true	"Decision"
//	@Success		200			{object}	models.PrescriptionReview
//	@Failure		400			{object}	response.ErrorResponse	"Validation error"
//	@Failure		404			{object}	response.ErrorResponse	"Review not found"
//	@Failure		409			{object}	response.ErrorResponse	"Review already closed"
//	@Security		BearerAuth
//	@Router			/reviews/{id}/decision [post]
func (h *ReviewHandler) Decide() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			logger.Warn("Unauthorized review decision attempt")
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		reviewID, err := utils.ParseID(r, "id")
		if err != nil {
			logger.Warn("Invalid review id", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		var req models.ReviewDecisionRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid review decision input")
			return
		}

		review, err := h.reviewService.Decide(r.Context(), reviewID, claims.UserID, &req)
		if err != nil {
			logger.Error("Failed to record review decision", slog.String("reviewId", reviewID.String()), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, review)
	}
}
