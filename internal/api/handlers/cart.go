package handlers

import (
	stdErrors "errors"
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/api/middleware"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/config"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/errors"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/models"
	service "github.com/aaravmahajanofficial/pharmacy-checkout/internal/services"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/utils"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/utils/response"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
)

// room for multipart boundaries and headers around the file part
const multipartOverhead = 64 << 10

type CartHandler struct {
	cartService service.CartService
	validator   *validator.Validate
	upload      config.UploadConfig
}

func NewCartHandler(cartService service.CartService, upload config.UploadConfig) *CartHandler {
	return &CartHandler{cartService: cartService, validator: validator.New(), upload: upload}
}

// GetCart godoc
//	@Summary		Get the session cart
//	@Tags			Cart
//	@Produce		json
//	@Param			X-Session-ID	header		string					false	"Cart session, issued when absent"
//	@Success		200				{object}	models.CartView			"Current cart with totals and checkout eligibility"
//	@Failure		500				{object}	response.ErrorResponse	"Internal server error"
//	@Router			/cart [get]
func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		sessionID, ok := requireSession(w, r)
		if !ok {
			return
		}

		view, err := h.cartService.GetCart(r.Context(), sessionID)
		if err != nil {
			logger.Error("Failed to get cart", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, view)
	}
}

// AddItem godoc
//	@Summary		Add an item to the cart
//	@Description	Adds one unit of the item, or one more unit if it is already in the cart.
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			item	body		models.AddItemRequest	true	"Catalogue item"
//	@Success		200		{object}	models.CartView
//	@Failure		400		{object}	response.ErrorResponse	"Validation error"
//	@Router			/cart/items [post]
func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		sessionID, ok := requireSession(w, r)
		if !ok {
			return
		}

		var req models.AddItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid add item input")
			return
		}

		view, err := h.cartService.AddItem(r.Context(), sessionID, &req)
		if err != nil {
			logger.Error("Failed to add item", slog.String("itemId", req.ID), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Item added to cart", slog.String("itemId", req.ID))
		response.Success(w, http.StatusOK, view)
	}
}

func (h *CartHandler) UpdateQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		sessionID, ok := requireSession(w, r)
		if !ok {
			return
		}

		itemID, ok := requireItemID(w, r)
		if !ok {
			return
		}

		var req models.UpdateQuantityRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid update quantity input")
			return
		}

		view, err := h.cartService.UpdateQuantity(r.Context(), sessionID, itemID, &req)
		if err != nil {
			logger.Error("Failed to update quantity", slog.String("itemId", itemID), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, view)
	}
}

func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		sessionID, ok := requireSession(w, r)
		if !ok {
			return
		}

		itemID, ok := requireItemID(w, r)
		if !ok {
			return
		}

		view, err := h.cartService.RemoveItem(r.Context(), sessionID, itemID)
		if err != nil {
			logger.Error("Failed to remove item", slog.String("itemId", itemID), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, view)
	}
}

// UploadPrescription godoc
//	@Summary		Attach a prescription to a cart item
//	@Description	Accepts one image up to the configured size. The attachment starts pending until a pharmacist reviews it.
//	@Tags			Cart
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id		path		string					true	"Item ID"
//	@Param			file	formData	file					true	"Prescription image"
//	@Success		200		{object}	models.CartView
//	@Failure		400		{object}	response.ErrorResponse	"Missing file or item without prescription requirement"
//	@Failure		404		{object}	response.ErrorResponse	"Item not in cart"
//	@Failure		413		{object}	response.ErrorResponse	"File too large"
//	@Failure		415		{object}	response.ErrorResponse	"File is not an accepted image type"
//	@Failure		429		{object}	response.ErrorResponse	"Too many uploads"
//	@Router			/cart/items/{id}/prescription [post]
func (h *CartHandler) UploadPrescription() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		sessionID, ok := requireSession(w, r)
		if !ok {
			return
		}

		itemID, ok := requireItemID(w, r)
		if !ok {
			return
		}

		file, ok := h.readPrescription(w, r)
		if !ok {
			return
		}

		view, err := h.cartService.UploadPrescription(r.Context(), sessionID, itemID, file)
		if err != nil {
			logger.Error("Failed to upload prescription", slog.String("itemId", itemID), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Prescription uploaded", slog.String("itemId", itemID), slog.String("contentType", file.ContentType))
		response.Success(w, http.StatusOK, view)
	}
}

// Checkout godoc
//	@Summary		Place the order
//	@Tags			Cart
//	@Produce		json
//	@Success		201	{object}	models.CheckoutResult
//	@Failure		400	{object}	response.ErrorResponse	"Empty cart"
//	@Failure		409	{object}	response.ErrorResponse	"Prescriptions missing, pending or rejected"
//	@Router			/checkout [post]
func (h *CartHandler) Checkout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		sessionID, ok := requireSession(w, r)
		if !ok {
			return
		}

		result, err := h.cartService.Checkout(r.Context(), sessionID)
		if err != nil {
			logger.Warn("Checkout refused", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Order placed", slog.String("orderReference", result.OrderReference.String()))
		response.Success(w, http.StatusCreated, result)
	}
}

// readPrescription enforces the upload preconditions: one image part named
// "file", no larger than the configured limit, of an allowed type.
func (h *CartHandler) readPrescription(w http.ResponseWriter, r *http.Request) (models.PrescriptionFile, bool) {

	logger := middleware.LoggerFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.upload.MaxBytes+multipartOverhead)

	if err := r.ParseMultipartForm(h.upload.MaxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if stdErrors.As(err, &maxErr) {
			logger.Warn("Prescription upload too large", slog.Int64("limit", h.upload.MaxBytes))
			response.Error(w, errors.PayloadTooLargeError("Prescription file is too large"))
			return models.PrescriptionFile{}, false
		}

		logger.Warn("Invalid multipart form", slog.String("error", err.Error()))
		response.Error(w, errors.BadRequestError("Invalid multipart form").WithError(err))
		return models.PrescriptionFile{}, false
	}

	defer r.MultipartForm.RemoveAll()

	part, header, err := r.FormFile("file")
	if err != nil {
		response.Error(w, errors.BadRequestError("Field file is required").WithError(err))
		return models.PrescriptionFile{}, false
	}

	defer part.Close()

	if header.Size > h.upload.MaxBytes {
		logger.Warn("Prescription upload too large", slog.Int64("size", header.Size), slog.Int64("limit", h.upload.MaxBytes))
		response.Error(w, errors.PayloadTooLargeError("Prescription file is too large"))
		return models.PrescriptionFile{}, false
	}

	// the declared Content-Type of the part is not trusted
	detected, err := mimetype.DetectReader(part)
	if err != nil {
		response.Error(w, errors.BadRequestError("Could not read prescription file").WithError(err))
		return models.PrescriptionFile{}, false
	}

	if !h.allowedType(detected) {
		logger.Warn("Rejected prescription type", slog.String("detected", detected.String()))
		response.Error(w, errors.UnsupportedMediaError("Prescription must be an image").WithDetail(detected.String()))
		return models.PrescriptionFile{}, false
	}

	return models.PrescriptionFile{
		Name:        header.Filename,
		ContentType: detected.String(),
		Size:        header.Size,
	}, true
}

func (h *CartHandler) allowedType(detected *mimetype.MIME) bool {
	for _, allowed := range h.upload.AllowedMIMETypes {
		if detected.Is(allowed) {
			return true
		}
	}

	return false
}

func requireSession(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.Error(w, errors.BadRequestError("Missing cart session"))
		return "", false
	}

	return sessionID, true
}

func requireItemID(w http.ResponseWriter, r *http.Request) (string, bool) {
	itemID := r.PathValue("id")
	if itemID == "" {
		response.Error(w, errors.BadRequestError("Missing path parameter 'id'"))
		return "", false
	}

	return itemID, true
}
