package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/wedora/wedding-marketplace/booking-service/internal/dto"
	"github.com/wedora/wedding-marketplace/booking-service/internal/middleware"
	"github.com/wedora/wedding-marketplace/booking-service/internal/models"
	"github.com/wedora/wedding-marketplace/booking-service/internal/policy"
	"github.com/wedora/wedding-marketplace/booking-service/internal/repository"
	"github.com/wedora/wedding-marketplace/booking-service/internal/service"
)

type BookingHandler struct {
	guard      *policy.Guard
	bookingSvc service.BookingService
	quoteSvc   service.QuoteService
	completion service.CompletionService
}

func NewBookingHandler(guard *policy.Guard, bookingSvc service.BookingService, quoteSvc service.QuoteService, completion service.CompletionService) *BookingHandler {
	return &BookingHandler{
		guard:      guard,
		bookingSvc: bookingSvc,
		quoteSvc:   quoteSvc,
		completion: completion,
	}
}

func (h *BookingHandler) RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	api := e.Group("/api/bookings", auth)
	api.GET("/vendor/:vendorId", h.ListVendorBookings)
	api.GET("/stats", h.GetVendorStats)
	api.PUT("/:id/update-status", h.UpdateStatus)
	api.POST("/:id/mark-completed", h.MarkCompleted)
	api.POST("/:id/quote", h.SendQuote)
	api.GET("/:id/quote", h.GetQuote)
}

func (h *BookingHandler) ListVendorBookings(c echo.Context) error {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	vendorID := c.Param("vendorId")
	canonical, err := h.guard.AuthorizeVendor(c.Request().Context(), p, vendorID)
	if err != nil {
		return err
	}

	filter := listFilterFromQuery(c)
	bookings, err := h.bookingSvc.ListVendorBookings(c.Request().Context(), canonical, filter)
	if err != nil {
		var accessErr *policy.AccessError
		if errors.As(err, &accessErr) {
			return err
		}
		// Storage failure: explicit error, never fabricated data.
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load bookings")
	}

	resp := dto.VendorBookingsResponse{
		Success:           true,
		Bookings:          make([]dto.BookingResponse, len(bookings)),
		Count:             len(bookings),
		VendorID:          canonical,
		SecurityValidated: true,
		Timestamp:         time.Now().UTC(),
	}
	for i := range bookings {
		sync := h.completion.SyncStatus(c.Request().Context(), bookings[i].ID)
		resp.Bookings[i] = dto.ToBookingResponse(&bookings[i], sync)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) GetVendorStats(c echo.Context) error {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	vendorID := c.QueryParam("vendorId")
	if vendorID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "vendorId query parameter is required")
	}

	canonical, err := h.guard.AuthorizeVendor(c.Request().Context(), p, vendorID)
	if err != nil {
		return err
	}

	stats, err := h.bookingSvc.GetVendorStats(c.Request().Context(), canonical)
	if err != nil {
		var accessErr *policy.AccessError
		if errors.As(err, &accessErr) {
			return err
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load stats")
	}

	return c.JSON(http.StatusOK, dto.VendorStatsResponse{
		Success:   true,
		Stats:     stats,
		Timestamp: time.Now().UTC(),
	})
}

func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	booking, err := h.authorizeBookingOwner(c)
	if err != nil {
		return err
	}

	var req dto.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	updated, err := h.bookingSvc.UpdateStatus(c.Request().Context(), booking.ID, models.BookingStatus(req.Status), req.VendorNotes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrBookingNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrBookingImmutable):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to update booking")
		}
	}

	sync := h.completion.SyncStatus(c.Request().Context(), updated.ID)
	return c.JSON(http.StatusOK, dto.ToBookingResponse(updated, sync))
}

func (h *BookingHandler) MarkCompleted(c echo.Context) error {
	var req dto.MarkCompletedRequest

	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	booking, err := h.bookingSvc.GetBooking(c.Request().Context(), uint(bookingID))
	if err != nil {
		if errors.Is(err, service.ErrBookingNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "booking not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load booking")
	}

	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	// Each party may only confirm its own side of the handshake.
	switch req.CompletedBy {
	case service.PartyVendor:
		if _, err := h.guard.AuthorizeVendor(c.Request().Context(), p, booking.VendorID); err != nil {
			return err
		}
	case service.PartyCouple:
		if p.Role != "couple" || (p.PrimaryID != booking.CoupleID && p.SecondaryID != booking.CoupleID) {
			return &policy.AccessError{
				Reason:  policy.ReasonCrossVendor,
				Message: "booking does not belong to authenticated couple",
			}
		}
	}

	result, err := h.completion.ConfirmCompletion(c.Request().Context(), uint(bookingID), req.CompletedBy)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotEligibleForCompletion):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrUnknownParty):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrBookingNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to confirm completion")
		}
	}

	sync := models.SyncSynced
	if result.SyncPending {
		sync = models.SyncPending
	}

	resp := dto.CompletionResponse{
		Success:          true,
		Completed:        result.Completed,
		AlreadyConfirmed: result.AlreadyConfirmed,
		SyncPending:      result.SyncPending,
		Booking:          dto.ToBookingResponse(result.Booking, sync),
	}
	if result.WaitingFor != "" {
		resp.WaitingFor = &result.WaitingFor
	}

	// 202 tells the client the confirmation is recorded but not yet synced.
	status := http.StatusOK
	if result.SyncPending {
		status = http.StatusAccepted
	}
	return c.JSON(status, resp)
}

func (h *BookingHandler) SendQuote(c echo.Context) error {
	booking, err := h.authorizeBookingOwner(c)
	if err != nil {
		return err
	}

	var req dto.SendQuoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	historical, err := h.quoteSvc.HistoricalPrices(c.Request().Context(), booking.VendorID, booking.ServiceType)
	if err != nil {
		historical = nil // best effort, template defaults still apply
	}

	builder := service.NewQuoteBuilder(booking.ID, booking.VendorID, booking.ServiceType, historical)
	if !req.UseTemplate {
		builder.ClearItems()
	}
	for _, item := range req.Items {
		if err := builder.AddItem(item.Name, item.Description, item.Category, item.Quantity, item.UnitPrice); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	if err := builder.SetDownpaymentPct(req.DownpaymentPct); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	quote, err := builder.Build(req.Message, req.Terms, req.ExpiresAt)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sent, err := h.quoteSvc.SendQuote(c.Request().Context(), booking.ID, quote)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookingNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrBookingImmutable):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrQuoteExpiresAfterEvent):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to send quote")
		}
	}

	return c.JSON(http.StatusCreated, dto.ToQuoteResponse(sent))
}

func (h *BookingHandler) GetQuote(c echo.Context) error {
	booking, err := h.authorizeBookingOwner(c)
	if err != nil {
		return err
	}

	quote, err := h.quoteSvc.GetQuote(c.Request().Context(), booking.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "no quote for this booking")
	}

	return c.JSON(http.StatusOK, dto.ToQuoteResponse(quote))
}

// authorizeBookingOwner loads the addressed booking and checks that the
// authenticated principal owns it (against the stored vendor_id, not request
// input). Returned errors are either *echo.HTTPError or *policy.AccessError;
// the central error handler renders both.
func (h *BookingHandler) authorizeBookingOwner(c echo.Context) (*models.Booking, error) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	booking, err := h.bookingSvc.GetBooking(c.Request().Context(), uint(bookingID))
	if err != nil {
		if errors.Is(err, service.ErrBookingNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "booking not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "failed to load booking")
	}

	if _, err := h.guard.AuthorizeVendor(c.Request().Context(), p, booking.VendorID); err != nil {
		return nil, err
	}

	return booking, nil
}

func listFilterFromQuery(c echo.Context) repository.ListFilter {
	filter := repository.ListFilter{
		Search:    c.QueryParam("search"),
		DateRange: c.QueryParam("date_range"),
		SortBy:    c.QueryParam("sort_by"),
		SortDesc:  c.QueryParam("sort_dir") != "asc",
	}
	if s := c.QueryParam("status"); s != "" {
		status := models.BookingStatus(s)
		filter.Status = &status
	}
	return filter
}
