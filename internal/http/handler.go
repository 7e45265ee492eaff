package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"itad-service/internal/http/middleware"
	"itad-service/internal/model"
	"itad-service/internal/repository"
	"itad-service/internal/service"
)

type Handler struct {
	bookingService      *service.BookingService
	jobService          *service.JobService
	evidenceService     *service.EvidenceService
	clientService       *service.ClientService
	userService         *service.UserService
	notificationService *service.NotificationService
	log                 zerolog.Logger
}

func NewHandler(
	bookingService *service.BookingService,
	jobService *service.JobService,
	evidenceService *service.EvidenceService,
	clientService *service.ClientService,
	userService *service.UserService,
	notificationService *service.NotificationService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		bookingService:      bookingService,
		jobService:          jobService,
		evidenceService:     evidenceService,
		clientService:       clientService,
		userService:         userService,
		notificationService: notificationService,
		log:                 log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	// invite redemption is token-authenticated, not JWT-authenticated
	r.POST("/invites/accept", h.acceptInvite)

	protected := r.Group("/")
	protected.Use(authMiddleware)

	protected.GET("/notifications", h.listNotifications)
	protected.PUT("/notifications/:id/read", h.markNotificationRead)

	admin := protected.Group("/admin")
	{
		admin.GET("/bookings", h.listBookings)
		admin.GET("/bookings/:id", h.getBooking)
		admin.PUT("/bookings/:id/status", h.updateBookingStatus)
		admin.PUT("/bookings/:id/cancel", h.cancelBooking)
		admin.POST("/bookings/:id/assign-driver", h.assignDriver)
		admin.GET("/jobs", h.listJobs)
		admin.GET("/jobs/:id", h.getJob)
		admin.PUT("/jobs/:id/status", h.updateJobStatus)
		admin.PUT("/jobs/:id/cancel", h.cancelJob)
		admin.GET("/jobs/:id/evidence", h.listEvidence)
		admin.POST("/jobs/:id/evidence", h.submitEvidence)
		admin.POST("/clients", h.createClient)
		admin.GET("/clients", h.listClients)
		admin.GET("/clients/:id", h.getClient)
		admin.POST("/invites", h.createInvite)
		admin.GET("/users", h.listUsers)
		admin.DELETE("/users/:id", h.deleteUser)
	}

	client := protected.Group("/client")
	{
		client.POST("/bookings", h.createBooking)
		client.GET("/bookings", h.listBookings)
		client.GET("/bookings/:id", h.getBooking)
		client.PUT("/bookings/:id/cancel", h.cancelBooking)
		client.GET("/jobs", h.listJobs)
		client.GET("/jobs/:id", h.getJob)
	}

	reseller := protected.Group("/reseller")
	{
		reseller.POST("/bookings", h.createBooking)
		reseller.GET("/bookings", h.listBookings)
		reseller.GET("/bookings/:id", h.getBooking)
		reseller.PUT("/bookings/:id/cancel", h.cancelBooking)
		reseller.GET("/jobs", h.listJobs)
		reseller.GET("/jobs/:id", h.getJob)
		reseller.POST("/clients", h.createClient)
		reseller.GET("/clients", h.listClients)
		reseller.GET("/clients/:id", h.getClient)
	}

	driver := protected.Group("/driver")
	{
		driver.GET("/jobs", h.listJobs)
		driver.GET("/jobs/:id", h.getJob)
		driver.PUT("/jobs/:id/status", h.updateJobStatus)
		driver.GET("/jobs/:id/evidence", h.listEvidence)
		driver.POST("/jobs/:id/evidence", h.submitEvidence)
	}
}

// Booking handlers

func (h *Handler) createBooking(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req struct {
		ClientID       string `json:"client_id"`
		ScheduledDate  string `json:"scheduled_date"`
		SiteAddress    string `json:"site_address" binding:"required"`
		ContactName    string `json:"contact_name"`
		ContactPhone   string `json:"contact_phone"`
		CharityPercent int    `json:"charity_percent"`
		Notes          string `json:"notes"`
		Assets         []struct {
			Category string `json:"category" binding:"required"`
			Quantity int    `json:"quantity" binding:"required"`
			Make     string `json:"make"`
			Model    string `json:"model"`
			Notes    string `json:"notes"`
		} `json:"assets" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	input := service.CreateBookingInput{
		SiteAddress:    req.SiteAddress,
		ContactName:    req.ContactName,
		ContactPhone:   req.ContactPhone,
		CharityPercent: req.CharityPercent,
		Notes:          req.Notes,
	}
	if req.ClientID != "" {
		id, err := uuid.Parse(req.ClientID)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid client id"))
			return
		}
		input.ClientID = &id
	}
	if req.ScheduledDate != "" {
		t, err := parseTime(req.ScheduledDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid scheduled date"))
			return
		}
		input.ScheduledDate = &t
	}
	for _, a := range req.Assets {
		input.Assets = append(input.Assets, service.BookingAssetInput{
			Category: a.Category,
			Quantity: a.Quantity,
			Make:     a.Make,
			Model:    a.Model,
			Notes:    a.Notes,
		})
	}

	booking, err := h.bookingService.Create(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(booking))
}

func (h *Handler) getBooking(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	id, ok := parseIDParam(c, "invalid booking id")
	if !ok {
		return
	}

	booking, err := h.bookingService.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(booking))
}

func (h *Handler) listBookings(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	input := service.BookingListInput{Page: parsePage(c)}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, err := model.ParseBookingStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		input.Status = &status
	}

	bookings, total, err := h.bookingService.List(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginatedResponse(bookings, total, input.Page))
}

func (h *Handler) updateBookingStatus(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	id, ok := parseIDParam(c, "invalid booking id")
	if !ok {
		return
	}

	var req struct {
		Status string  `json:"status" binding:"required"`
		Notes  *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	status, err := model.ParseBookingStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	booking, err := h.bookingService.UpdateStatus(c.Request.Context(), principal, id, status, req.Notes)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(booking))
}

func (h *Handler) cancelBooking(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	id, ok := parseIDParam(c, "invalid booking id")
	if !ok {
		return
	}

	var req struct {
		Notes *string `json:"notes"`
	}
	_ = c.ShouldBindJSON(&req)

	booking, err := h.bookingService.Cancel(c.Request.Context(), principal, id, req.Notes)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(booking))
}

// Job handlers

func (h *Handler) assignDriver(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	bookingID, ok := parseIDParam(c, "invalid booking id")
	if !ok {
		return
	}

	var req struct {
		DriverID      string `json:"driver_id" binding:"required"`
		ScheduledDate string `json:"scheduled_date"`
		LoadingBay    string `json:"loading_bay"`
		SecurityNotes string `json:"security_notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	driverID, err := uuid.Parse(req.DriverID)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid driver id"))
		return
	}

	input := service.AssignDriverInput{
		BookingID:     bookingID,
		DriverID:      driverID,
		LoadingBay:    req.LoadingBay,
		SecurityNotes: req.SecurityNotes,
	}
	if req.ScheduledDate != "" {
		t, err := parseTime(req.ScheduledDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid scheduled date"))
			return
		}
		input.ScheduledDate = &t
	}

	job, err := h.jobService.AssignDriver(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(job))
}

func (h *Handler) getJob(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	id, ok := parseIDParam(c, "invalid job id")
	if !ok {
		return
	}

	job, err := h.jobService.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(job))
}

func (h *Handler) listJobs(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	input := service.JobListInput{Page: parsePage(c)}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, err := model.ParseJobStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		input.Status = &status
	}
	if raw := strings.TrimSpace(c.Query("booking_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid booking id"))
			return
		}
		input.BookingID = &id
	}

	jobs, total, err := h.jobService.List(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginatedResponse(jobs, total, input.Page))
}

func (h *Handler) updateJobStatus(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	id, ok := parseIDParam(c, "invalid job id")
	if !ok {
		return
	}

	var req struct {
		Status string  `json:"status" binding:"required"`
		Notes  *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	status, err := model.ParseJobStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	job, err := h.jobService.UpdateStatus(c.Request.Context(), principal, id, status, req.Notes)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(job))
}

func (h *Handler) cancelJob(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	id, ok := parseIDParam(c, "invalid job id")
	if !ok {
		return
	}

	var req struct {
		Notes *string `json:"notes"`
	}
	_ = c.ShouldBindJSON(&req)

	job, err := h.jobService.Cancel(c.Request.Context(), principal, id, req.Notes)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(job))
}

// Evidence handlers

func (h *Handler) submitEvidence(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	jobID, ok := parseIDParam(c, "invalid job id")
	if !ok {
		return
	}

	var req struct {
		Status      string   `json:"status" binding:"required"`
		Photos      []string `json:"photos"`
		Signature   *string  `json:"signature"`
		SealNumbers []string `json:"seal_numbers"`
		Notes       *string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	status, err := model.ParseJobStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	evidence, err := h.evidenceService.Submit(c.Request.Context(), principal, service.SubmitEvidenceInput{
		JobID:       jobID,
		Status:      status,
		Photos:      req.Photos,
		Signature:   req.Signature,
		SealNumbers: req.SealNumbers,
		Notes:       req.Notes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(evidence))
}

func (h *Handler) listEvidence(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	jobID, ok := parseIDParam(c, "invalid job id")
	if !ok {
		return
	}

	evidence, err := h.evidenceService.ListByJob(c.Request.Context(), principal, jobID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(evidence))
}

// Client handlers

func (h *Handler) createClient(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	client, err := h.clientService.Create(c.Request.Context(), principal, service.CreateClientInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(client))
}

func (h *Handler) getClient(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	id, ok := parseIDParam(c, "invalid client id")
	if !ok {
		return
	}

	client, err := h.clientService.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(client))
}

func (h *Handler) listClients(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	clients, err := h.clientService.List(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(clients))
}

// User and invite handlers

func (h *Handler) createInvite(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req struct {
		Email string `json:"email" binding:"required"`
		Role  string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	invite, err := h.userService.CreateInvite(c.Request.Context(), principal, service.CreateInviteInput{
		Email: req.Email,
		Role:  model.Role(req.Role),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(invite))
}

func (h *Handler) acceptInvite(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
		Name  string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	user, err := h.userService.AcceptInvite(c.Request.Context(), service.AcceptInviteInput{
		Token: req.Token,
		Name:  req.Name,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(user))
}

func (h *Handler) listUsers(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	users, err := h.userService.List(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(users))
}

func (h *Handler) deleteUser(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	id, ok := parseIDParam(c, "invalid user id")
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Notification handlers

func (h *Handler) listNotifications(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	notifications, err := h.notificationService.ListMine(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(notifications))
}

func (h *Handler) markNotificationRead(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	id, ok := parseIDParam(c, "invalid notification id")
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"message": "notification read"}))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func parseIDParam(c *gin.Context, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(message))
		return uuid.Nil, false
	}
	return id, true
}

func parsePage(c *gin.Context) repository.Page {
	page := repository.Page{}
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			page.Limit = v
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			page.Offset = v
		}
	}
	return page.Normalize()
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}

func paginatedResponse(data interface{}, total int64, page repository.Page) gin.H {
	return gin.H{
		"data":   data,
		"total":  total,
		"limit":  page.Limit,
		"offset": page.Offset,
	}
}

func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, errors.New("invalid time format")
}
