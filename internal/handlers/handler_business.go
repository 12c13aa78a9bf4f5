package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/keepon-app/keepon-ledger/internal/core/domain"
	portssvc "github.com/keepon-app/keepon-ledger/internal/core/ports/services"
	"github.com/keepon-app/keepon-ledger/internal/dto"
	"github.com/keepon-app/keepon-ledger/internal/middleware"
)

// businessHandler handles HTTP requests related to businesses and membership.
type businessHandler struct {
	businessService portssvc.BusinessSvcFacade
}

// newBusinessHandler creates a new businessHandler.
func newBusinessHandler(businessService portssvc.BusinessSvcFacade) *businessHandler {
	return &businessHandler{
		businessService: businessService,
	}
}

// registerBusinessRoutes registers business management routes and nests the
// account, ledger, reporting and API key routes under a specific business.
func registerBusinessRoutes(
	rg *gin.RouterGroup,
	services *portssvc.ServiceContainer,
) {
	h := newBusinessHandler(services.Business)

	businessesTopLevel := rg.Group("/businesses")
	{
		businessesTopLevel.POST("", h.createBusiness)
		businessesTopLevel.GET("", h.listUserBusinesses)
	}

	businessSpecific := rg.Group("/businesses/:businessID")
	{
		businessSpecific.GET("", h.getBusiness)
		businessSpecific.PUT("", h.updateBusiness)

		businessUsers := businessSpecific.Group("/users")
		{
			businessUsers.POST("", h.addUserToBusiness)
			businessUsers.PUT("/:userID/role", h.updateUserRole)
		}

		registerAccountRoutes(businessSpecific, services.Account)
		registerLedgerRoutes(businessSpecific, services.Ledger)
		registerReportingRoutes(businessSpecific, services.Reporting)
		registerAPIKeyRoutes(businessSpecific, services.APIKey)
	}
}

// createBusiness godoc
// @Summary Create a new business
// @Description Creates a new business and assigns the creator as admin
// @Tags businesses
// @Accept json
// @Produce json
// @Param business body dto.CreateBusinessRequest true "Business details"
// @Success 201 {object} dto.Envelope{data=dto.BusinessResponse}
// @Failure 400 {object} dto.Envelope "Invalid input"
// @Security BearerAuth
// @Router /businesses [post]
func (h *businessHandler) createBusiness(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateBusiness", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.Error("Invalid request format: "+err.Error()))
		return
	}

	creatorUserID, ok := requireUserID(c)
	if !ok {
		return
	}

	business, err := h.businessService.CreateBusiness(c.Request.Context(), req.Name, req.Description, creatorUserID)
	if err != nil {
		respondError(c, err, "Failed to create business")
		return
	}

	logger.Info("Business created", slog.String("business_id", business.BusinessID))
	c.JSON(http.StatusCreated, dto.Success(dto.ToBusinessResponse(business)))
}

// listUserBusinesses godoc
// @Summary List businesses for current user
// @Description Retrieves the businesses the authenticated user belongs to
// @Tags businesses
// @Produce json
// @Success 200 {object} dto.Envelope{data=[]dto.BusinessResponse}
// @Security BearerAuth
// @Router /businesses [get]
func (h *businessHandler) listUserBusinesses(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	businesses, err := h.businessService.ListUserBusinesses(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to list businesses")
		return
	}

	c.JSON(http.StatusOK, dto.Success(dto.ToBusinessResponses(businesses)))
}

// getBusiness godoc
// @Summary Get a business
// @Description Retrieves a business's details
// @Tags businesses
// @Produce json
// @Param businessID path string true "Business ID"
// @Success 200 {object} dto.Envelope{data=dto.BusinessResponse}
// @Failure 404 {object} dto.Envelope "Business not found"
// @Security BearerAuth
// @Router /businesses/{businessID} [get]
func (h *businessHandler) getBusiness(c *gin.Context) {
	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	// Membership gates visibility into the business.
	if err := h.businessService.AuthorizeUserAction(c.Request.Context(), userID, businessID, domain.RoleReadOnly); err != nil {
		respondError(c, err, "Failed to retrieve business")
		return
	}

	business, err := h.businessService.FindBusinessByID(c.Request.Context(), businessID)
	if err != nil {
		respondError(c, err, "Failed to retrieve business")
		return
	}

	c.JSON(http.StatusOK, dto.Success(dto.ToBusinessResponse(business)))
}

// updateBusiness godoc
// @Summary Update a business
// @Description Updates a business's name or description; admin only
// @Tags businesses
// @Accept json
// @Produce json
// @Param businessID path string true "Business ID"
// @Param business body dto.UpdateBusinessRequest true "Fields to update"
// @Success 200 {object} dto.Envelope{data=dto.BusinessResponse}
// @Failure 403 {object} dto.Envelope "Forbidden"
// @Failure 404 {object} dto.Envelope "Business not found"
// @Security BearerAuth
// @Router /businesses/{businessID} [put]
func (h *businessHandler) updateBusiness(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateBusiness", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.Error("Invalid request format: "+err.Error()))
		return
	}

	name := ""
	if req.Name != nil {
		name = *req.Name
	}
	description := ""
	if req.Description != nil {
		description = *req.Description
	}

	business, err := h.businessService.UpdateBusiness(c.Request.Context(), businessID, name, description, userID)
	if err != nil {
		respondError(c, err, "Failed to update business")
		return
	}

	logger.Info("Business updated", slog.String("business_id", businessID))
	c.JSON(http.StatusOK, dto.Success(dto.ToBusinessResponse(business)))
}

// addUserToBusiness godoc
// @Summary Add a user to a business
// @Description Adds a user as a member of the business with the given role; admin only
// @Tags businesses
// @Accept json
// @Produce json
// @Param businessID path string true "Business ID"
// @Param membership body dto.AddUserToBusinessRequest true "User and role"
// @Success 200 {object} dto.Envelope
// @Failure 403 {object} dto.Envelope "Forbidden"
// @Security BearerAuth
// @Router /businesses/{businessID}/users [post]
func (h *businessHandler) addUserToBusiness(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}
	addingUserID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.AddUserToBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AddUserToBusiness", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.Error("Invalid request format: "+err.Error()))
		return
	}

	if err := h.businessService.AddUserToBusiness(c.Request.Context(), addingUserID, req.UserID, businessID, req.Role); err != nil {
		respondError(c, err, "Failed to add user to business")
		return
	}

	logger.Info("User added to business",
		slog.String("target_user_id", req.UserID),
		slog.String("role", string(req.Role)),
		slog.String("business_id", businessID))
	c.JSON(http.StatusOK, dto.SuccessWithMessage("User added to business", nil))
}

// updateUserRole godoc
// @Summary Update a member's role
// @Description Changes a member's role in the business; admin only
// @Tags businesses
// @Accept json
// @Produce json
// @Param businessID path string true "Business ID"
// @Param userID path string true "Target user ID"
// @Param role body dto.UpdateUserRoleRequest true "New role"
// @Success 200 {object} dto.Envelope
// @Failure 403 {object} dto.Envelope "Forbidden"
// @Security BearerAuth
// @Router /businesses/{businessID}/users/{userID}/role [put]
func (h *businessHandler) updateUserRole(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}
	requestingUserID, ok := requireUserID(c)
	if !ok {
		return
	}
	targetUserID := c.Param("userID")

	var req dto.UpdateUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateUserRole", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.Error("Invalid request format: "+err.Error()))
		return
	}

	if err := h.businessService.UpdateUserBusinessRole(c.Request.Context(), requestingUserID, targetUserID, businessID, req.Role); err != nil {
		respondError(c, err, "Failed to update user role")
		return
	}

	logger.Info("User role updated",
		slog.String("target_user_id", targetUserID),
		slog.String("role", string(req.Role)),
		slog.String("business_id", businessID))
	c.JSON(http.StatusOK, dto.SuccessWithMessage("User role updated", nil))
}
