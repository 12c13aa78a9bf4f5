package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/keepon-app/keepon-ledger/internal/core/ports/services"
	"github.com/keepon-app/keepon-ledger/internal/dto"
	"github.com/keepon-app/keepon-ledger/internal/middleware"
)

// accountHandler handles HTTP requests related to the chart of accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(accountService portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: accountService,
	}
}

// registerAccountRoutes registers account routes nested under a business.
func registerAccountRoutes(group *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := group.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:accountCode", h.getAccount)
		accounts.PUT("/:accountCode", h.updateAccount)
		accounts.DELETE("/:accountCode", h.deactivateAccount)
	}
}

// createAccount godoc
// @Summary Create a new account
// @Description Creates a new account in the business's chart of accounts
// @Tags accounts
// @Accept json
// @Produce json
// @Param businessID path string true "Business ID"
// @Param account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.Envelope{data=dto.AccountResponse}
// @Failure 400 {object} dto.Envelope "Invalid input"
// @Failure 403 {object} dto.Envelope "Forbidden"
// @Failure 409 {object} dto.Envelope "Account code already exists"
// @Security BearerAuth
// @Router /businesses/{businessID}/accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.Error("Invalid request format: "+err.Error()))
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), businessID, req, userID)
	if err != nil {
		respondError(c, err, "Failed to create account")
		return
	}

	logger.Info("Account created", slog.String("account_code", account.Code), slog.String("business_id", businessID))
	c.JSON(http.StatusCreated, dto.Success(dto.ToAccountResponse(account)))
}

// getAccount godoc
// @Summary Get an account
// @Description Retrieves an account by its business-scoped code
// @Tags accounts
// @Produce json
// @Param businessID path string true "Business ID"
// @Param accountCode path string true "Account code"
// @Success 200 {object} dto.Envelope{data=dto.AccountResponse}
// @Failure 404 {object} dto.Envelope "Account not found"
// @Security BearerAuth
// @Router /businesses/{businessID}/accounts/{accountCode} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	code := c.Param("accountCode")

	account, err := h.accountService.GetAccountByCode(c.Request.Context(), businessID, code, userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve account")
		return
	}

	c.JSON(http.StatusOK, dto.Success(dto.ToAccountResponse(account)))
}

// listAccounts godoc
// @Summary List accounts
// @Description Retrieves the chart of accounts, optionally only postable accounts
// @Tags accounts
// @Produce json
// @Param businessID path string true "Business ID"
// @Param limit query int false "Max results" default(100)
// @Param offset query int false "Offset" default(0)
// @Param postableOnly query bool false "Only postable, active accounts"
// @Success 200 {object} dto.Envelope{data=dto.ListAccountsResponse}
// @Failure 404 {object} dto.Envelope "Business has no accounts"
// @Security BearerAuth
// @Router /businesses/{businessID}/accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListAccounts", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.Error("Invalid query parameters: "+err.Error()))
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), businessID, userID, params)
	if err != nil {
		respondError(c, err, "Failed to list accounts")
		return
	}

	c.JSON(http.StatusOK, dto.Success(dto.ListAccountsResponse{Accounts: dto.ToListAccountResponse(accounts)}))
}

// updateAccount godoc
// @Summary Update an account
// @Description Updates an account's name, description or active flag
// @Tags accounts
// @Accept json
// @Produce json
// @Param businessID path string true "Business ID"
// @Param accountCode path string true "Account code"
// @Param account body dto.UpdateAccountRequest true "Fields to update"
// @Success 200 {object} dto.Envelope{data=dto.AccountResponse}
// @Failure 404 {object} dto.Envelope "Account not found"
// @Security BearerAuth
// @Router /businesses/{businessID}/accounts/{accountCode} [put]
func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	code := c.Param("accountCode")

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.Error("Invalid request format: "+err.Error()))
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), businessID, code, req, userID)
	if err != nil {
		respondError(c, err, "Failed to update account")
		return
	}

	logger.Info("Account updated", slog.String("account_code", code), slog.String("business_id", businessID))
	c.JSON(http.StatusOK, dto.Success(dto.ToAccountResponse(account)))
}

// deactivateAccount godoc
// @Summary Deactivate an account
// @Description Marks an account inactive so it rejects further postings
// @Tags accounts
// @Produce json
// @Param businessID path string true "Business ID"
// @Param accountCode path string true "Account code"
// @Success 200 {object} dto.Envelope
// @Failure 404 {object} dto.Envelope "Account not found"
// @Failure 409 {object} dto.Envelope "Account has a non-zero balance or is already inactive"
// @Security BearerAuth
// @Router /businesses/{businessID}/accounts/{accountCode} [delete]
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	code := c.Param("accountCode")

	if err := h.accountService.DeactivateAccount(c.Request.Context(), businessID, code, userID); err != nil {
		respondError(c, err, "Failed to deactivate account")
		return
	}

	logger.Info("Account deactivated", slog.String("account_code", code), slog.String("business_id", businessID))
	c.JSON(http.StatusOK, dto.SuccessWithMessage("Account deactivated", nil))
}
