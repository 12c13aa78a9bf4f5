package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/keepon-app/keepon-ledger/internal/core/ports/services"
	"github.com/keepon-app/keepon-ledger/internal/dto"
	"github.com/keepon-app/keepon-ledger/internal/middleware"
)

// ledgerHandler handles HTTP requests for posting and querying transactions.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newLedgerHandler creates a new ledgerHandler.
func newLedgerHandler(ledgerService portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{
		ledgerService: ledgerService,
	}
}

// registerLedgerRoutes registers transaction and posting-history routes nested
// under a business.
func registerLedgerRoutes(group *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	transactions := group.Group("/transactions")
	{
		transactions.POST("", h.postTransaction)
		transactions.GET("", h.listTransactions)
		transactions.GET("/:transactionID", h.getTransaction)
		transactions.POST("/:transactionID/reverse", h.reverseTransaction)
	}

	// Account ledger history lives under the account resource.
	group.GET("/accounts/:accountCode/postings", h.listAccountPostings)
}

// postTransaction godoc
// @Summary Post a transaction
// @Description Validates a batch of entry lines and posts them as an immutable transaction with a generated reference
// @Tags transactions
// @Accept json
// @Produce json
// @Param businessID path string true "Business ID"
// @Param transaction body dto.PostTransactionRequest true "Entry batch"
// @Success 201 {object} dto.Envelope{data=dto.TransactionResponse}
// @Failure 400 {object} dto.Envelope "Validation failed"
// @Failure 403 {object} dto.Envelope "Forbidden"
// @Failure 409 {object} dto.Envelope "Duplicate idempotency key"
// @Security BearerAuth
// @Router /businesses/{businessID}/transactions [post]
func (h *ledgerHandler) postTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.PostTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PostTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.Error("Invalid request format: "+err.Error()))
		return
	}

	txn, err := h.ledgerService.PostTransaction(c.Request.Context(), businessID, req, userID)
	if err != nil {
		respondError(c, err, "Failed to post transaction")
		return
	}

	logger.Info("Transaction posted",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("entry_type", string(txn.EntryType)),
		slog.String("business_id", businessID))
	c.JSON(http.StatusCreated, dto.Success(dto.ToTransactionResponse(txn)))
}

// getTransaction godoc
// @Summary Get a transaction
// @Description Retrieves a transaction and its entry lines by reference
// @Tags transactions
// @Produce json
// @Param businessID path string true "Business ID"
// @Param transactionID path string true "Transaction reference, e.g. JNL-0001"
// @Success 200 {object} dto.Envelope{data=dto.TransactionResponse}
// @Failure 404 {object} dto.Envelope "Transaction not found"
// @Security BearerAuth
// @Router /businesses/{businessID}/transactions/{transactionID} [get]
func (h *ledgerHandler) getTransaction(c *gin.Context) {
	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	transactionID := c.Param("transactionID")

	txn, err := h.ledgerService.GetTransactionByID(c.Request.Context(), businessID, transactionID, userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve transaction")
		return
	}

	c.JSON(http.StatusOK, dto.Success(dto.ToTransactionResponse(txn)))
}

// listTransactions godoc
// @Summary List transactions
// @Description Retrieves a paginated list of transactions, optionally filtered by entry type, date range or search text
// @Tags transactions
// @Produce json
// @Param businessID path string true "Business ID"
// @Param limit query int false "Max results per page" default(20)
// @Param nextToken query string false "Pagination token from a previous page"
// @Param entryType query string false "Filter by entry type"
// @Param fromDate query string false "Filter from date (RFC 3339)"
// @Param toDate query string false "Filter to date (RFC 3339)"
// @Param search query string false "Search in description and reference"
// @Success 200 {object} dto.Envelope{data=dto.ListTransactionsResponse}
// @Failure 400 {object} dto.Envelope "Invalid filter parameters"
// @Security BearerAuth
// @Router /businesses/{businessID}/transactions [get]
func (h *ledgerHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.Error("Invalid query parameters: "+err.Error()))
		return
	}

	resp, err := h.ledgerService.ListTransactions(c.Request.Context(), businessID, userID, params)
	if err != nil {
		respondError(c, err, "Failed to list transactions")
		return
	}

	c.JSON(http.StatusOK, dto.Success(resp))
}

// reverseTransaction godoc
// @Summary Reverse a transaction
// @Description Creates a mirror-image reversal of a posted transaction and marks the original as reversed
// @Tags transactions
// @Produce json
// @Param businessID path string true "Business ID"
// @Param transactionID path string true "Transaction reference to reverse"
// @Success 201 {object} dto.Envelope{data=dto.TransactionResponse}
// @Failure 403 {object} dto.Envelope "Entry type is not reversible"
// @Failure 404 {object} dto.Envelope "Transaction not found"
// @Failure 409 {object} dto.Envelope "Transaction already reversed"
// @Security BearerAuth
// @Router /businesses/{businessID}/transactions/{transactionID}/reverse [post]
func (h *ledgerHandler) reverseTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	transactionID := c.Param("transactionID")

	reversal, err := h.ledgerService.ReverseTransaction(c.Request.Context(), businessID, transactionID, userID)
	if err != nil {
		respondError(c, err, "Failed to reverse transaction")
		return
	}

	logger.Info("Transaction reversed",
		slog.String("original_transaction_id", transactionID),
		slog.String("reversal_transaction_id", reversal.TransactionID),
		slog.String("business_id", businessID))
	c.JSON(http.StatusCreated, dto.Success(dto.ToTransactionResponse(reversal)))
}

// listAccountPostings godoc
// @Summary List account postings
// @Description Retrieves a paginated ledger history for an account, each row carrying the running balance after the posting
// @Tags transactions
// @Produce json
// @Param businessID path string true "Business ID"
// @Param accountCode path string true "Account code"
// @Param limit query int false "Max results per page" default(20)
// @Param nextToken query string false "Pagination token from a previous page"
// @Success 200 {object} dto.Envelope{data=dto.ListPostingsResponse}
// @Failure 404 {object} dto.Envelope "Account not found"
// @Security BearerAuth
// @Router /businesses/{businessID}/accounts/{accountCode}/postings [get]
func (h *ledgerHandler) listAccountPostings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	accountCode := c.Param("accountCode")

	var params dto.ListPostingsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListAccountPostings", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.Error("Invalid query parameters: "+err.Error()))
		return
	}

	resp, err := h.ledgerService.ListAccountPostings(c.Request.Context(), businessID, accountCode, userID, params)
	if err != nil {
		respondError(c, err, "Failed to list account postings")
		return
	}

	c.JSON(http.StatusOK, dto.Success(resp))
}
