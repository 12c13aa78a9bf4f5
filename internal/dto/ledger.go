package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/keepon-app/keepon-ledger/internal/core/domain"
)

// EntryLineRequest defines one debit/credit pair in a posting request.
type EntryLineRequest struct {
	Date          time.Time       `json:"date" binding:"required"`
	DebitAccount  string          `json:"debitAccount" binding:"required"`
	CreditAccount string          `json:"creditAccount" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required,dgt0"`
	Description   string          `json:"description"`
	Reference     string          `json:"reference"`
}

// PostTransactionRequest defines the data needed to post a new transaction.
type PostTransactionRequest struct {
	EntryType   domain.EntryType   `json:"entryType" binding:"required,oneof=MANUAL SALE PURCHASE PAYMENT CASH_RECEIPT"`
	Description string             `json:"description"`
	Lines       []EntryLineRequest `json:"lines" binding:"required,min=1,dive"`
	// IdempotencyKey guards against duplicate submission; a repeat post with
	// the same key is rejected with a conflict.
	IdempotencyKey *string `json:"idempotencyKey"`
}

// EntryLineResponse defines the data returned for an entry line.
type EntryLineResponse struct {
	LineID        string          `json:"lineID"`
	Date          time.Time       `json:"date"`
	DebitAccount  string          `json:"debitAccount"`
	CreditAccount string          `json:"creditAccount"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Reference     string          `json:"reference"`
}

// TransactionResponse defines the data returned for a posted transaction.
type TransactionResponse struct {
	TransactionID string              `json:"transactionID"`
	EntryType     domain.EntryType    `json:"entryType"`
	Description   string              `json:"description"`
	TotalAmount   decimal.Decimal     `json:"totalAmount"`
	Status        string              `json:"status"`
	ReversalOf    *string             `json:"reversalOf,omitempty"`
	ReversedBy    *string             `json:"reversedBy,omitempty"`
	Lines         []EntryLineResponse `json:"lines,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	CreatedBy     string              `json:"createdBy"`
}

// ToEntryLineResponse converts a domain.EntryLine to EntryLineResponse DTO.
func ToEntryLineResponse(l *domain.EntryLine) EntryLineResponse {
	return EntryLineResponse{
		LineID:        l.LineID,
		Date:          l.LineDate,
		DebitAccount:  l.DebitAccountCode,
		CreditAccount: l.CreditAccountCode,
		Amount:        l.Amount,
		Description:   l.Description,
		Reference:     l.Reference,
	}
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	lines := make([]EntryLineResponse, len(txn.Lines))
	for i, l := range txn.Lines {
		lines[i] = ToEntryLineResponse(&l)
	}
	return TransactionResponse{
		TransactionID: txn.TransactionID,
		EntryType:     txn.EntryType,
		Description:   txn.Description,
		TotalAmount:   txn.TotalAmount,
		Status:        string(txn.Status),
		ReversalOf:    txn.ReversalOf,
		ReversedBy:    txn.ReversedBy,
		Lines:         lines,
		CreatedAt:     txn.CreatedAt,
		CreatedBy:     txn.CreatedBy,
	}
}

// ToTransactionResponses converts a slice of domain.Transaction to []TransactionResponse.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i, txn := range txns {
		responses[i] = ToTransactionResponse(&txn)
	}
	return responses
}

// ListTransactionsParams defines query parameters for listing transactions.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
	EntryType *string `form:"entryType"`
	FromDate  *string `form:"fromDate"` // RFC 3339 date
	ToDate    *string `form:"toDate"`   // RFC 3339 date
	Search    string  `form:"search"`
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
	HasMore      bool                  `json:"hasMore"`
}

// PostingResponse defines one row of an account's ledger history.
type PostingResponse struct {
	PostingID      string           `json:"postingID"`
	TransactionID  string           `json:"transactionID"`
	AccountCode    string           `json:"accountCode"`
	Side           string           `json:"side"`
	Amount         decimal.Decimal  `json:"amount"`
	SignedAmount   decimal.Decimal  `json:"signedAmount"`
	RunningBalance decimal.Decimal  `json:"runningBalance"`
	PostedAt       time.Time        `json:"postedAt"`
	Description    string           `json:"description,omitempty"`
	EntryType      domain.EntryType `json:"entryType,omitempty"`
}

// ToPostingResponse converts a domain.Posting to PostingResponse DTO.
func ToPostingResponse(p *domain.Posting) PostingResponse {
	return PostingResponse{
		PostingID:      p.PostingID,
		TransactionID:  p.TransactionID,
		AccountCode:    p.AccountCode,
		Side:           string(p.Side),
		Amount:         p.Amount,
		SignedAmount:   p.SignedAmount,
		RunningBalance: p.RunningBalance,
		PostedAt:       p.PostedAt,
		Description:    p.TransactionDescription,
		EntryType:      p.EntryType,
	}
}

// ListPostingsParams defines query parameters for an account history listing.
type ListPostingsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListPostingsResponse wraps a page of an account's ledger history.
type ListPostingsResponse struct {
	Postings  []PostingResponse `json:"postings"`
	NextToken *string           `json:"nextToken,omitempty"`
	HasMore   bool              `json:"hasMore"`
}
