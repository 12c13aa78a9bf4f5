package mapping

import (
	"github.com/keepon-app/keepon-ledger/internal/core/domain"
	"github.com/keepon-app/keepon-ledger/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:  d.TransactionID,
		BusinessID:     d.BusinessID,
		EntryType:      string(d.EntryType),
		Description:    d.Description,
		TotalAmount:    d.TotalAmount,
		Status:         models.TransactionStatus(d.Status),
		ReversalOf:     d.ReversalOf,
		ReversedBy:     d.ReversedBy,
		IdempotencyKey: d.IdempotencyKey,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:  m.TransactionID,
		BusinessID:     m.BusinessID,
		EntryType:      domain.EntryType(m.EntryType),
		Description:    m.Description,
		TotalAmount:    m.TotalAmount,
		Status:         domain.TransactionStatus(m.Status),
		ReversalOf:     m.ReversalOf,
		ReversedBy:     m.ReversedBy,
		IdempotencyKey: m.IdempotencyKey,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTransactionSlice converts a slice of model Transactions to domain Transactions
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}

// ToModelEntryLine converts a domain EntryLine to a model EntryLine
func ToModelEntryLine(d domain.EntryLine, businessID string) models.EntryLine {
	return models.EntryLine{
		LineID:            d.LineID,
		TransactionID:     d.TransactionID,
		BusinessID:        businessID,
		LineDate:          d.LineDate,
		DebitAccountCode:  d.DebitAccountCode,
		CreditAccountCode: d.CreditAccountCode,
		Amount:            d.Amount,
		Description:       d.Description,
		Reference:         d.Reference,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainEntryLine converts a model EntryLine to a domain EntryLine
func ToDomainEntryLine(m models.EntryLine) domain.EntryLine {
	return domain.EntryLine{
		LineID:            m.LineID,
		TransactionID:     m.TransactionID,
		LineDate:          m.LineDate,
		DebitAccountCode:  m.DebitAccountCode,
		CreditAccountCode: m.CreditAccountCode,
		Amount:            m.Amount,
		Description:       m.Description,
		Reference:         m.Reference,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainEntryLineSlice converts a slice of model EntryLines to domain EntryLines
func ToDomainEntryLineSlice(ms []models.EntryLine) []domain.EntryLine {
	ds := make([]domain.EntryLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainEntryLine(m)
	}
	return ds
}

// ToDomainPosting converts a model Posting to a domain Posting
func ToDomainPosting(m models.Posting) domain.Posting {
	return domain.Posting{
		PostingID:      m.PostingID,
		TransactionID:  m.TransactionID,
		BusinessID:     m.BusinessID,
		AccountCode:    m.AccountCode,
		Side:           domain.PostingSide(m.Side),
		Amount:         m.Amount,
		SignedAmount:   m.SignedAmount,
		RunningBalance: m.RunningBalance,
		PostedAt:       m.PostedAt,
	}
}
