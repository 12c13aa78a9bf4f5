// Package reference formats the sequential document references assigned to
// ledger transactions, e.g. "JNL-0001" for the first manual journal of a
// business.
package reference

import (
	"fmt"

	"github.com/keepon-app/keepon-ledger/internal/core/domain"
)

var prefixes = map[domain.EntryType]string{
	domain.EntryManual:      "JNL",
	domain.EntrySale:        "SAL",
	domain.EntryPurchase:    "PUR",
	domain.EntryPayment:     "PAY",
	domain.EntryCashReceipt: "RCT",
}

// Prefix returns the three-letter document prefix for an entry type.
func Prefix(entryType domain.EntryType) (string, bool) {
	p, ok := prefixes[entryType]
	return p, ok
}

// Format renders a reference from an entry type and a sequence value.
// Sequence values are zero-padded to four digits and grow naturally past
// 9999 ("JNL-10000").
func Format(entryType domain.EntryType, sequence int64) string {
	p, ok := prefixes[entryType]
	if !ok {
		p = "TXN"
	}
	return fmt.Sprintf("%s-%04d", p, sequence)
}
