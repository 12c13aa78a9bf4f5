package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keepon-app/keepon-ledger/internal/core/domain"
)

func TestFormat(t *testing.T) {
	testCases := []struct {
		entryType domain.EntryType
		sequence  int64
		expected  string
	}{
		{domain.EntryManual, 1, "JNL-0001"},
		{domain.EntryManual, 42, "JNL-0042"},
		{domain.EntrySale, 7, "SAL-0007"},
		{domain.EntryPurchase, 999, "PUR-0999"},
		{domain.EntryPayment, 1000, "PAY-1000"},
		{domain.EntryCashReceipt, 3, "RCT-0003"},
		{domain.EntryManual, 10000, "JNL-10000"}, // grows past four digits
		{domain.EntryType("UNKNOWN"), 5, "TXN-0005"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, Format(tc.entryType, tc.sequence))
	}
}

func TestPrefix(t *testing.T) {
	p, ok := Prefix(domain.EntryPayment)
	assert.True(t, ok)
	assert.Equal(t, "PAY", p)

	_, ok = Prefix(domain.EntryType("NOPE"))
	assert.False(t, ok)
}
