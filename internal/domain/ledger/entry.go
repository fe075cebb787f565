package ledger

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/viaticos/backend/internal/domain/shared"
)

// EntryType is the side of a ledger entry
type EntryType string

const (
	EntryTypeDebit  EntryType = "DEBIT"  // worker owes money
	EntryTypeCredit EntryType = "CREDIT" // worker is owed money
)

// Purpose identifies which operation owns an entry
type Purpose string

const (
	// PurposeRenditionBalance is the unused-day debt of one version, sourced by version id
	PurposeRenditionBalance Purpose = "RENDITION_BALANCE"
	// PurposeRetroAdjustment is the back-pay of one batch item, sourced by item id
	PurposeRetroAdjustment Purpose = "RETRO_ADJUSTMENT"
)

// Key is the dedup key of an entry. At most one entry exists per key.
type Key struct {
	WorkerID uuid.UUID
	Purpose  Purpose
	SourceID uuid.UUID
}

// RenditionBalanceKey keys the unused-day debt of a worker on a version
func RenditionBalanceKey(workerID, versionID uuid.UUID) Key {
	return Key{WorkerID: workerID, Purpose: PurposeRenditionBalance, SourceID: versionID}
}

// RetroAdjustmentKey keys the back-pay of a batch item
func RetroAdjustmentKey(workerID, itemID uuid.UUID) Key {
	return Key{WorkerID: workerID, Purpose: PurposeRetroAdjustment, SourceID: itemID}
}

// String renders the key for logs
func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s", k.WorkerID, k.Purpose, k.SourceID)
}

// Entry is one line of a worker's allowance account
type Entry struct {
	shared.BaseEntity
	Key
	Type                    EntryType
	Amount                  decimal.Decimal // always positive
	RelatedRequestVersionID *uuid.UUID
	Reason                  string // display text only, never matched on
}

// NewEntry creates an entry with a strictly positive amount
func NewEntry(key Key, typ EntryType, amount decimal.Decimal, relatedVersionID *uuid.UUID, reason string) (*Entry, error) {
	if typ != EntryTypeDebit && typ != EntryTypeCredit {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Unknown ledger entry type: "+string(typ))
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Ledger amount must be greater than zero")
	}
	return &Entry{
		BaseEntity:              shared.NewBaseEntity(),
		Key:                     key,
		Type:                    typ,
		Amount:                  amount,
		RelatedRequestVersionID: relatedVersionID,
		Reason:                  reason,
	}, nil
}

// NewSignedEntry maps a signed amount to CREDIT when positive and to a
// DEBIT of the absolute value otherwise
func NewSignedEntry(key Key, signed decimal.Decimal, relatedVersionID *uuid.UUID, reason string) (*Entry, error) {
	typ := EntryTypeCredit
	if !signed.IsPositive() {
		typ = EntryTypeDebit
	}
	return NewEntry(key, typ, signed.Abs(), relatedVersionID, reason)
}

// Signed returns the amount with credits positive and debits negative
func (e *Entry) Signed() decimal.Decimal {
	if e.Type == EntryTypeDebit {
		return e.Amount.Neg()
	}
	return e.Amount
}

// Overwrite copies type, amount and reason from next, keeping identity
func (e *Entry) Overwrite(next *Entry) {
	e.Type = next.Type
	e.Amount = next.Amount
	e.RelatedRequestVersionID = next.RelatedRequestVersionID
	e.Reason = next.Reason
	e.Touch()
}

// Balance is Σcredits − Σdebits over entries
func Balance(entries []*Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Signed())
	}
	return total
}
