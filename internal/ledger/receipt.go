package ledger

import (
	"encoding/json"
	"time"

	"bankledger/internal/money"

	"github.com/google/uuid"
)

// Operation names as stored in receipts and idempotency records
const (
	OpDeposit          = "deposit"
	OpWithdraw         = "withdraw"
	OpTransfer         = "transfer"
	OpFundFixedDeposit = "fund_fixed_deposit"
)

// Receipt is the durable proof of an applied operation. It is what a
// replayed idempotency key gets back instead of a second application.
type Receipt struct {
	Operation       string      `json:"operation"`
	Reference       string      `json:"reference"`
	AccountID       uuid.UUID   `json:"account_id"`
	TransactionID   uuid.UUID   `json:"transaction_id"`
	BalanceAfter    money.Money `json:"balance_after"`
	Amount          money.Money `json:"amount"`
	AppliedAt       time.Time   `json:"applied_at"`
	Replayed        bool        `json:"replayed,omitempty"`
	CounterpartyID  *uuid.UUID  `json:"counterparty_id,omitempty"`
	CounterpartyTxn *uuid.UUID  `json:"counterparty_txn,omitempty"`
	TransferID      *uuid.UUID  `json:"transfer_id,omitempty"`
}

// Encode serializes the receipt for idempotency storage
func (r *Receipt) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// DecodeReceipt deserializes a stored receipt
func DecodeReceipt(data []byte) (*Receipt, error) {
	var receipt Receipt
	if err := json.Unmarshal(data, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}
