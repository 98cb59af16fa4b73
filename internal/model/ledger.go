package model

import "time"

const (
	KindMutation    = "mutation"
	KindTransaction = "transaction"
)

// MutationLogEntry is one append-only stock movement. ItemName and SKU are
// copied from the item at write time so history survives rename and delete.
type MutationLogEntry struct {
	ID            int64     `db:"id"`
	ItemName      string    `db:"item_name"`
	SKU           string    `db:"sku"`
	Delta         int64     `db:"delta"`
	TransactionID *string   `db:"transaction_id"` // set when the movement was produced by a sale
	Timestamp     time.Time `db:"timestamp"`
	Kind          string    `db:"kind"`
}

// TransactionLogEntry is one finalized sale. The full sale is frozen inside
// SaleSnapshotJSON; receipt rendering never touches live inventory.
type TransactionLogEntry struct {
	ID               int64     `db:"id"`
	SaleSnapshotJSON string    `db:"sale_snapshot_json"`
	Timestamp        time.Time `db:"timestamp"`
	Kind             string    `db:"kind"`
}

type SaleLine struct {
	Name           string `json:"name"`
	SKU            string `json:"sku"`
	UnitPrice      int64  `json:"unit_price"`
	QuantityOnHand int64  `json:"quantity_on_hand"` // stock level at sale time
	QuantitySold   int64  `json:"quantity_sold"`
}

type SaleSnapshot struct {
	TransactionID string     `json:"transaction_id"`
	Date          time.Time  `json:"date"`
	Items         []SaleLine `json:"items"`
	TotalPrice    int64      `json:"total_price"`
	CashReceived  int64      `json:"cash_received"`
	Change        int64      `json:"change"`
}

// CombinedLogEntry is a read-time union of both ledgers. Exactly one of
// Mutation and Transaction is set, matching Kind.
type CombinedLogEntry struct {
	Kind        string
	Timestamp   time.Time
	Mutation    *MutationLogEntry
	Transaction *TransactionLogEntry
}

// MutationGroup collapses mutation rows sharing the same second into one
// display row with sub-entries.
type MutationGroup struct {
	Timestamp time.Time
	Entries   []MutationLogEntry
}

// HistoryEntry is one row of the grouped history view: either a mutation
// group or a transaction.
type HistoryEntry struct {
	Kind        string
	Timestamp   time.Time
	Group       *MutationGroup
	Transaction *TransactionLogEntry
}
