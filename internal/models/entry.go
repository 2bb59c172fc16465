package models

import "time"

// Entry is a single ledger movement. Income and Costs are independent flags:
// the schema does not force exactly one to be set. Balance computation treats
// an entry with both flags as a net-zero contribution.
type Entry struct {
	ID        int       `json:"id" db:"id"`
	Income    bool      `json:"income" db:"income"`
	Costs     bool      `json:"costs" db:"costs"`
	Amount    int64     `json:"amount" db:"amount"`
	AccountID int       `json:"account_id" db:"account_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Signed returns the entry's contribution to the account balance.
func (e *Entry) Signed() int64 {
	var v int64
	if e.Income {
		v += e.Amount
	}
	if e.Costs {
		v -= e.Amount
	}
	return v
}
