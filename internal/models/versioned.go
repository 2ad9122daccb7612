package models

import "github.com/poofware/optimistic-lock-lab/xid"

// Versioned adds optimistic‑lock helpers. Embed it anonymously.
// RowVersion is the row's xmin as of the last read.
type Versioned struct {
	RowVersion xid.TransactionID `json:"row_version"`
}

// ----- interface helpers -----
func (v *Versioned) GetRowVersion() xid.TransactionID { return v.RowVersion }
func (v *Versioned) SetRowVersion(n xid.TransactionID) { v.RowVersion = n }
