package model

// Sequence backs atomic per-day document numbering (PO-/TO-/SC-/SM-YYYYMMDD-NNNN).
// One row per (prefix, day) key; incremented under a row lock so concurrent
// creations cannot collide.
type Sequence struct {
	Key   string `gorm:"type:varchar(40);primaryKey"`
	Value int    `gorm:"not null;default:0"`
}
