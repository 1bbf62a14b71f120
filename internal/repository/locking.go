package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate applies SELECT ... FOR UPDATE row locking. SQLite rejects the
// clause and serializes writers at the database level, so it is skipped there.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// batchScope matches a nullable batch column: rows without a batch are a
// distinct ledger key from batch-tracked rows.
func batchScope(tx *gorm.DB, column string, batchID *uuid.UUID) *gorm.DB {
	if batchID == nil {
		return tx.Where(column + " IS NULL")
	}
	return tx.Where(column+" = ?", *batchID)
}
