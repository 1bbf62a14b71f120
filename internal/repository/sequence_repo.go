package repository

import (
	"fmt"
	"time"

	"go-medwarehouse/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SequenceRepository interface {
	// NextNumber returns the next document number for the given prefix
	// (e.g. "PO", "SM") on the given day, formatted PREFIX-YYYYMMDD-NNNN.
	// Must be called inside the transaction that creates the document.
	NextNumber(tx *gorm.DB, prefix string, day time.Time) (string, error)
}

type sequenceRepo struct{}

func NewSequenceRepo() SequenceRepository {
	return &sequenceRepo{}
}

func (r *sequenceRepo) NextNumber(tx *gorm.DB, prefix string, day time.Time) (string, error) {
	key := fmt.Sprintf("%s-%s", prefix, day.Format("20060102"))

	// Ensure the row exists, then lock and increment it. The insert is a
	// no-op when another transaction created the row first.
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Sequence{Key: key, Value: 0}).Error; err != nil {
		return "", err
	}

	var seq model.Sequence
	if err := forUpdate(tx).Where("key = ?", key).First(&seq).Error; err != nil {
		return "", err
	}

	seq.Value++
	if err := tx.Model(&model.Sequence{}).Where("key = ?", key).
		Update("value", seq.Value).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%04d", key, seq.Value), nil
}
