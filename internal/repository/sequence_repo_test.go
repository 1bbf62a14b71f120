package repository

import (
	"fmt"
	"testing"
	"time"

	"go-medwarehouse/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSequenceDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&model.Sequence{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestNextNumberIncrementsPerDay(t *testing.T) {
	db := setupSequenceDB(t)
	repo := NewSequenceRepo()
	day := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	var first, second string
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if first, err = repo.NextNumber(tx, "PO", day); err != nil {
			return err
		}
		second, err = repo.NextNumber(tx, "PO", day)
		return err
	})
	if err != nil {
		t.Fatalf("next number: %v", err)
	}
	if first != "PO-20260315-0001" {
		t.Fatalf("expected PO-20260315-0001, got %s", first)
	}
	if second != "PO-20260315-0002" {
		t.Fatalf("expected PO-20260315-0002, got %s", second)
	}
}

func TestNextNumberSeparatesPrefixesAndDays(t *testing.T) {
	db := setupSequenceDB(t)
	repo := NewSequenceRepo()
	day := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	next := day.AddDate(0, 0, 1)

	var po, to, tomorrow string
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if po, err = repo.NextNumber(tx, "PO", day); err != nil {
			return err
		}
		if to, err = repo.NextNumber(tx, "TO", day); err != nil {
			return err
		}
		tomorrow, err = repo.NextNumber(tx, "PO", next)
		return err
	})
	if err != nil {
		t.Fatalf("next number: %v", err)
	}
	if po != "PO-20260315-0001" || to != "TO-20260315-0001" || tomorrow != "PO-20260316-0001" {
		t.Fatalf("unexpected numbers: %s %s %s", po, to, tomorrow)
	}
}
