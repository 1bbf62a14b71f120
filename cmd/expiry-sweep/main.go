package main

import (
	"log"

	"go-medwarehouse/internal/model"
	"go-medwarehouse/internal/repository"
	"go-medwarehouse/internal/service"
	"go-medwarehouse/pkg/database"

	"github.com/joho/godotenv"
)

// Periodic maintenance sweep, intended to run from cron. Every action is
// idempotent, so overlapping or repeated runs are harmless.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	db := database.ConnectDB()

	productRepo := repository.NewProductRepo(db)
	batchRepo := repository.NewBatchRepo(db)
	stockRepo := repository.NewStockRepo(db)
	movementRepo := repository.NewStockMovementRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)

	batchService := service.NewBatchService(batchRepo, stockRepo, productRepo, notificationRepo, db)
	stockService := service.NewStockService(stockRepo, movementRepo, batchRepo, productRepo, notificationRepo, db)

	expired, err := batchService.MarkExpired("system")
	if err != nil {
		log.Fatalf("mark expired: %v", err)
	}
	log.Printf("Marked %d batches as expired", expired)

	expiring, err := batchService.NotifyExpiring(model.ExpiryWarningDays)
	if err != nil {
		log.Fatalf("notify expiring: %v", err)
	}
	log.Printf("Raised %d expiry warnings", expiring)

	low, err := stockService.NotifyLowStock()
	if err != nil {
		log.Fatalf("notify low stock: %v", err)
	}
	log.Printf("Raised %d low stock alerts", low)
}
