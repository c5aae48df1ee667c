// purge-pending-orders deletes pending orders whose resume window has passed.
// The server does this every few minutes; run it by hand after downtime.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/checkoutapi/internal/config"
	"github.com/jafarshop/checkoutapi/internal/repository/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, logger)
	n, err := repos.PendingOrder.DeleteExpired(context.Background(), time.Now())
	if err != nil {
		log.Fatalf("Failed to purge pending orders: %v", err)
	}
	fmt.Printf("Deleted %d expired pending order(s)\n", n)
}
