// list-checkout-events prints the audit trail of one checkout session.
// Usage: go run cmd/list-checkout-events/main.go <session_id>
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/checkoutapi/internal/config"
	"github.com/jafarshop/checkoutapi/internal/repository/postgres"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: list-checkout-events <session_id>")
		os.Exit(1)
	}
	sessionID, err := uuid.Parse(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid session id: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, logger)
	events, err := repos.CheckoutEvent.GetBySessionID(context.Background(), sessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list events: %v\n", err)
		os.Exit(1)
	}

	if len(events) == 0 {
		fmt.Println("No events for this session.")
		return
	}
	for _, e := range events {
		data, _ := json.Marshal(e.EventData)
		fmt.Printf("  %s  %-22s %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.EventType, data)
	}
}
