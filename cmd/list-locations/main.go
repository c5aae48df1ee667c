// list-locations prints one level of the shipping location cascade from the marketplace.
// Usage: go run cmd/list-locations/main.go countries|regions|cities|districts [parent_id]
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/jafarshop/checkoutapi/internal/config"
	"github.com/jafarshop/checkoutapi/internal/domain"
	"github.com/jafarshop/checkoutapi/internal/marketplace"
)

var levels = map[string]domain.LocationLevel{
	"countries": domain.LocationCountry,
	"regions":   domain.LocationRegion,
	"cities":    domain.LocationCity,
	"districts": domain.LocationDistrict,
}

func main() {
	_ = godotenv.Load(".env")

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: list-locations countries|regions|cities|districts [parent_id]")
		os.Exit(1)
	}
	level, ok := levels[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown level %q\n", os.Args[1])
		os.Exit(1)
	}
	var parentID int64
	if level != domain.LocationCountry {
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "%s needs a parent_id\n", os.Args[1])
			os.Exit(1)
		}
		id, err := strconv.ParseInt(os.Args[2], 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid parent_id %q: %v\n", os.Args[2], err)
			os.Exit(1)
		}
		parentID = id
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	client := marketplace.NewClient(cfg.Marketplace.BaseURL, cfg.Marketplace.Timeout, logger)
	locations, err := client.ListLocations(context.Background(), level, parentID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}

	if len(locations) == 0 {
		fmt.Printf("No %s found.\n", os.Args[1])
		return
	}
	for _, l := range locations {
		fmt.Printf("  %-8d %-30s %-30s %s\n", l.ID, l.Name, l.NameAr, l.CityCode)
	}
	fmt.Printf("\n%d %s\n", len(locations), os.Args[1])
}
