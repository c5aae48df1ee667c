// list-courier-partners runs the checkout courier lookup for a city and prints the shipment groups,
// the shared partners and the selection mode the checkout would start in.
// Usage: go run cmd/list-courier-partners/main.go <city_id> <product_id>:<qty> [<product_id>:<qty> ...]
// Set MARKETPLACE_TOKEN when the marketplace requires a signed-in buyer.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/jafarshop/checkoutapi/internal/checkout"
	"github.com/jafarshop/checkoutapi/internal/config"
	"github.com/jafarshop/checkoutapi/internal/domain"
	"github.com/jafarshop/checkoutapi/internal/marketplace"
)

func main() {
	_ = godotenv.Load(".env")

	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "Usage: list-courier-partners <city_id> <product_id>:<qty> ...")
		os.Exit(1)
	}
	cityID, err := strconv.ParseInt(os.Args[1], 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid city_id %q\n", os.Args[1])
		os.Exit(1)
	}

	req := checkout.CourierRequest{CustomerCityID: cityID}
	for _, arg := range os.Args[2:] {
		item, err := parseItem(arg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		req.Items = append(req.Items, item)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	ctx := context.Background()
	if token := os.Getenv("MARKETPLACE_TOKEN"); token != "" {
		ctx = marketplace.WithBearerToken(ctx, token)
	}

	client := marketplace.NewClient(cfg.Marketplace.BaseURL, cfg.Marketplace.Timeout, logger)
	lookup, err := client.CheckoutCourierPartners(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Courier lookup failed: %v\n", err)
		os.Exit(1)
	}

	r := checkout.NewReconciler(*lookup)
	fmt.Printf("City %d: %d group(s), %d courier option(s), mode %s\n\n",
		cityID, len(lookup.Groups), checkout.CourierCount(lookup.Groups), r.Mode().Name())

	for _, g := range lookup.Groups {
		fmt.Printf("Group %s (warehouse %s, %d item(s))\n", g.GroupKey, g.WarehouseCode, len(g.Items))
		for _, p := range g.Partners {
			fmt.Printf("    %-6s %s %s\n", p.ID, p.Name, rate(p))
		}
	}

	shared := r.Shared()
	fmt.Println()
	if shared.Empty() {
		fmt.Println("No partner is shared between groups.")
		return
	}
	fmt.Println("Shared partners:")
	for _, p := range shared.Partners {
		fmt.Printf("    %-6s %s covers %s\n", p.ID, p.Name, strings.Join(shared.Coverage[p.ID], ", "))
	}
}

func parseItem(arg string) (domain.GroupItem, error) {
	parts := strings.SplitN(arg, ":", 2)
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return domain.GroupItem{}, fmt.Errorf("invalid product id in %q", arg)
	}
	qty := 1
	if len(parts) == 2 {
		if qty, err = strconv.Atoi(parts[1]); err != nil || qty < 1 {
			return domain.GroupItem{}, fmt.Errorf("invalid quantity in %q", arg)
		}
	}
	return domain.GroupItem{ProductID: id, Quantity: qty}, nil
}

func rate(p domain.CourierPartner) string {
	if p.Rate == nil {
		return ""
	}
	return p.Rate.String() + " " + p.Currency
}
