package checkout

import (
	"fmt"
	"strings"

	"github.com/jafarshop/checkoutapi/pkg/errors"
)

// FormatInventoryShortage renders stock issues as one sentence, e.g.
// Only 2 left of "Oud Royal" (requested 3); "Amber Night" is out of stock (requested 1).
func FormatInventoryShortage(issues []errors.InventoryIssue) string {
	parts := make([]string, 0, len(issues))
	for _, issue := range issues {
		name := issue.ProductName
		if name == "" {
			name = fmt.Sprintf("product #%d", issue.ProductID)
		}
		if issue.Available <= 0 {
			parts = append(parts, fmt.Sprintf("%q is out of stock (requested %d)", name, issue.Requested))
			continue
		}
		parts = append(parts, fmt.Sprintf("Only %d left of %q (requested %d)", issue.Available, name, issue.Requested))
	}
	if len(parts) == 0 {
		return ""
	}
	sentence := strings.Join(parts, "; ") + "."
	return strings.ToUpper(sentence[:1]) + sentence[1:]
}

// UpstreamMessage returns the buyer-facing text for a marketplace error
func UpstreamMessage(err *errors.ErrUpstream, fallback string) string {
	if err.IsInventoryShortage() {
		return FormatInventoryShortage(err.Issues)
	}
	return err.MessageOr(fallback)
}
