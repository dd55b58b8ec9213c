package events

import (
	"context"
	"log/slog"
	"strconv"
	"time"
)

// Notify publishes ev keyed by seller so a seller's events stay ordered.
// Failures are logged; the write that triggered the event has already
// committed.
func Notify(ctx context.Context, p Publisher, ev Event) {
	if p == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := p.Publish(ctx, strconv.FormatUint(uint64(ev.SellerID), 10), ev); err != nil {
		slog.Error("Failed to publish event", "type", ev.Type, "seller_id", ev.SellerID, "product_id", ev.ProductID, "err", err)
	}
}
