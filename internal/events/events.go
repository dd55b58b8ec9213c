// Package events publishes catalog changes for downstream consumers.
package events

import (
	"context"
	"time"
)

const (
	SellerRegistered = "seller.registered"
	ProductCreated   = "product.created"
	ProductUpdated   = "product.updated"
	ProductDeleted   = "product.deleted"
)

// Event is the JSON envelope written to the topic.
type Event struct {
	Type       string    `json:"type"`
	SellerID   uint      `json:"seller_id"`
	ProductID  uint      `json:"product_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher sends events to a broker.
type Publisher interface {
	Publish(ctx context.Context, key string, ev Event) error
	Close() error
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, Event) error { return nil }
func (Nop) Close() error                                 { return nil }
