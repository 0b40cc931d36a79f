package pubsub

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/ritzau/media-graph/pkg/model"
)

// Topics published by the graph session
const (
	TopicGraphStatus = "graph_status"
	TopicGraph       = "graph"
)

// Graph build states reported on TopicGraphStatus
const (
	StateQueued   = "queued"
	StateFetching = "fetching"
	StateBuilding = "building"
	StateLayout   = "layout"
	StateReady    = "ready"
	StateFailed   = "failed"
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic (e.g., "graph_status", "graph")
	Type    string          `json:"type"`    // Event type (e.g., "building", "ready")
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Per-topic sequence number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Done is closed when the subscription or its publisher is closed
	Done() <-chan struct{}

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data interface{}) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// GraphStatus reports the progress of one graph version
type GraphStatus struct {
	State    string              `json:"state"`
	Version  int64               `json:"version"`
	Hash     string              `json:"hash,omitempty"`
	Message  string              `json:"message,omitempty"`
	Nodes    int                 `json:"nodes,omitempty"`
	Edges    int                 `json:"edges,omitempty"`
	Failures []model.SeedFailure `json:"failures,omitempty"`
	Diff     *model.GraphDiff    `json:"diff,omitempty"`
}
