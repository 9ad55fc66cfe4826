// Package queue defines message payloads exchanged over the message broker.
package queue

// BookUpdatedQueue is the durable queue carrying BookUpdatedEvent messages.
const BookUpdatedQueue = "book.updated"

// BookUpdatedEvent is published after a book record was changed. It lets
// downstream consumers drop cached reads without querying the database.
type BookUpdatedEvent struct {
	ISBN      string `json:"isbn"`
	Title     string `json:"title"`
	UpdatedBy string `json:"updated_by"`
	UpdatedAt string `json:"updated_at"`
}
