package publisher

// Publisher represents a service for publishing harvested records
type Publisher interface {
	// Publish publishes one record to the configured stream
	Publish(cardno string, record []byte) error

	// Close closes the publisher connection
	Close() error
}
