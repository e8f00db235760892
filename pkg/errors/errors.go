package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents transport failures
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeDiscovery represents identifier discovery failures
	ErrorTypeDiscovery ErrorType = "discovery"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScrapeError represents a scraper-specific error. Unit names the smallest
// enclosing unit of work the error belongs to (a page, an expansion, a cardno).
type ScrapeError struct {
	Type    ErrorType
	Unit    string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Unit, e.Message, e.Err)
	}
	if e.Unit == "" {
		return fmt.Sprintf("[%s] %s", e.Type, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Unit, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// New creates a new ScrapeError
func New(errType ErrorType, unit, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Unit:    unit,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(unit, message string, err error) *ScrapeError {
	return New(ErrorTypeNetwork, unit, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(unit, message string, err error) *ScrapeError {
	return New(ErrorTypeParsing, unit, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(unit string, duration time.Duration) *ScrapeError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, unit, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// ErrNoCardsFound is returned when a run discovers no card numbers at all.
// It maps to a distinct exit code so callers can tell an empty discovery
// apart from ordinary failures.
var ErrNoCardsFound = New(ErrorTypeDiscovery, "", "no card numbers found", nil)
