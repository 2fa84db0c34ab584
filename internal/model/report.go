package model

import "time"

// Report wraps one parsed order with where it came from and what needs a human look
type Report struct {
	ID       string      `json:"id"`               // Report id (uuid)
	Source   string      `json:"source"`           // File path, "stdin" or "http"
	ParsedAt time.Time   `json:"parsed_at"`        // When the parse ran
	Cached   bool        `json:"cached,omitempty"` // Order came from the parse cache
	Layout   string      `json:"layout"`           // template or loose
	Order    ParsedOrder `json:"order"`

	Review Review `json:"review"`
}

// Review is the data-quality verdict for an order
type Review struct {
	NeedsReview bool     `json:"needs_review"`
	Signals     []Signal `json:"signals"`
}

// Signal represents a review signal with transparent data
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies the review signal
type SignalType string

const (
	SignalTotalMismatch   SignalType = "total_mismatch"   // Derived total differs from vendor total
	SignalUnpricedItem    SignalType = "unpriced_item"    // Item left at price 0
	SignalNoItems         SignalType = "no_items"         // Nothing recognized as an item
	SignalMissingContact  SignalType = "missing_contact"  // No customer name or phone
	SignalMissingSchedule SignalType = "missing_schedule" // No date or time
	SignalMissingAddress  SignalType = "missing_address"  // Delivery without address
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)
