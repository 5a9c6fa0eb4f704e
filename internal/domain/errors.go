package domain

import "errors"

// Engine errors returned by services and repositories. Callers are expected
// to test these with errors.Is and react explicitly; nothing in the engine
// falls back to a default value on error.
var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPricingUnavailable is returned when no pricing rule is active for a
	// (variant, condition) pair at the evaluation instant.
	ErrPricingUnavailable = errors.New("no active pricing rule for variant and condition")

	// ErrOverlappingRule is returned when a new pricing rule's validity window
	// overlaps an existing rule for the same (variant, condition) pair.
	ErrOverlappingRule = errors.New("pricing rule window overlaps an existing rule")

	// ErrQuoteAlreadyLocked is returned when a line item is added to, or
	// pricing re-run against, a quote that is no longer in draft.
	ErrQuoteAlreadyLocked = errors.New("quote is already locked")

	// ErrQuoteExpired is returned when converting a quote whose lock window
	// has elapsed.
	ErrQuoteExpired = errors.New("quote lock window has expired")

	// ErrInvalidTransition is returned when an order event is applied from a
	// status outside the event's allowed source set.
	ErrInvalidTransition = errors.New("invalid order status transition")

	// ErrDecisionAlreadyMade is returned when a customer decision is recorded
	// a second time for the same order item.
	ErrDecisionAlreadyMade = errors.New("customer decision already recorded")
)
