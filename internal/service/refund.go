package service

import (
	"errors"
	"time"

	"github.com/sensoryplay/portal-backend/internal/model"
)

// Refund windows measured back from the class start.
const (
	FullRefundWindow    = 48 * time.Hour
	PartialRefundWindow = 24 * time.Hour
	PartialRefundPct    = 50
)

// ErrClassStarted is returned when a cancellation is attempted at or after class start.
var ErrClassStarted = errors.New("class has already started")

// ClassifyRefund picks the refund tier for cancelling a seat in a class
// starting at start, evaluated at now.
func ClassifyRefund(start, now time.Time) (model.RefundTier, error) {
	until := start.Sub(now)
	switch {
	case until <= 0:
		return "", ErrClassStarted
	case until >= FullRefundWindow:
		return model.RefundFull, nil
	case until >= PartialRefundWindow:
		return model.RefundPartial, nil
	default:
		return model.RefundNone, nil
	}
}

// RefundAmount returns the amount in cents owed for the tier.
func RefundAmount(tier model.RefundTier, priceCents int) int {
	switch tier {
	case model.RefundFull:
		return priceCents
	case model.RefundPartial:
		return priceCents * PartialRefundPct / 100
	default:
		return 0
	}
}
