// Package lifecycle holds the legal status transitions of a deal.
package lifecycle

import (
	"quickflip/server/internal/analysis"
	"quickflip/server/internal/models"
)

// InitialStatus is the status a freshly created deal starts in.
func InitialStatus(matchCount int) models.DealStatus {
	if matchCount > 0 {
		return models.StatusMatched
	}
	return models.StatusSubmitted
}

// Review applies a reviewer's verdict. Approval advances to reviewed; rejection
// demotes back to submitted. The current status does not change the outcome.
func Review(current models.DealStatus, approve bool) models.DealStatus {
	if approve {
		return models.StatusReviewed
	}
	return models.StatusSubmitted
}

// Close moves any deal to closed. Closing a deal that was never reviewed, or
// one that is already closed, is permitted.
func Close(current models.DealStatus) models.DealStatus {
	return models.StatusClosed
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to models.DealStatus) bool {
	if !from.Valid() {
		return false
	}
	switch to {
	case models.StatusClosed:
		return true
	case models.StatusReviewed, models.StatusSubmitted:
		// Both are reachable through review, which closed deals no longer take.
		return from != models.StatusClosed
	case models.StatusMatched:
		// Only assigned at creation.
		return false
	default:
		return false
	}
}

// JVTerms computes the joint-venture block for a closing deal. It returns nil
// unless the deal opted in with a non-zero split.
func JVTerms(salePrice float64, optIn bool, split *float64) *models.JVTerms {
	if !optIn || split == nil || *split == 0 {
		return nil
	}
	return &models.JVTerms{
		Split:    *split,
		OurShare: analysis.Round2(salePrice * (*split / 100.0)),
	}
}
