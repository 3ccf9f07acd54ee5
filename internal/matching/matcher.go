// Package matching filters and scores the buyer pool against a submitted property.
package matching

import (
	"sort"

	"quickflip/server/internal/models"
)

const (
	baseScore     = 1.0
	locationBonus = 0.5
	typeBonus     = 0.5
)

// Match returns the buyers eligible for p, best score first. Buyers with equal
// scores keep their pool order.
func Match(p models.Property, buyers []models.Buyer) []models.BuyerMatch {
	matches := make([]models.BuyerMatch, 0)
	for i := range buyers {
		b := &buyers[i]

		if !BudgetFits(b, p.AskingPrice) {
			continue
		}

		locOK := LocationMatches(b, p.State)
		if len(b.TargetStates) > 0 && !locOK {
			continue
		}

		typeOK := TypeFits(b, p.PropertyType)
		if !typeOK {
			continue
		}

		score := baseScore
		if locOK {
			score += locationBonus
		}
		// Unconstrained buyers also collect the type bonus.
		if typeOK {
			score += typeBonus
		}

		matches = append(matches, models.BuyerMatch{
			BuyerID: b.ID,
			Name:    b.Name,
			Email:   b.Email,
			Score:   score,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// BudgetFits checks the asking price against the buyer's budget bounds. A nil
// bound imposes no limit.
func BudgetFits(b *models.Buyer, asking float64) bool {
	if b.MinBudget != nil && asking < *b.MinBudget {
		return false
	}
	if b.MaxBudget != nil && asking > *b.MaxBudget {
		return false
	}
	return true
}

// LocationMatches reports whether state is the buyer's home state or one of
// its target states. An empty state never matches.
func LocationMatches(b *models.Buyer, state string) bool {
	if state == "" {
		return false
	}
	if b.State != nil && *b.State == state {
		return true
	}
	for _, s := range b.TargetStates {
		if s == state {
			return true
		}
	}
	return false
}

// TypeFits reports whether the buyer accepts the property type. Buyers with
// no type list accept everything.
func TypeFits(b *models.Buyer, t models.PropertyType) bool {
	if len(b.PropertyTypes) == 0 {
		return true
	}
	for _, accepted := range b.PropertyTypes {
		if accepted == t {
			return true
		}
	}
	return false
}
