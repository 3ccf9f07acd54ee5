package models

// Buyer is an investor registered to receive matched deals.
type Buyer struct {
	Meta          `bson:",inline"`
	Name          string         `json:"name" bson:"name"`
	Email         string         `json:"email" bson:"email"`
	Phone         *string        `json:"phone" bson:"phone"`
	City          *string        `json:"city" bson:"city"`
	State         *string        `json:"state" bson:"state"`
	TargetStates  []string       `json:"target_states" bson:"target_states" gorm:"serializer:json"`
	MinBudget     *float64       `json:"min_budget" bson:"min_budget"`
	MaxBudget     *float64       `json:"max_budget" bson:"max_budget"`
	PropertyTypes []PropertyType `json:"property_types" bson:"property_types" gorm:"serializer:json"`
}

// ApplyDefaults sets the minimum budget to zero when it was omitted.
// min_budget <= max_budget is deliberately not checked.
func (b *Buyer) ApplyDefaults() {
	if b.MinBudget == nil {
		zero := 0.0
		b.MinBudget = &zero
	}
}

// BuyerMatch is one eligible buyer in a match result.
type BuyerMatch struct {
	BuyerID string  `json:"buyer_id" bson:"buyer_id"`
	Name    string  `json:"name" bson:"name"`
	Email   string  `json:"email" bson:"email"`
	Score   float64 `json:"score" bson:"score"`
}
