package models

import "time"

// PropertyType is the kind of structure a listing describes.
type PropertyType string

const (
	SingleFamily PropertyType = "single_family"
	MultiFamily  PropertyType = "multi_family"
	Condo        PropertyType = "condo"
	Townhome     PropertyType = "townhome"
	Land         PropertyType = "land"
)

// Valid reports whether t is one of the known property types.
func (t PropertyType) Valid() bool {
	switch t {
	case SingleFamily, MultiFamily, Condo, Townhome, Land:
		return true
	default:
		return false
	}
}

// Meta is the identity and bookkeeping block every stored record carries.
// The gateway fills it in; callers never set it themselves.
type Meta struct {
	ID        string    `json:"id" bson:"_id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Stamp assigns a fresh identity to a record about to be inserted.
func (m *Meta) Stamp(id string, now time.Time) {
	m.ID = id
	m.CreatedAt = now
	m.UpdatedAt = now
}

// Touch bumps the update timestamp.
func (m *Meta) Touch(now time.Time) {
	m.UpdatedAt = now
}

// Property is a distressed listing submitted for evaluation.
type Property struct {
	Meta         `bson:",inline"`
	OwnerName    string       `json:"owner_name" bson:"owner_name"`
	OwnerEmail   *string      `json:"owner_email" bson:"owner_email"`
	Address      string       `json:"address" bson:"address"`
	City         string       `json:"city" bson:"city"`
	State        string       `json:"state" bson:"state"`
	ZipCode      string       `json:"zip_code" bson:"zip_code"`
	PropertyType PropertyType `json:"property_type" bson:"property_type"`
	Bedrooms     *int         `json:"bedrooms" bson:"bedrooms"`
	Bathrooms    *float64     `json:"bathrooms" bson:"bathrooms"`
	Sqft         *int         `json:"sqft" bson:"sqft"`
	AskingPrice  float64      `json:"asking_price" bson:"asking_price"`
	ARV          *float64     `json:"arv" bson:"arv"`
	RepairCost   *float64     `json:"repair_cost" bson:"repair_cost"`
	Notes        *string      `json:"notes" bson:"notes"`
}

// ApplyDefaults fills in the values an omitted field stands for.
// ARV is left alone: its absence is meaningful in storage.
func (p *Property) ApplyDefaults() {
	if p.PropertyType == "" {
		p.PropertyType = SingleFamily
	}
	if p.RepairCost == nil {
		zero := 0.0
		p.RepairCost = &zero
	}
}

// ARVOrZero returns the after-repair value, treating an absent value as zero.
func (p *Property) ARVOrZero() float64 {
	if p.ARV == nil {
		return 0
	}
	return *p.ARV
}

// RepairCostOrZero returns the repair cost, treating an absent value as zero.
func (p *Property) RepairCostOrZero() float64 {
	if p.RepairCost == nil {
		return 0
	}
	return *p.RepairCost
}
