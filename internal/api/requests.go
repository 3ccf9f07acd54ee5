package api

import "quickflip/server/internal/models"

type propertyRequest struct {
	OwnerName    string   `json:"owner_name" binding:"required"`
	OwnerEmail   *string  `json:"owner_email"`
	Address      string   `json:"address" binding:"required"`
	City         string   `json:"city" binding:"required"`
	State        string   `json:"state" binding:"required"`
	ZipCode      string   `json:"zip_code" binding:"required"`
	PropertyType string   `json:"property_type" binding:"omitempty,oneof=single_family multi_family condo townhome land"`
	Bedrooms     *int     `json:"bedrooms"`
	Bathrooms    *float64 `json:"bathrooms"`
	Sqft         *int     `json:"sqft"`
	AskingPrice  *float64 `json:"asking_price" binding:"required,gte=0"`
	ARV          *float64 `json:"arv" binding:"omitempty,gte=0"`
	RepairCost   *float64 `json:"repair_cost" binding:"omitempty,gte=0"`
	Notes        *string  `json:"notes"`
}

func (r propertyRequest) toModel() *models.Property {
	return &models.Property{
		OwnerName:    r.OwnerName,
		OwnerEmail:   r.OwnerEmail,
		Address:      r.Address,
		City:         r.City,
		State:        r.State,
		ZipCode:      r.ZipCode,
		PropertyType: models.PropertyType(r.PropertyType),
		Bedrooms:     r.Bedrooms,
		Bathrooms:    r.Bathrooms,
		Sqft:         r.Sqft,
		AskingPrice:  *r.AskingPrice,
		ARV:          r.ARV,
		RepairCost:   r.RepairCost,
		Notes:        r.Notes,
	}
}

type buyerRequest struct {
	Name          string   `json:"name" binding:"required"`
	Email         string   `json:"email" binding:"required"`
	Phone         *string  `json:"phone"`
	City          *string  `json:"city"`
	State         *string  `json:"state"`
	TargetStates  []string `json:"target_states"`
	MinBudget     *float64 `json:"min_budget" binding:"omitempty,gte=0"`
	MaxBudget     *float64 `json:"max_budget" binding:"omitempty,gte=0"`
	PropertyTypes []string `json:"property_types"`
}

func (r buyerRequest) toModel() *models.Buyer {
	var types []models.PropertyType
	for _, t := range r.PropertyTypes {
		types = append(types, models.PropertyType(t))
	}
	return &models.Buyer{
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		City:          r.City,
		State:         r.State,
		TargetStates:  r.TargetStates,
		MinBudget:     r.MinBudget,
		MaxBudget:     r.MaxBudget,
		PropertyTypes: types,
	}
}

type reviewRequest struct {
	Approve *bool   `json:"approve"`
	Notes   *string `json:"notes"`
}

// Approval is the default when the field is omitted.
func (r reviewRequest) toModel() models.DealReview {
	approve := true
	if r.Approve != nil {
		approve = *r.Approve
	}
	return models.DealReview{Approve: approve, Notes: r.Notes}
}

type closeRequest struct {
	SalePrice             *float64 `json:"sale_price" binding:"required,gte=0"`
	JVOptIn               bool     `json:"jv_opt_in"`
	ProfitSplitPercentage *float64 `json:"profit_split_percentage" binding:"omitempty,gte=0,lte=100"`
}

func (r closeRequest) toModel() models.CloseDealRequest {
	split := 0.0
	if r.ProfitSplitPercentage != nil {
		split = *r.ProfitSplitPercentage
	}
	return models.CloseDealRequest{
		SalePrice:             *r.SalePrice,
		JVOptIn:               r.JVOptIn,
		ProfitSplitPercentage: &split,
	}
}
