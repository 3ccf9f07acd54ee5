package models

// Rank is the letter grade summarising how attractive a deal is.
type Rank string

const (
	RankA Rank = "A"
	RankB Rank = "B"
	RankC Rank = "C"
	RankD Rank = "D"
)

// Valid reports whether r is one of the four grades.
func (r Rank) Valid() bool {
	switch r {
	case RankA, RankB, RankC, RankD:
		return true
	default:
		return false
	}
}

// Score orders ranks so that a better grade compares higher. Unknown ranks score 0.
func (r Rank) Score() int {
	switch r {
	case RankA:
		return 4
	case RankB:
		return 3
	case RankC:
		return 2
	case RankD:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether r is as good as or better than other.
func (r Rank) AtLeast(other Rank) bool {
	return r.Score() >= other.Score()
}

// DealStatus is the lifecycle position of a deal.
type DealStatus string

const (
	StatusSubmitted DealStatus = "submitted"
	StatusMatched   DealStatus = "matched"
	StatusReviewed  DealStatus = "reviewed"
	StatusClosed    DealStatus = "closed"
)

// Valid reports whether s is a known lifecycle status.
func (s DealStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusMatched, StatusReviewed, StatusClosed:
		return true
	default:
		return false
	}
}

// Analysis is the financial breakdown stored on every deal.
type Analysis struct {
	ARV               float64 `json:"arv" bson:"arv"`
	RepairCost        float64 `json:"repair_cost" bson:"repair_cost"`
	AskingPrice       float64 `json:"asking_price" bson:"asking_price"`
	MaxAllowableOffer float64 `json:"max_allowable_offer" bson:"max_allowable_offer"`
	ProjectedSpread   float64 `json:"projected_spread" bson:"projected_spread"`
	DiscountPct       float64 `json:"discount_pct" bson:"discount_pct"`
	Rank              Rank    `json:"rank" bson:"rank"`
}

// JVTerms is the joint-venture split computed when a deal closes.
type JVTerms struct {
	Split    float64 `json:"split" bson:"split"`
	OurShare float64 `json:"our_share" bson:"our_share"`
}

// Deal is the outcome of evaluating one property against the buyer pool.
type Deal struct {
	Meta                  `bson:",inline"`
	PropertyID            string     `json:"property_id" bson:"property_id"`
	Status                DealStatus `json:"status" bson:"status"`
	Rank                  Rank       `json:"rank" bson:"rank"`
	Analysis              Analysis   `json:"analysis" bson:"analysis" gorm:"serializer:json"`
	MatchedBuyerIDs       []string   `json:"matched_buyer_ids" bson:"matched_buyer_ids" gorm:"serializer:json"`
	JVOptIn               bool       `json:"jv_opt_in" bson:"jv_opt_in"`
	ProfitSplitPercentage *float64   `json:"profit_split_percentage" bson:"profit_split_percentage"`
	ContractURL           *string    `json:"contract_url" bson:"contract_url"`
	ReviewNotes           *string    `json:"review_notes" bson:"review_notes"`
	SalePrice             *float64   `json:"sale_price" bson:"sale_price"`
	JV                    *JVTerms   `json:"jv" bson:"jv" gorm:"serializer:json"`
}

// DealReview is a reviewer's verdict on a deal.
type DealReview struct {
	Approve bool    `json:"approve"`
	Notes   *string `json:"notes"`
}

// CloseDealRequest carries the sale terms of a closing deal.
type CloseDealRequest struct {
	SalePrice             float64  `json:"sale_price"`
	JVOptIn               bool     `json:"jv_opt_in"`
	ProfitSplitPercentage *float64 `json:"profit_split_percentage"`
}

// MatchResponse is returned when a submitted property becomes a deal.
type MatchResponse struct {
	DealID        string       `json:"deal_id"`
	MatchedBuyers []BuyerMatch `json:"matched_buyers"`
	Rank          Rank         `json:"rank"`
	Analysis      Analysis     `json:"analysis"`
}

// ReviewResult reports the status a review left the deal in.
type ReviewResult struct {
	DealID string     `json:"deal_id"`
	Status DealStatus `json:"status"`
	Notes  *string    `json:"notes"`
}

// CloseResult reports the sale terms recorded on a closed deal.
type CloseResult struct {
	DealID    string     `json:"deal_id"`
	Status    DealStatus `json:"status"`
	SalePrice float64    `json:"sale_price"`
	JV        *JVTerms   `json:"jv"`
}
