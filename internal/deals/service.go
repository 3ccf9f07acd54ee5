// Package deals runs property submissions through analysis, buyer matching and
// the deal lifecycle, persisting each step through the gateway.
package deals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"quickflip/server/internal/analysis"
	"quickflip/server/internal/database"
	"quickflip/server/internal/lifecycle"
	"quickflip/server/internal/matching"
	"quickflip/server/internal/metrics"
	"quickflip/server/internal/models"
	"quickflip/server/internal/queue"
)

// DefaultBuyerPoolLimit bounds the buyer fetch for a single match run.
const DefaultBuyerPoolLimit = 200

var ErrInvalidTransition = errors.New("invalid deal status transition")

type Service struct {
	store          database.Store
	queue          *queue.DealQueue
	metrics        *metrics.Metrics
	logger         *logrus.Logger
	buyerPoolLimit int
}

// NewService wires the engine to its collaborators. dealQueue and m may be nil.
func NewService(store database.Store, dealQueue *queue.DealQueue, m *metrics.Metrics, buyerPoolLimit int, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if buyerPoolLimit <= 0 {
		buyerPoolLimit = DefaultBuyerPoolLimit
	}
	return &Service{
		store:          store,
		queue:          dealQueue,
		metrics:        m,
		logger:         logger,
		buyerPoolLimit: buyerPoolLimit,
	}
}

func (s *Service) RegisterBuyer(ctx context.Context, buyer *models.Buyer) (string, error) {
	buyer.ApplyDefaults()

	defer s.metrics.TrackDBOperation("store_buyer")(time.Now())
	id, err := s.store.Store(ctx, database.BuyerCollection, buyer)
	if err != nil {
		return "", fmt.Errorf("failed to store buyer: %w", err)
	}

	s.logger.WithField("buyer_id", id).Info("Registered buyer")
	return id, nil
}

// SubmitProperty analyzes a property, matches it against the buyer pool and
// records the resulting deal. Any storage failure aborts the whole submission.
func (s *Service) SubmitProperty(ctx context.Context, property *models.Property) (*models.MatchResponse, error) {
	property.ApplyDefaults()
	result := analysis.Analyze(*property)

	propertyID, err := s.storeRecord(ctx, "store_property", database.PropertyCollection, property)
	if err != nil {
		return nil, fmt.Errorf("failed to store property: %w", err)
	}

	buyers, err := s.fetchBuyerPool(ctx)
	if err != nil {
		return nil, err
	}
	matches := matching.Match(*property, buyers)

	buyerIDs := make([]string, len(matches))
	for i, m := range matches {
		buyerIDs[i] = m.BuyerID
	}

	deal := &models.Deal{
		PropertyID:      propertyID,
		Status:          lifecycle.InitialStatus(len(matches)),
		Rank:            result.Rank,
		Analysis:        result,
		MatchedBuyerIDs: buyerIDs,
	}
	dealID, err := s.storeRecord(ctx, "store_deal", database.DealCollection, deal)
	if err != nil {
		return nil, fmt.Errorf("failed to store deal: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"deal_id":     dealID,
		"property_id": propertyID,
		"rank":        result.Rank,
		"status":      deal.Status,
		"matches":     len(matches),
		"pool_size":   len(buyers),
	}).Info("Evaluated property")

	s.metrics.RecordDeal(deal.Rank, deal.Status, len(matches))
	s.publish(queue.DealEvent{Type: queue.DealCreated, Deal: *deal, Matches: matches})

	return &models.MatchResponse{
		DealID:        dealID,
		MatchedBuyers: matches,
		Rank:          result.Rank,
		Analysis:      result,
	}, nil
}

// ReviewDeal records a reviewer's verdict on a deal.
func (s *Service) ReviewDeal(ctx context.Context, dealID string, review models.DealReview) (*models.ReviewResult, error) {
	deal, err := s.GetDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}

	next := lifecycle.Review(deal.Status, review.Approve)
	if !lifecycle.CanTransition(deal.Status, next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, deal.Status, next)
	}

	deal.Status = next
	deal.ReviewNotes = review.Notes
	if err := s.replaceDeal(ctx, deal); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"deal_id":  dealID,
		"approved": review.Approve,
		"status":   next,
	}).Info("Reviewed deal")

	s.metrics.RecordTransition(next)
	s.publish(queue.DealEvent{Type: queue.DealReviewed, Deal: *deal})

	return &models.ReviewResult{DealID: dealID, Status: next, Notes: review.Notes}, nil
}

// CloseDeal closes a deal at the given sale price, computing JV terms when the
// deal opted in.
func (s *Service) CloseDeal(ctx context.Context, dealID string, req models.CloseDealRequest) (*models.CloseResult, error) {
	deal, err := s.GetDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}

	next := lifecycle.Close(deal.Status)
	if !lifecycle.CanTransition(deal.Status, next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, deal.Status, next)
	}

	jv := lifecycle.JVTerms(req.SalePrice, req.JVOptIn, req.ProfitSplitPercentage)
	salePrice := req.SalePrice

	deal.Status = next
	deal.SalePrice = &salePrice
	deal.JVOptIn = req.JVOptIn
	deal.ProfitSplitPercentage = req.ProfitSplitPercentage
	deal.JV = jv
	if err := s.replaceDeal(ctx, deal); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"deal_id":    dealID,
		"sale_price": salePrice,
		"jv":         jv != nil,
	}).Info("Closed deal")

	s.metrics.RecordTransition(next)
	s.publish(queue.DealEvent{Type: queue.DealClosed, Deal: *deal})

	return &models.CloseResult{DealID: dealID, Status: next, SalePrice: salePrice, JV: jv}, nil
}

// GetDeal loads a deal, returning database.ErrNotFound when it does not exist.
func (s *Service) GetDeal(ctx context.Context, dealID string) (*models.Deal, error) {
	defer s.metrics.TrackDBOperation("get_deal")(time.Now())

	var deal models.Deal
	if err := s.store.Get(ctx, database.DealCollection, dealID, &deal); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load deal: %w", err)
	}
	return &deal, nil
}

// ListDeals returns up to limit deals, optionally restricted to one status.
func (s *Service) ListDeals(ctx context.Context, status models.DealStatus, limit int) ([]models.Deal, error) {
	filter := database.Filter{}
	if status != "" {
		filter["status"] = string(status)
	}

	defer s.metrics.TrackDBOperation("list_deals")(time.Now())

	deals := make([]models.Deal, 0)
	if err := s.store.Fetch(ctx, database.DealCollection, filter, limit, &deals); err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}
	return deals, nil
}

// SampleBuyers returns up to n buyers; it doubles as a storage connectivity check.
func (s *Service) SampleBuyers(ctx context.Context, n int) ([]models.Buyer, error) {
	buyers := make([]models.Buyer, 0)
	if err := s.store.Fetch(ctx, database.BuyerCollection, database.Filter{}, n, &buyers); err != nil {
		return nil, err
	}
	return buyers, nil
}

func (s *Service) fetchBuyerPool(ctx context.Context) ([]models.Buyer, error) {
	defer s.metrics.TrackDBOperation("fetch_buyers")(time.Now())

	var buyers []models.Buyer
	if err := s.store.Fetch(ctx, database.BuyerCollection, database.Filter{}, s.buyerPoolLimit, &buyers); err != nil {
		return nil, fmt.Errorf("failed to fetch buyers: %w", err)
	}
	return buyers, nil
}

func (s *Service) storeRecord(ctx context.Context, operation, collection string, rec database.Record) (string, error) {
	defer s.metrics.TrackDBOperation(operation)(time.Now())
	return s.store.Store(ctx, collection, rec)
}

func (s *Service) replaceDeal(ctx context.Context, deal *models.Deal) error {
	defer s.metrics.TrackDBOperation("update_deal")(time.Now())

	if err := s.store.Replace(ctx, database.DealCollection, deal.ID, deal); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update deal: %w", err)
	}
	return nil
}

func (s *Service) publish(event queue.DealEvent) {
	if s.queue == nil {
		return
	}
	if err := s.queue.Push(event); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"event":   event.Type,
			"deal_id": event.Deal.ID,
		}).Warn("Dropped deal event")
	}
}
