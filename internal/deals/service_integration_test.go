package deals

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickflip/server/internal/database"
	"quickflip/server/internal/metrics"
	"quickflip/server/internal/models"
)

func setupTestDB(t *testing.T) *database.Database {
	db, err := database.NewTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDealLifecycleIntegration(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil, metrics.New("test"), DefaultBuyerPoolLimit, logrus.New())
	ctx := context.Background()

	texan, err := svc.RegisterBuyer(ctx, &models.Buyer{Name: "Lone Star", Email: "ls@example.com", State: sptr("TX")})
	require.NoError(t, err)
	westCoast, err := svc.RegisterBuyer(ctx, &models.Buyer{
		Name:          "West Coast",
		Email:         "wc@example.com",
		TargetStates:  []string{"CA", "NV"},
		MaxBudget:     fptr(150000),
		PropertyTypes: []models.PropertyType{models.SingleFamily, models.Condo},
	})
	require.NoError(t, err)
	_, err = svc.RegisterBuyer(ctx, &models.Buyer{Name: "Pricey", Email: "p@example.com", MinBudget: fptr(500000)})
	require.NoError(t, err)

	resp, err := svc.SubmitProperty(ctx, testProperty())
	require.NoError(t, err)
	assert.Equal(t, models.RankB, resp.Rank)
	require.Len(t, resp.MatchedBuyers, 2)
	assert.Equal(t, westCoast, resp.MatchedBuyers[0].BuyerID)
	assert.Equal(t, 2.0, resp.MatchedBuyers[0].Score)
	assert.Equal(t, texan, resp.MatchedBuyers[1].BuyerID)
	assert.Equal(t, 1.5, resp.MatchedBuyers[1].Score)

	deal, err := svc.GetDeal(ctx, resp.DealID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusMatched, deal.Status)
	assert.Equal(t, []string{westCoast, texan}, deal.MatchedBuyerIDs)
	assert.Equal(t, resp.Analysis, deal.Analysis)

	var property models.Property
	require.NoError(t, db.Get(ctx, database.PropertyCollection, deal.PropertyID, &property))
	assert.Equal(t, "12 Elm St", property.Address)

	review, err := svc.ReviewDeal(ctx, resp.DealID, models.DealReview{Approve: false, Notes: sptr("needs comps")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, review.Status)

	review, err = svc.ReviewDeal(ctx, resp.DealID, models.DealReview{Approve: true})
	require.NoError(t, err)
	assert.Equal(t, models.StatusReviewed, review.Status)

	closed, err := svc.CloseDeal(ctx, resp.DealID, models.CloseDealRequest{SalePrice: 130000, JVOptIn: true, ProfitSplitPercentage: fptr(50)})
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, closed.Status)
	assert.Equal(t, 65000.0, closed.JV.OurShare)

	deal, err = svc.GetDeal(ctx, resp.DealID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, deal.Status)
	assert.Equal(t, 130000.0, *deal.SalePrice)
	assert.Equal(t, []string{westCoast, texan}, deal.MatchedBuyerIDs)

	closedDeals, err := svc.ListDeals(ctx, models.StatusClosed, 10)
	require.NoError(t, err)
	require.Len(t, closedDeals, 1)
	assert.Equal(t, resp.DealID, closedDeals[0].ID)

	matchedDeals, err := svc.ListDeals(ctx, models.StatusMatched, 10)
	require.NoError(t, err)
	assert.Empty(t, matchedDeals)
}

func TestBuyerPoolLimitIntegration(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil, nil, 2, logrus.New())
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		_, err := svc.RegisterBuyer(ctx, &models.Buyer{Name: name, Email: name + "@example.com"})
		require.NoError(t, err)
	}

	resp, err := svc.SubmitProperty(ctx, testProperty())
	require.NoError(t, err)
	require.Len(t, resp.MatchedBuyers, 2)
	assert.Equal(t, "first", resp.MatchedBuyers[0].Name)
	assert.Equal(t, "second", resp.MatchedBuyers[1].Name)
}

func TestGetDealIntegration_NotFound(t *testing.T) {
	svc := NewService(setupTestDB(t), nil, nil, 0, logrus.New())
	_, err := svc.GetDeal(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, database.ErrNotFound)
}
