package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickflip/server/internal/models"
)

func setupTestDB(t *testing.T) *Database {
	db, err := NewTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func fptr(v float64) *float64 { return &v }

func TestDatabase_StoreAndGet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return fixed }

	state := "CA"
	buyer := &models.Buyer{
		Name:          "Acme Capital",
		Email:         "deals@acme.test",
		State:         &state,
		TargetStates:  []string{"CA", "NV"},
		MinBudget:     fptr(0),
		MaxBudget:     fptr(250000),
		PropertyTypes: []models.PropertyType{models.Condo},
	}

	id, err := db.Store(ctx, BuyerCollection, buyer)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, buyer.ID)

	var loaded models.Buyer
	require.NoError(t, db.Get(ctx, BuyerCollection, id, &loaded))
	assert.Equal(t, "Acme Capital", loaded.Name)
	assert.Equal(t, []string{"CA", "NV"}, loaded.TargetStates)
	assert.Equal(t, []models.PropertyType{models.Condo}, loaded.PropertyTypes)
	require.NotNil(t, loaded.MaxBudget)
	assert.Equal(t, 250000.0, *loaded.MaxBudget)
	assert.True(t, fixed.Equal(loaded.CreatedAt))
	assert.True(t, fixed.Equal(loaded.UpdatedAt))
}

func TestDatabase_PreservesAbsentARV(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	p := &models.Property{OwnerName: "Jane", Address: "1 Main St", City: "Austin", State: "TX", ZipCode: "78701", AskingPrice: 90000}
	p.ApplyDefaults()
	id, err := db.Store(ctx, PropertyCollection, p)
	require.NoError(t, err)

	var loaded models.Property
	require.NoError(t, db.Get(ctx, PropertyCollection, id, &loaded))
	assert.Nil(t, loaded.ARV)
	require.NotNil(t, loaded.RepairCost)
	assert.Equal(t, 0.0, *loaded.RepairCost)
	assert.Equal(t, models.SingleFamily, loaded.PropertyType)
}

func TestDatabase_GetMissing(t *testing.T) {
	db := setupTestDB(t)

	var deal models.Deal
	err := db.Get(context.Background(), DealCollection, "missing", &deal)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDatabase_FetchFilterAndLimit(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	statuses := []models.DealStatus{models.StatusMatched, models.StatusSubmitted, models.StatusMatched, models.StatusMatched}
	var ids []string
	for i, s := range statuses {
		deal := &models.Deal{PropertyID: "p" + string(rune('0'+i)), Status: s, Rank: models.RankC}
		id, err := db.Store(ctx, DealCollection, deal)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	var all []models.Deal
	require.NoError(t, db.Fetch(ctx, DealCollection, Filter{}, 0, &all))
	assert.Len(t, all, 4)

	var matched []models.Deal
	require.NoError(t, db.Fetch(ctx, DealCollection, Filter{"status": string(models.StatusMatched)}, 2, &matched))
	require.Len(t, matched, 2)
	assert.Equal(t, ids[0], matched[0].ID)
	assert.Equal(t, ids[2], matched[1].ID)
}

func TestDatabase_Replace(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	deal := &models.Deal{
		PropertyID:      "prop-1",
		Status:          models.StatusMatched,
		Rank:            models.RankA,
		Analysis:        models.Analysis{ARV: 200000, Rank: models.RankA},
		MatchedBuyerIDs: []string{"b1", "b2"},
	}
	id, err := db.Store(ctx, DealCollection, deal)
	require.NoError(t, err)

	later := time.Now().Add(time.Hour)
	db.now = func() time.Time { return later }

	salePrice := 180000.0
	deal.Status = models.StatusClosed
	deal.SalePrice = &salePrice
	deal.JV = &models.JVTerms{Split: 50, OurShare: 90000}
	require.NoError(t, db.Replace(ctx, DealCollection, id, deal))

	var loaded models.Deal
	require.NoError(t, db.Get(ctx, DealCollection, id, &loaded))
	assert.Equal(t, models.StatusClosed, loaded.Status)
	assert.Equal(t, []string{"b1", "b2"}, loaded.MatchedBuyerIDs)
	assert.Equal(t, 200000.0, loaded.Analysis.ARV)
	require.NotNil(t, loaded.JV)
	assert.Equal(t, 90000.0, loaded.JV.OurShare)
	assert.True(t, loaded.UpdatedAt.After(loaded.CreatedAt))

	ghost := &models.Deal{Status: models.StatusClosed}
	assert.ErrorIs(t, db.Replace(ctx, DealCollection, "missing", ghost), ErrNotFound)
}

func TestDatabase_Ping(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, db.Ping(context.Background()))
}
