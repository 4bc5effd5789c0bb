package repository_test

import (
	"context"
	"testing"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/domain"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/repository"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository_ListActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewProductRepository(db)
	testutil.SeedProducts(t, db)

	products, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "antrieb", products[0].Ref)
	assert.Equal(t, "paneel", products[2].Ref)
}

func TestProductRepository_Upsert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewProductRepository(db)
	testutil.SeedProducts(t, db)

	err := repo.Upsert(context.Background(), []domain.Product{
		{Ref: "antrieb", Name: "Antrieb Plus", Unit: "stk", BasePrice: 120, Active: true, SortOrder: 1},
		{Ref: "folie", Name: "Schutzfolie", Unit: "m2_gesamt", BasePrice: 4.5, Active: true, SortOrder: 9},
	})
	require.NoError(t, err)

	products, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 4)
	assert.Equal(t, "Antrieb Plus", products[0].Name)
	assert.Equal(t, 120.0, products[0].BasePrice)
	assert.Equal(t, "folie", products[3].Ref)
}
