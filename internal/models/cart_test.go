package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testProduct(price float64, stock int) *Product {
	return &Product{
		ID:       primitive.NewObjectID(),
		Name:     "Casque audio",
		Price:    price,
		Stock:    stock,
		Images:   []string{"products/casque.jpg"},
		IsActive: true,
	}
}

func TestAddItemNewLine(t *testing.T) {
	cart := NewCart(primitive.NewObjectID())
	p := testProduct(49.90, 10)

	require.NoError(t, cart.AddItem(p, 2))

	require.Len(t, cart.Items, 1)
	assert.Equal(t, p.ID, cart.Items[0].ProductID)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 49.90, cart.Items[0].Price)
	assert.Equal(t, "products/casque.jpg", cart.Items[0].Image)
	assert.InDelta(t, 99.80, cart.Subtotal, 0.001)
	assert.Equal(t, 2, cart.TotalItems)
}

func TestAddItemAccumulates(t *testing.T) {
	cart := NewCart(primitive.NewObjectID())
	p := testProduct(10, 10)

	require.NoError(t, cart.AddItem(p, 2))
	require.NoError(t, cart.AddItem(p, 3))

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.InDelta(t, 50, cart.Subtotal, 0.001)
}

func TestAddItemRefreshesPrice(t *testing.T) {
	cart := NewCart(primitive.NewObjectID())
	p := testProduct(10, 10)

	require.NoError(t, cart.AddItem(p, 1))

	// Le prix du produit change entre deux ajouts
	p.Price = 8
	require.NoError(t, cart.AddItem(p, 1))

	assert.Equal(t, 8.0, cart.Items[0].Price)
	assert.InDelta(t, 16, cart.Subtotal, 0.001)
}

func TestAddItemInsufficientStock(t *testing.T) {
	cart := NewCart(primitive.NewObjectID())
	p := testProduct(10, 5)

	require.NoError(t, cart.AddItem(p, 3))

	err := cart.AddItem(p, 3)
	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 2, stockErr.Remaining)

	// Rien n'a bougé
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.InDelta(t, 30, cart.Subtotal, 0.001)
}

func TestAddItemQuantityBounds(t *testing.T) {
	cart := NewCart(primitive.NewObjectID())
	p := testProduct(10, 500)

	assert.ErrorIs(t, cart.AddItem(p, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, cart.AddItem(p, -1), ErrInvalidQuantity)
	assert.ErrorIs(t, cart.AddItem(p, 100), ErrInvalidQuantity)

	require.NoError(t, cart.AddItem(p, 99))
	assert.Equal(t, 99, cart.Items[0].Quantity)
}

func TestAddItemAccumulatedOverCap(t *testing.T) {
	cart := NewCart(primitive.NewObjectID())
	p := testProduct(10, 500)

	require.NoError(t, cart.AddItem(p, 60))

	// 60 + 60 dépasse le plafond de 99 même si le stock le permet
	assert.ErrorIs(t, cart.AddItem(p, 60), ErrInvalidQuantity)

	// Rien n'a bougé
	assert.Equal(t, 60, cart.Items[0].Quantity)
	assert.InDelta(t, 600, cart.Subtotal, 0.001)
}

func TestAddItemUnavailableProduct(t *testing.T) {
	cart := NewCart(primitive.NewObjectID())

	inactive := testProduct(10, 5)
	inactive.IsActive = false
	assert.ErrorIs(t, cart.AddItem(inactive, 1), ErrProductUnavailable)

	outOfStock := testProduct(10, 0)
	assert.ErrorIs(t, cart.AddItem(outOfStock, 1), ErrProductUnavailable)

	assert.Empty(t, cart.Items)
}

func TestUpdateQuantity(t *testing.T) {
	cart := NewCart(primitive.NewObjectID())
	p := testProduct(10, 10)
	require.NoError(t, cart.AddItem(p, 2))

	require.NoError(t, cart.UpdateQuantity(p, 7))
	assert.Equal(t, 7, cart.Items[0].Quantity)
	assert.InDelta(t, 70, cart.Subtotal, 0.001)

	// Au-delà du stock
	err := cart.UpdateQuantity(p, 11)
	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 10, stockErr.Remaining)
	assert.Equal(t, 7, cart.Items[0].Quantity)
}

func TestUpdateQuantityZeroRemoves(t *testing.T) {
	cart := NewCart(primitive.NewObjectID())
	p := testProduct(10, 10)
	require.NoError(t, cart.AddItem(p, 2))

	require.NoError(t, cart.UpdateQuantity(p, 0))
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.Subtotal)
	assert.Equal(t, 0, cart.TotalItems)
}

func TestUpdateQuantityRefreshesPrice(t *testing.T) {
	cart := NewCart(primitive.NewObjectID())
	p := testProduct(10, 10)
	require.NoError(t, cart.AddItem(p, 2))

	p.Price = 12
	require.NoError(t, cart.UpdateQuantity(p, 2))

	assert.Equal(t, 12.0, cart.Items[0].Price)
	assert.InDelta(t, 24, cart.Subtotal, 0.001)
}

func TestRemoveItem(t *testing.T) {
	cart := NewCart(primitive.NewObjectID())
	a := testProduct(10, 10)
	b := testProduct(20, 10)
	require.NoError(t, cart.AddItem(a, 1))
	require.NoError(t, cart.AddItem(b, 1))

	require.NoError(t, cart.RemoveItem(a.ID))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, b.ID, cart.Items[0].ProductID)
	assert.InDelta(t, 20, cart.Subtotal, 0.001)

	assert.ErrorIs(t, cart.RemoveItem(a.ID), ErrItemNotFound)
}

func TestClearKeepsSavedItems(t *testing.T) {
	cart := NewCart(primitive.NewObjectID())
	a := testProduct(10, 10)
	b := testProduct(20, 10)
	require.NoError(t, cart.AddItem(a, 1))
	require.NoError(t, cart.AddItem(b, 1))
	require.NoError(t, cart.SaveForLater(a.ID))

	cart.Clear()

	assert.Empty(t, cart.Items)
	assert.Len(t, cart.SavedItems, 1)
	assert.Equal(t, 0.0, cart.Subtotal)
	assert.Equal(t, 0, cart.TotalItems)
}

func TestSaveForLaterAndMoveBack(t *testing.T) {
	cart := NewCart(primitive.NewObjectID())
	p := testProduct(10, 10)
	require.NoError(t, cart.AddItem(p, 3))

	require.NoError(t, cart.SaveForLater(p.ID))
	assert.Empty(t, cart.Items)
	require.Len(t, cart.SavedItems, 1)
	assert.Equal(t, 0, cart.TotalItems)

	require.NoError(t, cart.MoveToCart(p))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Empty(t, cart.SavedItems)
	assert.InDelta(t, 30, cart.Subtotal, 0.001)
}

func TestMoveToCartValidatesStock(t *testing.T) {
	cart := NewCart(primitive.NewObjectID())
	p := testProduct(10, 10)
	require.NoError(t, cart.AddItem(p, 5))
	require.NoError(t, cart.SaveForLater(p.ID))

	// Le stock a fondu entre-temps
	p.Stock = 2

	err := cart.MoveToCart(p)
	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))

	// L'article reste mis de côté
	assert.Len(t, cart.SavedItems, 1)
	assert.Empty(t, cart.Items)
}

func TestMergeGuestItemCapsAtStock(t *testing.T) {
	cart := NewCart(primitive.NewObjectID())
	p := testProduct(10, 5)
	require.NoError(t, cart.AddItem(p, 4))

	// La fusion plafonne au stock au lieu d'échouer
	require.NoError(t, cart.MergeGuestItem(p, 4))
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.InDelta(t, 50, cart.Subtotal, 0.001)
}

func TestMergeGuestItemNewLineCapped(t *testing.T) {
	cart := NewCart(primitive.NewObjectID())
	p := testProduct(10, 3)

	require.NoError(t, cart.MergeGuestItem(p, 7))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
}

func TestMergeGuestItemUnavailable(t *testing.T) {
	cart := NewCart(primitive.NewObjectID())
	p := testProduct(10, 0)

	assert.ErrorIs(t, cart.MergeGuestItem(p, 1), ErrProductUnavailable)
	assert.Empty(t, cart.Items)
}

func TestCalculateTotalsFromScratch(t *testing.T) {
	cart := NewCart(primitive.NewObjectID())
	cart.Items = []CartItem{
		{ProductID: primitive.NewObjectID(), Price: 19.99, Quantity: 2},
		{ProductID: primitive.NewObjectID(), Price: 5.50, Quantity: 3},
	}
	// Des totaux incohérents laissés par une écriture concurrente
	cart.Subtotal = 9999
	cart.TotalItems = 9999

	cart.CalculateTotals()

	assert.InDelta(t, 56.48, cart.Subtotal, 0.001)
	assert.Equal(t, 5, cart.TotalItems)
}
