package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFormatOrderNumber(t *testing.T) {
	day := time.Date(2025, 3, 7, 14, 30, 0, 0, time.UTC)

	assert.Equal(t, "ORD-20250307-00001", FormatOrderNumber(day, 1))
	assert.Equal(t, "ORD-20250307-00042", FormatOrderNumber(day, 42))
	assert.Equal(t, "ORD-20250307-12345", FormatOrderNumber(day, 12345))
}

func TestOrderCalculateTotals(t *testing.T) {
	order := Order{
		Items: []OrderItem{
			{Price: 25, Quantity: 2},
			{Price: 10.50, Quantity: 1},
		},
		Tax:          12.71,
		ShippingCost: 4.99,
		Discount:     5,
	}

	order.CalculateTotals()

	assert.InDelta(t, 60.50, order.Subtotal, 0.001)
	assert.InDelta(t, 73.20, order.Total, 0.001)
}

func TestUpdateStatusAppendsHistory(t *testing.T) {
	order := Order{
		Status: OrderStatusPending,
		StatusHistory: []StatusEntry{
			{Status: OrderStatusPending, ChangedAt: time.Now()},
		},
	}

	order.UpdateStatus(OrderStatusConfirmed, "")
	order.UpdateStatus(OrderStatusShipped, "Colis remis au transporteur")

	assert.Equal(t, OrderStatusShipped, order.Status)
	require.Len(t, order.StatusHistory, 3)
	assert.Equal(t, OrderStatusConfirmed, order.StatusHistory[1].Status)
	assert.Equal(t, "Colis remis au transporteur", order.StatusHistory[2].Note)
}

func TestUpdateStatusAnyTransitionAllowed(t *testing.T) {
	order := Order{Status: OrderStatusDelivered}

	// Retour arrière autorisé : pas de matrice de transitions
	order.UpdateStatus(OrderStatusPending, "")
	assert.Equal(t, OrderStatusPending, order.Status)

	order.UpdateStatus(OrderStatusCancelled, "")
	order.UpdateStatus(OrderStatusProcessing, "")
	assert.Equal(t, OrderStatusProcessing, order.Status)
	assert.Len(t, order.StatusHistory, 3)
}

func TestUpdateStatusDeliveredStampsDate(t *testing.T) {
	order := Order{Status: OrderStatusShipped}
	require.Nil(t, order.DeliveredAt)

	order.UpdateStatus(OrderStatusDelivered, "")

	require.NotNil(t, order.DeliveredAt)
	assert.WithinDuration(t, time.Now(), *order.DeliveredAt, time.Second)
}

func TestCanBeCancelled(t *testing.T) {
	assert.True(t, (&Order{Status: OrderStatusPending}).CanBeCancelled())
	assert.True(t, (&Order{Status: OrderStatusConfirmed}).CanBeCancelled())
	assert.False(t, (&Order{Status: OrderStatusProcessing}).CanBeCancelled())
	assert.False(t, (&Order{Status: OrderStatusShipped}).CanBeCancelled())
	assert.False(t, (&Order{Status: OrderStatusDelivered}).CanBeCancelled())
	assert.False(t, (&Order{Status: OrderStatusCancelled}).CanBeCancelled())
}

func TestValidOrderStatus(t *testing.T) {
	assert.True(t, ValidOrderStatus("pending"))
	assert.True(t, ValidOrderStatus("delivered"))
	assert.True(t, ValidOrderStatus("returned"))
	assert.False(t, ValidOrderStatus("expédiée"))
	assert.False(t, ValidOrderStatus(""))
}

func TestTotalQuantity(t *testing.T) {
	order := Order{
		Items: []OrderItem{
			{ProductID: primitive.NewObjectID(), Quantity: 2},
			{ProductID: primitive.NewObjectID(), Quantity: 3},
		},
	}
	assert.Equal(t, 5, order.TotalQuantity())
}
