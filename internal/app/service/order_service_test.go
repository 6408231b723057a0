package service

import (
	"context"
	"errors"
	"testing"

	"medistore/internal/common"
	"medistore/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderFixture(t *testing.T, products ...model.Product) (*OrderService, *fakeOrderRepo, *fakeProductRepo) {
	t.Helper()
	productRepo := newFakeProductRepo(products...)
	orderRepo := newFakeOrderRepo()
	inv := NewInventoryService(productRepo, newTestRedis(t), NewProductLocks())
	return NewOrderService(orderRepo, inv), orderRepo, productRepo
}

func TestPlaceOrderDecrementsStockAndPersists(t *testing.T) {
	svc, orderRepo, productRepo := newOrderFixture(t, model.Product{ID: "1", Stock: 10})

	order, err := svc.PlaceOrder(context.Background(), "u1", PlaceOrderRequest{
		Items: []model.OrderItem{{ProductID: "1", Quantity: 3}},
	})
	require.NoError(t, err)

	assert.Equal(t, 7, productRepo.stock("1"))
	assert.NotEmpty(t, order.ID, "order gets a store-assigned id")
	assert.Equal(t, model.StatusPlaced, order.Status)
	assert.Equal(t, "u1", order.UserID)

	persisted, err := orderRepo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Items, persisted.Items)
}

func TestPlaceOrderOversellClampsToZero(t *testing.T) {
	svc, orderRepo, productRepo := newOrderFixture(t, model.Product{ID: "1", Stock: 2})

	order, err := svc.PlaceOrder(context.Background(), "u1", PlaceOrderRequest{
		Items: []model.OrderItem{{ProductID: "1", Quantity: 5}},
	})
	require.NoError(t, err, "oversized orders are still accepted")

	assert.Equal(t, 0, productRepo.stock("1"))
	_, err = orderRepo.FindByID(context.Background(), order.ID)
	assert.NoError(t, err, "order is persisted despite the clamp")
}

func TestPlaceOrderUnknownProductDoesNotFailOrder(t *testing.T) {
	svc, _, productRepo := newOrderFixture(t, model.Product{ID: "2", Stock: 6})

	_, err := svc.PlaceOrder(context.Background(), "u1", PlaceOrderRequest{
		Items: []model.OrderItem{
			{ProductID: "ghost", Quantity: 1},
			{ProductID: "2", Quantity: 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, productRepo.stock("2"))
}

func TestPlaceOrderMergesDuplicateProductLines(t *testing.T) {
	svc, orderRepo, productRepo := newOrderFixture(t, model.Product{ID: "1", Stock: 10})

	order, err := svc.PlaceOrder(context.Background(), "u1", PlaceOrderRequest{
		Items: []model.OrderItem{
			{ProductID: "1", Quantity: 2},
			{ProductID: "1", Quantity: 3},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 5, productRepo.stock("1"), "both lines are charged")

	persisted, err := orderRepo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, persisted.Items, 1)
	assert.Equal(t, model.OrderItem{ProductID: "1", Quantity: 5}, persisted.Items[0],
		"recorded order matches the stock charged")
}

func TestMergeLineItemsKeepsFirstOccurrenceOrder(t *testing.T) {
	merged := mergeLineItems([]model.OrderItem{
		{ProductID: "a", Quantity: 1},
		{ProductID: "b", Quantity: 2},
		{ProductID: "a", Quantity: 4},
	})
	assert.Equal(t, []model.OrderItem{
		{ProductID: "a", Quantity: 5},
		{ProductID: "b", Quantity: 2},
	}, merged)
}

func TestPlaceOrderRejectsEmptyAndInvalidInput(t *testing.T) {
	svc, orderRepo, _ := newOrderFixture(t, model.Product{ID: "1", Stock: 10})

	_, err := svc.PlaceOrder(context.Background(), "u1", PlaceOrderRequest{})
	assert.ErrorIs(t, err, common.ErrBadRequest)

	_, err = svc.PlaceOrder(context.Background(), "", PlaceOrderRequest{
		Items: []model.OrderItem{{ProductID: "1", Quantity: 1}},
	})
	assert.ErrorIs(t, err, common.ErrBadRequest)

	_, err = svc.PlaceOrder(context.Background(), "u1", PlaceOrderRequest{
		Items: []model.OrderItem{{ProductID: "1", Quantity: 0}},
	})
	assert.ErrorIs(t, err, common.ErrValidation)

	assert.Zero(t, orderRepo.saves)
}

func TestPlaceOrderRestoresStockWhenOrderSaveFails(t *testing.T) {
	svc, orderRepo, productRepo := newOrderFixture(t,
		model.Product{ID: "1", Stock: 10},
		model.Product{ID: "2", Stock: 2},
	)
	orderRepo.saveErr = errors.New("order store unavailable")

	_, err := svc.PlaceOrder(context.Background(), "u1", PlaceOrderRequest{
		Items: []model.OrderItem{
			{ProductID: "1", Quantity: 3},
			{ProductID: "2", Quantity: 5}, // clamped: only 2 taken
		},
	})
	require.Error(t, err)

	assert.Equal(t, 10, productRepo.stock("1"), "compensation restores full decrement")
	assert.Equal(t, 2, productRepo.stock("2"), "compensation restores only the clamped amount")
}

func TestUpdateOrderStatusUnknownOrder(t *testing.T) {
	svc, orderRepo, _ := newOrderFixture(t)

	_, err := svc.UpdateOrderStatus(context.Background(), "nope", model.StatusShipped)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Zero(t, orderRepo.saves, "no store write for unknown orders")
}

func TestUpdateOrderStatusTransitions(t *testing.T) {
	svc, _, _ := newOrderFixture(t, model.Product{ID: "1", Stock: 10})

	order, err := svc.PlaceOrder(context.Background(), "u1", PlaceOrderRequest{
		Items: []model.OrderItem{{ProductID: "1", Quantity: 1}},
	})
	require.NoError(t, err)

	shipped, err := svc.UpdateOrderStatus(context.Background(), order.ID, model.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, model.StatusShipped, shipped.Status)

	delivered, err := svc.UpdateOrderStatus(context.Background(), order.ID, model.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDelivered, delivered.Status)

	// DELIVERED is terminal
	_, err = svc.UpdateOrderStatus(context.Background(), order.ID, model.StatusCancelled)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newOrderFixture(t, model.Product{ID: "1", Stock: 10})

	order, err := svc.PlaceOrder(context.Background(), "u1", PlaceOrderRequest{
		Items: []model.OrderItem{{ProductID: "1", Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.UpdateOrderStatus(context.Background(), order.ID, model.OrderStatus("TELEPORTED"))
	assert.ErrorIs(t, err, common.ErrValidation)

	current, err := svc.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPlaced, current.Status)
}

func TestFindByUserID(t *testing.T) {
	svc, _, _ := newOrderFixture(t, model.Product{ID: "1", Stock: 10})

	_, err := svc.PlaceOrder(context.Background(), "alice", PlaceOrderRequest{
		Items: []model.OrderItem{{ProductID: "1", Quantity: 1}},
	})
	require.NoError(t, err)

	mine, err := svc.FindByUserID(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	none, err := svc.FindByUserID(context.Background(), "bob")
	require.NoError(t, err)
	assert.Empty(t, none)
}
