package service

import (
	"context"
	"log"

	"medistore/internal/common"
	"medistore/internal/domain/model"
	"medistore/internal/domain/repository"

	"github.com/google/uuid"
)

type OrderService struct {
	orderRepo repository.OrderRepository
	inventory *InventoryService
}

func NewOrderService(orderRepo repository.OrderRepository, inventory *InventoryService) *OrderService {
	return &OrderService{orderRepo: orderRepo, inventory: inventory}
}

type PlaceOrderRequest struct {
	Items []model.OrderItem `json:"items"`
}

func (s *OrderService) FindAll(ctx context.Context) ([]model.Order, error) {
	return s.orderRepo.FindAll(ctx)
}

func (s *OrderService) FindByUserID(ctx context.Context, userID string) ([]model.Order, error) {
	return s.orderRepo.FindByUserID(ctx, userID)
}

// FindByID returns common.ErrNotFound for unknown ids; callers treat
// that as a normal outcome, not a failure.
func (s *OrderService) FindByID(ctx context.Context, id string) (*model.Order, error) {
	return s.orderRepo.FindByID(ctx, id)
}

// PlaceOrder reconciles inventory for each line item and then persists
// the order. Inventory writes and the order write are not atomic in the
// store; if the order fails to persist, the applied stock adjustments
// are restored as a compensating action.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, req PlaceOrderRequest) (*model.Order, error) {
	if userID == "" || len(req.Items) == 0 {
		return nil, common.Errorf("order needs an owner and at least one item: %w", common.ErrBadRequest)
	}
	for _, item := range req.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			return nil, common.Errorf("line item needs a product id and a positive quantity: %w", common.ErrValidation)
		}
	}

	order := &model.Order{
		ID:     uuid.NewString(),
		UserID: userID,
		Items:  mergeLineItems(req.Items),
		Status: model.StatusPlaced,
	}

	applied, err := s.inventory.Reconcile(ctx, order.Items)
	if err != nil {
		s.compensate(ctx, order.ID, applied)
		return nil, common.Errorf("failed to reconcile inventory: %w", err)
	}

	saved, err := s.orderRepo.Save(ctx, order)
	if err != nil {
		s.compensate(ctx, order.ID, applied)
		return nil, common.Errorf("failed to persist order: %w", err)
	}
	return saved, nil
}

// mergeLineItems sums quantities of lines sharing a product id, keeping
// first-occurrence order. The order store keys line items by
// (order, product), so duplicate lines must collapse before persistence
// or the stock charged would diverge from the order recorded.
func mergeLineItems(items []model.OrderItem) []model.OrderItem {
	merged := make([]model.OrderItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

func (s *OrderService) compensate(ctx context.Context, orderID string, applied []StockAdjustment) {
	if len(applied) == 0 {
		return
	}
	if err := s.inventory.Restore(ctx, applied); err != nil {
		// Stock is now inconsistent with the order log; needs operator attention.
		log.Printf("ERROR: Order %s: failed to restore stock after aborted placement: %v", orderID, err)
	}
}

// UpdateOrderStatus validates the requested transition and persists it.
// Unknown order ids return common.ErrNotFound without a store write.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error) {
	if !status.IsValid() {
		return nil, common.Errorf("unknown order status %q: %w", status, common.ErrValidation)
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, common.Errorf("cannot move order from %s to %s: %w", order.Status, status, common.ErrValidation)
	}

	order.Status = status
	return s.orderRepo.Save(ctx, order)
}
