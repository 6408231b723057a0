package service

import (
	"context"
	"errors"
	"log"

	"medistore/internal/common"
	"medistore/internal/domain/model"
	"medistore/internal/domain/repository"
	"medistore/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

// StockAdjustment records the units actually removed from a product's
// stock. A clamped decrement records only what was taken, so restoring
// an adjustment never inflates stock past its pre-order level.
type StockAdjustment struct {
	ProductID string
	Applied   int
}

type InventoryService struct {
	productRepo repository.ProductRepository
	rdb         *redis.Client
	locks       *ProductLocks // shared with the catalog service
}

func NewInventoryService(productRepo repository.ProductRepository, rdb *redis.Client, locks *ProductLocks) *InventoryService {
	return &InventoryService{
		productRepo: productRepo,
		rdb:         rdb,
		locks:       locks,
	}
}

// Reconcile applies order line items to product stock, in item order.
// Unknown product ids are skipped without failing the order; stock is
// clamped at zero, so an oversized quantity drains the product rather
// than erroring. Each update is written through immediately.
//
// The returned adjustments cover every write that reached the store,
// including those before a persistence failure, so the caller can
// compensate with Restore.
func (s *InventoryService) Reconcile(ctx context.Context, items []model.OrderItem) ([]StockAdjustment, error) {
	applied := []StockAdjustment{}
	for _, item := range items {
		adj, err := s.decrement(ctx, item)
		if err != nil {
			return applied, err
		}
		if adj != nil {
			applied = append(applied, *adj)
		}
	}
	return applied, nil
}

func (s *InventoryService) decrement(ctx context.Context, item model.OrderItem) (*StockAdjustment, error) {
	lock := s.locks.Get(item.ProductID)
	lock.Lock()
	defer lock.Unlock()

	product, err := s.productRepo.FindByID(ctx, item.ProductID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			log.Printf("WARN: Inventory: skipping unknown product %s", item.ProductID)
			return nil, nil
		}
		return nil, common.Errorf("failed to load product %s: %w", item.ProductID, err)
	}

	newStock := product.Stock - item.Quantity
	if newStock < 0 {
		newStock = 0 // Don't go below 0
	}
	taken := product.Stock - newStock
	product.Stock = newStock

	if _, err := s.productRepo.Save(ctx, product); err != nil {
		return nil, common.Errorf("failed to persist stock for product %s: %w", item.ProductID, err)
	}

	if newStock == 0 {
		s.publishLowStock(ctx, product.ID)
	}
	return &StockAdjustment{ProductID: item.ProductID, Applied: taken}, nil
}

// Restore adds previously applied adjustments back, the compensating
// action for a failed order persistence.
func (s *InventoryService) Restore(ctx context.Context, adjustments []StockAdjustment) error {
	for _, adj := range adjustments {
		lock := s.locks.Get(adj.ProductID)
		lock.Lock()

		product, err := s.productRepo.FindByID(ctx, adj.ProductID)
		if err != nil {
			lock.Unlock()
			if errors.Is(err, common.ErrNotFound) {
				log.Printf("WARN: Inventory: cannot restore %d units, product %s is gone", adj.Applied, adj.ProductID)
				continue
			}
			return common.Errorf("failed to load product %s for restore: %w", adj.ProductID, err)
		}

		product.Stock += adj.Applied
		_, err = s.productRepo.Save(ctx, product)
		lock.Unlock()
		if err != nil {
			return common.Errorf("failed to restore stock for product %s: %w", adj.ProductID, err)
		}
	}
	return nil
}

// publishLowStock pushes the product id onto the restock alert queue.
// Queue failures are logged, never surfaced: an order must not fail
// because the alerting path is down.
func (s *InventoryService) publishLowStock(ctx context.Context, productID string) {
	if err := s.rdb.LPush(ctx, config.AppConfig.RestockQueueName, productID).Err(); err != nil {
		log.Printf("ERROR: Inventory: failed to publish low-stock event for product %s: %v", productID, err)
		return
	}
	log.Printf("INFO: Inventory: product %s is out of stock, restock alert queued", productID)
}
