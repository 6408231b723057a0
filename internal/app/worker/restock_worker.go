package worker

import (
	"context"
	"errors"
	"log"
	"time"

	"medistore/internal/domain/repository"
	"medistore/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

// RestockWorker consumes low-stock events published by the inventory
// reconciler and raises a restock alert for each depleted product.
type RestockWorker struct {
	rdb         *redis.Client
	productRepo repository.ProductRepository
}

func NewRestockWorker(rdb *redis.Client, productRepo repository.ProductRepository) *RestockWorker {
	return &RestockWorker{rdb: rdb, productRepo: productRepo}
}

func (w *RestockWorker) Start(ctx context.Context) {
	log.Println("Restock worker started, listening to queue:", config.AppConfig.RestockQueueName)
	for {
		select {
		case <-ctx.Done():
			log.Println("Restock worker stopping...")
			return
		default:
			// Blocking pop from Redis queue
			popped, err := w.rdb.BRPop(ctx, 0*time.Second, config.AppConfig.RestockQueueName).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					log.Printf("Worker BRPop exiting or timed out: %v", err)
					time.Sleep(1 * time.Second) // Avoid busy-looping on certain errors
					continue
				}
				log.Printf("ERROR: Failed to BRPop from Redis queue '%s': %v", config.AppConfig.RestockQueueName, err)
				time.Sleep(5 * time.Second) // Wait before retrying on other errors
				continue
			}

			// popped is an array: [queueName, value]
			if len(popped) < 2 || popped[1] == "" {
				log.Println("WARN: BRPop returned empty product ID.")
				continue
			}
			w.processAlert(ctx, popped[1])
		}
	}
}

// processAlert raises at most one alert per product within the dedupe
// TTL. The SetNX key is left to expire rather than released, so repeat
// depletion events inside the window stay quiet.
func (w *RestockWorker) processAlert(ctx context.Context, productID string) {
	dedupeKey := config.AppConfig.RestockAlertLockPrefix + productID
	dedupeTTL := time.Duration(config.AppConfig.RestockAlertLockTTLSecs) * time.Second

	ok, err := w.rdb.SetNX(ctx, dedupeKey, time.Now().Unix(), dedupeTTL).Result()
	if err != nil {
		log.Printf("ERROR: Failed to check alert dedupe key for product %s: %v", productID, err)
		return
	}
	if !ok {
		log.Printf("INFO: Restock alert for product %s already raised recently, skipping.", productID)
		return
	}

	product, err := w.productRepo.FindByID(ctx, productID)
	if err != nil {
		log.Printf("ERROR: Failed to fetch product %s for restock alert: %v", productID, err)
		return
	}
	if product.Stock > 0 {
		// Restocked between the event and now, nothing to report.
		log.Printf("INFO: Product %s has %d units again, alert dropped.", productID, product.Stock)
		return
	}

	// The alert sink is the process log; a delivery channel (email,
	// ticketing) can hang off this point.
	log.Printf("WARN: RESTOCK NEEDED: product %q (%s) is out of stock.", product.Name, product.ID)
}
