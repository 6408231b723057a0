package service

import "sync"

// ProductLocks serializes stock mutations per product id. The inventory
// reconciler and the catalog's product updates take the same lock, so an
// admin restock cannot interleave with an order's read-modify-write.
//
// The registry keeps one mutex per product id ever touched and never
// evicts; it is bounded by catalog size, which stays small for this
// store. Revisit with a sharded scheme if the catalog grows past that.
type ProductLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewProductLocks() *ProductLocks {
	return &ProductLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *ProductLocks) Get(productID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[productID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[productID] = lock
	}
	return lock
}
