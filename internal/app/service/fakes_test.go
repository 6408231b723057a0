package service

import (
	"context"
	"sync"

	"medistore/internal/common"
	"medistore/internal/domain/model"
)

// In-memory repository fakes. Failure injection via the *Err fields
// lets tests exercise the compensation paths.

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[string]model.User
	saveErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]model.User)}
}

func (r *fakeUserRepo) Save(ctx context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	for id, u := range r.users {
		if u.Email == user.Email && id != user.ID {
			return nil, common.ErrConflict
		}
	}
	r.users[user.ID] = *user
	saved := *user
	return &saved, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	found := u
	return &found, nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := []model.User{}
	for _, u := range r.users {
		users = append(users, u)
	}
	return users, nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]model.Product
	saveErr  error
	saves    int
}

func newFakeProductRepo(products ...model.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[string]model.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) Save(ctx context.Context, product *model.Product) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	r.saves++
	r.products[product.ID] = *product
	saved := *product
	return &saved, nil
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	found := p
	return &found, nil
}

func (r *fakeProductRepo) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Slug == slug {
			found := p
			return &found, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeProductRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	products := []model.Product{}
	for _, p := range r.products {
		products = append(products, p)
	}
	return products, nil
}

func (r *fakeProductRepo) stock(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[id].Stock
}

type fakeOrderRepo struct {
	mu      sync.Mutex
	orders  map[string]model.Order
	saveErr error
	saves   int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]model.Order)}
}

func (r *fakeOrderRepo) Save(ctx context.Context, order *model.Order) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	r.saves++
	r.orders[order.ID] = *order
	saved := *order
	return &saved, nil
}

func (r *fakeOrderRepo) FindAll(ctx context.Context) ([]model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	orders := []model.Order{}
	for _, o := range r.orders {
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *fakeOrderRepo) FindByUserID(ctx context.Context, userID string) ([]model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	orders := []model.Order{}
	for _, o := range r.orders {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, id string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	found := o
	return &found, nil
}
