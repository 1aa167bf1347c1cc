package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/user/leafmarket/internal/domain"
)

// MockProductRepository is an in-memory implementation of
// domain.ProductRepository for testing. Products are kept in insertion
// order; Find methods return newest first to match the real store.
type MockProductRepository struct {
	mu       sync.Mutex
	Products []domain.Product
	nextID   int

	StoreErr  error
	FindErr   error
	UpdateErr error
	DeleteErr error
}

func (m *MockProductRepository) Store(ctx context.Context, p *domain.Product) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StoreErr != nil {
		return "", m.StoreErr
	}
	m.nextID++
	stored := *p
	stored.ID = fmt.Sprintf("prod-%d", m.nextID)
	m.Products = append(m.Products, stored)
	return stored.ID, nil
}

func (m *MockProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	out := make([]domain.Product, 0, len(m.Products))
	for i := len(m.Products) - 1; i >= 0; i-- {
		out = append(out, m.Products[i])
	}
	return out, nil
}

func (m *MockProductRepository) FindActive(ctx context.Context) ([]domain.Product, error) {
	all, err := m.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if p.Status == domain.StatusActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockProductRepository) FindActiveByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	active, err := m.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(active))
	for _, p := range active {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockProductRepository) Update(ctx context.Context, id string, fields domain.ProductUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	for i := range m.Products {
		if m.Products[i].ID != id {
			continue
		}
		p := &m.Products[i]
		if fields.Name != nil {
			p.Name = *fields.Name
		}
		if fields.Description != nil {
			p.Description = *fields.Description
		}
		if fields.Price != nil {
			p.Price = *fields.Price
		}
		if fields.Category != nil {
			p.Category = *fields.Category
		}
		if fields.Stock != nil {
			p.Stock = *fields.Stock
		}
		if fields.ImageURL != nil {
			p.ImageURL = *fields.ImageURL
		}
		if fields.Status != nil {
			p.Status = *fields.Status
		}
		return nil
	}
	return domain.ErrNotFound
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	for i := range m.Products {
		if m.Products[i].ID == id {
			m.Products = append(m.Products[:i], m.Products[i+1:]...)
			return nil
		}
	}
	return nil
}

// MockUserRepository is an in-memory domain.UserRepository. Like the
// real adapter it compares emails exactly; case-folding is the auth
// service's job.
type MockUserRepository struct {
	mu    sync.Mutex
	Users []domain.User

	StoreErr error
	FindErr  error
}

func (m *MockUserRepository) Store(ctx context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StoreErr != nil {
		return m.StoreErr
	}
	for _, existing := range m.Users {
		if existing.Email == u.Email {
			return domain.ErrDuplicate
		}
	}
	m.Users = append(m.Users, *u)
	return nil
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	for _, u := range m.Users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepository) FindByUID(ctx context.Context, uid string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	for _, u := range m.Users {
		if u.UID == uid {
			found := u
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

// MockRoleRepository is an in-memory domain.RoleRepository.
type MockRoleRepository struct {
	mu      sync.Mutex
	Records map[string]domain.RoleRecord

	StoreErr error
	FindErr  error
}

func (m *MockRoleRepository) Store(ctx context.Context, rec *domain.RoleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StoreErr != nil {
		return m.StoreErr
	}
	if m.Records == nil {
		m.Records = make(map[string]domain.RoleRecord)
	}
	m.Records[rec.UID] = *rec
	return nil
}

func (m *MockRoleRepository) FindByUID(ctx context.Context, uid string) (*domain.RoleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	rec, ok := m.Records[uid]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

// MockAssetStore records upload and delete calls for assertions.
type MockAssetStore struct {
	mu          sync.Mutex
	Uploaded    map[string][]byte
	DeletedURLs []string
	BaseURL     string

	UploadErr error
	DeleteErr error
}

func (m *MockAssetStore) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	if m.Uploaded == nil {
		m.Uploaded = make(map[string][]byte)
	}
	base := m.BaseURL
	if base == "" {
		base = "http://assets.test"
	}
	url := base + "/assets/products/" + filename
	m.Uploaded[url] = data
	return url, nil
}

func (m *MockAssetStore) DeleteByURL(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.DeletedURLs = append(m.DeletedURLs, url)
	delete(m.Uploaded, url)
	return nil
}

// MockTokenStore is an in-memory domain.TokenStore.
type MockTokenStore struct {
	mu      sync.Mutex
	Revoked map[string]bool

	RevokeErr error
	CheckErr  error
}

func (m *MockTokenStore) Revoke(ctx context.Context, jti string, ttlSeconds int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RevokeErr != nil {
		return m.RevokeErr
	}
	if m.Revoked == nil {
		m.Revoked = make(map[string]bool)
	}
	m.Revoked[jti] = true
	return nil
}

func (m *MockTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CheckErr != nil {
		return false, m.CheckErr
	}
	return m.Revoked[jti], nil
}
