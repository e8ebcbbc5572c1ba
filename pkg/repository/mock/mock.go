// Package mock provides hand-rolled in-memory repo implementations for
// handler tests.
package mock

import (
	"context"
	"fmt"

	"github.com/craftwork/handwerk/pkg/models"
)

type Mocks struct {
	AccountRepo *mockAccountRepo
	ProfileRepo *mockProfileRepo
}

func NewMocks() *Mocks {
	return &Mocks{
		AccountRepo: &mockAccountRepo{},
		ProfileRepo: &mockProfileRepo{},
	}
}

type mockAccountRepo struct {
	Stored    *models.Account
	CreateErr error
}

func (m *mockAccountRepo) CreateAccount(ctx context.Context, a *models.Account) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	if m.Stored != nil && m.Stored.Email == a.Email {
		return 0, fmt.Errorf("account %q: %w", a.Email, models.ErrConflict)
	}
	m.Stored = &models.Account{ID: 1, Email: a.Email, Role: a.Role, FirstName: a.FirstName, LastName: a.LastName, PasswordHash: a.PasswordHash}
	return 1, nil
}

func (m *mockAccountRepo) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	if m.Stored != nil && m.Stored.ID == id {
		return m.Stored, nil
	}
	return nil, nil
}

func (m *mockAccountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if m.Stored != nil && m.Stored.Email == email {
		return m.Stored, nil
	}
	return nil, nil
}

func (m *mockAccountRepo) UpdateAccount(ctx context.Context, a *models.Account) error {
	m.Stored = a
	return nil
}

func (m *mockAccountRepo) DeleteAccount(ctx context.Context, id int64) error {
	if m.Stored != nil && m.Stored.ID == id {
		m.Stored = nil
	}
	return nil
}

type mockProfileRepo struct {
	Customer   *models.CustomerProfile
	Craftsman  *models.CraftsmanProfile
	Matches    []models.CraftsmanProfile
	CreateErr  error
	MatchesErr error
}

func (m *mockProfileRepo) CreateCustomerProfile(ctx context.Context, p *models.CustomerProfile) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Customer = p
	return nil
}

func (m *mockProfileRepo) GetCustomerProfile(ctx context.Context, accountID int64) (*models.CustomerProfile, error) {
	if m.Customer != nil && m.Customer.AccountID == accountID {
		return m.Customer, nil
	}
	return nil, nil
}

func (m *mockProfileRepo) UpdateCustomerProfile(ctx context.Context, p *models.CustomerProfile) error {
	m.Customer = p
	return nil
}

func (m *mockProfileRepo) CreateCraftsmanProfile(ctx context.Context, p *models.CraftsmanProfile) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Craftsman = p
	return nil
}

func (m *mockProfileRepo) GetCraftsmanProfile(ctx context.Context, accountID int64) (*models.CraftsmanProfile, error) {
	if m.Craftsman != nil && m.Craftsman.AccountID == accountID {
		return m.Craftsman, nil
	}
	return nil, nil
}

func (m *mockProfileRepo) UpdateCraftsmanProfile(ctx context.Context, p *models.CraftsmanProfile) error {
	m.Craftsman = p
	return nil
}

func (m *mockProfileRepo) SetCraftsmanVerified(ctx context.Context, accountID int64, verified bool) error {
	if m.Craftsman == nil || m.Craftsman.AccountID != accountID {
		return fmt.Errorf("craftsman profile %d: %w", accountID, models.ErrNotFound)
	}
	m.Craftsman.IsVerified = verified
	return nil
}

func (m *mockProfileRepo) FindMatches(ctx context.Context, trade, zip string) ([]models.CraftsmanProfile, error) {
	if m.MatchesErr != nil {
		return nil, m.MatchesErr
	}
	return m.Matches, nil
}
