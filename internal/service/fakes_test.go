package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"fin-extractor/internal/models"
	"fin-extractor/internal/repository"

	"github.com/google/uuid"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[uuid.UUID]*models.User{}}
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := *user
	f.users[user.ID] = &u
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *u
	return &c, nil
}

type fakeOrgs struct {
	mu      sync.Mutex
	orgs    map[uuid.UUID]*models.Organization
	members []*models.Member
}

func newFakeOrgs() *fakeOrgs {
	return &fakeOrgs{orgs: map[uuid.UUID]*models.Organization{}}
}

func (f *fakeOrgs) CreateWithOwner(_ context.Context, org *models.Organization, member *models.Member) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, m := *org, *member
	f.orgs[org.ID] = &o
	f.members = append(f.members, &m)
	return nil
}

func (f *fakeOrgs) addMember(userID, orgID uuid.UUID, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members = append(f.members, &models.Member{
		ID:             uuid.New(),
		UserID:         userID,
		OrganizationID: orgID,
		Role:           "member",
		CreatedAt:      at,
	})
}

func (f *fakeOrgs) FirstMembership(_ context.Context, userID uuid.UUID) (*models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var first *models.Member
	for _, m := range f.members {
		if m.UserID == userID && (first == nil || m.CreatedAt.Before(first.CreatedAt)) {
			first = m
		}
	}
	if first == nil {
		return nil, repository.ErrNotFound
	}
	c := *first
	return &c, nil
}

func (f *fakeOrgs) GetMembership(_ context.Context, userID, organizationID uuid.UUID) (*models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.members {
		if m.UserID == userID && m.OrganizationID == organizationID {
			c := *m
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

// fakeTransactions orders and pages like the keyset query in TransactionRepository.
type fakeTransactions struct {
	mu  sync.Mutex
	txs []*models.Transaction
}

func (f *fakeTransactions) Create(_ context.Context, tx *models.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *tx
	f.txs = append(f.txs, &c)
	return nil
}

func (f *fakeTransactions) GetByID(_ context.Context, organizationID, id uuid.UUID) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tx := range f.txs {
		if tx.ID == id && tx.OrganizationID == organizationID {
			c := *tx
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeTransactions) ListByOrganization(_ context.Context, organizationID uuid.UUID, cursor *uuid.UUID, limit int) ([]*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var scoped []*models.Transaction
	for _, tx := range f.txs {
		if tx.OrganizationID == organizationID {
			scoped = append(scoped, tx)
		}
	}
	sort.Slice(scoped, func(i, j int) bool {
		if !scoped[i].CreatedAt.Equal(scoped[j].CreatedAt) {
			return scoped[i].CreatedAt.After(scoped[j].CreatedAt)
		}
		return scoped[i].ID.String() > scoped[j].ID.String()
	})

	if cursor != nil {
		idx := -1
		for i, tx := range scoped {
			if tx.ID == *cursor {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, nil
		}
		scoped = scoped[idx+1:]
	}

	if len(scoped) > limit {
		scoped = scoped[:limit]
	}
	out := make([]*models.Transaction, len(scoped))
	for i, tx := range scoped {
		c := *tx
		out[i] = &c
	}
	return out, nil
}

// stepClock returns a clock that advances by one second per call.
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}
