package store

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/models"
)

// MemoryStore is an in-memory Store used by tests and by ephemeral setups
// that do not want on-disk persistence.
type MemoryStore struct {
	mu      sync.Mutex
	session *models.Session
	user    *models.User
	creds   *models.SavedCredentials
	pref    *models.BiometricPreference

	// legacyCreds simulates a record in an obsolete shape.
	legacyCreds bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) GetSession(ctx context.Context) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyOf(m.session), nil
}

func (m *MemoryStore) GetUser(ctx context.Context) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyOf(m.user), nil
}

func (m *MemoryStore) SaveAuth(ctx context.Context, session *models.Session, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = copyOf(session)
	m.user = copyOf(user)
	return nil
}

func (m *MemoryStore) ClearAuth(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	m.user = nil
	return nil
}

func (m *MemoryStore) GetSavedCredentials(ctx context.Context) (*models.SavedCredentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.legacyCreds {
		return nil, common.ErrLegacyCredentials
	}
	return copyOf(m.creds), nil
}

func (m *MemoryStore) GetBiometricPreference(ctx context.Context) (*models.BiometricPreference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyOf(m.pref), nil
}

func (m *MemoryStore) SaveBiometricCredentials(ctx context.Context, creds *models.SavedCredentials, pref *models.BiometricPreference) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = copyOf(creds)
	m.pref = copyOf(pref)
	m.legacyCreds = false
	return nil
}

func (m *MemoryStore) ClearBiometricCredentials(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = nil
	m.pref = nil
	m.legacyCreds = false
	return nil
}

// SetLegacyCredentials makes subsequent GetSavedCredentials calls report an
// obsolete record, as a pre-migration install would.
func (m *MemoryStore) SetLegacyCredentials() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.legacyCreds = true
}

func copyOf[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
