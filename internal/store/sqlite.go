package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/cryptox"
	"github.com/dmitrijs2005/sessionkeeper/internal/dbx"
	"github.com/dmitrijs2005/sessionkeeper/internal/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/store/migrations"
	"github.com/pressly/goose/v3"
)

// SQLiteStore persists records in a credentials(key,value) table. Saved
// biometric credentials are sealed with the device key before hitting disk;
// everything else is plain JSON.
type SQLiteStore struct {
	db      *sql.DB
	sealKey []byte
}

// NewSQLiteStore wraps an initialized database handle. sealKey must be a
// 32-byte AES key, typically cryptox.DeriveSealKey over the device secret.
func NewSQLiteStore(db *sql.DB, sealKey []byte) *SQLiteStore {
	return &SQLiteStore{db: db, sealKey: sealKey}
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		log.Fatal("failed to set goose dialect:", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the SQLite database at dsn and brings the schema up to
// date.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(ctx, db); err != nil {
		return nil, err
	}
	return db, nil
}

func get(ctx context.Context, db dbx.DBTX, key string) ([]byte, error) {
	var value []byte
	err := db.QueryRowContext(ctx, `SELECT value FROM credentials WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials[%s]: %w", key, err)
	}
	return value, nil
}

func set(ctx context.Context, db dbx.DBTX, key string, value []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO credentials (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set credentials[%s]: %w", key, err)
	}
	return nil
}

func del(ctx context.Context, db dbx.DBTX, key string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM credentials WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete credentials[%s]: %w", key, err)
	}
	return nil
}

func getJSON[T any](ctx context.Context, db dbx.DBTX, key string) (*T, error) {
	raw, err := get(ctx, db, key)
	if err != nil || raw == nil {
		return nil, err
	}
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, fmt.Errorf("failed to decode credentials[%s]: %w", key, err)
	}
	return v, nil
}

func (s *SQLiteStore) GetSession(ctx context.Context) (*models.Session, error) {
	return getJSON[models.Session](ctx, s.db, keySession)
}

func (s *SQLiteStore) GetUser(ctx context.Context) (*models.User, error) {
	return getJSON[models.User](ctx, s.db, keyUser)
}

func (s *SQLiteStore) SaveAuth(ctx context.Context, session *models.Session, user *models.User) error {
	sessJSON, err := json.Marshal(session)
	if err != nil {
		return err
	}
	userJSON, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := set(ctx, tx, keySession, sessJSON); err != nil {
			return err
		}
		return set(ctx, tx, keyUser, userJSON)
	})
}

func (s *SQLiteStore) ClearAuth(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := del(ctx, tx, keySession); err != nil {
			return err
		}
		return del(ctx, tx, keyUser)
	})
}

func (s *SQLiteStore) GetSavedCredentials(ctx context.Context) (*models.SavedCredentials, error) {
	raw, err := get(ctx, s.db, keySavedCredentials)
	if err != nil || raw == nil {
		return nil, err
	}

	var rec savedCredentialsRecord
	if err := cryptox.Open(raw, s.sealKey, &rec); err != nil {
		if !errors.Is(err, cryptox.ErrSealedDataCorrupt) {
			return nil, err
		}
		// Installs that predate sealing wrote plain JSON; either way the
		// record is obsolete.
		return nil, common.ErrLegacyCredentials
	}
	if rec.legacy() {
		return nil, common.ErrLegacyCredentials
	}
	creds := rec.SavedCredentials
	return &creds, nil
}

func (s *SQLiteStore) GetBiometricPreference(ctx context.Context) (*models.BiometricPreference, error) {
	return getJSON[models.BiometricPreference](ctx, s.db, keyBiometricPreference)
}

func (s *SQLiteStore) SaveBiometricCredentials(ctx context.Context, creds *models.SavedCredentials, pref *models.BiometricPreference) error {
	sealed, err := cryptox.Seal(savedCredentialsRecord{SavedCredentials: *creds}, s.sealKey)
	if err != nil {
		return fmt.Errorf("failed to seal saved credentials: %w", err)
	}
	prefJSON, err := json.Marshal(pref)
	if err != nil {
		return err
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := set(ctx, tx, keySavedCredentials, sealed); err != nil {
			return err
		}
		return set(ctx, tx, keyBiometricPreference, prefJSON)
	})
}

func (s *SQLiteStore) ClearBiometricCredentials(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := del(ctx, tx, keySavedCredentials); err != nil {
			return err
		}
		return del(ctx, tx, keyBiometricPreference)
	})
}
