package repositories

import (
	"context"
	"errors"
	"time"

	"maintex-gateway/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const opTimeout = 3 * time.Second

// sessionRepository implements SessionRepository interface
type sessionRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db, now: time.Now}
}

// Get returns nil, nil for a missing or expired key
func (r *sessionRepository) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var rec models.SessionRecord
	err := r.db.WithContext(ctx).
		Where("`key` = ?", key).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if rec.Expired(r.now()) {
		return nil, nil
	}
	return rec.Value, nil
}

// Set upserts val; exp <= 0 never expires
func (r *sessionRepository) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rec := models.SessionRecord{Key: key, Value: val}
	if exp > 0 {
		rec.ExpiresAt = r.now().Add(exp).Unix()
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
		}).
		Create(&rec).Error
}

// Delete removes key
func (r *sessionRepository) Delete(key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.db.WithContext(ctx).
		Where("`key` = ?", key).
		Delete(&models.SessionRecord{}).Error
}

// Reset removes every stored session
func (r *sessionRepository) Reset() error {
	return r.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.SessionRecord{}).Error
}

// Close is a no-op; the connection is owned by the caller
func (r *sessionRepository) Close() error {
	return nil
}

// DeleteExpired purges expired rows and returns how many were removed
func (r *sessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <> 0 AND expires_at <= ?", r.now().Unix()).
		Delete(&models.SessionRecord{})
	return res.RowsAffected, res.Error
}
