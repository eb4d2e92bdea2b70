// Package kv provides a durable string-keyed store of opaque values on top
// of the kv_records table. Writes are upserts; reads of absent keys return
// ErrNotFound.
package kv

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/quransync/internal/entities"
)

var ErrNotFound = errors.New("kv: key not found")

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Repository handles all key-value database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Get(ctx context.Context, key string) ([]byte, error) {
	var rec entities.Record
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.Value, nil
}

func (r *Repository) Set(ctx context.Context, key string, value []byte) error {
	rec := entities.Record{Key: key, Value: value, UpdatedAt: time.Now()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
}

// Delete removes key. Deleting an absent key is not an error.
func (r *Repository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("key = ?", key).Delete(&entities.Record{}).Error
}

func (r *Repository) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).Model(&entities.Record{}).Order("key ASC").Pluck("key", &keys).Error
	return keys, err
}

func (r *Repository) KeysWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).Model(&entities.Record{}).
		Where(`key LIKE ? ESCAPE '\'`, likeEscaper.Replace(prefix)+"%").
		Order("key ASC").
		Pluck("key", &keys).Error
	return keys, err
}

// DeletePrefix removes every key starting with prefix and reports how many
// rows went away.
func (r *Repository) DeletePrefix(ctx context.Context, prefix string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where(`key LIKE ? ESCAPE '\'`, likeEscaper.Replace(prefix)+"%").
		Delete(&entities.Record{})
	return res.RowsAffected, res.Error
}

func (r *Repository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&entities.Record{}).Error
}
