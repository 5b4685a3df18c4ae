package store

import (
	"context"
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// KVRecord is the relational shape of one key-value pair.
type KVRecord struct {
	Key   string `gorm:"primaryKey;size:512"`
	Value []byte
}

func (KVRecord) TableName() string { return "kv_records" }

// GormStore is the Postgres-backed Store used in hosted deployments
// where an embedded database is not an option.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore connects to Postgres and migrates the kv table.
func NewGormStore(databaseURL string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&KVRecord{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Write(ctx context.Context, key string, value []byte) error {
	rec := KVRecord{Key: key, Value: value}
	return s.db.WithContext(ctx).Save(&rec).Error
}

func (s *GormStore) Read(ctx context.Context, key string) ([]byte, bool, error) {
	var rec KVRecord
	err := s.db.WithContext(ctx).First(&rec, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return rec.Value, true, nil
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Delete(&KVRecord{}, "key = ?", key).Error
}

func (s *GormStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.db.WithContext(ctx).
		Model(&KVRecord{}).
		Where("key LIKE ?", prefix+"%").
		Order("key").
		Pluck("key", &keys).Error
	return keys, err
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
