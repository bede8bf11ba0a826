package ratelimit

import (
	"context"
	"errors"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// incrAttempts bounds retries of the increment transaction.
const incrAttempts = 3

// MySQL error numbers resolved by retrying.
const (
	erDupEntry     = 1062
	erLockDeadlock = 1213
)

type bucketRow struct {
	ClientKey   string    `gorm:"primaryKey;size:255"`
	WindowStart time.Time `gorm:"not null"`
	Count       int       `gorm:"not null"`
}

func (bucketRow) TableName() string { return "rate_limit_buckets" }

// GormStore shares one window counter table between replicas. Row locks
// make increment-and-check atomic across instances.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&bucketRow{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

// Incr retries the locked transaction: two transactions that both miss
// the row race their inserts, and the loser comes back with a
// duplicate-key error that a second attempt resolves against the row
// the winner created. Deadlock rollbacks retry the same way.
func (s *GormStore) Incr(ctx context.Context, key string, windowStart time.Time) (int, error) {
	return withIncrRetry(func() (int, error) {
		return s.incrOnce(ctx, key, windowStart)
	})
}

func (s *GormStore) incrOnce(ctx context.Context, key string, windowStart time.Time) (int, error) {
	var count int

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row bucketRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("client_key = ?", key).
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = bucketRow{ClientKey: key, WindowStart: windowStart, Count: 1}
			count = 1
			return tx.Create(&row).Error
		}
		if err != nil {
			return err
		}

		if !row.WindowStart.Equal(windowStart) {
			row.WindowStart = windowStart
			row.Count = 0
		}
		row.Count++
		count = row.Count

		return tx.Save(&row).Error
	})

	return count, err
}

func withIncrRetry(fn func() (int, error)) (int, error) {
	var count int
	var err error

	for attempt := 0; attempt < incrAttempts; attempt++ {
		count, err = fn()
		if err == nil || !retryableIncrErr(err) {
			break
		}
	}

	return count, err
}

func retryableIncrErr(err error) bool {
	var mysqlErr *gomysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == erDupEntry || mysqlErr.Number == erLockDeadlock
	}
	return false
}
