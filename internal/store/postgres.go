package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/relaydesk/relay/internal/model"
)

// Users is the durable repository of profile records. FindByPhone returns
// (nil, nil) when no record exists; Upsert is insert-or-update keyed on
// phone with last-write-wins semantics.
type Users interface {
	FindByPhone(ctx context.Context, phone string) (*model.User, error)
	Upsert(ctx context.Context, user *model.User) error
}

// PostgresUsers implements Users with GORM over Postgres.
type PostgresUsers struct {
	db *gorm.DB
}

// NewPostgresUsers opens the database and migrates the users table.
func NewPostgresUsers(dsn string) (*PostgresUsers, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&model.User{}); err != nil {
		return nil, fmt.Errorf("failed to migrate users table: %w", err)
	}

	return &PostgresUsers{db: db}, nil
}

// FindByPhone looks up a single record by exact phone match.
func (r *PostgresUsers) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, "phone = ?", phone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user %q: %w", phone, err)
	}
	return &user, nil
}

// Upsert inserts the record or overwrites the existing row for the phone.
func (r *PostgresUsers) Upsert(ctx context.Context, user *model.User) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		UpdateAll: true,
	}).Create(user).Error
	if err != nil {
		return fmt.Errorf("upsert user %q: %w", user.Phone, err)
	}
	return nil
}

// Ping checks connectivity for readiness probes.
func (r *PostgresUsers) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
