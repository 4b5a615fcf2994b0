// Package storetest builds gateways backed by go-sqlmock for tests.
package storetest

import (
	"famlink/internal/store"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewMock(t *testing.T, opts ...store.Option) (*store.Gateway, sqlmock.Sqlmock) {
	t.Helper()
	return NewMockConfig(t, store.Config{MaxOpen: 4}, opts...)
}

func NewMockConfig(t *testing.T, cfg store.Config, opts ...store.Option) (*store.Gateway, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	gw, err := store.New(db, cfg, opts...)
	require.NoError(t, err)
	return gw, mock
}
