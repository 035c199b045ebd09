package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microblogTTS/internal/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DB{DbHOST: "db", DbPORT: "5432", DbUSER: "u", DbPASSWORD: "p", DbNAME: "blog", DbSSLMODE: "disable"})

	assert.Equal(t, "host=db port=5432 user=u password=p dbname=blog sslmode=disable", dsn)
}

func TestBootstrap(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := &DB{sqlx.NewDb(sqlDB, "sqlmock")}
	defer db.CloseDB()

	assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS users")
	assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS posts")

	t.Run("Схема создана", func(t *testing.T) {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
		assert.NoError(t, db.Bootstrap(context.Background()))
	})

	t.Run("Ошибка создания схемы", func(t *testing.T) {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnError(errors.New("permission denied"))
		err := db.Bootstrap(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ошибка при создании схемы")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheck_NotInitialized(t *testing.T) {
	var db *DB
	assert.Error(t, db.HealthCheck(context.Background()))
}
