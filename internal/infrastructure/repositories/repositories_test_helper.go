package repositories

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func mustUUID(s string) uuid.UUID {
	return uuid.MustParse(s)
}

// newTestDB opens an isolated in-memory sqlite database and creates the
// schema with raw DDL so the constraints under test (unique tx_hash,
// unique user_id on balances) match production.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		username TEXT,
		name TEXT,
		role TEXT NOT NULL DEFAULT 'USER',
		provider TEXT NOT NULL DEFAULT 'siwe',
		ethereum_address TEXT UNIQUE,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	)`)

	mustExec(t, db, `CREATE TABLE plan_payments (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		wallet_address TEXT NOT NULL,
		tx_hash TEXT NOT NULL UNIQUE,
		chain_id INTEGER,
		plan_id TEXT NOT NULL,
		plan_label TEXT NOT NULL,
		paid_amount TEXT NOT NULL,
		paid_wei TEXT NOT NULL,
		credits_granted INTEGER NOT NULL,
		block_number INTEGER,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at DATETIME,
		updated_at DATETIME
	)`)

	mustExec(t, db, `CREATE TABLE balances (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		token_credits REAL NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`)

	mustExec(t, db, `CREATE TABLE ledger_transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		token_type TEXT NOT NULL,
		raw_amount INTEGER NOT NULL DEFAULT 0,
		token_value REAL NOT NULL DEFAULT 0,
		model TEXT,
		context TEXT,
		created_at DATETIME
	)`)

	return db
}

func mustExec(t *testing.T, db *gorm.DB, sql string) {
	t.Helper()
	require.NoError(t, db.Exec(sql).Error)
}
