package persistence_test

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"prodi/internal/domain/entity"
	"prodi/internal/domain/value"
	"prodi/pkg/dbtest"
)

const (
	walletA = value.Wallet("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	walletB = value.Wallet("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	walletC = value.Wallet("0xcccccccccccccccccccccccccccccccccccccccc")
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)

	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	require.NoError(t, dbtest.MigrateFromFile(db, "../../../migrations/0001_init.sql"))

	t.Cleanup(func() { _ = db.Close() })

	return db
}

var base = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC) //nolint:gochecknoglobals

func profileAt(w value.Wallet, company string, privacy value.Privacy, minutes int) entity.Profile {
	at := base.Add(time.Duration(minutes) * time.Minute)

	return entity.Profile{
		Wallet:    w,
		Company:   company,
		Type:      value.CompanyTypeProducer,
		Region:    "Volga",
		Contact:   "@" + company,
		Email:     company + "@mail.example",
		Privacy:   privacy,
		CreatedAt: at,
		UpdatedAt: at,
	}
}
