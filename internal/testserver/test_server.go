// Package testserver spins up the development API server on an in-memory
// database for integration tests.
package testserver

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"marketdesk/internal/config"
	"marketdesk/internal/console"
	"marketdesk/internal/sqlite"
	"marketdesk/internal/transport"
)

type TestServer struct {
	Server     *httptest.Server
	DB         *sqlite.DB
	Activities *sqlite.ActivityRepository
	Markets    *sqlite.MarketRepository
	Users      *sqlite.UserRepository
}

func New(t *testing.T) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	// One connection keeps the shared in-memory database alive for the
	// whole test.
	db.SetMaxOpenConns(1)
	require.NoError(t, db.RunMigrations())

	activities := sqlite.NewActivityRepository(db)
	markets := sqlite.NewMarketRepository(db)
	users := sqlite.NewUserRepository(db)

	server := httptest.NewServer(transport.NewServer(activities, markets, users, nil))

	ts := &TestServer{
		Server:     server,
		DB:         db,
		Activities: activities,
		Markets:    markets,
		Users:      users,
	}

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return ts
}

// Console builds a console wired to this server.
func (ts *TestServer) Console(t *testing.T) *console.Console {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.API.BaseURL = ts.Server.URL
	return console.New(cfg, nil)
}
