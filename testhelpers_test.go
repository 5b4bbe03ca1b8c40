package identity_test

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"

	identity "github.com/rwandabill/go-identity"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, identity.CreateSchema(context.Background(), db))

	t.Cleanup(func() { db.Close() })
	return db
}

func testConfig() *identity.Config {
	return &identity.Config{
		SigningKey:      "test-signing-key",
		TokenExpiration: 24,
		Issuer:          "test-issuer",
		BcryptCost:      4, // bcrypt.MinCost keeps the suite fast
		PendingPageSize: 2,
	}
}

func newTestService(t *testing.T) (*identity.Service, identity.RepositoryManager) {
	t.Helper()

	repo := identity.NewRepositoryManager(newTestDB(t))
	repo.MustValidate()
	return identity.NewService(repo, testConfig()), repo
}

// captureLogger records formatted log lines for assertions.
type captureLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *captureLogger) Debug(format string, args ...any) { l.record(format, args...) }
func (l *captureLogger) Info(format string, args ...any)  { l.record(format, args...) }
func (l *captureLogger) Error(format string, args ...any) { l.record(format, args...) }

func (l *captureLogger) record(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *captureLogger) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

func signupRequest(email string) identity.SignupRequest {
	return identity.SignupRequest{
		Email:     email,
		Password:  "password123",
		FullName:  "Jean Baptiste",
		Telephone: "0788123456",
		District:  "Gasabo",
		Sector:    "Remera",
	}
}
