package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-service/internal/config"
	"marketplace-service/internal/db"
	"marketplace-service/internal/entity"
	"marketplace-service/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	conn, err := db.Open(ctx, config.DatabaseConfig{
		Driver:         db.DriverSQLite,
		DSN:            filepath.Join(t.TempDir(), "test.db"),
		ConnectRetries: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, migrations.AutoMigrate(ctx, conn, db.DriverSQLite, 0))
	return conn
}

func strPtr(s string) *string { return &s }

func createTemplate(t *testing.T, s *Store, title string) int64 {
	t.Helper()
	id, err := s.Templates.CreateTemplate(context.Background(), &entity.Template{Title: strPtr(title)})
	require.NoError(t, err)
	return id
}

func countRows(t *testing.T, conn *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, conn.QueryRow(query, args...).Scan(&n))
	return n
}

func TestRunInTx_Commits(t *testing.T) {
	conn := setupTestDB(t)
	store := NewStore(conn)
	ctx := context.Background()

	var id int64
	err := store.RunInTx(ctx, func(tx *Store) error {
		assert.True(t, tx.InTx())
		var err error
		id, err = tx.Templates.CreateTemplate(ctx, &entity.Template{Title: strPtr("Landing")})
		if err != nil {
			return err
		}
		return tx.Templates.ReplaceFeatures(ctx, id, []string{"Fast", "Responsive"})
	})
	require.NoError(t, err)

	got, err := store.Templates.GetTemplateByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fast", "Responsive"}, got.Features)
	assert.Empty(t, got.TechStack)
}

func TestRunInTx_RollsBackOnError(t *testing.T) {
	conn := setupTestDB(t)
	store := NewStore(conn)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.RunInTx(ctx, func(tx *Store) error {
		id, err := tx.Templates.CreateTemplate(ctx, &entity.Template{Title: strPtr("Landing")})
		if err != nil {
			return err
		}
		if err := tx.Templates.ReplaceFeatures(ctx, id, []string{"Fast"}); err != nil {
			return err
		}
		return boom
	})
	assert.Same(t, boom, err)

	assert.Equal(t, 0, countRows(t, conn, `SELECT COUNT(*) FROM templates`))
	assert.Equal(t, 0, countRows(t, conn, `SELECT COUNT(*) FROM template_features`))
}

func TestRunInTx_RollsBackOnPanic(t *testing.T) {
	conn := setupTestDB(t)
	store := NewStore(conn)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = store.RunInTx(ctx, func(tx *Store) error {
			if _, err := tx.Templates.CreateTemplate(ctx, &entity.Template{Title: strPtr("Landing")}); err != nil {
				return err
			}
			panic("unexpected")
		})
	})

	assert.Equal(t, 0, countRows(t, conn, `SELECT COUNT(*) FROM templates`))

	// the pinned connection must be back in the pool
	createTemplate(t, store, "after panic")
}

func TestRunInTx_JoinsOuterTransaction(t *testing.T) {
	conn := setupTestDB(t)
	store := NewStore(conn)
	ctx := context.Background()

	err := store.RunInTx(ctx, func(tx *Store) error {
		inner := tx.RunInTx(ctx, func(nested *Store) error {
			assert.Same(t, tx, nested)
			_, err := nested.Users.CreateUser(ctx, "Alice", "a@x.com")
			return err
		})
		require.NoError(t, inner)
		return errors.New("abort outer")
	})
	require.Error(t, err)

	assert.Equal(t, 0, countRows(t, conn, `SELECT COUNT(*) FROM users`))
}

func TestReplaceChildren(t *testing.T) {
	conn := setupTestDB(t)
	store := NewStore(conn)
	ctx := context.Background()
	id := createTemplate(t, store, "Dashboard")
	other := createTemplate(t, store, "Blog")

	require.NoError(t, InsertChildren(ctx, conn, TechStackTable, other, []string{"Hugo"}))
	require.NoError(t, ReplaceChildren(ctx, conn, TechStackTable, id, []string{"React", "Go"}))
	require.NoError(t, ReplaceChildren(ctx, conn, TechStackTable, id, []string{"Vue"}))

	values, err := ListChildren(ctx, conn, TechStackTable, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Vue"}, values)

	require.NoError(t, ReplaceChildren(ctx, conn, TechStackTable, id, []string{}))
	values, err = ListChildren(ctx, conn, TechStackTable, id)
	require.NoError(t, err)
	assert.NotNil(t, values)
	assert.Empty(t, values)

	// another parent's rows are untouched
	values, err = ListChildren(ctx, conn, TechStackTable, other)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hugo"}, values)
}

func TestTranslate_NotFoundAndDuplicate(t *testing.T) {
	conn := setupTestDB(t)
	store := NewStore(conn)
	ctx := context.Background()

	_, err := store.Users.GetUserByID(ctx, 42)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = store.Users.CreateUser(ctx, "Alice", "a@x.com")
	require.NoError(t, err)
	_, err = store.Users.CreateUser(ctx, "Alicia", "a@x.com")
	assert.True(t, errors.Is(err, ErrDuplicate), "got %v", err)
}

func TestPurchasePairIsUniqueInStorage(t *testing.T) {
	conn := setupTestDB(t)
	store := NewStore(conn)
	ctx := context.Background()

	userID, err := store.Users.CreateUser(ctx, "Alice", "a@x.com")
	require.NoError(t, err)
	templateID := createTemplate(t, store, "Portfolio")

	_, err = store.Purchases.CreatePurchase(ctx, userID, templateID)
	require.NoError(t, err)
	_, err = store.Purchases.CreatePurchase(ctx, userID, templateID)
	assert.True(t, errors.Is(err, ErrDuplicate), "got %v", err)
}

func TestTemplateList_Filters(t *testing.T) {
	conn := setupTestDB(t)
	store := NewStore(conn)
	ctx := context.Background()

	mk := func(title, category, typ string) {
		_, err := store.Templates.CreateTemplate(ctx, &entity.Template{
			Title: strPtr(title), Category: strPtr(category), Type: strPtr(typ), Style: strPtr("minimal"),
		})
		require.NoError(t, err)
	}
	mk("a", "portfolio", "website")
	mk("b", "portfolio", "landing")
	mk("c", "shop", "website")

	all, err := store.Templates.List(ctx, entity.TemplateFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", *all[0].Title, "newest first")

	filtered, err := store.Templates.List(ctx, entity.TemplateFilter{Category: "portfolio", Type: "website"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "a", *filtered[0].Title)

	none, err := store.Templates.List(ctx, entity.TemplateFilter{Style: "brutalist"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
