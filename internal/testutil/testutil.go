package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/vytor/wordflash/internal/db"
	"github.com/vytor/wordflash/internal/models"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The pool is pinned to one connection so every query sees the same memory database.
func NewTestDB(t *testing.T) *sql.DB {
	sqlDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(context.Background(), sqlDB), "failed to apply migrations")
	return sqlDB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// SeedVocabulary inserts catalog rows directly; the core itself never writes the catalog.
func SeedVocabulary(t *testing.T, sqlDB *sql.DB, items ...models.VocabularyItem) {
	for _, item := range items {
		_, err := sqlDB.Exec(`
INSERT INTO vocabulary_items (id, source_text, target_text, source_language, target_language, phonetic, difficulty_tier)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, item.ID, item.SourceText, item.TargetText, item.SourceLanguage, item.TargetLanguage, item.Phonetic, item.DifficultyTier)
		require.NoError(t, err, "failed to seed word %d", item.ID)
	}
}

// Word builds a catalog item with predictable texts.
func Word(id int64, tier *int) models.VocabularyItem {
	return models.VocabularyItem{
		ID:             id,
		SourceText:     fmt.Sprintf("palabra-%d", id),
		TargetText:     fmt.Sprintf("word-%d", id),
		SourceLanguage: "es-ES",
		TargetLanguage: "en-US",
		Phonetic:       fmt.Sprintf("/wɜːd %d/", id),
		DifficultyTier: tier,
	}
}

// Tier returns a pointer for DifficultyTier fields.
func Tier(n int) *int {
	return &n
}
