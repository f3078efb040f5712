package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

var catalogColumns = []string{
	"id", "source_text", "target_text", "source_language", "target_language", "phonetic", "difficulty_tier",
}

type catalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new CatalogRepository implementation
func NewCatalogRepository(db *sql.DB) repository.CatalogRepository {
	return &catalogRepository{db: db}
}

// ListByScope returns catalog items in catalog order (ascending id).
func (r *catalogRepository) ListByScope(ctx context.Context, scope models.Scope) ([]models.VocabularyItem, error) {
	log := logger.FromContext(ctx).WithPrefix("catalog_repo")

	query := sqlBuilder.Select(catalogColumns...).From("vocabulary_items")
	switch {
	case scope.IsExplicit():
		log.Debug("listing catalog by explicit ids: count=%d", len(scope.WordIDs))
		query = query.Where(squirrel.Eq{"id": scope.WordIDs})
	case scope.DifficultyTier != nil:
		log.Debug("listing catalog by tier: tier=%d", *scope.DifficultyTier)
		query = query.Where(squirrel.Eq{"difficulty_tier": *scope.DifficultyTier})
	default:
		log.Debug("listing full catalog")
	}

	return r.list(ctx, query.OrderBy("id"))
}

func (r *catalogRepository) list(ctx context.Context, query squirrel.SelectBuilder) ([]models.VocabularyItem, error) {
	log := logger.FromContext(ctx).WithPrefix("catalog_repo")

	stmt, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to list vocabulary items: %v", err)
		return nil, err
	}
	defer rows.Close()

	var items []models.VocabularyItem
	for rows.Next() {
		var (
			item models.VocabularyItem
			tier sql.NullInt64
		)
		if err := rows.Scan(&item.ID, &item.SourceText, &item.TargetText, &item.SourceLanguage, &item.TargetLanguage, &item.Phonetic, &tier); err != nil {
			log.Error("failed to scan vocabulary row: %v", err)
			return nil, err
		}
		item.DifficultyTier = nullInt(tier)
		items = append(items, item)
	}
	log.Debug("found %d vocabulary items", len(items))
	return items, rows.Err()
}
