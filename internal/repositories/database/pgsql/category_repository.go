package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jizhangapp/pft_backend/internal/apperrors"
	"github.com/jizhangapp/pft_backend/internal/core/domain"
	portsrepo "github.com/jizhangapp/pft_backend/internal/core/ports/repositories"
	"github.com/jizhangapp/pft_backend/internal/models"
	"github.com/jizhangapp/pft_backend/internal/utils/mapping"
)

type PgxCategoryRepository struct {
	db *pgxpool.Pool
}

func newPgxCategoryRepository(db *pgxpool.Pool) portsrepo.CategoryRepositoryFacade {
	return &PgxCategoryRepository{db: db}
}

// Ensure PgxCategoryRepository implements portsrepo.CategoryRepositoryFacade
var _ portsrepo.CategoryRepositoryFacade = (*PgxCategoryRepository)(nil)

func scanCategory(row pgx.Row) (*models.Category, error) {
	var m models.Category
	err := row.Scan(
		&m.CategoryID,
		&m.UserID,
		&m.Name,
		&m.Type,
		&m.Color,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgxCategoryRepository) SaveCategory(ctx context.Context, category domain.Category) error {
	modelCategory := mapping.ToModelCategory(category)
	query := `
        INSERT INTO categories (category_id, user_id, name, type, color,
            created_at, created_by, last_updated_at, last_updated_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
    `
	_, err := r.db.Exec(ctx, query,
		modelCategory.CategoryID,
		modelCategory.UserID,
		modelCategory.Name,
		modelCategory.Type,
		modelCategory.Color,
		modelCategory.CreatedAt,
		modelCategory.CreatedBy,
		modelCategory.LastUpdatedAt,
		modelCategory.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation on (user_id, name, type)
			return fmt.Errorf("category %q (%s) already exists: %w", category.Name, category.Type, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save category: %w", err)
	}
	return nil
}

func (r *PgxCategoryRepository) FindCategoryByID(ctx context.Context, userID, categoryID string) (*domain.Category, error) {
	query := `
		SELECT category_id, user_id, name, type, color, created_at, created_by, last_updated_at, last_updated_by
		FROM categories
		WHERE category_id = $1 AND user_id = $2;
	`
	modelCategory, err := scanCategory(r.db.QueryRow(ctx, query, categoryID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID %s: %w", categoryID, err)
	}

	domainCategory := mapping.ToDomainCategory(*modelCategory)
	return &domainCategory, nil
}

func (r *PgxCategoryRepository) FindCategoryByName(ctx context.Context, userID, name string, categoryType domain.CategoryType) (*domain.Category, error) {
	query := `
		SELECT category_id, user_id, name, type, color, created_at, created_by, last_updated_at, last_updated_by
		FROM categories
		WHERE user_id = $1 AND name = $2 AND type = $3;
	`
	modelCategory, err := scanCategory(r.db.QueryRow(ctx, query, userID, name, string(categoryType)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find category by name: %w", err)
	}

	domainCategory := mapping.ToDomainCategory(*modelCategory)
	return &domainCategory, nil
}

func (r *PgxCategoryRepository) ListCategories(ctx context.Context, userID string, categoryType *domain.CategoryType) ([]domain.CategoryWithUsage, error) {
	// Usage counts are derived in the same read so the listing is self-consistent.
	query := `
        SELECT c.category_id, c.user_id, c.name, c.type, c.color,
               c.created_at, c.created_by, c.last_updated_at, c.last_updated_by,
               COUNT(t.transaction_id) AS usage_count
        FROM categories c
        LEFT JOIN transactions t ON t.category_id = c.category_id
        WHERE c.user_id = $1 AND ($2::text IS NULL OR c.type = $2)
        GROUP BY c.category_id
        ORDER BY c.created_at ASC, c.category_id ASC;
    `
	var typeArg *string
	if categoryType != nil {
		s := string(*categoryType)
		typeArg = &s
	}
	rows, err := r.db.Query(ctx, query, userID, typeArg)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	result := []domain.CategoryWithUsage{}
	for rows.Next() {
		var m models.Category
		var usageCount int64
		err := rows.Scan(
			&m.CategoryID,
			&m.UserID,
			&m.Name,
			&m.Type,
			&m.Color,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
			&usageCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		result = append(result, domain.CategoryWithUsage{
			Category:   mapping.ToDomainCategory(m),
			UsageCount: usageCount,
		})
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", rows.Err())
	}

	return result, nil
}

func (r *PgxCategoryRepository) CountTransactions(ctx context.Context, userID, categoryID string) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM transactions
		WHERE user_id = $1 AND category_id = $2;
	`
	var count int64
	if err := r.db.QueryRow(ctx, query, userID, categoryID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions for category %s: %w", categoryID, err)
	}
	return count, nil
}

func (r *PgxCategoryRepository) UpdateCategory(ctx context.Context, category domain.Category) error {
	modelCategory := mapping.ToModelCategory(category)
	query := `
        UPDATE categories
        SET name = $1, color = $2, last_updated_at = $3, last_updated_by = $4
        WHERE category_id = $5 AND user_id = $6;
    `
	cmdTag, err := r.db.Exec(ctx, query,
		modelCategory.Name,
		modelCategory.Color,
		modelCategory.LastUpdatedAt,
		modelCategory.LastUpdatedBy,
		modelCategory.CategoryID,
		modelCategory.UserID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("category name %q already exists: %w", category.Name, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to execute update category query: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("category not found: %w", apperrors.ErrNotFound)
	}
	return nil
}

// DeleteCategory removes a category only when no transactions reference it.
// The existence check and the delete run in one statement, so a transaction
// inserted concurrently can never orphan its category reference.
func (r *PgxCategoryRepository) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	query := `
        DELETE FROM categories c
        WHERE c.category_id = $1 AND c.user_id = $2
          AND NOT EXISTS (
              SELECT 1 FROM transactions t WHERE t.category_id = c.category_id
          );
    `
	cmdTag, err := r.db.Exec(ctx, query, categoryID, userID)
	if err != nil {
		// FK RESTRICT can still fire when a transaction lands between the
		// NOT EXISTS evaluation and the row delete.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return apperrors.ErrCategoryInUse
		}
		return fmt.Errorf("failed to delete category %s: %w", categoryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Distinguish "row missing" from "row blocked by references".
		var exists bool
		checkQuery := `SELECT EXISTS (SELECT 1 FROM categories WHERE category_id = $1 AND user_id = $2);`
		if err := r.db.QueryRow(ctx, checkQuery, categoryID, userID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check category existence: %w", err)
		}
		if exists {
			return apperrors.ErrCategoryInUse
		}
		return apperrors.ErrNotFound
	}
	return nil
}
