package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/jizhangapp/pft_backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	userRepo := newPgxUserRepository(dbPool)
	categoryRepo := newPgxCategoryRepository(dbPool)
	transactionRepo := newPgxTransactionRepository(dbPool)
	statisticsRepo := newPgxStatisticsRepository(dbPool)

	return portsrepo.RepositoryProvider{
		UserRepo:        userRepo,
		CategoryRepo:    categoryRepo,
		TransactionRepo: transactionRepo,
		StatisticsRepo:  statisticsRepo,
	}
}
