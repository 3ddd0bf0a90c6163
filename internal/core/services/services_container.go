package services

import (
	portsrepo "github.com/jizhangapp/pft_backend/internal/core/ports/repositories"
	portssvc "github.com/jizhangapp/pft_backend/internal/core/ports/services"
	"github.com/jizhangapp/pft_backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Classification first: category and transaction services depend on it.
	container.Classification = NewClassificationService()

	container.User = NewUserService(repos.UserRepo)
	container.Category = NewCategoryService(repos.CategoryRepo, container.Classification)
	container.Transaction = NewTransactionService(
		repos.TransactionRepo,
		container.Category,
		WithClassification(container.Classification),
	)
	container.Statistics = NewStatisticsService(repos.StatisticsRepo)

	container.TokenService = NewTokenService(cfg, container.User)
	container.GoogleOAuthHandler = NewGoogleOAuthHandlerService(cfg)

	return container
}
