//go:build wireinject
// +build wireinject

package di

import (
	"StockMon/pkg/config"
	"StockMon/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application and
// its cleanup.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Infrastructure clients
		ProvideRedisClient,

		// Repositories
		ProvideQuoteFeed,
		ProvideAlertPublisher,

		// Use cases
		ProvideForegroundLoop,
		ProvideStockService,
		ProvideStockProcessor,
		ProvideViewModel,

		// Application server
		ProvideHTTPServer,
		ProvideApp,
	)
	return nil, nil, nil
}
