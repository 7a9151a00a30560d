// Package di provides dependency injection configuration for the ShelfSense server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/Ishan-Karpe/ShelfSense/internal/config"
	"github.com/Ishan-Karpe/ShelfSense/internal/di/providers"
	"github.com/Ishan-Karpe/ShelfSense/internal/logger"
	"github.com/Ishan-Karpe/ShelfSense/internal/remote"
	"github.com/Ishan-Karpe/ShelfSense/internal/shelfscan"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Backend clients
	do.Provide(injector, providers.ProvideAdminClient)
	do.Provide(injector, providers.ProvideScanner)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*remote.AdminClient](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*shelfscan.Scanner](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}
	return nil
}
