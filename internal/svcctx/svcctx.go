// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/promptvault/promptvault/internal/auth"
	"github.com/promptvault/promptvault/internal/config"
	"github.com/promptvault/promptvault/internal/cost"
	"github.com/promptvault/promptvault/internal/home"
	"github.com/promptvault/promptvault/internal/pricing"
	"github.com/promptvault/promptvault/internal/providers"
	"github.com/promptvault/promptvault/internal/store"
	"github.com/promptvault/promptvault/internal/usage"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Store         *store.Store
	Registry      *providers.Registry
	Auth          *auth.Service
	Calculator    *cost.Calculator
	PricingTable  *pricing.Table
	ConfigManager *config.Manager
	UsageRecorder *usage.Recorder
	UsageQuery    *usage.Query
	Logger        *slog.Logger
	Home          *home.Dir
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// StoreFrom extracts the database store from context.
func StoreFrom(ctx context.Context) *store.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.Store
	}
	return nil
}

// RegistryFrom extracts the provider registry from context.
func RegistryFrom(ctx context.Context) *providers.Registry {
	if s := ServicesFrom(ctx); s != nil {
		return s.Registry
	}
	return nil
}

// AuthFrom extracts the auth service from context.
func AuthFrom(ctx context.Context) *auth.Service {
	if s := ServicesFrom(ctx); s != nil {
		return s.Auth
	}
	return nil
}

// CalculatorFrom extracts the cost calculator from context.
func CalculatorFrom(ctx context.Context) *cost.Calculator {
	if s := ServicesFrom(ctx); s != nil {
		return s.Calculator
	}
	return nil
}

// PricingTableFrom extracts the pricing table from context.
func PricingTableFrom(ctx context.Context) *pricing.Table {
	if s := ServicesFrom(ctx); s != nil {
		return s.PricingTable
	}
	return nil
}

// ConfigManagerFrom extracts the config manager from context.
func ConfigManagerFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.ConfigManager
	}
	return nil
}

// UsageRecorderFrom extracts the usage recorder from context.
func UsageRecorderFrom(ctx context.Context) *usage.Recorder {
	if s := ServicesFrom(ctx); s != nil {
		return s.UsageRecorder
	}
	return nil
}

// UsageQueryFrom extracts the usage query helper from context.
func UsageQueryFrom(ctx context.Context) *usage.Query {
	if s := ServicesFrom(ctx); s != nil {
		return s.UsageQuery
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil {
		return s.Logger
	}
	return nil
}

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}
