//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/CobrasOrg/auth-service/internal/app"
)

func InitializeApp() (*app.App, error) {
	panic(wire.Build(ProviderSet))
}
