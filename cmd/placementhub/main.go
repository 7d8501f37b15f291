package main

import (
	"PlacementHub/internal/bootstrap"
	pkg "PlacementHub/pkg/routes"

	"go.uber.org/fx"
)

func main() {
	bootstrap.Loadenv()
	app := fx.New(
		fx.WithLogger(pkg.FxLogger),
		pkg.EchoModules,
	)

	app.Run()
}
