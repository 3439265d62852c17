// Package ui hosts the terminal interface of insightview.
package ui

import (
	"context"

	"github.com/devnullvoid/insightview/internal/ui/components"
)

// RunApp creates the application and runs it until the user quits or ctx is
// cancelled.
func RunApp(ctx context.Context, deps components.Deps) error {
	app, err := components.NewApp(ctx, deps)
	if err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, app.Stop)
	defer stop()

	return app.Run()
}
