package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/terraincognita07/fertyfit/internal/api"
	"github.com/terraincognita07/fertyfit/internal/services"
)

const shutdownTimeout = 10 * time.Second

func newServer(app *Application) (*fiber.App, error) {
	handler, err := api.NewHandler(app.Config.JWT.Secret, app.Location, app.Services, app.Logger)
	if err != nil {
		return nil, fmt.Errorf("handler init failed: %w", err)
	}

	server := fiber.New(fiber.Config{
		AppName:               "FertyFit",
		DisableStartupMessage: true,
	})
	server.Use(recover.New())
	server.Use(fiberlogger.New())
	server.Use(compress.New())
	api.RegisterRoutes(server, handler)
	return server, nil
}

// serve blocks until ctx is cancelled or the listener fails. The rule sweep
// runs in the background for as long as the server is up.
func serve(ctx context.Context, app *Application) error {
	server, err := newServer(app)
	if err != nil {
		return err
	}

	lifecycleCtx, cancelLifecycle := context.WithCancel(ctx)
	defer cancelLifecycle()
	app.Sweep.Start(lifecycleCtx, app.Config.Rules.SweepInterval, services.TriggerDailyCheck, services.TriggerAgeCheck)

	go func() {
		<-lifecycleCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.ShutdownWithContext(shutdownCtx); err != nil {
			app.Logger.Warnf("server shutdown failed: %v", err)
		}
	}()

	app.Logger.Infof("FertyFit listening on http://0.0.0.0:%s (db: %s, tz: %s)", app.Config.App.Port, app.Config.Database.Driver, app.Location.String())
	if err := server.Listen(":" + app.Config.App.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}
