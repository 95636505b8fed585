package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"ledgervault/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.StorageService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api")

	migration := api.Group("/migration")
	migration.Get("/verify", VerifyMigration(svc))
	migration.Post("/backup", BackupMigration(svc))
	migration.Post("/to-cloud", MigrateToCloud(svc))
	migration.Get("/session", GetSession(svc))

	api.Get("/storage/health", StorageHealth(svc))
	api.Post("/files", UploadFile(svc))
}
