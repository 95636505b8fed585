package handler

import (
	"github.com/gofiber/fiber/v2"

	"ledgervault/internal/service"
)

// VerifyMigration godoc
// @Summary      Verify ledger data
// @Description  Counts ledger rows and attachment files and starts a new migration session.
// @Tags         migration
// @Produce      json
// @Success      200  {object}  migration.VerifyResult
// @Failure      409  {object}  errorPayload
// @Failure      500  {object}  errorPayload
// @Router       /api/migration/verify [get]
func VerifyMigration(svc service.StorageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Verify(c.UserContext())
		if err != nil {
			return writeServiceError(c, err, "verification failed")
		}
		return c.JSON(res)
	}
}

// BackupMigration godoc
// @Summary      Back up the database
// @Description  Uploads a database_backup snapshot. A failed backup returns success=false.
// @Tags         migration
// @Produce      json
// @Success      200  {object}  migration.BackupResult
// @Failure      409  {object}  errorPayload
// @Router       /api/migration/backup [post]
func BackupMigration(svc service.StorageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Backup(c.UserContext())
		if err != nil {
			return writeServiceError(c, err, "backup failed")
		}
		return c.JSON(res)
	}
}

// MigrateToCloud godoc
// @Summary      Migrate attachments to cloud storage
// @Description  Copies every verified attachment to the bucket. Failed files are listed in errors.
// @Tags         migration
// @Produce      json
// @Success      200  {object}  model.MigrationResult
// @Failure      409  {object}  errorPayload
// @Failure      503  {object}  errorPayload
// @Router       /api/migration/to-cloud [post]
func MigrateToCloud(svc service.StorageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Migrate(c.UserContext())
		if err != nil {
			return writeServiceError(c, err, "migration failed")
		}
		return c.JSON(res)
	}
}

// GetSession godoc
// @Summary  Current migration session
// @Tags     migration
// @Produce  json
// @Success  200  {object}  model.MigrationSession
// @Failure  404  {object}  errorPayload
// @Router   /api/migration/session [get]
func GetSession(svc service.StorageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := svc.Session(c.UserContext())
		if err != nil {
			return writeServiceError(c, err, "session lookup failed")
		}
		return c.JSON(s)
	}
}
