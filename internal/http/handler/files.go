package handler

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"ledgervault/internal/service"
)

// UploadFile godoc
// @Summary      Upload a file
// @Description  Stores the file under the local upload root. Optional metadata is backed up to cloud storage.
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Param        file      formData  file    true   "file content"
// @Param        category  formData  string  true   "category directory"
// @Param        metadata  formData  string  false  "JSON object"
// @Success      201  {object}  model.StoredFile
// @Failure      400  {object}  errorPayload
// @Failure      413  {object}  errorPayload
// @Router       /api/files [post]
func UploadFile(svc service.StorageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		var metadata map[string]any
		if raw := c.FormValue("metadata"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_METADATA", "metadata must be a JSON object")
			}
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		stored, err := svc.Upload(c.UserContext(), f, fh.Filename, c.FormValue("category"), metadata)
		if err != nil {
			return writeServiceError(c, err, "could not store file")
		}
		return c.Status(fiber.StatusCreated).JSON(stored)
	}
}
