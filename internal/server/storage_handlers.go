package server

import (
	"errors"
	"net/url"
	"strings"

	"devhub/internal/models"
	"devhub/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// UploadFile handles POST /api/storage/upload
// @Summary Upload a file
// @Tags storage
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File"
// @Success 201 {object} storage.Object
// @Failure 400 {object} models.ErrorResponse
// @Router /storage/upload [post]
func (s *Server) UploadFile(c *fiber.Ctx) error {
	file, err := formFile(c, "file")
	if err != nil {
		return err
	}
	if file == nil {
		return models.NewValidationError("No file uploaded")
	}
	obj, err := s.files.Upload(c.UserContext(), *file)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(obj)
}

// GetFile handles GET /api/storage/:fileName
// @Summary Look up a stored file
// @Tags storage
// @Produce json
// @Param fileName path string true "Object key"
// @Success 200 {object} storage.Object
// @Failure 404 {object} models.ErrorResponse
// @Router /storage/{fileName} [get]
func (s *Server) GetFile(c *fiber.Ctx) error {
	obj, err := s.files.Stat(c.UserContext(), c.Params("fileName"))
	if err != nil {
		return err
	}
	return c.JSON(obj)
}

// DeleteFile handles DELETE /api/storage/:fileName
// @Summary Delete a stored file
// @Tags storage
// @Security BearerAuth
// @Param fileName path string true "Object key"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /storage/{fileName} [delete]
func (s *Server) DeleteFile(c *fiber.Ctx) error {
	if err := s.files.Delete(c.UserContext(), c.Params("fileName")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// mediaRoute is the path the in-memory store's URLs resolve to on this
// server, e.g. /media/:key for http://localhost:8375/media.
func mediaRoute(store *storage.MemoryStore) (string, bool) {
	base, err := url.Parse(store.URL(""))
	if err != nil {
		return "", false
	}
	prefix := strings.TrimRight(base.Path, "/")
	if prefix == "" {
		return "", false
	}
	return prefix + "/:key", true
}

// serveMedia streams objects held by the in-memory store. S3 compatible
// stores serve their own URLs.
func serveMedia(store *storage.MemoryStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("key")
		if !storage.ValidKey(key) {
			return models.NewValidationError("Invalid file name")
		}
		data, obj, err := store.Open(c.UserContext(), key)
		if errors.Is(err, storage.ErrNotFound) {
			return models.NewNotFoundError("File", key)
		}
		if err != nil {
			return models.NewInternalError(err)
		}
		if obj.ContentType != "" {
			c.Set(fiber.HeaderContentType, obj.ContentType)
		}
		c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
		return c.Send(data)
	}
}
