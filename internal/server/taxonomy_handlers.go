package server

import (
	"devhub/internal/models"
	"devhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListRoles handles GET /api/roles
// @Summary List roles
// @Tags taxonomy
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Role
// @Failure 403 {object} models.ErrorResponse
// @Router /roles [get]
func (s *Server) ListRoles(c *fiber.Ctx) error {
	roles, err := s.taxonomy.ListRoles(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(roles)
}

// CreateRole handles POST /api/roles
// @Summary Create a role
// @Tags taxonomy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.NameInput true "Name"
// @Success 201 {object} models.Role
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /roles [post]
func (s *Server) CreateRole(c *fiber.Ctx) error {
	var in service.NameInput
	if err := c.BodyParser(&in); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	role, err := s.taxonomy.CreateRole(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(role)
}

// ListCategories handles GET /api/categories
// @Summary List categories
// @Tags taxonomy
// @Produce json
// @Success 200 {array} models.Category
// @Router /categories [get]
func (s *Server) ListCategories(c *fiber.Ctx) error {
	categories, err := s.taxonomy.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(categories)
}

// GetCategory handles GET /api/categories/:id
// @Summary Get a category
// @Tags taxonomy
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} models.Category
// @Failure 404 {object} models.ErrorResponse
// @Router /categories/{id} [get]
func (s *Server) GetCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	category, err := s.taxonomy.GetCategory(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(category)
}

// CreateCategory handles POST /api/categories
// @Summary Create a category
// @Tags taxonomy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.NameInput true "Name"
// @Success 201 {object} models.Category
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /categories [post]
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	var in service.NameInput
	if err := c.BodyParser(&in); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	category, err := s.taxonomy.CreateCategory(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// DeleteCategory handles DELETE /api/categories/:id
// @Summary Delete a category
// @Tags taxonomy
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /categories/{id} [delete]
func (s *Server) DeleteCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.taxonomy.DeleteCategory(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListTags handles GET /api/tags
// @Summary List tags
// @Tags taxonomy
// @Produce json
// @Success 200 {array} models.Tag
// @Router /tags [get]
func (s *Server) ListTags(c *fiber.Ctx) error {
	tags, err := s.taxonomy.ListTags(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(tags)
}

// GetTag handles GET /api/tags/:id
// @Summary Get a tag
// @Tags taxonomy
// @Produce json
// @Param id path int true "Tag ID"
// @Success 200 {object} models.Tag
// @Failure 404 {object} models.ErrorResponse
// @Router /tags/{id} [get]
func (s *Server) GetTag(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	tag, err := s.taxonomy.GetTag(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(tag)
}

// CreateTag handles POST /api/tags
// @Summary Create a tag
// @Tags taxonomy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.NameInput true "Name"
// @Success 201 {object} models.Tag
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /tags [post]
func (s *Server) CreateTag(c *fiber.Ctx) error {
	var in service.NameInput
	if err := c.BodyParser(&in); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	tag, err := s.taxonomy.CreateTag(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(tag)
}

// DeleteTag handles DELETE /api/tags/:id
// @Summary Delete a tag
// @Tags taxonomy
// @Security BearerAuth
// @Param id path int true "Tag ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /tags/{id} [delete]
func (s *Server) DeleteTag(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.taxonomy.DeleteTag(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
