package server

import (
	"strings"

	"devhub/internal/middleware"
	"devhub/internal/models"
	"devhub/internal/repository"
	"devhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// contentRoutes serves the endpoints shared by games, snippets and tutorials.
type contentRoutes[T repository.Content] struct {
	svc *service.ContentService[T]
}

// register installs the shared routes on group. Routes that end in a bare
// :id are registered by the caller after its own literal paths.
func (h contentRoutes[T]) register(group fiber.Router, authRequired, staff fiber.Handler, interact []fiber.Handler) {
	group.Get("/", h.List)
	group.Get("/featured", h.Featured)
	group.Get("/me", authRequired, h.Mine)
	group.Get("/creator/:id", authRequired, h.ByCreator)
	group.Get("/pid/:pid", h.GetByPID)
	group.Post("/:pid/interact/:field", append(interact, h.Interact)...)
	group.Patch("/pub/:pid/:status", authRequired, staff, h.SetStatus)
	group.Delete("/:id", authRequired, h.Delete)
}

// List handles GET /api/<kind>s with page, limit, category, tags, search,
// engine and language query parameters. Only approved items are returned.
// @Summary List approved content
// @Tags content
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param category query int false "Category ID"
// @Param tags query string false "Comma separated tags"
// @Param search query string false "Title search"
// @Success 200 {object} object "Paginated items of the route's kind"
// @Router /games [get]
// @Router /snippets [get]
// @Router /tutorials [get]
func (h contentRoutes[T]) List(c *fiber.Ctx) error {
	filter := repository.ContentFilter{
		CategoryID: uint(max(c.QueryInt("category", 0), 0)),
		Tags:       splitList(c.Query("tags")),
		Search:     strings.TrimSpace(c.Query("search")),
		Engine:     strings.TrimSpace(c.Query("engine")),
		Language:   strings.TrimSpace(c.Query("language")),
	}

	result, err := h.svc.List(c.UserContext(), filter, parsePagination(c))
	if err != nil {
		return err
	}
	return c.JSON(withLinks(c, result))
}

// Featured handles GET /api/<kind>s/featured
// @Summary Featured content
// @Description The most popular approved items, cached per kind
// @Tags content
// @Produce json
// @Success 200 {array} object
// @Router /games/featured [get]
// @Router /snippets/featured [get]
// @Router /tutorials/featured [get]
func (h contentRoutes[T]) Featured(c *fiber.Ctx) error {
	items, err := h.svc.Featured(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(items)
}

// Mine handles GET /api/<kind>s/me
// @Summary Content created by the caller
// @Tags content
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} object "Paginated items of the route's kind"
// @Failure 401 {object} models.ErrorResponse
// @Router /games/me [get]
// @Router /snippets/me [get]
// @Router /tutorials/me [get]
func (h contentRoutes[T]) Mine(c *fiber.Ctx) error {
	userID, _ := middleware.CurrentUserID(c)
	return h.byCreator(c, userID)
}

// ByCreator handles GET /api/<kind>s/creator/:id
// @Summary Content created by a user
// @Tags content
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} object "Paginated items of the route's kind"
// @Failure 401 {object} models.ErrorResponse
// @Router /games/creator/{id} [get]
// @Router /snippets/creator/{id} [get]
// @Router /tutorials/creator/{id} [get]
func (h contentRoutes[T]) ByCreator(c *fiber.Ctx) error {
	creatorID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return h.byCreator(c, creatorID)
}

func (h contentRoutes[T]) byCreator(c *fiber.Ctx, creatorID uint) error {
	result, err := h.svc.ByCreator(c.UserContext(), creatorID, parsePagination(c))
	if err != nil {
		return err
	}
	return c.JSON(withLinks(c, result))
}

// GetByID handles GET /api/<kind>s/:id
// @Summary Get content by ID
// @Tags content
// @Produce json
// @Param id path int true "Content ID"
// @Success 200 {object} object
// @Failure 404 {object} models.ErrorResponse
// @Router /games/{id} [get]
// @Router /snippets/{id} [get]
// @Router /tutorials/{id} [get]
func (h contentRoutes[T]) GetByID(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	item, err := h.svc.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

// GetByPID handles GET /api/<kind>s/pid/:pid
// @Summary Get content by public ID
// @Tags content
// @Produce json
// @Param pid path string true "Public ID"
// @Success 200 {object} object
// @Failure 404 {object} models.ErrorResponse
// @Router /games/pid/{pid} [get]
// @Router /snippets/pid/{pid} [get]
// @Router /tutorials/pid/{pid} [get]
func (h contentRoutes[T]) GetByPID(c *fiber.Ctx) error {
	item, err := h.svc.GetByPID(c.UserContext(), c.Params("pid"))
	if err != nil {
		return err
	}
	return c.JSON(item)
}

// Similar handles GET /api/tutorials/similar/:pid
// @Summary Tutorials sharing tags with another
// @Tags content
// @Produce json
// @Param pid path string true "Public ID"
// @Success 200 {array} models.Tutorial
// @Failure 404 {object} models.ErrorResponse
// @Router /tutorials/similar/{pid} [get]
func (h contentRoutes[T]) Similar(c *fiber.Ctx) error {
	items, err := h.svc.Similar(c.UserContext(), c.Params("pid"))
	if err != nil {
		return err
	}
	return c.JSON(items)
}

// Interact handles POST /api/<kind>s/:pid/interact/:field
// @Summary Record an interaction
// @Description Increments one counter of an approved item
// @Tags content
// @Param pid path string true "Public ID"
// @Param field path string true "views, likes, stars, downloads or forks"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /games/{pid}/interact/{field} [post]
// @Router /snippets/{pid}/interact/{field} [post]
// @Router /tutorials/{pid}/interact/{field} [post]
func (h contentRoutes[T]) Interact(c *fiber.Ctx) error {
	field := models.InteractionField(strings.ToLower(c.Params("field")))
	if err := h.svc.AddInteraction(c.UserContext(), c.Params("pid"), field); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetStatus handles PATCH /api/<kind>s/pub/:pid/:status
// @Summary Set the moderation status
// @Tags content
// @Produce json
// @Security BearerAuth
// @Param pid path string true "Public ID"
// @Param status path string true "pending, approved or rejected"
// @Success 200 {object} repository.StatusUpdateResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /games/pub/{pid}/{status} [patch]
// @Router /snippets/pub/{pid}/{status} [patch]
// @Router /tutorials/pub/{pid}/{status} [patch]
func (h contentRoutes[T]) SetStatus(c *fiber.Ctx) error {
	status := models.ModerationStatus(strings.ToLower(c.Params("status")))
	if !status.Valid() {
		return models.NewValidationError("Invalid status: " + string(status))
	}
	result, err := h.svc.SetStatus(c.UserContext(), c.Params("pid"), status)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// Delete handles DELETE /api/<kind>s/:id
// @Summary Delete content
// @Description Owners and staff may delete; media is removed and the submission kept
// @Tags content
// @Security BearerAuth
// @Param id path int true "Content ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /games/{id} [delete]
// @Router /snippets/{id} [delete]
// @Router /tutorials/{id} [delete]
func (h contentRoutes[T]) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	userID, _ := middleware.CurrentUserID(c)
	if err := h.svc.Delete(c.UserContext(), userID, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateGame handles POST /api/games
// @Summary Submit a game
// @Description Creates a pending game with optional cover and screenshots and opens its moderation submission
// @Tags games
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param category_id formData int true "Category ID"
// @Param tags formData string false "Comma separated tags"
// @Param cover formData file false "Cover image"
// @Param screenshots formData file false "Screenshots"
// @Success 201 {object} models.Game
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /games [post]
func (s *Server) CreateGame(c *fiber.Ctx) error {
	var in service.CreateGameInput
	if err := c.BodyParser(&in); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	in.Tags = splitTags(in.Tags)

	var err error
	if in.Cover, err = formFile(c, "cover"); err != nil {
		return err
	}
	if in.Screenshots, err = formFiles(c, "screenshots"); err != nil {
		return err
	}

	userID, _ := middleware.CurrentUserID(c)
	game, err := s.games.Create(c.UserContext(), userID, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(game)
}

// UpdateGame handles PATCH /api/games/:id
// @Summary Update a game
// @Tags games
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Game ID"
// @Param request body service.UpdateGameInput true "Fields to change"
// @Success 200 {object} models.Game
// @Failure 403 {object} models.ErrorResponse
// @Router /games/{id} [patch]
func (s *Server) UpdateGame(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in service.UpdateGameInput
	if err := c.BodyParser(&in); err != nil {
		return models.NewValidationError("Invalid request body")
	}

	userID, _ := middleware.CurrentUserID(c)
	game, err := s.games.Update(c.UserContext(), userID, id, in)
	if err != nil {
		return err
	}
	return c.JSON(game)
}

// CreateSnippet handles POST /api/snippets
// @Summary Submit a snippet
// @Tags snippets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateSnippetInput true "Snippet"
// @Success 201 {object} models.Snippet
// @Failure 400 {object} models.ErrorResponse
// @Router /snippets [post]
func (s *Server) CreateSnippet(c *fiber.Ctx) error {
	var in service.CreateSnippetInput
	if err := c.BodyParser(&in); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	in.Tags = splitTags(in.Tags)

	userID, _ := middleware.CurrentUserID(c)
	snippet, err := s.snippets.Create(c.UserContext(), userID, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(snippet)
}

// UpdateSnippet handles PATCH /api/snippets/:id
// @Summary Update a snippet
// @Tags snippets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Snippet ID"
// @Param request body service.UpdateSnippetInput true "Fields to change"
// @Success 200 {object} models.Snippet
// @Failure 403 {object} models.ErrorResponse
// @Router /snippets/{id} [patch]
func (s *Server) UpdateSnippet(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in service.UpdateSnippetInput
	if err := c.BodyParser(&in); err != nil {
		return models.NewValidationError("Invalid request body")
	}

	userID, _ := middleware.CurrentUserID(c)
	snippet, err := s.snippets.Update(c.UserContext(), userID, id, in)
	if err != nil {
		return err
	}
	return c.JSON(snippet)
}

// CreateTutorial handles POST /api/tutorials
// @Summary Submit a tutorial
// @Tags tutorials
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param content formData string true "Markdown content"
// @Param category_id formData int true "Category ID"
// @Param cover formData file false "Cover image"
// @Success 201 {object} models.Tutorial
// @Failure 400 {object} models.ErrorResponse
// @Router /tutorials [post]
func (s *Server) CreateTutorial(c *fiber.Ctx) error {
	var in service.CreateTutorialInput
	if err := c.BodyParser(&in); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	in.Tags = splitTags(in.Tags)

	var err error
	if in.Cover, err = formFile(c, "cover"); err != nil {
		return err
	}

	userID, _ := middleware.CurrentUserID(c)
	tutorial, err := s.tutorials.Create(c.UserContext(), userID, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(tutorial)
}

// UpdateTutorial handles PATCH /api/tutorials/:id
// @Summary Update a tutorial
// @Tags tutorials
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tutorial ID"
// @Param request body service.UpdateTutorialInput true "Fields to change"
// @Success 200 {object} models.Tutorial
// @Failure 403 {object} models.ErrorResponse
// @Router /tutorials/{id} [patch]
func (s *Server) UpdateTutorial(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in service.UpdateTutorialInput
	if err := c.BodyParser(&in); err != nil {
		return models.NewValidationError("Invalid request body")
	}

	userID, _ := middleware.CurrentUserID(c)
	tutorial, err := s.tutorials.Update(c.UserContext(), userID, id, in)
	if err != nil {
		return err
	}
	return c.JSON(tutorial)
}
