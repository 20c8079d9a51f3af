package server

import (
	"strings"

	"devhub/internal/models"
	"devhub/internal/repository"
	"devhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListSubmissions handles GET /api/submissions
// @Summary List submissions
// @Description Newest first, optionally filtered by status and content type
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Param type query string false "game, snippet or tutorial"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} models.Paginated[models.Submission]
// @Failure 403 {object} models.ErrorResponse
// @Router /submissions [get]
func (s *Server) ListSubmissions(c *fiber.Ctx) error {
	filter := repository.SubmissionFilter{
		Status: models.ModerationStatus(strings.ToLower(strings.TrimSpace(c.Query("status")))),
		Type:   models.ContentKind(strings.ToLower(strings.TrimSpace(c.Query("type")))),
	}
	result, err := s.submissions.List(c.UserContext(), filter, parsePagination(c))
	if err != nil {
		return err
	}
	return c.JSON(withLinks(c, result))
}

// GetSubmission handles GET /api/submissions/:id
// @Summary Get a submission
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Submission ID"
// @Success 200 {object} models.Submission
// @Failure 404 {object} models.ErrorResponse
// @Router /submissions/{id} [get]
func (s *Server) GetSubmission(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	sub, err := s.submissions.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(sub)
}

// CreateSubmission handles POST /api/submissions
// @Summary Open a submission
// @Description Files a pending submission for content that has none, on behalf of its owner
// @Tags submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateSubmissionInput true "Content reference"
// @Success 201 {object} models.Submission
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /submissions [post]
func (s *Server) CreateSubmission(c *fiber.Ctx) error {
	var in service.CreateSubmissionInput
	if err := c.BodyParser(&in); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	sub, err := s.submissions.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

// UpdateSubmission handles PATCH /api/submissions/:id
// @Summary Update a submission
// @Tags submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Submission ID"
// @Param request body service.UpdateSubmissionInput true "Fields to change"
// @Success 200 {object} models.Submission
// @Failure 404 {object} models.ErrorResponse
// @Router /submissions/{id} [patch]
func (s *Server) UpdateSubmission(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in service.UpdateSubmissionInput
	if err := c.BodyParser(&in); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	sub, err := s.submissions.Update(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(sub)
}

// ResolveSubmission handles PATCH /api/submissions/:id/resolve
// @Summary Approve or reject a submission
// @Description Moves a pending submission and its content to approved or rejected in one transaction. Rejections need a comment.
// @Tags submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Submission ID"
// @Param request body service.ResolveInput true "Decision"
// @Success 200 {object} models.Submission
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /submissions/{id}/resolve [patch]
func (s *Server) ResolveSubmission(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in service.ResolveInput
	if err := c.BodyParser(&in); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	sub, err := s.submissions.Resolve(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(sub)
}

// DeleteSubmission handles DELETE /api/submissions/:id
// @Summary Delete a submission
// @Tags submissions
// @Security BearerAuth
// @Param id path int true "Submission ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /submissions/{id} [delete]
func (s *Server) DeleteSubmission(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.submissions.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
