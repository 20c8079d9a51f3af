package server

import (
	"devhub/internal/middleware"
	"devhub/internal/models"
	"devhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/users
// @Summary Register
// @Description Create an account and return an access token
// @Tags users
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Account"
// @Success 201 {object} service.AuthResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var in service.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	result, err := s.users.Register(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// Login handles POST /api/users/login
// @Summary Login
// @Description Authenticate with an email or username and a password
// @Tags users
// @Accept json
// @Produce json
// @Param request body service.LoginInput true "Credentials"
// @Success 200 {object} service.AuthResult
// @Failure 401 {object} models.ErrorResponse
// @Router /users/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var in service.LoginInput
	if err := c.BodyParser(&in); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	result, err := s.users.Login(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// Logout handles POST /api/users/logout
// @Summary Logout
// @Description Revoke the current access token
// @Tags users
// @Security BearerAuth
// @Success 204
// @Router /users/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return models.NewUnauthorizedError("Authorization required")
	}
	if err := s.users.Logout(c.UserContext(), claims); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GitHubAuth handles GET /api/users/auth/github
// @Summary Start GitHub login
// @Tags users
// @Success 302
// @Router /users/auth/github [get]
func (s *Server) GitHubAuth(c *fiber.Ctx) error {
	target, err := s.users.GitHubAuthURL(c.UserContext())
	if err != nil {
		return err
	}
	return c.Redirect(target, fiber.StatusFound)
}

// GitHubCallback handles GET /api/users/auth/github/callback
// @Summary Complete GitHub login
// @Tags users
// @Produce json
// @Param code query string true "Authorization code"
// @Param state query string true "State issued by /users/auth/github"
// @Success 200 {object} service.AuthResult
// @Failure 401 {object} models.ErrorResponse
// @Router /users/auth/github/callback [get]
func (s *Server) GitHubCallback(c *fiber.Ctx) error {
	result, err := s.users.GitHubLogin(c.UserContext(), c.Query("code"), c.Query("state"))
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// GetUserByToken handles GET /api/users/token/:token
// @Summary Resolve a user from an access token
// @Tags users
// @Produce json
// @Param token path string true "Access token"
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /users/token/{token} [get]
func (s *Server) GetUserByToken(c *fiber.Ctx) error {
	user, err := s.users.FindByToken(c.UserContext(), c.Params("token"))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// ListUsers handles GET /api/users
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} models.Paginated[models.User]
// @Router /users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	result, err := s.users.List(c.UserContext(), parsePagination(c))
	if err != nil {
		return err
	}
	return c.JSON(withLinks(c, result))
}

// ListUsersWithRoles handles GET /api/users/roles
// @Summary List users that hold a role
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.User
// @Failure 403 {object} models.ErrorResponse
// @Router /users/roles [get]
func (s *Server) ListUsersWithRoles(c *fiber.Ctx) error {
	users, err := s.users.ListWithRoles(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// GetMe handles GET /api/users/me
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	userID, _ := middleware.CurrentUserID(c)
	user, err := s.users.Get(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// GetUser handles GET /api/users/:id
// @Summary Get a user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	user, err := s.users.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// UpdateUser handles PATCH /api/users/:id
// @Summary Update a profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body service.UpdateUserInput true "Fields to change"
// @Success 200 {object} models.User
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/{id} [patch]
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in service.UpdateUserInput
	if err := c.BodyParser(&in); err != nil {
		return models.NewValidationError("Invalid request body")
	}

	actorID, _ := middleware.CurrentUserID(c)
	user, err := s.users.Update(c.UserContext(), actorID, id, in)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// UpdateProfilePictures handles PATCH /api/users/profile/pictures/:id
// @Summary Replace avatar and cover pictures
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param avatar formData file false "Avatar"
// @Param cover formData file false "Cover"
// @Success 200 {object} models.User
// @Router /users/profile/pictures/{id} [patch]
func (s *Server) UpdateProfilePictures(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	avatar, err := formFile(c, "avatar")
	if err != nil {
		return err
	}
	cover, err := formFile(c, "cover")
	if err != nil {
		return err
	}

	actorID, _ := middleware.CurrentUserID(c)
	user, err := s.users.UpdatePictures(c.UserContext(), actorID, id, avatar, cover)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// DeleteUser handles DELETE /api/users/:id
// @Summary Delete an account
// @Tags users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Router /users/{id} [delete]
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	actorID, _ := middleware.CurrentUserID(c)
	if err := s.users.Delete(c.UserContext(), actorID, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddUserRole handles PATCH /api/users/:id/roles
// @Summary Grant a role
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body object{role_id=int} true "Role"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/roles [patch]
func (s *Server) AddUserRole(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		RoleID uint `json:"role_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.RoleID == 0 {
		return models.NewValidationError("role_id is required")
	}

	user, err := s.users.AddRole(c.UserContext(), id, req.RoleID)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// RemoveUserRole handles DELETE /api/users/:userId/:roleId
// @Summary Revoke a role
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param roleId path int true "Role ID"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{userId}/{roleId} [delete]
func (s *Server) RemoveUserRole(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return err
	}
	roleID, err := parseID(c, "roleId")
	if err != nil {
		return err
	}

	user, err := s.users.RemoveRole(c.UserContext(), userID, roleID)
	if err != nil {
		return err
	}
	return c.JSON(user)
}
