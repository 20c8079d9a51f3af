package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"devhub/internal/models"
	"devhub/internal/repository"
	"devhub/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupMockDB creates a GORM *gorm.DB backed by sqlmock for unit tests.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func decodeError(t *testing.T, resp *http.Response) models.ErrorResponse {
	t.Helper()
	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// --- humanizeParam (pure function, no HTTP) ---

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "ID"},
		{"userId", "user ID"},
		{"roleId", "role ID"},
		{"submissionCommentId", "submission comment ID"},
		{"something", "something"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.expected, humanizeParam(tt.param))
		})
	}
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"go", "ebiten", "pixel art"}, splitTags([]string{"go, ebiten", " ", "pixel art"}))
	assert.Nil(t, splitTags(nil))
	assert.Nil(t, splitList(" , ,"))
}

// --- parsePagination ---

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	app.Get("/items", func(c *fiber.Ctx) error {
		p := parsePagination(c)
		return c.JSON(fiber.Map{"page": p.Page, "limit": p.Limit})
	})

	tests := []struct {
		query string
		page  float64
		limit float64
	}{
		{"", 1, 10},
		{"?page=3&limit=25", 3, 25},
		{"?page=0&limit=-4", 1, 10},
		{"?page=abc&limit=xyz", 1, 10},
		{"?limit=1000", 1, 100},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items"+tt.query, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			var body map[string]float64
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.page, body["page"])
			assert.Equal(t, tt.limit, body["limit"])
		})
	}
}

func TestWithLinks(t *testing.T) {
	app := fiber.New()
	app.Get("/games", func(c *fiber.Ctx) error {
		page := parsePagination(c)
		return c.JSON(withLinks(c, models.NewPaginated([]int{1, 2}, page, 25)))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "http://hub.test/games?page=2&limit=10&search=space", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var body models.Paginated[int]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotNil(t, body.Links)

	pageOf := func(raw string) string {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "/games", u.Path)
		assert.Equal(t, "space", u.Query().Get("search"))
		return u.Query().Get("page")
	}
	assert.Equal(t, "1", pageOf(body.Links.First))
	assert.Equal(t, "1", pageOf(body.Links.Previous))
	assert.Equal(t, "3", pageOf(body.Links.Next))
	assert.Equal(t, "3", pageOf(body.Links.Last))
}

func TestWithLinks_EmptyResult(t *testing.T) {
	app := fiber.New()
	app.Get("/games", func(c *fiber.Ctx) error {
		return c.JSON(withLinks(c, models.NewPaginated[int](nil, parsePagination(c), 0)))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/games", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var body models.Paginated[int]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body.Data)
	assert.Empty(t, body.Links.Previous)
	assert.Empty(t, body.Links.Next)
	assert.Contains(t, body.Links.Last, "page=1")
}

// --- parseID ---

func TestParseID(t *testing.T) {
	tests := []struct {
		param      string
		value      string
		wantStatus int
		wantMsg    string
	}{
		{"id", "42", http.StatusOK, ""},
		{"id", "abc", http.StatusBadRequest, "Invalid ID"},
		{"id", "0", http.StatusBadRequest, "Invalid ID"},
		{"id", "-3", http.StatusBadRequest, "Invalid ID"},
		{"userId", "abc", http.StatusBadRequest, "Invalid user ID"},
		{"roleId", "x", http.StatusBadRequest, "Invalid role ID"},
	}
	for _, tt := range tests {
		t.Run(tt.param+"="+tt.value, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
			app.Get("/items/:"+tt.param, func(c *fiber.Ctx) error {
				id, err := parseID(c, tt.param)
				if err != nil {
					return err
				}
				return c.JSON(fiber.Map{"id": id})
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/"+tt.value, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantMsg != "" {
				body := decodeError(t, resp)
				assert.Equal(t, tt.wantMsg, body.Message)
				assert.Equal(t, models.CodeValidation, body.Code)
			}
		})
	}
}

// --- errorHandler ---

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"app error", models.NewConflictError("taken"), http.StatusConflict, models.CodeConflict},
		{"fiber error", fiber.NewError(fiber.StatusRequestEntityTooLarge, "too big"), http.StatusRequestEntityTooLarge, ""},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, models.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body := decodeError(t, resp)
			assert.Equal(t, tt.wantStatus, body.StatusCode)
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}

// --- RolesRequired middleware ---

func rolesApp(s *Server, userID uint) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Use(func(c *fiber.Ctx) error {
		if userID != 0 {
			c.Locals("userID", userID)
		}
		return c.Next()
	})
	app.Get("/admin", s.RolesRequired(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app
}

func TestRolesRequired_Anonymous(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	s := &Server{repos: repository.New(gormDB)}

	resp, err := rolesApp(s, 0).Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRolesRequired_UnknownUser(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	s := &Server{repos: repository.New(gormDB)}

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}))

	resp, err := rolesApp(s, 7).Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRolesRequired_DatabaseError(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	s := &Server{repos: repository.New(gormDB)}

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnError(errors.New("connection reset"))

	resp, err := rolesApp(s, 7).Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, models.CodeInternal, decodeError(t, resp).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMediaRoute(t *testing.T) {
	tests := []struct {
		base  string
		route string
		ok    bool
	}{
		{"http://localhost:8375/media", "/media/:key", true},
		{"http://cdn.test/devhub-media/", "/devhub-media/:key", true},
		{"http://cdn.test", "", false},
	}
	for _, tt := range tests {
		route, ok := mediaRoute(storage.NewMemoryStore(tt.base))
		assert.Equal(t, tt.ok, ok, tt.base)
		assert.Equal(t, tt.route, route, tt.base)
	}
}
