package server

import (
	"io"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"devhub/internal/models"
	"devhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// parsePagination reads the page and limit query parameters. Missing,
// malformed or non-positive values fall back to the defaults.
func parsePagination(c *fiber.Ctx) models.PageRequest {
	return models.NewPageRequest(
		c.QueryInt("page", models.DefaultPage),
		c.QueryInt("limit", models.DefaultLimit),
	)
}

// withLinks fills in the navigation links of a page from the request URL,
// keeping every other query parameter.
func withLinks[T any](c *fiber.Ctx, p *models.Paginated[T]) *models.Paginated[T] {
	query := url.Values{}
	for k, v := range c.Queries() {
		query.Set(k, v)
	}
	base := c.BaseURL() + c.Path()

	pageURL := func(n int) string {
		query.Set("page", strconv.Itoa(n))
		query.Set("limit", strconv.Itoa(p.Meta.Limit))
		return base + "?" + query.Encode()
	}

	last := max(p.Meta.TotalPages, 1)
	links := &models.PageLinks{
		First: pageURL(1),
		Last:  pageURL(last),
	}
	if p.Meta.HasPrevious {
		links.Previous = pageURL(min(p.Meta.Page-1, last))
	}
	if p.Meta.HasNext {
		links.Next = pageURL(p.Meta.Page + 1)
	}
	p.Links = links
	return p
}

// parseID extracts a route parameter by name as a positive uint.
// The error message is derived from the parameter name (e.g. "id" -> "Invalid ID",
// "userId" -> "Invalid user ID", "roleId" -> "Invalid role ID").
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError("Invalid " + humanizeParam(param))
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID", "roleId" -> "role ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	return append(words, s[start:])
}

// splitList splits a comma separated query value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// splitTags accepts tags sent either as repeated values or as one comma
// separated value.
func splitTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		out = append(out, splitList(t)...)
	}
	return out
}

// formFiles reads every file sent under field in a multipart body.
// Requests that are not multipart carry no files.
func formFiles(c *fiber.Ctx, field string) ([]service.MediaFile, error) {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, models.NewValidationError("Invalid multipart form")
	}

	headers := form.File[field]
	files := make([]service.MediaFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		files = append(files, service.MediaFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Data:        data,
		})
	}
	return files, nil
}

// formFile returns the first file sent under field, or nil.
func formFile(c *fiber.Ctx, field string) (*service.MediaFile, error) {
	files, err := formFiles(c, field)
	if err != nil || len(files) == 0 {
		return nil, err
	}
	return &files[0], nil
}
