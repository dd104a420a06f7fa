package http

import (
	"log"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yahayabawa/maktaba/internal/apperror"
	"github.com/yahayabawa/maktaba/internal/auth"
)

// Response is the envelope every endpoint answers with. Pagination fields
// are present only on list endpoints that page.
type Response struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message,omitempty"`
	Data        any      `json:"data,omitempty"`
	Fields      []string `json:"fields,omitempty"`
	Count       *int     `json:"count,omitempty"`
	Total       *int64   `json:"total,omitempty"`
	TotalPages  *int     `json:"totalPages,omitempty"`
	CurrentPage *int     `json:"currentPage,omitempty"`
	Stack       string   `json:"stack,omitempty"`
}

// respondData sends a 200 OK envelope with data.
func respondData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// respondMessage sends a 200 OK envelope with a message and optional data.
func respondMessage(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

// respondCreated sends a 201 Created envelope.
func respondCreated(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

// respondList sends a 200 OK envelope with data and a count.
func respondList(c *gin.Context, data any, count int) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Count: &count})
}

// respondPage sends a paginated list envelope.
func respondPage(c *gin.Context, data any, count int, total int64, page, limit int) {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	c.JSON(http.StatusOK, Response{
		Success:     true,
		Data:        data,
		Count:       &count,
		Total:       &total,
		TotalPages:  &totalPages,
		CurrentPage: &page,
	})
}

// respondError translates any error through the apperror taxonomy. Internal
// errors are logged with their context and never exposed to the client.
// Outside release mode the underlying cause is echoed in the stack field.
func respondError(c *gin.Context, err error, context string) {
	appErr := apperror.From(err)
	if appErr.Kind == apperror.KindInternal {
		log.Printf("Internal error (%s): %v", context, appErr.Unwrap())
	}
	resp := Response{
		Success: false,
		Message: appErr.Message,
		Fields:  appErr.Fields,
	}
	if gin.Mode() != gin.ReleaseMode {
		if cause := appErr.Unwrap(); cause != nil {
			resp.Stack = cause.Error()
		}
	}
	c.JSON(appErr.StatusCode(), resp)
}

// currentUserID returns the authenticated caller's ID, or zero on public
// routes.
func currentUserID(c *gin.Context) uint {
	if user := auth.CurrentUser(c); user != nil {
		return user.ID
	}
	return 0
}

// parseIDParam reads a positive integer path parameter.
func parseIDParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperror.NewBadID(name)
	}
	return uint(id), nil
}

// parseIntQuery reads an integer query parameter with a fallback.
func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

// parseBoolQuery reports whether the query parameter is set to a truthy
// value.
func parseBoolQuery(c *gin.Context, name string) bool {
	switch c.Query(name) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// parseFormInt parses a form value, treating garbage as zero so that
// entity validation reports the missing field.
func parseFormInt(raw string) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return v
}

// filepathExt returns the extension of a public upload path.
func filepathExt(publicPath string) string {
	return path.Ext(publicPath)
}
