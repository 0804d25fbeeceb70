package v0

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/danielgtaylor/huma/v2"

	"github.com/agentregistry-dev/agentconsole/internal/console/database"
	"github.com/agentregistry-dev/agentconsole/internal/console/service"
)

// consoleError translates service errors into huma status errors. fallback is
// the message of the 500 returned for anything unrecognized.
func consoleError(err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrAgentNotFound):
		return huma.Error404NotFound("Agent not found")
	case errors.Is(err, service.ErrVersionNotFound):
		return huma.Error404NotFound("Version not found")
	case errors.Is(err, service.ErrProjectNotFound):
		return huma.Error404NotFound("Project not found")
	case errors.Is(err, service.ErrCatalogItemNotFound):
		return huma.Error404NotFound("Integration not found")
	case errors.Is(err, database.ErrNotFound):
		return huma.Error404NotFound("Not found")
	case errors.Is(err, service.ErrUnauthenticated):
		return huma.Error401Unauthorized("Sign in required")
	case errors.Is(err, service.ErrNoChanges):
		return huma.Error409Conflict("No changes to save")
	case errors.Is(err, database.ErrAlreadyExists):
		return huma.Error409Conflict("Resource already exists")
	case errors.Is(err, service.ErrValidation), errors.Is(err, database.ErrInvalidInput):
		return huma.Error422UnprocessableEntity(validationMessage(err))
	case errors.Is(err, service.ErrCatalogUnavailable):
		return huma.Error502BadGateway("Catalog feed unavailable")
	}
	return huma.Error500InternalServerError(fallback, err)
}

// validationMessage strips the sentinel prefix and capitalizes the detail:
// "validation failed: project name is required" -> "Project name is required".
func validationMessage(err error) string {
	msg := err.Error()
	for _, prefix := range []string{service.ErrValidation.Error() + ": ", database.ErrInvalidInput.Error() + ": "} {
		msg = strings.TrimPrefix(msg, prefix)
	}
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return "Invalid input"
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}
