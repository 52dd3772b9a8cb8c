package api

import (
	stdErrors "errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// statusError passes handler errors through huma's configured error constructor,
// so the response status follows the error rather than defaulting to 500.
func statusError(err error) error {
	if err == nil {
		return nil
	}

	var se huma.StatusError
	if stdErrors.As(err, &se) {
		return err
	}

	return huma.NewErrorWithContext(nil, http.StatusInternalServerError, "unexpected error occurred", err)
}
