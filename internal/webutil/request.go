package webutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"kata_lens/internal/model"
)

// maxBodyBytes bounds request bodies; a base64 photo is the largest payload.
const maxBodyBytes = 32 << 20

// DecodeJSONBody decodes the request body into dst. An empty body decodes to
// the zero value. Unknown fields are ignored.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return model.NewAppError("INVALID_JSON", "Invalid JSON body", err.Error(), model.ErrInvalidInput)
	}
	return nil
}

// DecodeAndValidate decodes the body and runs Validator over dst.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if err := DecodeJSONBody(w, r, dst); err != nil {
		return err
	}
	return Validate(dst)
}

// Validate runs struct validation and converts failures into an AppError.
func Validate(dst interface{}) error {
	if err := Validator.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return NewValidationErrorResponse(verrs)
		}
		return fmt.Errorf("validate request: %w", model.ErrInvalidInput)
	}
	return nil
}
