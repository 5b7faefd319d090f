package utils

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/itchan-dev/authgate/shared/api"
	"github.com/itchan-dev/authgate/shared/errors"
	"github.com/itchan-dev/authgate/shared/logger"
)

// maxBodyBytes bounds decoded request bodies.
const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names in validation messages
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}

// WriteErrorAndStatusCode writes {"error": msg}. Untyped errors become a
// generic 500 so internal details never reach the client.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	var e *errors.ErrorWithStatusCode
	if stderrors.As(err, &e) {
		WriteJSON(w, e.StatusCode, api.ErrorResponse{Error: e.Message})
		return
	}
	logger.Log.Error("unhandled error", "error", err)
	WriteJSON(w, http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
}

func DecodeValidate(r io.Reader, body any) error {
	if err := Decode(r, body); err != nil {
		return err
	}
	if err := validate.Struct(body); err != nil {
		logger.Log.Debug("request validation failed", "error", err)
		var fieldErrs validator.ValidationErrors
		if stderrors.As(err, &fieldErrs) {
			fields := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields = append(fields, fe.Field())
			}
			return errors.Validation("Invalid or missing fields: " + strings.Join(fields, ", "))
		}
		return errors.Validation("Invalid request")
	}
	return nil
}

func Decode(r io.Reader, body any) error {
	if err := json.NewDecoder(io.LimitReader(r, maxBodyBytes)).Decode(body); err != nil {
		logger.Log.Debug("failed to decode body", "error", err)
		return errors.Validation("Body is invalid json")
	}
	return nil
}
