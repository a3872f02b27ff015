package api

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/mindmap/pkg/errors"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the error code and message.
type ErrorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// StatusFor maps an error to its HTTP status and the code reported to
// clients. A PERSISTENCE_ERROR whose cause is NOT_FOUND, INVALID_ID or
// TIMEOUT is reported as that cause.
func StatusFor(err error) (int, errors.Code) {
	code := errors.GetCode(err)
	if code == errors.ErrCodePersistence {
		var e *errors.Error
		stderrors.As(err, &e)
		switch inner := errors.GetCode(e.Cause); inner {
		case errors.ErrCodeNotFound, errors.ErrCodeInvalidID, errors.ErrCodeTimeout:
			code = inner
		}
	}

	switch code {
	case errors.ErrCodeNotFound:
		return http.StatusNotFound, code
	case errors.ErrCodeInvalidOperation:
		return http.StatusUnprocessableEntity, code
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidID:
		return http.StatusBadRequest, code
	case errors.ErrCodePersistence, errors.ErrCodeNetwork:
		return http.StatusBadGateway, code
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout, code
	case "":
		return http.StatusInternalServerError, errors.ErrCodeInternal
	}
	return http.StatusInternalServerError, code
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := StatusFor(err)
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		if code == errors.ErrCodeInternal {
			msg = "internal error"
		}
	}
	writeJSON(w, status, ErrorBody{Error: ErrorDetail{Code: code, Message: msg}})
}

var validate = validator.New()

// decode reads a JSON body into v and validates it.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid request body")
	}
	if err := validate.Struct(v); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return errors.New(errors.ErrCodeInvalidInput, "%s", strings.Join(msgs, "; "))
}
