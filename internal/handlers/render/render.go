package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/nkiryanov/behubadmin/internal/apperrors"
)

const (
	ValidationErrorType  = "validation_failed"
	DecodingErrorType    = "decoding_failed"
	ServiceErrorType     = "service_error"
	AuthExpiredErrorType = "auth_expired"
)

var validate = newValidator()

type Struct any

type ErrorResponse struct {
	Error    string              `json:"error"`
	Message  string              `json:"message,omitempty"`
	Fields   map[string][]string `json:"fields,omitempty"`
	Redirect string              `json:"redirect,omitempty"`
}

func JSON(w http.ResponseWriter, data any) {
	JSONWithStatus(w, data, http.StatusOK)
}

// Render ServiceError
func ServiceError(w http.ResponseWriter, error string, code int) {
	response := ErrorResponse{
		Error:   ServiceErrorType,
		Message: error,
	}

	JSONWithStatus(w, response, code)
}

// Render redirect-to-login signal. Status is 401 so API callers don't follow it blindly
func AuthExpired(w http.ResponseWriter, redirect string) {
	response := ErrorResponse{
		Error:    AuthExpiredErrorType,
		Redirect: redirect,
	}

	JSONWithStatus(w, response, http.StatusUnauthorized)
}

// Render json DecodeError
func DecodeError(w http.ResponseWriter, err error) {
	response := ErrorResponse{
		Error:   DecodingErrorType,
		Message: "",
	}

	// Try to provide more specific error message based on error type
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		response.Message = fmt.Sprintf("Invalid data type for field '%s'", typeErr.Field)
	default:
		response.Message = fmt.Sprintf("Failed to parse JSON: %s", err.Error())
	}

	JSONWithStatus(w, response, http.StatusBadRequest)
}

// Render ValidationErrors of request validation
func ValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	fields := make(map[string][]string, len(errs))
	for _, fieldError := range errs {
		fields[fieldError.Field()] = append(fields[fieldError.Field()], fieldMessage(fieldError))
	}

	JSONWithStatus(w, ErrorResponse{
		Error:   ValidationErrorType,
		Message: "Request validation failed",
		Fields:  fields,
	}, http.StatusBadRequest)
}

// Render field errors found by services or reported by the BeHub API
func FieldErrors(w http.ResponseWriter, err *apperrors.ValidationError) {
	code := err.StatusCode
	if code < 400 || code >= 500 {
		code = http.StatusBadRequest
	}

	JSONWithStatus(w, ErrorResponse{
		Error:   ValidationErrorType,
		Message: err.Message,
		Fields:  err.Fields,
	}, code)
}

// Bind decodes JSON request body into type T, validation is left to the caller.
// Writes DecodeError response on failure.
func Bind[T Struct](w http.ResponseWriter, r *http.Request) (T, error) {
	var value T

	err := json.NewDecoder(r.Body).Decode(&value)
	if err != nil {
		DecodeError(w, err)
		return value, err
	}

	return value, nil
}

// BindAndValidate decodes JSON request body into type T and validates it using struct tags.
// Returns the decoded value and writes appropriate error responses for decoding or validation failures.
func BindAndValidate[T Struct](w http.ResponseWriter, r *http.Request) (T, error) {
	value, err := Bind[T](w, r)
	if err != nil {
		return value, err
	}

	err = validate.Struct(value)
	if err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return value, err
		}
		ValidationErrors(w, errs)
		return value, err
	}

	return value, nil
}

// JSONWithStatus sends data as json and enforces status code
func JSONWithStatus(w http.ResponseWriter, data any, code int) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)

	if err := enc.Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}
