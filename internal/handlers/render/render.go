package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Error kinds clients may rely on
const (
	ValidationErrorType    = "validation_error"
	ConflictErrorType      = "conflict"
	InvalidCredentialsType = "invalid_credentials"
	UnauthenticatedType    = "unauthenticated"
	NotFoundType           = "not_found"
	InternalErrorType      = "internal_error"
)

var validate = newValidator()

type Struct any

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func JSON(w http.ResponseWriter, data any) {
	JSONWithStatus(w, data, http.StatusOK)
}

// Render error of the given kind
func Error(w http.ResponseWriter, kind string, message string, code int) {
	JSONWithStatus(w, ErrorResponse{Error: kind, Message: message}, code)
}

func ValidationError(w http.ResponseWriter, message string) {
	Error(w, ValidationErrorType, message, http.StatusBadRequest)
}

// Conflict is rendered as 400 as well: clients treat it as one more kind of bad input
func Conflict(w http.ResponseWriter, message string) {
	Error(w, ConflictErrorType, message, http.StatusBadRequest)
}

func InvalidCredentials(w http.ResponseWriter) {
	Error(w, InvalidCredentialsType, "Invalid username or password", http.StatusUnauthorized)
}

func Unauthenticated(w http.ResponseWriter) {
	Error(w, UnauthenticatedType, "Authentication required", http.StatusUnauthorized)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, NotFoundType, message, http.StatusNotFound)
}

// Details stay in server logs only
func InternalError(w http.ResponseWriter) {
	Error(w, InternalErrorType, "Internal server error", http.StatusInternalServerError)
}

// Render json DecodeError
func DecodeError(w http.ResponseWriter, err error) {
	message := ""

	// Try to provide more specific error message based on error type
	var (
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
		sizeErr   *http.MaxBytesError
	)
	switch {
	case errors.As(err, &typeErr):
		message = fmt.Sprintf("Invalid data type for field '%s'", typeErr.Field)
	case errors.As(err, &syntaxErr):
		message = fmt.Sprintf("Failed to parse JSON: %s", syntaxErr.Error())
	case errors.As(err, &sizeErr):
		message = fmt.Sprintf("Request body is too large (limit %d bytes)", sizeErr.Limit)
	case errors.Is(err, io.EOF):
		message = "Request body is empty"
	default:
		message = "Failed to parse JSON"
	}

	ValidationError(w, message)
}

// Render ValidationErrors
func ValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	response := ErrorResponse{
		Error:   ValidationErrorType,
		Message: "Request validation failed",
		Fields:  make(map[string]string, len(errs)),
	}

	for _, fieldError := range errs {
		response.Fields[fieldError.Field()] = fieldMessage(fieldError)
	}

	JSONWithStatus(w, response, http.StatusBadRequest)
}

// BindAndValidate decodes JSON request body into type T and validates it using struct tags.
// Returns the decoded value and writes appropriate error responses for decoding or validation failures.
func BindAndValidate[T Struct](w http.ResponseWriter, r *http.Request) (T, error) {
	var value T

	err := json.NewDecoder(r.Body).Decode(&value)
	if err != nil {
		DecodeError(w, err)
		return value, err
	}

	if err := Validate(w, value); err != nil {
		return value, err
	}

	return value, nil
}

// Validate value by struct tags and render validation errors if any
func Validate(w http.ResponseWriter, value any) error {
	err := validate.Struct(value)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		ValidationErrors(w, errs)
	} else {
		InternalError(w)
	}

	return err
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
