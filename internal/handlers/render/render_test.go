package render

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_JSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		data := map[string]any{"key1": 1, "key2": "222"}
		JSON(w, data)
	}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/test")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"key1":1,"key2":"222"}`+"\n", string(body))
}

func TestRender_Errors(t *testing.T) {
	tests := []struct {
		name         string
		render       func(w http.ResponseWriter)
		expectedCode int
		expectedBody string
	}{
		{
			name:         "validation",
			render:       func(w http.ResponseWriter) { ValidationError(w, "Bad page") },
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error": "validation_error", "message": "Bad page"}`,
		},
		{
			name:         "conflict",
			render:       func(w http.ResponseWriter) { Conflict(w, "Username already taken") },
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error": "conflict", "message": "Username already taken"}`,
		},
		{
			name:         "invalid credentials",
			render:       InvalidCredentials,
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"error": "invalid_credentials", "message": "Invalid username or password"}`,
		},
		{
			name:         "unauthenticated",
			render:       Unauthenticated,
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"error": "unauthenticated", "message": "Authentication required"}`,
		},
		{
			name:         "not found",
			render:       func(w http.ResponseWriter) { NotFound(w, "Project not found") },
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error": "not_found", "message": "Project not found"}`,
		},
		{
			name:         "internal",
			render:       InternalError,
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error": "internal_error", "message": "Internal server error"}`,
		},
		{
			name:         "custom",
			render:       func(w http.ResponseWriter) { Error(w, "teapot", "something terrible happened", http.StatusTeapot) },
			expectedCode: http.StatusTeapot,
			expectedBody: `{"error": "teapot", "message": "something terrible happened"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			tc.render(w)

			assert.Equal(t, tc.expectedCode, w.Code)
			assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.expectedBody, w.Body.String())
		})
	}
}

func TestRender_DecodeError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		value := struct {
			Key       string `json:"key"`
			OrderName int    `json:"order_name"`
		}{}

		r.Body = http.MaxBytesReader(w, r.Body, 64)
		err := json.NewDecoder(r.Body).Decode(&value)
		require.Error(t, err, "Please check what JSON was sent. Test expected that it is invalid")
		DecodeError(w, err)
	}))
	defer ts.Close()

	tests := []struct {
		name        string
		requestBody string
		expected    string
	}{
		{
			name:        "json parsing error",
			requestBody: `invalid-json`,
			expected: `{
				"error":"validation_error",
				"message": "Failed to parse JSON: invalid character 'i' looking for beginning of value"
			}`,
		},
		{
			name:        "invalid type",
			requestBody: `{"key": "valid_json", "order_name": "but incorrect type"}`,
			expected: `{
				"error": "validation_error",
				"message": "Invalid data type for field 'order_name'"
			}`,
		},
		{
			name:        "empty body",
			requestBody: ``,
			expected: `{
				"error": "validation_error",
				"message": "Request body is empty"
			}`,
		},
		{
			name:        "body too large",
			requestBody: `{"key": "` + strings.Repeat("a", 100) + `"}`,
			expected: `{
				"error": "validation_error",
				"message": "Request body is too large (limit 64 bytes)"
			}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/test", "application/json", strings.NewReader(tc.requestBody))
			require.NoError(t, err)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			defer resp.Body.Close() //nolint:errcheck

			assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
			assert.JSONEq(t, tc.expected, string(body))
		})
	}
}

func TestRender_ValidationErrors(t *testing.T) {
	validate := validator.New()

	type T struct {
		Username string `validate:"required"`
		Password string `validate:"min=6"`
		Email    string `validate:"email"`
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		invalidData := T{
			Password: "123",
			Email:    "not-valid-email",
		}

		err := validate.Struct(invalidData)
		require.Error(t, err, "test expects that data not pass validation")
		errs, ok := err.(validator.ValidationErrors)
		require.True(t, ok, "be sure you pass structure to validator")
		ValidationErrors(w, errs)
	}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/test")
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	expected, err := json.Marshal(struct {
		Error   string            `json:"error"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	}{
		Error:   "validation_error",
		Message: "Request validation failed",
		Fields: map[string]string{
			"Username": "This field is required",         // Message for 'required' tag
			"Password": "Value is too short (minimum 6)", // Message for 'min' validation tag
			"Email":    "Invalid value",                  // Unknown validation tag failed: default validation error message
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, string(expected), string(body))
}

func TestRender_BindAndValidate(t *testing.T) {
	type User struct {
		Username string   `json:"username" validate:"required,notblank,max=5"`
		Age      int      `json:"age" validate:"omitempty,min=18"`
		Site     string   `json:"site" validate:"omitempty,url"`
		Tags     []string `json:"tags" validate:"max=2"`
		Demo     *string  `json:"demo" validate:"omitnil,url_or_empty"`
	}

	tests := []struct {
		name           string
		requestBody    string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "valid request",
			requestBody:    `{"username": "john", "site": "https://example.com", "tags": ["a"]}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success": true}`,
		},
		{
			name:           "empty optional url",
			requestBody:    `{"username": "john", "demo": ""}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success": true}`,
		},
		{
			name:           "optional url",
			requestBody:    `{"username": "john", "demo": "https://example.com/demo"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success": true}`,
		},
		{
			name:           "invalid json",
			requestBody:    `invalid-json`,
			expectedStatus: http.StatusBadRequest,
			expectedBody: `{
				"error": "validation_error",
				"message": "Failed to parse JSON: invalid character 'i' looking for beginning of value"
			}`,
		},
		{
			name:           "validation failed",
			requestBody:    `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody: `{
				"error": "validation_error",
				"message": "Request validation failed",
				"fields": {
					"username": "This field is required"
				}
			}`,
		},
		{
			name:           "every field wrong",
			requestBody:    `{"username": "   ", "age": 7, "site": "not a url", "tags": ["a", "b", "c"], "demo": "not a url"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody: `{
				"error": "validation_error",
				"message": "Request validation failed",
				"fields": {
					"username": "This field must not be blank",
					"age": "Value is too small (minimum 18)",
					"site": "Value must be a valid URL",
					"tags": "Value is too long (maximum 2)",
					"demo": "Value must be a valid URL"
				}
			}`,
		},
		{
			name:           "too long",
			requestBody:    `{"username": "johnny"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody: `{
				"error": "validation_error",
				"message": "Request validation failed",
				"fields": {
					"username": "Value is too long (maximum 5)"
				}
			}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, err := BindAndValidate[User](w, r)
				if err != nil {
					return // Error response already written
				}
				// Success case
				JSON(w, map[string]bool{"success": true})
			}))
			defer ts.Close()

			resp, err := http.Post(ts.URL+"/test", "application/json", strings.NewReader(tc.requestBody))
			require.NoError(t, err)
			require.Equal(t, tc.expectedStatus, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			defer resp.Body.Close() //nolint:errcheck

			assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
			assert.JSONEq(t, tc.expectedBody, string(body))
		})
	}
}
