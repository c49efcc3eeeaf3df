package http

import (
	"net/http"

	"github.com/goccy/go-json"
)

// Error codes returned in the "code" field of error bodies.
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeValidation       = "VALIDATION_ERROR"
	CodeConnection       = "CONNECTION_ERROR"
	CodeQuery            = "QUERY_ERROR"
	CodeInternal         = "INTERNAL_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeRateLimited      = "RATE_LIMITED"
	CodeUnavailable      = "UNAVAILABLE"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	payload    any
	raw        []byte
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Payload sets the value encoded as the body.
func (b *JSONResponseBuilder) Payload(v any) *JSONResponseBuilder {
	b.payload = v
	return b
}

// Raw sends bytes as-is with the given content type.
func (b *JSONResponseBuilder) Raw(contentType string, body []byte) *JSONResponseBuilder {
	b.headers["Content-Type"] = contentType
	b.raw = body
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	body := b.raw
	if body == nil && b.payload != nil {
		encoded, err := json.Marshal(b.payload)
		if err != nil {
			b.statusCode = http.StatusInternalServerError
			encoded, _ = json.Marshal(ErrorBody{Error: "failed to encode response", Code: CodeInternal})
		}
		body = encoded
	}

	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(b.statusCode)
	if len(body) > 0 {
		_, _ = w.Write(body)
	}
}

// ErrorResponse creates a standard error response.
func ErrorResponse(statusCode int, code, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Payload(ErrorBody{Error: message, Code: code})
}

// BadRequestError creates a 400 response for an unreadable body.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, CodeBadRequest, message)
}

// ValidationError creates a 400 response for rejected input.
func ValidationError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, CodeValidation, message)
}

// BadGatewayError creates a 502 response for an unreachable database.
func BadGatewayError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadGateway, CodeConnection, message)
}

// InternalServerError creates a 500 response.
func InternalServerError(code, message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, code, message)
}

// NotFoundError creates a 404 response.
func NotFoundError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, CodeNotFound, "route not found")
}

// MethodNotAllowedError creates a 405 response.
func MethodNotAllowedError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
}
