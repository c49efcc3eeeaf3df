package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONResponseBuilder(t *testing.T) {
	rec := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Test", "1").
		Payload(map[string]int{"n": 1}).
		Write(rec)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "1", rec.Header().Get("X-Test"))
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())
}

func TestRawResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	NewJSONResponse().Raw("text/plain", []byte("hello")).Write(rec)

	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "hello", rec.Body.String())
}

func TestUnencodablePayload(t *testing.T) {
	rec := httptest.NewRecorder()
	NewJSONResponse().Payload(map[string]any{"ch": make(chan int)}).Write(rec)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), CodeInternal)
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		b      *JSONResponseBuilder
		status int
		code   string
	}{
		{"bad request", BadRequestError("x"), http.StatusBadRequest, CodeBadRequest},
		{"validation", ValidationError("x"), http.StatusBadRequest, CodeValidation},
		{"bad gateway", BadGatewayError("x"), http.StatusBadGateway, CodeConnection},
		{"internal", InternalServerError(CodeQuery, "x"), http.StatusInternalServerError, CodeQuery},
		{"not found", NotFoundError(), http.StatusNotFound, CodeNotFound},
		{"method", MethodNotAllowedError(), http.StatusMethodNotAllowed, CodeMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.b.Write(rec)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"code":"`+tt.code+`"`)
		})
	}
}
