package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"prodboard/internal/core"
	"prodboard/internal/validation"
)

const maxBodyBytes = 64 << 10

// errMalformedBody marks a body that is not a JSON object.
var errMalformedBody = errors.New("request body must be a JSON object")

// flexInt accepts a JSON number, a numeric string, an empty string or null.
// Dashboard clients send ports and limits both ways.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("%q is not a whole number", s)
		}
		*f = flexInt(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%s is not a whole number", data)
	}
	*f = flexInt(n)
	return nil
}

// connectionParams are sent with every report request.
type connectionParams struct {
	Host     string  `json:"host" validate:"required,max=253"`
	Port     flexInt `json:"port" validate:"gte=0,lte=65535"`
	User     string  `json:"user" validate:"max=128"`
	Password string  `json:"password" validate:"max=256"`
}

func (p connectionParams) config() core.ConnectionConfig {
	return core.ConnectionConfig{
		Host:     sanitizeInput(p.Host),
		Port:     int(p.Port),
		User:     p.User,
		Password: p.Password,
	}
}

type dashboardRequest struct {
	connectionParams
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

type rangeRequest struct {
	connectionParams
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
}

func (r rangeRequest) dateRange() (core.DateRange, error) {
	return core.ParseDateRange(r.StartDate, r.EndDate)
}

type latestRequest struct {
	connectionParams
	Limit flexInt `json:"limit" validate:"gte=0"`
}

// decodeRequest reads a JSON body into dst and validates it. An empty body is
// treated as an empty object so missing fields surface as validation errors.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: body exceeds %d bytes", errMalformedBody, tooLarge.Limit)
		}
		return fmt.Errorf("read body: %w", err)
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("{}")
	}
	if body[0] != '{' {
		return errMalformedBody
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}

	return validation.ValidateStruct(dst)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
