package serverutils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Question string `json:"question" validate:"required,max=10"`
	TopK     int    `json:"top_k" validate:"gte=0,lte=20"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(&sampleRequest{Question: "hola"}))

	err := ValidateRequest(&sampleRequest{TopK: 50})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields["question"])
	assert.Equal(t, "must be <= 20", verr.Fields["top_k"])
}

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAdminMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/admin", AdminMiddleware("s3cret"), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	exp := time.Now().Add(time.Hour).Unix()
	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"bad signature", "Bearer " + signed(t, "other", jwt.MapClaims{"role": "admin", "exp": exp}), http.StatusUnauthorized},
		{"wrong role", "Bearer " + signed(t, "s3cret", jwt.MapClaims{"role": "user", "exp": exp}), http.StatusForbidden},
		{"expired", "Bearer " + signed(t, "s3cret", jwt.MapClaims{"role": "admin", "exp": time.Now().Add(-time.Hour).Unix()}), http.StatusUnauthorized},
		{"admin", "Bearer " + signed(t, "s3cret", jwt.MapClaims{"role": "admin", "exp": exp}), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/notfound", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusNotFound, "FAQ not found") })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("pq: connection refused") })
	app.Get("/invalid", func(c *fiber.Ctx) error { return ValidateRequest(&sampleRequest{}) })

	tests := []struct {
		path    string
		status  int
		message string
	}{
		{"/notfound", http.StatusNotFound, "FAQ not found"},
		{"/boom", http.StatusInternalServerError, "Internal server error"},
		{"/invalid", http.StatusBadRequest, "Validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body ErrorBody
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}
