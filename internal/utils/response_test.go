package utils

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, handler fiber.Handler) (int, map[string]json.RawMessage) {
	t.Helper()
	app := fiber.New()
	app.Get("/", handler)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &fields), string(body))
	return resp.StatusCode, fields
}

func TestSendCreatedDefaultsMessage(t *testing.T) {
	status, fields := render(t, func(c *fiber.Ctx) error {
		return SendCreated(c, "", fiber.Map{"id": 7})
	})

	require.Equal(t, fiber.StatusCreated, status)
	require.JSONEq(t, `true`, string(fields["success"]))
	require.JSONEq(t, `"success"`, string(fields["message"]))
	require.JSONEq(t, `{"id":7}`, string(fields["data"]))
	require.NotContains(t, fields, "details")
}

func TestSendErrorOmitsDetails(t *testing.T) {
	status, fields := render(t, func(c *fiber.Ctx) error {
		return SendError(c, fiber.StatusNotFound, "assignment not found")
	})

	require.Equal(t, fiber.StatusNotFound, status)
	require.JSONEq(t, `false`, string(fields["success"]))
	require.JSONEq(t, `"assignment not found"`, string(fields["message"]))
	require.NotContains(t, fields, "data")
	require.NotContains(t, fields, "details")
}

func TestFailCarriesFieldDetails(t *testing.T) {
	status, fields := render(t, func(c *fiber.Ctx) error {
		return Fail(c, fiber.StatusBadRequest, "", FieldDetails{Field: "deadline", Rule: "iso8601"})
	})

	require.Equal(t, fiber.StatusBadRequest, status)
	require.JSONEq(t, `"error"`, string(fields["message"]))
	require.JSONEq(t, `{"field":"deadline","rule":"iso8601"}`, string(fields["details"]))
}
