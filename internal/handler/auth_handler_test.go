package handler_test

import (
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/paperdrop-api/internal/dto"
	"github.com/noah-isme/paperdrop-api/internal/models"
	"github.com/noah-isme/paperdrop-api/internal/utils"
)

func TestRegistrationApprovalLoginScenario(t *testing.T) {
	app := setupApp(t)
	admin := app.seedUser(t, "Admin", "admin@example.com", models.RoleAdmin, true)

	resp, env := app.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"name":     "王小明",
		"email":    "Wang@Example.com",
		"password": testPassword,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.True(t, env.Success)
	require.Contains(t, env.Message, "pending admin approval")

	var registered dto.UserResponse
	decodeData(t, env, &registered)
	require.Equal(t, "wang@example.com", registered.Email)
	require.Equal(t, models.RoleStudent, registered.Role)
	require.False(t, registered.Approved)

	credentials := fiber.Map{"email": "wang@example.com", "password": testPassword}

	resp, env = app.do(t, http.MethodPost, "/api/auth/login", "", credentials)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Equal(t, "account pending admin approval", env.Message)

	path := "/api/users/" + strconv.FormatUint(uint64(registered.ID), 10) + "/approve"
	resp, _ = app.do(t, http.MethodPost, path, app.token(t, admin), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, env = app.do(t, http.MethodPost, "/api/auth/login", "", credentials)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var login dto.LoginResponse
	decodeData(t, env, &login)
	require.NotEmpty(t, login.Token)
	require.True(t, login.User.Approved)

	resp, env = app.do(t, http.MethodGet, "/api/auth/me", login.Token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var me dto.UserResponse
	decodeData(t, env, &me)
	require.Equal(t, registered.ID, me.ID)
}

func TestRegisterRejectsDuplicatesAndBadInput(t *testing.T) {
	app := setupApp(t)
	app.seedUser(t, "Existing", "taken@example.com", models.RoleStudent, true)

	resp, env := app.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{"name": "Other", "email": "taken@example.com", "password": testPassword})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "user already exists", env.Message)

	resp, env = app.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{"name": "Other", "email": "other@example.com", "password": "123"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "password must be at least 6 characters long", env.Message)
	require.Equal(t, utils.FieldDetails{Field: "password", Rule: "min"}, env.Details)

	resp, _ = app.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{"name": "Boss", "email": "boss@example.com", "password": testPassword, "role": "admin"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLoginWithWrongPassword(t *testing.T) {
	app := setupApp(t)
	app.seedUser(t, "Student", "student@example.com", models.RoleStudent, true)

	resp, env := app.do(t, http.MethodPost, "/api/auth/login", "", fiber.Map{"email": "student@example.com", "password": "not-the-password"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "invalid credentials", env.Message)
}

func TestCredentialGate(t *testing.T) {
	app := setupApp(t)
	pending := app.seedUser(t, "Pending", "pending@example.com", models.RoleStudent, false)
	student := app.seedUser(t, "Student", "student@example.com", models.RoleStudent, true)

	resp, _ := app.do(t, http.MethodGet, "/api/assignments", "", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = app.do(t, http.MethodGet, "/api/assignments", "not-a-token", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, env := app.do(t, http.MethodGet, "/api/assignments", app.token(t, pending), nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Equal(t, "account pending admin approval", env.Message)

	token := app.token(t, student)
	require.NoError(t, app.db.Delete(&models.User{}, student.ID).Error)
	resp, _ = app.do(t, http.MethodGet, "/api/assignments", token, nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRateLimitCountsRequestsWithBadTokens(t *testing.T) {
	app := setupAppWithLimit(t, 2)
	student := app.seedUser(t, "Student", "student@example.com", models.RoleStudent, true)

	statuses := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		resp, _ := app.do(t, http.MethodGet, "/api/assignments", "garbage", nil)
		statuses = append(statuses, resp.StatusCode)
	}
	require.Equal(t, []int{
		fiber.StatusUnauthorized,
		fiber.StatusUnauthorized,
		fiber.StatusTooManyRequests,
		fiber.StatusTooManyRequests,
		fiber.StatusTooManyRequests,
	}, statuses)

	resp, env := app.do(t, http.MethodGet, "/api/assignments", app.token(t, student), nil)
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	require.Equal(t, "too many requests, please try again later", env.Message)
}

func TestJSONBodiesAreCappedBelowUploadLimit(t *testing.T) {
	app := setupApp(t)

	resp, env := app.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"name":     strings.Repeat("a", 1024*1024+1),
		"email":    "big@example.com",
		"password": testPassword,
	})
	require.Equal(t, fiber.StatusRequestEntityTooLarge, resp.StatusCode)
	require.Equal(t, "request body too large", env.Message)
}
