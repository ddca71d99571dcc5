package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/paperdrop-api/internal/admission"
	"github.com/noah-isme/paperdrop-api/internal/auth"
	"github.com/noah-isme/paperdrop-api/internal/config"
	"github.com/noah-isme/paperdrop-api/internal/database"
	"github.com/noah-isme/paperdrop-api/internal/events"
	"github.com/noah-isme/paperdrop-api/internal/handler"
	"github.com/noah-isme/paperdrop-api/internal/middleware"
	"github.com/noah-isme/paperdrop-api/internal/models"
	"github.com/noah-isme/paperdrop-api/internal/repository"
	"github.com/noah-isme/paperdrop-api/internal/router"
	"github.com/noah-isme/paperdrop-api/internal/service"
	"github.com/noah-isme/paperdrop-api/internal/utils"
	"github.com/noah-isme/paperdrop-api/pkg/mailer"
	"github.com/noah-isme/paperdrop-api/pkg/storage"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

const testPassword = "secret123"

type testStorage struct {
	mu      sync.Mutex
	uploads []string
}

func (s *testStorage) Upload(_ context.Context, name string, r io.Reader) (storage.Object, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return storage.Object{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, name)
	return storage.Object{
		Key:          "submissions/" + name,
		ResourceType: "raw",
		SharedLink:   "https://files.example.com/submissions/" + name,
		DirectLink:   "https://files.example.com/fl_attachment/submissions/" + name,
	}, nil
}

func (s *testStorage) Delete(context.Context, storage.Object) error {
	return nil
}

func (s *testStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.uploads)
}

type testMailer struct {
	mu       sync.Mutex
	messages []mailer.Message
}

func (m *testMailer) Send(_ context.Context, msg mailer.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return "test-message-id", nil
}

type testApp struct {
	app     *fiber.App
	db      *gorm.DB
	tokens  *auth.Tokens
	storage *testStorage
	mailer  *testMailer
}

type envelope struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Data    json.RawMessage    `json:"data"`
	Details utils.FieldDetails `json:"details"`
}

func setupApp(t *testing.T) *testApp {
	t.Helper()
	return setupAppWithLimit(t, 1000)
}

// setupAppWithLimit builds the full application with the given budget
// for both the per-IP and the per-user limiter.
func setupAppWithLimit(t *testing.T, requestsPerMinute int) *testApp {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), database.GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	logger := zerolog.New(io.Discard)
	validate := utils.NewValidator()
	tokens := auth.NewTokens("test-secret", time.Hour, "paperdrop-test")
	store := &testStorage{}
	outbound := &testMailer{}

	policy, err := admission.PolicyFor(admission.PolicyCJK)
	require.NoError(t, err)
	filter := admission.NewFilter(policy, 2*1024*1024, true)

	userRepo := repository.NewUserRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	notifier := service.NewMailNotifier(outbound, []mail.Address{{Name: "Reviewer", Address: "reviewer@example.com"}}, logger)
	authService := service.NewAuthService(userRepo, tokens, validate, logger)
	userService := service.NewUserService(userRepo, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, submissionRepo, validate, events.Noop{}, logger)
	submissionService := service.NewSubmissionService(filter, assignmentRepo, submissionRepo, store, notifier, events.Noop{}, logger)
	statsService := service.NewStatsService(userRepo, assignmentRepo, submissionRepo)

	cfg := config.Config{AppName: "PaperDrop Test", AppEnv: "test", MaxFileMB: 2, BodyLimitMB: 1}
	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.RequestBodyLimit(),
		ErrorHandler: middleware.ErrorHandler(logger),
	})
	middleware.Register(app, middleware.Config{Logger: &logger, JSONBodyLimit: cfg.JSONBodyLimit()})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, logger),
		UserHandler:       handler.NewUserHandler(userService, statsService, logger),
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, submissionService, statsService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		Authenticate:      middleware.Authenticate(tokens, userRepo),
		RateLimit:         middleware.IPRateLimit("test", requestsPerMinute, time.Minute, nil),
		UserRateLimit:     middleware.RateLimit("test-user", requestsPerMinute, time.Minute, nil),
	})

	return &testApp{app: app, db: db, tokens: tokens, storage: store, mailer: outbound}
}

func (a *testApp) seedUser(t *testing.T, name, email string, role models.Role, approved bool) models.User {
	t.Helper()
	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	user := models.User{Name: name, Email: email, PasswordHash: hash, Role: role, Approved: approved}
	require.NoError(t, a.db.Create(&user).Error)
	return user
}

func (a *testApp) seedAssignment(t *testing.T, title string, creator models.User, deadline time.Time) models.Assignment {
	t.Helper()
	assignment := models.Assignment{Title: title, Description: "Hand in one PDF answer", Deadline: deadline, CreatedByID: creator.ID}
	require.NoError(t, a.db.Omit("CreatedBy").Create(&assignment).Error)
	return assignment
}

func (a *testApp) token(t *testing.T, user models.User) string {
	t.Helper()
	token, _, err := a.tokens.Issue(user.ID)
	require.NoError(t, err)
	return token
}

func (a *testApp) do(t *testing.T, method, path, token string, payload interface{}) (*http.Response, envelope) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return a.send(t, req)
}

func (a *testApp) upload(t *testing.T, assignmentID uint, token, filename, contentType string, content []byte) (*http.Response, envelope) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, submitPath(assignmentID), body)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	return a.send(t, req)
}

func (a *testApp) send(t *testing.T, req *http.Request) (*http.Response, envelope) {
	t.Helper()

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	var env envelope
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &env), string(data))
	}
	return resp, env
}

func decodeData(t *testing.T, env envelope, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, target))
}

func assignmentPath(id uint) string {
	return "/api/assignments/" + strconv.FormatUint(uint64(id), 10)
}

func submitPath(id uint) string {
	return assignmentPath(id) + "/submit"
}
