package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/paperdrop-api/internal/models"
	"github.com/noah-isme/paperdrop-api/internal/repository"
	"github.com/noah-isme/paperdrop-api/internal/utils"
	"github.com/noah-isme/paperdrop-api/pkg/storage"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

var testValidator = utils.NewValidator()

type memoryUserRepo struct {
	users  map[uint]models.User
	nextID uint
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[uint]models.User), nextID: 1}
}

func (m *memoryUserRepo) Create(_ context.Context, user *models.User) error {
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	m.users[user.ID] = *user
	m.nextID++
	return nil
}

func (m *memoryUserRepo) GetByID(_ context.Context, id uint) (models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (m *memoryUserRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (m *memoryUserRepo) List(_ context.Context, filter repository.UserFilter) ([]models.User, error) {
	results := make([]models.User, 0, len(m.users))
	for _, user := range m.users {
		if filter.Approved != nil && user.Approved != *filter.Approved {
			continue
		}
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		results = append(results, user)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID > results[j].ID })
	return results, nil
}

func (m *memoryUserRepo) Count(ctx context.Context, filter repository.UserFilter) (int64, error) {
	users, _ := m.List(ctx, filter)
	return int64(len(users)), nil
}

func (m *memoryUserRepo) Approve(_ context.Context, id uint) (models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	user.Approved = true
	m.users[id] = user
	return user, nil
}

func (m *memoryUserRepo) UpdateRole(_ context.Context, id uint, role models.Role) (models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	user.Role = role
	m.users[id] = user
	return user, nil
}

func (m *memoryUserRepo) Delete(_ context.Context, id uint) error {
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memoryUserRepo) seed(name, email string, role models.Role, approved bool) models.User {
	user := models.User{Name: name, Email: email, PasswordHash: "hash", Role: role, Approved: approved}
	_ = m.Create(context.Background(), &user)
	return user
}

type memoryAssignmentRepo struct {
	assignments map[uint]models.Assignment
	submissions *memorySubmissionRepo
	nextID      uint
}

func newMemoryAssignmentRepo(submissions *memorySubmissionRepo) *memoryAssignmentRepo {
	return &memoryAssignmentRepo{
		assignments: make(map[uint]models.Assignment),
		submissions: submissions,
		nextID:      1,
	}
}

func (m *memoryAssignmentRepo) List(_ context.Context) ([]models.Assignment, error) {
	results := make([]models.Assignment, 0, len(m.assignments))
	for _, assignment := range m.assignments {
		results = append(results, assignment)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID > results[j].ID })
	return results, nil
}

func (m *memoryAssignmentRepo) GetByID(_ context.Context, id uint) (models.Assignment, error) {
	assignment, ok := m.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (m *memoryAssignmentRepo) Create(_ context.Context, assignment *models.Assignment) error {
	assignment.ID = m.nextID
	assignment.CreatedAt = time.Now()
	assignment.UpdatedAt = assignment.CreatedAt
	m.assignments[assignment.ID] = *assignment
	m.nextID++
	return nil
}

func (m *memoryAssignmentRepo) Update(_ context.Context, assignment *models.Assignment) error {
	if _, ok := m.assignments[assignment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	assignment.UpdatedAt = time.Now()
	m.assignments[assignment.ID] = *assignment
	return nil
}

func (m *memoryAssignmentRepo) Delete(_ context.Context, id uint) (int64, error) {
	if _, ok := m.assignments[id]; !ok {
		return 0, gorm.ErrRecordNotFound
	}
	delete(m.assignments, id)
	var removed int64
	if m.submissions != nil {
		removed = m.submissions.removeAssignment(id)
	}
	return removed, nil
}

func (m *memoryAssignmentRepo) Count(_ context.Context, filter repository.AssignmentFilter) (int64, error) {
	var total int64
	for _, assignment := range m.assignments {
		if filter.CreatedByID != nil && assignment.CreatedByID != *filter.CreatedByID {
			continue
		}
		if filter.DeadlineAfter != nil && !assignment.Deadline.After(*filter.DeadlineAfter) {
			continue
		}
		total++
	}
	return total, nil
}

func (m *memoryAssignmentRepo) Upcoming(_ context.Context, after time.Time, limit int) ([]models.Assignment, error) {
	results := make([]models.Assignment, 0)
	for _, assignment := range m.assignments {
		if assignment.Deadline.After(after) {
			results = append(results, assignment)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Deadline.Before(results[j].Deadline) })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *memoryAssignmentRepo) seed(title string, creator models.User, deadline time.Time) models.Assignment {
	assignment := models.Assignment{Title: title, Description: "Answer every question", Deadline: deadline, CreatedByID: creator.ID, CreatedBy: creator}
	_ = m.Create(context.Background(), &assignment)
	return assignment
}

type memorySubmissionRepo struct {
	submissions map[uint]models.Submission
	nextID      uint
	// createErr, when set, is returned by the next Create call.
	createErr error
	calls     []string
}

func newMemorySubmissionRepo() *memorySubmissionRepo {
	return &memorySubmissionRepo{submissions: make(map[uint]models.Submission), nextID: 1}
}

func (m *memorySubmissionRepo) List(_ context.Context, filter repository.SubmissionFilter) ([]models.Submission, error) {
	results := make([]models.Submission, 0, len(m.submissions))
	for _, submission := range m.submissions {
		if filter.AssignmentID != nil && submission.AssignmentID != *filter.AssignmentID {
			continue
		}
		if filter.StudentID != nil && submission.StudentID != *filter.StudentID {
			continue
		}
		results = append(results, submission)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].UploadedAt.After(results[j].UploadedAt) })
	return results, nil
}

func (m *memorySubmissionRepo) GetByID(_ context.Context, id uint) (models.Submission, error) {
	submission, ok := m.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (m *memorySubmissionRepo) GetByAssignmentAndStudent(_ context.Context, assignmentID, studentID uint) (models.Submission, error) {
	m.calls = append(m.calls, "lookup")
	for _, submission := range m.submissions {
		if submission.AssignmentID == assignmentID && submission.StudentID == studentID {
			return submission, nil
		}
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (m *memorySubmissionRepo) Create(_ context.Context, submission *models.Submission) error {
	m.calls = append(m.calls, "create")
	if m.createErr != nil {
		err := m.createErr
		m.createErr = nil
		return err
	}
	for _, existing := range m.submissions {
		if existing.AssignmentID == submission.AssignmentID && existing.StudentID == submission.StudentID {
			return gorm.ErrDuplicatedKey
		}
	}
	submission.ID = m.nextID
	m.submissions[submission.ID] = *submission
	m.nextID++
	return nil
}

func (m *memorySubmissionRepo) Count(ctx context.Context, filter repository.SubmissionFilter) (int64, error) {
	items, _ := m.List(ctx, filter)
	return int64(len(items)), nil
}

func (m *memorySubmissionRepo) removeAssignment(assignmentID uint) int64 {
	var removed int64
	for id, submission := range m.submissions {
		if submission.AssignmentID == assignmentID {
			delete(m.submissions, id)
			removed++
		}
	}
	return removed
}

type stubStorage struct {
	uploaded  bytes.Buffer
	uploads   int
	deleted   []storage.Object
	uploadErr error
}

func (s *stubStorage) Upload(_ context.Context, name string, r io.Reader) (storage.Object, error) {
	if s.uploadErr != nil {
		return storage.Object{}, s.uploadErr
	}
	s.uploaded.Reset()
	n, err := s.uploaded.ReadFrom(r)
	if err != nil {
		return storage.Object{}, err
	}
	s.uploads++
	return storage.Object{
		Key:          "paperdrop/" + name,
		ResourceType: "raw",
		SharedLink:   "https://cdn.example.com/" + name,
		DirectLink:   "https://cdn.example.com/fl_attachment/" + name,
		Bytes:        n,
	}, nil
}

func (s *stubStorage) Delete(_ context.Context, object storage.Object) error {
	s.deleted = append(s.deleted, object)
	return nil
}

type stubNotifier struct {
	result  NotificationResult
	notices []SubmissionNotice
}

func (s *stubNotifier) Notify(_ context.Context, notice SubmissionNotice) NotificationResult {
	s.notices = append(s.notices, notice)
	return s.result
}

type recordingPublisher struct {
	mu     sync.Mutex
	names  []string
	events []interface{}
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, name string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.names = append(p.names, name)
	p.events = append(p.events, data)
	return p.err
}

func (p *recordingPublisher) Close() {}

type fixedTokens struct {
	issued []uint
	err    error
}

func (f *fixedTokens) Issue(userID uint) (string, time.Time, error) {
	if f.err != nil {
		return "", time.Time{}, f.err
	}
	f.issued = append(f.issued, userID)
	return "token-for-user", time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

var errBoom = errors.New("boom")

func buildFileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
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

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(int64(len(content))+1024))
	t.Cleanup(func() { _ = req.MultipartForm.RemoveAll() })

	files := req.MultipartForm.File["file"]
	require.Len(t, files, 1)
	return files[0]
}
