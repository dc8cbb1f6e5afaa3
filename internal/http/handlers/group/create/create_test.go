package create

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/billkeeper/internal/http/middlewarectx"
	"github.com/magabrotheeeer/billkeeper/internal/http/view"
	jwtlib "github.com/magabrotheeeer/billkeeper/internal/lib/jwt"
	"github.com/magabrotheeeer/billkeeper/internal/models"
	"github.com/magabrotheeeer/billkeeper/internal/session"
	"github.com/magabrotheeeer/billkeeper/internal/uploads"
)

// MockService реализует интерфейс create.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, userID int64, form models.GroupForm, photo *string) (int64, error) {
	args := m.Called(ctx, userID, form, photo)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockService) ListForUser(ctx context.Context, userID int64) ([]*models.Group, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Group), args.Error(1)
}

type memStore struct {
	data map[string][]byte
}

func newMemStore() *memStore { return &memStore{data: make(map[string][]byte)} }

func (s *memStore) Get(key string, result any) (bool, error) {
	raw, ok := s.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, result)
}

func (s *memStore) Set(key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.data[key] = raw
	return nil
}

func (s *memStore) Invalidate(key string) error {
	delete(s.data, key)
	return nil
}

func newHandler(t *testing.T, service Service) (*Handler, *session.Manager) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	sessions := session.NewManager(newMemStore(), jwtlib.NewMaker("test-secret", time.Hour), "billkeeper_session", time.Hour)
	saver, err := uploads.New(t.TempDir())
	require.NoError(t, err)
	v, err := view.New(logger)
	require.NoError(t, err)
	return New(logger, service, saver, v), sessions
}

func multipartForm(t *testing.T, name, description, filename string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", name))
	require.NoError(t, mw.WriteField("description", description))
	if filename != "" {
		part, err := mw.CreateFormFile("photo", filename)
		require.NoError(t, err)
		_, err = part.Write(payload)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10))))
	return buf.Bytes()
}

func newRequest(t *testing.T, sessions *session.Manager, body *bytes.Buffer, contentType string) *http.Request {
	t.Helper()
	seed := httptest.NewRecorder()
	sess, err := sessions.Ensure(seed, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.NoError(t, sess.SetUserID(1))

	req := httptest.NewRequest(http.MethodPost, "/groups", body)
	req.Header.Set("Content-Type", contentType)
	ctx := context.WithValue(req.Context(), middlewarectx.User, int64(1))
	ctx = context.WithValue(ctx, middlewarectx.Sess, sess)
	return req.WithContext(ctx)
}

func TestCreateHandler_WithoutPhoto(t *testing.T) {
	mockService := new(MockService)
	mockService.On("Create", mock.Anything, int64(1), models.GroupForm{Name: "Grocery", Description: "weekly"}, (*string)(nil)).
		Return(int64(10), nil)
	mockService.On("ListForUser", mock.Anything, int64(1)).
		Return([]*models.Group{{ID: 10, Name: "Grocery", Description: "weekly", UserID: 1}}, nil)
	handler, sessions := newHandler(t, mockService)

	body, contentType := multipartForm(t, "Grocery", "weekly", "", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, newRequest(t, sessions, body, contentType))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Grocery")
	mockService.AssertExpectations(t)
}

func TestCreateHandler_WithPhoto(t *testing.T) {
	mockService := new(MockService)
	mockService.On("Create", mock.Anything, int64(1), models.GroupForm{Name: "Trips"}, mock.MatchedBy(func(photo *string) bool {
		return photo != nil && *photo != ""
	})).Return(int64(11), nil)
	mockService.On("ListForUser", mock.Anything, int64(1)).
		Return([]*models.Group{{ID: 11, Name: "Trips", UserID: 1}}, nil)
	handler, sessions := newHandler(t, mockService)

	body, contentType := multipartForm(t, "Trips", "", "photo.png", pngBytes(t))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, newRequest(t, sessions, body, contentType))

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestCreateHandler_InvalidFileFormat(t *testing.T) {
	mockService := new(MockService)
	// Группа создается без фотографии, формат файла не поддерживается
	mockService.On("Create", mock.Anything, int64(1), models.GroupForm{Name: "Docs"}, (*string)(nil)).
		Return(int64(12), nil)
	mockService.On("ListForUser", mock.Anything, int64(1)).
		Return([]*models.Group{{ID: 12, Name: "Docs", UserID: 1}}, nil)
	handler, sessions := newHandler(t, mockService)

	body, contentType := multipartForm(t, "Docs", "", "file.pdf", []byte("%PDF-1.4"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, newRequest(t, sessions, body, contentType))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid file format. Only png, jpg, jpeg, and gif files are allowed.")
	mockService.AssertExpectations(t)
}

func TestCreateHandler_ValidationFailed(t *testing.T) {
	mockService := new(MockService)
	mockService.On("ListForUser", mock.Anything, int64(1)).
		Return([]*models.Group{}, nil)
	handler, sessions := newHandler(t, mockService)

	body, contentType := multipartForm(t, "", "no name", "", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, newRequest(t, sessions, body, contentType))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "field Name is a required field")
	mockService.AssertExpectations(t)
}
