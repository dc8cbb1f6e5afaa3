package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/billkeeper/internal/http/view"
	"github.com/magabrotheeeer/billkeeper/internal/models"
)

// MockService реализует интерфейс search.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Search(ctx context.Context, query string) ([]*models.Group, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Group), args.Error(1)
}

func newHandler(t *testing.T, service Service) *Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	v, err := view.New(logger)
	require.NoError(t, err)
	return New(logger, service, v)
}

func TestSearchHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		query          string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   []string
	}{
		{
			name:  "поиск по подстроке",
			url:   "/search?q=Gro",
			query: "Gro",
			setupMock: func(m *MockService) {
				m.On("Search", mock.Anything, "Gro").Return([]*models.Group{
					{ID: 1, Name: "Grocery", UserID: 1},
					{ID: 2, Name: "Groceries2", UserID: 2},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{"Grocery", "Groceries2"},
		},
		{
			name:  "пустой запрос",
			url:   "/search",
			query: "",
			setupMock: func(m *MockService) {
				m.On("Search", mock.Anything, "").Return([]*models.Group{
					{ID: 1, Name: "Grocery", UserID: 1},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{"Grocery"},
		},
		{
			name:  "ничего не найдено",
			url:   "/search?q=zzz",
			query: "zzz",
			setupMock: func(m *MockService) {
				m.On("Search", mock.Anything, "zzz").Return([]*models.Group{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{"No groups found."},
		},
		{
			name:  "ошибка сервиса",
			url:   "/search?q=Gro",
			query: "Gro",
			setupMock: func(m *MockService) {
				m.On("Search", mock.Anything, "Gro").Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)
			handler := newHandler(t, mockService)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.url, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			for _, fragment := range tt.expectedBody {
				assert.Contains(t, w.Body.String(), fragment)
			}
			mockService.AssertExpectations(t)
		})
	}
}
