package group

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/magabrotheeeer/billkeeper/internal/models"
	"github.com/magabrotheeeer/billkeeper/internal/rabbitmq"
	"github.com/magabrotheeeer/billkeeper/internal/storage/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateGroup(ctx context.Context, group models.Group) (int64, error) {
	args := m.Called(ctx, group)
	return args.Get(0).(int64), args.Error(1)
}
func (m *RepoMock) GetGroup(ctx context.Context, id int64) (*models.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}
func (m *RepoMock) ListGroupsByUser(ctx context.Context, userID int64) ([]*models.Group, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Group), args.Error(1)
}
func (m *RepoMock) UpdateGroup(ctx context.Context, group models.Group) (int64, error) {
	args := m.Called(ctx, group)
	return args.Get(0).(int64), args.Error(1)
}
func (m *RepoMock) DeleteGroup(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}
func (m *RepoMock) SearchGroupsByName(ctx context.Context, query string) ([]*models.Group, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Group), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}
func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}
func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(event rabbitmq.Event) error {
	return m.Called(event).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestGroupService_Create(t *testing.T) {
	form := models.GroupForm{Name: "Grocery", Description: "weekly runs"}
	photo := "grocery_abc.png"

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock, c *CacheMock, p *PublisherMock)
		photo      *string
		wantID     int64
		wantErr    bool
	}{
		{
			name: "success create with photo",
			setupMocks: func(r *RepoMock, c *CacheMock, p *PublisherMock) {
				r.On("CreateGroup", mock.Anything, mock.MatchedBy(func(g models.Group) bool {
					return g.Name == form.Name &&
						g.Description == form.Description &&
						g.Photo != nil && *g.Photo == photo &&
						g.UserID == int64(1)
				})).Return(int64(42), nil).Once()
				c.On("Set", "group:42", mock.Anything, time.Hour).Return(nil).Once()
				p.On("Publish", mock.MatchedBy(func(e rabbitmq.Event) bool {
					return e.Action == "group.created" && e.EntityID == 42
				})).Return(nil).Once()
			},
			photo:   &photo,
			wantID:  42,
			wantErr: false,
		},
		{
			name: "repo error",
			setupMocks: func(r *RepoMock, _ *CacheMock, _ *PublisherMock) {
				r.On("CreateGroup", mock.Anything, mock.Anything).Return(int64(0), errors.New("db error")).Once()
			},
			photo:   nil,
			wantID:  0,
			wantErr: true,
		},
		{
			name: "cache set error logs warning but returns id",
			setupMocks: func(r *RepoMock, c *CacheMock, p *PublisherMock) {
				r.On("CreateGroup", mock.Anything, mock.Anything).Return(int64(7), nil).Once()
				c.On("Set", "group:7", mock.Anything, time.Hour).Return(errors.New("redis down")).Once()
				p.On("Publish", mock.Anything).Return(nil).Once()
			},
			photo:   nil,
			wantID:  7,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			pub := new(PublisherMock)
			svc := NewGroupService(repo, cache, pub, newNoopLogger())

			tt.setupMocks(repo, cache, pub)

			got, err := svc.Create(context.Background(), 1, form, tt.photo)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantID, got)
			}

			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestGroupService_Get(t *testing.T) {
	entry := &models.Group{ID: 1, Name: "Grocery", UserID: 1}

	tests := []struct {
		name       string
		id         int64
		cacheFound bool
		cacheErr   error
		repoEntry  *models.Group
		repoErr    error
		want       *models.Group
		wantErr    bool
	}{
		{
			name:       "cache hit",
			id:         1,
			cacheFound: true,
			want:       entry,
		},
		{
			name:      "cache miss then repo success",
			id:        2,
			repoEntry: entry,
			want:      entry,
		},
		{
			name:      "cache error falls through to repo",
			id:        3,
			cacheErr:  errors.New("cache unavailable"),
			repoEntry: entry,
			want:      entry,
		},
		{
			name:    "repo not found",
			id:      4,
			repoErr: repository.ErrNotFound,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			svc := NewGroupService(repo, cache, nil, newNoopLogger())

			key := fmt.Sprintf("group:%d", tt.id)

			cache.On("Get", key, mock.Anything).Return(tt.cacheFound, tt.cacheErr).Run(func(args mock.Arguments) {
				if tt.cacheFound && tt.cacheErr == nil {
					ptrPtr := args.Get(1).(**models.Group)
					*ptrPtr = entry
				}
			}).Once()

			if !tt.cacheFound {
				repo.On("GetGroup", mock.Anything, tt.id).Return(tt.repoEntry, tt.repoErr).Once()
				if tt.repoEntry != nil {
					cache.On("Set", key, tt.repoEntry, time.Hour).Return(nil).Once()
				}
			}

			got, err := svc.Get(context.Background(), tt.id)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			cache.AssertExpectations(t)
			repo.AssertExpectations(t)
		})
	}
}

func TestGroupService_Update(t *testing.T) {
	oldPhoto := "old_abc.png"
	newPhoto := "new_def.png"
	existing := &models.Group{ID: 1, Name: "Grocery", Description: "old", Photo: &oldPhoto, UserID: 1}
	form := models.GroupForm{Name: "Groceries", Description: "updated"}

	tests := []struct {
		name       string
		newPhoto   *string
		setupMocks func(r *RepoMock, c *CacheMock, p *PublisherMock)
		wantErr    error
	}{
		{
			name:     "keeps old photo when none uploaded",
			newPhoto: nil,
			setupMocks: func(r *RepoMock, c *CacheMock, p *PublisherMock) {
				r.On("UpdateGroup", mock.Anything, mock.MatchedBy(func(g models.Group) bool {
					return g.Name == form.Name && g.Photo != nil && *g.Photo == oldPhoto
				})).Return(int64(1), nil).Once()
				c.On("Set", "group:1", mock.Anything, time.Hour).Return(nil).Once()
				p.On("Publish", mock.MatchedBy(func(e rabbitmq.Event) bool {
					return e.Action == "group.updated"
				})).Return(nil).Once()
			},
		},
		{
			name:     "replaces photo when new one uploaded",
			newPhoto: &newPhoto,
			setupMocks: func(r *RepoMock, c *CacheMock, p *PublisherMock) {
				r.On("UpdateGroup", mock.Anything, mock.MatchedBy(func(g models.Group) bool {
					return g.Photo != nil && *g.Photo == newPhoto
				})).Return(int64(1), nil).Once()
				c.On("Set", "group:1", mock.Anything, time.Hour).Return(nil).Once()
				p.On("Publish", mock.Anything).Return(nil).Once()
			},
		},
		{
			name:     "zero rows maps to not found",
			newPhoto: nil,
			setupMocks: func(r *RepoMock, _ *CacheMock, _ *PublisherMock) {
				r.On("UpdateGroup", mock.Anything, mock.Anything).Return(int64(0), nil).Once()
			},
			wantErr: repository.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			pub := new(PublisherMock)
			svc := NewGroupService(repo, cache, pub, newNoopLogger())

			cache.On("Get", "group:1", mock.Anything).Return(false, nil).Once()
			repo.On("GetGroup", mock.Anything, int64(1)).Return(existing, nil).Once()
			cache.On("Set", "group:1", existing, time.Hour).Return(nil).Once()

			tt.setupMocks(repo, cache, pub)

			err := svc.Update(context.Background(), 1, form, tt.newPhoto)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestGroupService_Delete(t *testing.T) {
	existing := &models.Group{ID: 5, Name: "Trips", UserID: 2}

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock, c *CacheMock, p *PublisherMock)
		wantErr    error
	}{
		{
			name: "success delete",
			setupMocks: func(r *RepoMock, c *CacheMock, p *PublisherMock) {
				c.On("Invalidate", "group:5").Return(nil).Once()
				r.On("DeleteGroup", mock.Anything, int64(5)).Return(int64(1), nil).Once()
				p.On("Publish", mock.MatchedBy(func(e rabbitmq.Event) bool {
					return e.Action == "group.deleted" && e.EntityName == "Trips"
				})).Return(nil).Once()
			},
		},
		{
			name: "cache invalidate error but proceed",
			setupMocks: func(r *RepoMock, c *CacheMock, p *PublisherMock) {
				c.On("Invalidate", "group:5").Return(errors.New("cache fail")).Once()
				r.On("DeleteGroup", mock.Anything, int64(5)).Return(int64(1), nil).Once()
				p.On("Publish", mock.Anything).Return(nil).Once()
			},
		},
		{
			name: "zero rows maps to not found",
			setupMocks: func(r *RepoMock, c *CacheMock, _ *PublisherMock) {
				c.On("Invalidate", "group:5").Return(nil).Once()
				r.On("DeleteGroup", mock.Anything, int64(5)).Return(int64(0), nil).Once()
			},
			wantErr: repository.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			pub := new(PublisherMock)
			svc := NewGroupService(repo, cache, pub, newNoopLogger())

			cache.On("Get", "group:5", mock.Anything).Return(false, nil).Once()
			repo.On("GetGroup", mock.Anything, int64(5)).Return(existing, nil).Once()
			cache.On("Set", "group:5", existing, time.Hour).Return(nil).Once()

			tt.setupMocks(repo, cache, pub)

			err := svc.Delete(context.Background(), 5)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestGroupService_Search(t *testing.T) {
	groups := []*models.Group{
		{ID: 1, Name: "Grocery"},
		{ID: 2, Name: "Groceries2"},
	}

	tests := []struct {
		name    string
		query   string
		want    []*models.Group
		wantErr bool
	}{
		{name: "substring match", query: "Gro", want: groups},
		{name: "empty query matches everything", query: "", want: groups},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			svc := NewGroupService(repo, cache, nil, newNoopLogger())

			repo.On("SearchGroupsByName", mock.Anything, tt.query).Return(tt.want, nil).Once()

			got, err := svc.Search(context.Background(), tt.query)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)

			repo.AssertExpectations(t)
		})
	}
}
