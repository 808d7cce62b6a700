package sessions

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/arcade-pulse/backend/config"
	"github.com/arcade-pulse/backend/internal/models"
	"github.com/arcade-pulse/backend/pkg/apperr"
)

// failingStore returns the configured error from every operation.
type failingStore struct {
	err error
}

func (s *failingStore) Insert(context.Context, uuid.UUID, uuid.UUID) (*models.GameSession, error) {
	return nil, s.err
}

func (s *failingStore) InsertExclusive(context.Context, uuid.UUID, uuid.UUID) (*models.GameSession, error) {
	return nil, s.err
}

func (s *failingStore) SetScore(context.Context, uuid.UUID, int64) error {
	return s.err
}

func (s *failingStore) End(context.Context, uuid.UUID) (*models.GameHistory, error) {
	return nil, s.err
}

func (s *failingStore) Get(context.Context, uuid.UUID) (*models.GameSession, error) {
	return nil, s.err
}

func (s *failingStore) ListActive(context.Context) ([]models.GameSession, error) {
	return nil, s.err
}

func newTestRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	manager := NewManager(store, config.SessionConfig{AllowConcurrent: true}, nil, nil)
	handler := NewHandler(manager)

	router := gin.New()
	router.POST("/sessions/:id/end", handler.End)
	router.GET("/sessions", handler.List)
	return router
}

func TestEndMapsStoreErrorsToStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "unknown session is 404",
			err:        fmt.Errorf("session %s: %w", uuid.New(), apperr.ErrNotFound),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "already ended is 409",
			err:        fmt.Errorf("session already ended: %w", apperr.ErrConflict),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "store failure is 500",
			err:        apperr.Wrapf(apperr.ErrPersistence, assert.AnError, "end session"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&failingStore{err: tt.err})

			req := httptest.NewRequest(http.MethodPost, "/sessions/"+uuid.New().String()+"/end", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}

func TestEndRejectsMalformedSessionID(t *testing.T) {
	router := newTestRouter(&failingStore{err: assert.AnError})

	req := httptest.NewRequest(http.MethodPost, "/sessions/not-a-uuid/end", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListMapsPersistenceErrorTo500(t *testing.T) {
	router := newTestRouter(&failingStore{
		err: apperr.Wrap(apperr.ErrPersistence, assert.AnError),
	})

	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
