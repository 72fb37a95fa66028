package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	accountDomain "github.com/guardvault/guardvault/internal/account/domain"
	auditDomain "github.com/guardvault/guardvault/internal/audit/domain"
	authHTTP "github.com/guardvault/guardvault/internal/auth/http"
)

type mockAuditLogUseCase struct {
	mock.Mock
}

func (m *mockAuditLogUseCase) List(
	ctx context.Context,
	accountID *uuid.UUID,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.Event, error) {
	args := m.Called(ctx, accountID, offset, limit, createdAtFrom, createdAtTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.Event), args.Error(1)
}

func (m *mockAuditLogUseCase) Verify(
	ctx context.Context,
	offset, limit int,
) (int, []uuid.UUID, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(1) == nil {
		return args.Int(0), nil, args.Error(2)
	}
	return args.Int(0), args.Get(1).([]uuid.UUID), args.Error(2)
}

func newAuditRouter(uc *mockAuditLogUseCase, accountID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewAuditLogHandler(uc, logger)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		account := &accountDomain.Account{ID: accountID, Status: accountDomain.StatusActive}
		c.Request = c.Request.WithContext(authHTTP.WithAccount(c.Request.Context(), account))
		c.Next()
	})
	router.GET("/v1/audit-events", handler.ListHandler)
	return router
}

func TestAuditLogHandler_List(t *testing.T) {
	accountID := uuid.Must(uuid.NewV7())

	t.Run("lists events scoped to account", func(t *testing.T) {
		events := []*auditDomain.Event{
			{
				ID:        uuid.Must(uuid.NewV7()),
				AccountID: &accountID,
				EventType: auditDomain.EventAuthSucceeded,
				CreatedAt: time.Now().UTC(),
			},
		}
		uc := new(mockAuditLogUseCase)
		uc.On("List", mock.Anything, &accountID, 0, 50, (*time.Time)(nil), (*time.Time)(nil)).
			Return(events, nil)
		router := newAuditRouter(uc, accountID)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/audit-events", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), events[0].ID.String())
		assert.NotContains(t, w.Body.String(), "signature")
	})

	t.Run("passes inclusive time boundaries", func(t *testing.T) {
		from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		uc := new(mockAuditLogUseCase)
		uc.On("List", mock.Anything, &accountID, 0, 50, &from, (*time.Time)(nil)).
			Return([]*auditDomain.Event{}, nil)
		router := newAuditRouter(uc, accountID)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(
			http.MethodGet,
			"/v1/audit-events?created_at_from=2026-01-01T00:00:00Z",
			nil,
		)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		uc.AssertExpectations(t)
	})

	t.Run("invalid time parameter rejected", func(t *testing.T) {
		uc := new(mockAuditLogUseCase)
		router := newAuditRouter(uc, accountID)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/audit-events?created_at_from=yesterday", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		uc.AssertNotCalled(t, "List")
	})
}
