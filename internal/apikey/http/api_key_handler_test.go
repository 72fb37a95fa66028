package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	accountDomain "github.com/guardvault/guardvault/internal/account/domain"
	apikeyDomain "github.com/guardvault/guardvault/internal/apikey/domain"
	apikeyUseCase "github.com/guardvault/guardvault/internal/apikey/usecase"
	auditDomain "github.com/guardvault/guardvault/internal/audit/domain"
	auditUsecase "github.com/guardvault/guardvault/internal/audit/usecase"
	authHTTP "github.com/guardvault/guardvault/internal/auth/http"
)

type mockAPIKeyUseCase struct {
	mock.Mock
}

func (m *mockAPIKeyUseCase) Issue(
	ctx context.Context,
	input *apikeyDomain.IssueAPIKeyInput,
) (*apikeyDomain.IssueAPIKeyOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apikeyDomain.IssueAPIKeyOutput), args.Error(1)
}

func (m *mockAPIKeyUseCase) Validate(
	ctx context.Context,
	presented string,
) (*accountDomain.Account, *apikeyDomain.APIKey, error) {
	args := m.Called(ctx, presented)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*accountDomain.Account), args.Get(1).(*apikeyDomain.APIKey), args.Error(2)
}

func (m *mockAPIKeyUseCase) Revoke(ctx context.Context, input *apikeyUseCase.RevokeAPIKeyInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *mockAPIKeyUseCase) List(
	ctx context.Context,
	accountID uuid.UUID,
	offset, limit int,
) ([]*apikeyDomain.APIKey, error) {
	args := m.Called(ctx, accountID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*apikeyDomain.APIKey), args.Error(1)
}

type captureRecorder struct {
	mu     sync.Mutex
	events []auditUsecase.RecordInput
}

func (r *captureRecorder) Record(input auditUsecase.RecordInput) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, input)
}

func (r *captureRecorder) Dropped() uint64 { return 0 }

func (r *captureRecorder) Close() {}

func (r *captureRecorder) recorded() []auditUsecase.RecordInput {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]auditUsecase.RecordInput, len(r.events))
	copy(out, r.events)
	return out
}

func newAPIKeyRouter(
	uc *mockAPIKeyUseCase,
	recorder *captureRecorder,
	accountID, authenticatedKeyID uuid.UUID,
) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewAPIKeyHandler(uc, recorder, logger)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		account := &accountDomain.Account{ID: accountID, Status: accountDomain.StatusActive}
		ctx := authHTTP.WithAccount(c.Request.Context(), account)
		ctx = authHTTP.WithAPIKey(ctx, &apikeyDomain.APIKey{ID: authenticatedKeyID, AccountID: accountID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	router.POST("/v1/api-keys", handler.IssueHandler)
	router.GET("/v1/api-keys", handler.ListHandler)
	router.DELETE("/v1/api-keys/:id", handler.RevokeHandler)
	return router
}

func TestAPIKeyHandler_Issue(t *testing.T) {
	accountID := uuid.Must(uuid.NewV7())
	authKeyID := uuid.Must(uuid.NewV7())

	t.Run("issues key and returns plaintext once", func(t *testing.T) {
		output := &apikeyDomain.IssueAPIKeyOutput{
			ID:       uuid.Must(uuid.NewV7()),
			Prefix:   "gv_AbCdEfGhI",
			PlainKey: "gv_AbCdEfGhIsecretsecretsecretsecretsecret",
		}
		uc := new(mockAPIKeyUseCase)
		uc.On("Issue", mock.Anything, &apikeyDomain.IssueAPIKeyInput{AccountID: accountID, Name: "ci"}).
			Return(output, nil)
		recorder := &captureRecorder{}
		router := newAPIKeyRouter(uc, recorder, accountID, authKeyID)

		body, _ := json.Marshal(map[string]string{"name": "ci"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/api-keys", bytes.NewReader(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), output.PlainKey)

		events := recorder.recorded()
		require.Len(t, events, 1)
		assert.Equal(t, auditDomain.EventAPIKeyIssued, events[0].EventType)
	})

	t.Run("blank name rejected", func(t *testing.T) {
		uc := new(mockAPIKeyUseCase)
		router := newAPIKeyRouter(uc, &captureRecorder{}, accountID, authKeyID)

		body, _ := json.Marshal(map[string]string{"name": "   "})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/api-keys", bytes.NewReader(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		uc.AssertNotCalled(t, "Issue")
	})
}

func TestAPIKeyHandler_List(t *testing.T) {
	accountID := uuid.Must(uuid.NewV7())
	authKeyID := uuid.Must(uuid.NewV7())

	t.Run("lists metadata without hashes", func(t *testing.T) {
		apiKeys := []*apikeyDomain.APIKey{
			{ID: uuid.Must(uuid.NewV7()), AccountID: accountID, Name: "ci", Prefix: "gv_AbCdEfGhI"},
		}
		uc := new(mockAPIKeyUseCase)
		uc.On("List", mock.Anything, accountID, 0, 50).Return(apiKeys, nil)
		router := newAPIKeyRouter(uc, &captureRecorder{}, accountID, authKeyID)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/api-keys", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), apiKeys[0].ID.String())
		assert.NotContains(t, w.Body.String(), "secret_hash")
	})
}

func TestAPIKeyHandler_Revoke(t *testing.T) {
	accountID := uuid.Must(uuid.NewV7())
	authKeyID := uuid.Must(uuid.NewV7())

	t.Run("revokes and audits", func(t *testing.T) {
		keyID := uuid.Must(uuid.NewV7())
		uc := new(mockAPIKeyUseCase)
		uc.On("Revoke", mock.Anything, &apikeyUseCase.RevokeAPIKeyInput{
			KeyID:               keyID,
			RequestingAccountID: accountID,
			AuthenticatedKeyID:  authKeyID,
			Force:               false,
		}).Return(nil)
		recorder := &captureRecorder{}
		router := newAPIKeyRouter(uc, recorder, accountID, authKeyID)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/v1/api-keys/"+keyID.String(), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)

		events := recorder.recorded()
		require.Len(t, events, 1)
		assert.Equal(t, auditDomain.EventAPIKeyRevoked, events[0].EventType)
	})

	t.Run("self revoke requires force", func(t *testing.T) {
		uc := new(mockAPIKeyUseCase)
		uc.On("Revoke", mock.Anything, mock.AnythingOfType("*usecase.RevokeAPIKeyInput")).
			Return(apikeyDomain.ErrSelfRevoke)
		recorder := &captureRecorder{}
		router := newAPIKeyRouter(uc, recorder, accountID, authKeyID)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/v1/api-keys/"+authKeyID.String(), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Empty(t, recorder.recorded())
	})

	t.Run("forced self revoke passes force through", func(t *testing.T) {
		uc := new(mockAPIKeyUseCase)
		uc.On("Revoke", mock.Anything, &apikeyUseCase.RevokeAPIKeyInput{
			KeyID:               authKeyID,
			RequestingAccountID: accountID,
			AuthenticatedKeyID:  authKeyID,
			Force:               true,
		}).Return(nil)
		router := newAPIKeyRouter(uc, &captureRecorder{}, accountID, authKeyID)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/v1/api-keys/"+authKeyID.String()+"?force=true", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
