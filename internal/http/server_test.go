package http

import (
	"context"
	"errors"
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
	"github.com/stretchr/testify/require"

	accountDomain "github.com/guardvault/guardvault/internal/account/domain"
	apikeyDomain "github.com/guardvault/guardvault/internal/apikey/domain"
	apikeyHTTP "github.com/guardvault/guardvault/internal/apikey/http"
	apikeyUseCase "github.com/guardvault/guardvault/internal/apikey/usecase"
	auditDomain "github.com/guardvault/guardvault/internal/audit/domain"
	auditHTTP "github.com/guardvault/guardvault/internal/audit/http"
	auditUseCase "github.com/guardvault/guardvault/internal/audit/usecase"
	contentDomain "github.com/guardvault/guardvault/internal/content/domain"
	contentHTTP "github.com/guardvault/guardvault/internal/content/http"
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

type mockContentUseCase struct {
	mock.Mock
}

func (m *mockContentUseCase) EncryptForAccount(
	ctx context.Context,
	accountID uuid.UUID,
	plaintext []byte,
) (*contentDomain.Record, error) {
	args := m.Called(ctx, accountID, plaintext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contentDomain.Record), args.Error(1)
}

func (m *mockContentUseCase) DecryptForAccount(
	ctx context.Context,
	accountID uuid.UUID,
	record *contentDomain.Record,
) ([]byte, error) {
	args := m.Called(ctx, accountID, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockContentUseCase) Store(
	ctx context.Context,
	accountID uuid.UUID,
	kind string,
	plaintext []byte,
) (*contentDomain.Record, error) {
	args := m.Called(ctx, accountID, kind, plaintext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contentDomain.Record), args.Error(1)
}

func (m *mockContentUseCase) Get(
	ctx context.Context,
	accountID, recordID uuid.UUID,
) (*contentDomain.Record, error) {
	args := m.Called(ctx, accountID, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contentDomain.Record), args.Error(1)
}

func (m *mockContentUseCase) List(
	ctx context.Context,
	accountID uuid.UUID,
	offset, limit int,
) ([]*contentDomain.Record, error) {
	args := m.Called(ctx, accountID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*contentDomain.Record), args.Error(1)
}

type noopRecorder struct{}

func (noopRecorder) Record(auditUseCase.RecordInput) {}
func (noopRecorder) Dropped() uint64                 { return 0 }
func (noopRecorder) Close()                          {}

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
	return args.Int(0), args.Get(1).([]uuid.UUID), args.Error(2)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(t *testing.T, cfg RouterConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if cfg.Logger == nil {
		cfg.Logger = discardLogger()
	}
	if cfg.Recorder == nil {
		cfg.Recorder = noopRecorder{}
	}
	if cfg.APIKeyHandler == nil {
		cfg.APIKeyHandler = apikeyHTTP.NewAPIKeyHandler(&mockAPIKeyUseCase{}, cfg.Recorder, cfg.Logger)
	}
	if cfg.ContentHandler == nil {
		cfg.ContentHandler = contentHTTP.NewContentHandler(&mockContentUseCase{}, cfg.Recorder, cfg.Logger)
	}
	if cfg.AuditLogHandler == nil {
		cfg.AuditLogHandler = auditHTTP.NewAuditLogHandler(&mockAuditLogUseCase{}, cfg.Logger)
	}
	if cfg.APIKeyUseCase == nil {
		rejectAll := &mockAPIKeyUseCase{}
		rejectAll.On("Validate", mock.Anything, mock.Anything).
			Return(nil, nil, apikeyDomain.ErrInvalidCredentials).Maybe()
		cfg.APIKeyUseCase = rejectAll
	}

	return NewRouter(cfg)
}

func TestRouterHealthEndpoints(t *testing.T) {
	t.Run("healthz returns ok", func(t *testing.T) {
		router := newTestRouter(t, RouterConfig{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "ok")
	})

	t.Run("readyz without check mirrors liveness", func(t *testing.T) {
		router := newTestRouter(t, RouterConfig{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("readyz reports unavailable dependencies", func(t *testing.T) {
		router := newTestRouter(t, RouterConfig{
			ReadyCheck: func(ctx context.Context) error {
				return errors.New("connection refused")
			},
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("health probes skip authentication", func(t *testing.T) {
		apiKeys := &mockAPIKeyUseCase{}
		router := newTestRouter(t, RouterConfig{APIKeyUseCase: apiKeys})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		apiKeys.AssertNotCalled(t, "Validate")
	})
}

func TestRouterAuthentication(t *testing.T) {
	t.Run("protected route without credential returns 401", func(t *testing.T) {
		router := newTestRouter(t, RouterConfig{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/api-keys", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid credential reaches handler", func(t *testing.T) {
		account := &accountDomain.Account{ID: uuid.Must(uuid.NewV7()), Status: accountDomain.StatusActive}
		apiKey := &apikeyDomain.APIKey{ID: uuid.Must(uuid.NewV7()), AccountID: account.ID}

		apiKeys := &mockAPIKeyUseCase{}
		apiKeys.On("Validate", mock.Anything, "gv_test_secret").Return(account, apiKey, nil)
		apiKeys.On("List", mock.Anything, account.ID, 0, 50).Return([]*apikeyDomain.APIKey{apiKey}, nil)

		router := newTestRouter(t, RouterConfig{
			APIKeyUseCase: apiKeys,
			APIKeyHandler: apikeyHTTP.NewAPIKeyHandler(apiKeys, noopRecorder{}, discardLogger()),
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/api-keys", nil)
		req.Header.Set("Authorization", "Bearer gv_test_secret")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		apiKeys.AssertExpectations(t)
	})
}

func TestRouterCORS(t *testing.T) {
	t.Run("preflight from allowed origin", func(t *testing.T) {
		router := newTestRouter(t, RouterConfig{
			CORSEnabled:      true,
			CORSAllowOrigins: "https://app.example.com",
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/v1/content", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("disabled leaves responses untouched", func(t *testing.T) {
		router := newTestRouter(t, RouterConfig{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", "https://app.example.com")
		router.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single", "https://a.example.com", []string{"https://a.example.com"}},
		{
			"multiple with whitespace",
			" https://a.example.com , https://b.example.com ",
			[]string{"https://a.example.com", "https://b.example.com"},
		},
		{"trailing comma", "https://a.example.com,", []string{"https://a.example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseOrigins(tt.input))
		})
	}
}
