package http

import (
	"bytes"
	"context"
	"encoding/base64"
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
	auditDomain "github.com/guardvault/guardvault/internal/audit/domain"
	auditUseCase "github.com/guardvault/guardvault/internal/audit/usecase"
	authHTTP "github.com/guardvault/guardvault/internal/auth/http"
	contentDomain "github.com/guardvault/guardvault/internal/content/domain"
)

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

type captureRecorder struct {
	mu     sync.Mutex
	events []auditUseCase.RecordInput
}

func (r *captureRecorder) Record(input auditUseCase.RecordInput) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, input)
}

func (r *captureRecorder) Dropped() uint64 { return 0 }

func (r *captureRecorder) Close() {}

func (r *captureRecorder) recorded() []auditUseCase.RecordInput {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]auditUseCase.RecordInput, len(r.events))
	copy(out, r.events)
	return out
}

func newContentRouter(uc *mockContentUseCase, recorder *captureRecorder, accountID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewContentHandler(uc, recorder, logger)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		account := &accountDomain.Account{ID: accountID, Status: accountDomain.StatusActive}
		c.Request = c.Request.WithContext(authHTTP.WithAccount(c.Request.Context(), account))
		c.Next()
	})
	router.POST("/v1/content", handler.StoreHandler)
	router.GET("/v1/content/:id", handler.GetHandler)
	router.GET("/v1/content", handler.ListHandler)
	return router
}

func TestContentHandler_Store(t *testing.T) {
	accountID := uuid.Must(uuid.NewV7())
	plaintext := []byte("payload")

	t.Run("stores payload and audits", func(t *testing.T) {
		record := &contentDomain.Record{ID: uuid.Must(uuid.NewV7()), AccountID: accountID, Kind: "analysis"}
		uc := new(mockContentUseCase)
		uc.On("Store", mock.Anything, accountID, "analysis", plaintext).Return(record, nil)
		recorder := &captureRecorder{}
		router := newContentRouter(uc, recorder, accountID)

		body, _ := json.Marshal(map[string]string{
			"kind":  "analysis",
			"value": base64.StdEncoding.EncodeToString(plaintext),
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/content", bytes.NewReader(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), record.ID.String())
		assert.NotContains(t, w.Body.String(), base64.StdEncoding.EncodeToString(plaintext))

		events := recorder.recorded()
		require.Len(t, events, 1)
		assert.Equal(t, auditDomain.EventContentStored, events[0].EventType)
	})

	t.Run("invalid kind rejected", func(t *testing.T) {
		uc := new(mockContentUseCase)
		router := newContentRouter(uc, &captureRecorder{}, accountID)

		body, _ := json.Marshal(map[string]string{
			"kind":  "Not Valid",
			"value": base64.StdEncoding.EncodeToString(plaintext),
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/content", bytes.NewReader(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		uc.AssertNotCalled(t, "Store")
	})

	t.Run("invalid base64 rejected", func(t *testing.T) {
		uc := new(mockContentUseCase)
		router := newContentRouter(uc, &captureRecorder{}, accountID)

		body, _ := json.Marshal(map[string]string{"kind": "analysis", "value": "not base64!!!"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/content", bytes.NewReader(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		uc.AssertNotCalled(t, "Store")
	})
}

func TestContentHandler_Get(t *testing.T) {
	accountID := uuid.Must(uuid.NewV7())

	t.Run("returns decrypted payload and audits read", func(t *testing.T) {
		record := &contentDomain.Record{
			ID:        uuid.Must(uuid.NewV7()),
			AccountID: accountID,
			Kind:      "analysis",
			Plaintext: []byte("payload"),
		}
		uc := new(mockContentUseCase)
		uc.On("Get", mock.Anything, accountID, record.ID).Return(record, nil)
		recorder := &captureRecorder{}
		router := newContentRouter(uc, recorder, accountID)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/content/"+record.ID.String(), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), base64.StdEncoding.EncodeToString([]byte("payload")))

		events := recorder.recorded()
		require.Len(t, events, 1)
		assert.Equal(t, auditDomain.EventContentRead, events[0].EventType)
	})

	t.Run("decryption failure audited and hidden", func(t *testing.T) {
		recordID := uuid.Must(uuid.NewV7())
		uc := new(mockContentUseCase)
		uc.On("Get", mock.Anything, accountID, recordID).
			Return(nil, contentDomain.ErrRecordDecryptionFailed)
		recorder := &captureRecorder{}
		router := newContentRouter(uc, recorder, accountID)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/content/"+recordID.String(), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "decryption")

		events := recorder.recorded()
		require.Len(t, events, 1)
		assert.Equal(t, auditDomain.EventDecryptionFailed, events[0].EventType)
	})

	t.Run("malformed id rejected", func(t *testing.T) {
		uc := new(mockContentUseCase)
		router := newContentRouter(uc, &captureRecorder{}, accountID)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/content/not-a-uuid", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		uc.AssertNotCalled(t, "Get")
	})
}

func TestContentHandler_List(t *testing.T) {
	accountID := uuid.Must(uuid.NewV7())

	t.Run("returns metadata page", func(t *testing.T) {
		records := []*contentDomain.Record{
			{ID: uuid.Must(uuid.NewV7()), AccountID: accountID, Kind: "analysis"},
		}
		uc := new(mockContentUseCase)
		uc.On("List", mock.Anything, accountID, 0, 50).Return(records, nil)
		router := newContentRouter(uc, &captureRecorder{}, accountID)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/content", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), records[0].ID.String())
	})
}
