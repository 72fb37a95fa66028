package commands

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoService "github.com/guardvault/guardvault/internal/crypto/service"
)

type mockKMSService struct {
	mock.Mock
}

func (m *mockKMSService) OpenKeeper(ctx context.Context, keyURI string) (cryptoService.KMSKeeper, error) {
	args := m.Called(ctx, keyURI)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(cryptoService.KMSKeeper), args.Error(1)
}

type mockKMSKeeper struct {
	mock.Mock
}

func (m *mockKMSKeeper) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	args := m.Called(ctx, plaintext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockKMSKeeper) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	args := m.Called(ctx, ciphertext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockKMSKeeper) Close() error {
	return m.Called().Error(0)
}

func TestRunCreateMasterKey(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		kmsService := &mockKMSService{}
		keeper := &mockKMSKeeper{}

		kmsService.On("OpenKeeper", ctx, "base64key://abc").Return(keeper, nil)
		keeper.On("Encrypt", ctx, mock.AnythingOfType("[]uint8")).Return([]byte("encrypted"), nil)
		keeper.On("Close").Return(nil)

		var out bytes.Buffer
		err := RunCreateMasterKey(ctx, kmsService, &out, "test-key", "localsecrets", "base64key://abc")
		require.NoError(t, err)

		assert.Contains(t, out.String(), `ACTIVE_MASTER_KEY_ID="test-key"`)
		assert.Contains(t, out.String(), `KMS_PROVIDER="localsecrets"`)
		assert.Contains(t, out.String(), "MASTER_KEYS=\"test-key:")
		kmsService.AssertExpectations(t)
		keeper.AssertExpectations(t)
	})

	t.Run("generates default key id", func(t *testing.T) {
		kmsService := &mockKMSService{}
		keeper := &mockKMSKeeper{}

		kmsService.On("OpenKeeper", ctx, "base64key://abc").Return(keeper, nil)
		keeper.On("Encrypt", ctx, mock.AnythingOfType("[]uint8")).Return([]byte("encrypted"), nil)
		keeper.On("Close").Return(nil)

		var out bytes.Buffer
		err := RunCreateMasterKey(ctx, kmsService, &out, "", "localsecrets", "base64key://abc")
		require.NoError(t, err)

		assert.Contains(t, out.String(), "MASTER_KEYS=\"master-key-")
	})

	t.Run("requires kms parameters", func(t *testing.T) {
		var out bytes.Buffer
		err := RunCreateMasterKey(ctx, &mockKMSService{}, &out, "test-key", "", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--kms-provider and --kms-key-uri are required")
	})

	t.Run("keeper open failure", func(t *testing.T) {
		kmsService := &mockKMSService{}
		kmsService.On("OpenKeeper", ctx, "base64key://abc").
			Return(nil, errors.New("invalid key uri"))

		var out bytes.Buffer
		err := RunCreateMasterKey(ctx, kmsService, &out, "test-key", "localsecrets", "base64key://abc")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open KMS keeper")
	})

	t.Run("encrypt failure", func(t *testing.T) {
		kmsService := &mockKMSService{}
		keeper := &mockKMSKeeper{}

		kmsService.On("OpenKeeper", ctx, "base64key://abc").Return(keeper, nil)
		keeper.On("Encrypt", ctx, mock.AnythingOfType("[]uint8")).
			Return(nil, errors.New("kms unavailable"))
		keeper.On("Close").Return(nil)

		var out bytes.Buffer
		err := RunCreateMasterKey(ctx, kmsService, &out, "test-key", "localsecrets", "base64key://abc")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to encrypt master key")
	})
}
