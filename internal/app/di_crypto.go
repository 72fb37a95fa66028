package app

import (
	"context"
	"fmt"

	cryptoDomain "github.com/guardvault/guardvault/internal/crypto/domain"
	cryptoService "github.com/guardvault/guardvault/internal/crypto/service"
	cryptoUseCase "github.com/guardvault/guardvault/internal/crypto/usecase"
)

// MasterKeyChain returns the master key chain loaded from environment
// variables, decrypting entries through KMS when a provider is configured.
func (c *Container) MasterKeyChain() (*cryptoDomain.MasterKeyChain, error) {
	var err error
	c.masterKeyChainInit.Do(func() {
		c.masterKeyChain, err = c.initMasterKeyChain()
		if err != nil {
			c.initErrors["masterKeyChain"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["masterKeyChain"]; exists {
		return nil, storedErr
	}
	return c.masterKeyChain, nil
}

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = c.initAEADManager()
	})
	return c.aeadManager
}

// Keyring returns the master keyring used to wrap and unwrap account keys.
func (c *Container) Keyring() (cryptoService.Keyring, error) {
	var err error
	c.keyringInit.Do(func() {
		c.keyring, err = c.initKeyring()
		if err != nil {
			c.initErrors["keyring"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyring"]; exists {
		return nil, storedErr
	}
	return c.keyring, nil
}

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = c.initKMSService()
	})
	return c.kmsService
}

// AccountKeyStore returns the account key store.
func (c *Container) AccountKeyStore() (cryptoUseCase.AccountKeyStore, error) {
	var err error
	c.accountKeyStoreInit.Do(func() {
		c.accountKeyStore, err = c.initAccountKeyStore()
		if err != nil {
			c.initErrors["accountKeyStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["accountKeyStore"]; exists {
		return nil, storedErr
	}
	return c.accountKeyStore, nil
}

// initMasterKeyChain loads the master key chain, opening a KMS keeper first
// when one is configured. The keeper is only needed during the load and is
// closed before returning.
func (c *Container) initMasterKeyChain() (*cryptoDomain.MasterKeyChain, error) {
	ctx := context.Background()
	logger := c.Logger()

	var decrypter cryptoDomain.KeyDecrypter
	if c.config.KMSProvider != "" {
		keeper, err := c.KMSService().OpenKeeper(ctx, c.config.KMSKeyURI)
		if err != nil {
			return nil, fmt.Errorf("failed to open kms keeper: %w", err)
		}
		defer func() {
			if closeErr := keeper.Close(); closeErr != nil {
				logger.Warn("failed to close kms keeper", "error", closeErr)
			}
		}()
		decrypter = keeper
	}

	masterKeyChain, err := cryptoDomain.LoadMasterKeyChain(ctx, decrypter)
	if err != nil {
		return nil, fmt.Errorf("failed to load master key chain: %w", err)
	}
	return masterKeyChain, nil
}

// initAEADManager creates the AEAD manager service.
func (c *Container) initAEADManager() cryptoService.AEADManager {
	return cryptoService.NewAEADManager()
}

// initKeyring creates the keyring using the master key chain.
func (c *Container) initKeyring() (cryptoService.Keyring, error) {
	masterKeyChain, err := c.MasterKeyChain()
	if err != nil {
		return nil, fmt.Errorf("failed to get master key chain for keyring: %w", err)
	}

	return cryptoService.NewKeyring(masterKeyChain, c.AEADManager()), nil
}

// initKMSService creates the KMS service for decrypting master keys.
func (c *Container) initKMSService() cryptoService.KMSService {
	return cryptoService.NewKMSService()
}

// initAccountKeyStore creates the account key store with all its dependencies.
func (c *Container) initAccountKeyStore() (cryptoUseCase.AccountKeyStore, error) {
	keyring, err := c.Keyring()
	if err != nil {
		return nil, fmt.Errorf("failed to get keyring for account key store: %w", err)
	}

	accountRepository, err := c.AccountRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get account repository for account key store: %w", err)
	}

	return cryptoUseCase.NewAccountKeyStore(keyring, accountRepository, c.config.AccountKeyCacheTTL), nil
}
