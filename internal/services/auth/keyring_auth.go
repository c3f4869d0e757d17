package auth

import (
	"errors"

	"github.com/zalando/go-keyring"
)

type KeyringStore struct {
	serviceName string
}

func NewKeyringStore(serviceName string) *KeyringStore {
	if serviceName == "" {
		serviceName = ServiceName
	}
	return &KeyringStore{serviceName: serviceName}
}

func (k *KeyringStore) Set(key string, value string) error {
	return keyring.Set(k.serviceName, normalizeKey(key), value)
}

func (k *KeyringStore) Get(key string) (string, error) {
	value, err := keyring.Get(k.serviceName, normalizeKey(key))
	if err == nil {
		return value, nil
	}
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrTokenNotFound
	}
	return "", err
}

func (k *KeyringStore) Delete(key string) error {
	err := keyring.Delete(k.serviceName, normalizeKey(key))
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrTokenNotFound
	}
	return err
}
