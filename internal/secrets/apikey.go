package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// “Service” groups the engine's secrets in the OS keychain.
	KeyringService = "noticeboard"

	// EnvAIKey overrides the keychain, for headless installs.
	EnvAIKey = "NOTICEBOARD_AI_KEY"
)

func GetAIKey(keyringAccount string) (string, error) {
	if strings.TrimSpace(keyringAccount) != "" {
		key, err := keyring.Get(KeyringService, keyringAccount)
		if err == nil && strings.TrimSpace(key) != "" {
			return key, nil
		}
	}
	if key := strings.TrimSpace(os.Getenv(EnvAIKey)); key != "" {
		return key, nil
	}
	return "", errors.New("AI API key not found (set it in keychain or via env)")
}

func SetAIKey(keyringAccount string, key string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("API key is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, key)
}

func DeleteAIKey(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount)
}

func AIKeyringAccount(endpoint, model string) string {
	return fmt.Sprintf("noticeboard:ai:%s@%s", model, endpoint)
}
