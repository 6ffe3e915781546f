package mockapi

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Account is a registered credential pair. PasswordHash is a bcrypt hash.
type Account struct {
	Email        string `yaml:"email"`
	PasswordHash string `yaml:"password_hash"`
}

type accountsFile struct {
	Accounts []Account `yaml:"accounts"`
}

// LoadAccountsFile reads registered accounts from a YAML fixture.
func LoadAccountsFile(path string) ([]Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read accounts file: %w", err)
	}
	var f accountsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse accounts file: %w", err)
	}
	return f.Accounts, nil
}

// HashPassword produces a bcrypt hash for test fixtures.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
