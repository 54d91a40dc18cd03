package fixtures

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"estate_e2e/models"
)

// Credentials maps a user type ("standard", "premium", ...) to a login.
type Credentials map[string]models.Credentials

// LoadCredentials reads the credentials file. A missing file yields an empty
// set so environment overrides alone can drive a CI run.
func LoadCredentials(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Credentials{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials %s: %w", path, err)
	}
	return creds, nil
}

// For returns the login for userType. E2E_<TYPE>_EMAIL and
// E2E_<TYPE>_PASSWORD take precedence over the file.
func (c Credentials) For(userType string) (models.Credentials, error) {
	prefix := "E2E_" + strings.ToUpper(userType) + "_"
	email, password := os.Getenv(prefix+"EMAIL"), os.Getenv(prefix+"PASSWORD")
	if email != "" && password != "" {
		return models.Credentials{Email: email, Password: password}, nil
	}

	cred, ok := c[userType]
	if !ok || cred.Email == "" {
		return models.Credentials{}, fmt.Errorf("%w: credentials for user type %q", ErrNotFound, userType)
	}
	return cred, nil
}
