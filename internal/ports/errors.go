package ports

import (
	"fmt"
	"os"
)

// CredentialSource resolves the API key at call time.
type CredentialSource func() string

// EnvCredential reads the named variable on every call, so a key added to
// the environment after startup is picked up by the next request.
func EnvCredential(name string) CredentialSource {
	return func() string {
		return os.Getenv(name)
	}
}

// ConfigurationError — нет ключа или другой обязательной настройки.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing configuration: %s is not set", e.Setting)
}

// NetworkError is a transport failure: no response was received.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
