package gateway

import (
	"log"
	"os"
	"time"
)

const (
	// EnvRoundtableMode is the environment variable name for mode selection.
	EnvRoundtableMode = "ROUNDTABLE_MODE"
	// ModeMock indicates mock mode should be used.
	ModeMock = "MOCK"
)

// NewGateway creates a gateway based on the ROUNDTABLE_MODE environment
// variable. If ROUNDTABLE_MODE=MOCK, returns a MockClient; otherwise returns
// a real Client.
func NewGateway(baseURL, apiKey string, timeout time.Duration, costPerKTokens float64) Gateway {
	if os.Getenv(EnvRoundtableMode) == ModeMock {
		log.Println("ROUNDTABLE_MODE=MOCK detected, using mock provider gateway")
		return NewMockClient()
	}
	return NewClient(baseURL, apiKey, timeout, costPerKTokens)
}
