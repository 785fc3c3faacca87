package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the shipment relay service
type Config struct {
	Server    ServerConfig
	Orderdesk OrderdeskConfig
	Forward   ForwardConfig
	RedisURL  string
	Stores    StoreRegistry
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// OrderdeskConfig holds the Orderdesk API configuration
type OrderdeskConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

// ForwardConfig holds the single-order ship endpoint configuration
type ForwardConfig struct {
	URL            string
	RequestTimeout time.Duration
}

// knownStoreIDs is the fixed set of Orderdesk stores the relay can submit to.
// Each store's API key is read from a STORE_<ID> environment variable.
var knownStoreIDs = []string{
	"21633", "40348", "12803", "9672", "47219", "8366", "16152", "8466",
	"15521", "24121", "14077", "12339", "43379", "9369", "9805", "67865",
	"48371", "48551", "110641", "41778", "8267", "75092", "8402", "68125",
	"8729", "47257", "8636",
}

// StoreRegistry maps store ids to API keys. It is populated once at startup
// and never mutated afterwards, so concurrent reads need no locking.
type StoreRegistry struct {
	keys map[string]string
}

// NewStoreRegistry builds a registry from an explicit id->key map.
func NewStoreRegistry(keys map[string]string) StoreRegistry {
	copied := make(map[string]string, len(keys))
	for id, key := range keys {
		copied[id] = key
	}
	return StoreRegistry{keys: copied}
}

// Lookup returns the API key for a store. The second return is false when the
// store id is not in the registry at all; a known store with no key configured
// returns ("", true).
func (r StoreRegistry) Lookup(storeID string) (string, bool) {
	key, ok := r.keys[storeID]
	return key, ok
}

// Len returns the number of registered stores.
func (r StoreRegistry) Len() int {
	return len(r.keys)
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("NODE_ENV", "development"),
		},
		Orderdesk: OrderdeskConfig{
			BaseURL:        getEnv("ORDERDESK_BASE_URL", "https://app.orderdesk.me"),
			RequestTimeout: time.Duration(getEnvAsInt("ORDERDESK_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		Forward: ForwardConfig{
			URL:            getEnv("FORWARD_SHIP_URL", "https://orderdesk-single-order-ship-65ffd8ceba36.herokuapp.com/"),
			RequestTimeout: time.Duration(getEnvAsInt("FORWARD_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		RedisURL: getEnv("REDIS_URL", ""),
		Stores:   loadStoreRegistry(),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// loadStoreRegistry reads one STORE_<ID> variable per known store. Stores
// whose variable is unset stay in the registry with an empty key so the
// submit pipeline can distinguish "unknown store" from "key not configured".
func loadStoreRegistry() StoreRegistry {
	keys := make(map[string]string, len(knownStoreIDs))
	for _, id := range knownStoreIDs {
		keys[id] = os.Getenv("STORE_" + id)
	}
	return StoreRegistry{keys: keys}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Orderdesk.BaseURL == "" {
		return fmt.Errorf("ORDERDESK_BASE_URL is required")
	}
	if c.Forward.URL == "" {
		return fmt.Errorf("FORWARD_SHIP_URL is required")
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt gets an integer environment variable or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
