package connector

import (
	"strings"

	"github.com/spf13/cast"
)

// Keys written by the factory before a connector is constructed.
const (
	KeyConnectionType = "connection_type"
	KeyDebug          = "debug"
)

// Common configuration keys shared by several backends.
const (
	KeyUsername       = "username"
	KeyPassword       = "password"
	KeyHost           = "host"
	KeyPort           = "port"
	KeyDatabase       = "database"
	KeySchema         = "schema"
	KeyRegion         = "region"
	KeyAccessKey      = "access_key"
	KeySecretKey      = "secret_key"
	KeySessionToken   = "session_token"
	KeyEndpoint       = "endpoint"
	KeyToken          = "token"
	KeyAuthentication = "authentication"
)

// Config is the configuration mapping a connector is constructed with.
// Keys are read in lowercase; values are heterogeneous and converted on read.
type Config map[string]any

// Clone returns a shallow copy of the configuration.
func (c Config) Clone() Config {
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Has reports whether key is present with a non-empty value.
func (c Config) Has(key string) bool {
	v, ok := c[key]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// String returns the value of key as a string, or "" when absent.
func (c Config) String(key string) string {
	if !c.Has(key) {
		return ""
	}
	return cast.ToString(c[key])
}

// StringOr returns the value of key as a string, or def when absent.
func (c Config) StringOr(key, def string) string {
	if !c.Has(key) {
		return def
	}
	return cast.ToString(c[key])
}

// Int returns the value of key as an int, or def when absent or not numeric.
func (c Config) Int(key string, def int) int {
	if !c.Has(key) {
		return def
	}
	n, err := cast.ToIntE(c[key])
	if err != nil {
		return def
	}
	return n
}

// Bool returns the value of key as a bool, or def when absent or not boolean.
func (c Config) Bool(key string, def bool) bool {
	if !c.Has(key) {
		return def
	}
	b, err := cast.ToBoolE(c[key])
	if err != nil {
		return def
	}
	return b
}

// NormalizeKeys returns a copy of m whose keys are upper or lower cased.
// The input map is never modified.
func NormalizeKeys(m map[string]any, toUpper bool) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if toUpper {
			out[strings.ToUpper(k)] = v
		} else {
			out[strings.ToLower(k)] = v
		}
	}
	return out
}
