package secrets

import (
	"fmt"
	"os"
	"strings"
)

const (
	keyringPrefix = "keyring:"
	envPrefix     = "env:"
)

// Resolver replaces secret references in configuration values.
//
//	keyring:<service>/<user>  is read from the Store
//	env:<NAME>                is read from the environment
//
// Other values pass through unchanged.
type Resolver struct {
	store  Store
	lookup func(string) (string, bool)
}

// NewResolver returns a resolver reading keyring references from store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store, lookup: os.LookupEnv}
}

// Value resolves a single string.
func (r *Resolver) Value(v string) (string, error) {
	switch {
	case strings.HasPrefix(v, keyringPrefix):
		ref := strings.TrimPrefix(v, keyringPrefix)
		service, user, ok := strings.Cut(ref, "/")
		if !ok || service == "" || user == "" {
			return "", fmt.Errorf("invalid keyring reference %q, expected keyring:<service>/<user>", v)
		}
		if r.store == nil {
			return "", fmt.Errorf("no secret store for %q", v)
		}
		return r.store.Get(service, user)
	case strings.HasPrefix(v, envPrefix):
		name := strings.TrimPrefix(v, envPrefix)
		s, ok := r.lookup(name)
		if !ok {
			return "", fmt.Errorf("%w: environment variable %s", ErrNotFound, name)
		}
		return s, nil
	}
	return v, nil
}

// Config returns a copy of cfg with every string reference resolved,
// descending into nested maps and slices.
func (r *Resolver) Config(cfg map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(cfg))
	for k, v := range cfg {
		rv, err := r.resolve(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = rv
	}
	return out, nil
}

func (r *Resolver) resolve(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return r.Value(x)
	case map[string]any:
		return r.Config(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			rv, err := r.resolve(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = rv
		}
		return out, nil
	}
	return v, nil
}
