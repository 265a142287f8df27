package profile

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. REDB_CONNECT_CONFIG_PASSWORD.
const EnvPrefix = "REDB_CONNECT"

// Profile is a connector type and its configuration loaded from YAML.
//
//	type: postgre
//	debug: false
//	config:
//	  host: db.internal
//	  password: keyring:redb/pg
type Profile struct {
	Type   string
	Debug  bool
	Config map[string]any
}

// Load reads the profile at path. An empty path yields a profile built from
// the environment alone. Environment variables override top-level fields and
// config entries present in the file.
func Load(path string) (*Profile, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
		}
	}

	p := &Profile{
		Type:   v.GetString("type"),
		Debug:  v.GetBool("debug"),
		Config: make(map[string]any),
	}
	for key := range v.GetStringMap("config") {
		p.Config[key] = v.Get("config." + key)
	}
	return p, nil
}
