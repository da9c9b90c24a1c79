package confutil

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/openintegrity/oi-audit/audit"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

const (
	// EnvConfig names a config file to load instead of the default one.
	EnvConfig = "OI_AUDIT_CONFIG"

	configDirName  = "oi-audit"
	configFileName = "config.toml"
)

const (
	VerbosityQuiet   = "quiet"
	VerbosityNormal  = "normal"
	VerbosityVerbose = "verbose"
	VerbosityDebug   = "debug"
)

// Config holds the settings read from the config file. Unset values are nil
// or empty so that command-line flags can be layered on top.
type Config struct {
	Color       *bool
	Interactive *bool
	Standards   *bool
	Format      string
	Verbosity   string
}

// DefaultPath returns the config file location, honoring OI_AUDIT_CONFIG
// and XDG_CONFIG_HOME.
func DefaultPath() string {
	if fp := os.Getenv(EnvConfig); fp != "" {
		return fp
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, configDirName, configFileName)
}

// Load reads the config file at fp. A missing file yields an empty config
// unless required is set.
func Load(fp string, required bool) (*Config, error) {
	cfg := &Config{}
	if fp == "" {
		return cfg, nil
	}
	t, err := loadConfigTree(fp)
	if err != nil {
		return nil, audit.Wrap(audit.ConfigError, err, "Fix or remove "+fp+".")
	}
	if t == nil {
		if required {
			return nil, audit.Wrap(audit.IOError, errors.Errorf("config file %s does not exist", fp), "")
		}
		return cfg, nil
	}

	for _, k := range []struct {
		key string
		dst **bool
	}{
		{"color", &cfg.Color},
		{"interactive", &cfg.Interactive},
		{"standards", &cfg.Standards},
	} {
		if !t.Has(k.key) {
			continue
		}
		v, ok := t.Get(k.key).(bool)
		if !ok {
			return nil, invalidValue(fp, k.key, "a boolean")
		}
		*k.dst = &v
	}

	if t.Has("format") {
		v, ok := t.Get("format").(string)
		if !ok || (v != "text" && v != "json") {
			return nil, invalidValue(fp, "format", `"text" or "json"`)
		}
		cfg.Format = v
	}
	if t.Has("verbosity") {
		v, ok := t.Get("verbosity").(string)
		switch strings.ToLower(v) {
		case VerbosityQuiet, VerbosityNormal, VerbosityVerbose, VerbosityDebug:
		default:
			ok = false
		}
		if !ok {
			return nil, invalidValue(fp, "verbosity", `one of "quiet", "normal", "verbose" or "debug"`)
		}
		cfg.Verbosity = strings.ToLower(v)
	}
	return cfg, nil
}

func invalidValue(fp, key, want string) error {
	return audit.Wrap(audit.ConfigError, errors.Errorf("invalid value for %q in %s: must be %s", key, fp, want), "Fix or remove "+fp+".")
}

// loadConfigTree loads the config toml tree
func loadConfigTree(fp string) (*toml.Tree, error) {
	f, err := os.Open(fp)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to load config from %s", fp)
	}
	defer f.Close()
	t, err := toml.LoadReader(f)
	if err != nil {
		return t, errors.Wrap(err, "failed to parse config")
	}
	return t, nil
}
