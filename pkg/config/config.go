package config

import (
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

type Config struct {
	AutoAcceptThreshold       float64       `koanf:"auto_accept_threshold" default:"90"`
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout" default:"5s"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count" default:"5"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay" default:"2s"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseFilePath          string        `koanf:"database_file_path" required:"true"`
	DatabaseMaxRetries        int           `koanf:"database_max_retries" default:"5"`
	GoogleBooksAPIKey         string        `koanf:"google_books_api_key"`
	GoogleBooksBaseURL        string        `koanf:"google_books_base_url" default:"https://www.googleapis.com"`
	IngestPath                string        `koanf:"ingest_path" default:"/ingest" required:"true"`
	LibraryPath               string        `koanf:"library_path" default:"/library" required:"true"`
	OpenLibraryBaseURL        string        `koanf:"open_library_base_url" default:"https://openlibrary.org"`
	PollIntervalSeconds       int           `koanf:"poll_interval_seconds" default:"30"`
	ProviderTimeout           time.Duration `koanf:"provider_timeout" default:"10s"`
	ScanLockPath              string        `koanf:"scan_lock_path"`
	ServerHost                string        `koanf:"server_host" default:"0.0.0.0"`
	ServerPort                int           `koanf:"server_port" default:"3689"`
}

const (
	configFileENV     = "CONFIG_FILE"
	defaultConfigFile = "/config/paparr.yaml"
)

// New loads the config from defaults, then the YAML config file, then
// environment variables. Later sources win.
func New() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	k := koanf.New(".")

	configFile := os.Getenv(configFileENV)
	if configFile == "" {
		configFile = defaultConfigFile
	}
	if _, err := os.Stat(configFile); err == nil {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", configFile)
		}
	}

	keys := knownKeys()
	err := k.Load(env.Provider("", ".", func(s string) string {
		key := strings.ToLower(s)
		if _, ok := keys[key]; !ok {
			return ""
		}
		return key
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := validateRequired(cfg); err != nil {
		return nil, err
	}

	cfg.finalize()

	return cfg, nil
}

// NewForTest returns a config suitable for unit tests. Paths still need to be
// pointed at temporary directories by the caller.
func NewForTest() *Config {
	cfg := &Config{}
	_ = defaults.Set(cfg)
	cfg.DatabaseFilePath = ":memory:"
	cfg.ServerHost = "127.0.0.1"
	cfg.finalize()
	return cfg
}

// PollInterval is the delay between two scans of the ingest directory.
func (cfg *Config) PollInterval() time.Duration {
	return time.Duration(cfg.PollIntervalSeconds) * time.Second
}

func (cfg *Config) finalize() {
	if cfg.ScanLockPath == "" {
		cfg.ScanLockPath = filepath.Join(cfg.LibraryPath, ".paparr-scan.lock")
	}
}

func knownKeys() map[string]struct{} {
	keys := map[string]struct{}{}
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		keys[t.Field(i).Tag.Get("koanf")] = struct{}{}
	}
	return keys
}

func validateRequired(cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	missing := []string{}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Tag.Get("required") != "true" {
			continue
		}
		if v.Field(i).IsZero() {
			key := field.Tag.Get("koanf")
			missing = append(missing, strings.ToUpper(key)+" (env) / "+key+" (file)")
		}
	}
	if len(missing) == 0 {
		return nil
	}

	sort.Strings(missing)
	return errors.Errorf("missing required config: %s", strings.Join(missing, ", "))
}
