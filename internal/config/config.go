// Package config loads the typed runtime configuration. Values come from, in
// increasing priority, built-in defaults, the YAML config file and ASSETWATCH_*
// environment variables. The resulting Config is passed explicitly to every
// constructor that needs it.
package config

import (
	"fmt"
	"strings"
	"time"

	_ "time/tzdata"

	"github.com/spf13/viper"

	"github.com/khanhnv2901/assetwatch/internal/domain/check"
	consts "github.com/khanhnv2901/assetwatch/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/assetwatch/internal/shared/errors"
)

// EnvPrefix prefixes every environment override, e.g. ASSETWATCH_PAGES_RESULT.
const EnvPrefix = "ASSETWATCH"

const (
	StoreDriverSQLite = "sqlite"
	StoreDriverJSON   = "json"
)

type Config struct {
	Store  StoreConfig  `mapstructure:"store"`
	Pages  PagesConfig  `mapstructure:"pages"`
	Fields FieldsConfig `mapstructure:"fields"`
	Backup BackupConfig `mapstructure:"backup"`
	Checks ChecksConfig `mapstructure:"checks"`
	Pacing PacingConfig `mapstructure:"pacing"`
	Sink   SinkConfig   `mapstructure:"sink"`
	Kafka  KafkaConfig  `mapstructure:"kafka"`
	Log    LogConfig    `mapstructure:"log"`
}

// StoreConfig selects the workbook backend. An empty Path is filled by the CLI
// with a file under the user data directory.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

type PagesConfig struct {
	Inventory string `mapstructure:"inventory"`
	Result    string `mapstructure:"result"`
}

// FieldsConfig maps logical result fields to column headers. "NA" disables a field.
type FieldsConfig struct {
	URL            string `mapstructure:"url"`
	IP             string `mapstructure:"ip"`
	CertStatus     string `mapstructure:"cert_status"`
	WebStatus      string `mapstructure:"web_status"`
	WebHeader      string `mapstructure:"web_header"`
	WebContent     string `mapstructure:"web_content"`
	WebContentSize string `mapstructure:"web_content_size"`
	UpdateAt       string `mapstructure:"update_at"`
}

type BackupConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Timezone string `mapstructure:"timezone"`
}

type ChecksConfig struct {
	MaxRedirects int           `mapstructure:"max_redirects"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	TraceTimeout time.Duration `mapstructure:"trace_timeout"`
	TLSTimeout   time.Duration `mapstructure:"tls_timeout"`
	TLSPort      string        `mapstructure:"tls_port"`
	DNS          DNSConfig     `mapstructure:"dns"`
}

type DNSConfig struct {
	Nameservers []string      `mapstructure:"nameservers"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type PacingConfig struct {
	TargetInterval time.Duration `mapstructure:"target_interval"`
	WriteInterval  time.Duration `mapstructure:"write_interval"`
}

type SinkConfig struct {
	CellCharLimit int `mapstructure:"cell_char_limit"`
	MaxAttempts   int `mapstructure:"max_attempts"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type LogConfig struct {
	Dir   string `mapstructure:"dir"`
	Level string `mapstructure:"level"`
}

// SetDefaults registers every key so environment overrides are honoured by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", StoreDriverSQLite)
	v.SetDefault("store.path", "")

	v.SetDefault("pages.inventory", "")
	v.SetDefault("pages.result", "")

	v.SetDefault("fields.url", consts.DefaultURLColumn)
	for _, key := range []string{"ip", "cert_status", "web_status", "web_header", "web_content", "web_content_size", "update_at"} {
		v.SetDefault("fields."+key, consts.NotApplicable)
	}

	v.SetDefault("backup.enabled", true)
	v.SetDefault("backup.timezone", consts.DefaultTimezone)

	v.SetDefault("checks.max_redirects", consts.DefaultMaxRedirects)
	v.SetDefault("checks.fetch_timeout", consts.DefaultFetchTimeout)
	v.SetDefault("checks.trace_timeout", 10*time.Second)
	v.SetDefault("checks.tls_timeout", 10*time.Second)
	v.SetDefault("checks.tls_port", consts.DefaultTLSPort)
	v.SetDefault("checks.dns.nameservers", []string{})
	v.SetDefault("checks.dns.timeout", 5*time.Second)

	v.SetDefault("pacing.target_interval", consts.DefaultTargetInterval)
	v.SetDefault("pacing.write_interval", consts.DefaultWriteInterval)

	v.SetDefault("sink.cell_char_limit", consts.DefaultCellCharLimit)
	v.SetDefault("sink.max_attempts", 3)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "assetwatch.cells")

	v.SetDefault("log.dir", "")
	v.SetDefault("log.level", "info")
}

// BindEnv enables ASSETWATCH_* overrides with "." mapped to "_".
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load unmarshals v into a validated Config. Defaults and env bindings must
// already be registered on v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", sharedErrors.ErrInvalidConfig, err)
	}
	cfg.Checks.DNS.Nameservers = splitList(cfg.Checks.DNS.Nameservers)
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first missing or out-of-range setting.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Pages.Inventory) == "":
		return fmt.Errorf("%w: pages.inventory", sharedErrors.ErrMissingRequired)
	case strings.TrimSpace(c.Pages.Result) == "":
		return fmt.Errorf("%w: pages.result", sharedErrors.ErrMissingRequired)
	case c.Pages.Inventory == c.Pages.Result:
		return fmt.Errorf("%w: pages.inventory and pages.result must differ", sharedErrors.ErrInvalidConfig)
	case c.Store.Driver != StoreDriverSQLite && c.Store.Driver != StoreDriverJSON:
		return fmt.Errorf("%w: unknown store.driver %q", sharedErrors.ErrInvalidConfig, c.Store.Driver)
	case c.Checks.MaxRedirects <= 0:
		return fmt.Errorf("%w: checks.max_redirects must be positive", sharedErrors.ErrInvalidConfig)
	case c.Sink.CellCharLimit <= len(consts.TruncationMarker)+1:
		return fmt.Errorf("%w: sink.cell_char_limit too small", sharedErrors.ErrInvalidConfig)
	case c.Sink.MaxAttempts < 1:
		return fmt.Errorf("%w: sink.max_attempts must be at least 1", sharedErrors.ErrInvalidConfig)
	case c.Kafka.Enabled && len(c.Kafka.Brokers) == 0:
		return fmt.Errorf("%w: kafka.brokers", sharedErrors.ErrMissingRequired)
	case c.Kafka.Enabled && c.Kafka.Topic == "":
		return fmt.Errorf("%w: kafka.topic", sharedErrors.ErrMissingRequired)
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.FieldMapping(); err != nil {
		return err
	}
	return nil
}

// FieldMapping converts the fields section into the domain mapping.
func (c Config) FieldMapping() (check.FieldMapping, error) {
	return check.NewFieldMapping(c.Fields.URL, map[check.Field]string{
		check.FieldIP:             c.Fields.IP,
		check.FieldCertStatus:     c.Fields.CertStatus,
		check.FieldWebStatus:      c.Fields.WebStatus,
		check.FieldWebHeader:      c.Fields.WebHeader,
		check.FieldWebContent:     c.Fields.WebContent,
		check.FieldWebContentSize: c.Fields.WebContentSize,
		check.FieldUpdateAt:       c.Fields.UpdateAt,
	})
}

// Location returns the timezone used for backup names and completion dates.
func (c Config) Location() (*time.Location, error) {
	name := c.Backup.Timezone
	if name == "" {
		name = consts.DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: backup.timezone %q: %v", sharedErrors.ErrInvalidConfig, name, err)
	}
	return loc, nil
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// LoadStore reads only the store section. Commands that manage the workbook
// directly use it so they work before pages are configured.
func LoadStore(v *viper.Viper) (StoreConfig, error) {
	var store StoreConfig
	if err := v.UnmarshalKey("store", &store); err != nil {
		return StoreConfig{}, fmt.Errorf("%w: %v", sharedErrors.ErrInvalidConfig, err)
	}
	if store.Driver != StoreDriverSQLite && store.Driver != StoreDriverJSON {
		return StoreConfig{}, fmt.Errorf("%w: unknown store.driver %q", sharedErrors.ErrInvalidConfig, store.Driver)
	}
	return store, nil
}

// LoadLog reads only the log section.
func LoadLog(v *viper.Viper) (LogConfig, error) {
	var log LogConfig
	if err := v.UnmarshalKey("log", &log); err != nil {
		return LogConfig{}, fmt.Errorf("%w: %v", sharedErrors.ErrInvalidConfig, err)
	}
	return log, nil
}
