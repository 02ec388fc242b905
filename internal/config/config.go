// Package config loads the ynabsync configuration file
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/eshaffer321/ynabsync/internal/filter"
	"github.com/eshaffer321/ynabsync/internal/reconcile"
	"github.com/eshaffer321/ynabsync/internal/sources"
	internalTypes "github.com/eshaffer321/ynabsync/internal/types"
	"github.com/eshaffer321/ynabsync/pkg/ynab"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values
const (
	EnvToken     = "YNAB_TOKEN"
	EnvBaseURL   = "YNAB_BASE_URL"
	EnvSentryDSN = "SENTRY_DSN"
)

// DefaultPath is read when no file is given
const DefaultPath = "ynabsync.yaml"

// Config is the whole configuration file
type Config struct {
	Token        string                     `yaml:"token"`
	BaseURL      string                     `yaml:"base_url"`
	SessionFile  string                     `yaml:"session_file"`
	SentryDSN    string                     `yaml:"sentry_dsn"`
	Timeout      time.Duration              `yaml:"timeout"`
	StrictSchema bool                       `yaml:"strict_schema"`
	Retry        *internalTypes.RetryConfig `yaml:"retry"`
	Sync         Sync                       `yaml:"sync"`
	Sources      map[string]Source          `yaml:"sources"`
}

// Sync configures the mirror run
type Sync struct {
	MasterBudget         string      `yaml:"master_budget"`
	Satellites           []Satellite `yaml:"satellites"`
	CreditCardAccountID  string      `yaml:"credit_card_account_id"`
	InternalMarker       string      `yaml:"internal_marker"`
	ExcludeTransfers     *bool       `yaml:"exclude_transfers"`
	ExcludePayeePrefixes []string    `yaml:"exclude_payee_prefixes"`
	NullPayeePrefixes    []string    `yaml:"null_payee_prefixes"`
	LookbackDays         int         `yaml:"lookback_days"`
	MaxMemoLength        int         `yaml:"max_memo_length"`
}

// Satellite maps a foreign-currency budget to its master account
type Satellite struct {
	Budget    string `yaml:"budget"`
	AccountID string `yaml:"account_id"`
}

// Source configures one import source
type Source struct {
	Budget          string `yaml:"budget"`
	AccountID       string `yaml:"account_id"`
	TransferPayeeID string `yaml:"transfer_payee_id"`
	TransferPayee   string `yaml:"transfer_payee"`
	Fiat            string `yaml:"fiat"`
	Timezone        string `yaml:"timezone"`
}

// Error lists every required key that is missing
type Error struct {
	Missing []string
}

func (e *Error) Error() string {
	return "config: missing required keys: " + strings.Join(e.Missing, ", ")
}

// Load reads path, applies environment overrides and fills defaults. The
// result is not validated.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %s", path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML (or JSON) configuration
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvToken)); v != "" {
		c.Token = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		c.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSentryDSN)); v != "" {
		c.SentryDSN = v
	}
}

func (c *Config) applyDefaults() {
	if c.Sync.InternalMarker == "" {
		c.Sync.InternalMarker = filter.DefaultInternalMarker
	}
	if c.Sync.ExcludeTransfers == nil {
		on := true
		c.Sync.ExcludeTransfers = &on
	}
	if c.Sync.ExcludePayeePrefixes == nil {
		c.Sync.ExcludePayeePrefixes = append([]string(nil), filter.DefaultExcludePayeePrefixes...)
	}
	if c.Sync.NullPayeePrefixes == nil {
		c.Sync.NullPayeePrefixes = append([]string(nil), reconcile.DefaultNullPayeePrefixes...)
	}
	if c.Sync.LookbackDays == 0 {
		c.Sync.LookbackDays = reconcile.DefaultLookbackDays
	}
	if c.Sync.MaxMemoLength == 0 {
		c.Sync.MaxMemoLength = reconcile.DefaultMaxMemoLength
	}
}

// Validate checks the keys every command needs
func (c *Config) Validate() error {
	var missing []string
	if c.Token == "" && c.SessionFile == "" {
		missing = append(missing, "token")
	}
	if len(missing) > 0 {
		return &Error{Missing: missing}
	}
	return nil
}

// ValidateSync checks the keys the sync command needs
func (c *Config) ValidateSync() error {
	var missing []string
	if c.Token == "" && c.SessionFile == "" {
		missing = append(missing, "token")
	}
	if c.Sync.MasterBudget == "" {
		missing = append(missing, "sync.master_budget")
	}
	if len(c.Sync.Satellites) == 0 {
		missing = append(missing, "sync.satellites")
	}
	for i, s := range c.Sync.Satellites {
		if s.Budget == "" {
			missing = append(missing, fmt.Sprintf("sync.satellites[%d].budget", i))
		}
		if s.AccountID == "" {
			missing = append(missing, fmt.Sprintf("sync.satellites[%d].account_id", i))
		}
	}
	if len(missing) > 0 {
		return &Error{Missing: missing}
	}
	return nil
}

// ValidateSource checks the keys an import from name needs
func (c *Config) ValidateSource(name string) error {
	var missing []string
	if c.Token == "" && c.SessionFile == "" {
		missing = append(missing, "token")
	}
	src, ok := c.Sources[name]
	if !ok {
		return &Error{Missing: append(missing, "sources."+name)}
	}
	if src.Budget == "" {
		missing = append(missing, "sources."+name+".budget")
	}
	if src.AccountID == "" {
		missing = append(missing, "sources."+name+".account_id")
	}
	if len(missing) > 0 {
		return &Error{Missing: missing}
	}
	return nil
}

// SourceNames lists the configured sources
func (c *Config) SourceNames() []string {
	names := make([]string, 0, len(c.Sources))
	for name := range c.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ClientOptions converts the connection settings
func (c *Config) ClientOptions(logger ynab.Logger) *ynab.ClientOptions {
	return &ynab.ClientOptions{
		BaseURL:      c.BaseURL,
		Timeout:      c.Timeout,
		Token:        c.Token,
		SessionFile:  c.SessionFile,
		Logger:       logger,
		RetryConfig:  c.Retry,
		SentryDSN:    c.SentryDSN,
		StrictSchema: c.StrictSchema,
	}
}

// ReconcileConfig converts the sync settings. With a credit card account
// configured, onlyCreditCard selects between mirroring just that account
// and mirroring every account but it.
func (c *Config) ReconcileConfig(onlyCreditCard bool) (reconcile.Config, error) {
	rc := reconcile.DefaultConfig()
	rc.MasterBudget = c.Sync.MasterBudget
	for _, s := range c.Sync.Satellites {
		rc.Satellites = append(rc.Satellites, reconcile.Satellite{Budget: s.Budget, AccountID: s.AccountID})
	}

	rc.Policy.InternalMarker = c.Sync.InternalMarker
	rc.Policy.ExcludeTransfers = c.Sync.ExcludeTransfers == nil || *c.Sync.ExcludeTransfers
	rc.Policy.ExcludePayeePrefixes = c.Sync.ExcludePayeePrefixes
	switch {
	case onlyCreditCard && c.Sync.CreditCardAccountID == "":
		return reconcile.Config{}, &Error{Missing: []string{"sync.credit_card_account_id"}}
	case onlyCreditCard:
		rc.Policy.Scope = filter.ScopeOnly(c.Sync.CreditCardAccountID)
	case c.Sync.CreditCardAccountID != "":
		rc.Policy.Scope = filter.ScopeExcept(c.Sync.CreditCardAccountID)
	}

	rc.NullPayeePrefixes = c.Sync.NullPayeePrefixes
	rc.Window.LookbackDays = c.Sync.LookbackDays
	rc.MaxMemoLength = c.Sync.MaxMemoLength
	return rc, nil
}

// SourceOptions converts a source's settings
func (c *Config) SourceOptions(name string) (sources.Options, error) {
	src := c.Sources[name]
	opts := sources.Options{
		AccountID:       src.AccountID,
		TransferPayeeID: src.TransferPayeeID,
		Fiat:            src.Fiat,
	}
	if src.Timezone != "" {
		loc, err := time.LoadLocation(src.Timezone)
		if err != nil {
			return sources.Options{}, errors.Wrapf(err, "sources.%s.timezone", name)
		}
		opts.Location = loc
	}
	return opts, nil
}
