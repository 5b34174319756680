package inventory

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zombor/inventory-updater/internal/alma"
)

// DefaultMessage is shown while waiting for the first scan
const DefaultMessage = "Please scan barcode to continue"

// Policy decides what happens to items that carry a blocking process status
type Policy string

const (
	// PolicyWarn still writes the inventory date and warns the operator
	PolicyWarn Policy = "warn"
	// PolicyHold skips the update and asks the operator to set the item aside
	PolicyHold Policy = "hold"
)

// Theme is passed through to presentation adapters
type Theme struct {
	Name       string `yaml:"name" json:"name"`
	FontFamily string `yaml:"font_family" json:"font_family"`
	FontSize   int    `yaml:"font_size" json:"font_size"`
}

// Settings is the YAML settings document
type Settings struct {
	Headers        map[string]string `yaml:"headers"`
	StatusLabels   map[string]string `yaml:"status_labels"`
	DefaultMessage string            `yaml:"default_message"`
	Theme          Theme             `yaml:"theme"`
}

// LoadSettings reads the settings file at path. An empty path yields
// zero settings so that every default applies.
func LoadSettings(path string) (Settings, error) {
	var settings Settings
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("reading settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	return settings, nil
}

// Config is everything the workflow needs, fixed at startup
type Config struct {
	APIKey         string
	BaseURL        string
	Headers        map[string]string
	Statuses       StatusTable
	DefaultMessage string
	Policy         Policy
	ScanTimeout    time.Duration
	Theme          Theme
}

// ApplySettings copies the values present in s over c
func (c *Config) ApplySettings(s Settings) {
	if len(s.Headers) > 0 {
		c.Headers = s.Headers
	}
	if len(s.StatusLabels) > 0 {
		c.Statuses = StatusTable(s.StatusLabels)
	}
	if s.DefaultMessage != "" {
		c.DefaultMessage = s.DefaultMessage
	}
	if s.Theme != (Theme{}) {
		c.Theme = s.Theme
	}
}

// Validate fills defaults and rejects configurations the workflow cannot run with
func (c *Config) Validate() error {
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")

	if len(c.Headers) == 0 {
		c.Headers = alma.DefaultHeaders()
	}
	if len(c.Statuses) == 0 {
		c.Statuses = DefaultStatusTable()
	}
	if c.DefaultMessage == "" {
		c.DefaultMessage = DefaultMessage
	}
	if c.Policy == "" {
		c.Policy = PolicyWarn
	}
	if c.ScanTimeout <= 0 {
		c.ScanTimeout = alma.DefaultTimeout
	}

	var errs []error
	if c.APIKey == "" {
		errs = append(errs, errors.New("api key is required"))
	}
	if c.BaseURL == "" {
		errs = append(errs, errors.New("base url is required"))
	} else if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("base url %q is not an absolute URL", c.BaseURL))
	}
	switch c.Policy {
	case PolicyWarn, PolicyHold:
	default:
		errs = append(errs, fmt.Errorf("policy must be %q or %q, got %q", PolicyWarn, PolicyHold, c.Policy))
	}
	return errors.Join(errs...)
}
