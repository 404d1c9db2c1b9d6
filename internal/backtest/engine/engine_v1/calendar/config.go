package calendar

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config describes a session calendar. Holiday and early-close dates use
// YYYY-MM-DD; times of day use HH:MM in the calendar's timezone.
type Config struct {
	Timezone     string `yaml:"timezone" validate:"required"`
	RegularOpen  string `yaml:"regular_open" validate:"required,datetime=15:04"`
	RegularClose string `yaml:"regular_close" validate:"required,datetime=15:04"`
	ExtendedOpen string `yaml:"extended_open" validate:"required,datetime=15:04"`
	// ExtendedClose is the end of the post-market session.
	ExtendedClose string   `yaml:"extended_close" validate:"required,datetime=15:04"`
	Holidays      []string `yaml:"holidays" validate:"dive,datetime=2006-01-02"`
	// EarlyCloses maps a date to its non-default regular close time.
	EarlyCloses map[string]string `yaml:"early_closes" validate:"dive,keys,datetime=2006-01-02,endkeys,datetime=15:04"`
}

// DefaultConfig returns the NYSE/Nasdaq schedule with no holidays loaded.
func DefaultConfig() Config {
	return Config{
		Timezone:      "America/New_York",
		RegularOpen:   "09:30",
		RegularClose:  "16:00",
		ExtendedOpen:  "04:00",
		ExtendedClose: "20:00",
		Holidays:      nil,
		EarlyCloses:   nil,
	}
}

// Validate checks the config with go-playground/validator.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid calendar config", err)
	}

	return nil
}

// LoadConfig reads a calendar config from a YAML file.
func LoadConfig(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read calendar config: %s", path)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(content, &config); err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse calendar config: %s", path)
	}

	return config, nil
}
