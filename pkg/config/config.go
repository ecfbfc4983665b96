package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	pkgerrors "github.com/tuliahq/sales-sync/pkg/errors"
)

const (
	EmptyDayBlank = "blank"
	EmptyDayZero  = "zero"
)

type Config struct {
	App         AppConfig
	SevenShifts SevenShiftsConfig
	Sync        SyncConfig
	GCP         GCPConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConfiguration, err, "parsing config")
	}
	if err := cfg.Sync.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SALESYNC_APP_ENV" default:"prod"`
	LogLevel     string `envconfig:"SALESYNC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SALESYNC_LOG_WARN_STACK" default:"false"`
}

type SevenShiftsConfig struct {
	Token          string        `envconfig:"SEVENSHIFTS_TOKEN" required:"true"`
	CompanyID      string        `envconfig:"COMPANY_ID" required:"true"`
	LocationID     string        `envconfig:"LOCATION_ID" required:"true"`
	BaseURL        string        `envconfig:"SEVENSHIFTS_BASE_URL" default:"https://api.7shifts.com/v2"`
	RequestTimeout time.Duration `envconfig:"SEVENSHIFTS_REQUEST_TIMEOUT" default:"60s"`
}

type SyncConfig struct {
	Workspace    string `envconfig:"WORKSPACE" default:"tulia"`
	Timezone     string `envconfig:"LOCAL_TZ" default:"America/Toronto"`
	TargetDate   string `envconfig:"TARGET_DATE"`
	MinorUnits   bool   `envconfig:"SALES_IN_MINOR_UNITS" default:"false"`
	EmptyDayMode string `envconfig:"EMPTY_DAY_MODE" default:"blank"`
	WriteDelta   bool   `envconfig:"WRITE_SALES_DELTA" default:"true"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS"`
}

// Location resolves the configured IANA zone.
func (s SyncConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConfiguration, err, fmt.Sprintf("unknown timezone %q", s.Timezone))
	}
	return loc, nil
}

func (s SyncConfig) validate() error {
	mode := strings.ToLower(strings.TrimSpace(s.EmptyDayMode))
	if mode != EmptyDayBlank && mode != EmptyDayZero {
		return pkgerrors.New(pkgerrors.CodeConfiguration,
			fmt.Sprintf("EMPTY_DAY_MODE must be %q or %q, got %q", EmptyDayBlank, EmptyDayZero, s.EmptyDayMode))
	}
	if strings.TrimSpace(s.Workspace) == "" {
		return pkgerrors.New(pkgerrors.CodeConfiguration, "WORKSPACE must not be blank")
	}
	return nil
}
