package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"travel-fare-service/internal/domain"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// MemoryDBPath as DB_PATH keeps presets and the geocode cache in process memory.
const MemoryDBPath = "memory"

// Config is the process configuration, read from the environment (and an
// optional .env file).
type Config struct {
	Env      string
	Port     string
	LogLevel string
	// Locale is the BCP 47 tag used for summary number formatting.
	Locale string

	DBPath      string
	DatabaseURL string
	RedisURL    string
	CacheTTL    time.Duration

	// Geocoder is "nominatim", "ors" or "static".
	Geocoder string
	// Router is "osrm", "ors" or "static".
	Router string

	NominatimURL    string
	GeocodeCountry  string
	GeocodeRPS      float64
	OSRMURL         string
	ORSAPIKey       string
	ORSURL          string
	ORSCountry      string
	UserAgent       string
	ProviderTimeout time.Duration

	FareDefaultsPath string
	PresetSeedPath   string
	PlacesPath       string

	FareDefaults domain.FareSettings

	// EnvFileLoaded reports whether a .env file was found.
	EnvFileLoaded bool
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	envErr := godotenv.Load()
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		return nil, fmt.Errorf("load config: read .env: %w", envErr)
	}

	cfg := &Config{
		Env:      Get("APP_ENV", "development"),
		Port:     Get("PORT", "8080"),
		LogLevel: Get("LOG_LEVEL", "info"),
		Locale:   Get("LOCALE", "id"),

		DBPath:      Get("DB_PATH", "data/app.db"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:    strings.TrimSpace(os.Getenv("REDIS_URL")),

		Geocoder: strings.ToLower(Get("GEOCODER", "nominatim")),
		Router:   strings.ToLower(Get("ROUTER", "osrm")),

		NominatimURL:   Get("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		GeocodeCountry: Get("GEOCODE_COUNTRY", "Indonesia"),
		OSRMURL:        Get("OSRM_URL", "https://router.project-osrm.org"),
		ORSAPIKey:      strings.TrimSpace(os.Getenv("ORS_API_KEY")),
		ORSURL:         Get("ORS_URL", "https://api.openrouteservice.org"),
		ORSCountry:     Get("ORS_COUNTRY", "ID"),
		UserAgent:      Get("USER_AGENT", "travel-fare-service/1.0"),

		FareDefaultsPath: os.Getenv("FARE_DEFAULTS_PATH"),
		PresetSeedPath:   os.Getenv("PRESET_SEED_PATH"),
		PlacesPath:       Get("PLACES_PATH", "data/places.yaml"),

		EnvFileLoaded: envErr == nil,
	}

	var err error
	if cfg.GeocodeRPS, err = GetFloat("GEOCODE_RPS", 1); err != nil {
		return nil, err
	}
	if cfg.ProviderTimeout, err = GetDuration("PROVIDER_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = GetDuration("GEOCODE_CACHE_TTL", 0); err != nil {
		return nil, err
	}

	cfg.FareDefaults = DefaultFareSettings()
	if cfg.FareDefaultsPath != "" {
		if cfg.FareDefaults, err = LoadFareDefaults(cfg.FareDefaultsPath, cfg.FareDefaults); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks provider selection and the credentials it needs.
func (c *Config) Validate() error {
	switch c.Geocoder {
	case "nominatim", "static":
	case "ors":
		if c.ORSAPIKey == "" {
			return errors.New("config: GEOCODER=ors requires ORS_API_KEY")
		}
	default:
		return fmt.Errorf("config: unknown GEOCODER %q", c.Geocoder)
	}

	switch c.Router {
	case "osrm", "static":
	case "ors":
		if c.ORSAPIKey == "" {
			return errors.New("config: ROUTER=ors requires ORS_API_KEY")
		}
	default:
		return fmt.Errorf("config: unknown ROUTER %q", c.Router)
	}

	if c.GeocodeRPS <= 0 {
		return fmt.Errorf("config: GEOCODE_RPS must be positive, got %v", c.GeocodeRPS)
	}
	return nil
}

// Get returns the trimmed value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetFloat(key string, fallback float64) (float64, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}

func GetDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

// DefaultFareSettings is the cost model used when a request omits a field.
func DefaultFareSettings() domain.FareSettings {
	return domain.FareSettings{
		RoundTrip:       true,
		FuelConsumption: 10,
		FuelUnitPrice:   16500,
		FixedCost:       250000,
		ManualTollCost:  0,
		MarginPercent:   20,
		Passengers:      12,
	}
}

type fareDefaultsFile struct {
	RoundTrip       *bool    `yaml:"round_trip"`
	FuelConsumption *float64 `yaml:"fuel_consumption"`
	FuelUnitPrice   *float64 `yaml:"fuel_unit_price"`
	FixedCost       *float64 `yaml:"fixed_cost"`
	ManualTollCost  *float64 `yaml:"manual_toll_cost"`
	MarginPercent   *float64 `yaml:"margin_percent"`
	Passengers      *int     `yaml:"passengers"`
}

// LoadFareDefaults overlays the fields present in a YAML file on base.
func LoadFareDefaults(path string, base domain.FareSettings) (domain.FareSettings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("config: read fare defaults: %w", err)
	}

	var f fareDefaultsFile
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return base, fmt.Errorf("config: parse fare defaults %s: %w", path, err)
	}

	if f.RoundTrip != nil {
		base.RoundTrip = *f.RoundTrip
	}
	if f.FuelConsumption != nil {
		base.FuelConsumption = *f.FuelConsumption
	}
	if f.FuelUnitPrice != nil {
		base.FuelUnitPrice = *f.FuelUnitPrice
	}
	if f.FixedCost != nil {
		base.FixedCost = *f.FixedCost
	}
	if f.ManualTollCost != nil {
		base.ManualTollCost = *f.ManualTollCost
	}
	if f.MarginPercent != nil {
		base.MarginPercent = *f.MarginPercent
	}
	if f.Passengers != nil {
		base.Passengers = *f.Passengers
	}
	return base, nil
}
