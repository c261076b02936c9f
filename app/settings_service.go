package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"energydash/domain/core"
	"energydash/domain/energy"
	"energydash/internal"
	"energydash/ports"
)

// FieldErrors maps JSON field names to validation messages.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e[k]
	}
	return "invalid settings: " + strings.Join(parts, "; ")
}

func (e FieldErrors) Unwrap() error { return core.ErrInvalidInput }

// fieldMessages mirrors the messages shown next to each settings input.
var fieldMessages = map[string]string{
	"buildingName":     "Building name is required",
	"address":          "Address is required",
	"latitude":         "Latitude must be between -90 and 90",
	"longitude":        "Longitude must be between -180 and 180",
	"floorArea":        "Floor area must be greater than 0",
	"constructionYear": "Invalid construction year",
	"energyTariff":     "Energy tariff must be greater than 0",
	"co2Factor":        "CO2 factor cannot be negative",
}

// SettingsService reads and validates building settings
type SettingsService struct {
	buildings ports.BuildingRepository
	validate  *validator.Validate
	logger    *internal.Logger
	now       func() time.Time
}

// NewSettingsService creates a settings service
func NewSettingsService(buildings ports.BuildingRepository, logger *internal.Logger) *SettingsService {
	if logger == nil {
		logger = internal.NopLogger()
	}
	s := &SettingsService{
		buildings: buildings,
		validate:  validator.New(),
		logger:    logger.With("settings"),
		now:       time.Now,
	}

	s.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	s.validate.RegisterValidation("construction_year", func(fl validator.FieldLevel) bool {
		year := fl.Field().Int()
		return year >= 1800 && year <= int64(s.now().Year())
	})
	return s
}

// Get returns the settings of a building
func (s *SettingsService) Get(ctx context.Context, id int64) (*energy.Building, error) {
	return s.buildings.Get(ctx, id)
}

// Validate checks a building and returns the failing fields.
func (s *SettingsService) Validate(b *energy.Building) FieldErrors {
	b.Name = strings.TrimSpace(b.Name)
	b.Address = strings.TrimSpace(b.Address)

	err := s.validate.Struct(b)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return FieldErrors{"settings": err.Error()}
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		key := fieldKey(fe.Namespace())
		if msg, ok := fieldMessages[key]; ok {
			out[key] = msg
			continue
		}
		switch fe.Tag() {
		case "oneof":
			out[key] = fmt.Sprintf("must be one of: %s", fe.Param())
		case "timezone":
			out[key] = "unknown time zone"
		case "gte", "lte":
			out[key] = fmt.Sprintf("must satisfy %s %s", fe.Tag(), fe.Param())
		default:
			out[key] = "is invalid"
		}
	}
	return out
}

// fieldKey strips the struct name from a validator namespace such as
// Building.thresholds.costAlert.
func fieldKey(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// Save validates and stores building settings. Validation failures are
// returned as FieldErrors.
func (s *SettingsService) Save(ctx context.Context, b *energy.Building) error {
	if b == nil {
		return core.NewValidationError("settings", "missing body")
	}
	if fe := s.Validate(b); len(fe) > 0 {
		return fe
	}
	if b.WeatherStation == "" {
		b.WeatherStation = energy.DefaultStation
	}
	if b.ID != 0 {
		if _, err := s.buildings.Get(ctx, b.ID); err != nil {
			return err
		}
	}
	if err := s.buildings.Save(ctx, b); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	s.logger.Info("saved settings for building %d", b.ID)
	return nil
}

// Reset restores a building's settings to the defaults, keeping its ID.
func (s *SettingsService) Reset(ctx context.Context, id int64) (*energy.Building, error) {
	if _, err := s.buildings.Get(ctx, id); err != nil {
		return nil, err
	}

	b := &energy.Building{}
	if err := defaults.Set(b); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	b.ID = id

	if err := s.buildings.Save(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to reset settings: %w", err)
	}
	s.logger.Info("reset settings for building %d", id)
	return b, nil
}
