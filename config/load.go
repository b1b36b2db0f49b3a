package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/nstehr/grimoire/mode"
)

// EnvPrefix is prepended to every env tag, e.g. GRIMOIRE_FEAR_BAN_TIME.
const EnvPrefix = "GRIMOIRE_"

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}()

// Violation describes a setting that was out of range and has been reset to
// its default.
type Violation struct {
	Field  string
	Value  any
	Reason string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s=%v: %s", v.Field, v.Value, v.Reason)
}

// Load builds settings from defaults, then the YAML file at path (optional),
// then GRIMOIRE_* environment variables. Out-of-range values are reset to
// their defaults and returned as violations; only I/O and parse failures
// are errors.
func Load(path string) (Settings, []Violation, error) {
	s := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Settings{}, nil, fmt.Errorf("read settings: %w", err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, nil, fmt.Errorf("parse settings %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&s, env.Options{Prefix: EnvPrefix}); err != nil {
		return Settings{}, nil, fmt.Errorf("parse env: %w", err)
	}
	s, violations := Sanitize(s)
	return s, violations, nil
}

// Sanitize validates s field by field and replaces every invalid field with
// its default. The Metamorphosis thresholds are checked as a pair: without
// a gap between entry and exit both fall back to the defaults.
func Sanitize(s Settings) (Settings, []Violation) {
	var violations []Violation

	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			slog.Error("settings validation failed, using defaults", "error", err)
			return Defaults(), []Violation{{Field: "*", Reason: err.Error()}}
		}
		defaults := reflect.ValueOf(Defaults())
		target := reflect.ValueOf(&s).Elem()
		for _, fe := range verrs {
			name := fe.StructField()
			target.FieldByName(name).Set(defaults.FieldByName(name))
			reason := fe.Tag()
			if fe.Param() != "" {
				reason += "=" + fe.Param()
			}
			violations = append(violations, Violation{Field: fe.Field(), Value: fe.Value(), Reason: reason})
		}
	}

	if err := s.MorphThresholds().Validate(); err != nil {
		d := Defaults()
		violations = append(violations, Violation{
			Field:  "morph_entry_fury/morph_exit_fury",
			Value:  fmt.Sprintf("%d/%d", s.MorphEntryFury, s.MorphExitFury),
			Reason: err.Error(),
		})
		s.MorphEntryFury, s.MorphExitFury = d.MorphEntryFury, d.MorphExitFury
	}

	return s, violations
}

// MorphThresholds returns the Demonic Fury hysteresis for Metamorphosis.
func (s Settings) MorphThresholds() mode.Thresholds {
	return mode.Thresholds{Entry: float64(s.MorphEntryFury), Exit: float64(s.MorphExitFury)}
}

// Report logs each violation once.
func Report(violations []Violation) {
	for _, v := range violations {
		slog.Warn("setting out of range, using default", "field", v.Field, "value", v.Value, "reason", v.Reason)
	}
}
