// Package flags holds the console's persisted feature flags.
package flags

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"strconv"
	"strings"

	"github.com/stoewer/go-strcase"

	"github.com/agentregistry-dev/agentconsole/internal/console/pagination"
	"github.com/agentregistry-dev/agentconsole/pkg/models"
)

var (
	ErrUnknownFlag  = errors.New("unknown feature flag")
	ErrInvalidValue = errors.New("invalid feature flag value")
	ErrUnknownMode  = errors.New("unknown console mode")
)

// Kind is the value type of a flag.
type Kind string

const (
	KindBool Kind = "bool"
	KindInt  Kind = "int"
)

const (
	WorkflowsEnabled                  = "workflowsEnabled"
	AgentCommunityEnabled             = "agentCommunityEnabled"
	LegacyIntegrationsEnabled         = "legacyIntegrationsEnabled"
	ProjectDetailsMetricsEnabled      = "projectDetailsMetricsEnabled"
	SimulatorChatEnabled              = "simulatorChatEnabled"
	StudioMinStars                    = "studioMinStars"
	DevModeMinStars                   = "devModeMinStars"
	StudioShowOthersOnFollowingPages  = "studioShowOthersOnFollowingPages"
	DevModeShowOthersOnFollowingPages = "devModeShowOthersOnFollowingPages"
)

// KeyPrefix namespaces flag keys in storage.
const KeyPrefix = "featureFlags."

// EnvPrefix namespaces default overrides in the environment.
const EnvPrefix = "CONSOLE_FLAG_"

// Definition describes a flag and its documented default.
type Definition struct {
	Name        string
	Kind        Kind
	Default     string
	Description string
}

var Definitions = []Definition{
	{WorkflowsEnabled, KindBool, "false", "Show the workflows section"},
	{AgentCommunityEnabled, KindBool, "false", "Show the agent community marketplace"},
	{LegacyIntegrationsEnabled, KindBool, "false", "Use the legacy integrations page"},
	{ProjectDetailsMetricsEnabled, KindBool, "false", "Show metrics on project details"},
	{SimulatorChatEnabled, KindBool, "false", "Enable the simulator chat panel"},
	{StudioMinStars, KindInt, "0", "Star threshold for the catalog in studio mode"},
	{DevModeMinStars, KindInt, "0", "Star threshold for the catalog in dev mode"},
	{StudioShowOthersOnFollowingPages, KindBool, "true", "Show below-threshold items after page 1 in studio mode"},
	{DevModeShowOthersOnFollowingPages, KindBool, "true", "Show below-threshold items after page 1 in dev mode"},
}

// Lookup returns the definition of name.
func Lookup(name string) (Definition, bool) {
	for _, d := range Definitions {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// StorageKey returns the persisted key of a flag.
func StorageKey(name string) string {
	return KeyPrefix + name
}

// EnvVar returns the environment variable that overrides a flag default.
func EnvVar(name string) string {
	return EnvPrefix + strcase.UpperSnakeCase(name)
}

// parse validates raw against the flag kind and returns it in canonical form.
func (d Definition) parse(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	switch d.Kind {
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return "", fmt.Errorf("%w: %s expects a boolean, got %q", ErrInvalidValue, d.Name, raw)
		}
		return strconv.FormatBool(b), nil
	case KindInt:
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return "", fmt.Errorf("%w: %s expects a non-negative integer, got %q", ErrInvalidValue, d.Name, raw)
		}
		return strconv.Itoa(n), nil
	}
	return "", fmt.Errorf("%w: %s has unsupported kind %s", ErrInvalidValue, d.Name, d.Kind)
}

// Mode selects which threshold flags apply to the catalog.
type Mode string

const (
	ModeStudio Mode = "studio"
	ModeDev    Mode = "dev"
)

// ParseMode accepts "studio" and "dev"; empty means studio.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeStudio:
		return ModeStudio, nil
	case ModeDev:
		return ModeDev, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Values is an immutable snapshot of every flag in canonical string form.
type Values struct {
	raw map[string]string
}

// Defaults returns the documented defaults.
func Defaults() Values {
	raw := make(map[string]string, len(Definitions))
	for _, d := range Definitions {
		raw[d.Name] = d.Default
	}
	return Values{raw: raw}
}

// DefaultsFromEnv returns the documented defaults overridden by
// CONSOLE_FLAG_<NAME> variables.
func DefaultsFromEnv() (Values, error) {
	return defaultsFrom(os.LookupEnv)
}

func defaultsFrom(lookup func(string) (string, bool)) (Values, error) {
	v := Defaults()
	var errs []error
	for _, d := range Definitions {
		raw, ok := lookup(EnvVar(d.Name))
		if !ok {
			continue
		}
		canonical, err := d.parse(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvVar(d.Name), err))
			continue
		}
		v.raw[d.Name] = canonical
	}
	return v, errors.Join(errs...)
}

// with returns a copy of v with name set to an already canonical value.
func (v Values) with(name, canonical string) Values {
	raw := maps.Clone(v.raw)
	if raw == nil {
		raw = make(map[string]string)
	}
	raw[name] = canonical
	return Values{raw: raw}
}

func (v Values) lookup(name string) string {
	if s, ok := v.raw[name]; ok {
		return s
	}
	if d, ok := Lookup(name); ok {
		return d.Default
	}
	return ""
}

// Bool returns a boolean flag; unknown names read as false.
func (v Values) Bool(name string) bool {
	b, _ := strconv.ParseBool(v.lookup(name))
	return b
}

// Int returns an integer flag; unknown names read as 0.
func (v Values) Int(name string) int {
	n, _ := strconv.Atoi(v.lookup(name))
	return n
}

// Raw returns the canonical string form of a flag.
func (v Values) Raw(name string) string {
	return v.lookup(name)
}

// Threshold returns the catalog threshold configured for mode.
func (v Values) Threshold(mode Mode) pagination.Threshold {
	if mode == ModeDev {
		return pagination.Threshold{
			MinStars:   v.Int(DevModeMinStars),
			ShowOthers: v.Bool(DevModeShowOthersOnFollowingPages),
		}
	}
	return pagination.Threshold{
		MinStars:   v.Int(StudioMinStars),
		ShowOthers: v.Bool(StudioShowOthersOnFollowingPages),
	}
}

// List renders every flag for API responses.
func (v Values) List() []models.FeatureFlag {
	out := make([]models.FeatureFlag, 0, len(Definitions))
	for _, d := range Definitions {
		f := models.FeatureFlag{Name: d.Name, Kind: string(d.Kind), Description: d.Description}
		if d.Kind == KindInt {
			def, _ := strconv.Atoi(d.Default)
			f.Value, f.Default = v.Int(d.Name), def
		} else {
			def, _ := strconv.ParseBool(d.Default)
			f.Value, f.Default = v.Bool(d.Name), def
		}
		out = append(out, f)
	}
	return out
}
