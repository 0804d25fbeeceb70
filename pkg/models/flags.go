package models

// FeatureFlag describes one flag and its effective value.
type FeatureFlag struct {
	Name        string `json:"name"`
	Kind        string `json:"kind" enum:"bool,int"`
	Value       any    `json:"value"`
	Default     any    `json:"default"`
	Description string `json:"description,omitempty"`
}

// FeatureFlagsResponse lists all flags from a single snapshot.
type FeatureFlagsResponse struct {
	Flags []FeatureFlag `json:"flags"`
}

// SetFeatureFlagInput carries the new value of a flag.
// Value is the string form stored by the flags store ("true", "5").
type SetFeatureFlagInput struct {
	Value string `json:"value"`
}
