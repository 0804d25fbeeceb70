package versions

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/agentregistry-dev/agentconsole/pkg/models"
)

var snapshotFields = []struct {
	name string
	get  func(models.AgentConfigSnapshot) any
}{
	{"name", func(s models.AgentConfigSnapshot) any { return s.Name }},
	{"description", func(s models.AgentConfigSnapshot) any { return s.Description }},
	{"tags", func(s models.AgentConfigSnapshot) any { return emptyToNil(s.Tags) }},
	{"modelConfig", func(s models.AgentConfigSnapshot) any { return s.ModelConfig }},
	{"systemPrompt", func(s models.AgentConfigSnapshot) any { return s.SystemPrompt }},
	{"userPrompt", func(s models.AgentConfigSnapshot) any { return s.UserPrompt }},
	{"assistantPrompt", func(s models.AgentConfigSnapshot) any { return s.AssistantPrompt }},
	{"capabilities", func(s models.AgentConfigSnapshot) any {
		if len(s.Capabilities) == 0 {
			return nil
		}
		return s.Capabilities
	}},
	{"skills", func(s models.AgentConfigSnapshot) any { return emptyToNil(s.Skills) }},
	{"security", func(s models.AgentConfigSnapshot) any { return emptyToNil(s.Security) }},
}

// emptyToNil makes nil and empty slices compare equal.
func emptyToNil[T any](s []T) any {
	if len(s) == 0 {
		return nil
	}
	return s
}

// ChangedFields lists the JSON names of the snapshot fields that differ
// between a and b.
func ChangedFields(a, b models.AgentConfigSnapshot) []string {
	var changed []string
	for _, f := range snapshotFields {
		if !reflect.DeepEqual(f.get(a), f.get(b)) {
			changed = append(changed, f.name)
		}
	}
	return changed
}

// Equal reports whether two snapshots hold the same configuration.
func Equal(a, b models.AgentConfigSnapshot) bool {
	return len(ChangedFields(a, b)) == 0
}

// DescribeChanges builds a default version message from changed field names.
func DescribeChanges(fields []string) string {
	if len(fields) == 0 {
		return "No changes"
	}
	return "Updated " + strings.Join(fields, ", ")
}

var copySuffix = regexp.MustCompile(`\s*\(Copy(?:\s+(\d+))?\)$`)

// GenerateCopyName derives the name of a copy: "X" becomes "X (Copy)",
// "X (Copy)" becomes "X (Copy 2)" and "X (Copy N)" becomes "X (Copy N+1)".
func GenerateCopyName(name string) string {
	name = strings.TrimSpace(name)
	m := copySuffix.FindStringSubmatchIndex(name)
	if m == nil {
		if name == "" {
			return "(Copy)"
		}
		return name + " (Copy)"
	}

	base := name[:m[0]]
	next := "2"
	if m[2] >= 0 {
		next = incrementDecimal(name[m[2]:m[3]])
	}
	if base == "" {
		return fmt.Sprintf("(Copy %s)", next)
	}
	return fmt.Sprintf("%s (Copy %s)", base, next)
}

// incrementDecimal adds one to a string of ASCII digits of any length.
// Leading zeros are dropped.
func incrementDecimal(digits string) string {
	digits = strings.TrimLeft(digits, "0")
	out := []byte(digits)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] < '9' {
			out[i]++
			return string(out)
		}
		out[i] = '0'
	}
	return "1" + string(out)
}

// UniqueCopyName applies GenerateCopyName until the result is not taken.
func UniqueCopyName(name string, taken map[string]bool) string {
	candidate := GenerateCopyName(name)
	for taken[candidate] {
		candidate = GenerateCopyName(candidate)
	}
	return candidate
}
