package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentregistry-dev/agentconsole/pkg/models"
)

func TestAppendedVersions(t *testing.T) {
	history := []models.ConfigVersion{{ID: "v1"}, {ID: "v2"}, {ID: "v3"}}

	tests := []struct {
		name   string
		stored int
		want   []string
	}{
		{name: "nothing stored", stored: 0, want: []string{"v1", "v2", "v3"}},
		{name: "one new entry", stored: 2, want: []string{"v3"}},
		{name: "up to date", stored: 3, want: nil},
		{name: "stored longer than input", stored: 5, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, v := range appendedVersions(history, tt.stored) {
				got = append(got, v.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
