package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/agentregistry-dev/agentconsole/pkg/models"
)

// ErrInvalidItem is wrapped by every record rejected by Normalize.
var ErrInvalidItem = errors.New("invalid catalog item")

// RawItem is a catalog record as delivered by a feed.
// TotalStars is a pointer so that a missing value can be told apart from zero.
type RawItem struct {
	Key              string               `json:"key" yaml:"key"`
	Name             string               `json:"name" yaml:"name"`
	Description      string               `json:"description" yaml:"description"`
	Category         string               `json:"category" yaml:"category"`
	UnifiedCategory  models.Category      `json:"unifiedCategory" yaml:"unifiedCategory"`
	DataOrigin       models.DataOrigin    `json:"dataOrigin" yaml:"dataOrigin"`
	Domain           string               `json:"domain" yaml:"domain"`
	TotalStars       *int                 `json:"total_stars" yaml:"total_stars"`
	Owner            *models.CatalogOwner `json:"owner" yaml:"owner"`
	AuthType         string               `json:"auth_type" yaml:"auth_type"`
	CreationDate     *time.Time           `json:"creation_date" yaml:"creation_date"`
	ModificationDate *time.Time           `json:"modification_date" yaml:"modification_date"`
	UsageCount       *int                 `json:"usage_count" yaml:"usage_count"`
}

// Normalize validates raw feed records and converts them to catalog items in
// feed order. Records without a key, with a missing or negative total_stars,
// or with a duplicate key are dropped; the returned error joins one
// ErrInvalidItem per dropped record and is nil when all records are valid.
func Normalize(raw []RawItem) ([]models.CatalogItem, error) {
	items := make([]models.CatalogItem, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	var errs []error

	for i, r := range raw {
		key := strings.TrimSpace(r.Key)
		switch {
		case key == "":
			errs = append(errs, fmt.Errorf("%w: record %d has no key", ErrInvalidItem, i))
			continue
		case r.TotalStars == nil:
			errs = append(errs, fmt.Errorf("%w: %s is missing total_stars", ErrInvalidItem, key))
			continue
		case *r.TotalStars < 0:
			errs = append(errs, fmt.Errorf("%w: %s has negative total_stars", ErrInvalidItem, key))
			continue
		}
		if _, dup := seen[key]; dup {
			errs = append(errs, fmt.Errorf("%w: duplicate key %s", ErrInvalidItem, key))
			continue
		}
		seen[key] = struct{}{}

		origin := r.DataOrigin
		if origin != models.OriginExternal {
			origin = models.OriginInternal
		}
		items = append(items, models.CatalogItem{
			Key:              key,
			Name:             r.Name,
			Description:      r.Description,
			Category:         r.Category,
			UnifiedCategory:  ResolveCategory(models.CatalogItem{Category: r.Category, UnifiedCategory: r.UnifiedCategory}),
			DataOrigin:       origin,
			Domain:           r.Domain,
			TotalStars:       *r.TotalStars,
			Owner:            r.Owner,
			AuthType:         r.AuthType,
			CreationDate:     r.CreationDate,
			ModificationDate: r.ModificationDate,
			UsageCount:       r.UsageCount,
		})
	}
	return items, errors.Join(errs...)
}

// feedEnvelope accepts the wrapped feed shapes.
type feedEnvelope struct {
	Data  []RawItem `json:"data" yaml:"data"`
	Items []RawItem `json:"items" yaml:"items"`
}

// ParseFeed decodes a feed document. The document is either an array of
// records or an object with a "data" or "items" array. Format is "json" or
// "yaml".
func ParseFeed(data []byte, format string) ([]RawItem, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, nil
	}

	unmarshal := json.Unmarshal
	if format == "yaml" {
		unmarshal = yaml.Unmarshal
	}

	var raw []RawItem
	if err := unmarshal(data, &raw); err == nil {
		return raw, nil
	}
	var env feedEnvelope
	if err := unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode catalog feed: %w", err)
	}
	if env.Data != nil {
		return env.Data, nil
	}
	return env.Items, nil
}
