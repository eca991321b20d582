package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/commentguard/commentguard/automod/config"
	"github.com/commentguard/commentguard/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Persists moderation options as name/value rows.
type OptionStore struct {
	db *gorm.DB
}

var _ config.Source = (*OptionStore)(nil)

func NewOptionStore(db *gorm.DB) *OptionStore {
	return &OptionStore{db: db}
}

func (s *OptionStore) All(ctx context.Context) (map[string]string, error) {
	var rows []models.PluginOption
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Name] = r.Value
	}
	return out, nil
}

func (s *OptionStore) Load(ctx context.Context) (*config.Config, error) {
	opts, err := s.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading options: %w", err)
	}
	cfg := config.FromOptions(opts)
	return &cfg, nil
}

func (s *OptionStore) SetOption(ctx context.Context, name, value string) error {
	if !config.IsOptionName(name) {
		return fmt.Errorf("unknown option: %s", name)
	}
	row := models.PluginOption{Name: name, Value: value}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

// Sets every known option in the map. Unknown names are returned as skipped.
func (s *OptionStore) Import(ctx context.Context, opts map[string]string) (skipped []string, err error) {
	for name, value := range opts {
		if !config.IsOptionName(name) {
			skipped = append(skipped, name)
			continue
		}
		if err := s.SetOption(ctx, name, value); err != nil {
			return skipped, fmt.Errorf("setting %s: %w", name, err)
		}
	}
	return skipped, nil
}

// Reads a JSON object of option name to value. Boolean and number values are accepted and converted to their string form.
func LoadOptionsFile(path string) (map[string]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parsing options file: %w", err)
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			out[k] = val
		case bool:
			if val {
				out[k] = "1"
			} else {
				out[k] = "0"
			}
		case float64:
			out[k] = fmt.Sprintf("%d", int64(val))
		case nil:
			out[k] = ""
		default:
			return nil, fmt.Errorf("option %s: unsupported value type %T", k, v)
		}
	}
	return out, nil
}
