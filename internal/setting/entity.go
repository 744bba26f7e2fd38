// AngelaMos | 2026
// entity.go

package setting

import (
	"strings"
	"time"

	"github.com/recims/backend/internal/feature"
)

// AppSetting is a global key/value row. Keys starting with enable_ are the
// legacy feature toggles read by the feature merge.
type AppSetting struct {
	ID           int64     `db:"id"`
	SettingKey   string    `db:"setting_key"`
	SettingValue string    `db:"setting_value"`
	Description  *string   `db:"description"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (s *AppSetting) IsToggle() bool {
	return strings.HasPrefix(s.SettingKey, feature.TogglePrefix)
}

func (s *AppSetting) ToFeatureSetting() feature.Setting {
	return feature.Setting{Key: s.SettingKey, Value: s.SettingValue}
}
