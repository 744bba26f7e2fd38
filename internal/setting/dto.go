// AngelaMos | 2026
// dto.go

package setting

import (
	"time"
)

type UpsertSettingRequest struct {
	Value       string  `json:"value"                 validate:"max=4000"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

type SettingResponse struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description *string   `json:"description,omitempty"`
	IsToggle    bool      `json:"is_toggle"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToSettingResponse(s *AppSetting) SettingResponse {
	return SettingResponse{
		Key:         s.SettingKey,
		Value:       s.SettingValue,
		Description: s.Description,
		IsToggle:    s.IsToggle(),
		UpdatedAt:   s.UpdatedAt,
	}
}

func ToSettingResponseList(settings []AppSetting) []SettingResponse {
	out := make([]SettingResponse, 0, len(settings))
	for i := range settings {
		out = append(out, ToSettingResponse(&settings[i]))
	}
	return out
}
