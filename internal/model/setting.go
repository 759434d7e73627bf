package model

import "time"

// Known setting keys.
const (
	SettingContactRecipient = "contact_recipient_email"
	SettingSiteName         = "site_name"
)

// SettingKeys lists every key an admin may write.
var SettingKeys = []string{SettingContactRecipient, SettingSiteName}

// AppSetting represents a key-value pair for global application configuration.
type AppSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateSettingsRequest is the payload for bulk updating settings.
type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required,min=1,dive,keys,min=1,max=64,endkeys,max=200"`
}
