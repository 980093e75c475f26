package models

// Setting is a typed key/value configuration entry seeded by the backend.
type Setting struct {
	ID          string      `json:"_id"`
	Key         string      `json:"key"`
	Value       interface{} `json:"value"`
	Type        SettingType `json:"type"`
	Category    string      `json:"category"`
	IsEditable  bool        `json:"isEditable"`
	IsPublic    bool        `json:"isPublic"`
	Description string      `json:"description,omitempty"`
}
