package entities

type Setting struct {
	Key   string `gorm:"primaryKey;column:key" json:"key"`
	Value string `gorm:"column:value" json:"value"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known setting keys
const (
	// JSON array of person ids preselected when creating the next purchase
	SettingKeyLastUsedPeople = "last_used_people"
	// "light" or "dark"
	SettingKeyTheme = "theme"
)
