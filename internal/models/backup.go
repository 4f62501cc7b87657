package models

import "time"

// BackupVersion tags exported files; import rejects payloads without a
// version field.
const BackupVersion = "2.0"

// Backup is the full-dataset interchange document.
type Backup struct {
	Version      string        `json:"version"`
	ExportedAt   time.Time     `json:"exportedAt"`
	Subjects     []Subject     `json:"subjects"`
	Resources    []Resource    `json:"resources"`
	Publications []Publication `json:"publications"`
	SchoolInfo   *SchoolInfo   `json:"schoolInfo,omitempty"`
	ThemeConfig  *ThemeConfig  `json:"themeConfig,omitempty"`
}
