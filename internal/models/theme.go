package models

// ThemeColors is the palette applied by the site for a theme.
type ThemeColors struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Background string `json:"background"`
	Text       string `json:"text"`
}

// Theme names a palette. Seasonal themes carry an enabled flag; the default
// theme is always available.
type Theme struct {
	Name    string      `json:"name"`
	Colors  ThemeColors `json:"colors"`
	Enabled bool        `json:"enabled,omitempty"`
}

// ThemeConfig is the singleton selecting the active theme.
type ThemeConfig struct {
	CurrentTheme string           `json:"currentTheme"`
	Themes       map[string]Theme `json:"themes"`
}

// DefaultThemeConfig returns the built-in palettes used until an admin saves
// a configuration.
func DefaultThemeConfig() ThemeConfig {
	return ThemeConfig{
		CurrentTheme: "default",
		Themes: map[string]Theme{
			"default": {
				Name: "Tema Normal",
				Colors: ThemeColors{
					Primary:    "#1e40af",
					Secondary:  "#dc2626",
					Background: "#f9fafb",
					Text:       "#1f2937",
				},
			},
			"navidad": {
				Name: "Modo Navideño",
				Colors: ThemeColors{
					Primary:    "#dc2626",
					Secondary:  "#16a34a",
					Background: "#fef2f2",
					Text:       "#1f2937",
				},
			},
			"aniversario": {
				Name: "Modo Aniversario",
				Colors: ThemeColors{
					Primary:    "#f97316",
					Secondary:  "#fbbf24",
					Background: "#fff7ed",
					Text:       "#1f2937",
				},
			},
		},
	}
}
