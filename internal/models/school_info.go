package models

import "time"

// SchoolInfo is the singleton document describing the institution. Updates
// merge field by field; the document is never deleted.
type SchoolInfo struct {
	Name        string    `json:"name"`
	Motto       string    `json:"motto,omitempty"`
	History     string    `json:"history,omitempty"`
	Mission     string    `json:"mission,omitempty"`
	Vision      string    `json:"vision,omitempty"`
	Address     string    `json:"address,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Email       string    `json:"email,omitempty"`
	Schedule    string    `json:"schedule,omitempty"`
	DevelopedBy string    `json:"developedBy,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// DefaultSchoolInfo is returned when the store holds no school document yet.
func DefaultSchoolInfo() SchoolInfo {
	return SchoolInfo{
		Name:        "Colegio Ildefonso Vázquez",
		Motto:       "Con fe hacia lo alto",
		History:     "Fundado en 1985, el Colegio Ildefonso Vázquez ha sido un pilar en la educación de nuestra comunidad.",
		Mission:     "Formar personas íntegras, críticas y creativas.",
		Vision:      "Ser reconocidos como una institución educativa líder.",
		Address:     "Calle Principal #123, Ciudad",
		Phone:       "(555) 123-4567",
		Email:       "info@colegioildefonsovazquez.edu",
		Schedule:    "Lunes a Viernes: 7:00 AM - 4:00 PM",
		DevelopedBy: "Equipo de Desarrollo",
	}
}
