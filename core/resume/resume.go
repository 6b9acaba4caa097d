package resume

import "time"

// Snapshot is the resume data accumulated during an anonymous session. It is
// persisted alongside the session and imported to the user's account when the
// session is transferred.
type Snapshot struct {
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	Summary  string `json:"summary,omitempty"`

	Experiences    []Experience    `json:"experiences,omitempty"`
	Educations     []Education     `json:"educations,omitempty"`
	Skills         []Skill         `json:"skills,omitempty"`
	Languages      []Language      `json:"languages,omitempty"`
	Certifications []Certification `json:"certifications,omitempty"`
}

// IsEmpty reports whether the snapshot carries no data worth importing.
func (s Snapshot) IsEmpty() bool {
	return s.FullName == "" && s.Email == "" && s.Phone == "" &&
		s.Location == "" && s.Summary == "" &&
		len(s.Experiences) == 0 && len(s.Educations) == 0 &&
		len(s.Skills) == 0 && len(s.Languages) == 0 &&
		len(s.Certifications) == 0
}

// Experience is a single work history entry.
type Experience struct {
	Company     string     `json:"company"`
	Position    string     `json:"position"`
	Description string     `json:"description,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Current     bool       `json:"current,omitempty"`
}

// Education is a single education entry.
type Education struct {
	Institution string     `json:"institution"`
	Degree      string     `json:"degree,omitempty"`
	Field       string     `json:"field,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

// Skill is a named skill with an optional proficiency level.
type Skill struct {
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

// Language is a spoken language with an optional proficiency level.
type Language struct {
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

// Certification is a professional certification entry.
type Certification struct {
	Name     string     `json:"name"`
	Issuer   string     `json:"issuer,omitempty"`
	IssuedAt *time.Time `json:"issued_at,omitempty"`
}
