package models

import "time"

// Profile is the one-per-user developer profile document. Experience,
// education and social links are embedded and stored as JSON columns.
type Profile struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	UserID         uint         `gorm:"uniqueIndex;not null" json:"user_id"`
	User           *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Company        string       `json:"company,omitempty"`
	Website        string       `json:"website,omitempty"`
	Location       string       `json:"location,omitempty"`
	Status         string       `gorm:"not null" json:"status"`
	Skills         []string     `gorm:"type:jsonb;serializer:json" json:"skills"`
	Bio            string       `gorm:"type:text" json:"bio,omitempty"`
	GithubUsername string       `json:"githubusername,omitempty"`
	Experience     []Experience `gorm:"type:jsonb;serializer:json" json:"experience"`
	Education      []Education  `gorm:"type:jsonb;serializer:json" json:"education"`
	Social         Social       `gorm:"type:jsonb;serializer:json" json:"social"`
	CreatedAt      time.Time    `json:"date"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Experience is one embedded job entry of a Profile.
type Experience struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location,omitempty"`
	From        time.Time  `json:"from"`
	To          *time.Time `json:"to,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
}

// Education is one embedded school entry of a Profile.
type Education struct {
	ID           string     `json:"id"`
	School       string     `json:"school"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"fieldofstudy"`
	From         time.Time  `json:"from"`
	To           *time.Time `json:"to,omitempty"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty"`
}

// Social holds the optional social network links of a Profile.
type Social struct {
	YouTube   string `json:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

// EnsureCollections replaces nil embedded lists with empty ones so they
// serialize as [] rather than null.
func (p *Profile) EnsureCollections() {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Experience == nil {
		p.Experience = []Experience{}
	}
	if p.Education == nil {
		p.Education = []Education{}
	}
}
