package models

import "time"

// Profile is a person's HR record, distinct from the User credential record.
type Profile struct {
	ID                    string    `db:"id" json:"id"`
	FirstName             string    `db:"first_name" json:"firstName"`
	LastName              string    `db:"last_name" json:"lastName"`
	Email                 string    `db:"email" json:"email"`
	Phone                 string    `db:"phone" json:"phone"`
	JobRole               string    `db:"job_role" json:"jobRole"`
	Department            string    `db:"department" json:"department"`
	Address               string    `db:"address" json:"address"`
	EmergencyContactName  string    `db:"emergency_contact_name" json:"emergencyContactName"`
	EmergencyContactPhone string    `db:"emergency_contact_phone" json:"emergencyContactPhone"`
	CreatedAt             time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time `db:"updated_at" json:"updatedAt"`
}

// FullName joins the name parts for display.
func (p *Profile) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// ProfileFilter captures filtering criteria for listing profiles.
type ProfileFilter struct {
	JobRole    string
	Department string
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
