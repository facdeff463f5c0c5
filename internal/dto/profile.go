package dto

// CreateProfileRequest is the payload for registering an HR profile.
type CreateProfileRequest struct {
	FirstName             string `json:"firstName" validate:"required"`
	LastName              string `json:"lastName" validate:"required"`
	Email                 string `json:"email" validate:"required,email"`
	Phone                 string `json:"phone"`
	JobRole               string `json:"jobRole" validate:"required"`
	Department            string `json:"department"`
	Address               string `json:"address"`
	EmergencyContactName  string `json:"emergencyContactName"`
	EmergencyContactPhone string `json:"emergencyContactPhone"`
}

// LinkProfileRequest associates a login identity with an HR profile.
type LinkProfileRequest struct {
	ProfileID string `json:"profileId" validate:"required"`
}

// UpdateProfileRequest is the payload for rewriting an HR profile.
type UpdateProfileRequest struct {
	FirstName             string `json:"firstName" validate:"required"`
	LastName              string `json:"lastName" validate:"required"`
	Email                 string `json:"email" validate:"required,email"`
	Phone                 string `json:"phone"`
	JobRole               string `json:"jobRole" validate:"required"`
	Department            string `json:"department"`
	Address               string `json:"address"`
	EmergencyContactName  string `json:"emergencyContactName"`
	EmergencyContactPhone string `json:"emergencyContactPhone"`
}
