package dto

// CreateCertificateRequest is the payload for registering a certificate.
// Dates travel as DD/MM/YYYY strings and are parsed at the service boundary
// so malformed input fails the request instead of entering the store.
type CreateCertificateRequest struct {
	CertificateName string `json:"certificateName" validate:"required"`
	ProfileName     string `json:"profileName" validate:"required"`
	Category        string `json:"category" validate:"required"`
	JobRole         string `json:"jobRole" validate:"required"`
	IssuedDate      string `json:"issuedDate" validate:"required"`
	ExpiryDate      string `json:"expiryDate" validate:"required"`
}

// UpdateCertificateRequest is the payload for rewriting a certificate.
type UpdateCertificateRequest struct {
	CertificateName string `json:"certificateName" validate:"required"`
	ProfileName     string `json:"profileName" validate:"required"`
	Category        string `json:"category" validate:"required"`
	JobRole         string `json:"jobRole" validate:"required"`
	IssuedDate      string `json:"issuedDate" validate:"required"`
	ExpiryDate      string `json:"expiryDate" validate:"required"`
}
