package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CertDate is a calendar date carried on the wire as DD/MM/YYYY and stored in
// a SQL DATE column. Malformed values are rejected at the boundary instead of
// silently producing invalid comparisons.
type CertDate struct {
	time.Time
}

const certDateWireFormat = "DD/MM/YYYY"

// NewCertDate builds a CertDate at UTC midnight.
func NewCertDate(year int, month time.Month, day int) CertDate {
	return CertDate{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseCertDate parses a DD/MM/YYYY string. Unpadded components ("1/1/2024")
// are accepted; impossible dates such as 31/02 are not.
func ParseCertDate(raw string) (CertDate, error) {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	if len(parts) != 3 {
		return CertDate{}, fmt.Errorf("date %q is not in %s form", raw, certDateWireFormat)
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return CertDate{}, fmt.Errorf("date %q has a non-numeric day", raw)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return CertDate{}, fmt.Errorf("date %q has a non-numeric month", raw)
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return CertDate{}, fmt.Errorf("date %q has a non-numeric year", raw)
	}
	if year < 1000 || year > 9999 {
		return CertDate{}, fmt.Errorf("date %q has an out-of-range year", raw)
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return CertDate{}, fmt.Errorf("date %q is not a valid calendar date", raw)
	}

	return CertDate{t}, nil
}

// String renders the wire form.
func (d CertDate) String() string {
	return d.Format("02/01/2006")
}

// MarshalJSON renders the DD/MM/YYYY wire form.
func (d CertDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON parses and validates the DD/MM/YYYY wire form.
func (d *CertDate) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseCertDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer for DATE columns.
func (d CertDate) Value() (driver.Value, error) {
	return d.Time, nil
}

// Scan implements sql.Scanner for DATE columns.
func (d *CertDate) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
		return nil
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	case nil:
		d.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into CertDate", src)
	}
}

func (d *CertDate) scanString(raw string) error {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return fmt.Errorf("scan CertDate: %w", err)
	}
	d.Time = t.UTC()
	return nil
}

// DaysUntil returns the whole-day distance from the given day to this date.
// Both operands are treated as calendar days; the result is negative once the
// date has passed.
func (d CertDate) DaysUntil(today time.Time) int {
	from := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Time.Sub(from) / (24 * time.Hour))
}

// Certificate represents one training/compliance credential held by a
// profile. ProfileName is denormalised from the owning Profile.
type Certificate struct {
	ID              string    `db:"id" json:"id"`
	CertificateName string    `db:"certificate_name" json:"certificateName"`
	ProfileName     string    `db:"profile_name" json:"profileName"`
	Category        string    `db:"category" json:"category"`
	JobRole         string    `db:"job_role" json:"jobRole"`
	IssuedDate      CertDate  `db:"issued_date" json:"issuedDate"`
	ExpiryDate      CertDate  `db:"expiry_date" json:"expiryDate"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

// CertificateFilter captures filtering criteria for listing certificates.
type CertificateFilter struct {
	Category  string
	JobRole   string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
