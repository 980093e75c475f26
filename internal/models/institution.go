package models

import "time"

// Address is a postal address.
type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

// Contact holds institution contact channels.
type Contact struct {
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
}

// Institution is a tenant: a school or a college.
type Institution struct {
	ID        string          `json:"_id"`
	Name      string          `json:"name"`
	Code      string          `json:"code"`
	Type      InstitutionType `json:"type"`
	Address   Address         `json:"address"`
	Contact   Contact         `json:"contact"`
	IsActive  bool            `json:"isActive"`
	CreatedAt *time.Time      `json:"createdAt,omitempty"`
}

// StatusLabel is the chip text shown in institution tables.
func (i Institution) StatusLabel() string {
	return ActiveLabel(i.IsActive)
}

// ActiveLabel renders an isActive flag.
func ActiveLabel(active bool) string {
	if active {
		return "Active"
	}
	return "Inactive"
}

// Department groups classes and staff inside an institution.
type Department struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Institution Ref    `json:"institution"`
	IsActive    bool   `json:"isActive"`
}
