package models

// Class is a grade or programme within an institution.
type Class struct {
	ID           string `json:"_id"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	Institution  Ref    `json:"institution"`
	Department   Ref    `json:"department"`
	Group        Ref    `json:"group"`
	AcademicYear string `json:"academicYear,omitempty"`
	Capacity     int    `json:"capacity,omitempty"`
	IsActive     bool   `json:"isActive"`
}

// Section subdivides a class.
type Section struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Institution Ref    `json:"institution"`
	Class       Ref    `json:"class"`
	Capacity    int    `json:"capacity,omitempty"`
	IsActive    bool   `json:"isActive"`
}

// Group is a subject stream (e.g. science, arts) inside an institution.
type Group struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Type        string `json:"type,omitempty"`
	Institution Ref    `json:"institution"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"isActive"`
}
