package models

// PersonalInfo is the applicant part of an admission record.
type PersonalInfo struct {
	Name      string `json:"name,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Admission links a person to an institution, class, section and group.
type Admission struct {
	ID            string           `json:"_id"`
	ApplicationNo string           `json:"applicationNumber,omitempty"`
	RollNumber    string           `json:"rollNumber,omitempty"`
	Student       Ref              `json:"student"`
	PersonalInfo  PersonalInfo     `json:"personalInfo"`
	Institution   Ref              `json:"institution"`
	Class         Ref              `json:"class"`
	Section       Ref              `json:"section"`
	Group         Ref              `json:"group"`
	AcademicYear  string           `json:"academicYear,omitempty"`
	Status        EnrollmentStatus `json:"status"`
}

// StudentID is the id used when this record is selected for promotion.
func (a Admission) StudentID() string {
	if id := a.Student.ID(); id != "" {
		return id
	}
	return a.ID
}

// DisplayName returns the applicant name from whichever field is populated.
func (a Admission) DisplayName() string {
	switch {
	case a.PersonalInfo.Name != "":
		return a.PersonalInfo.Name
	case a.PersonalInfo.FirstName != "" || a.PersonalInfo.LastName != "":
		return joinName(a.PersonalInfo.FirstName, a.PersonalInfo.LastName)
	}
	return a.Student.Label()
}

func joinName(first, last string) string {
	if first == "" {
		return last
	}
	if last == "" {
		return first
	}
	return first + " " + last
}
