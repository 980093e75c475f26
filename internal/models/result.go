package models

// Marks are the obtained and total marks of one result.
type Marks struct {
	Obtained float64 `json:"obtained"`
	Total    float64 `json:"total"`
}

// Result is one exam outcome for one student and subject. Percentage, grade
// and GPA are computed by the backend.
type Result struct {
	ID             string       `json:"_id"`
	Student        Ref          `json:"student"`
	Institution    Ref          `json:"institution"`
	Class          Ref          `json:"class"`
	Section        Ref          `json:"section"`
	Group          Ref          `json:"group"`
	AcademicYear   string       `json:"academicYear"`
	ExamType       ExamType     `json:"examType"`
	ExamName       string       `json:"examName"`
	Subject        string       `json:"subject"`
	ExamDate       string       `json:"examDate,omitempty"`
	Marks          Marks        `json:"marks"`
	Percentage     float64      `json:"percentage"`
	Grade          string       `json:"grade,omitempty"`
	GPA            float64      `json:"gpa,omitempty"`
	Status         ResultStatus `json:"status"`
	Remarks        string       `json:"remarks,omitempty"`
	TeacherRemarks string       `json:"teacherRemarks,omitempty"`
}

// ResultStats is the results overview header.
type ResultStats struct {
	TotalResults      int            `json:"totalResults"`
	Published         int            `json:"published"`
	Draft             int            `json:"draft"`
	AveragePercentage float64        `json:"averagePercentage"`
	PassRate          float64        `json:"passRate"`
	GradeDistribution map[string]int `json:"gradeDistribution,omitempty"`
}
