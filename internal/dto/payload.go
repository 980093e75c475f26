// Package dto holds the request bodies the console sends to the backend.
// Relational fields are plain ids; optional fields are omitted when blank.
package dto

import "github.com/shehrozeikram/SGCEducation-sub002/internal/models"

// InstitutionPayload is the body of POST/PUT institutions.
type InstitutionPayload struct {
	Name     string                 `json:"name"`
	Code     string                 `json:"code"`
	Type     models.InstitutionType `json:"type"`
	Address  *models.Address        `json:"address,omitempty"`
	Contact  *models.Contact        `json:"contact,omitempty"`
	IsActive bool                   `json:"isActive"`
}

// ClassPayload is the body of POST/PUT classes.
type ClassPayload struct {
	Name         string `json:"name"`
	Code         string `json:"code"`
	Institution  string `json:"institution"`
	Department   string `json:"department,omitempty"`
	Group        string `json:"group,omitempty"`
	AcademicYear string `json:"academicYear,omitempty"`
	Capacity     *int   `json:"capacity,omitempty"`
	IsActive     bool   `json:"isActive"`
}

// SectionPayload is the body of POST/PUT sections.
type SectionPayload struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Institution string `json:"institution"`
	Class       string `json:"class"`
	Capacity    *int   `json:"capacity,omitempty"`
	IsActive    bool   `json:"isActive"`
}

// GroupPayload is the body of POST/PUT groups.
type GroupPayload struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Type        string `json:"type,omitempty"`
	Institution string `json:"institution"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"isActive"`
}

// UserPayload is the body of POST/PUT users. Password is write-only and
// omitted on edit when unchanged.
type UserPayload struct {
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Role        models.Role `json:"role"`
	Institution string      `json:"institution,omitempty"`
	Department  string      `json:"department,omitempty"`
	Phone       string      `json:"phone,omitempty"`
	Password    string      `json:"password,omitempty"`
	IsActive    bool        `json:"isActive"`
}

// ResultPayload is the body of POST/PUT results. Marks are numbers.
type ResultPayload struct {
	Student        string              `json:"student"`
	Institution    string              `json:"institution"`
	Class          string              `json:"class"`
	Section        string              `json:"section,omitempty"`
	Group          string              `json:"group,omitempty"`
	AcademicYear   string              `json:"academicYear"`
	ExamType       models.ExamType     `json:"examType"`
	ExamName       string              `json:"examName"`
	Subject        string              `json:"subject"`
	ExamDate       string              `json:"examDate,omitempty"`
	Marks          models.Marks        `json:"marks"`
	Status         models.ResultStatus `json:"status,omitempty"`
	Remarks        string              `json:"remarks,omitempty"`
	TeacherRemarks string              `json:"teacherRemarks,omitempty"`
}

// MessagePayload is the body of POST/PUT messages.
type MessagePayload struct {
	Subject        string                `json:"subject"`
	Content        string                `json:"content"`
	Type           models.MessageType    `json:"type"`
	TargetAudience models.TargetAudience `json:"targetAudience"`
	Status         models.MessageStatus  `json:"status"`
	ScheduledAt    string                `json:"scheduledAt,omitempty"`
	Institution    string                `json:"institution,omitempty"`
}

// CalendarEventPayload is the body of POST/PUT calendar.
type CalendarEventPayload struct {
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Type        models.EventType   `json:"type"`
	StartDate   string             `json:"startDate"`
	EndDate     string             `json:"endDate"`
	StartTime   string             `json:"startTime,omitempty"`
	EndTime     string             `json:"endTime,omitempty"`
	AllDay      bool               `json:"allDay"`
	Location    string             `json:"location,omitempty"`
	Recurrence  *models.Recurrence `json:"recurrence,omitempty"`
	Institution string             `json:"institution,omitempty"`
}

// ReportPayload is the body of POST/PUT reports.
type ReportPayload struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Type        models.ReportType      `json:"type"`
	Format      models.ExportFormat    `json:"format"`
	Schedule    *models.ReportSchedule `json:"schedule,omitempty"`
	Institution string                 `json:"institution,omitempty"`
}

// SettingPayload is the body of PUT settings/:key.
type SettingPayload struct {
	Value interface{} `json:"value"`
}

// PlacementPayload is one side of a promotion.
type PlacementPayload struct {
	Institution  string `json:"institution"`
	Class        string `json:"class"`
	Section      string `json:"section,omitempty"`
	Group        string `json:"group,omitempty"`
	AcademicYear string `json:"academicYear,omitempty"`
}

// PromotionPayload is the body of POST student-promotions: one batch of
// students moved together.
type PromotionPayload struct {
	OperationType models.PromotionOperation `json:"operationType"`
	StudentIDs    []string                  `json:"studentIds"`
	From          PlacementPayload          `json:"from"`
	To            *PlacementPayload         `json:"to,omitempty"`
	Remarks       string                    `json:"remarks,omitempty"`
}

// PromotionSummary is the backend's answer to a promotion batch.
type PromotionSummary struct {
	Processed int                `json:"processed"`
	Failed    int                `json:"failed"`
	Records   []models.Promotion `json:"records,omitempty"`
}
