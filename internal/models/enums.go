package models

// Role is the user role enumeration.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleTeacher    Role = "teacher"
	RoleStudent    Role = "student"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// InstitutionType distinguishes schools from colleges.
type InstitutionType string

const (
	InstitutionSchool  InstitutionType = "school"
	InstitutionCollege InstitutionType = "college"
)

// EnrollmentStatus is the state of an admission record.
type EnrollmentStatus string

const (
	EnrollmentEnrolled    EnrollmentStatus = "enrolled"
	EnrollmentTransferred EnrollmentStatus = "transferred"
	EnrollmentGraduated   EnrollmentStatus = "graduated"
	EnrollmentActive      EnrollmentStatus = "active"
)

// ExamType enumerates the kinds of assessment a result can belong to.
type ExamType string

const (
	ExamQuiz       ExamType = "quiz"
	ExamAssignment ExamType = "assignment"
	ExamUnitTest   ExamType = "unit_test"
	ExamMidterm    ExamType = "midterm"
	ExamFinal      ExamType = "final"
	ExamPractical  ExamType = "practical"
	ExamProject    ExamType = "project"
	ExamAnnual     ExamType = "annual"
)

// ExamTypes lists every exam type in display order.
var ExamTypes = []ExamType{ExamQuiz, ExamAssignment, ExamUnitTest, ExamMidterm, ExamFinal, ExamPractical, ExamProject, ExamAnnual}

// Valid reports whether e is a known exam type.
func (e ExamType) Valid() bool {
	for _, t := range ExamTypes {
		if t == e {
			return true
		}
	}
	return false
}

// ResultStatus follows draft -> published -> archived.
type ResultStatus string

const (
	ResultDraft     ResultStatus = "draft"
	ResultPublished ResultStatus = "published"
	ResultArchived  ResultStatus = "archived"
)

// MessageType is the delivery channel of a message.
type MessageType string

const (
	MessageEmail        MessageType = "email"
	MessageSMS          MessageType = "sms"
	MessageNotification MessageType = "notification"
	MessageAnnouncement MessageType = "announcement"
)

// MessageStatus tracks a message from draft to delivery.
type MessageStatus string

const (
	MessageDraft     MessageStatus = "draft"
	MessageScheduled MessageStatus = "scheduled"
	MessageSent      MessageStatus = "sent"
	MessageFailed    MessageStatus = "failed"
)

// EventType classifies calendar entries.
type EventType string

const (
	EventHoliday  EventType = "holiday"
	EventExam     EventType = "exam"
	EventEvent    EventType = "event"
	EventMeeting  EventType = "meeting"
	EventDeadline EventType = "deadline"
	EventOther    EventType = "other"
)

// ReportType is the subject area of a report definition.
type ReportType string

const (
	ReportInstitution ReportType = "institution"
	ReportUser        ReportType = "user"
	ReportActivity    ReportType = "activity"
	ReportCustom      ReportType = "custom"
)

// ExportFormat is the backend-rendered export format of a report.
type ExportFormat string

const (
	FormatPDF   ExportFormat = "pdf"
	FormatExcel ExportFormat = "excel"
	FormatCSV   ExportFormat = "csv"
	FormatJSON  ExportFormat = "json"
)

// PromotionOperation is the kind of student movement recorded.
type PromotionOperation string

const (
	OperationPromote  PromotionOperation = "promote"
	OperationTransfer PromotionOperation = "transfer"
	OperationPassout  PromotionOperation = "passout"
)

// SettingType is the declared type of a setting value.
type SettingType string

const (
	SettingBoolean SettingType = "boolean"
	SettingNumber  SettingType = "number"
	SettingString  SettingType = "string"
	SettingObject  SettingType = "object"
	SettingArray   SettingType = "array"
)
