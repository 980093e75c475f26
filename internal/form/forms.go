package form

import (
	"strconv"
	"strings"

	"github.com/shehrozeikram/SGCEducation-sub002/internal/dto"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/models"
)

// InstitutionForm edits an institution.
type InstitutionForm struct {
	Name     string         `json:"name" validate:"required"`
	Code     string         `json:"code" validate:"required,max=20"`
	Type     string         `json:"type" validate:"required,oneof=school college"`
	Address  models.Address `json:"address"`
	Contact  models.Contact `json:"contact"`
	IsActive bool           `json:"isActive"`
}

// InstitutionFormFrom pre-fills the form from an existing institution.
func InstitutionFormFrom(i models.Institution) *InstitutionForm {
	return &InstitutionForm{
		Name:     i.Name,
		Code:     i.Code,
		Type:     string(i.Type),
		Address:  i.Address,
		Contact:  i.Contact,
		IsActive: i.IsActive,
	}
}

// Payload implements Fields. The code is upper-cased.
func (f *InstitutionForm) Payload() interface{} {
	p := dto.InstitutionPayload{
		Name:     strings.TrimSpace(f.Name),
		Code:     strings.ToUpper(strings.TrimSpace(f.Code)),
		Type:     models.InstitutionType(f.Type),
		IsActive: f.IsActive,
	}
	if f.Address != (models.Address{}) {
		addr := f.Address
		p.Address = &addr
	}
	if f.Contact != (models.Contact{}) {
		contact := f.Contact
		p.Contact = &contact
	}
	return p
}

// ClassForm edits a class.
type ClassForm struct {
	Name         string `json:"name" validate:"required"`
	Code         string `json:"code" validate:"required"`
	Institution  string `json:"institution" validate:"required"`
	Department   string `json:"department"`
	Group        string `json:"group"`
	AcademicYear string `json:"academicYear"`
	Capacity     string `json:"capacity" validate:"omitempty,numeric"`
	IsActive     bool   `json:"isActive"`
}

// ClassFormFrom pre-fills the form from an existing class.
func ClassFormFrom(c models.Class) *ClassForm {
	return &ClassForm{
		Name:         c.Name,
		Code:         c.Code,
		Institution:  c.Institution.ID(),
		Department:   c.Department.ID(),
		Group:        c.Group.ID(),
		AcademicYear: c.AcademicYear,
		Capacity:     itoa(c.Capacity),
		IsActive:     c.IsActive,
	}
}

func (f *ClassForm) institutionField() *string { return &f.Institution }

// Payload implements Fields.
func (f *ClassForm) Payload() interface{} {
	return dto.ClassPayload{
		Name:         strings.TrimSpace(f.Name),
		Code:         strings.ToUpper(strings.TrimSpace(f.Code)),
		Institution:  models.ResolveID(f.Institution),
		Department:   models.ResolveID(f.Department),
		Group:        models.ResolveID(f.Group),
		AcademicYear: strings.TrimSpace(f.AcademicYear),
		Capacity:     optionalInt(f.Capacity),
		IsActive:     f.IsActive,
	}
}

// SectionForm edits a section.
type SectionForm struct {
	Name        string `json:"name" validate:"required"`
	Code        string `json:"code" validate:"required"`
	Institution string `json:"institution" validate:"required"`
	Class       string `json:"class" validate:"required"`
	Capacity    string `json:"capacity" validate:"omitempty,numeric"`
	IsActive    bool   `json:"isActive"`
}

func (f *SectionForm) institutionField() *string { return &f.Institution }

// Payload implements Fields.
func (f *SectionForm) Payload() interface{} {
	return dto.SectionPayload{
		Name:        strings.TrimSpace(f.Name),
		Code:        strings.ToUpper(strings.TrimSpace(f.Code)),
		Institution: models.ResolveID(f.Institution),
		Class:       models.ResolveID(f.Class),
		Capacity:    optionalInt(f.Capacity),
		IsActive:    f.IsActive,
	}
}

// GroupForm edits a group.
type GroupForm struct {
	Name        string `json:"name" validate:"required"`
	Code        string `json:"code" validate:"required"`
	Type        string `json:"type"`
	Institution string `json:"institution" validate:"required"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
}

func (f *GroupForm) institutionField() *string { return &f.Institution }

// Payload implements Fields.
func (f *GroupForm) Payload() interface{} {
	return dto.GroupPayload{
		Name:        strings.TrimSpace(f.Name),
		Code:        strings.ToUpper(strings.TrimSpace(f.Code)),
		Type:        strings.TrimSpace(f.Type),
		Institution: models.ResolveID(f.Institution),
		Description: strings.TrimSpace(f.Description),
		IsActive:    f.IsActive,
	}
}

// UserForm edits a user. Password is required on create and optional on
// edit; when present it must be at least six characters and confirmed.
type UserForm struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Role            string `json:"role" validate:"required,oneof=super_admin admin teacher student"`
	Institution     string `json:"institution" validate:"required_unless=Role super_admin"`
	Department      string `json:"department"`
	Phone           string `json:"phone"`
	Password        string `json:"password" validate:"omitempty,min=6"`
	ConfirmPassword string `json:"confirmPassword" label:"confirm password" validate:"eqfield=Password"`
	IsActive        bool   `json:"isActive"`

	editing bool
}

// UserFormFrom pre-fills the form from an existing user. Password fields
// stay empty.
func UserFormFrom(u models.User) *UserForm {
	return &UserForm{
		Name:        u.Name,
		Email:       u.Email,
		Role:        string(u.Role),
		Institution: u.Institution.ID(),
		Department:  u.Department.ID(),
		Phone:       u.Phone,
		IsActive:    u.IsActive,
	}
}

func (f *UserForm) setEditing(editing bool) { f.editing = editing }

func (f *UserForm) institutionField() *string {
	if f.Role == string(models.RoleSuperAdmin) {
		return nil
	}
	return &f.Institution
}

// Payload implements Fields. Super admins carry no institution and an
// empty password is left out.
func (f *UserForm) Payload() interface{} {
	p := dto.UserPayload{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.ToLower(strings.TrimSpace(f.Email)),
		Role:     models.Role(f.Role),
		Phone:    strings.TrimSpace(f.Phone),
		Password: f.Password,
		IsActive: f.IsActive,
	}
	if p.Role != models.RoleSuperAdmin {
		p.Institution = models.ResolveID(f.Institution)
		p.Department = models.ResolveID(f.Department)
	}
	return p
}

// ResultForm edits a result. Marks arrive as typed text and leave as
// numbers.
type ResultForm struct {
	Student        string `json:"student" validate:"required"`
	Institution    string `json:"institution" validate:"required"`
	Class          string `json:"class" validate:"required"`
	Section        string `json:"section"`
	Group          string `json:"group"`
	AcademicYear   string `json:"academicYear" label:"academic year" validate:"required"`
	ExamType       string `json:"examType" label:"exam type" validate:"required,oneof=quiz assignment unit_test midterm final practical project annual"`
	ExamName       string `json:"examName" label:"exam name" validate:"required"`
	Subject        string `json:"subject" validate:"required"`
	ExamDate       string `json:"examDate" label:"exam date" validate:"omitempty,datetime=2006-01-02"`
	MarksObtained  string `json:"marksObtained" label:"marks obtained" validate:"required,numeric"`
	MarksTotal     string `json:"marksTotal" label:"total marks" validate:"required,numeric"`
	Status         string `json:"status" validate:"omitempty,oneof=draft published archived"`
	Remarks        string `json:"remarks"`
	TeacherRemarks string `json:"teacherRemarks"`
}

// ResultFormFrom pre-fills the form from an existing result.
func ResultFormFrom(r models.Result) *ResultForm {
	return &ResultForm{
		Student:        r.Student.ID(),
		Institution:    r.Institution.ID(),
		Class:          r.Class.ID(),
		Section:        r.Section.ID(),
		Group:          r.Group.ID(),
		AcademicYear:   r.AcademicYear,
		ExamType:       string(r.ExamType),
		ExamName:       r.ExamName,
		Subject:        r.Subject,
		ExamDate:       r.ExamDate,
		MarksObtained:  strconv.FormatFloat(r.Marks.Obtained, 'f', -1, 64),
		MarksTotal:     strconv.FormatFloat(r.Marks.Total, 'f', -1, 64),
		Status:         string(r.Status),
		Remarks:        r.Remarks,
		TeacherRemarks: r.TeacherRemarks,
	}
}

func (f *ResultForm) institutionField() *string { return &f.Institution }

// Payload implements Fields.
func (f *ResultForm) Payload() interface{} {
	obtained, _ := strconv.ParseFloat(strings.TrimSpace(f.MarksObtained), 64)
	total, _ := strconv.ParseFloat(strings.TrimSpace(f.MarksTotal), 64)
	status := models.ResultStatus(f.Status)
	if status == "" {
		status = models.ResultDraft
	}
	return dto.ResultPayload{
		Student:        models.ResolveID(f.Student),
		Institution:    models.ResolveID(f.Institution),
		Class:          models.ResolveID(f.Class),
		Section:        models.ResolveID(f.Section),
		Group:          models.ResolveID(f.Group),
		AcademicYear:   strings.TrimSpace(f.AcademicYear),
		ExamType:       models.ExamType(f.ExamType),
		ExamName:       strings.TrimSpace(f.ExamName),
		Subject:        strings.TrimSpace(f.Subject),
		ExamDate:       strings.TrimSpace(f.ExamDate),
		Marks:          models.Marks{Obtained: obtained, Total: total},
		Status:         status,
		Remarks:        strings.TrimSpace(f.Remarks),
		TeacherRemarks: strings.TrimSpace(f.TeacherRemarks),
	}
}

// MessageForm composes a message. Scheduled messages need a timestamp.
type MessageForm struct {
	Subject      string                 `json:"subject" validate:"required"`
	Content      string                 `json:"content" validate:"required"`
	Type         string                 `json:"type" validate:"required,oneof=email sms notification announcement"`
	AudienceType string                 `json:"audienceType" label:"audience" validate:"required"`
	Criteria     map[string]interface{} `json:"criteria"`
	Status       string                 `json:"status" validate:"omitempty,oneof=draft scheduled"`
	ScheduledAt  string                 `json:"scheduledAt"`
	Institution  string                 `json:"institution"`
}

func (f *MessageForm) institutionField() *string { return &f.Institution }

// Payload implements Fields.
func (f *MessageForm) Payload() interface{} {
	status := models.MessageStatus(f.Status)
	if status == "" {
		status = models.MessageDraft
	}
	p := dto.MessagePayload{
		Subject:        strings.TrimSpace(f.Subject),
		Content:        f.Content,
		Type:           models.MessageType(f.Type),
		TargetAudience: models.TargetAudience{Type: f.AudienceType, Criteria: f.Criteria},
		Status:         status,
		Institution:    models.ResolveID(f.Institution),
	}
	if status == models.MessageScheduled {
		p.ScheduledAt = strings.TrimSpace(f.ScheduledAt)
	}
	return p
}

// CalendarEventForm edits a calendar event.
type CalendarEventForm struct {
	Title               string `json:"title" validate:"required"`
	Description         string `json:"description"`
	Type                string `json:"type" validate:"required,oneof=holiday exam event meeting deadline other"`
	StartDate           string `json:"startDate" label:"start date" validate:"required,datetime=2006-01-02"`
	EndDate             string `json:"endDate" label:"end date" validate:"required,datetime=2006-01-02"`
	StartTime           string `json:"startTime" label:"start time" validate:"omitempty,datetime=15:04"`
	EndTime             string `json:"endTime" label:"end time" validate:"omitempty,datetime=15:04"`
	AllDay              bool   `json:"allDay"`
	Location            string `json:"location"`
	RecurrenceFrequency string `json:"recurrenceFrequency" label:"recurrence" validate:"omitempty,oneof=daily weekly monthly yearly"`
	RecurrenceInterval  string `json:"recurrenceInterval" label:"recurrence interval" validate:"omitempty,numeric"`
	Institution         string `json:"institution"`
}

func (f *CalendarEventForm) institutionField() *string { return &f.Institution }

// Payload implements Fields. Times are dropped for all-day events.
func (f *CalendarEventForm) Payload() interface{} {
	p := dto.CalendarEventPayload{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Type:        models.EventType(f.Type),
		StartDate:   f.StartDate,
		EndDate:     f.EndDate,
		AllDay:      f.AllDay,
		Location:    strings.TrimSpace(f.Location),
		Institution: models.ResolveID(f.Institution),
	}
	if !f.AllDay {
		p.StartTime = f.StartTime
		p.EndTime = f.EndTime
	}
	if f.RecurrenceFrequency != "" {
		interval := 1
		if n := optionalInt(f.RecurrenceInterval); n != nil && *n > 0 {
			interval = *n
		}
		p.Recurrence = &models.Recurrence{Frequency: f.RecurrenceFrequency, Interval: interval}
	}
	return p
}

// ReportForm edits a report definition.
type ReportForm struct {
	Name              string `json:"name" validate:"required"`
	Description       string `json:"description"`
	Type              string `json:"type" validate:"required,oneof=institution user activity custom"`
	Format            string `json:"format" validate:"required,oneof=pdf excel csv json"`
	ScheduleEnabled   bool   `json:"scheduleEnabled"`
	ScheduleFrequency string `json:"scheduleFrequency" label:"schedule frequency" validate:"required_if=ScheduleEnabled true"`
	ScheduleTime      string `json:"scheduleTime" label:"schedule time" validate:"omitempty,datetime=15:04"`
	Institution       string `json:"institution"`
}

func (f *ReportForm) institutionField() *string { return &f.Institution }

// Payload implements Fields.
func (f *ReportForm) Payload() interface{} {
	p := dto.ReportPayload{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Type:        models.ReportType(f.Type),
		Format:      models.ExportFormat(f.Format),
		Institution: models.ResolveID(f.Institution),
	}
	if f.ScheduleEnabled {
		p.Schedule = &models.ReportSchedule{Enabled: true, Frequency: f.ScheduleFrequency, Time: f.ScheduleTime}
	}
	return p
}

// SettingForm changes the value of one setting. Bind it with Edit using
// the setting key as id.
type SettingForm struct {
	Key      string `json:"key" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=boolean number string object array"`
	Value    string `json:"value"`
	ReadOnly bool   `json:"-"`
}

// SettingFormFrom pre-fills the form from a setting.
func SettingFormFrom(s models.Setting, value string) *SettingForm {
	return &SettingForm{Key: s.Key, Type: string(s.Type), Value: value, ReadOnly: !s.IsEditable}
}

// Payload implements Fields. The value is sent with its declared type.
func (f *SettingForm) Payload() interface{} {
	value, _ := parseSettingValue(models.SettingType(f.Type), f.Value)
	return dto.SettingPayload{Value: value}
}

// PromotionForm moves a batch of students. The destination is required
// unless the operation is a passout.
type PromotionForm struct {
	Operation       string   `json:"operationType" label:"operation" validate:"required,oneof=promote transfer passout"`
	Students        []string `json:"students" validate:"min=1,dive,required"`
	FromInstitution string   `json:"fromInstitution" label:"institution" validate:"required"`
	FromClass       string   `json:"fromClass" label:"class" validate:"required"`
	FromSection     string   `json:"fromSection"`
	FromGroup       string   `json:"fromGroup"`
	AcademicYear    string   `json:"academicYear"`
	ToInstitution   string   `json:"toInstitution"`
	ToClass         string   `json:"toClass"`
	ToSection       string   `json:"toSection"`
	ToGroup         string   `json:"toGroup"`
	ToAcademicYear  string   `json:"toAcademicYear"`
	Remarks         string   `json:"remarks"`
}

func (f *PromotionForm) institutionField() *string { return &f.FromInstitution }

// Payload implements Fields.
func (f *PromotionForm) Payload() interface{} {
	ids := make([]string, 0, len(f.Students))
	seen := make(map[string]struct{}, len(f.Students))
	for _, s := range f.Students {
		id := models.ResolveID(s)
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	p := dto.PromotionPayload{
		OperationType: models.PromotionOperation(f.Operation),
		StudentIDs:    ids,
		From: dto.PlacementPayload{
			Institution:  models.ResolveID(f.FromInstitution),
			Class:        models.ResolveID(f.FromClass),
			Section:      models.ResolveID(f.FromSection),
			Group:        models.ResolveID(f.FromGroup),
			AcademicYear: strings.TrimSpace(f.AcademicYear),
		},
		Remarks: strings.TrimSpace(f.Remarks),
	}
	if p.OperationType != models.OperationPassout {
		p.To = &dto.PlacementPayload{
			Institution:  models.ResolveID(f.ToInstitution),
			Class:        models.ResolveID(f.ToClass),
			Section:      models.ResolveID(f.ToSection),
			Group:        models.ResolveID(f.ToGroup),
			AcademicYear: strings.TrimSpace(f.ToAcademicYear),
		}
	}
	return p
}

func optionalInt(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	n := int(f)
	return &n
}

func itoa(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
