package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shehrozeikram/SGCEducation-sub002/internal/models"
	appErrors "github.com/shehrozeikram/SGCEducation-sub002/pkg/errors"
)

const (
	dateLayout = "2006-01-02"

	tagPasswordRequired  = "password_required"
	tagMarksExceed       = "marks_exceed_total"
	tagMarksNegative     = "marks_negative"
	tagTotalPositive     = "total_positive"
	tagInstitutionFirst  = "institution_first"
	tagScheduleRequired  = "schedule_required"
	tagScheduleFormat    = "schedule_format"
	tagEndBeforeStart    = "end_before_start"
	tagDestination       = "destination_required"
	tagSettingValue      = "setting_value"
	tagSettingNotAllowed = "setting_readonly"
)

// NewValidator returns a validator with the console's struct rules
// registered. Field names in messages come from the label tag.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if label := field.Tag.Get("label"); label != "" {
			return label
		}
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(validateUser, UserForm{})
	v.RegisterStructValidation(validateClass, ClassForm{})
	v.RegisterStructValidation(validateResult, ResultForm{})
	v.RegisterStructValidation(validateMessage, MessageForm{})
	v.RegisterStructValidation(validateEvent, CalendarEventForm{})
	v.RegisterStructValidation(validatePromotion, PromotionForm{})
	v.RegisterStructValidation(validateSetting, SettingForm{})
	return v
}

func validateUser(sl validator.StructLevel) {
	f := sl.Current().Interface().(UserForm)
	if !f.editing && f.Password == "" {
		sl.ReportError(f.Password, "password", "Password", tagPasswordRequired, "")
	}
	if f.Department != "" && f.Institution == "" {
		sl.ReportError(f.Department, "department", "Department", tagInstitutionFirst, "")
	}
}

func validateClass(sl validator.StructLevel) {
	f := sl.Current().Interface().(ClassForm)
	if f.Department != "" && f.Institution == "" {
		sl.ReportError(f.Department, "department", "Department", tagInstitutionFirst, "")
	}
}

func validateResult(sl validator.StructLevel) {
	f := sl.Current().Interface().(ResultForm)
	obtained, errObtained := strconv.ParseFloat(strings.TrimSpace(f.MarksObtained), 64)
	total, errTotal := strconv.ParseFloat(strings.TrimSpace(f.MarksTotal), 64)
	if errObtained != nil || errTotal != nil {
		// numeric tags already reported these
		return
	}
	if obtained < 0 {
		sl.ReportError(f.MarksObtained, "marks obtained", "MarksObtained", tagMarksNegative, "")
	}
	if total <= 0 {
		sl.ReportError(f.MarksTotal, "total marks", "MarksTotal", tagTotalPositive, "")
	}
	if obtained > total {
		sl.ReportError(f.MarksObtained, "marks obtained", "MarksObtained", tagMarksExceed, "")
	}
}

func validateMessage(sl validator.StructLevel) {
	f := sl.Current().Interface().(MessageForm)
	if f.Status != string(models.MessageScheduled) {
		return
	}
	if strings.TrimSpace(f.ScheduledAt) == "" {
		sl.ReportError(f.ScheduledAt, "schedule", "ScheduledAt", tagScheduleRequired, "")
		return
	}
	if _, err := time.Parse(time.RFC3339, strings.TrimSpace(f.ScheduledAt)); err != nil {
		sl.ReportError(f.ScheduledAt, "schedule", "ScheduledAt", tagScheduleFormat, "")
	}
}

func validateEvent(sl validator.StructLevel) {
	f := sl.Current().Interface().(CalendarEventForm)
	start, errStart := time.Parse(dateLayout, f.StartDate)
	end, errEnd := time.Parse(dateLayout, f.EndDate)
	if errStart != nil || errEnd != nil {
		return
	}
	if end.Before(start) {
		sl.ReportError(f.EndDate, "end date", "EndDate", tagEndBeforeStart, "")
		return
	}
	if end.Equal(start) && !f.AllDay && f.StartTime != "" && f.EndTime != "" && f.EndTime < f.StartTime {
		sl.ReportError(f.EndTime, "end time", "EndTime", tagEndBeforeStart, "")
	}
}

func validatePromotion(sl validator.StructLevel) {
	f := sl.Current().Interface().(PromotionForm)
	if f.Operation == string(models.OperationPassout) {
		return
	}
	if f.ToInstitution == "" {
		sl.ReportError(f.ToInstitution, "destination institution", "ToInstitution", tagDestination, "")
	}
	if f.ToClass == "" {
		sl.ReportError(f.ToClass, "destination class", "ToClass", tagDestination, "")
	}
}

func validateSetting(sl validator.StructLevel) {
	f := sl.Current().Interface().(SettingForm)
	if f.ReadOnly {
		sl.ReportError(f.Key, "setting", "Key", tagSettingNotAllowed, "")
		return
	}
	if _, err := parseSettingValue(models.SettingType(f.Type), f.Value); err != nil {
		sl.ReportError(f.Value, "value", "Value", tagSettingValue, f.Type)
	}
}

// localError turns validator output into one LocalValidationFailed error
// listing every problem.
func localError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErrors.Local(err.Error(), err)
	}
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, describe(fe))
	}
	return appErrors.Local(strings.Join(messages, "; "), err)
}

func describe(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required", "required_unless", "required_if", tagPasswordRequired, tagScheduleRequired, tagDestination:
		return name + " is required"
	case "email":
		return name + " must be a valid email address"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("select at least %s %s", fe.Param(), name)
		}
		return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
	case "eqfield":
		if name == "confirm password" {
			return "passwords do not match"
		}
		return name + " does not match"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "numeric", "number":
		return name + " must be a number"
	case "datetime":
		return fmt.Sprintf("%s must use the %s format", name, fe.Param())
	case tagMarksExceed:
		return "marks obtained cannot exceed total marks"
	case tagMarksNegative:
		return "marks obtained cannot be negative"
	case tagTotalPositive:
		return "total marks must be greater than zero"
	case tagInstitutionFirst:
		return "select an institution before choosing a " + name
	case tagScheduleFormat:
		return "schedule must be an RFC 3339 timestamp"
	case tagEndBeforeStart:
		return name + " cannot be before the start"
	case tagSettingValue:
		return fmt.Sprintf("value is not a valid %s", fe.Param())
	case tagSettingNotAllowed:
		return "this setting is not editable"
	}
	return name + " is invalid"
}

// parseSettingValue converts operator input to the declared setting type.
func parseSettingValue(t models.SettingType, raw string) (interface{}, error) {
	raw = strings.TrimSpace(raw)
	switch t {
	case models.SettingBoolean:
		return strconv.ParseBool(raw)
	case models.SettingNumber:
		return strconv.ParseFloat(raw, 64)
	case models.SettingObject:
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &obj); err != nil || obj == nil {
			return nil, fmt.Errorf("not a JSON object")
		}
		return obj, nil
	case models.SettingArray:
		var arr []interface{}
		if err := json.Unmarshal([]byte(raw), &arr); err != nil || arr == nil {
			return nil, fmt.Errorf("not a JSON array")
		}
		return arr, nil
	}
	return raw, nil
}
