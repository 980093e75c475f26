package form

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shehrozeikram/SGCEducation-sub002/internal/client"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/dto"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/mutation"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/resource"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/session"
	appErrors "github.com/shehrozeikram/SGCEducation-sub002/pkg/errors"
)

type call struct {
	method string
	id     string
	body   interface{}
}

type stubSubmitter struct {
	calls []call
	err   error
}

func (s *stubSubmitter) Create(_ context.Context, d resource.Descriptor, body interface{}) (mutation.Result, error) {
	s.calls = append(s.calls, call{method: http.MethodPost, body: body})
	if s.err != nil {
		return mutation.Result{}, s.err
	}
	return mutation.Result{Data: json.RawMessage(`{"_id":"new"}`)}, nil
}

func (s *stubSubmitter) Update(_ context.Context, d resource.Descriptor, id string, body interface{}) (mutation.Result, error) {
	s.calls = append(s.calls, call{method: http.MethodPut, id: id, body: body})
	if s.err != nil {
		return mutation.Result{}, s.err
	}
	return mutation.Result{Message: "Saved"}, nil
}

type fixedScope session.Scope

func (s fixedScope) InstitutionScope() session.Scope { return session.Scope(s) }

func validResult() *ResultForm {
	return &ResultForm{
		Student:       "s1",
		Institution:   "i1",
		Class:         "c1",
		AcademicYear:  "2024-2025",
		ExamType:      "midterm",
		ExamName:      "Midterm 1",
		Subject:       "Mathematics",
		MarksObtained: "45",
		MarksTotal:    "50",
	}
}

func TestRequiredFieldsFailLocallyWithoutRequests(t *testing.T) {
	forms := map[string]Fields{
		"institution": &InstitutionForm{Code: "X", Type: "school"},
		"class":       &ClassForm{Name: "Grade 9", Institution: "i1"},
		"section":     &SectionForm{Name: "A", Code: "A", Institution: "i1"},
		"group":       &GroupForm{Code: "SCI", Institution: "i1"},
		"user":        &UserForm{Email: "a@b.co", Role: "admin", Institution: "i1", Password: "secret1", ConfirmPassword: "secret1"},
		"result":      &ResultForm{Student: "s1", Institution: "i1", Class: "c1"},
		"message":     &MessageForm{Subject: "Hi", Type: "email", AudienceType: "all"},
		"event":       &CalendarEventForm{Type: "exam", StartDate: "2024-05-01", EndDate: "2024-05-01"},
		"report":      &ReportForm{Type: "user", Format: "pdf"},
		"setting":     &SettingForm{Type: "string"},
		"promotion":   &PromotionForm{Operation: "promote", FromInstitution: "i1", FromClass: "c1", ToInstitution: "i1", ToClass: "c2"},
	}
	for name, values := range forms {
		t.Run(name, func(t *testing.T) {
			sub := &stubSubmitter{}
			b := New(resource.Classes, values, Options{Submitter: sub})
			_, err := b.Submit(context.Background())
			require.Error(t, err)
			assert.Equal(t, appErrors.KindLocalValidationFailed, appErrors.KindOf(err))
			assert.NotEmpty(t, appErrors.Banner(err, ""))
			assert.Empty(t, sub.calls)
		})
	}
}

func TestMarksInvariant(t *testing.T) {
	cases := []struct {
		obtained, total string
		ok              bool
	}{
		{"51", "50", false},
		{"50", "50", true},
		{"0", "50", true},
		{"45", "50", true},
		{"-1", "50", false},
		{"10", "0", false},
		{"abc", "50", false},
	}
	for _, tc := range cases {
		sub := &stubSubmitter{}
		values := validResult()
		values.MarksObtained, values.MarksTotal = tc.obtained, tc.total
		_, err := New(resource.Results, values, Options{Submitter: sub}).Submit(context.Background())
		if tc.ok {
			require.NoError(t, err, tc.obtained+"/"+tc.total)
			assert.Len(t, sub.calls, 1)
			continue
		}
		require.Error(t, err, tc.obtained+"/"+tc.total)
		assert.Equal(t, appErrors.KindLocalValidationFailed, appErrors.KindOf(err))
		assert.Empty(t, sub.calls)
	}

	values := validResult()
	values.MarksObtained = "51"
	err := New(resource.Results, values, Options{}).Validate()
	assert.Contains(t, err.Error(), "marks obtained cannot exceed total marks")
}

func TestPasswordRulesOnCreate(t *testing.T) {
	base := func() *UserForm {
		return &UserForm{Name: "Sara", Email: "sara@school.edu", Role: "teacher", Institution: "i1"}
	}

	short := base()
	short.Password, short.ConfirmPassword = "12345", "12345"
	err := New(resource.Users, short, Options{}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password must be at least 6 characters")

	mismatch := base()
	mismatch.Password, mismatch.ConfirmPassword = "123456", "654321"
	err = New(resource.Users, mismatch, Options{}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "passwords do not match")

	missing := base()
	err = New(resource.Users, missing, Options{}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password is required")

	ok := base()
	ok.Password, ok.ConfirmPassword = "123456", "123456"
	assert.NoError(t, New(resource.Users, ok, Options{}).Validate())
}

func TestPasswordOptionalOnEdit(t *testing.T) {
	sub := &stubSubmitter{}
	values := &UserForm{Name: "Sara", Email: "sara@school.edu", Role: "teacher", Institution: "i1"}
	b := Edit(resource.Users, "u1", values, Options{Submitter: sub})
	assert.True(t, b.Editing())

	out, err := b.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Saved", out.Message)
	require.Len(t, sub.calls, 1)
	assert.Equal(t, "u1", sub.calls[0].id)

	raw, err := json.Marshal(sub.calls[0].body)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")

	values.Password, values.ConfirmPassword = "abc", "abc"
	err = b.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 6")
}

func TestInstitutionRequiredUnlessSuperAdmin(t *testing.T) {
	admin := &UserForm{Name: "A", Email: "a@b.co", Role: "admin", Password: "123456", ConfirmPassword: "123456"}
	err := New(resource.Users, admin, Options{}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "institution is required")

	super := &UserForm{Name: "S", Email: "s@b.co", Role: "super_admin", Password: "123456", ConfirmPassword: "123456"}
	assert.NoError(t, New(resource.Users, super, Options{}).Validate())
	payload := super.Payload().(dto.UserPayload)
	assert.Empty(t, payload.Institution)
}

func TestDepartmentNeedsInstitution(t *testing.T) {
	values := &ClassForm{Name: "Grade 9", Code: "g9", Department: "d1"}
	err := New(resource.Classes, values, Options{}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "select an institution before choosing a department")
}

func TestLockedScopeFillsAndGuardsInstitution(t *testing.T) {
	scope := fixedScope{InstitutionID: "inst-1", Locked: true}
	values := &ClassForm{Name: "Grade 9", Code: "g9"}
	b := New(resource.Classes, values, Options{Scope: scope})
	assert.True(t, b.InstitutionLocked())
	assert.Equal(t, "inst-1", values.Institution)
	require.NoError(t, b.Validate())

	values.Institution = "inst-2"
	assert.ErrorIs(t, b.Validate(), appErrors.ErrInstitutionScopeLocked)

	free := New(resource.Classes, &ClassForm{}, Options{Scope: fixedScope{InstitutionID: "inst-1"}})
	assert.False(t, free.InstitutionLocked())
	assert.Equal(t, "inst-1", free.Values.Institution)
}

func TestConditionalRules(t *testing.T) {
	msg := &MessageForm{Subject: "Exams", Content: "Dates", Type: "sms", AudienceType: "students", Status: "scheduled"}
	err := New(resource.Messages, msg, Options{}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule is required")
	msg.ScheduledAt = "2024-06-01T09:00:00Z"
	assert.NoError(t, New(resource.Messages, msg, Options{}).Validate())

	event := &CalendarEventForm{Title: "Finals", Type: "exam", StartDate: "2024-06-10", EndDate: "2024-06-09"}
	err = New(resource.Calendar, event, Options{}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "end date cannot be before the start")

	passout := &PromotionForm{Operation: "passout", Students: []string{"s1"}, FromInstitution: "i1", FromClass: "c1"}
	assert.NoError(t, New(resource.StudentPromotions, passout, Options{}).Validate())
	assert.Nil(t, passout.Payload().(dto.PromotionPayload).To)

	promote := &PromotionForm{Operation: "promote", Students: []string{"s1"}, FromInstitution: "i1", FromClass: "c1"}
	err = New(resource.StudentPromotions, promote, Options{}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "destination class is required")

	report := &ReportForm{Name: "Weekly", Type: "activity", Format: "csv", ScheduleEnabled: true}
	err = New(resource.Reports, report, Options{}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule frequency is required")
}

func TestSettingValueTyping(t *testing.T) {
	num := &SettingForm{Key: "max_upload", Type: "number", Value: "25"}
	require.NoError(t, Edit(resource.Settings, "max_upload", num, Options{}).Validate())
	assert.Equal(t, dto.SettingPayload{Value: float64(25)}, num.Payload())

	flag := &SettingForm{Key: "maintenance", Type: "boolean", Value: "yes"}
	err := Edit(resource.Settings, "maintenance", flag, Options{}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "value is not a valid boolean")

	locked := &SettingForm{Key: "db", Type: "string", Value: "x", ReadOnly: true}
	err = Edit(resource.Settings, "db", locked, Options{}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not editable")
}

func TestBackendFailureBanner(t *testing.T) {
	sub := &stubSubmitter{err: appErrors.FromResponse(http.StatusInternalServerError, "")}
	_, err := New(resource.Results, validResult(), Options{Submitter: sub}).Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Failed to save result", appErrors.Banner(err, ""))
	assert.Equal(t, appErrors.KindServerError, appErrors.KindOf(err))

	sub = &stubSubmitter{err: appErrors.FromResponse(http.StatusConflict, "Result already exists for this exam")}
	_, err = New(resource.Results, validResult(), Options{Submitter: sub}).Submit(context.Background())
	assert.Equal(t, "Result already exists for this exam", appErrors.Banner(err, ""))
}

func TestCreateResultPayloadOnTheWire(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var body []byte
	r := gin.New()
	r.POST("/results", func(c *gin.Context) {
		body, _ = io.ReadAll(c.Request.Body)
		c.JSON(http.StatusCreated, gin.H{"data": gin.H{"_id": "r1"}})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	exec := mutation.New(client.New(client.Options{BaseURL: srv.URL}), nil, nil)
	values := validResult()
	values.Class = `{"_id":"c1","name":"Grade 9"}`
	out, err := New(resource.Results, values, Options{Submitter: exec, RedirectAfter: 2 * time.Second}).Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Result created successfully", out.Message)
	assert.Equal(t, 2*time.Second, out.RedirectAfter)

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &sent))
	assert.Equal(t, map[string]interface{}{"obtained": float64(45), "total": float64(50)}, sent["marks"])
	assert.Equal(t, "c1", sent["class"])
	for _, key := range []string{"section", "group", "remarks", "teacherRemarks", "examDate"} {
		assert.NotContains(t, sent, key)
	}
	assert.Equal(t, "draft", sent["status"])
}

func TestInstitutionCodeUppercased(t *testing.T) {
	values := &InstitutionForm{Name: "City School", Code: " city01 ", Type: "school"}
	require.NoError(t, New(resource.Institutions, values, Options{}).Validate())
	p := values.Payload().(dto.InstitutionPayload)
	assert.Equal(t, "CITY01", p.Code)
	assert.Nil(t, p.Address)
}

func TestPromotionPayloadDeduplicatesStudents(t *testing.T) {
	values := &PromotionForm{
		Operation:       "transfer",
		Students:        []string{"s1", `{"_id":"s2"}`, "s1"},
		FromInstitution: "i1",
		FromClass:       "c1",
		ToInstitution:   "i2",
		ToClass:         "c7",
	}
	p := values.Payload().(dto.PromotionPayload)
	assert.Equal(t, []string{"s1", "s2"}, p.StudentIDs)
	require.NotNil(t, p.To)
	assert.Equal(t, "i2", p.To.Institution)
}

func TestBannerLifetime(t *testing.T) {
	now := time.Now()
	ok := SuccessBanner("Saved", now, time.Second)
	assert.True(t, ok.Visible(now))
	assert.False(t, ok.Visible(now.Add(2*time.Second)))

	failed := ErrorBanner(appErrors.FromResponse(http.StatusBadGateway, ""), "Failed to fetch users")
	assert.Equal(t, "Failed to fetch users", failed.Text)
	assert.True(t, failed.Visible(now.Add(time.Hour)))
	failed.Dismiss()
	assert.False(t, failed.Visible(now))
}
