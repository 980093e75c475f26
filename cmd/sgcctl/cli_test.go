package main

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shehrozeikram/SGCEducation-sub002/internal/fakeapi"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/service"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/config"
	appErrors "github.com/shehrozeikram/SGCEducation-sub002/pkg/errors"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/metrics"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/storage"
)

type cliHarness struct {
	api *fakeapi.Server
	cli *commandLine
	out *bytes.Buffer
}

func newCLI(t *testing.T) *cliHarness {
	t.Helper()
	api := fakeapi.New(fakeapi.Options{})
	seedDemo(api)
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	out := &bytes.Buffer{}
	cli := &commandLine{
		cfg: &config.Config{
			API:     config.APIConfig{Origin: srv.URL, Prefix: "/api/v1", Timeout: 5 * time.Second},
			Listing: config.ListingConfig{DefaultPageSize: 10, FullFetchPageSize: 50},
			Forms:   config.FormsConfig{SuccessRedirectDelay: 1500 * time.Millisecond, BannerTTL: 4 * time.Second},
		},
		logger:  zap.NewNop(),
		metrics: metrics.New(),
		store:   storage.NewMemoryStore(),
		out:     out,
		in:      bufio.NewReader(strings.NewReader("")),
		readPassword: func(int) ([]byte, error) {
			return []byte(demoPassword), nil
		},
	}
	t.Cleanup(cli.close)
	return &cliHarness{api: api, cli: cli, out: out}
}

func (h *cliHarness) run(input string, args ...string) (string, error) {
	h.out.Reset()
	h.cli.in = bufio.NewReader(strings.NewReader(input))
	err := h.cli.run(context.Background(), append([]string{"sgcctl"}, args...))
	return h.out.String(), err
}

func (h *cliHarness) login(t *testing.T, args ...string) {
	t.Helper()
	_, err := h.run("", append([]string{"login"}, args...)...)
	require.NoError(t, err)
	h.api.ResetRequests()
}

func TestLoginAsAdmin(t *testing.T) {
	h := newCLI(t)

	out, err := h.run("", "login", "-email", "admin@sgc.test")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as Ada (admin)")
	assert.NotContains(t, out, "Select an institution")

	out, err = h.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada <admin@sgc.test>")
	assert.Contains(t, out, "institution: i1 (locked)")

	out, err = h.run("", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")

	out, err = h.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")
}

func TestLoginPasswordFromStdin(t *testing.T) {
	h := newCLI(t)
	h.cli.readPassword = func(int) ([]byte, error) {
		t.Fatal("terminal prompt used")
		return nil, nil
	}

	out, err := h.run(demoPassword+"\n", "login", "-email", "admin@sgc.test", "-password-stdin")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as Ada")
}

func TestSuperAdminChoosesInstitution(t *testing.T) {
	h := newCLI(t)

	out, err := h.run("", "login", "-email", "root@sgc.test", "-institution", "north")
	require.NoError(t, err)
	assert.Contains(t, out, "Working in North College")

	out, err = h.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "institution: i2\n")

	out, err = h.run("", "use", "-institution", "i1")
	require.NoError(t, err)
	assert.Contains(t, out, "Working in City School")
}

func TestSuperAdminPicksFromPrompt(t *testing.T) {
	h := newCLI(t)

	out, err := h.run("1\n", "login", "-email", "root@sgc.test")
	require.NoError(t, err)
	assert.Contains(t, out, "Select an institution:")
	assert.Contains(t, out, "1) City School [CITY]")
	assert.Contains(t, out, "Working in City School")
}

func TestAdminCannotSwitchInstitution(t *testing.T) {
	h := newCLI(t)
	h.login(t, "-email", "admin@sgc.test")

	_, err := h.run("", "use", "-institution", "i2")
	assert.ErrorIs(t, err, appErrors.ErrInstitutionScopeLocked)
}

func TestListSendsOneScopedRequest(t *testing.T) {
	h := newCLI(t)
	h.login(t, "-email", "admin@sgc.test")

	out, err := h.run("", "list", "classes", "-search", "grade")
	require.NoError(t, err)
	assert.Contains(t, out, "Grade 9")
	assert.Contains(t, out, "Grade 10")
	assert.NotContains(t, out, "First Year")
	assert.Contains(t, out, "page 1 of 1, 2 total")

	reqs := h.api.RequestsTo(http.MethodGet, "classes")
	require.Len(t, reqs, 1)
	assert.Equal(t, "i1", reqs[0].Query.Get("institution"))
	assert.Equal(t, "grade", reqs[0].Query.Get("search"))
	assert.Equal(t, "10", reqs[0].Query.Get("limit"))
}

func TestListRejectsOtherInstitution(t *testing.T) {
	h := newCLI(t)
	h.login(t, "-email", "admin@sgc.test")

	_, err := h.run("", "list", "classes", "-filter", "institution=i2")
	assert.ErrorIs(t, err, appErrors.ErrInstitutionScopeLocked)
	assert.Empty(t, h.api.RequestsTo(http.MethodGet, "classes"))
}

func TestCommandsNeedLogin(t *testing.T) {
	h := newCLI(t)

	_, err := h.run("", "list", "classes")
	require.Error(t, err)
	assert.Contains(t, appErrors.Banner(err, ""), "not logged in")
	assert.Empty(t, h.api.Requests())
}

func TestUnknownCommandPrintsUsage(t *testing.T) {
	h := newCLI(t)

	out, err := h.run("", "frobnicate")
	assert.ErrorIs(t, err, errHelp)
	assert.Contains(t, out, "Usage: sgcctl")

	_, err = h.run("")
	assert.ErrorIs(t, err, errHelp)
}

func TestShowRecord(t *testing.T) {
	h := newCLI(t)
	h.login(t, "-email", "admin@sgc.test")

	out, err := h.run("", "show", "classes", "c1")
	require.NoError(t, err)
	assert.Contains(t, out, "Grade 9")
	assert.Contains(t, out, "City School")
}

func TestToggleUser(t *testing.T) {
	h := newCLI(t)
	h.login(t, "-email", "admin@sgc.test")

	out, err := h.run("", "toggle", "users", "st1")
	require.NoError(t, err)
	assert.Contains(t, out, "User deactivated successfully")
	doc, _ := h.api.Doc(fakeapi.Users, "st1")
	assert.Equal(t, false, doc["isActive"])

	_, err = h.run("", "toggle", "classes", "c1")
	require.Error(t, err)
	assert.Empty(t, h.api.RequestsTo(http.MethodPut, "classes/c1/toggle-status"))
}

func TestSuccessBannerLastsForTTL(t *testing.T) {
	h := newCLI(t)
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	h.cli.now = func() time.Time { return now }
	h.login(t, "-email", "admin@sgc.test")

	_, err := h.run("", "toggle", "users", "st2")
	require.NoError(t, err)
	require.NotNil(t, h.cli.banner)
	assert.Equal(t, "User deactivated successfully", h.cli.banner.Text)
	assert.True(t, h.cli.banner.Visible(now.Add(3*time.Second)))
	assert.False(t, h.cli.banner.Visible(now.Add(5*time.Second)))
}

func TestMonitorBannerFollowsPolls(t *testing.T) {
	h := newCLI(t)
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	h.cli.now = func() time.Time { return now }
	p := service.Performance{FetchedAt: now}

	h.cli.onPerformance(p, appErrors.FromResponse(http.StatusBadGateway, ""))
	assert.Contains(t, h.out.String(), "poll failed: Failed to fetch performance data")
	require.True(t, h.cli.banner.Error)

	now = now.Add(10 * time.Second)
	h.out.Reset()
	h.cli.onPerformance(p, nil)
	assert.Contains(t, h.out.String(), "[Performance data restored]")
	assert.False(t, h.cli.banner.Error)

	now = now.Add(10 * time.Second)
	h.out.Reset()
	h.cli.onPerformance(p, nil)
	assert.Contains(t, h.out.String(), "status=")
	assert.NotContains(t, h.out.String(), "[")
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	h := newCLI(t)
	h.login(t, "-email", "admin@sgc.test")

	out, err := h.run("n\n", "delete", "classes", "c2")
	require.Error(t, err)
	assert.Contains(t, out, "Delete class c2? [y/N]")
	assert.Empty(t, h.api.RequestsTo(http.MethodDelete, "classes/c2"))

	out, err = h.run("y\n", "delete", "classes", "c2")
	require.NoError(t, err)
	assert.Contains(t, out, "Class deleted successfully")

	_, found := h.api.Doc(fakeapi.Classes, "c2")
	assert.False(t, found)
}

func TestCreateAndUpdate(t *testing.T) {
	h := newCLI(t)
	h.login(t, "-email", "admin@sgc.test")

	count := h.api.Count(fakeapi.Classes)
	out, err := h.run("", "create", "classes", "-set", "name=Grade 11", "-set", "code=g11")
	require.NoError(t, err)
	assert.Contains(t, out, "Class created successfully")
	assert.Equal(t, count+1, h.api.Count(fakeapi.Classes))

	reqs := h.api.RequestsTo(http.MethodPost, "classes")
	require.Len(t, reqs, 1)
	assert.Contains(t, string(reqs[0].Body), `"code":"G11"`)
	assert.Contains(t, string(reqs[0].Body), `"institution":"i1"`)

	_, err = h.run("", "create", "classes", "-set", "name=No Code")
	require.Error(t, err)
	assert.Equal(t, appErrors.KindLocalValidationFailed, appErrors.KindOf(err))
	assert.Len(t, h.api.RequestsTo(http.MethodPost, "classes"), 1)
}

func TestUpdateNestedField(t *testing.T) {
	h := newCLI(t)
	h.login(t, "-email", "root@sgc.test", "-institution", "CITY")

	out, err := h.run("", "update", "institutions", "i1", "-set", "address.city=Karachi")
	require.NoError(t, err)
	assert.Contains(t, out, "Institution updated successfully")

	doc, _ := h.api.Doc(fakeapi.Institutions, "i1")
	address, _ := doc["address"].(map[string]interface{})
	assert.Equal(t, "Karachi", address["city"])
	assert.Equal(t, "City School", doc["name"])
}

func TestSettingsCommand(t *testing.T) {
	h := newCLI(t)
	h.login(t, "-email", "root@sgc.test", "-institution", "CITY")

	out, err := h.run("", "settings")
	require.NoError(t, err)
	assert.Contains(t, out, "[academic]")
	assert.Contains(t, out, "results.passMark")

	out, err = h.run("", "settings", "-set", "results.passMark=50")
	require.NoError(t, err)
	assert.Contains(t, out, "results.passMark: Setting updated successfully")
	doc, _ := h.api.Doc(fakeapi.Settings, "set2")
	assert.Equal(t, float64(50), doc["value"])

	_, err = h.run("", "settings", "-set", "system.version=2.0.0")
	require.Error(t, err)
	assert.Empty(t, h.api.RequestsTo(http.MethodPut, "settings/system.version"))
}

func TestResultActions(t *testing.T) {
	h := newCLI(t)
	h.login(t, "-email", "admin@sgc.test")

	out, err := h.run("", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "results: 2 (1 published, 1 draft)")

	out, err = h.run("", "publish", "r2")
	require.NoError(t, err)
	assert.Contains(t, out, "Result published successfully")
	doc, _ := h.api.Doc(fakeapi.Results, "r2")
	assert.Equal(t, "published", doc["status"])
}

func TestSendAndGenerate(t *testing.T) {
	h := newCLI(t)
	h.login(t, "-email", "admin@sgc.test")

	out, err := h.run("", "send", "m1")
	require.NoError(t, err)
	assert.Contains(t, out, "Message sent successfully")
	assert.Contains(t, out, "delivered")

	out, err = h.run("", "generate", "rep1")
	require.NoError(t, err)
	assert.Contains(t, out, "totalRecords: 6")
	assert.Contains(t, out, "admin@sgc.test")
}

func TestPromoteBatch(t *testing.T) {
	h := newCLI(t)
	h.login(t, "-email", "admin@sgc.test")

	out, err := h.run("", "promote", "-students", "st1,st2", "-from-class", "c1", "-to-class", "c2")
	require.NoError(t, err)
	assert.Contains(t, out, "2 student(s) processed, 0 failed")

	doc, _ := h.api.Doc(fakeapi.Users, "st2")
	assert.Equal(t, "c2", doc["class"])

	out, err = h.run("", "list", "promotions")
	require.NoError(t, err)
	assert.Contains(t, out, "2 total")
}

func TestMonitorOnce(t *testing.T) {
	h := newCLI(t)
	h.login(t, "-email", "root@sgc.test", "-institution", "CITY")

	out, err := h.run("", "monitor", "-once")
	require.NoError(t, err)
	assert.Contains(t, out, "status=")

	_, err = h.run("", "monitor", "-interval", "15s")
	require.Error(t, err)
}

func TestMonitorForbiddenForAdmins(t *testing.T) {
	h := newCLI(t)
	h.login(t, "-email", "admin@sgc.test")

	_, err := h.run("", "monitor", "-once")
	require.Error(t, err)
	assert.Equal(t, appErrors.KindForbidden, appErrors.KindOf(err))
}

func TestPromoteChecksPlacement(t *testing.T) {
	h := newCLI(t)
	h.login(t, "-email", "admin@sgc.test")

	_, err := h.run("", "promote", "-students", "st1", "-from-class", "c1", "-to-class", "c3")
	require.Error(t, err)
	assert.Equal(t, appErrors.KindLocalValidationFailed, appErrors.KindOf(err))
	assert.Contains(t, appErrors.Banner(err, ""), "class c3")

	_, err = h.run("", "promote", "-students", "st1,st3", "-from-class", "c1", "-to-class", "c2")
	require.Error(t, err)
	assert.Contains(t, appErrors.Banner(err, ""), "student st3")

	_, err = h.run("", "promote", "-students", "st1", "-from-class", "c1", "-from-section", "s2", "-to-class", "c2")
	require.Error(t, err)
	assert.Contains(t, appErrors.Banner(err, ""), "student st1")

	assert.Empty(t, h.api.RequestsTo(http.MethodPost, "student-promotions"))
}

func TestCreateResultChecksPlacement(t *testing.T) {
	h := newCLI(t)
	h.login(t, "-email", "admin@sgc.test")
	fields := []string{
		"-set", "student=st1", "-set", "section=s1",
		"-set", "academicYear=2025-2026", "-set", "examType=final", "-set", "examName=Finals",
		"-set", "subject=Chemistry", "-set", "marksObtained=41", "-set", "marksTotal=50",
	}

	_, err := h.run("", append([]string{"create", "results", "-set", "class=c3"}, fields...)...)
	require.Error(t, err)
	assert.Equal(t, appErrors.KindLocalValidationFailed, appErrors.KindOf(err))
	assert.Empty(t, h.api.RequestsTo(http.MethodPost, "results"))

	out, err := h.run("", append([]string{"create", "results", "-set", "class=c1"}, fields...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "successfully")
	assert.Len(t, h.api.RequestsTo(http.MethodPost, "results"), 1)
}

func TestOptionsShowsDependentChoices(t *testing.T) {
	h := newCLI(t)
	h.login(t, "-email", "admin@sgc.test")

	out, err := h.run("", "options", "-class", "c1")
	require.NoError(t, err)
	assert.Contains(t, out, "Grade 10")
	assert.Contains(t, out, "Sam")
	assert.Contains(t, out, "Sue")
	assert.NotContains(t, out, "First Year")
	assert.NotContains(t, out, "Noor")

	_, err = h.run("", "options", "-class", "c3")
	require.Error(t, err)
}
