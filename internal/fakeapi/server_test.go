package fakeapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Pagination *struct {
		Page  int `json:"page"`
		Limit int `json:"limit"`
		Total int `json:"total"`
		Pages int `json:"pages"`
	} `json:"pagination"`
}

func seeded(t *testing.T) *Server {
	t.Helper()
	s := New(Options{})
	s.Seed(Institutions,
		Doc{"_id": "i1", "name": "City School", "code": "CITY", "type": "school", "isActive": true},
		Doc{"_id": "i2", "name": "North College", "code": "NORTH", "type": "college", "isActive": true},
	)
	s.Seed(Users,
		Doc{"_id": "u-root", "name": "Root", "email": "root@sgc.test", "password": "secret1", "role": "super_admin", "isActive": true},
		Doc{"_id": "u-admin", "name": "Ada", "email": "ada@sgc.test", "password": "secret1", "role": "admin", "institution": "i1", "isActive": true},
		Doc{"_id": "st1", "name": "Sam", "email": "sam@sgc.test", "role": "student", "institution": "i1", "class": "c1", "isActive": true},
		Doc{"_id": "st2", "name": "Sue", "email": "sue@sgc.test", "role": "student", "institution": "i1", "class": "c1", "isActive": true},
	)
	s.Seed(Classes,
		Doc{"_id": "c1", "name": "Grade 9", "institution": "i1"},
		Doc{"_id": "c2", "name": "Grade 10", "institution": "i1"},
		Doc{"_id": "c3", "name": "First Year", "institution": "i2"},
	)
	return s
}

func do(t *testing.T, s *Server, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, s.Prefix()+"/"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func token(t *testing.T, s *Server, userID string) string {
	t.Helper()
	tok, err := s.Issue(userID)
	require.NoError(t, err)
	return tok
}

func TestLogin(t *testing.T) {
	s := seeded(t)

	rec, env := do(t, s, http.MethodPost, "auth/login", "", map[string]string{"email": "ada@sgc.test", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	var data struct {
		Token string                 `json:"token"`
		User  map[string]interface{} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data.Token)
	assert.NotContains(t, data.User, "password")
	assert.Equal(t, map[string]interface{}{"_id": "i1", "name": "City School"}, data.User["institution"])

	claims, err := s.Verify(data.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-admin", claims.UserID)
	assert.Equal(t, "i1", claims.Institution)

	rec, env = do(t, s, http.MethodPost, "auth/login", "", map[string]string{"email": "ada@sgc.test", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", env.Message)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := seeded(t)
	rec, env := do(t, s, http.MethodGet, "classes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized, no token", env.Message)

	rec, _ = do(t, s, http.MethodGet, "classes", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	s := New(Options{TokenTTL: time.Minute, Now: func() time.Time { return now }})
	s.Seed(Users, Doc{"_id": "u1", "email": "a@b.c", "password": "x", "role": "admin", "isActive": true})
	tok := token(t, s, "u1")

	now = now.Add(2 * time.Minute)
	rec, _ := do(t, s, http.MethodGet, "classes", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListFiltersSearchesAndPaginates(t *testing.T) {
	s := seeded(t)
	root := token(t, s, "u-root")

	rec, env := do(t, s, http.MethodGet, "classes?institution=i1&page=2&limit=1", root, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "c2", items[0]["_id"])
	assert.Equal(t, map[string]interface{}{"_id": "i1", "name": "City School"}, items[0]["institution"])
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 2, env.Pagination.Total)
	assert.Equal(t, 2, env.Pagination.Pages)

	_, env = do(t, s, http.MethodGet, "institutions?search=north", root, nil)
	items = nil
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "i2", items[0]["_id"])
}

func TestListIsScopedForNonSuperAdmins(t *testing.T) {
	s := seeded(t)
	_, env := do(t, s, http.MethodGet, "classes?institution=i2", token(t, s, "u-admin"), nil)
	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 2)
}

func TestRoleChecks(t *testing.T) {
	s := seeded(t)
	rec, env := do(t, s, http.MethodPost, "institutions", token(t, s, "u-admin"), map[string]string{"name": "X", "code": "X"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied for role admin", env.Message)
	assert.Equal(t, 2, s.Count(Institutions))
}

func TestCreateUpdateDelete(t *testing.T) {
	s := seeded(t)
	root := token(t, s, "u-root")

	rec, env := do(t, s, http.MethodPost, "institutions", root, map[string]string{"name": "East", "code": "EAST", "type": "school"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	id, _ := created["_id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, true, created["isActive"])

	rec, env = do(t, s, http.MethodPost, "institutions", root, map[string]string{"name": "Dup", "code": "EAST"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Institution with this code already exists", env.Message)

	rec, _ = do(t, s, http.MethodPut, "institutions/"+id, root, map[string]string{"name": "East Campus"})
	require.Equal(t, http.StatusOK, rec.Code)
	doc, _ := s.Doc(Institutions, id)
	assert.Equal(t, "East Campus", doc["name"])
	assert.Equal(t, "EAST", doc["code"])

	rec, env = do(t, s, http.MethodPut, "institutions/"+id+"/toggle-status", root, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Institution deactivated successfully", env.Message)

	rec, _ = do(t, s, http.MethodDelete, "classes/c3", root, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	_, found := s.Doc(Classes, "c3")
	assert.False(t, found)

	rec, env = do(t, s, http.MethodGet, "classes/c3", root, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Class not found", env.Message)
}

func TestFailNextIsOneShot(t *testing.T) {
	s := seeded(t)
	root := token(t, s, "u-root")
	s.FailNext(http.MethodGet, "institutions", http.StatusInternalServerError, "database unavailable")

	rec, env := do(t, s, http.MethodGet, "institutions?page=1&limit=10", root, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "database unavailable", env.Message)

	rec, _ = do(t, s, http.MethodGet, "institutions?page=1&limit=10", root, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	reqs := s.RequestsTo(http.MethodGet, "institutions")
	require.Len(t, reqs, 2)
	assert.Equal(t, "page=1&limit=10", reqs[0].RawQuery)
}

func TestResultGradeAndStats(t *testing.T) {
	s := seeded(t)
	admin := token(t, s, "u-admin")

	for _, obtained := range []float64{92, 35} {
		rec, _ := do(t, s, http.MethodPost, "results", admin, map[string]interface{}{
			"student": "st1", "institution": "i1", "class": "c1", "subject": "Math",
			"examType": "final", "marks": map[string]float64{"obtained": obtained, "total": 100}, "status": "draft",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	results := s.RequestsTo(http.MethodPost, "results")
	require.Len(t, results, 2)

	_, env := do(t, s, http.MethodGet, "results?student=st1", admin, nil)
	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 2)
	assert.Equal(t, "A+", items[0]["grade"])
	assert.Equal(t, "F", items[1]["grade"])
	assert.Equal(t, map[string]interface{}{"_id": "st1", "name": "Sam"}, items[0]["student"])

	id, _ := items[0]["_id"].(string)
	rec, _ := do(t, s, http.MethodPost, "results/"+id+"/publish", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	_, env = do(t, s, http.MethodGet, "results/stats/overview", admin, nil)
	var stats struct {
		TotalResults      int            `json:"totalResults"`
		Published         int            `json:"published"`
		Draft             int            `json:"draft"`
		AveragePercentage float64        `json:"averagePercentage"`
		PassRate          float64        `json:"passRate"`
		GradeDistribution map[string]int `json:"gradeDistribution"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 2, stats.TotalResults)
	assert.Equal(t, 1, stats.Published)
	assert.Equal(t, 1, stats.Draft)
	assert.Equal(t, 63.5, stats.AveragePercentage)
	assert.Equal(t, 50.0, stats.PassRate)
}

func TestSendMessageOnlyOnce(t *testing.T) {
	s := seeded(t)
	s.Seed(Messages, Doc{"_id": "m1", "subject": "Hi", "status": "draft", "institution": "i1"})
	admin := token(t, s, "u-admin")

	rec, env := do(t, s, http.MethodPost, "messages/m1/send", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Message sent successfully", env.Message)
	doc, _ := s.Doc(Messages, "m1")
	assert.Equal(t, "sent", doc["status"])
	assert.Equal(t, float64(3), lookup(doc, "deliveryStats.total"))

	rec, env = do(t, s, http.MethodPost, "messages/m1/send", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Message has already been sent", env.Message)
}

func TestSettings(t *testing.T) {
	s := seeded(t)
	s.Seed(Settings,
		Doc{"_id": "s1", "key": "site_name", "value": "SGC", "type": "string", "category": "general", "isEditable": true},
		Doc{"_id": "s2", "key": "db_version", "value": 3, "type": "number", "category": "system", "isEditable": false},
	)
	root := token(t, s, "u-root")

	_, env := do(t, s, http.MethodGet, "settings/by-category", root, nil)
	var grouped map[string][]map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &grouped))
	assert.Len(t, grouped["general"], 1)
	assert.Len(t, grouped["system"], 1)

	rec, _ := do(t, s, http.MethodPut, "settings/site_name", root, map[string]string{"value": "SGC Education"})
	require.Equal(t, http.StatusOK, rec.Code)
	doc, _ := s.Doc(Settings, "s1")
	assert.Equal(t, "SGC Education", doc["value"])

	rec, env = do(t, s, http.MethodPut, "settings/db_version", root, map[string]int{"value": 4})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "This setting cannot be modified", env.Message)
}

func TestPromotionBatch(t *testing.T) {
	s := seeded(t)
	admin := token(t, s, "u-admin")

	rec, env := do(t, s, http.MethodPost, "student-promotions", admin, map[string]interface{}{
		"operationType": "promote",
		"studentIds":    []string{"st1", "st2", "ghost"},
		"from":          map[string]string{"institution": "i1", "class": "c1"},
		"to":            map[string]string{"institution": "i1", "class": "c2"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var summary struct {
		Processed int `json:"processed"`
		Failed    int `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, s.Count(Promotions))

	doc, _ := s.Doc(Users, "st1")
	assert.Equal(t, "c2", doc["class"])

	rec, env = do(t, s, http.MethodPost, "student-promotions", admin, map[string]interface{}{
		"operationType": "transfer",
		"studentIds":    []string{"st1"},
		"from":          map[string]string{"institution": "i1", "class": "c2"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Destination is required", env.Message)
}

func TestReportGenerate(t *testing.T) {
	s := seeded(t)
	s.Seed(Reports, Doc{"_id": "r1", "name": "Campuses", "type": "institution"})
	rec, env := do(t, s, http.MethodPost, "reports/r1/generate", token(t, s, "u-admin"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Summary map[string]interface{}   `json:"summary"`
		Data    []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, float64(2), out.Summary["totalRecords"])
	assert.Len(t, out.Data, 2)
	doc, _ := s.Doc(Reports, "r1")
	assert.NotEmpty(t, doc["lastGenerated"])
}

func TestPerformanceNeedsSuperAdmin(t *testing.T) {
	s := seeded(t)
	rec, _ := do(t, s, http.MethodGet, "performance/system-health", token(t, s, "u-admin"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := do(t, s, http.MethodGet, "performance/active-sessions", token(t, s, "u-root"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sessions struct {
		Total  int            `json:"total"`
		ByRole map[string]int `json:"byRole"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sessions))
	assert.Equal(t, 4, sessions.Total)
	assert.Equal(t, 2, sessions.ByRole["student"])

	_, env = do(t, s, http.MethodGet, "performance/error-rates", token(t, s, "u-root"), nil)
	var rates struct {
		Total    int            `json:"total"`
		ByStatus map[string]int `json:"byStatus"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &rates))
	assert.Equal(t, 1, rates.Total)
	assert.Equal(t, 1, rates.ByStatus["403"])
}

func TestPasswordsStoredHashed(t *testing.T) {
	s := seeded(t)
	doc, ok := s.Doc(Users, "u-admin")
	require.True(t, ok)
	stored, _ := doc["password"].(string)
	assert.NotEqual(t, "secret1", stored)
	assert.Contains(t, stored, "$2")

	token, err := s.Issue("u-root")
	require.NoError(t, err)
	rec, _ := do(t, s, http.MethodPost, "users", token, map[string]interface{}{
		"name": "Tom", "email": "tom@sgc.test", "password": "secret2", "role": "teacher", "institution": "i1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = do(t, s, http.MethodPost, "auth/login", "", map[string]string{"email": "tom@sgc.test", "password": "secret2"})
	assert.Equal(t, http.StatusOK, rec.Code)
}
