package fakeapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shehrozeikram/SGCEducation-sub002/internal/dto"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/middleware"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/models"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/response"
)

// unique lists the field that must not repeat inside a collection.
var unique = map[string]string{
	Institutions: "code",
	Users:        "email",
	Settings:     "key",
}

// global collections are not filtered by the caller's institution.
var global = map[string]bool{
	Institutions: true,
	Templates:    true,
	Settings:     true,
}

// singular names used in backend messages.
var singular = map[string]string{
	Institutions: "Institution",
	Departments:  "Department",
	Classes:      "Class",
	Sections:     "Section",
	Groups:       "Group",
	Admissions:   "Admission",
	Users:        "User",
	Results:      "Result",
	Messages:     "Message",
	Templates:    "Template",
	Calendar:     "Event",
	Reports:      "Report",
	Settings:     "Setting",
	Promotions:   "Promotion",
}

func label(name string) string {
	if l, ok := singular[name]; ok {
		return l
	}
	return "Resource"
}

func (s *Server) list(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := c.Request.URL.Query()
		if claims, ok := middleware.ClaimsFrom(c); ok && claims.Role != models.RoleSuperAdmin && claims.Institution != "" && !global[name] {
			params.Set("institution", claims.Institution)
		}
		s.mu.Lock()
		docs, pagination := paginate(s.collection(name).filter(params), params)
		out := make([]Doc, 0, len(docs))
		for _, doc := range docs {
			out = append(out, s.populate(doc))
		}
		s.mu.Unlock()
		response.JSON(c, http.StatusOK, out, pagination)
	}
}

func (s *Server) get(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		doc, found := s.collection(name).get(c.Param("id"))
		var out Doc
		if found {
			out = s.populate(doc)
		}
		s.mu.Unlock()
		if !found {
			notFound(c, label(name))
			return
		}
		respond(c, out)
	}
}

func (s *Server) create(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body Doc
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "Invalid request body")
			return
		}
		s.mu.Lock()
		col := s.collection(name)
		if field, ok := unique[name]; ok {
			if v, _ := body[field].(string); v != "" {
				if _, taken := col.find(field, v); taken {
					s.mu.Unlock()
					badRequest(c, fmt.Sprintf("%s with this %s already exists", label(name), field))
					return
				}
			}
		}
		delete(body, "_id")
		if _, set := body["isActive"]; !set {
			body["isActive"] = true
		}
		body["createdAt"] = s.now().UTC().Format(time.RFC3339)
		if name == Users {
			if err := hashPassword(body); err != nil {
				s.mu.Unlock()
				response.Error(c, err)
				return
			}
		}
		if name == Results {
			computeGrade(body)
		}
		doc := col.insert(body)
		out := s.populate(doc)
		s.mu.Unlock()
		response.Created(c, out)
	}
}

func (s *Server) update(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body Doc
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "Invalid request body")
			return
		}
		s.mu.Lock()
		doc, found := s.collection(name).get(c.Param("id"))
		if !found {
			s.mu.Unlock()
			notFound(c, label(name))
			return
		}
		for k, v := range body {
			if k == "_id" || (k == "password" && v == "") {
				continue
			}
			doc[k] = v
		}
		if name == Users {
			if err := hashPassword(doc); err != nil {
				s.mu.Unlock()
				response.Error(c, err)
				return
			}
		}
		if name == Results {
			computeGrade(doc)
		}
		out := s.populate(doc)
		s.mu.Unlock()
		respond(c, out)
	}
}

func (s *Server) remove(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		removed := s.collection(name).remove(c.Param("id"))
		s.mu.Unlock()
		if !removed {
			notFound(c, label(name))
			return
		}
		respond(c, nil, label(name)+" deleted successfully")
	}
}

func (s *Server) toggleStatus(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		doc, found := s.collection(name).get(c.Param("id"))
		var out Doc
		if found {
			active, _ := doc["isActive"].(bool)
			doc["isActive"] = !active
			out = s.populate(doc)
		}
		s.mu.Unlock()
		if !found {
			notFound(c, label(name))
			return
		}
		state := "deactivated"
		if out["isActive"] == true {
			state = "activated"
		}
		respond(c, out, fmt.Sprintf("%s %s successfully", label(name), state))
	}
}

func (s *Server) publishResult(c *gin.Context) {
	s.mu.Lock()
	doc, found := s.collection(Results).get(c.Param("id"))
	var out Doc
	if found {
		doc["status"] = string(models.ResultPublished)
		out = s.populate(doc)
	}
	s.mu.Unlock()
	if !found {
		notFound(c, "Result")
		return
	}
	respond(c, out, "Result published successfully")
}

func (s *Server) sendMessage(c *gin.Context) {
	s.mu.Lock()
	doc, found := s.collection(Messages).get(c.Param("id"))
	if !found {
		s.mu.Unlock()
		notFound(c, "Message")
		return
	}
	status, _ := doc["status"].(string)
	if status != string(models.MessageDraft) && status != string(models.MessageScheduled) {
		s.mu.Unlock()
		badRequest(c, "Message has already been sent")
		return
	}
	recipients := 0
	institution, _ := doc["institution"].(string)
	for _, u := range s.collection(Users).all() {
		if institution == "" || u["institution"] == institution {
			recipients++
		}
	}
	doc["status"] = string(models.MessageSent)
	doc["deliveryStats"] = Doc{
		"total":     recipients,
		"sent":      recipients,
		"delivered": recipients,
		"failed":    0,
	}
	out := s.populate(doc)
	s.mu.Unlock()
	respond(c, out, "Message sent successfully")
}

// reportSources maps a report type to the collection it summarises.
var reportSources = map[string]string{
	string(models.ReportInstitution): Institutions,
	string(models.ReportUser):        Users,
	string(models.ReportActivity):    Results,
	string(models.ReportCustom):      Admissions,
}

func (s *Server) generateReport(c *gin.Context) {
	s.mu.Lock()
	doc, found := s.collection(Reports).get(c.Param("id"))
	if !found {
		s.mu.Unlock()
		notFound(c, "Report")
		return
	}
	kind, _ := doc["type"].(string)
	source := reportSources[kind]
	if source == "" {
		source = Institutions
	}
	rows := make([]Doc, 0)
	for _, d := range s.collection(source).all() {
		rows = append(rows, s.populate(d))
	}
	now := s.now().UTC()
	doc["lastGenerated"] = now.Format(time.RFC3339)
	s.mu.Unlock()

	respond(c, gin.H{
		"summary":     gin.H{"type": kind, "totalRecords": len(rows)},
		"data":        rows,
		"generatedAt": now,
	}, "Report generated successfully")
}

func (s *Server) resultStats(c *gin.Context) {
	params := c.Request.URL.Query()
	if claims, ok := middleware.ClaimsFrom(c); ok && claims.Role != models.RoleSuperAdmin && claims.Institution != "" {
		params.Set("institution", claims.Institution)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.collection(Results).filter(params)

	stats := models.ResultStats{TotalResults: len(docs), GradeDistribution: map[string]int{}}
	var sum float64
	passed := 0
	for _, d := range docs {
		switch d["status"] {
		case string(models.ResultPublished):
			stats.Published++
		case string(models.ResultDraft):
			stats.Draft++
		}
		pct := number(d["percentage"])
		sum += pct
		if pct >= passMark {
			passed++
		}
		if g, _ := d["grade"].(string); g != "" {
			stats.GradeDistribution[g]++
		}
	}
	if len(docs) > 0 {
		stats.AveragePercentage = round2(sum / float64(len(docs)))
		stats.PassRate = round2(float64(passed) * 100 / float64(len(docs)))
	}
	respond(c, stats)
}

func (s *Server) settingsByCategory(c *gin.Context) {
	s.mu.Lock()
	grouped := map[string][]Doc{}
	for _, d := range s.collection(Settings).all() {
		category, _ := d["category"].(string)
		if category == "" {
			category = "general"
		}
		grouped[category] = append(grouped[category], s.populate(d))
	}
	s.mu.Unlock()
	respond(c, grouped)
}

// updateSetting addresses settings by key, falling back to the id.
func (s *Server) updateSetting(c *gin.Context) {
	var body struct {
		Value interface{} `json:"value"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	key := c.Param("id")
	s.mu.Lock()
	col := s.collection(Settings)
	doc, found := col.find("key", key)
	if !found {
		doc, found = col.get(key)
	}
	if !found {
		s.mu.Unlock()
		notFound(c, "Setting")
		return
	}
	if editable, _ := doc["isEditable"].(bool); !editable {
		s.mu.Unlock()
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "This setting cannot be modified"})
		return
	}
	doc["value"] = body.Value
	out := s.populate(doc)
	s.mu.Unlock()
	respond(c, out, "Setting updated successfully")
}

func (s *Server) promote(c *gin.Context) {
	var req dto.PromotionPayload
	if err := c.ShouldBindJSON(&req); err != nil || len(req.StudentIDs) == 0 {
		badRequest(c, "Please select at least one student")
		return
	}
	if req.OperationType != models.OperationPassout && req.To == nil {
		badRequest(c, "Destination is required")
		return
	}
	claims, _ := middleware.ClaimsFrom(c)

	s.mu.Lock()
	users := s.collection(Users)
	promotions := s.collection(Promotions)
	summary := dto.PromotionSummary{}
	now := s.now().UTC()
	for _, id := range req.StudentIDs {
		student, found := users.get(id)
		if !found || student["role"] != string(models.RoleStudent) {
			summary.Failed++
			continue
		}
		record := Doc{
			"operationType": string(req.OperationType),
			"student":       id,
			"institution":   student["institution"],
			"from":          placementDoc(req.From),
			"performedBy":   claims.UserID,
			"operationDate": now.Format(time.RFC3339),
		}
		if req.Remarks != "" {
			record["remarks"] = req.Remarks
		}
		if req.OperationType == models.OperationPassout {
			student["isActive"] = false
		} else {
			to := placementDoc(*req.To)
			record["to"] = to
			for k, v := range to {
				student[k] = v
			}
		}
		stored := promotions.insert(record)
		var promotion models.Promotion
		if err := decodeDoc(s.populate(stored), &promotion); err == nil {
			summary.Records = append(summary.Records, promotion)
		}
		summary.Processed++
	}
	s.mu.Unlock()

	status := http.StatusCreated
	if summary.Processed == 0 {
		status = http.StatusBadRequest
	}
	response.JSON(c, status, summary, nil, fmt.Sprintf("%d student(s) processed, %d failed", summary.Processed, summary.Failed))
}

func placementDoc(p dto.PlacementPayload) Doc {
	out := Doc{}
	for k, v := range map[string]string{
		"institution":  p.Institution,
		"class":        p.Class,
		"section":      p.Section,
		"group":        p.Group,
		"academicYear": p.AcademicYear,
	} {
		if strings.TrimSpace(v) != "" {
			out[k] = v
		}
	}
	return out
}

func respond(c *gin.Context, data interface{}, message ...string) {
	response.JSON(c, http.StatusOK, data, nil, message...)
}
