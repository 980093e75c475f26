package fakeapi

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/shehrozeikram/SGCEducation-sub002/internal/models"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/query"
)

// searchFields are matched case-insensitively by the search parameter.
var searchFields = []string{"name", "title", "subject", "code", "email", "key", "examName"}

type collection struct {
	name  string
	docs  map[string]Doc
	order []string
}

func newCollection(name string) *collection {
	return &collection{name: name, docs: make(map[string]Doc)}
}

func (c *collection) insert(doc Doc) Doc {
	id, _ := doc["_id"].(string)
	if id == "" {
		id = uuid.NewString()
		doc["_id"] = id
	}
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = doc
	return doc
}

func (c *collection) get(id string) (Doc, bool) {
	doc, ok := c.docs[id]
	return doc, ok
}

func (c *collection) find(field, value string) (Doc, bool) {
	for _, id := range c.order {
		if v, ok := c.docs[id][field].(string); ok && strings.EqualFold(v, value) {
			return c.docs[id], true
		}
	}
	return nil, false
}

func (c *collection) remove(id string) bool {
	if _, ok := c.docs[id]; !ok {
		return false
	}
	delete(c.docs, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// all returns the documents in insertion order.
func (c *collection) all() []Doc {
	out := make([]Doc, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.docs[id])
	}
	return out
}

// filter applies the list query: exact matches on every field parameter and
// a substring match for search.
func (c *collection) filter(params url.Values) []Doc {
	search := strings.ToLower(strings.TrimSpace(params.Get(query.KeySearch)))
	var out []Doc
	for _, doc := range c.all() {
		if search != "" && !matchesSearch(doc, search) {
			continue
		}
		if !matchesFields(doc, params) {
			continue
		}
		out = append(out, doc)
	}
	return out
}

func matchesSearch(doc Doc, needle string) bool {
	for _, field := range searchFields {
		if v, ok := doc[field].(string); ok && strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

func matchesFields(doc Doc, params url.Values) bool {
	for key, values := range params {
		switch key {
		case query.KeySearch, query.ParamPage, query.ParamLimit:
			continue
		}
		want := values[0]
		if want == "" {
			continue
		}
		if !fieldEquals(lookup(doc, key), want) {
			return false
		}
	}
	return true
}

// lookup resolves dotted paths such as targetAudience.type.
func lookup(doc Doc, path string) interface{} {
	var cur interface{} = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

func fieldEquals(value interface{}, want string) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v == want
	case bool:
		return strconv.FormatBool(v) == want
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64) == want
	case map[string]interface{}:
		id, _ := v["_id"].(string)
		return id == want
	default:
		return fmt.Sprint(v) == want
	}
}

// paginate slices docs by the page and limit parameters. A missing limit
// returns everything.
func paginate(docs []Doc, params url.Values) ([]Doc, *models.Pagination) {
	total := len(docs)
	page, _ := strconv.Atoi(params.Get(query.ParamPage))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(params.Get(query.ParamLimit))
	if limit < 1 {
		limit = total
		if limit == 0 {
			limit = 1
		}
	}
	pages := int(math.Ceil(float64(total) / float64(limit)))
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return docs[start:end], &models.Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// cloneDoc deep-copies doc through JSON so stored values never alias
// handler input or output.
func cloneDoc(doc Doc) Doc {
	raw, err := json.Marshal(doc)
	if err != nil {
		return Doc{}
	}
	out := Doc{}
	_ = json.Unmarshal(raw, &out)
	return out
}

func number(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	}
	return 0
}
