package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefDecodesBothShapes(t *testing.T) {
	var result Result
	payload := `{
		"_id": "r1",
		"student": {"_id": "s1", "firstName": "Ayesha", "lastName": "Khan"},
		"institution": "i1",
		"class": {"_id": "c1", "name": "Grade 9"},
		"section": null,
		"marks": {"obtained": 45, "total": 50}
	}`
	require.NoError(t, json.Unmarshal([]byte(payload), &result))

	assert.Equal(t, "s1", result.Student.ID())
	assert.Equal(t, "Ayesha Khan", result.Student.Label())
	assert.Equal(t, "i1", result.Institution.ID())
	assert.Equal(t, "Grade 9", result.Class.Label())
	assert.True(t, result.Section.IsZero())
	assert.True(t, result.Group.IsZero())
}

func TestRefMarshalsAsBareID(t *testing.T) {
	out, err := json.Marshal(struct {
		Institution Ref `json:"institution"`
		Section     Ref `json:"section"`
	}{Institution: Ref{id: "i1", Name: "Model School"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"institution":"i1","section":null}`, string(out))
}

func TestRefRejectsNumbers(t *testing.T) {
	var r Ref
	assert.Error(t, json.Unmarshal([]byte(`42`), &r))
}

func TestResolveID(t *testing.T) {
	assert.Equal(t, "a", ResolveID("  a "))
	assert.Equal(t, "a2", ResolveID(`{"_id":"a2","name":"Grade 9"}`))
	assert.Equal(t, "b", ResolveID(map[string]interface{}{"_id": "b", "name": "x"}))
	assert.Equal(t, "c", ResolveID(map[string]interface{}{"id": "c"}))
	assert.Equal(t, "d", ResolveID(NewRef("d")))
	ref := NewRef("e")
	assert.Equal(t, "e", ResolveID(&ref))
	assert.Equal(t, "f", ResolveID(json.RawMessage(`{"_id":"f"}`)))
	assert.Equal(t, "", ResolveID(nil))
	assert.Equal(t, "", ResolveID(12))
}

func TestAdmissionDisplayName(t *testing.T) {
	a := Admission{ID: "a1", PersonalInfo: PersonalInfo{FirstName: "Ali", LastName: "Raza"}}
	assert.Equal(t, "Ali Raza", a.DisplayName())
	assert.Equal(t, "a1", a.StudentID())

	a.Student = NewRef("s9")
	assert.Equal(t, "s9", a.StudentID())
}
