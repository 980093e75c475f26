package fakeapi

import (
	"encoding/json"
	"math"
)

// passMark is the lowest passing percentage.
const passMark = 40

var gradeBands = []struct {
	min   float64
	grade string
	gpa   float64
}{
	{90, "A+", 4.0},
	{80, "A", 3.7},
	{70, "B", 3.0},
	{60, "C", 2.5},
	{50, "D", 2.0},
	{passMark, "E", 1.0},
	{0, "F", 0},
}

// computeGrade derives percentage, grade and gpa from marks the way the
// backend's result model does on save.
func computeGrade(doc Doc) {
	marks, _ := doc["marks"].(map[string]interface{})
	total := number(marks["total"])
	if total <= 0 {
		return
	}
	pct := round2(number(marks["obtained"]) * 100 / total)
	doc["percentage"] = pct
	for _, band := range gradeBands {
		if pct >= band.min {
			doc["grade"] = band.grade
			doc["gpa"] = band.gpa
			return
		}
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func decodeDoc(doc Doc, out interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
