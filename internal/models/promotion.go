package models

import "time"

// Placement is where a student sits in the institution hierarchy.
type Placement struct {
	Institution  Ref    `json:"institution"`
	Class        Ref    `json:"class"`
	Section      Ref    `json:"section"`
	Group        Ref    `json:"group"`
	AcademicYear string `json:"academicYear,omitempty"`
}

// Promotion is an append-only audit entry of a promote, transfer or passout.
type Promotion struct {
	ID            string             `json:"_id"`
	OperationType PromotionOperation `json:"operationType"`
	Student       Ref                `json:"student"`
	From          Placement          `json:"from"`
	To            *Placement         `json:"to,omitempty"`
	Remarks       string             `json:"remarks,omitempty"`
	PerformedBy   Ref                `json:"performedBy"`
	OperationDate *time.Time         `json:"operationDate,omitempty"`
}
