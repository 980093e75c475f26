package main

import (
	"context"
	"fmt"

	"github.com/shehrozeikram/SGCEducation-sub002/internal/fakeapi"
)

const demoPassword = "secret1"

func (cli *commandLine) fakeBackend(ctx context.Context, args []string) error {
	fs := cli.flags("fake-backend")
	addr := fs.String("addr", ":5000", "Listen address.")
	secret := fs.String("secret", "", "Token signing secret.")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	api := fakeapi.New(fakeapi.Options{
		Prefix: cli.cfg.API.Prefix,
		Secret: *secret,
		Logger: cli.logger.Named("fakeapi"),
	})
	seedDemo(api)
	fmt.Fprintf(cli.out, "fake backend on %s%s, sign in as root@sgc.test or admin@sgc.test with password %s\n", *addr, api.Prefix(), demoPassword)
	return serve(ctx, cli.logger, *addr, api.Handler())
}

// seedDemo loads a small two-institution school.
func seedDemo(api *fakeapi.Server) {
	api.Seed(fakeapi.Institutions,
		fakeapi.Doc{"_id": "i1", "name": "City School", "code": "CITY", "type": "school", "address": fakeapi.Doc{"city": "Lahore"}, "isActive": true},
		fakeapi.Doc{"_id": "i2", "name": "North College", "code": "NORTH", "type": "college", "address": fakeapi.Doc{"city": "Islamabad"}, "isActive": true},
	)
	api.Seed(fakeapi.Departments,
		fakeapi.Doc{"_id": "d1", "name": "Sciences", "code": "SCI", "institution": "i1", "isActive": true},
		fakeapi.Doc{"_id": "d2", "name": "Humanities", "code": "HUM", "institution": "i2", "isActive": true},
	)
	api.Seed(fakeapi.Groups,
		fakeapi.Doc{"_id": "g1", "name": "Pre-Medical", "code": "PM", "type": "science", "institution": "i2", "isActive": true},
	)
	api.Seed(fakeapi.Classes,
		fakeapi.Doc{"_id": "c1", "name": "Grade 9", "code": "G9", "institution": "i1", "department": "d1", "academicYear": "2025-2026", "isActive": true},
		fakeapi.Doc{"_id": "c2", "name": "Grade 10", "code": "G10", "institution": "i1", "department": "d1", "academicYear": "2025-2026", "isActive": true},
		fakeapi.Doc{"_id": "c3", "name": "First Year", "code": "FY", "institution": "i2", "group": "g1", "academicYear": "2025-2026", "isActive": true},
	)
	api.Seed(fakeapi.Sections,
		fakeapi.Doc{"_id": "s1", "name": "A", "code": "A", "institution": "i1", "class": "c1", "isActive": true},
		fakeapi.Doc{"_id": "s2", "name": "B", "code": "B", "institution": "i1", "class": "c1", "isActive": true},
	)
	api.Seed(fakeapi.Users,
		fakeapi.Doc{"_id": "u-root", "name": "Root", "email": "root@sgc.test", "password": demoPassword, "role": "super_admin", "isActive": true},
		fakeapi.Doc{"_id": "u-admin", "name": "Ada", "email": "admin@sgc.test", "password": demoPassword, "role": "admin", "institution": "i1", "isActive": true},
		fakeapi.Doc{"_id": "u-teacher", "name": "Tariq", "email": "teacher@sgc.test", "password": demoPassword, "role": "teacher", "institution": "i1", "department": "d1", "isActive": true},
		fakeapi.Doc{"_id": "st1", "name": "Sam", "email": "sam@sgc.test", "role": "student", "institution": "i1", "class": "c1", "section": "s1", "isActive": true},
		fakeapi.Doc{"_id": "st2", "name": "Sue", "email": "sue@sgc.test", "role": "student", "institution": "i1", "class": "c1", "section": "s2", "isActive": true},
		fakeapi.Doc{"_id": "st3", "name": "Noor", "email": "noor@sgc.test", "role": "student", "institution": "i2", "class": "c3", "group": "g1", "isActive": true},
	)
	api.Seed(fakeapi.Admissions,
		fakeapi.Doc{"_id": "a1", "applicationNumber": "APP-001", "rollNumber": "9A-01", "student": "st1", "institution": "i1", "class": "c1", "section": "s1", "academicYear": "2025-2026", "status": "enrolled"},
		fakeapi.Doc{"_id": "a2", "applicationNumber": "APP-002", "rollNumber": "9B-01", "student": "st2", "institution": "i1", "class": "c1", "section": "s2", "academicYear": "2025-2026", "status": "enrolled"},
	)
	api.Seed(fakeapi.Results,
		fakeapi.Doc{"_id": "r1", "student": "st1", "institution": "i1", "class": "c1", "section": "s1", "academicYear": "2025-2026", "examType": "midterm", "examName": "Midterm", "subject": "Physics", "marks": fakeapi.Doc{"obtained": 45.0, "total": 50.0}, "percentage": 90.0, "grade": "A+", "status": "published"},
		fakeapi.Doc{"_id": "r2", "student": "st2", "institution": "i1", "class": "c1", "section": "s2", "academicYear": "2025-2026", "examType": "midterm", "examName": "Midterm", "subject": "Physics", "marks": fakeapi.Doc{"obtained": 30.0, "total": 50.0}, "percentage": 60.0, "grade": "B", "status": "draft"},
	)
	api.Seed(fakeapi.Messages,
		fakeapi.Doc{"_id": "m1", "subject": "Welcome back", "content": "Classes resume on Monday.", "type": "announcement", "targetAudience": fakeapi.Doc{"type": "all"}, "status": "draft", "institution": "i1"},
	)
	api.Seed(fakeapi.Templates,
		fakeapi.Doc{"_id": "t1", "name": "Fee reminder", "subject": "Fee due", "content": "Dear {{name}}, your fee is due.", "type": "email"},
	)
	api.Seed(fakeapi.Calendar,
		fakeapi.Doc{"_id": "e1", "title": "Midterm exams", "type": "exam", "startDate": "2026-03-02", "endDate": "2026-03-06", "allDay": true, "institution": "i1"},
	)
	api.Seed(fakeapi.Reports,
		fakeapi.Doc{"_id": "rep1", "name": "Enrolment", "type": "user", "format": "json", "institution": "i1"},
	)
	api.Seed(fakeapi.Settings,
		fakeapi.Doc{"_id": "set1", "key": "school.name", "value": "SGC Education", "type": "string", "category": "general", "isEditable": true, "isPublic": true},
		fakeapi.Doc{"_id": "set2", "key": "results.passMark", "value": 40.0, "type": "number", "category": "academic", "isEditable": true},
		fakeapi.Doc{"_id": "set3", "key": "system.version", "value": "1.0.0", "type": "string", "category": "system", "isEditable": false},
	)
}
