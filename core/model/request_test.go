package model

import "testing"

func TestRequestSupervisors(t *testing.T) {
	r := Request{Supervisor1: "MPR", Supervisor2: "-"}
	sups := r.Supervisors()
	if len(sups) != 1 || sups[0] != "MPR" {
		t.Fatalf("expected [MPR] got %v", sups)
	}
	r = Request{Supervisor1: " ", Supervisor2: ""}
	if got := r.Supervisors(); len(got) != 0 {
		t.Fatalf("expected no supervisors got %v", got)
	}
}

func TestRequestFields(t *testing.T) {
	r := Request{Field1: "NLP", Field2: ""}
	fields := r.Fields()
	if len(fields) != 1 || fields[0] != "NLP" {
		t.Fatalf("expected [NLP] got %v", fields)
	}
}

func TestRequestIsGroup(t *testing.T) {
	if (Request{GroupID: "  "}).IsGroup() {
		t.Fatalf("blank group id should not be a group")
	}
	if !(Request{GroupID: "CAP-1"}).IsGroup() {
		t.Fatalf("expected group")
	}
}

func TestExaminerHasExpertise(t *testing.T) {
	e := &Examiner{Code: "ABC", Expertise: []string{"NLP", "CV"}}
	if !e.HasExpertise("nlp") {
		t.Fatalf("expected case-insensitive match")
	}
	if e.HasExpertise("") {
		t.Fatalf("empty field must never match")
	}
	if e.HasExpertise("SEC") {
		t.Fatalf("unexpected match")
	}
}

func TestPanelExaminers(t *testing.T) {
	p := Panel{Members: []PanelMember{
		{Code: "SPV", Role: RoleSupervisor},
		{Code: "EX1", Role: RoleExaminer},
		{Code: "EX2", Role: RoleExaminer},
	}}
	ex := p.Examiners()
	if len(ex) != 2 || ex[0] != "EX1" || ex[1] != "EX2" {
		t.Fatalf("unexpected examiners %v", ex)
	}
	if len(p.Codes()) != 3 {
		t.Fatalf("expected 3 codes")
	}
}

func TestStatusString(t *testing.T) {
	if StatusFieldAndTime.String() != "Field and Time Match" {
		t.Fatalf("unexpected tag %q", StatusFieldAndTime.String())
	}
	if StatusTimeOnly.String() != "Time Match Only" {
		t.Fatalf("unexpected tag %q", StatusTimeOnly.String())
	}
	if StatusNotScheduled.String() != "Not Scheduled" {
		t.Fatalf("unexpected tag %q", StatusNotScheduled.String())
	}
}
