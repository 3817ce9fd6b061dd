package drive

import (
	"slices"
	"strings"
	"testing"
)

func strptr(s string) *string { return &s }
func boolptr(b bool) *bool    { return &b }

func TestPlanUpdateSparseBody(t *testing.T) {
	current := &FileInfo{Name: "old.txt", Description: "old desc", Starred: false}

	plan := PlanUpdate(current, &UpdateOptions{
		Name:    strptr("new.txt"),
		Starred: boolptr(true),
	})

	if plan.Body == nil {
		t.Fatal("expected a body")
	}
	if plan.Body.Name != "new.txt" {
		t.Errorf("Body.Name = %q, want new.txt", plan.Body.Name)
	}
	if plan.Body.Description != "" {
		t.Errorf("unsupplied description leaked into body: %q", plan.Body.Description)
	}
	if slices.Contains(plan.Body.ForceSendFields, "Description") {
		t.Error("unsupplied description must not be force-sent")
	}
	if !slices.Contains(plan.Body.ForceSendFields, "Starred") {
		t.Error("supplied boolean must be force-sent")
	}

	wantChanges := []string{"Name: 'old.txt' → 'new.txt'", "File starred"}
	if !slices.Equal(plan.Changes, wantChanges) {
		t.Errorf("Changes = %v, want %v", plan.Changes, wantChanges)
	}
}

func TestPlanUpdateNoopAssignmentsSuppressed(t *testing.T) {
	current := &FileInfo{Name: "same.txt", Starred: true, Trashed: false}

	plan := PlanUpdate(current, &UpdateOptions{
		Name:    strptr("same.txt"),
		Starred: boolptr(true),
	})

	if plan.Body == nil {
		t.Fatal("supplied fields still enter the body even when equal")
	}
	if len(plan.Changes) != 0 {
		t.Errorf("no-op assignments reported as changes: %v", plan.Changes)
	}
}

func TestPlanUpdateDescriptionEmptyEqualsAbsent(t *testing.T) {
	current := &FileInfo{Name: "f"}

	plan := PlanUpdate(current, &UpdateOptions{Description: strptr("")})
	if len(plan.Changes) != 0 {
		t.Errorf("clearing an already-absent description reported a change: %v", plan.Changes)
	}
	if plan.Body == nil || !slices.Contains(plan.Body.ForceSendFields, "Description") {
		t.Error("empty description must still be force-sent to clear the field")
	}

	plan = PlanUpdate(&FileInfo{Name: "f", Description: "x"}, &UpdateOptions{Description: strptr("")})
	if len(plan.Changes) != 1 || !strings.Contains(plan.Changes[0], "(empty)") {
		t.Errorf("clearing a description should report (empty): %v", plan.Changes)
	}
}

func TestPlanUpdateBooleanChanges(t *testing.T) {
	current := &FileInfo{WritersCanShare: true, CopyRequiresWriterPermission: false}

	plan := PlanUpdate(current, &UpdateOptions{
		WritersCanShare:              boolptr(false),
		CopyRequiresWriterPermission: boolptr(true),
		Trashed:                      boolptr(true),
	})

	want := []string{
		"Writers cannot share the file",
		"Copying requires writer permission",
	}
	for _, w := range want {
		if !slices.Contains(plan.Changes, w) {
			t.Errorf("missing change %q in %v", w, plan.Changes)
		}
	}
	if !slices.Contains(plan.Changes, "File moved to trash") {
		t.Errorf("missing trash change in %v", plan.Changes)
	}

	for _, f := range []string{"WritersCanShare", "CopyRequiresWriterPermission", "Trashed"} {
		if !slices.Contains(plan.Body.ForceSendFields, f) {
			t.Errorf("%s missing from ForceSendFields %v", f, plan.Body.ForceSendFields)
		}
	}
}

func TestPlanUpdateChangeReportOrder(t *testing.T) {
	current := &FileInfo{
		Name:        "old.txt",
		Description: "old",
		MimeType:    "text/plain",
	}

	plan := PlanUpdate(current, &UpdateOptions{
		Name:          strptr("new.txt"),
		Description:   strptr("new"),
		MimeType:      strptr("text/csv"),
		AddParents:    "folderA",
		RemoveParents: "folderB",
		Starred:       boolptr(true),
	})

	want := []string{
		"Name: 'old.txt' → 'new.txt'",
		"Description: old → new",
		"Added to folder(s): folderA",
		"Removed from folder(s): folderB",
		"File starred",
	}
	if !slices.Equal(plan.Changes, want) {
		t.Errorf("Changes = %v, want %v", plan.Changes, want)
	}

	if plan.Body.MimeType != "text/csv" {
		t.Errorf("Body.MimeType = %q, want the supplied type", plan.Body.MimeType)
	}
	for _, c := range plan.Changes {
		if strings.Contains(c, "MIME") {
			t.Errorf("type changes must not appear in the report: %q", c)
		}
	}
}

func TestPlanUpdateProperties(t *testing.T) {
	plan := PlanUpdate(&FileInfo{}, &UpdateOptions{
		Properties: map[string]string{"dept": "eng"},
	})
	if plan.Body == nil || plan.Body.Properties["dept"] != "eng" {
		t.Errorf("properties missing from body: %+v", plan.Body)
	}
	if len(plan.Changes) != 1 {
		t.Errorf("expected one properties change, got %v", plan.Changes)
	}
}

func TestPlanUpdateIsNoop(t *testing.T) {
	plan := PlanUpdate(&FileInfo{}, &UpdateOptions{})
	if !plan.IsNoop() {
		t.Error("empty options should plan a no-op")
	}

	plan = PlanUpdate(&FileInfo{}, &UpdateOptions{})
	plan.AddParents = "folder1"
	if plan.IsNoop() {
		t.Error("parent move is not a no-op")
	}
}
