package domain

import "testing"

func TestEntityKindTypenames(t *testing.T) {
	for _, k := range EntityKinds {
		if k.Typename() == "" {
			t.Errorf("kind %q has no typename", k)
		}
		if k.RevisionTypename() != k.Typename()+"Revision" {
			t.Errorf("kind %q revision typename = %q", k, k.RevisionTypename())
		}
	}
	if EntityKindCoursePage.Typename() != "CoursePage" {
		t.Errorf("CoursePage typename = %q", EntityKindCoursePage.Typename())
	}
}

func TestEntityKindHasParent(t *testing.T) {
	withParent := map[EntityKind]bool{
		EntityKindCoursePage:      true,
		EntityKindGroupedExercise: true,
		EntityKindSolution:        true,
	}
	for _, k := range EntityKinds {
		if got := k.HasParent(); got != withParent[k] {
			t.Errorf("HasParent(%q) = %v", k, got)
		}
	}
}

func TestParseEntityKindRejectsUnknown(t *testing.T) {
	if _, err := ParseEntityKind("input-expression-equality-exercise"); err == nil {
		t.Fatal("unknown kind accepted")
	}
}
