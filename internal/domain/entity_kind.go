package domain

import "fmt"

// EntityKind is the concrete type of a repository entity, stored in
// entity.type. The set is closed.
type EntityKind string

const (
	EntityKindApplet          EntityKind = "applet"
	EntityKindArticle         EntityKind = "article"
	EntityKindCourse          EntityKind = "course"
	EntityKindCoursePage      EntityKind = "course-page"
	EntityKindEvent           EntityKind = "event"
	EntityKindExercise        EntityKind = "text-exercise"
	EntityKindExerciseGroup   EntityKind = "text-exercise-group"
	EntityKindGroupedExercise EntityKind = "grouped-text-exercise"
	EntityKindSolution        EntityKind = "text-solution"
	EntityKindVideo           EntityKind = "video"
)

var EntityKinds = []EntityKind{
	EntityKindApplet,
	EntityKindArticle,
	EntityKindCourse,
	EntityKindCoursePage,
	EntityKindEvent,
	EntityKindExercise,
	EntityKindExerciseGroup,
	EntityKindGroupedExercise,
	EntityKindSolution,
	EntityKindVideo,
}

func ParseEntityKind(raw string) (EntityKind, error) {
	k := EntityKind(raw)
	for _, known := range EntityKinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unsupported entity type %q", raw)
}

// Typename is the display name embedded in responses as __typename.
func (k EntityKind) Typename() string {
	switch k {
	case EntityKindApplet:
		return "Applet"
	case EntityKindArticle:
		return "Article"
	case EntityKindCourse:
		return "Course"
	case EntityKindCoursePage:
		return "CoursePage"
	case EntityKindEvent:
		return "Event"
	case EntityKindExercise:
		return "Exercise"
	case EntityKindExerciseGroup:
		return "ExerciseGroup"
	case EntityKindGroupedExercise:
		return "GroupedExercise"
	case EntityKindSolution:
		return "Solution"
	case EntityKindVideo:
		return "Video"
	}
	return ""
}

// RevisionTypename is the display name for a revision of this kind.
func (k EntityKind) RevisionTypename() string {
	return k.Typename() + "Revision"
}

// HasParent reports whether entities of this kind hang below exactly one
// parent entity through entity_link.
func (k EntityKind) HasParent() bool {
	switch k {
	case EntityKindCoursePage, EntityKindGroupedExercise, EntityKindSolution:
		return true
	default:
		return false
	}
}
