package resolver

// Payload is one resolved identity, serialized to its kind-specific shape.
// The embedded __typename selects the concrete variant for consumers.
type Payload interface {
	Typename() string
}

// BaseUuid carries the fields every resolved identity exposes.
type BaseUuid struct {
	TypenameField string `json:"__typename"`
	ID            int64  `json:"id"`
	Trashed       bool   `json:"trashed"`
	Alias         string `json:"alias"`
}

func (b BaseUuid) Typename() string { return b.TypenameField }

type AttachmentPayload struct {
	BaseUuid
	Filename string `json:"filename"`
}

type BlogPostPayload struct {
	BaseUuid
	AuthorID int64  `json:"authorId"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Date     string `json:"date"`
}

type CommentPayload struct {
	BaseUuid
	AuthorID int64   `json:"authorId"`
	ParentID int64   `json:"parentId"`
	Title    *string `json:"title"`
	Content  string  `json:"content"`
	Archived bool    `json:"archived"`
	Date     string  `json:"date"`
	// ChildrenIDs lists direct replies, oldest first.
	ChildrenIDs []int64 `json:"childrenIds"`
}

type EntityPayload struct {
	BaseUuid
	Instance          string `json:"instance"`
	Date              string `json:"date"`
	LicenseID         int64  `json:"licenseId"`
	CurrentRevisionID *int64 `json:"currentRevisionId"`
	// RevisionIDs is exposed newest first.
	RevisionIDs      []int64 `json:"revisionIds"`
	TaxonomyTermIDs  []int64 `json:"taxonomyTermIds"`
	CanonicalSubject *string `json:"canonicalSubject"`

	// Kind-specific extras; nil/absent where the kind carries none.
	PageIDs     []int64 `json:"pageIds,omitempty"`     // course
	ParentID    *int64  `json:"parentId,omitempty"`    // course page, grouped exercise, solution
	ExerciseIDs []int64 `json:"exerciseIds,omitempty"` // exercise group
	SolutionID  *int64  `json:"solutionId,omitempty"`  // exercise
}

type EntityRevisionPayload struct {
	BaseUuid
	AuthorID     int64  `json:"authorId"`
	RepositoryID int64  `json:"repositoryId"`
	Date         string `json:"date"`

	// Projected concrete fields; empty string when the underlying field map
	// has no such key.
	Title           string `json:"title,omitempty"`
	Content         string `json:"content"`
	Changes         string `json:"changes,omitempty"`
	MetaTitle       string `json:"metaTitle,omitempty"`
	MetaDescription string `json:"metaDescription,omitempty"`
	URL             string `json:"url,omitempty"`

	// Fields retains the raw free-form map for generic revision kinds.
	Fields map[string]string `json:"fields,omitempty"`
}

type PagePayload struct {
	BaseUuid
	Instance          string  `json:"instance"`
	LicenseID         int64   `json:"licenseId"`
	CurrentRevisionID *int64  `json:"currentRevisionId"`
	RevisionIDs       []int64 `json:"revisionIds"`
}

type PageRevisionPayload struct {
	BaseUuid
	AuthorID     int64  `json:"authorId"`
	RepositoryID int64  `json:"repositoryId"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	Date         string `json:"date"`
}

type TaxonomyTermPayload struct {
	BaseUuid
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Weight      int     `json:"weight"`
	ParentID    *int64  `json:"parentId"`
	// ChildrenIDs lists tagged entities (by stored position) followed by
	// child terms (by weight).
	ChildrenIDs []int64 `json:"childrenIds"`
}

type UserPayload struct {
	BaseUuid
	Username    string   `json:"username"`
	Description *string  `json:"description"`
	Roles       []string `json:"roles"`
	Date        string   `json:"date"`
	LastLogin   *string  `json:"lastLogin"`
}
