package messages

import "github.com/example/contentapi/internal/domain/operr"

// MaxPageSize caps every paginated query.
const MaxPageSize = 10_000

// Pagination is shared by all paged queries: a window size plus an optional
// exclusive cursor (the id of the last row of the previous page).
type Pagination struct {
	First int    `json:"first"`
	After *int64 `json:"after"`
}

func (p Pagination) Validate() error {
	if p.First <= 0 {
		return operr.BadRequest("first must be a positive integer")
	}
	if p.First > MaxPageSize {
		return operr.BadRequestf("first must not exceed %d", MaxPageSize)
	}
	return nil
}

// Query payloads.

type UuidQueryPayload struct {
	ID int64 `json:"id"`
}

type EventsQueryPayload struct {
	Pagination
	ActorID  *int64  `json:"actorId"`
	ObjectID *int64  `json:"objectId"`
	Instance *string `json:"instance"`
}

type EventQueryPayload struct {
	ID int64 `json:"id"`
}

type EntitiesQueryPayload struct {
	Pagination
	Instance *string `json:"instance"`
}

type EntitiesMetadataQueryPayload struct {
	Pagination
	Instance      *string `json:"instance"`
	ModifiedAfter *string `json:"modifiedAfter"`
}

type UserActivityByTypeQueryPayload struct {
	UserID int64 `json:"userId"`
}

type SubjectsQueryPayload struct {
	Instance *string `json:"instance"`
}

type UnrevisedEntitiesQueryPayload struct {
	Instance *string `json:"instance"`
}

// Mutation payloads.

type ThreadCreateThreadPayload struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	ObjectID  int64  `json:"objectId"`
	UserID    int64  `json:"userId"`
	Subscribe bool   `json:"subscribe"`
	SendEmail bool   `json:"sendEmail"`
}

type ThreadCreateCommentPayload struct {
	ThreadID  int64  `json:"threadId"`
	Content   string `json:"content"`
	UserID    int64  `json:"userId"`
	Subscribe bool   `json:"subscribe"`
	SendEmail bool   `json:"sendEmail"`
}

type ThreadSetArchivedPayload struct {
	IDs      []int64 `json:"ids"`
	UserID   int64   `json:"userId"`
	Archived bool    `json:"archived"`
}

type UuidSetStatePayload struct {
	IDs     []int64 `json:"ids"`
	UserID  int64   `json:"userId"`
	Trashed bool    `json:"trashed"`
}

type EntityCreatePayload struct {
	EntityType     string            `json:"entityType"`
	UserID         int64             `json:"userId"`
	LicenseID      int64             `json:"licenseId"`
	ParentID       *int64            `json:"parentId"`
	TaxonomyTermID *int64            `json:"taxonomyTermId"`
	Fields         map[string]string `json:"fields"`
}

type EntitySetLicensePayload struct {
	EntityID  int64 `json:"entityId"`
	LicenseID int64 `json:"licenseId"`
	UserID    int64 `json:"userId"`
}

// EntityLinkPayload addresses one parent/child link; create and delete share
// the shape.
type EntityLinkPayload struct {
	ParentID int64 `json:"parentId"`
	ChildID  int64 `json:"childId"`
	UserID   int64 `json:"userId"`
}

type EntityAddRevisionPayload struct {
	EntityID             int64             `json:"entityId"`
	UserID               int64             `json:"userId"`
	Changes              string            `json:"changes"`
	Fields               map[string]string `json:"fields"`
	SubscribeThis        bool              `json:"subscribeThis"`
	SubscribeThisByEmail bool              `json:"subscribeThisByEmail"`
}

type RevisionCheckoutPayload struct {
	RevisionID int64  `json:"revisionId"`
	UserID     int64  `json:"userId"`
	Reason     string `json:"reason"`
}

type RevisionRejectPayload struct {
	RevisionID int64  `json:"revisionId"`
	UserID     int64  `json:"userId"`
	Reason     string `json:"reason"`
}

type SubscriptionSetPayload struct {
	IDs       []int64 `json:"ids"`
	UserID    int64   `json:"userId"`
	Subscribe bool    `json:"subscribe"`
	SendEmail bool    `json:"sendEmail"`
}

type TaxonomyTermCreatePayload struct {
	ParentID    int64   `json:"parentId"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	UserID      int64   `json:"userId"`
}

type TaxonomyTermMovePayload struct {
	ChildrenIDs []int64 `json:"childrenIds"`
	Destination int64   `json:"destination"`
	UserID      int64   `json:"userId"`
}

type TaxonomyTermSetNameAndDescriptionPayload struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	UserID      int64   `json:"userId"`
}

type TaxonomySortPayload struct {
	TaxonomyTermID int64   `json:"taxonomyTermId"`
	ChildrenIDs    []int64 `json:"childrenIds"`
	UserID         int64   `json:"userId"`
}

type TaxonomyCreateEntityLinksPayload struct {
	EntityIDs      []int64 `json:"entityIds"`
	TaxonomyTermID int64   `json:"taxonomyTermId"`
	UserID         int64   `json:"userId"`
}

type TaxonomyDeleteEntityLinksPayload struct {
	EntityIDs      []int64 `json:"entityIds"`
	TaxonomyTermID int64   `json:"taxonomyTermId"`
	UserID         int64   `json:"userId"`
}

type UserSetDescriptionPayload struct {
	UserID      int64  `json:"userId"`
	Description string `json:"description"`
}

type UserSetEmailPayload struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
}

type UserAddRolePayload struct {
	Username string `json:"username"`
	RoleName string `json:"roleName"`
}

type UserRemoveRolePayload struct {
	Username string `json:"username"`
	RoleName string `json:"roleName"`
}
