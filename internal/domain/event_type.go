package domain

import "fmt"

// EventType is the fine-grained kind of an event_log row, using the legacy
// path-style names the store has always recorded.
type EventType string

const (
	EventTypeArchiveThread        EventType = "discussion/comment/archive"
	EventTypeRestoreThread        EventType = "discussion/restore"
	EventTypeCreateComment        EventType = "discussion/comment/create"
	EventTypeCreateThread         EventType = "discussion/create"
	EventTypeCreateEntity         EventType = "entity/create"
	EventTypeSetLicense           EventType = "license/object/set"
	EventTypeCreateEntityLink     EventType = "entity/link/create"
	EventTypeRemoveEntityLink     EventType = "entity/link/remove"
	EventTypeCreateEntityRevision EventType = "entity/revision/add"
	EventTypeCheckoutRevision     EventType = "entity/revision/checkout"
	EventTypeRejectRevision       EventType = "entity/revision/reject"
	EventTypeCreateTaxonomyTerm   EventType = "taxonomy/term/create"
	EventTypeSetTaxonomyTerm      EventType = "taxonomy/term/update"
	EventTypeCreateTaxonomyLink   EventType = "taxonomy/term/associate"
	EventTypeRemoveTaxonomyLink   EventType = "taxonomy/term/dissociate"
	EventTypeSetTaxonomyParent    EventType = "taxonomy/term/parent/change"
	EventTypeTrashUuid            EventType = "uuid/trash"
	EventTypeRestoreUuid          EventType = "uuid/restore"
)

// EventTypes lists every raw kind the store records.
var EventTypes = []EventType{
	EventTypeArchiveThread,
	EventTypeRestoreThread,
	EventTypeCreateComment,
	EventTypeCreateThread,
	EventTypeCreateEntity,
	EventTypeSetLicense,
	EventTypeCreateEntityLink,
	EventTypeRemoveEntityLink,
	EventTypeCreateEntityRevision,
	EventTypeCheckoutRevision,
	EventTypeRejectRevision,
	EventTypeCreateTaxonomyTerm,
	EventTypeSetTaxonomyTerm,
	EventTypeCreateTaxonomyLink,
	EventTypeRemoveTaxonomyLink,
	EventTypeSetTaxonomyParent,
	EventTypeTrashUuid,
	EventTypeRestoreUuid,
}

func ParseEventType(raw string) (EventType, error) {
	et := EventType(raw)
	for _, known := range EventTypes {
		if et == known {
			return et, nil
		}
	}
	return "", fmt.Errorf("unknown event type %q", raw)
}

// NotificationType is the coarser user-facing classification an event is
// surfaced under in the notification feed.
type NotificationType string

const (
	NotificationTypeSetThreadState       NotificationType = "SetThreadStateNotificationEvent"
	NotificationTypeCreateComment        NotificationType = "CreateCommentNotificationEvent"
	NotificationTypeCreateThread         NotificationType = "CreateThreadNotificationEvent"
	NotificationTypeCreateEntity         NotificationType = "CreateEntityNotificationEvent"
	NotificationTypeSetLicense           NotificationType = "SetLicenseNotificationEvent"
	NotificationTypeCreateEntityLink     NotificationType = "CreateEntityLinkNotificationEvent"
	NotificationTypeRemoveEntityLink     NotificationType = "RemoveEntityLinkNotificationEvent"
	NotificationTypeCreateEntityRevision NotificationType = "CreateEntityRevisionNotificationEvent"
	NotificationTypeCheckoutRevision     NotificationType = "CheckoutRevisionNotificationEvent"
	NotificationTypeRejectRevision       NotificationType = "RejectRevisionNotificationEvent"
	NotificationTypeCreateTaxonomyTerm   NotificationType = "CreateTaxonomyTermNotificationEvent"
	NotificationTypeSetTaxonomyTerm      NotificationType = "SetTaxonomyTermNotificationEvent"
	NotificationTypeCreateTaxonomyLink   NotificationType = "CreateTaxonomyLinkNotificationEvent"
	NotificationTypeRemoveTaxonomyLink   NotificationType = "RemoveTaxonomyLinkNotificationEvent"
	NotificationTypeSetTaxonomyParent    NotificationType = "SetTaxonomyParentNotificationEvent"
	NotificationTypeSetUuidState         NotificationType = "SetUuidStateNotificationEvent"
)

// NotificationType maps a raw event kind onto its notification
// classification. The mapping is total over EventTypes; archive/restore
// thread collapse to one kind, as do trash/restore uuid.
func (et EventType) NotificationType() NotificationType {
	switch et {
	case EventTypeArchiveThread, EventTypeRestoreThread:
		return NotificationTypeSetThreadState
	case EventTypeCreateComment:
		return NotificationTypeCreateComment
	case EventTypeCreateThread:
		return NotificationTypeCreateThread
	case EventTypeCreateEntity:
		return NotificationTypeCreateEntity
	case EventTypeSetLicense:
		return NotificationTypeSetLicense
	case EventTypeCreateEntityLink:
		return NotificationTypeCreateEntityLink
	case EventTypeRemoveEntityLink:
		return NotificationTypeRemoveEntityLink
	case EventTypeCreateEntityRevision:
		return NotificationTypeCreateEntityRevision
	case EventTypeCheckoutRevision:
		return NotificationTypeCheckoutRevision
	case EventTypeRejectRevision:
		return NotificationTypeRejectRevision
	case EventTypeCreateTaxonomyTerm:
		return NotificationTypeCreateTaxonomyTerm
	case EventTypeSetTaxonomyTerm:
		return NotificationTypeSetTaxonomyTerm
	case EventTypeCreateTaxonomyLink:
		return NotificationTypeCreateTaxonomyLink
	case EventTypeRemoveTaxonomyLink:
		return NotificationTypeRemoveTaxonomyLink
	case EventTypeSetTaxonomyParent:
		return NotificationTypeSetTaxonomyParent
	case EventTypeTrashUuid, EventTypeRestoreUuid:
		return NotificationTypeSetUuidState
	}
	panic(fmt.Sprintf("event type %q has no notification mapping", string(et)))
}
