package eventlog

import "github.com/example/contentapi/internal/domain"

// Constructors for the event payloads mutation handlers record. Each fixes
// the parameter contract of its raw type in one place.

func CreateThreadEvent(actorID, objectID, threadID int64, instance domain.Instance) Event {
	return Event{
		Type:       domain.EventTypeCreateThread,
		ActorID:    actorID,
		ObjectID:   threadID,
		Instance:   instance,
		UuidParams: map[string]int64{"on": objectID},
	}
}

func CreateCommentEvent(actorID, threadID, commentID int64, instance domain.Instance) Event {
	return Event{
		Type:       domain.EventTypeCreateComment,
		ActorID:    actorID,
		ObjectID:   commentID,
		Instance:   instance,
		UuidParams: map[string]int64{"discussion": threadID},
	}
}

func SetThreadStateEvent(actorID, threadID int64, archived bool, instance domain.Instance) Event {
	eventType := domain.EventTypeRestoreThread
	if archived {
		eventType = domain.EventTypeArchiveThread
	}
	return Event{
		Type:     eventType,
		ActorID:  actorID,
		ObjectID: threadID,
		Instance: instance,
	}
}

func CreateEntityEvent(actorID, entityID int64, instance domain.Instance) Event {
	return Event{
		Type:     domain.EventTypeCreateEntity,
		ActorID:  actorID,
		ObjectID: entityID,
		Instance: instance,
	}
}

func SetLicenseEvent(actorID, entityID int64, instance domain.Instance) Event {
	return Event{
		Type:     domain.EventTypeSetLicense,
		ActorID:  actorID,
		ObjectID: entityID,
		Instance: instance,
	}
}

func CreateEntityLinkEvent(actorID, parentID, childID int64, instance domain.Instance) Event {
	return Event{
		Type:       domain.EventTypeCreateEntityLink,
		ActorID:    actorID,
		ObjectID:   childID,
		Instance:   instance,
		UuidParams: map[string]int64{"parent": parentID},
	}
}

func RemoveEntityLinkEvent(actorID, parentID, childID int64, instance domain.Instance) Event {
	return Event{
		Type:       domain.EventTypeRemoveEntityLink,
		ActorID:    actorID,
		ObjectID:   childID,
		Instance:   instance,
		UuidParams: map[string]int64{"parent": parentID},
	}
}

func CreateEntityRevisionEvent(actorID, entityID, revisionID int64, instance domain.Instance) Event {
	return Event{
		Type:       domain.EventTypeCreateEntityRevision,
		ActorID:    actorID,
		ObjectID:   revisionID,
		Instance:   instance,
		UuidParams: map[string]int64{"repository": entityID},
	}
}

func CheckoutRevisionEvent(actorID, entityID, revisionID int64, reason string, instance domain.Instance) Event {
	return Event{
		Type:         domain.EventTypeCheckoutRevision,
		ActorID:      actorID,
		ObjectID:     entityID,
		Instance:     instance,
		StringParams: map[string]string{"reason": reason},
		UuidParams:   map[string]int64{"repository": entityID, "revision": revisionID},
	}
}

func RejectRevisionEvent(actorID, entityID, revisionID int64, reason string, instance domain.Instance) Event {
	return Event{
		Type:         domain.EventTypeRejectRevision,
		ActorID:      actorID,
		ObjectID:     entityID,
		Instance:     instance,
		StringParams: map[string]string{"reason": reason},
		UuidParams:   map[string]int64{"repository": entityID, "revision": revisionID},
	}
}

func CreateTaxonomyTermEvent(actorID, termID int64, instance domain.Instance) Event {
	return Event{
		Type:     domain.EventTypeCreateTaxonomyTerm,
		ActorID:  actorID,
		ObjectID: termID,
		Instance: instance,
	}
}

func SetTaxonomyTermEvent(actorID, termID int64, instance domain.Instance) Event {
	return Event{
		Type:     domain.EventTypeSetTaxonomyTerm,
		ActorID:  actorID,
		ObjectID: termID,
		Instance: instance,
	}
}

func CreateTaxonomyLinkEvent(actorID, termID, entityID int64, instance domain.Instance) Event {
	return Event{
		Type:       domain.EventTypeCreateTaxonomyLink,
		ActorID:    actorID,
		ObjectID:   entityID,
		Instance:   instance,
		UuidParams: map[string]int64{"object": termID},
	}
}

func RemoveTaxonomyLinkEvent(actorID, termID, entityID int64, instance domain.Instance) Event {
	return Event{
		Type:       domain.EventTypeRemoveTaxonomyLink,
		ActorID:    actorID,
		ObjectID:   entityID,
		Instance:   instance,
		UuidParams: map[string]int64{"object": termID},
	}
}

func SetTaxonomyParentEvent(actorID, termID int64, previousParentID, parentID *int64, instance domain.Instance) Event {
	uuidParams := map[string]int64{}
	if previousParentID != nil {
		uuidParams["from"] = *previousParentID
	}
	if parentID != nil {
		uuidParams["to"] = *parentID
	}
	return Event{
		Type:       domain.EventTypeSetTaxonomyParent,
		ActorID:    actorID,
		ObjectID:   termID,
		Instance:   instance,
		UuidParams: uuidParams,
	}
}

func SetUuidStateEvent(actorID, objectID int64, trashed bool, instance domain.Instance) Event {
	eventType := domain.EventTypeRestoreUuid
	if trashed {
		eventType = domain.EventTypeTrashUuid
	}
	return Event{
		Type:     eventType,
		ActorID:  actorID,
		ObjectID: objectID,
		Instance: instance,
	}
}
