package messages

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"
)

// typed adapts a strongly typed handler to the registry's raw-payload shape.
func typed[P any](name string, handle func(ctx context.Context, tx *gorm.DB, p P) (interface{}, error)) handlerFunc {
	return func(ctx context.Context, tx *gorm.DB, raw json.RawMessage) (interface{}, error) {
		var payload P
		if err := decode(name, raw, &payload); err != nil {
			return nil, err
		}
		return handle(ctx, tx, payload)
	}
}

func registerQueries(d *Dispatcher, s *QueryService) {
	d.registerQuery("UuidQuery", typed("UuidQuery", s.Uuid))
	d.registerQuery("EventsQuery", typed("EventsQuery", s.Events))
	d.registerQuery("EventQuery", typed("EventQuery", s.Event))
	d.registerQuery("EntitiesQuery", typed("EntitiesQuery", s.Entities))
	d.registerQuery("EntitiesMetadataQuery", typed("EntitiesMetadataQuery", s.EntitiesMetadata))
	d.registerQuery("UserActivityByTypeQuery", typed("UserActivityByTypeQuery", s.UserActivityByType))
	d.registerQuery("SubjectsQuery", typed("SubjectsQuery", s.Subjects))
	d.registerQuery("UnrevisedEntitiesQuery", typed("UnrevisedEntitiesQuery", s.UnrevisedEntities))
}

func registerMutations(d *Dispatcher, s *MutationService) {
	d.registerMutation("ThreadCreateThreadMutation", typed("ThreadCreateThreadMutation", s.ThreadCreateThread))
	d.registerMutation("ThreadCreateCommentMutation", typed("ThreadCreateCommentMutation", s.ThreadCreateComment))
	d.registerMutation("ThreadSetThreadArchivedMutation", typed("ThreadSetThreadArchivedMutation", s.ThreadSetThreadArchived))
	d.registerMutation("UuidSetStateMutation", typed("UuidSetStateMutation", s.UuidSetState))
	d.registerMutation("EntityCreateMutation", typed("EntityCreateMutation", s.EntityCreate))
	d.registerMutation("EntitySetLicenseMutation", typed("EntitySetLicenseMutation", s.EntitySetLicense))
	d.registerMutation("EntityCreateLinkMutation", typed("EntityCreateLinkMutation", s.EntityCreateLink))
	d.registerMutation("EntityDeleteLinkMutation", typed("EntityDeleteLinkMutation", s.EntityDeleteLink))
	d.registerMutation("EntityAddRevisionMutation", typed("EntityAddRevisionMutation", s.EntityAddRevision))
	d.registerMutation("EntityRevisionCheckoutMutation", typed("EntityRevisionCheckoutMutation", s.EntityRevisionCheckout))
	d.registerMutation("EntityRevisionRejectMutation", typed("EntityRevisionRejectMutation", s.EntityRevisionReject))
	d.registerMutation("SubscriptionSetMutation", typed("SubscriptionSetMutation", s.SubscriptionSet))
	d.registerMutation("TaxonomyTermCreateMutation", typed("TaxonomyTermCreateMutation", s.TaxonomyTermCreate))
	d.registerMutation("TaxonomyTermMoveMutation", typed("TaxonomyTermMoveMutation", s.TaxonomyTermMove))
	d.registerMutation("TaxonomyTermSetNameAndDescriptionMutation", typed("TaxonomyTermSetNameAndDescriptionMutation", s.TaxonomyTermSetNameAndDescription))
	d.registerMutation("TaxonomySortMutation", typed("TaxonomySortMutation", s.TaxonomySort))
	d.registerMutation("TaxonomyCreateEntityLinksMutation", typed("TaxonomyCreateEntityLinksMutation", s.TaxonomyCreateEntityLinks))
	d.registerMutation("TaxonomyDeleteEntityLinksMutation", typed("TaxonomyDeleteEntityLinksMutation", s.TaxonomyDeleteEntityLinks))
	d.registerMutation("UserSetDescriptionMutation", typed("UserSetDescriptionMutation", s.UserSetDescription))
	d.registerMutation("UserSetEmailMutation", typed("UserSetEmailMutation", s.UserSetEmail))
	d.registerMutation("UserAddRoleMutation", typed("UserAddRoleMutation", s.UserAddRole))
	d.registerMutation("UserRemoveRoleMutation", typed("UserRemoveRoleMutation", s.UserRemoveRole))
}
