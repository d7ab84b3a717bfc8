package messages

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/example/contentapi/internal/data/eventlog"
	"github.com/example/contentapi/internal/data/repos"
	"github.com/example/contentapi/internal/data/repos/testutil"
	"github.com/example/contentapi/internal/data/resolver"
	"github.com/example/contentapi/internal/data/store"
	"github.com/example/contentapi/internal/domain"
	"github.com/example/contentapi/internal/domain/operr"
	"github.com/example/contentapi/internal/format"
)

func newDispatcher(t *testing.T) (*gorm.DB, *Dispatcher) {
	t.Helper()

	db := testutil.DB(t)
	log := testutil.Logger(t)

	uuids := repos.NewUuidRepo(db, log)
	entities := repos.NewEntityRepo(db, log)
	taxonomy := repos.NewTaxonomyRepo(db, log)
	comments := repos.NewCommentRepo(db, log)
	pages := repos.NewPageRepo(db, log)
	users := repos.NewUserRepo(db, log)
	events := repos.NewEventRepo(db, log)
	subscriptions := repos.NewSubscriptionRepo(db, log)
	notifications := repos.NewNotificationRepo(db, log)

	taxonomyResolver := resolver.NewTaxonomyResolver(taxonomy, entities, log)
	entityResolver := resolver.NewEntityResolver(entities, taxonomyResolver, log)
	identity := resolver.NewIdentityResolver(uuids, users, comments, pages, entityResolver, taxonomyResolver, log)

	writer := eventlog.NewWriter(events, subscriptions, notifications, log)
	reader := eventlog.NewReader(events, log)

	queries := NewQueryService(identity, entities, taxonomy, events, reader, log)
	mutations := NewMutationService(uuids, entities, taxonomy, comments, pages, users, subscriptions, writer, identity, log)

	return db, NewDispatcher(store.NewGormTxRunner(db), queries, mutations, log)
}

func dispatch(t *testing.T, d *Dispatcher, messageType string, payload interface{}) (interface{}, error) {
	t.Helper()

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return d.Dispatch(context.Background(), Envelope{Type: messageType, Payload: raw})
}

func TestDispatchUnknownMessageType(t *testing.T) {
	_, d := newDispatcher(t)

	_, err := d.Dispatch(context.Background(), Envelope{Type: "NoSuchQuery"})
	if !operr.IsCode(err, operr.CodeBadRequest) {
		t.Fatalf("expected bad_request, got %v", err)
	}
	if !strings.Contains(operr.Reason(err), "NoSuchQuery") {
		t.Errorf("reason %q does not name the message type", operr.Reason(err))
	}
}

func TestDispatchMalformedPayload(t *testing.T) {
	_, d := newDispatcher(t)

	_, err := d.Dispatch(context.Background(), Envelope{
		Type:    "UuidQuery",
		Payload: json.RawMessage(`{"id": "not-a-number"}`),
	})
	if !operr.IsCode(err, operr.CodeBadRequest) {
		t.Fatalf("expected bad_request, got %v", err)
	}
}

func TestPaginationCeiling(t *testing.T) {
	_, d := newDispatcher(t)

	_, err := dispatch(t, d, "EventsQuery", EventsQueryPayload{Pagination: Pagination{First: MaxPageSize + 1}})
	if !operr.IsCode(err, operr.CodeBadRequest) {
		t.Fatalf("expected bad_request, got %v", err)
	}
	if !strings.Contains(operr.Reason(err), fmt.Sprint(MaxPageSize)) {
		t.Errorf("reason %q does not name the limit", operr.Reason(err))
	}
}

func TestUuidQueryResolvesEntity(t *testing.T) {
	db, d := newDispatcher(t)
	ctx := context.Background()

	article := testutil.SeedEntity(t, ctx, db, domain.EntityKindArticle, domain.InstanceEn)

	out, err := dispatch(t, d, "UuidQuery", UuidQueryPayload{ID: article.ID})
	if err != nil {
		t.Fatalf("uuid query: %v", err)
	}
	payload, ok := out.(*resolver.EntityPayload)
	if !ok {
		t.Fatalf("expected *EntityPayload, got %T", out)
	}
	if payload.ID != article.ID || payload.Typename() != "Article" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestUuidQueryUnknownIDIsNotFound(t *testing.T) {
	_, d := newDispatcher(t)

	_, err := dispatch(t, d, "UuidQuery", UuidQueryPayload{ID: 987654})
	if !operr.IsCode(err, operr.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestThreadLifecycleEndToEnd(t *testing.T) {
	db, d := newDispatcher(t)
	ctx := context.Background()

	opener := testutil.SeedUser(t, ctx, db, "opener")
	replier := testutil.SeedUser(t, ctx, db, "replier")
	article := testutil.SeedEntity(t, ctx, db, domain.EntityKindArticle, domain.InstanceEn)

	out, err := dispatch(t, d, "ThreadCreateThreadMutation", ThreadCreateThreadPayload{
		Title:     "Found a mistake",
		Content:   "The example is wrong.",
		ObjectID:  article.ID,
		UserID:    opener.ID,
		Subscribe: true,
		SendEmail: true,
	})
	if err != nil {
		t.Fatalf("create thread: %v", err)
	}
	created, ok := out.(*RecordResult)
	if !ok || !created.Success {
		t.Fatalf("unexpected result %+v", out)
	}
	thread, ok := created.Record.(*resolver.CommentPayload)
	if !ok {
		t.Fatalf("expected *CommentPayload record, got %T", created.Record)
	}
	if thread.ParentID != article.ID {
		t.Errorf("thread parent = %d, want %d", thread.ParentID, article.ID)
	}

	out, err = dispatch(t, d, "ThreadCreateCommentMutation", ThreadCreateCommentPayload{
		ThreadID: thread.ID,
		Content:  "Agreed.",
		UserID:   replier.ID,
	})
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	commented := out.(*RecordResult)
	comment := commented.Record.(*resolver.CommentPayload)
	if comment.ParentID != thread.ID {
		t.Errorf("comment parent = %d, want thread %d", comment.ParentID, thread.ID)
	}

	// One committed createComment event, visible through the read side.
	out, err = dispatch(t, d, "EventsQuery", EventsQueryPayload{Pagination: Pagination{First: 10}})
	if err != nil {
		t.Fatalf("events query: %v", err)
	}
	page := out.(*EventsPage)
	if len(page.Events) != 2 {
		t.Fatalf("events = %d, want 2", len(page.Events))
	}
	newest := page.Events[0]
	if newest.EventType != string(domain.EventTypeCreateComment) {
		t.Errorf("newest event type = %q", newest.EventType)
	}
	if newest.UuidParams["discussion"] != thread.ID {
		t.Errorf("event params = %v", newest.UuidParams)
	}

	// The thread opener subscribed with email and must be notified of the
	// reply; the replier triggered it and must not be.
	var count int64
	if err := db.Model(&domain.Notification{}).Where("user_id = ?", opener.ID).Count(&count).Error; err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	if count != 1 {
		t.Errorf("opener notifications = %d, want 1", count)
	}
	if err := db.Model(&domain.Notification{}).Where("user_id = ?", replier.ID).Count(&count).Error; err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	if count != 0 {
		t.Errorf("replier notifications = %d, want 0", count)
	}
}

func TestCommentOnArchivedThreadIsRejected(t *testing.T) {
	db, d := newDispatcher(t)
	ctx := context.Background()

	opener := testutil.SeedUser(t, ctx, db, "opener")
	article := testutil.SeedEntity(t, ctx, db, domain.EntityKindArticle, domain.InstanceEn)
	title := "Old"
	thread := testutil.SeedComment(t, ctx, db, opener.ID, &article.ID, nil, &title, "done")

	if _, err := dispatch(t, d, "ThreadSetThreadArchivedMutation", ThreadSetArchivedPayload{
		IDs: []int64{thread.ID}, UserID: opener.ID, Archived: true,
	}); err != nil {
		t.Fatalf("archive: %v", err)
	}

	_, err := dispatch(t, d, "ThreadCreateCommentMutation", ThreadCreateCommentPayload{
		ThreadID: thread.ID, Content: "too late", UserID: opener.ID,
	})
	if !operr.IsCode(err, operr.CodeBadRequest) {
		t.Fatalf("expected bad_request on archived thread, got %v", err)
	}
}

func TestTrashRestrictionNamesKind(t *testing.T) {
	db, d := newDispatcher(t)
	ctx := context.Background()

	author := testutil.SeedUser(t, ctx, db, "author")
	article := testutil.SeedEntity(t, ctx, db, domain.EntityKindArticle, domain.InstanceEn)
	rev := testutil.SeedRevision(t, ctx, db, article.ID, author.ID, nil)

	// The article precedes the revision in the batch, so it is trashed
	// before the batch fails and must be rolled back with it.
	_, err := dispatch(t, d, "UuidSetStateMutation", UuidSetStatePayload{
		IDs: []int64{article.ID, rev.ID}, UserID: author.ID, Trashed: true,
	})
	if !operr.IsCode(err, operr.CodeBadRequest) {
		t.Fatalf("expected bad_request, got %v", err)
	}
	if !strings.Contains(operr.Reason(err), "entityRevision") {
		t.Errorf("reason %q does not name the kind", operr.Reason(err))
	}

	// The failed batch must leave no partial state behind.
	var row domain.UuidRow
	if err := db.Where("id = ?", article.ID).First(&row).Error; err != nil {
		t.Fatalf("reload article row: %v", err)
	}
	if row.Trashed {
		t.Error("article was trashed by a failed batch")
	}
}

func TestTrashAndRestoreEntity(t *testing.T) {
	db, d := newDispatcher(t)
	ctx := context.Background()

	actor := testutil.SeedUser(t, ctx, db, "janitor")
	article := testutil.SeedEntity(t, ctx, db, domain.EntityKindArticle, domain.InstanceEn)

	if _, err := dispatch(t, d, "UuidSetStateMutation", UuidSetStatePayload{
		IDs: []int64{article.ID}, UserID: actor.ID, Trashed: true,
	}); err != nil {
		t.Fatalf("trash: %v", err)
	}
	var row domain.UuidRow
	if err := db.Where("id = ?", article.ID).First(&row).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !row.Trashed {
		t.Fatal("entity not trashed")
	}

	var event domain.EventLog
	if err := db.Order("id DESC").First(&event).Error; err != nil {
		t.Fatalf("load event: %v", err)
	}
	if event.EventType != string(domain.EventTypeTrashUuid) {
		t.Errorf("event type = %q", event.EventType)
	}

	// Setting the same state again records nothing new.
	if _, err := dispatch(t, d, "UuidSetStateMutation", UuidSetStatePayload{
		IDs: []int64{article.ID}, UserID: actor.ID, Trashed: true,
	}); err != nil {
		t.Fatalf("repeat trash: %v", err)
	}
	var count int64
	if err := db.Model(&domain.EventLog{}).Count(&count).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if count != 1 {
		t.Errorf("events = %d, want 1", count)
	}
}

func TestEntityAddRevisionAndCheckout(t *testing.T) {
	db, d := newDispatcher(t)
	ctx := context.Background()

	author := testutil.SeedUser(t, ctx, db, "author")
	article := testutil.SeedEntity(t, ctx, db, domain.EntityKindArticle, domain.InstanceEn)

	out, err := dispatch(t, d, "EntityAddRevisionMutation", EntityAddRevisionPayload{
		EntityID: article.ID,
		UserID:   author.ID,
		Changes:  "rewrote the intro",
		Fields:   map[string]string{"title": "Division", "content": "..."},
	})
	if err != nil {
		t.Fatalf("add revision: %v", err)
	}
	added := out.(*RecordResult)
	revision := added.Record.(*resolver.EntityRevisionPayload)
	if revision.Changes != "rewrote the intro" {
		t.Errorf("changes = %q", revision.Changes)
	}

	// The new revision is pending until a reviewer checks it out.
	out, err = dispatch(t, d, "UnrevisedEntitiesQuery", UnrevisedEntitiesQueryPayload{})
	if err != nil {
		t.Fatalf("unrevised query: %v", err)
	}
	pending := out.(*UnrevisedEntitiesResult)
	if len(pending.UnrevisedEntityIDs) != 1 || pending.UnrevisedEntityIDs[0] != article.ID {
		t.Fatalf("unrevised = %v, want [%d]", pending.UnrevisedEntityIDs, article.ID)
	}

	if _, err := dispatch(t, d, "EntityRevisionCheckoutMutation", RevisionCheckoutPayload{
		RevisionID: revision.ID, UserID: author.ID, Reason: "fine",
	}); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	var entity domain.Entity
	if err := db.Where("id = ?", article.ID).First(&entity).Error; err != nil {
		t.Fatalf("reload entity: %v", err)
	}
	if entity.CurrentRevisionID == nil || *entity.CurrentRevisionID != revision.ID {
		t.Fatalf("current revision = %v, want %d", entity.CurrentRevisionID, revision.ID)
	}

	// Checking out the same revision twice is a client error.
	_, err = dispatch(t, d, "EntityRevisionCheckoutMutation", RevisionCheckoutPayload{
		RevisionID: revision.ID, UserID: author.ID, Reason: "again",
	})
	if !operr.IsCode(err, operr.CodeBadRequest) {
		t.Fatalf("expected bad_request on double checkout, got %v", err)
	}
}

func TestTaxonomySortAndLinks(t *testing.T) {
	db, d := newDispatcher(t)
	ctx := context.Background()

	actor := testutil.SeedUser(t, ctx, db, "gardener")
	root := testutil.SeedTerm(t, ctx, db, "Root", nil, 0)
	subject := testutil.SeedTerm(t, ctx, db, "Math", &root.ID, 0)
	topic := testutil.SeedTerm(t, ctx, db, "Arithmetic", &subject.ID, 0)
	other := testutil.SeedTerm(t, ctx, db, "Geometry", &subject.ID, 1)
	e1 := testutil.SeedEntity(t, ctx, db, domain.EntityKindArticle, domain.InstanceEn)
	e2 := testutil.SeedEntity(t, ctx, db, domain.EntityKindArticle, domain.InstanceEn)

	if _, err := dispatch(t, d, "TaxonomyCreateEntityLinksMutation", TaxonomyCreateEntityLinksPayload{
		EntityIDs: []int64{e1.ID, e2.ID}, TaxonomyTermID: topic.ID, UserID: actor.ID,
	}); err != nil {
		t.Fatalf("create links: %v", err)
	}

	// Also link e1 elsewhere so it can be unlinked from topic later.
	if _, err := dispatch(t, d, "TaxonomyCreateEntityLinksMutation", TaxonomyCreateEntityLinksPayload{
		EntityIDs: []int64{e1.ID}, TaxonomyTermID: other.ID, UserID: actor.ID,
	}); err != nil {
		t.Fatalf("create second link: %v", err)
	}

	if _, err := dispatch(t, d, "TaxonomySortMutation", TaxonomySortPayload{
		TaxonomyTermID: topic.ID, ChildrenIDs: []int64{e2.ID, e1.ID}, UserID: actor.ID,
	}); err != nil {
		t.Fatalf("sort: %v", err)
	}

	out, err := dispatch(t, d, "UuidQuery", UuidQueryPayload{ID: topic.ID})
	if err != nil {
		t.Fatalf("resolve topic: %v", err)
	}
	term := out.(*resolver.TaxonomyTermPayload)
	if len(term.ChildrenIDs) != 2 || term.ChildrenIDs[0] != e2.ID || term.ChildrenIDs[1] != e1.ID {
		t.Fatalf("children after sort = %v, want [%d %d]", term.ChildrenIDs, e2.ID, e1.ID)
	}

	_, err = dispatch(t, d, "TaxonomySortMutation", TaxonomySortPayload{
		TaxonomyTermID: topic.ID, ChildrenIDs: []int64{424242}, UserID: actor.ID,
	})
	if !operr.IsCode(err, operr.CodeBadRequest) {
		t.Fatalf("expected bad_request for foreign child, got %v", err)
	}

	if _, err := dispatch(t, d, "TaxonomyDeleteEntityLinksMutation", TaxonomyDeleteEntityLinksPayload{
		EntityIDs: []int64{e1.ID}, TaxonomyTermID: topic.ID, UserID: actor.ID,
	}); err != nil {
		t.Fatalf("delete link: %v", err)
	}

	// e2 has a single remaining link, which must not be removable.
	_, err = dispatch(t, d, "TaxonomyDeleteEntityLinksMutation", TaxonomyDeleteEntityLinksPayload{
		EntityIDs: []int64{e2.ID}, TaxonomyTermID: topic.ID, UserID: actor.ID,
	})
	if !operr.IsCode(err, operr.CodeBadRequest) {
		t.Fatalf("expected bad_request on last link, got %v", err)
	}
}

func TestSubjectsQuery(t *testing.T) {
	db, d := newDispatcher(t)
	ctx := context.Background()

	root := testutil.SeedTerm(t, ctx, db, "Root", nil, 0)
	testutil.SeedTerm(t, ctx, db, "Math", &root.ID, 0)
	testutil.SeedTerm(t, ctx, db, "Biology", &root.ID, 1)

	out, err := dispatch(t, d, "SubjectsQuery", SubjectsQueryPayload{})
	if err != nil {
		t.Fatalf("subjects: %v", err)
	}
	result := out.(*SubjectsResult)
	if len(result.Subjects) != 2 {
		t.Fatalf("subjects = %+v, want 2", result.Subjects)
	}
	if result.Subjects[0].Name != "Math" || result.Subjects[1].Name != "Biology" {
		t.Errorf("subject order = %+v", result.Subjects)
	}
}

func TestUserMutations(t *testing.T) {
	db, d := newDispatcher(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, ctx, db, "profiled")

	if _, err := dispatch(t, d, "UserSetDescriptionMutation", UserSetDescriptionPayload{
		UserID: user.ID, Description: "I fix articles.",
	}); err != nil {
		t.Fatalf("set description: %v", err)
	}
	if _, err := dispatch(t, d, "UserAddRoleMutation", UserAddRolePayload{
		Username: "profiled", RoleName: "en_reviewer",
	}); err != nil {
		t.Fatalf("add role: %v", err)
	}

	out, err := dispatch(t, d, "UuidQuery", UuidQueryPayload{ID: user.ID})
	if err != nil {
		t.Fatalf("resolve user: %v", err)
	}
	payload := out.(*resolver.UserPayload)
	if payload.Description == nil || *payload.Description != "I fix articles." {
		t.Errorf("description = %v", payload.Description)
	}
	if len(payload.Roles) != 1 || payload.Roles[0] != "en_reviewer" {
		t.Errorf("roles = %v", payload.Roles)
	}

	out, err = dispatch(t, d, "UserSetEmailMutation", UserSetEmailPayload{
		UserID: user.ID, Email: "new@example.org",
	})
	if err != nil {
		t.Fatalf("set email: %v", err)
	}
	emailResult := out.(*UserEmailResult)
	if emailResult.Username != "profiled" || emailResult.Email != "new@example.org" {
		t.Errorf("email result = %+v", emailResult)
	}
}

func TestSubscriptionSetMutation(t *testing.T) {
	db, d := newDispatcher(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, ctx, db, "watcher")
	article := testutil.SeedEntity(t, ctx, db, domain.EntityKindArticle, domain.InstanceEn)

	subscriptions := repos.NewSubscriptionRepo(db, testutil.Logger(t))

	if _, err := dispatch(t, d, "SubscriptionSetMutation", SubscriptionSetPayload{
		IDs: []int64{article.ID}, UserID: user.ID, Subscribe: true, SendEmail: true,
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	subs, err := subscriptions.ByUserID(ctx, nil, user.ID)
	if err != nil {
		t.Fatalf("list subscriptions: %v", err)
	}
	if len(subs) != 1 || subs[0].UuidID != article.ID || !subs[0].SendEmail {
		t.Fatalf("subscriptions = %+v", subs)
	}

	if _, err := dispatch(t, d, "SubscriptionSetMutation", SubscriptionSetPayload{
		IDs: []int64{article.ID}, UserID: user.ID, Subscribe: false,
	}); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	subs, err = subscriptions.ByUserID(ctx, nil, user.ID)
	if err != nil {
		t.Fatalf("list subscriptions: %v", err)
	}
	if len(subs) != 0 {
		t.Fatalf("subscriptions after unsubscribe = %+v", subs)
	}
}

func TestEntitiesQueryPagination(t *testing.T) {
	db, d := newDispatcher(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		e := testutil.SeedEntity(t, ctx, db, domain.EntityKindArticle, domain.InstanceEn)
		ids = append(ids, e.ID)
	}

	out, err := dispatch(t, d, "EntitiesQuery", EntitiesQueryPayload{Pagination: Pagination{First: 2}})
	if err != nil {
		t.Fatalf("entities query: %v", err)
	}
	page := out.(*EntityIDPage)
	if !page.HasNextPage {
		t.Error("expected another page")
	}
	if len(page.EntityIDs) != 2 || page.EntityIDs[0] != ids[2] || page.EntityIDs[1] != ids[1] {
		t.Fatalf("page = %v, want newest first", page.EntityIDs)
	}

	out, err = dispatch(t, d, "EntitiesQuery", EntitiesQueryPayload{
		Pagination: Pagination{First: 2, After: &page.EntityIDs[1]},
	})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	rest := out.(*EntityIDPage)
	if rest.HasNextPage || len(rest.EntityIDs) != 1 || rest.EntityIDs[0] != ids[0] {
		t.Fatalf("second page = %+v", rest)
	}
}

func TestMutationPreconditionMissesAreBadRequests(t *testing.T) {
	db, d := newDispatcher(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, ctx, db, "caller")

	_, err := dispatch(t, d, "ThreadCreateThreadMutation", ThreadCreateThreadPayload{
		Title: "?", Content: "?", ObjectID: 424242, UserID: user.ID,
	})
	if !operr.IsCode(err, operr.CodeBadRequest) {
		t.Fatalf("expected bad_request for missing object, got %v", err)
	}
	if !strings.Contains(operr.Reason(err), "does not exist") {
		t.Errorf("reason = %q", operr.Reason(err))
	}

	_, err = dispatch(t, d, "EntityAddRevisionMutation", EntityAddRevisionPayload{
		EntityID: 424242, UserID: user.ID,
	})
	if !operr.IsCode(err, operr.CodeBadRequest) {
		t.Fatalf("expected bad_request for missing entity, got %v", err)
	}

	_, err = dispatch(t, d, "UserSetEmailMutation", UserSetEmailPayload{
		UserID: 424242, Email: "nobody@example.org",
	})
	if !operr.IsCode(err, operr.CodeBadRequest) {
		t.Fatalf("expected bad_request for missing user, got %v", err)
	}

	// Trash/restore addresses identities directly; an unknown id stays a 404.
	_, err = dispatch(t, d, "UuidSetStateMutation", UuidSetStatePayload{
		IDs: []int64{424242}, UserID: user.ID, Trashed: true,
	})
	if !operr.IsCode(err, operr.CodeNotFound) {
		t.Fatalf("expected not_found for unknown uuid, got %v", err)
	}
}

func TestEntityCreateMutation(t *testing.T) {
	db, d := newDispatcher(t)
	ctx := context.Background()

	actor := testutil.SeedUser(t, ctx, db, "author")
	root := testutil.SeedTerm(t, ctx, db, "Root", nil, 0)
	subject := testutil.SeedTerm(t, ctx, db, "Math", &root.ID, 0)

	out, err := dispatch(t, d, "EntityCreateMutation", EntityCreatePayload{
		EntityType:     "article",
		UserID:         actor.ID,
		LicenseID:      1,
		TaxonomyTermID: &subject.ID,
		Fields:         map[string]string{"title": "Counting", "content": "1 2 3"},
	})
	if err != nil {
		t.Fatalf("create entity: %v", err)
	}
	record := out.(*RecordResult)
	article := record.Record.(*resolver.EntityPayload)
	if article.Typename() != "Article" || article.CurrentRevisionID == nil {
		t.Fatalf("created entity = %+v", article)
	}
	if len(article.TaxonomyTermIDs) != 1 || article.TaxonomyTermIDs[0] != subject.ID {
		t.Errorf("taxonomy links = %v", article.TaxonomyTermIDs)
	}

	out, err = dispatch(t, d, "EventsQuery", EventsQueryPayload{
		Pagination: Pagination{First: 10}, ObjectID: &article.ID,
	})
	if err != nil {
		t.Fatalf("events query: %v", err)
	}
	page := out.(*EventsPage)
	if len(page.Events) != 2 {
		t.Fatalf("events = %+v, want create + taxonomy link", page.Events)
	}
	if page.Events[1].EventType != string(domain.EventTypeCreateEntity) {
		t.Errorf("oldest event = %q", page.Events[1].EventType)
	}
	if page.Events[0].EventType != string(domain.EventTypeCreateTaxonomyLink) {
		t.Errorf("newest event = %q", page.Events[0].EventType)
	}
}

func TestEntityCreateParentRules(t *testing.T) {
	db, d := newDispatcher(t)
	ctx := context.Background()

	actor := testutil.SeedUser(t, ctx, db, "editor")
	root := testutil.SeedTerm(t, ctx, db, "Root", nil, 0)
	subject := testutil.SeedTerm(t, ctx, db, "Math", &root.ID, 0)

	_, err := dispatch(t, d, "EntityCreateMutation", EntityCreatePayload{
		EntityType: "course-page", UserID: actor.ID, LicenseID: 1, TaxonomyTermID: &subject.ID,
	})
	if !operr.IsCode(err, operr.CodeBadRequest) {
		t.Fatalf("expected bad_request for parentless course page, got %v", err)
	}

	_, err = dispatch(t, d, "EntityCreateMutation", EntityCreatePayload{
		EntityType: "article", UserID: actor.ID, LicenseID: 1,
	})
	if !operr.IsCode(err, operr.CodeBadRequest) {
		t.Fatalf("expected bad_request for untagged article, got %v", err)
	}

	out, err := dispatch(t, d, "EntityCreateMutation", EntityCreatePayload{
		EntityType: "course", UserID: actor.ID, LicenseID: 1, TaxonomyTermID: &subject.ID,
	})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	course := out.(*RecordResult).Record.(*resolver.EntityPayload)

	out, err = dispatch(t, d, "EntityCreateMutation", EntityCreatePayload{
		EntityType: "course-page", UserID: actor.ID, LicenseID: 1, ParentID: &course.ID,
	})
	if err != nil {
		t.Fatalf("create course page: %v", err)
	}
	page := out.(*RecordResult).Record.(*resolver.EntityPayload)
	if page.ParentID == nil || *page.ParentID != course.ID {
		t.Fatalf("course page parent = %v, want %d", page.ParentID, course.ID)
	}
}

func TestEntityLinkMutations(t *testing.T) {
	db, d := newDispatcher(t)
	ctx := context.Background()

	actor := testutil.SeedUser(t, ctx, db, "linker")
	courseA := testutil.SeedEntity(t, ctx, db, domain.EntityKindCourse, domain.InstanceEn)
	courseB := testutil.SeedEntity(t, ctx, db, domain.EntityKindCourse, domain.InstanceEn)
	page := testutil.SeedEntity(t, ctx, db, domain.EntityKindCoursePage, domain.InstanceEn)
	testutil.SeedEntityLink(t, ctx, db, courseA.ID, page.ID, 0)

	// An article never hangs below another entity.
	article := testutil.SeedEntity(t, ctx, db, domain.EntityKindArticle, domain.InstanceEn)
	_, err := dispatch(t, d, "EntityCreateLinkMutation", EntityLinkPayload{
		ParentID: courseA.ID, ChildID: article.ID, UserID: actor.ID,
	})
	if !operr.IsCode(err, operr.CodeBadRequest) {
		t.Fatalf("expected bad_request for unparented kind, got %v", err)
	}

	// The page's only link must not be removable.
	_, err = dispatch(t, d, "EntityDeleteLinkMutation", EntityLinkPayload{
		ParentID: courseA.ID, ChildID: page.ID, UserID: actor.ID,
	})
	if !operr.IsCode(err, operr.CodeBadRequest) {
		t.Fatalf("expected bad_request on last parent link, got %v", err)
	}

	if _, err := dispatch(t, d, "EntityCreateLinkMutation", EntityLinkPayload{
		ParentID: courseB.ID, ChildID: page.ID, UserID: actor.ID,
	}); err != nil {
		t.Fatalf("create second link: %v", err)
	}
	if _, err := dispatch(t, d, "EntityDeleteLinkMutation", EntityLinkPayload{
		ParentID: courseA.ID, ChildID: page.ID, UserID: actor.ID,
	}); err != nil {
		t.Fatalf("delete first link: %v", err)
	}

	out, err := dispatch(t, d, "UuidQuery", UuidQueryPayload{ID: page.ID})
	if err != nil {
		t.Fatalf("resolve page: %v", err)
	}
	moved := out.(*resolver.EntityPayload)
	if moved.ParentID == nil || *moved.ParentID != courseB.ID {
		t.Fatalf("parent after relink = %v, want %d", moved.ParentID, courseB.ID)
	}

	// Deleting a link that is not there is a constraint violation.
	_, err = dispatch(t, d, "EntityDeleteLinkMutation", EntityLinkPayload{
		ParentID: courseA.ID, ChildID: page.ID, UserID: actor.ID,
	})
	if !operr.IsCode(err, operr.CodeBadRequest) {
		t.Fatalf("expected bad_request for missing link, got %v", err)
	}
}

func TestEntitySetLicenseMutation(t *testing.T) {
	db, d := newDispatcher(t)
	ctx := context.Background()

	actor := testutil.SeedUser(t, ctx, db, "licensor")
	article := testutil.SeedEntity(t, ctx, db, domain.EntityKindArticle, domain.InstanceEn)

	if _, err := dispatch(t, d, "EntitySetLicenseMutation", EntitySetLicensePayload{
		EntityID: article.ID, LicenseID: 2, UserID: actor.ID,
	}); err != nil {
		t.Fatalf("set license: %v", err)
	}
	var entity domain.Entity
	if err := db.Where("id = ?", article.ID).First(&entity).Error; err != nil {
		t.Fatalf("reload entity: %v", err)
	}
	if entity.LicenseID != 2 {
		t.Fatalf("license = %d, want 2", entity.LicenseID)
	}

	// Repeating the same license is a no-op and records no second event.
	if _, err := dispatch(t, d, "EntitySetLicenseMutation", EntitySetLicensePayload{
		EntityID: article.ID, LicenseID: 2, UserID: actor.ID,
	}); err != nil {
		t.Fatalf("repeat set license: %v", err)
	}
	out, err := dispatch(t, d, "EventsQuery", EventsQueryPayload{
		Pagination: Pagination{First: 10}, ObjectID: &article.ID,
	})
	if err != nil {
		t.Fatalf("events query: %v", err)
	}
	page := out.(*EventsPage)
	if len(page.Events) != 1 || page.Events[0].EventType != string(domain.EventTypeSetLicense) {
		t.Fatalf("events = %+v, want one license/object/set", page.Events)
	}
}

func TestTaxonomyTermCreateAndMove(t *testing.T) {
	db, d := newDispatcher(t)
	ctx := context.Background()

	actor := testutil.SeedUser(t, ctx, db, "organizer")
	root := testutil.SeedTerm(t, ctx, db, "Root", nil, 0)
	math := testutil.SeedTerm(t, ctx, db, "Math", &root.ID, 0)
	biology := testutil.SeedTerm(t, ctx, db, "Biology", &root.ID, 1)

	_, err := dispatch(t, d, "TaxonomyTermCreateMutation", TaxonomyTermCreatePayload{
		ParentID: math.ID, Name: "", UserID: actor.ID,
	})
	if !operr.IsCode(err, operr.CodeBadRequest) {
		t.Fatalf("expected bad_request for empty name, got %v", err)
	}

	out, err := dispatch(t, d, "TaxonomyTermCreateMutation", TaxonomyTermCreatePayload{
		ParentID: math.ID, Name: "Arithmetic", UserID: actor.ID,
	})
	if err != nil {
		t.Fatalf("create term: %v", err)
	}
	created := out.(*RecordResult).Record.(*resolver.TaxonomyTermPayload)
	if created.Name != "Arithmetic" || created.ParentID == nil || *created.ParentID != math.ID {
		t.Fatalf("created term = %+v", created)
	}

	if _, err := dispatch(t, d, "TaxonomyTermMoveMutation", TaxonomyTermMovePayload{
		ChildrenIDs: []int64{created.ID}, Destination: biology.ID, UserID: actor.ID,
	}); err != nil {
		t.Fatalf("move term: %v", err)
	}
	out, err = dispatch(t, d, "UuidQuery", UuidQueryPayload{ID: created.ID})
	if err != nil {
		t.Fatalf("resolve moved term: %v", err)
	}
	moved := out.(*resolver.TaxonomyTermPayload)
	if moved.ParentID == nil || *moved.ParentID != biology.ID {
		t.Fatalf("parent after move = %v, want %d", moved.ParentID, biology.ID)
	}

	// A parent must not end up below its own descendant.
	_, err = dispatch(t, d, "TaxonomyTermMoveMutation", TaxonomyTermMovePayload{
		ChildrenIDs: []int64{biology.ID}, Destination: created.ID, UserID: actor.ID,
	})
	if !operr.IsCode(err, operr.CodeBadRequest) {
		t.Fatalf("expected bad_request for cycle, got %v", err)
	}

	_, err = dispatch(t, d, "TaxonomyTermMoveMutation", TaxonomyTermMovePayload{
		ChildrenIDs: []int64{root.ID}, Destination: math.ID, UserID: actor.ID,
	})
	if !operr.IsCode(err, operr.CodeBadRequest) {
		t.Fatalf("expected bad_request for moving the root, got %v", err)
	}
}

func TestEntitiesMetadataDatesAreUTC(t *testing.T) {
	db, d := newDispatcher(t)
	ctx := context.Background()

	article := testutil.SeedEntity(t, ctx, db, domain.EntityKindArticle, domain.InstanceEn)
	known := time.Date(2014, 7, 15, 12, 0, 0, 0, time.UTC)
	if err := db.Model(&domain.Entity{}).Where("id = ?", article.ID).
		Update("date", format.ToStorage(known)).Error; err != nil {
		t.Fatalf("set date: %v", err)
	}

	out, err := dispatch(t, d, "EntitiesMetadataQuery", EntitiesMetadataQueryPayload{
		Pagination: Pagination{First: 10},
	})
	if err != nil {
		t.Fatalf("metadata query: %v", err)
	}
	page := out.(*EntityMetadataPage)
	if len(page.Entities) != 1 {
		t.Fatalf("entities = %+v, want 1", page.Entities)
	}
	if got := page.Entities[0].DateCreated; got != "2014-07-15T12:00:00Z" {
		t.Fatalf("dateCreated = %q, want the stored instant in UTC", got)
	}
}
