package repos

import (
	"context"
	"testing"

	"github.com/example/contentapi/internal/data/repos/testutil"
	"github.com/example/contentapi/internal/domain"
)

func TestSubscriptionSaveIsIdempotentUpsert(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	subscriptions := NewSubscriptionRepo(db, log)
	ctx := context.Background()

	user := testutil.SeedUser(t, ctx, db, "watcher")
	article := testutil.SeedEntity(t, ctx, db, domain.EntityKindArticle, domain.InstanceEn)

	if err := subscriptions.Save(ctx, nil, article.ID, user.ID, false); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := subscriptions.Save(ctx, nil, article.ID, user.ID, true); err != nil {
		t.Fatalf("second save: %v", err)
	}

	subs, err := subscriptions.SubscribersOf(ctx, nil, article.ID)
	if err != nil {
		t.Fatalf("subscribers: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("subscriptions = %d, want 1", len(subs))
	}
	if !subs[0].SendEmail {
		t.Error("second save did not update send_email")
	}

	if err := subscriptions.Remove(ctx, nil, article.ID, user.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	subs, err = subscriptions.SubscribersOf(ctx, nil, article.ID)
	if err != nil {
		t.Fatalf("subscribers after remove: %v", err)
	}
	if len(subs) != 0 {
		t.Fatalf("subscriptions after remove = %d, want 0", len(subs))
	}
}

func TestUserRoles(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	users := NewUserRepo(db, log)
	ctx := context.Background()

	user := testutil.SeedUser(t, ctx, db, "moderator")

	roleID, err := users.EnsureRole(ctx, nil, "en_moderator")
	if err != nil {
		t.Fatalf("ensure role: %v", err)
	}
	again, err := users.EnsureRole(ctx, nil, "en_moderator")
	if err != nil {
		t.Fatalf("ensure role again: %v", err)
	}
	if roleID != again {
		t.Fatalf("EnsureRole not idempotent: %d vs %d", roleID, again)
	}

	if err := users.AddRole(ctx, nil, user.ID, roleID); err != nil {
		t.Fatalf("add role: %v", err)
	}
	roles, err := users.Roles(ctx, nil, user.ID)
	if err != nil {
		t.Fatalf("roles: %v", err)
	}
	if len(roles) != 1 || roles[0] != "en_moderator" {
		t.Fatalf("roles = %v", roles)
	}

	if err := users.RemoveRole(ctx, nil, user.ID, "en_moderator"); err != nil {
		t.Fatalf("remove role: %v", err)
	}
	roles, err = users.Roles(ctx, nil, user.ID)
	if err != nil {
		t.Fatalf("roles after remove: %v", err)
	}
	if len(roles) != 0 {
		t.Fatalf("roles after remove = %v", roles)
	}
}

func TestEntityRevisionIDsAreOldestFirst(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	entities := NewEntityRepo(db, log)
	ctx := context.Background()

	author := testutil.SeedUser(t, ctx, db, "author")
	article := testutil.SeedEntity(t, ctx, db, domain.EntityKindArticle, domain.InstanceEn)
	r1 := testutil.SeedRevision(t, ctx, db, article.ID, author.ID, nil)
	r2 := testutil.SeedRevision(t, ctx, db, article.ID, author.ID, nil)

	ids, err := entities.RevisionIDs(ctx, nil, article.ID)
	if err != nil {
		t.Fatalf("revision ids: %v", err)
	}
	if len(ids) != 2 || ids[0] != r1.ID || ids[1] != r2.ID {
		t.Fatalf("ids = %v, want [%d %d]", ids, r1.ID, r2.ID)
	}
}

func TestUnrevisedIDs(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	entities := NewEntityRepo(db, log)
	ctx := context.Background()

	author := testutil.SeedUser(t, ctx, db, "author")

	// reviewed carries a checked-out latest revision, pending does not.
	reviewed := testutil.SeedEntity(t, ctx, db, domain.EntityKindArticle, domain.InstanceEn)
	rev := testutil.SeedRevision(t, ctx, db, reviewed.ID, author.ID, nil)
	if err := entities.SetCurrentRevision(ctx, nil, reviewed.ID, rev.ID); err != nil {
		t.Fatalf("set current: %v", err)
	}

	pending := testutil.SeedEntity(t, ctx, db, domain.EntityKindArticle, domain.InstanceEn)
	testutil.SeedRevision(t, ctx, db, pending.ID, author.ID, nil)

	ids, err := entities.UnrevisedIDs(ctx, nil, nil)
	if err != nil {
		t.Fatalf("unrevised: %v", err)
	}
	if len(ids) != 1 || ids[0] != pending.ID {
		t.Fatalf("unrevised = %v, want [%d]", ids, pending.ID)
	}
}

func TestTaxonomyRootIDsFiltersByInstance(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	taxonomy := NewTaxonomyRepo(db, log)
	ctx := context.Background()

	enRoot := testutil.SeedTerm(t, ctx, db, "Root", nil, 0)
	deRoot := testutil.SeedTerm(t, ctx, db, "Wurzel", nil, 0)
	if err := db.Model(&domain.TermTaxonomy{}).Where("id = ?", deRoot.ID).
		Update("instance", string(domain.InstanceDe)).Error; err != nil {
		t.Fatalf("retag root: %v", err)
	}

	all, err := taxonomy.RootIDs(ctx, nil, nil)
	if err != nil {
		t.Fatalf("roots: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("roots = %v, want both", all)
	}

	en := domain.InstanceEn
	filtered, err := taxonomy.RootIDs(ctx, nil, &en)
	if err != nil {
		t.Fatalf("filtered roots: %v", err)
	}
	if len(filtered) != 1 || filtered[0] != enRoot.ID {
		t.Fatalf("filtered roots = %v, want [%d]", filtered, enRoot.ID)
	}
}
