package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/example/contentapi/internal/domain"
	"github.com/example/contentapi/internal/format"
)

// SeedUuid inserts a fresh identity row and returns it.
func SeedUuid(tb testing.TB, ctx context.Context, tx *gorm.DB, discriminator domain.Discriminator) *domain.UuidRow {
	tb.Helper()
	row := &domain.UuidRow{Discriminator: string(discriminator)}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed uuid: %v", err)
	}
	return row
}

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) *domain.User {
	tb.Helper()
	row := SeedUuid(tb, ctx, tx, domain.DiscriminatorUser)
	u := &domain.User{
		ID:       row.ID,
		Username: username,
		Email:    fmt.Sprintf("%s@example.org", username),
		Date:     format.ToStorage(time.Now()),
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedEntity(tb testing.TB, ctx context.Context, tx *gorm.DB, kind domain.EntityKind, instance domain.Instance) *domain.Entity {
	tb.Helper()
	row := SeedUuid(tb, ctx, tx, domain.DiscriminatorEntity)
	e := &domain.Entity{
		ID:        row.ID,
		Type:      string(kind),
		Instance:  string(instance),
		LicenseID: 1,
		Date:      format.ToStorage(time.Now()),
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed entity: %v", err)
	}
	return e
}

func SeedRevision(tb testing.TB, ctx context.Context, tx *gorm.DB, entityID, authorID int64, fields map[string]string) *domain.EntityRevision {
	tb.Helper()
	row := SeedUuid(tb, ctx, tx, domain.DiscriminatorEntityRevision)
	rev := &domain.EntityRevision{
		ID:           row.ID,
		AuthorID:     authorID,
		RepositoryID: entityID,
		Date:         format.ToStorage(time.Now()),
	}
	if err := tx.WithContext(ctx).Create(rev).Error; err != nil {
		tb.Fatalf("seed revision: %v", err)
	}
	for field, value := range fields {
		f := &domain.EntityRevisionField{
			EntityRevisionID: rev.ID,
			Field:            field,
			Value:            value,
		}
		if err := tx.WithContext(ctx).Create(f).Error; err != nil {
			tb.Fatalf("seed revision field: %v", err)
		}
	}
	return rev
}

func SeedTerm(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, parentID *int64, weight int) *domain.TermTaxonomy {
	tb.Helper()
	row := SeedUuid(tb, ctx, tx, domain.DiscriminatorTaxonomyTerm)
	term := &domain.TermTaxonomy{
		ID:       row.ID,
		Instance: string(domain.InstanceEn),
		Name:     name,
		Weight:   weight,
		ParentID: parentID,
	}
	if err := tx.WithContext(ctx).Create(term).Error; err != nil {
		tb.Fatalf("seed term: %v", err)
	}
	return term
}

func SeedTermEntity(tb testing.TB, ctx context.Context, tx *gorm.DB, termID, entityID int64, position int) {
	tb.Helper()
	link := &domain.TermTaxonomyEntity{
		TermTaxonomyID: termID,
		EntityID:       entityID,
		Position:       position,
	}
	if err := tx.WithContext(ctx).Create(link).Error; err != nil {
		tb.Fatalf("seed term entity: %v", err)
	}
}

func SeedEntityLink(tb testing.TB, ctx context.Context, tx *gorm.DB, parentID, childID int64, position int) {
	tb.Helper()
	link := &domain.EntityLink{ParentID: parentID, ChildID: childID, Position: position}
	if err := tx.WithContext(ctx).Create(link).Error; err != nil {
		tb.Fatalf("seed entity link: %v", err)
	}
}

func SeedComment(tb testing.TB, ctx context.Context, tx *gorm.DB, authorID int64, objectID, parentID *int64, title *string, content string) *domain.Comment {
	tb.Helper()
	row := SeedUuid(tb, ctx, tx, domain.DiscriminatorComment)
	c := &domain.Comment{
		ID:       row.ID,
		AuthorID: authorID,
		UuidID:   objectID,
		ParentID: parentID,
		Title:    title,
		Content:  content,
		Date:     format.ToStorage(time.Now()),
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed comment: %v", err)
	}
	return c
}
