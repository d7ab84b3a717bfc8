package resolver

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/example/contentapi/internal/data/repos"
	"github.com/example/contentapi/internal/data/store"
	"github.com/example/contentapi/internal/domain"
	"github.com/example/contentapi/internal/domain/operr"
	"github.com/example/contentapi/internal/format"
	"github.com/example/contentapi/internal/platform/logger"
)

// IdentityResolver fetches one polymorphic identity by id: first the shared
// uuid table decides the kind, then a kind-specific fetcher builds the
// payload. The kind set is closed; the dispatch table below is the single
// point that enumerates it.
type IdentityResolver struct {
	uuids         repos.UuidRepo
	users         repos.UserRepo
	comments      repos.CommentRepo
	pages         repos.PageRepo
	entityFetcher *EntityResolver
	taxonomy      *TaxonomyResolver
	log           *logger.Logger
}

func NewIdentityResolver(
	uuids repos.UuidRepo,
	users repos.UserRepo,
	comments repos.CommentRepo,
	pages repos.PageRepo,
	entityFetcher *EntityResolver,
	taxonomy *TaxonomyResolver,
	baseLog *logger.Logger,
) *IdentityResolver {
	return &IdentityResolver{
		uuids:         uuids,
		users:         users,
		comments:      comments,
		pages:         pages,
		entityFetcher: entityFetcher,
		taxonomy:      taxonomy,
		log:           baseLog.With("resolver", "IdentityResolver"),
	}
}

// Resolve fetches the identity with the given id, or operr.CodeNotFound when
// no such row exists.
func (r *IdentityResolver) Resolve(ctx context.Context, tx *gorm.DB, id int64) (Payload, error) {
	const op = "uuid.resolve"

	row, err := r.uuids.GetByID(ctx, tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, operr.NotFound(op)
		}
		return nil, store.MapError(op, err)
	}

	discriminator, err := domain.ParseDiscriminator(row.Discriminator)
	if err != nil {
		return nil, operr.Wrap(operr.CodeUnsupportedType, op, err)
	}

	switch discriminator {
	case domain.DiscriminatorAttachment:
		return r.fetchAttachment(ctx, tx, row)
	case domain.DiscriminatorBlogPost:
		return r.fetchBlogPost(ctx, tx, row)
	case domain.DiscriminatorComment:
		return r.fetchComment(ctx, tx, row)
	case domain.DiscriminatorEntity:
		return r.entityFetcher.FetchEntity(ctx, tx, row)
	case domain.DiscriminatorEntityRevision:
		return r.entityFetcher.FetchRevision(ctx, tx, row)
	case domain.DiscriminatorPage:
		return r.fetchPage(ctx, tx, row)
	case domain.DiscriminatorPageRevision:
		return r.fetchPageRevision(ctx, tx, row)
	case domain.DiscriminatorTaxonomyTerm:
		return r.taxonomy.FetchTerm(ctx, tx, row)
	case domain.DiscriminatorUser:
		return r.fetchUser(ctx, tx, row)
	}
	// ParseDiscriminator already rejected anything outside the closed set.
	panic(fmt.Sprintf("unhandled discriminator %q", discriminator))
}

func (r *IdentityResolver) fetchAttachment(ctx context.Context, tx *gorm.DB, row *domain.UuidRow) (Payload, error) {
	const op = "attachment.fetch"

	attachment, err := r.pages.GetAttachment(ctx, tx, row.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, operr.NotFound(op)
		}
		return nil, store.MapError(op, err)
	}
	name := attachment.Filename
	return &AttachmentPayload{
		BaseUuid: BaseUuid{
			TypenameField: "Attachment",
			ID:            attachment.ID,
			Trashed:       row.Trashed,
			Alias:         format.FormatAlias(nil, attachment.ID, &name),
		},
		Filename: attachment.Filename,
	}, nil
}

func (r *IdentityResolver) fetchBlogPost(ctx context.Context, tx *gorm.DB, row *domain.UuidRow) (Payload, error) {
	const op = "blogPost.fetch"

	post, err := r.pages.GetBlogPost(ctx, tx, row.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, operr.NotFound(op)
		}
		return nil, store.MapError(op, err)
	}
	subject := "blog"
	return &BlogPostPayload{
		BaseUuid: BaseUuid{
			TypenameField: "BlogPost",
			ID:            post.ID,
			Trashed:       row.Trashed,
			Alias:         format.FormatAlias(&subject, post.ID, &post.Title),
		},
		AuthorID: post.AuthorID,
		Title:    post.Title,
		Content:  post.Content,
		Date:     format.ISO(post.Date),
	}, nil
}

func (r *IdentityResolver) fetchComment(ctx context.Context, tx *gorm.DB, row *domain.UuidRow) (Payload, error) {
	const op = "comment.fetch"

	comment, err := r.comments.GetByID(ctx, tx, row.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, operr.NotFound(op)
		}
		return nil, store.MapError(op, err)
	}

	var childrenIDs []int64
	err = runQueries(ctx, tx,
		func(ctx context.Context, tx *gorm.DB) error {
			var qerr error
			childrenIDs, qerr = r.comments.ChildIDs(ctx, tx, comment.ID)
			return qerr
		},
	)
	if err != nil {
		return nil, store.MapError(op, err)
	}

	// A thread root points at the discussed object; a reply points at its
	// thread root.
	var parentID int64
	switch {
	case comment.ParentID != nil:
		parentID = *comment.ParentID
	case comment.UuidID != nil:
		parentID = *comment.UuidID
	}

	return &CommentPayload{
		BaseUuid: BaseUuid{
			TypenameField: "Comment",
			ID:            comment.ID,
			Trashed:       row.Trashed,
			Alias:         format.FormatAlias(nil, comment.ID, comment.Title),
		},
		AuthorID:    comment.AuthorID,
		ParentID:    parentID,
		Title:       comment.Title,
		Content:     comment.Content,
		Archived:    comment.Archived,
		Date:        format.ISO(comment.Date),
		ChildrenIDs: childrenIDs,
	}, nil
}

func (r *IdentityResolver) fetchPage(ctx context.Context, tx *gorm.DB, row *domain.UuidRow) (Payload, error) {
	const op = "page.fetch"

	page, err := r.pages.GetByID(ctx, tx, row.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, operr.NotFound(op)
		}
		return nil, store.MapError(op, err)
	}

	var (
		revisionIDs []int64
		title       *string
	)
	err = runQueries(ctx, tx,
		func(ctx context.Context, tx *gorm.DB) error {
			var qerr error
			revisionIDs, qerr = r.pages.RevisionIDs(ctx, tx, page.ID)
			return qerr
		},
		func(ctx context.Context, tx *gorm.DB) error {
			if page.CurrentRevisionID == nil {
				return nil
			}
			revision, qerr := r.pages.GetRevision(ctx, tx, *page.CurrentRevisionID)
			if qerr != nil {
				return qerr
			}
			title = &revision.Title
			return nil
		},
	)
	if err != nil {
		return nil, store.MapError(op, err)
	}
	reverse(revisionIDs)

	return &PagePayload{
		BaseUuid: BaseUuid{
			TypenameField: "Page",
			ID:            page.ID,
			Trashed:       row.Trashed,
			Alias:         format.FormatAlias(nil, page.ID, title),
		},
		Instance:          page.Instance,
		LicenseID:         page.LicenseID,
		CurrentRevisionID: page.CurrentRevisionID,
		RevisionIDs:       revisionIDs,
	}, nil
}

func (r *IdentityResolver) fetchPageRevision(ctx context.Context, tx *gorm.DB, row *domain.UuidRow) (Payload, error) {
	const op = "pageRevision.fetch"

	revision, err := r.pages.GetRevision(ctx, tx, row.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, operr.NotFound(op)
		}
		return nil, store.MapError(op, err)
	}
	return &PageRevisionPayload{
		BaseUuid: BaseUuid{
			TypenameField: "PageRevision",
			ID:            revision.ID,
			Trashed:       row.Trashed,
			Alias:         format.FormatAlias(nil, revision.ID, &revision.Title),
		},
		AuthorID:     revision.AuthorID,
		RepositoryID: revision.PageRepositoryID,
		Title:        revision.Title,
		Content:      revision.Content,
		Date:         format.ISO(revision.Date),
	}, nil
}

func (r *IdentityResolver) fetchUser(ctx context.Context, tx *gorm.DB, row *domain.UuidRow) (Payload, error) {
	const op = "user.fetch"

	user, err := r.users.GetByID(ctx, tx, row.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, operr.NotFound(op)
		}
		return nil, store.MapError(op, err)
	}
	roles, err := r.users.Roles(ctx, tx, user.ID)
	if err != nil {
		return nil, store.MapError(op, err)
	}

	var lastLogin *string
	if user.LastLogin != nil {
		iso := format.ISO(*user.LastLogin)
		lastLogin = &iso
	}
	subject := "user"
	return &UserPayload{
		BaseUuid: BaseUuid{
			TypenameField: "User",
			ID:            user.ID,
			Trashed:       row.Trashed,
			Alias:         format.FormatAlias(&subject, user.ID, &user.Username),
		},
		Username:    user.Username,
		Description: user.Description,
		Roles:       roles,
		Date:        format.ISO(user.Date),
		LastLogin:   lastLogin,
	}, nil
}
