package domain

import "fmt"

// Discriminator identifies which concrete kind a row in the shared uuid
// table refers to. The set is closed; every id in the store carries exactly
// one of these.
type Discriminator string

const (
	DiscriminatorAttachment     Discriminator = "attachment"
	DiscriminatorBlogPost       Discriminator = "blogPost"
	DiscriminatorComment        Discriminator = "comment"
	DiscriminatorEntity         Discriminator = "entity"
	DiscriminatorEntityRevision Discriminator = "entityRevision"
	DiscriminatorPage           Discriminator = "page"
	DiscriminatorPageRevision   Discriminator = "pageRevision"
	DiscriminatorTaxonomyTerm   Discriminator = "taxonomyTerm"
	DiscriminatorUser           Discriminator = "user"
)

// Discriminators lists every kind, in the order the store enumerates them.
var Discriminators = []Discriminator{
	DiscriminatorAttachment,
	DiscriminatorBlogPost,
	DiscriminatorComment,
	DiscriminatorEntity,
	DiscriminatorEntityRevision,
	DiscriminatorPage,
	DiscriminatorPageRevision,
	DiscriminatorTaxonomyTerm,
	DiscriminatorUser,
}

func ParseDiscriminator(raw string) (Discriminator, error) {
	d := Discriminator(raw)
	for _, known := range Discriminators {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown uuid discriminator %q", raw)
}

// Trashable reports whether soft-deleting ids of this kind is permitted.
// Revisions and users are preserved verbatim; users are only removed through
// the dedicated erasure flow.
func (d Discriminator) Trashable() bool {
	switch d {
	case DiscriminatorEntityRevision, DiscriminatorUser:
		return false
	default:
		return true
	}
}
