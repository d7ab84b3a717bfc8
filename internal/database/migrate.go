package database

import (
	"gorm.io/gorm"

	"github.com/example/contentapi/internal/domain"
)

// AutoMigrateAll creates the legacy schema shape. The production schema is
// owned by the upstream system; this exists for local development and tests.
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// Shared identity space
		&domain.UuidRow{},

		// Entities + revision chains
		&domain.Entity{},
		&domain.EntityRevision{},
		&domain.EntityRevisionField{},
		&domain.EntityLink{},

		// Taxonomy tree
		&domain.TermTaxonomy{},
		&domain.TermTaxonomyEntity{},

		// Event sourcing + notifications
		&domain.EventLog{},
		&domain.EventParameter{},
		&domain.Notification{},
		&domain.Subscription{},

		// Accounts
		&domain.User{},
		&domain.Role{},
		&domain.RoleUser{},

		// Discussions
		&domain.Comment{},

		// Static pages + legacy extras
		&domain.PageRepository{},
		&domain.PageRevision{},
		&domain.Attachment{},
		&domain.BlogPost{},
	)
}
