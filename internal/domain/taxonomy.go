package domain

// TermTaxonomy is a node of the taxonomy tree. ParentID is nil only for the
// synthetic root of an instance; the tree is bounded in depth and acyclic.
type TermTaxonomy struct {
	ID          int64  `gorm:"primaryKey;column:id" json:"id"`
	Instance    string `gorm:"not null;column:instance" json:"instance"`
	Name        string `gorm:"not null;column:name" json:"name"`
	Description string `gorm:"column:description" json:"description"`
	Weight      int    `gorm:"not null;default:0;column:weight" json:"weight"`
	ParentID    *int64 `gorm:"index;column:parent_id" json:"parent_id"`
}

func (TermTaxonomy) TableName() string { return "term_taxonomy" }

// TermTaxonomyEntity tags an entity at a taxonomy node. Position orders the
// entities within one node, ahead of any child terms.
type TermTaxonomyEntity struct {
	ID             int64 `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	TermTaxonomyID int64 `gorm:"not null;index;column:term_taxonomy_id" json:"term_taxonomy_id"`
	EntityID       int64 `gorm:"not null;index;column:entity_id" json:"entity_id"`
	Position       int   `gorm:"not null;default:0;column:position" json:"position"`
}

func (TermTaxonomyEntity) TableName() string { return "term_taxonomy_entity" }
