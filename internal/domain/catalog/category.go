package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/shared"
)

// MaxCategoryDepth is the maximum depth of category hierarchy
const MaxCategoryDepth = 5

// Category is a node of the storefront category tree.
// Path is a materialized path of ancestor IDs joined with "/", ending with the category's own ID.
type Category struct {
	shared.BaseAggregateRoot
	Name        string     `gorm:"type:varchar(120);not null"`
	Slug        string     `gorm:"type:varchar(160);not null;uniqueIndex"`
	Description string     `gorm:"type:text"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index"`
	Path        string     `gorm:"type:varchar(500);not null;index"`
	Level       int        `gorm:"not null;default:0"`
	SortOrder   int        `gorm:"not null;default:0"`
	IsVisible   bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a new root category
func NewCategory(name, slug string) (*Category, error) {
	name = strings.TrimSpace(name)
	if err := validateName("Category", name, 120); err != nil {
		return nil, err
	}
	resolved, err := resolveSlug(slug, name)
	if err != nil {
		return nil, err
	}

	category := &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              resolved,
		IsVisible:         true,
	}
	category.Path = category.ID.String()
	category.AddDomainEvent(NewCatalogChangedEvent(EventTypeCategoryChanged, AggregateTypeCategory, category.ID, category.Slug))
	return category, nil
}

// NewChildCategory creates a new category under parent
func NewChildCategory(name, slug string, parent *Category) (*Category, error) {
	if parent == nil {
		return nil, shared.NewDomainError("INVALID_PARENT", "Parent category is required")
	}
	if parent.Level >= MaxCategoryDepth-1 {
		return nil, shared.NewDomainError("MAX_DEPTH_EXCEEDED", fmt.Sprintf("Category depth cannot exceed %d levels", MaxCategoryDepth))
	}

	category, err := NewCategory(name, slug)
	if err != nil {
		return nil, err
	}
	parentID := parent.ID
	category.ParentID = &parentID
	category.Level = parent.Level + 1
	category.Path = parent.Path + "/" + category.ID.String()
	return category, nil
}

// Update updates the category's descriptive fields
func (c *Category) Update(name, slug, description string, sortOrder int) error {
	name = strings.TrimSpace(name)
	if err := validateName("Category", name, 120); err != nil {
		return err
	}
	resolved, err := resolveSlug(slug, name)
	if err != nil {
		return err
	}

	c.Name = name
	c.Slug = resolved
	c.Description = description
	c.SortOrder = sortOrder
	c.changed()
	return nil
}

// SetVisible shows or hides the category on the storefront
func (c *Category) SetVisible(visible bool) {
	if c.IsVisible == visible {
		return
	}
	c.IsVisible = visible
	c.changed()
}

// MoveTo re-parents the category. A nil parent makes it a root.
// It returns the old path so descendants can be rewritten with RewritePath.
func (c *Category) MoveTo(parent *Category, subtreeHeight int) (string, error) {
	oldPath := c.Path
	if parent == nil {
		c.ParentID = nil
		c.Level = 0
		c.Path = c.ID.String()
		c.changed()
		return oldPath, nil
	}

	if parent.ID == c.ID || c.IsAncestorOf(parent) {
		return "", shared.NewDomainError("CATEGORY_CYCLE", "Category cannot be moved under itself or one of its descendants")
	}
	if parent.Level+1+subtreeHeight >= MaxCategoryDepth {
		return "", shared.NewDomainError("MAX_DEPTH_EXCEEDED", fmt.Sprintf("Category depth cannot exceed %d levels", MaxCategoryDepth))
	}

	parentID := parent.ID
	c.ParentID = &parentID
	c.Level = parent.Level + 1
	c.Path = parent.Path + "/" + c.ID.String()
	c.changed()
	return oldPath, nil
}

// RewritePath moves a descendant whose ancestor path changed from oldPrefix to newPrefix
func (c *Category) RewritePath(oldPrefix, newPrefix string) {
	if !strings.HasPrefix(c.Path, oldPrefix+"/") {
		return
	}
	c.Path = newPrefix + strings.TrimPrefix(c.Path, oldPrefix)
	c.Level = strings.Count(c.Path, "/")
	c.UpdatedAt = time.Now()
}

// IsRoot returns true if this is a root category
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// AncestorIDs returns the IDs of all ancestor categories, root first
func (c *Category) AncestorIDs() []uuid.UUID {
	parts := strings.Split(c.Path, "/")
	if len(parts) <= 1 {
		return nil
	}
	ancestors := make([]uuid.UUID, 0, len(parts)-1)
	for _, part := range parts[:len(parts)-1] {
		if id, err := uuid.Parse(part); err == nil {
			ancestors = append(ancestors, id)
		}
	}
	return ancestors
}

// IsAncestorOf returns true if this category is an ancestor of other
func (c *Category) IsAncestorOf(other *Category) bool {
	if other == nil || other.Path == "" {
		return false
	}
	return strings.HasPrefix(other.Path, c.Path+"/")
}

func (c *Category) changed() {
	c.UpdatedAt = time.Now()
	c.AddDomainEvent(NewCatalogChangedEvent(EventTypeCategoryChanged, AggregateTypeCategory, c.ID, c.Slug))
}

// CategoryNode is a category with its children, used to render the tree
type CategoryNode struct {
	Category *Category
	Children []*CategoryNode
}

// BuildTree arranges a flat category list into root nodes.
// Siblings keep the order of the input slice; orphans whose parent is absent become roots.
func BuildTree(categories []Category) []*CategoryNode {
	nodes := make(map[uuid.UUID]*CategoryNode, len(categories))
	for i := range categories {
		nodes[categories[i].ID] = &CategoryNode{Category: &categories[i]}
	}

	roots := make([]*CategoryNode, 0)
	for i := range categories {
		node := nodes[categories[i].ID]
		if pid := categories[i].ParentID; pid != nil {
			if parent, ok := nodes[*pid]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}
