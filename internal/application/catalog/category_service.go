package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/catalog"
	"github.com/statyba/storefront/internal/domain/localization"
	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/statyba/storefront/internal/infrastructure/telemetry"
)

// CategoryService handles category-related business operations
type CategoryService struct {
	eventPublishing
	categoryRepo catalog.CategoryRepository
	productRepo  catalog.ProductRepository
	translator   Translator
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo catalog.CategoryRepository, productRepo catalog.ProductRepository, translator Translator) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		translator:   translatorOrDefault(translator),
	}
}

// Create creates a new category, as a root or under ParentID
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "category", "create")
	defer span.End()

	var (
		category *catalog.Category
		err      error
	)
	if req.ParentID != nil {
		parent, findErr := s.findParent(ctx, *req.ParentID)
		if findErr != nil {
			return nil, findErr
		}
		category, err = catalog.NewChildCategory(req.Name, req.Slug, parent)
	} else {
		category, err = catalog.NewCategory(req.Name, req.Slug)
	}
	if err != nil {
		return nil, err
	}

	if err := category.Update(req.Name, category.Slug, req.Description, req.SortOrder); err != nil {
		return nil, err
	}
	if req.IsVisible != nil {
		category.SetVisible(*req.IsVisible)
	}

	exists, err := s.categoryRepo.ExistsBySlug(ctx, category.Slug, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Category with this slug already exists")
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishDomainEvents(ctx, category)

	resp := ToCategoryResponse(category, nil)
	return &resp, nil
}

// Update updates the descriptive fields of a category
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := category.Update(req.Name, req.Slug, req.Description, req.SortOrder); err != nil {
		return nil, err
	}
	exists, err := s.categoryRepo.ExistsBySlug(ctx, category.Slug, &category.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Category with this slug already exists")
	}
	if req.IsVisible != nil {
		category.SetVisible(*req.IsVisible)
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, category)

	resp := ToCategoryResponse(category, nil)
	return &resp, nil
}

// Move re-parents a category and rewrites the paths of its whole subtree
func (s *CategoryService) Move(ctx context.Context, id uuid.UUID, req MoveCategoryRequest) (*CategoryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "category", "move")
	defer span.End()

	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var parent *catalog.Category
	if req.ParentID != nil {
		if *req.ParentID == category.ID {
			return nil, shared.NewDomainError("CATEGORY_CYCLE", "Category cannot be moved under itself or one of its descendants")
		}
		parent, err = s.findParent(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
	}

	descendants, err := s.categoryRepo.FindDescendants(ctx, category)
	if err != nil {
		return nil, err
	}
	height := 0
	for i := range descendants {
		if h := descendants[i].Level - category.Level; h > height {
			height = h
		}
	}

	oldPath, err := category.MoveTo(parent, height)
	if err != nil {
		return nil, err
	}
	for i := range descendants {
		descendants[i].RewritePath(oldPath, category.Path)
	}

	if err := s.categoryRepo.SaveAll(ctx, append([]catalog.Category{*category}, descendants...)); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishDomainEvents(ctx, category)

	moved, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(moved, nil)
	return &resp, nil
}

// Delete deletes a category without children or products
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	hasChildren, err := s.categoryRepo.HasChildren(ctx, id)
	if err != nil {
		return err
	}
	if hasChildren {
		return shared.NewDomainError("CATEGORY_HAS_CHILDREN", "Category has child categories and cannot be deleted")
	}
	count, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("CATEGORY_IN_USE", "Category is assigned to products and cannot be deleted")
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, catalog.NewCatalogChangedEvent(catalog.EventTypeCategoryChanged, catalog.AggregateTypeCategory, category.ID, category.Slug))
	return nil
}

// GetByID returns a category with its base field values
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category, nil)
	return &resp, nil
}

// GetBySlug returns a visible category with its visible children for the storefront
func (s *CategoryService) GetBySlug(ctx context.Context, slug, locale string) (*CategoryResponse, error) {
	category, err := findBySlug(ctx, s.translator, localization.EntityCategory, locale, slug, s.categoryRepo.FindBySlug, s.categoryRepo.FindByID)
	if err != nil {
		return nil, err
	}
	if !category.IsVisible {
		return nil, shared.ErrNotFound
	}

	tree, err := s.Tree(ctx, true, locale)
	if err != nil {
		return nil, err
	}
	if node := findNode(tree, category.ID); node != nil {
		return node, nil
	}
	// a hidden ancestor keeps the category off the storefront
	return nil, shared.ErrNotFound
}

// Tree returns the category hierarchy. With visibleOnly, hidden categories and
// everything below them are left out.
func (s *CategoryService) Tree(ctx context.Context, visibleOnly bool, locale string) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(ctx, visibleOnly)
	if err != nil {
		return nil, err
	}
	if visibleOnly {
		categories = withVisibleAncestors(categories)
	}

	ids := make([]uuid.UUID, len(categories))
	for i := range categories {
		ids[i] = categories[i].ID
	}
	values, err := s.translator.Resolve(ctx, localization.EntityCategory, ids, locale)
	if err != nil {
		return nil, err
	}

	return toCategoryTree(catalog.BuildTree(categories), values), nil
}

func (s *CategoryService) findParent(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	parent, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_PARENT", "Parent category not found")
		}
		return nil, err
	}
	return parent, nil
}

// withVisibleAncestors keeps categories whose every ancestor is in the list
func withVisibleAncestors(categories []catalog.Category) []catalog.Category {
	present := make(map[uuid.UUID]bool, len(categories))
	for i := range categories {
		present[categories[i].ID] = true
	}
	kept := make([]catalog.Category, 0, len(categories))
	for i := range categories {
		ok := true
		for _, ancestor := range categories[i].AncestorIDs() {
			if !present[ancestor] {
				ok = false
				break
			}
		}
		if ok {
			kept = append(kept, categories[i])
		}
	}
	return kept
}

func toCategoryTree(nodes []*catalog.CategoryNode, values map[uuid.UUID]localization.Values) []CategoryResponse {
	out := make([]CategoryResponse, len(nodes))
	for i, node := range nodes {
		out[i] = ToCategoryResponse(node.Category, values[node.Category.ID])
		if len(node.Children) > 0 {
			out[i].Children = toCategoryTree(node.Children, values)
		}
	}
	return out
}

func findNode(tree []CategoryResponse, id uuid.UUID) *CategoryResponse {
	for i := range tree {
		if tree[i].ID == id {
			return &tree[i]
		}
		if found := findNode(tree[i].Children, id); found != nil {
			return found
		}
	}
	return nil
}
