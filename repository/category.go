package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/superrabbithero/appmanage/models"
)

// CategoryUpdate lists the editable fields; nil fields are left untouched.
type CategoryUpdate struct {
	Name     *string
	ParentID *uint
	Path     *string
}

// CategoryNode is one entry of the category tree.
type CategoryNode struct {
	ID       uint            `json:"id"`
	Name     string          `json:"name"`
	Children []*CategoryNode `json:"children"`
}

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) All(ctx context.Context) ([]models.Category, error) {
	categories := make([]models.Category, 0)
	if err := r.db.WithContext(ctx).Order("id").Find(&categories).Error; err != nil {
		return nil, wrap(err, "failed to list categories")
	}
	return categories, nil
}

func (r *CategoryRepository) Get(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, notFoundOr(err, NotFound("category %d not found", id), "failed to load category")
	}
	return &category, nil
}

// Create adds a category; path defaults to "/<name>".
func (r *CategoryRepository) Create(ctx context.Context, name string, parentID *uint, path string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, InvalidArgument("category name is required")
	}
	if parentID != nil {
		if _, err := r.Get(ctx, *parentID); err != nil {
			return nil, err
		}
	}
	if path == "" {
		path = "/" + name
	}

	category := &models.Category{Name: name, ParentID: parentID, Path: path}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, wrap(err, "failed to create category")
	}
	return category, nil
}

func (r *CategoryRepository) Update(ctx context.Context, id uint, u CategoryUpdate) (*models.Category, error) {
	category, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	cols := make(map[string]interface{}, 3)
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.ParentID != nil {
		if *u.ParentID == id {
			return nil, InvalidArgument("category cannot be its own parent")
		}
		cols["parent_id"] = *u.ParentID
	}
	if u.Path != nil {
		cols["path"] = *u.Path
	}
	if len(cols) == 0 {
		return category, nil
	}

	if err := r.db.WithContext(ctx).Model(category).Updates(cols).Error; err != nil {
		return nil, wrap(err, "failed to update category")
	}
	return r.Get(ctx, id)
}

func (r *CategoryRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Category{}, id)
	if res.Error != nil {
		return wrap(res.Error, "failed to delete category")
	}
	if res.RowsAffected == 0 {
		return NotFound("category %d not found", id)
	}
	return nil
}

func (r *CategoryRepository) Children(ctx context.Context, parentID uint) ([]models.Category, error) {
	children := make([]models.Category, 0)
	if err := r.db.WithContext(ctx).Where("parent_id = ?", parentID).Order("id").Find(&children).Error; err != nil {
		return nil, wrap(err, "failed to list categories")
	}
	return children, nil
}

// Tree nests every category under its parent. Categories whose parent no
// longer exists are left out.
func (r *CategoryRepository) Tree(ctx context.Context) ([]*CategoryNode, error) {
	categories, err := r.All(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make(map[uint]*CategoryNode, len(categories))
	for _, c := range categories {
		nodes[c.ID] = &CategoryNode{ID: c.ID, Name: c.Name, Children: []*CategoryNode{}}
	}

	tree := make([]*CategoryNode, 0)
	for _, c := range categories {
		node := nodes[c.ID]
		if c.ParentID == nil {
			tree = append(tree, node)
			continue
		}
		if parent, ok := nodes[*c.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		}
	}
	return tree, nil
}
