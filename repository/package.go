package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/superrabbithero/appmanage/models"
)

// PackageUpdate carries the fields a package can be renamed or re-described with.
type PackageUpdate struct {
	Comment *string
	Name    *string
}

// PackageFilter narrows a package search. AppName is required; the other
// fields accept "", "all" and "全部" as "no filter".
type PackageFilter struct {
	AppName string
	System  string
	Version string
	Ar      string
}

func wildcard(v string) bool {
	return v == "" || v == "all" || v == "全部"
}

func (f PackageFilter) apply(q *gorm.DB) *gorm.DB {
	q = q.Where("appname = ?", f.AppName)
	if !wildcard(f.System) {
		q = q.Where("system = ?", f.System)
	}
	if !wildcard(f.Version) {
		q = q.Where("version = ?", f.Version)
	}
	if !wildcard(f.Ar) {
		q = q.Where("ar = ?", f.Ar)
	}
	return q
}

type PackageRepository struct {
	db *gorm.DB
}

func NewPackageRepository(db *gorm.DB) *PackageRepository {
	return &PackageRepository{db: db}
}

func withIcon(db *gorm.DB) *gorm.DB {
	return db.Preload("Icon")
}

func (r *PackageRepository) Get(ctx context.Context, id uint) (*models.Package, error) {
	var pkg models.Package
	if err := r.db.WithContext(ctx).Scopes(withIcon).First(&pkg, id).Error; err != nil {
		return nil, notFoundOr(err, NotFound("package %d not found", id), "failed to load package")
	}
	return &pkg, nil
}

func (r *PackageRepository) Create(ctx context.Context, pkg *models.Package) error {
	if pkg.Version == "" || pkg.Name == "" || pkg.System == "" || pkg.PackageName == "" || pkg.OssKey == "" {
		return InvalidArgument("version, name, system, package_name and oss_key are required")
	}
	return wrap(r.db.WithContext(ctx).Create(pkg).Error, "failed to create package")
}

// UpdateInfo changes the comment and/or name of a package.
func (r *PackageRepository) UpdateInfo(ctx context.Context, id uint, u PackageUpdate) (int64, error) {
	cols := make(map[string]interface{}, 2)
	if u.Comment != nil {
		cols["comment"] = *u.Comment
	}
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if len(cols) == 0 {
		return 0, InvalidArgument("comment or name is required")
	}

	res := r.db.WithContext(ctx).Model(&models.Package{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return 0, wrap(res.Error, "failed to update package")
	}
	if res.RowsAffected == 0 {
		return 0, NotFound("package %d not found", id)
	}
	return res.RowsAffected, nil
}

// Versions lists the distinct versions published for appname.
func (r *PackageRepository) Versions(ctx context.Context, appname, system string) ([]string, error) {
	q := r.db.WithContext(ctx).Model(&models.Package{}).Where("appname = ?", appname)
	if !wildcard(system) {
		q = q.Where("system = ?", system)
	}

	versions := make([]string, 0)
	if err := q.Distinct("version").Order("version").Pluck("version", &versions).Error; err != nil {
		return nil, wrap(err, "failed to list versions")
	}
	return versions, nil
}

func (r *PackageRepository) Search(ctx context.Context, f PackageFilter, page, perPage int) (Page[models.Package], error) {
	q := f.apply(r.db.WithContext(ctx).Model(&models.Package{}))
	p, err := paginate[models.Package](q, "create_time DESC, id DESC", page, perPage, withIcon)
	if err != nil {
		return Page[models.Package]{}, wrap(err, "failed to search packages")
	}
	return p, nil
}

func (r *PackageRepository) Count(ctx context.Context, f PackageFilter) (int64, error) {
	var n int64
	if err := f.apply(r.db.WithContext(ctx).Model(&models.Package{})).Count(&n).Error; err != nil {
		return 0, wrap(err, "failed to count packages")
	}
	return n, nil
}

func (r *PackageRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Package{}, id)
	if res.Error != nil {
		return wrap(res.Error, "failed to delete package")
	}
	if res.RowsAffected == 0 {
		return NotFound("package %d not found", id)
	}
	return nil
}

func (r *PackageRepository) DeleteByPackageName(ctx context.Context, packageName string) (int64, error) {
	res := r.db.WithContext(ctx).Where("package_name = ?", packageName).Delete(&models.Package{})
	if res.Error != nil {
		return 0, wrap(res.Error, "failed to delete packages")
	}
	return res.RowsAffected, nil
}
