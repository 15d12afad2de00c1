package handler

import (
	"bytes"
	"strings"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/superrabbithero/appmanage/models"
	"github.com/superrabbithero/appmanage/repository"
	"github.com/superrabbithero/appmanage/storage"
)

const systemIOS = "ios"

// ServerAddress reports the host and port the client reached us on.
func (h *Handler) ServerAddress(c *fiber.Ctx) error {
	host := c.Hostname()
	if !strings.Contains(host, ":") {
		host += ":80"
	}
	return ok(c, host)
}

type createPackageRequest struct {
	AppName     string `json:"appname"`
	Version     string `json:"version"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	System      string `json:"system"`
	Comment     string `json:"comment"`
	Ar          string `json:"ar"`
	IsDebug     bool   `json:"is_debug"`
	PackageName string `json:"package_name"`
	OssKey      string `json:"oss_key"`
	Icon        string `json:"icon"`
}

// iconID stores the icon once per distinct payload and returns its id.
func (h *Handler) iconID(c *fiber.Ctx, payload string) (*uint, error) {
	if payload == "" {
		return nil, nil
	}
	icon, err := storage.DecodeIcon(payload)
	if err != nil {
		return nil, repository.InvalidArgument("invalid icon: %v", err)
	}

	id, err := h.icons.IDByName(c.UserContext(), icon.Name)
	if err != nil {
		return nil, err
	}
	if id != 0 {
		return &id, nil
	}

	url, err := h.store.Upload(c.UserContext(), bytes.NewReader(icon.PNG), storage.IconKey(icon.Name), "image/png")
	if err != nil {
		return nil, repository.External(err, "failed to upload icon")
	}
	stored, err := h.icons.Create(c.UserContext(), icon.Name, url)
	if err != nil {
		return nil, err
	}
	return &stored.ID, nil
}

func (h *Handler) CreatePackage(c *fiber.Ctx) error {
	var req createPackageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Ar == "" {
		req.Ar = "x64"
	}

	iconID, err := h.iconID(c, req.Icon)
	if err != nil {
		return fail(c, err)
	}

	pkg := &models.Package{
		AppName:     req.AppName,
		Version:     req.Version,
		Name:        req.Name,
		Size:        req.Size,
		System:      req.System,
		IsDebug:     req.IsDebug,
		Comment:     req.Comment,
		Ar:          req.Ar,
		PackageName: req.PackageName,
		OssKey:      req.OssKey,
		IconID:      iconID,
	}
	if err := h.packages.Create(c.UserContext(), pkg); err != nil {
		return fail(c, err)
	}

	// An iOS package without its manifest cannot be installed, so the row
	// goes again when publishing fails.
	if pkg.System == systemIOS {
		_, err := storage.PublishManifest(c.UserContext(), h.store, pkg.OssKey, pkg.PackageName, pkg.Version, storage.AppTitle(pkg.AppName))
		if err != nil {
			if derr := h.packages.Delete(c.UserContext(), pkg.ID); derr != nil {
				log.WithError(derr).WithField("id", pkg.ID).Error("failed to remove package without manifest")
			}
			return fail(c, repository.External(err, "failed to publish install manifest"))
		}
	}
	return created(c, pkg)
}

func (h *Handler) UpdatePackage(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req struct {
		Comment *string `json:"comment"`
		Name    *string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if _, err := h.packages.UpdateInfo(c.UserContext(), id, repository.PackageUpdate{Comment: req.Comment, Name: req.Name}); err != nil {
		return fail(c, err)
	}
	pkg, err := h.packages.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, pkg)
}

// DeletePackage removes the stored file first and the row second. When the
// row cannot be deleted the file is restored.
func (h *Handler) DeletePackage(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	pkg, err := h.packages.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}

	if err := h.store.Delete(c.UserContext(), pkg.OssKey); err != nil {
		return fail(c, repository.External(err, "failed to delete package file"))
	}

	if err := h.packages.Delete(c.UserContext(), id); err != nil {
		if rerr := h.store.Restore(c.UserContext(), pkg.OssKey); rerr != nil {
			log.WithError(rerr).WithField("key", pkg.OssKey).Error("failed to restore package file")
		}
		return fail(c, err)
	}
	return ok(c, fiber.Map{"id": id})
}

func (h *Handler) GetPackage(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	pkg, err := h.packages.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}

	resp := fiber.Map{"package": pkg, "download_url": nil, "icon_url": nil, "plist_url": nil}
	if pkg.OssKey != "" {
		signed, err := h.store.SignURL(pkg.OssKey, h.signedURLTTL)
		if err != nil {
			log.WithError(err).WithField("key", pkg.OssKey).Error("failed to sign download url")
		} else {
			resp["download_url"] = signed.URL
		}
	}
	if pkg.Icon != nil {
		resp["icon_url"] = pkg.Icon.URL
	}
	if pkg.System == systemIOS {
		resp["plist_url"] = storage.InstallURL(h.store.PublicURL(storage.ManifestKey(pkg.OssKey)))
	}
	return ok(c, resp)
}

func (h *Handler) ListVersions(c *fiber.Ctx) error {
	versions, err := h.packages.Versions(c.UserContext(), c.Query("appname", "default"), c.Query("system"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"versions": versions})
}

func (h *Handler) SearchPackages(c *fiber.Ctx) error {
	f := repository.PackageFilter{
		AppName: c.Query("appname"),
		System:  c.Query("system"),
		Version: c.Query("version"),
		Ar:      c.Query("ar"),
	}
	if f.AppName == "" {
		return badRequest(c, "appname is required")
	}
	page, perPage := pageParams(c)

	p, err := h.packages.Search(c.UserContext(), f, page, perPage)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, p)
}

// DownloadLink builds the link for a file served from /static/app. Apple
// packages get an itms-services link to their manifest instead.
func (h *Handler) DownloadLink(c *fiber.Ctx) error {
	filename := c.Query("filename")
	if filename == "" {
		return badRequest(c, "filename is required")
	}

	base := c.BaseURL() + "/static/app"
	if strings.HasSuffix(filename, ".ipa") {
		manifest := strings.TrimSuffix(filename, ".ipa") + ".plist"
		return ok(c, fiber.Map{"link": storage.InstallURL(base + "/" + manifest)})
	}
	return ok(c, fiber.Map{"link": base + "/" + filename})
}
