package handler_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superrabbithero/appmanage/models"
)

func iconPayload(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 32, 32))))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestCreateIOSPackage(t *testing.T) {
	s := newTestServer(t)
	icon := iconPayload(t)

	body := map[string]interface{}{
		"appname":      "0",
		"version":      "1.2.0",
		"name":         "student.ipa",
		"size":         1024,
		"system":       "ios",
		"package_name": "com.example.student",
		"oss_key":      "packages/student/1.2.0.ipa",
		"icon":         icon,
	}
	status, env := s.do(t, http.MethodPost, "/api/packages", body, "")
	require.Equal(t, http.StatusCreated, status, env.Msg)

	_, ok := s.store.Object("packages/plists/student/1.2.0.plist")
	assert.True(t, ok, "manifest uploaded")

	body["version"] = "1.3.0"
	body["oss_key"] = "packages/student/1.3.0.ipa"
	status, _ = s.do(t, http.MethodPost, "/api/packages", body, "")
	require.Equal(t, http.StatusCreated, status)

	var icons int64
	require.NoError(t, s.db.Model(&models.Icon{}).Count(&icons).Error)
	assert.EqualValues(t, 1, icons, "same icon stored once")

	status, env = s.do(t, http.MethodGet, "/api/packages/1", nil, "")
	require.Equal(t, http.StatusOK, status)
	var detail struct {
		Package     models.Package `json:"package"`
		DownloadURL string         `json:"download_url"`
		IconURL     string         `json:"icon_url"`
		PlistURL    string         `json:"plist_url"`
	}
	decode(t, env, &detail)
	assert.Equal(t, "1.2.0", detail.Package.Version)
	assert.Equal(t, "x64", detail.Package.Ar)
	assert.NotEmpty(t, detail.DownloadURL)
	assert.True(t, strings.HasPrefix(detail.IconURL, "https://cdn.example.com/package_icons/"))
	assert.Equal(t, "itms-services://?action=download-manifest&url=https://cdn.example.com/packages/plists/student/1.2.0.plist", detail.PlistURL)

	status, env = s.do(t, http.MethodGet, "/api/packages/versions?appname=0&system=ios", nil, "")
	require.Equal(t, http.StatusOK, status)
	var versions struct {
		Versions []string `json:"versions"`
	}
	decode(t, env, &versions)
	assert.Equal(t, []string{"1.2.0", "1.3.0"}, versions.Versions)

	status, _ = s.do(t, http.MethodPost, "/api/packages", map[string]interface{}{"system": "android"}, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCreateIOSPackageManifestFailure(t *testing.T) {
	s := newTestServer(t)
	s.store.UploadErr = errors.New("bucket unavailable")

	status, env := s.do(t, http.MethodPost, "/api/packages", map[string]interface{}{
		"appname":      "1",
		"version":      "2.0.0",
		"name":         "t.ipa",
		"system":       "ios",
		"package_name": "com.example.t",
		"oss_key":      "packages/t/2.0.0.ipa",
	}, "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "failed to publish install manifest", env.Msg)

	var n int64
	require.NoError(t, s.db.Model(&models.Package{}).Count(&n).Error)
	assert.EqualValues(t, 0, n)
}

func (s *testServer) seedPackage(t *testing.T) models.Package {
	t.Helper()
	pkg := models.Package{AppName: "1", Version: "1.0", Name: "t.apk", System: "android", PackageName: "com.t", OssKey: "packages/t.apk"}
	require.NoError(t, s.db.Create(&pkg).Error)
	_, err := s.store.Upload(context.Background(), strings.NewReader("apk"), pkg.OssKey, "")
	require.NoError(t, err)
	return pkg
}

func TestDeletePackage(t *testing.T) {
	s := newTestServer(t)
	pkg := s.seedPackage(t)

	status, _ := s.do(t, http.MethodDelete, "/api/packages/1", nil, "")
	require.Equal(t, http.StatusOK, status)
	_, ok := s.store.Object(pkg.OssKey)
	assert.False(t, ok)

	status, _ = s.do(t, http.MethodDelete, "/api/packages/1", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDeletePackageStorageFailure(t *testing.T) {
	s := newTestServer(t)
	pkg := s.seedPackage(t)
	s.store.DeleteErr = errors.New("bucket unavailable")

	status, env := s.do(t, http.MethodDelete, "/api/packages/1", nil, "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "failed to delete package file", env.Msg)

	var n int64
	require.NoError(t, s.db.Model(&models.Package{}).Where("id = ?", pkg.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestUpdateAndSearchPackages(t *testing.T) {
	s := newTestServer(t)
	s.seedPackage(t)
	token := s.token(t)

	status, _ := s.do(t, http.MethodPut, "/api/packages/1", map[string]interface{}{}, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, env := s.do(t, http.MethodPut, "/api/packages/1", map[string]interface{}{"comment": "fixes"}, "")
	require.Equal(t, http.StatusOK, status)
	var pkg models.Package
	decode(t, env, &pkg)
	assert.Equal(t, "fixes", pkg.Comment)

	status, _ = s.do(t, http.MethodGet, "/api/packages/search?appname=1", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = s.do(t, http.MethodGet, "/api/packages/search?appname=1&system=全部", nil, token)
	require.Equal(t, http.StatusOK, status)
	var page struct {
		Items []models.Package `json:"items"`
		Total int64            `json:"total"`
	}
	decode(t, env, &page)
	assert.EqualValues(t, 1, page.Total)

	status, env = s.do(t, http.MethodGet, "/api/packages/download?filename=app.ipa", nil, "")
	require.Equal(t, http.StatusOK, status)
	var link struct {
		Link string `json:"link"`
	}
	decode(t, env, &link)
	assert.True(t, strings.HasPrefix(link.Link, "itms-services://?action=download-manifest&url="))
	assert.True(t, strings.HasSuffix(link.Link, "/static/app/app.plist"))
}
