package storage

import (
	"bytes"
	"context"
	"strconv"

	"github.com/pkg/errors"
	"howett.net/plist"
)

// appTitles names the apps by their numeric appname.
var appTitles = []string{"学测学生端", "学测教师端", "学测家长端"}

// AppTitle returns the display title for appname, falling back to appname.
func AppTitle(appname string) string {
	if i, err := strconv.Atoi(appname); err == nil && i >= 0 && i < len(appTitles) {
		return appTitles[i]
	}
	return appname
}

type manifestAsset struct {
	Kind string `plist:"kind"`
	URL  string `plist:"url"`
}

type manifestMetadata struct {
	BundleIdentifier string `plist:"bundle-identifier"`
	BundleVersion    string `plist:"bundle-version"`
	Kind             string `plist:"kind"`
	Title            string `plist:"title"`
}

type manifestItem struct {
	Assets   []manifestAsset  `plist:"assets"`
	Metadata manifestMetadata `plist:"metadata"`
}

type manifest struct {
	Items []manifestItem `plist:"items"`
}

// Manifest renders the over-the-air install manifest for an ipa at ipaURL.
func Manifest(ipaURL, bundleID, version, title string) ([]byte, error) {
	m := manifest{Items: []manifestItem{{
		Assets: []manifestAsset{{Kind: "software-package", URL: ipaURL}},
		Metadata: manifestMetadata{
			BundleIdentifier: bundleID,
			BundleVersion:    version,
			Kind:             "software",
			Title:            title,
		},
	}}}

	out, err := plist.MarshalIndent(m, plist.XMLFormat, "\t")
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode manifest")
	}
	return out, nil
}

// PublishManifest uploads the install manifest of an ipa stored under
// packageKey and returns the manifest URL.
func PublishManifest(ctx context.Context, s Store, packageKey, bundleID, version, title string) (string, error) {
	body, err := Manifest(s.PublicURL(packageKey), bundleID, version, title)
	if err != nil {
		return "", err
	}
	return s.Upload(ctx, bytes.NewReader(body), ManifestKey(packageKey), "application/x-plist")
}

// InstallURL is the itms-services link that installs from a manifest URL.
func InstallURL(manifestURL string) string {
	return "itms-services://?action=download-manifest&url=" + manifestURL
}
