package storage

import (
	"bytes"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"image"
	_ "image/jpeg"
	"image/png"
	"strings"

	"github.com/disintegration/gift"
	"github.com/pkg/errors"
)

// MaxIconSize is the edge length icons are scaled down to.
const MaxIconSize = 256

// Icon is a decoded package icon ready for upload.
type Icon struct {
	// Name is the md5 of the base64 payload and identifies the icon.
	Name string
	PNG  []byte
}

// DecodeIcon turns a base64 icon, with or without a data URL prefix, into a
// PNG no larger than MaxIconSize on either edge.
func DecodeIcon(payload string) (*Icon, error) {
	sum := md5.Sum([]byte(payload))
	name := hex.EncodeToString(sum[:])

	if i := strings.Index(payload, ";base64,"); i >= 0 {
		payload = payload[i+len(";base64,"):]
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, errors.Wrap(err, "icon is not valid base64")
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode icon")
	}

	var filters []gift.Filter
	if b := src.Bounds(); b.Dx() > MaxIconSize || b.Dy() > MaxIconSize {
		if b.Dx() >= b.Dy() {
			filters = append(filters, gift.Resize(MaxIconSize, 0, gift.LanczosResampling))
		} else {
			filters = append(filters, gift.Resize(0, MaxIconSize, gift.LanczosResampling))
		}
	}
	g := gift.New(filters...)
	dst := image.NewNRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, errors.Wrap(err, "failed to encode icon")
	}
	return &Icon{Name: name, PNG: buf.Bytes()}, nil
}
