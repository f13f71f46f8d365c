// Package imagestore browses the remote image catalog, fetches manifests and file
// payloads, and imports images into the storage pool, including recursive origin-chain
// resolution.
package imagestore

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sweeklys/vmadm-go/vmerrors"
)

// ImageFile describes one downloadable payload belonging to an Image.
type ImageFile struct {
	Size        int64  `json:"size"`
	SHA1        string `json:"sha1"`
	Compression string `json:"compression"`
}

// Image is a catalog manifest.
type Image struct {
	V           int         `json:"v"`
	UUID        string      `json:"uuid"`
	Name        string      `json:"name"`
	Version     string      `json:"version"`
	Type        string      `json:"type"`
	OS          string      `json:"os"`
	Origin      string      `json:"origin,omitempty"`
	Files       []ImageFile `json:"files"`
	PublishedAt string      `json:"published_at,omitempty"`
	Public      bool        `json:"public"`
	State       string      `json:"state"`
	Disabled    bool        `json:"disabled"`
}

// ManifestWrapper is the on-disk form a manifest is cached in: `<image_dir>/<pool-slug>-
// <uuid>.json`.
type ManifestWrapper struct {
	Zpool    string `json:"zpool"`
	Manifest Image  `json:"manifest"`
}

func manifestPath(imageDir, poolSlug, uuid string) string {
	return filepath.Join(imageDir, poolSlug+"-"+uuid+".json")
}

// ListLocal reads every cached manifest JSON file in imageDir and unwraps it.
func ListLocal(imageDir string) ([]Image, error) {
	entries, err := os.ReadDir(imageDir)
	if err != nil {
		return nil, vmerrors.Generic("reading image dir %s: %w", imageDir, err)
	}
	var out []Image
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(imageDir, e.Name()))
		if err != nil {
			return nil, vmerrors.Generic("reading manifest %s: %w", e.Name(), err)
		}
		var w ManifestWrapper
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, vmerrors.Generic("decoding manifest %s: %w", e.Name(), err)
		}
		out = append(out, w.Manifest)
	}
	return out, nil
}

// GetLocal reads a single cached manifest by UUID, if present.
func GetLocal(imageDir, poolSlug, uuid string) (Image, bool, error) {
	data, err := os.ReadFile(manifestPath(imageDir, poolSlug, uuid))
	if os.IsNotExist(err) {
		return Image{}, false, nil
	}
	if err != nil {
		return Image{}, false, vmerrors.Generic("reading cached manifest for %s: %w", uuid, err)
	}
	var w ManifestWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		return Image{}, false, vmerrors.Generic("decoding cached manifest for %s: %w", uuid, err)
	}
	return w.Manifest, true, nil
}

func persistManifest(imageDir, poolSlug string, img Image) error {
	w := ManifestWrapper{Zpool: poolSlug, Manifest: img}
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return vmerrors.Generic("encoding manifest for %s: %w", img.UUID, err)
	}
	return os.WriteFile(manifestPath(imageDir, poolSlug, img.UUID), data, 0o644)
}

// decodeBody returns a reader that streams r already decompressed, according to
// compression.
func decodeBody(compression string, r io.Reader) (io.ReadCloser, error) {
	switch compression {
	case "bzip2":
		return io.NopCloser(newBzip2Reader(r)), nil
	case "gzip":
		return newGzipReader(r)
	default:
		return nil, &vmerrors.UnsupportedCompression{Name: compression}
	}
}
