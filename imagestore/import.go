package imagestore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/sweeklys/vmadm-go/vmerrors"
)

// Receiver is the subset of storage.Storage that Import needs — kept as an interface here
// so imagestore does not have to import storage and introduce a dependency in the wrong
// direction (storage has no need of imagestore).
type Receiver interface {
	IsPresent(ctx context.Context, dataset string) (bool, error)
	Receive(ctx context.Context, dataset string, r io.Reader) error
}

// Importer drives an image import: catalog fetch, recursive origin resolution,
// decompression, and receipt into the pool.
type Importer struct {
	Catalog  *Catalog
	Storage  Receiver
	ImageDir string
	PoolSlug string
	Pool     string
}

// Import brings uuid's dataset into the pool, recursively importing its origin chain
// first if needed. trail guards against a corrupt catalog describing an origin cycle.
func (imp *Importer) Import(ctx context.Context, uuid string) error {
	return imp.importWithTrail(ctx, uuid, map[string]bool{})
}

func (imp *Importer) importWithTrail(ctx context.Context, uuid string, trail map[string]bool) error {
	dataset := fmt.Sprintf("%s/%s", imp.Pool, uuid)
	if present, err := imp.Storage.IsPresent(ctx, dataset); err != nil {
		return err
	} else if present {
		return nil
	}

	if trail[uuid] {
		return vmerrors.Generic("origin chain cycle detected at %s", uuid)
	}
	trail[uuid] = true

	manifest, err := imp.Catalog.GetRemote(ctx, uuid)
	if err != nil {
		return err
	}

	if manifest.Origin != "" {
		originDataset := fmt.Sprintf("%s/%s", imp.Pool, manifest.Origin)
		present, err := imp.Storage.IsPresent(ctx, originDataset)
		if err != nil {
			return err
		}
		if !present {
			if err := imp.importWithTrail(ctx, manifest.Origin, trail); err != nil {
				return err
			}
		}
	}

	if len(manifest.Files) == 0 {
		return vmerrors.Generic("manifest for %s has no files", uuid)
	}

	resp, err := imp.Catalog.fetchFile(ctx, uuid)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp("", uuid+"-*.img")
	if err != nil {
		return vmerrors.Generic("creating temp file for %s: %w", uuid, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return vmerrors.Generic("downloading payload for %s: %w", uuid, err)
	}
	if err := tmp.Close(); err != nil {
		return vmerrors.Generic("closing temp file for %s: %w", uuid, err)
	}

	f, err := os.Open(tmpPath)
	if err != nil {
		return vmerrors.Generic("reopening temp file for %s: %w", uuid, err)
	}
	defer f.Close()

	decoded, err := decodeBody(manifest.Files[0].Compression, f)
	if err != nil {
		return err
	}
	defer decoded.Close()

	if err := imp.Storage.Receive(ctx, dataset, decoded); err != nil {
		return fmt.Errorf("receiving %s (caller should destroy the partial dataset): %w", dataset, err)
	}

	return persistManifest(imp.ImageDir, imp.PoolSlug, manifest)
}

// Prune removes cached manifests in imageDir with no corresponding `<pool>/<uuid>`
// dataset — a cleanup the original implementation exposed as `images gc`, carried here as
// `images prune` since nothing in the distilled spec's Non-goals excludes it.
func Prune(ctx context.Context, storage Receiver, imageDir, pool string) ([]string, error) {
	images, err := ListLocal(imageDir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(imageDir)
	if err != nil {
		return nil, vmerrors.Generic("reading image dir %s: %w", imageDir, err)
	}

	var removed []string
	for _, img := range images {
		dataset := fmt.Sprintf("%s/%s", pool, img.UUID)
		present, err := storage.IsPresent(ctx, dataset)
		if err != nil {
			return removed, err
		}
		if present {
			continue
		}
		for _, e := range entries {
			if !strings.Contains(e.Name(), img.UUID) {
				continue
			}
			if err := os.Remove(fmt.Sprintf("%s/%s", imageDir, e.Name())); err != nil {
				slog.Warn("imagestore.Prune: failed to remove stale manifest", "file", e.Name(), "error", err)
				continue
			}
			removed = append(removed, img.UUID)
		}
	}
	return removed, nil
}
