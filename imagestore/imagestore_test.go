package imagestore

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sweeklys/vmadm-go/vmerrors"
)

type fakeReceiver struct {
	mu       sync.Mutex
	present  map[string]bool
	received []string
}

func newFakeReceiver(present ...string) *fakeReceiver {
	m := map[string]bool{}
	for _, p := range present {
		m[p] = true
	}
	return &fakeReceiver{present: m}
}

func (f *fakeReceiver) IsPresent(ctx context.Context, dataset string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.present[dataset], nil
}

func (f *fakeReceiver) Receive(ctx context.Context, dataset string, r io.Reader) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	io.Copy(io.Discard, r)
	f.present[dataset] = true
	f.received = append(f.received, dataset)
	return nil
}

func gzipPayload(t *testing.T, data string) []byte {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte(data)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func TestImportRecursesThroughOriginChain(t *testing.T) {
	base := Image{UUID: "base", Files: []ImageFile{{Compression: "gzip"}}}
	child := Image{UUID: "child", Origin: "base", Files: []ImageFile{{Compression: "gzip"}}}
	payload := gzipPayload(t, "image-bytes")

	mux := http.NewServeMux()
	mux.HandleFunc("/base", func(w http.ResponseWriter, r *http.Request) { json.NewEncoder(w).Encode(base) })
	mux.HandleFunc("/child", func(w http.ResponseWriter, r *http.Request) { json.NewEncoder(w).Encode(child) })
	mux.HandleFunc("/base/file", func(w http.ResponseWriter, r *http.Request) { w.Write(payload) })
	mux.HandleFunc("/child/file", func(w http.ResponseWriter, r *http.Request) { w.Write(payload) })
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	recv := newFakeReceiver()
	imp := &Importer{
		Catalog:  NewCatalog(srv.URL),
		Storage:  recv,
		ImageDir: dir,
		PoolSlug: "zroot",
		Pool:     "zroot",
	}

	if err := imp.Import(context.Background(), "child"); err != nil {
		t.Fatalf("Import: %v", err)
	}

	if !recv.present["zroot/base"] {
		t.Errorf("expected base dataset received before child")
	}
	if !recv.present["zroot/child"] {
		t.Errorf("expected child dataset received")
	}
	if len(recv.received) != 2 || recv.received[0] != "zroot/base" || recv.received[1] != "zroot/child" {
		t.Errorf("receive order = %v, want [zroot/base zroot/child]", recv.received)
	}

	if _, err := os.Stat(manifestPath(dir, "zroot", "base")); err != nil {
		t.Errorf("expected base manifest cached: %v", err)
	}
	if _, err := os.Stat(manifestPath(dir, "zroot", "child")); err != nil {
		t.Errorf("expected child manifest cached: %v", err)
	}
}

func TestImportShortCircuitsWhenAlreadyPresent(t *testing.T) {
	recv := newFakeReceiver("zroot/existing")
	imp := &Importer{
		Catalog:  NewCatalog("http://unused.invalid"),
		Storage:  recv,
		ImageDir: t.TempDir(),
		Pool:     "zroot",
	}
	if err := imp.Import(context.Background(), "existing"); err != nil {
		t.Fatalf("Import should short-circuit without error, got %v", err)
	}
}

func TestImportUnsupportedCompressionFails(t *testing.T) {
	img := Image{UUID: "weird", Files: []ImageFile{{Compression: "rar"}}}
	mux := http.NewServeMux()
	mux.HandleFunc("/weird", func(w http.ResponseWriter, r *http.Request) { json.NewEncoder(w).Encode(img) })
	mux.HandleFunc("/weird/file", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("whatever")) })
	srv := httptest.NewServer(mux)
	defer srv.Close()

	imp := &Importer{
		Catalog:  NewCatalog(srv.URL),
		Storage:  newFakeReceiver(),
		ImageDir: t.TempDir(),
		Pool:     "zroot",
	}
	err := imp.Import(context.Background(), "weird")
	if err == nil {
		t.Fatal("expected UnsupportedCompression error")
	}
	uc, ok := err.(*vmerrors.UnsupportedCompression)
	if !ok {
		t.Fatalf("got %T (%v), want *vmerrors.UnsupportedCompression", err, err)
	}
	if uc.Name != "rar" {
		t.Errorf("Name = %q, want rar", uc.Name)
	}
}

func TestListLocalUnwrapsManifestWrapper(t *testing.T) {
	dir := t.TempDir()
	img := Image{UUID: "u1", Name: "base"}
	if err := persistManifest(dir, "zroot", img); err != nil {
		t.Fatalf("persistManifest: %v", err)
	}
	images, err := ListLocal(dir)
	if err != nil {
		t.Fatalf("ListLocal: %v", err)
	}
	if len(images) != 1 || images[0].UUID != "u1" {
		t.Errorf("got %v, want one image with uuid u1", images)
	}
}

func TestPruneRemovesOrphanedManifests(t *testing.T) {
	dir := t.TempDir()
	kept := Image{UUID: "kept"}
	orphan := Image{UUID: "orphan"}
	if err := persistManifest(dir, "zroot", kept); err != nil {
		t.Fatalf("persistManifest kept: %v", err)
	}
	if err := persistManifest(dir, "zroot", orphan); err != nil {
		t.Fatalf("persistManifest orphan: %v", err)
	}
	recv := newFakeReceiver("zroot/kept")
	removed, err := Prune(context.Background(), recv, dir, "zroot")
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if len(removed) != 1 || removed[0] != "orphan" {
		t.Errorf("removed = %v, want [orphan]", removed)
	}
	if _, err := os.Stat(filepath.Join(dir, "zroot-orphan.json")); !os.IsNotExist(err) {
		t.Errorf("expected orphan manifest deleted")
	}
	if _, err := os.Stat(filepath.Join(dir, "zroot-kept.json")); err != nil {
		t.Errorf("expected kept manifest to survive: %v", err)
	}
}
