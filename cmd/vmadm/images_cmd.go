package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sweeklys/vmadm-go/imagestore"
)

// ImagesCmd groups every image-catalog verb under one namespace, the way the original
// vmadm groups `vmadm avail`, `image-list`, `image-get`, `image-import`.
type ImagesCmd struct {
	Avail  ImagesAvailCmd  `cmd:"" help:"list images available in the remote catalog"`
	List   ImagesListCmd   `cmd:"" help:"list images cached locally"`
	Get    ImagesGetCmd    `cmd:"" help:"print one cached image's manifest as JSON"`
	Import ImagesImportCmd `cmd:"" help:"import an image, and its origin chain, into the pool"`
	Prune  ImagesPruneCmd  `cmd:"" help:"remove cached manifests with no corresponding dataset"`
}

func printImageTable(images []imagestore.Image) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "UUID\tNAME\tVERSION\tOS\tTYPE")
	for _, img := range images {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", img.UUID, img.Name, img.Version, img.OS, img.Type)
	}
	w.Flush()
}

type ImagesAvailCmd struct{}

func (c *ImagesAvailCmd) Run(cctx *Context) error {
	images, err := cctx.Importer.Catalog.ListRemote(context.Background())
	if err != nil {
		return err
	}
	printImageTable(images)
	return nil
}

type ImagesListCmd struct{}

func (c *ImagesListCmd) Run(cctx *Context) error {
	images, err := imagestore.ListLocal(cctx.Settings.ImageDir)
	if err != nil {
		return err
	}
	printImageTable(images)
	return nil
}

type ImagesGetCmd struct {
	UUID string `arg:"" help:"UUID of a locally cached image"`
}

func (c *ImagesGetCmd) Run(cctx *Context) error {
	img, ok, err := imagestore.GetLocal(cctx.Settings.ImageDir, poolSlug, c.UUID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no cached manifest for image %s", c.UUID)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(img)
}

type ImagesImportCmd struct {
	UUID string `arg:"" help:"UUID of the image to import"`
}

func (c *ImagesImportCmd) Run(cctx *Context) error {
	return cctx.Importer.Import(context.Background(), c.UUID)
}

type ImagesPruneCmd struct{}

func (c *ImagesPruneCmd) Run(cctx *Context) error {
	removed, err := imagestore.Prune(context.Background(), cctx.Engine.Storage, cctx.Settings.ImageDir, cctx.Settings.Pool)
	if err != nil {
		return err
	}
	for _, uuid := range removed {
		fmt.Println(uuid)
	}
	return nil
}
