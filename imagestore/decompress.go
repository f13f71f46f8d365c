package imagestore

import (
	"compress/bzip2"
	"io"

	"github.com/klauspost/compress/gzip"
)

func newBzip2Reader(r io.Reader) io.Reader { return bzip2.NewReader(r) }

func newGzipReader(r io.Reader) (io.ReadCloser, error) { return gzip.NewReader(r) }
