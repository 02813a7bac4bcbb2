package cart

import (
	"archive/zip"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/bodgit/sevenzip"
)

// readROMFile loads a ROM image, transparently unpacking .zip, .gz and .7z
// archives (the first entry of an archive is taken as the ROM).
func readROMFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	var decoder io.Reader
	switch filepath.Ext(path) {
	case ".zip":
		zr, err := zip.NewReader(f, int64(len(data)))
		if err != nil {
			return nil, err
		}
		if len(zr.File) == 0 {
			return nil, errors.New("empty zip archive")
		}
		rc, err := zr.File[0].Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		decoder = rc
	case ".gz":
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		decoder = gr
	case ".7z":
		sr, err := sevenzip.NewReader(f, int64(len(data)))
		if err != nil {
			return nil, err
		}
		if len(sr.File) == 0 {
			return nil, errors.New("empty 7z archive")
		}
		rc, err := sr.File[0].Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		decoder = rc
	default:
		return data, nil
	}

	return io.ReadAll(decoder)
}
