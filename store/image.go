// Package store accesses Hawk disk images: flat byte-addressable files
// holding logical sectors at fixed offsets.
package store

import (
	"fmt"
	"io"
	"os"

	"hawkdrive/geometry"
)

// The flat layout reserves 16 sector slots per head and two head slots
// per cylinder, giving a power-of-two stride of 32 sectors per
// cylinder even though only SectorsPerTrack are used.
const cylinderStride = 1 << 5

// ImageBytes is the size of a full disk image.
const ImageBytes = int64(geometry.NumCylinders*cylinderStride) * geometry.SectorBytes

// SectorOffset returns the byte offset of a logical sector within the
// image file.
func SectorOffset(cyl, head, sector int) int64 {
	return int64((cyl<<5)|(head<<4)|sector) * geometry.SectorBytes
}

// Image is a byte-addressable Hawk disk image.
type Image struct {
	r io.ReaderAt
	w io.WriterAt // nil for read-only images
	c io.Closer   // nil unless backed by a file we opened
}

// NewImage wraps an existing reader as a read-only image.
func NewImage(r io.ReaderAt) *Image {
	return &Image{r: r}
}

// Open opens an existing image file for reading and writing.
func Open(filename string) (*Image, error) {
	file, err := os.OpenFile(filename, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return &Image{r: file, w: file, c: file}, nil
}

// Create creates a blank, full-size image file.
func Create(filename string) (*Image, error) {
	file, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create image: %w", err)
	}
	if err := file.Truncate(ImageBytes); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to size image: %w", err)
	}
	return &Image{r: file, w: file, c: file}, nil
}

// ReadSector reads one logical sector. A read past the end of a
// truncated image is an error, never a partial result.
func (im *Image) ReadSector(cyl, head, sector int) ([]byte, error) {
	data := make([]byte, geometry.SectorBytes)
	n, err := im.r.ReadAt(data, SectorOffset(cyl, head, sector))
	if err != nil && !(err == io.EOF && n == len(data)) {
		return nil, fmt.Errorf("read failed (%d,%d,%d): got %d of %d bytes: %w",
			cyl, head, sector, n, geometry.SectorBytes, err)
	}
	return data, nil
}

// WriteSector writes one logical sector back to the image.
func (im *Image) WriteSector(cyl, head, sector int, data []byte) error {
	if im.w == nil {
		return fmt.Errorf("image is read-only")
	}
	if len(data) != geometry.SectorBytes {
		return fmt.Errorf("sector data must be %d bytes, got %d",
			geometry.SectorBytes, len(data))
	}
	if _, err := im.w.WriteAt(data, SectorOffset(cyl, head, sector)); err != nil {
		return fmt.Errorf("write failed (%d,%d,%d): %w", cyl, head, sector, err)
	}
	return nil
}

// Close closes the underlying file, if any.
func (im *Image) Close() error {
	if im.c == nil {
		return nil
	}
	return im.c.Close()
}
