package tiff

import (
	"bytes"
	"errors"
	"fmt"

	exiftiff "github.com/rwcarlsen/goexif/tiff"
)

const (
	tagStripOffsets    = 273
	tagStripByteCounts = 279
	tagTileOffsets     = 324
	tagTileByteCounts  = 325
)

// checkLayout verifies that every IFD, its out-of-line values and every strip
// or tile the first IFD references lie inside data. The decoder reads these
// lazily and accepts short streams without complaint.
func checkLayout(data []byte) error {
	t, err := exiftiff.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	if len(t.Dirs) == 0 {
		return errors.New("tiff: no image directory")
	}

	var offsets, counts []*exiftiff.Tag
	for _, tag := range t.Dirs[0].Tags {
		switch tag.Id {
		case tagStripOffsets, tagTileOffsets:
			offsets = append(offsets, tag)
		case tagStripByteCounts, tagTileByteCounts:
			counts = append(counts, tag)
		}
	}

	n := int64(len(data))
	for i := range min(len(offsets), len(counts)) {
		off, cnt := offsets[i], counts[i]
		for j := range int(min(off.Count, cnt.Count)) {
			o, err := off.Int64(j)
			if err != nil {
				return err
			}
			c, err := cnt.Int64(j)
			if err != nil {
				return err
			}
			if o+c > n {
				return fmt.Errorf("tiff: segment %d at %d+%d past end of %d bytes", j, o, c, n)
			}
		}
	}
	return nil
}
