package track

import (
	"fmt"

	"hawkdrive/geometry"
)

// SectorReader provides logical sector contents from the backing store.
type SectorReader interface {
	// ReadSector returns exactly SectorBytes bytes for the given
	// cylinder, head and sector, or an error on a short read.
	ReadSector(cyl, head, sector int) ([]byte, error)
}

// ChecksumFunc computes the checksum field emitted after a sector's
// data bytes. It must return ChecksumBits/8 bytes.
type ChecksumFunc func(data []byte) []byte

// PlaceholderChecksum stands in until a real CRC polynomial is chosen.
// The framing reserves the field; the value is a fixed filler.
func PlaceholderChecksum(data []byte) []byte {
	return []byte{0xcc, 0xcc}
}

// Encode reads one full track from the backing store and lays it out
// as raw bits with gaps, sync and format info, the way the drive would
// record it:
//
//	┌───┬────┬───────┬───┬────┬──────┬────────┬───────┐
//	│gap│sync│address│gap│sync│data  │checksum│trailer│
//	│120│ 88 │  32   │120│ 88 │400x8 │   16   │  60   │
//	└───┴────┴───────┴───┴────┴──────┴────────┴───────┘
//	└──────────────repeat per sector────────────────┘
//
// Each sector starts at a fixed bit offset sector*RawSectorBits, so
// sectors are encoded independently. If any backing read fails the
// whole track fails and no buffer is returned.
func Encode(r SectorReader, cyl, head int, checksum ChecksumFunc) (*Buffer, error) {
	if checksum == nil {
		checksum = PlaceholderChecksum
	}

	b := NewBuffer()
	for sector := 0; sector < geometry.SectorsPerTrack; sector++ {
		b.SetCursor(sector * geometry.RawSectorBits)

		// Gap, then sync: zeros followed by a single one
		b.SetBits(geometry.GapBits, 0)
		b.SetBits(geometry.SyncBits-1, 0)
		b.SetBits(1, 1)

		// Sector address word and its complement as integrity check
		addr := uint16(cyl)<<8 | uint16(head)<<4 | uint16(sector)
		check := ^addr
		addrData := []byte{
			byte(addr >> 8),
			byte(addr),
			byte(check >> 8),
			byte(check),
		}
		b.WriteBits(geometry.AddrBits, addrData)

		// Second gap and sync demarcate address field from data field
		b.SetBits(geometry.GapBits, 0)
		b.SetBits(geometry.SyncBits-1, 0)
		b.SetBits(1, 1)

		// Sector data
		data, err := r.ReadSector(cyl, head, sector)
		if err != nil {
			return nil, fmt.Errorf("failed to buffer track %d.%d: %w", cyl, head, err)
		}
		b.WriteBits(geometry.SectorBytes*8, data)

		b.WriteBits(geometry.ChecksumBits, checksum(data))

		// Trailer
		b.SetBits(geometry.GapBits/2, 0)
	}

	b.SetCursor(0)
	return b, nil
}

// Field offsets within one encoded sector, relative to its start.
const (
	addrFieldOffset = geometry.GapBits + geometry.SyncBits
	dataFieldOffset = addrFieldOffset + geometry.AddrBits +
		geometry.GapBits + geometry.SyncBits
)

// SectorFields holds the decoded address and data fields of one
// encoded sector.
type SectorFields struct {
	Addr     uint16
	Check    uint16 // bitwise complement of Addr when intact
	Data     []byte
	Checksum []byte
}

// DecodeSector reads back the address and data fields of one sector
// from an encoded track, using the bit primitives the way a controller
// would. The buffer cursor is repositioned.
func DecodeSector(b *Buffer, sector int) SectorFields {
	start := sector * geometry.RawSectorBits

	var addrData [geometry.AddrBits / 8]byte
	b.SetCursor(start + addrFieldOffset)
	b.ReadBits(geometry.AddrBits, addrData[:])

	f := SectorFields{
		Addr:     uint16(addrData[0])<<8 | uint16(addrData[1]),
		Check:    uint16(addrData[2])<<8 | uint16(addrData[3]),
		Data:     make([]byte, geometry.SectorBytes),
		Checksum: make([]byte, geometry.ChecksumBits/8),
	}

	b.SetCursor(start + dataFieldOffset)
	b.ReadBits(geometry.SectorBytes*8, f.Data)
	b.ReadBits(geometry.ChecksumBits, f.Checksum)
	return f
}
