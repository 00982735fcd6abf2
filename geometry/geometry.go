// Package geometry defines the fixed physical recording format and
// mechanical timing of the emulated CDC Hawk drive. All values are
// treated as fixed configuration: one cartridge geometry, one spindle
// speed, one bit rate.
package geometry

const (
	// Addressable geometry
	NumCylinders    = 406
	NumHeads        = 2
	SectorsPerTrack = 16
	SectorBytes     = 400

	// Raw track layout, in bit cells
	GapBits      = 120 // zero-bit gap, compensates mechanical jitter
	SyncBits     = 88  // 87 zeros followed by a single one
	AddrBits     = 32  // address word plus its complement
	ChecksumBits = 16

	// Each sector occupies a fixed window of the track, leaving slack
	// after the trailer gap.
	RawSectorBits = 3906
	RawTrackBits  = RawSectorBits * SectorsPerTrack

	// Spindle timing: 2400 RPM
	RotationNS = 25_000_000
	SectorNS   = RotationNS / SectorsPerTrack

	// Average track-to-track seek time per the drive specs. Accurate
	// seek-distance-proportional timing is not modeled.
	SeekDelayNS = 7_500_000

	// A seek error is raised when on-cylinder is not reached 0.5 seconds
	// after initiation of CA strobe or RTZ.
	SeekFaultDelayNS = 500_000_000
)

// Phase returns the rotation phase at the given time, in nanoseconds
// since the last index mark, wrapped into [0, RotationNS).
func Phase(nowNS, offsetNS int64) int64 {
	phase := (nowNS + offsetNS) % RotationNS
	if phase < 0 {
		phase += RotationNS
	}
	return phase
}

// HeadPosBits converts a rotation phase to a head position in bit cells.
// The bit rate is the exact rational RawTrackBits/RotationNS, so the
// result always stays below RawTrackBits.
func HeadPosBits(phaseNS int64) int {
	return int(phaseNS * RawTrackBits / RotationNS)
}

// SectorIndex returns the sector number the head is over at the given
// rotation phase.
func SectorIndex(phaseNS int64) int {
	return int(phaseNS / SectorNS)
}
