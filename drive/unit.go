// Package drive models the electromechanical timing of a Hawk drive
// unit: seek and return-to-zero state transitions, and the rotational
// position of the head against a monotonic nanosecond clock.
package drive

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"hawkdrive/geometry"
	"hawkdrive/sched"
	"hawkdrive/track"
)

// Notifier is called after every completed seek and every completed
// rotation wait. The controller is expected to re-read unit state.
type Notifier func(unitNum int)

// Unit is one drive unit. All mutable state is owned exclusively by
// the unit; operations run to completion on the caller's goroutine and
// the only asynchrony is the scheduler's deferred callback, assumed to
// fire on the same logical thread.
type Unit struct {
	Num int

	// Mechanical state, mutated only by seek/RTZ operations and their
	// completion callbacks.
	Seeking       bool
	OnCylinder    bool
	AddrAck       bool
	AddrInterlock bool // latched addressing fault, cleared by RTZ
	SeekError     bool // latched, cleared by RTZ
	Fault         bool
	CurrentTrack  int // cylinder*2 + head

	// Rotational state, recomputed on demand by Update.
	HeadPos    int // head position in bit cells
	SectorAddr int // sector the head is currently over

	// RotationOffset is a constant per-unit skew applied to the clock,
	// desynchronizing the spindles of different units.
	RotationOffset int64

	// Track holds the encoded current track. It is replaced wholesale
	// on every successful seek.
	Track *track.Buffer

	image    track.SectorReader
	clock    sched.Clock
	sched    sched.Scheduler
	notify   Notifier
	checksum track.ChecksumFunc

	// One owned event slot per concern; at most one of each may be in
	// flight at any time.
	seekEvent      sched.Event
	seekArmed      bool
	seekErrPending bool

	rotationEvent sched.Event
	rotationArmed bool

	log *log.Entry
}

// NewUnit creates a drive unit with all mechanical flags clear and an
// empty track buffer. The notifier may be nil.
func NewUnit(num int, image track.SectorReader, clock sched.Clock, scheduler sched.Scheduler, notify Notifier) *Unit {
	return &Unit{
		Num:    num,
		Track:  track.NewBuffer(),
		image:  image,
		clock:  clock,
		sched:  scheduler,
		notify: notify,
		log:    log.WithField("unit", num),
	}
}

// SetChecksum replaces the checksum hook used when encoding tracks.
// A nil function selects the placeholder.
func (u *Unit) SetChecksum(f track.ChecksumFunc) {
	u.checksum = f
}

// Seek moves the heads to the given cylinder and selects a head. It
// returns immediately; completion is reported through the scheduler
// callback and the notifier. A seek already in progress is left alone.
func (u *Unit) Seek(cyl, head int) {
	if u.Seeking {
		return
	}

	u.Seeking = true
	u.AddrAck = false
	u.AddrInterlock = false
	u.CurrentTrack = cyl<<1 | head
	u.OnCylinder = false

	if cyl >= geometry.NumCylinders {
		// Tried to seek past the end of the disk. Latched until RTZ;
		// nothing gets scheduled.
		u.AddrInterlock = true
		u.log.WithField("cyl", cyl).Debug("address interlock, cylinder out of range")
		return
	}

	u.seekErrPending = false
	delta := int64(geometry.SeekDelayNS)

	// To simplify emulation, slurp the whole track into host memory.
	buffer, err := track.Encode(u.image, cyl, head, u.checksum)
	if err != nil {
		// Per the manual, a seek error is generated if on-cylinder is
		// not present 0.5 seconds after CA strobe or RTZ. Emulate the
		// I/O error as that timeout.
		u.seekErrPending = true
		delta = geometry.SeekFaultDelayNS
		u.log.WithField("cyl", cyl).Debugf("track buffering failed: %v", err)
	} else {
		u.Track = buffer
		u.AddrAck = true
	}

	if u.seekArmed {
		panic(fmt.Sprintf("drive: unit %d seek event already in flight", u.Num))
	}
	u.seekArmed = true
	u.seekEvent = sched.Event{DeltaNS: delta, Callback: u.seekDone}
	u.sched.Schedule(&u.seekEvent)
	u.log.Debugf("seek to %d.%d scheduled, done in %.1f ms", cyl, head,
		float64(delta)/1e6)
}

func (u *Unit) seekDone(e *sched.Event, lateNS int64) {
	u.seekArmed = false

	if u.seekErrPending {
		u.SeekError = true
	}

	// Seek-complete rather than strictly on-cylinder: forced to zero
	// when a seek begins, set even when the seek errors out.
	u.OnCylinder = true
	u.Seeking = false

	u.log.WithField("late_ns", lateNS).Debug("seek complete")
	if u.notify != nil {
		u.notify(u.Num)
	}
}

// RTZ returns the heads to cylinder 0, head 0. The drive clears any
// seek errors and faults on RTZ; this is the only operation that does.
func (u *Unit) RTZ() {
	u.SeekError = false
	u.Fault = false
	u.Seeking = false

	u.Seek(0, 0)
}

// Update recomputes the rotational position of the head for the given
// time. Idempotent, side-effect free beyond the cached fields, and
// periodic with the rotation period.
func (u *Unit) Update(now int64) {
	phase := geometry.Phase(now, u.RotationOffset)
	u.HeadPos = geometry.HeadPosBits(phase)
	u.SectorAddr = geometry.SectorIndex(phase)
}

// RemainingBits returns how far the head is ahead of the track cursor
// at the given time, in bits. Negative when the cursor has advanced
// past the head; callers handle wraparound themselves.
func (u *Unit) RemainingBits(now int64) int {
	u.Update(now)
	return u.HeadPos - u.Track.Cursor()
}

// WaitSector schedules a one-shot event for when the drive rotates to
// the start of the target sector. On firing, the track cursor snaps to
// wherever the head actually is and the notifier is invoked. At most
// one rotation wait may be in flight per unit; a second is a caller
// sequencing bug.
func (u *Unit) WaitSector(sector int) {
	now := u.clock.Now()
	phase := geometry.Phase(now, u.RotationOffset)
	desired := int64(geometry.SectorNS) * int64(sector)

	delta := desired - phase
	if delta < 0 {
		delta += geometry.RotationNS
	}

	if u.rotationArmed {
		panic(fmt.Sprintf("drive: unit %d rotation event already in flight", u.Num))
	}
	u.rotationArmed = true
	u.rotationEvent = sched.Event{DeltaNS: delta, Callback: u.rotationDone}
	u.sched.Schedule(&u.rotationEvent)
	u.log.Debugf("wait for sector %d, due in %.3f ms", sector, float64(delta)/1e6)
}

func (u *Unit) rotationDone(e *sched.Event, lateNS int64) {
	u.rotationArmed = false

	// Re-sample the clock: the scheduler may have fired late, and the
	// platter kept spinning.
	u.Update(u.clock.Now())

	// Copy current head position to the read/write cursor.
	u.Track.SetCursor(u.HeadPos)

	u.log.WithField("sector", u.SectorAddr).Debug("rotation wait complete")
	if u.notify != nil {
		u.notify(u.Num)
	}
}
