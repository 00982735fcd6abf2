package drive

import (
	"fmt"
	"testing"

	"hawkdrive/geometry"
	"hawkdrive/sched"
)

// testStore returns deterministic sector contents, or fails every read
// to emulate a truncated backing file.
type testStore struct {
	broken bool
}

func (s *testStore) ReadSector(cyl, head, sector int) ([]byte, error) {
	if s.broken {
		return nil, fmt.Errorf("read failed (%d,%d,%d)", cyl, head, sector)
	}
	data := make([]byte, geometry.SectorBytes)
	for i := range data {
		data[i] = byte(sector + i)
	}
	return data, nil
}

type fixture struct {
	sim      *sched.Simulator
	unit     *Unit
	notified int
}

func newFixture(broken bool) *fixture {
	f := &fixture{sim: sched.NewSimulator()}
	f.unit = NewUnit(0, &testStore{broken: broken}, f.sim, f.sim, func(num int) {
		f.notified++
	})
	return f
}

func TestSeekHealthy(t *testing.T) {
	f := newFixture(false)

	f.unit.Seek(5, 1)

	if !f.unit.Seeking {
		t.Error("seeking not set after seek request")
	}
	if f.unit.OnCylinder {
		t.Error("on_cylinder still set after seek request")
	}
	if !f.unit.AddrAck {
		t.Error("address not acknowledged on healthy seek")
	}
	if f.unit.AddrInterlock || f.unit.SeekError {
		t.Error("error flags set on healthy seek")
	}
	if f.unit.CurrentTrack != 11 {
		t.Errorf("current track = %d, expected 11", f.unit.CurrentTrack)
	}
	if f.sim.Pending() != 1 {
		t.Fatalf("%d events pending, expected 1", f.sim.Pending())
	}

	f.sim.Run()

	if f.sim.Now() != geometry.SeekDelayNS {
		t.Errorf("seek completed at %d ns, expected %d", f.sim.Now(), geometry.SeekDelayNS)
	}
	if !f.unit.OnCylinder || f.unit.Seeking {
		t.Error("completed seek must leave on_cylinder=1, seeking=0")
	}
	if f.unit.SeekError {
		t.Error("seek error latched on healthy seek")
	}
	if f.notified != 1 {
		t.Errorf("controller notified %d times, expected 1", f.notified)
	}
}

func TestSeekWhileSeekingIsIgnored(t *testing.T) {
	f := newFixture(false)

	f.unit.Seek(5, 1)
	f.unit.Seek(9, 0)

	if f.unit.CurrentTrack != 11 {
		t.Errorf("second seek changed current track to %d", f.unit.CurrentTrack)
	}
	if f.sim.Pending() != 1 {
		t.Errorf("%d events pending, expected 1", f.sim.Pending())
	}
}

func TestSeekTruncatedStore(t *testing.T) {
	f := newFixture(true)

	f.unit.Seek(5, 0)

	if f.unit.AddrAck {
		t.Error("address acknowledged despite track buffering failure")
	}
	if f.sim.Pending() != 1 {
		t.Fatalf("%d events pending, expected 1", f.sim.Pending())
	}

	f.sim.Run()

	if f.sim.Now() != geometry.SeekFaultDelayNS {
		t.Errorf("faulted seek completed at %d ns, expected %d",
			f.sim.Now(), geometry.SeekFaultDelayNS)
	}
	if !f.unit.SeekError {
		t.Error("seek error not latched")
	}
	if !f.unit.OnCylinder || f.unit.Seeking {
		t.Error("completed seek must leave on_cylinder=1, seeking=0 even on error")
	}
	if f.notified != 1 {
		t.Errorf("controller notified %d times, expected 1", f.notified)
	}
}

func TestSeekOutOfRange(t *testing.T) {
	f := newFixture(false)

	f.unit.Seek(geometry.NumCylinders, 0)

	if !f.unit.AddrInterlock {
		t.Error("address interlock not set for out-of-range cylinder")
	}
	if f.sim.Pending() != 0 {
		t.Errorf("%d events scheduled, expected none", f.sim.Pending())
	}
	if !f.unit.Seeking {
		t.Error("seeking flag not latched; only RTZ may clear it")
	}

	// RTZ is the only way out of the latched fault.
	f.unit.RTZ()
	if f.unit.AddrInterlock {
		t.Error("address interlock survived RTZ")
	}
	f.sim.Run()

	if f.unit.CurrentTrack != 0 || !f.unit.OnCylinder {
		t.Error("RTZ did not complete a seek to cylinder 0, head 0")
	}
}

func TestRTZClearsLatchedErrors(t *testing.T) {
	f := newFixture(false)
	f.unit.SeekError = true
	f.unit.Fault = true

	f.unit.RTZ()

	if f.unit.SeekError || f.unit.Fault {
		t.Error("RTZ did not clear seek_error and fault")
	}
	if !f.unit.Seeking {
		t.Error("RTZ did not start a seek")
	}
	f.sim.Run()
	if f.unit.SeekError || f.unit.Fault {
		t.Error("errors relatched after RTZ on a healthy store")
	}
	if f.unit.CurrentTrack != 0 {
		t.Errorf("current track = %d after RTZ, expected 0", f.unit.CurrentTrack)
	}
}

func TestRotationIsPeriodic(t *testing.T) {
	f := newFixture(false)
	f.unit.RotationOffset = 1234

	times := []int64{0, 1, 123_456, geometry.SectorNS*3 + 17, geometry.RotationNS - 1}
	for _, now := range times {
		f.unit.Update(now)
		pos, sector := f.unit.HeadPos, f.unit.SectorAddr

		if pos < 0 || pos >= geometry.RawTrackBits {
			t.Errorf("t=%d: head position %d outside track", now, pos)
		}
		if sector < 0 || sector >= geometry.SectorsPerTrack {
			t.Errorf("t=%d: sector %d out of range", now, sector)
		}

		f.unit.Update(now + geometry.RotationNS)
		if f.unit.HeadPos != pos || f.unit.SectorAddr != sector {
			t.Errorf("t=%d: position not periodic: (%d,%d) vs (%d,%d)",
				now, pos, sector, f.unit.HeadPos, f.unit.SectorAddr)
		}
	}
}

func TestRemainingBits(t *testing.T) {
	f := newFixture(false)

	// One sector period in: head is at the start of sector 1.
	now := int64(geometry.SectorNS)
	f.unit.Update(now)
	head := f.unit.HeadPos

	f.unit.Track.SetCursor(head - 100)
	if got := f.unit.RemainingBits(now); got != 100 {
		t.Errorf("remaining bits = %d, expected 100", got)
	}

	// Cursor past the head: remaining goes negative.
	f.unit.Track.SetCursor(head + 50)
	if got := f.unit.RemainingBits(now); got != -50 {
		t.Errorf("remaining bits = %d, expected -50", got)
	}
}

func TestWaitSector(t *testing.T) {
	f := newFixture(false)

	f.unit.WaitSector(3)
	if f.sim.Pending() != 1 {
		t.Fatalf("%d events pending, expected 1", f.sim.Pending())
	}
	f.sim.Run()

	if f.sim.Now() != 3*geometry.SectorNS {
		t.Errorf("rotation wait fired at %d ns, expected %d",
			f.sim.Now(), 3*geometry.SectorNS)
	}
	if f.unit.SectorAddr != 3 {
		t.Errorf("head over sector %d, expected 3", f.unit.SectorAddr)
	}
	if f.unit.Track.Cursor() != f.unit.HeadPos {
		t.Errorf("cursor %d not snapped to head position %d",
			f.unit.Track.Cursor(), f.unit.HeadPos)
	}
	if f.notified != 1 {
		t.Errorf("controller notified %d times, expected 1", f.notified)
	}
}

func TestWaitSectorZeroDelta(t *testing.T) {
	f := newFixture(false)

	// The head is over sector 0 at time zero; the wait fires immediately.
	f.unit.WaitSector(0)
	f.sim.Run()

	if f.sim.Now() != 0 {
		t.Errorf("zero-delta wait fired at %d ns, expected 0", f.sim.Now())
	}
	if f.unit.Track.Cursor() != f.unit.HeadPos {
		t.Errorf("cursor %d not snapped to head position %d",
			f.unit.Track.Cursor(), f.unit.HeadPos)
	}
}

func TestWaitSectorDoubleArmPanics(t *testing.T) {
	f := newFixture(false)

	defer func() {
		if recover() == nil {
			t.Error("double-armed rotation wait did not panic")
		}
	}()
	f.unit.WaitSector(1)
	f.unit.WaitSector(2)
}
