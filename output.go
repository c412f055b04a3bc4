package vplanet

import (
	"bufio"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/soniakeys/meeus/julian"
)

// simEpoch anchors the Julian-date column in WriteHeader. Real runs care
// only about elapsed simulation time, not wall-clock epoch, so this is a
// fixed reference instant rather than time.Now() (which would also break
// the no-wall-clock-calls-during-a-run discipline the rest of the engine
// follows for reproducibility).
var simEpoch = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

// OutputDriver writes periodic columnar snapshot rows to a single writer,
// one row per snapshot covering every body, fed through a channel and drained by a writer goroutine, the same
// streaming-writer shape as export.go's StreamStates/histChan pattern —
// reused here for plain columnar rows instead of a Cosmographia
// trajectory catalog.
type OutputDriver struct {
	w    *bufio.Writer
	rows chan snapshotRow
	done chan struct{}
	wg   sync.WaitGroup
}

type snapshotRow struct {
	t     float64
	line  string
}

// NewOutputDriver wraps w in a buffered writer and starts the drain
// goroutine. Close must be called to flush and join the goroutine.
func NewOutputDriver(w io.Writer) *OutputDriver {
	od := &OutputDriver{
		w:    bufio.NewWriter(w),
		rows: make(chan snapshotRow, 64),
		done: make(chan struct{}),
	}
	od.wg.Add(1)
	go od.drain()
	return od
}

func (od *OutputDriver) drain() {
	defer od.wg.Done()
	for {
		select {
		case row, ok := <-od.rows:
			if !ok {
				return
			}
			fmt.Fprintln(od.w, row.line)
		case <-od.done:
			// Drain whatever's already queued before exiting.
			for {
				select {
				case row := <-od.rows:
					fmt.Fprintln(od.w, row.line)
				default:
					return
				}
			}
		}
	}
}

// Close signals the drain goroutine to exit and flushes the buffer.
func (od *OutputDriver) Close() error {
	close(od.done)
	od.wg.Wait()
	return od.w.Flush()
}

// WriteHeader writes the one-time column header, in WriteSnapshot's column
// order (each body's age, mass, then every module's LogBody keys),
// including the Julian date of simulation start via meeus/julian, the way
// export.go's CgInterpolatedState timestamps each trajectory sample.
func (od *OutputDriver) WriteHeader(sys *System) {
	jd := julian.TimeToJD(simEpoch)
	od.rows <- snapshotRow{line: fmt.Sprintf("# vplanet-go output, epoch JD %.5f, bodies=%d", jd, len(sys.Bodies))}
	cols := "# time_yr"
	for i, b := range sys.Bodies {
		cols += fmt.Sprintf(" %s.age_yr %s.mass_g", b.Name, b.Name)
		for _, m := range sys.Modules {
			kvs := m.LogBody(sys, i)
			for j := 0; j+1 < len(kvs); j += 2 {
				cols += fmt.Sprintf(" %s.%v", b.Name, kvs[j])
			}
		}
	}
	od.rows <- snapshotRow{line: cols}
}

// WriteFooter writes the final summary line.
func (od *OutputDriver) WriteFooter(sys *System) {
	od.rows <- snapshotRow{line: fmt.Sprintf("# end t=%.6e yr", sys.Time/YearSec)}
}

// WriteSnapshot writes one columnar row for every body's generic state
// plus every module's LogBody fields, at the cadence Evolution.Run drives.
func (od *OutputDriver) WriteSnapshot(sys *System) {
	line := fmt.Sprintf("%.9e", sys.Time/YearSec)
	for i, b := range sys.Bodies {
		line += fmt.Sprintf(" %.9e %.9e", b.Age/YearSec, b.Mass)
		for _, m := range sys.Modules {
			kvs := m.LogBody(sys, i)
			for j := 1; j < len(kvs); j += 2 {
				line += fmt.Sprintf(" %v", kvs[j])
			}
		}
	}
	od.rows <- snapshotRow{t: sys.Time, line: line}
}
