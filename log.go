package vplanet

import (
	"io"
	"os"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// NewLogger builds the shared structured logger for an Evolution run,
// following spacecraft.go's SCLogInit pattern: a base logger decorated with
// timestamp and caller, writing to w (os.Stdout when w is nil), filtered
// to info and above, or to debug and above when verbose. It never
// discards; QuietLogger is the discarding logger.
func NewLogger(w io.Writer, verbose bool) kitlog.Logger {
	if w == nil {
		w = os.Stdout
	}
	base := kitlog.NewLogfmtLogger(w)
	base = kitlog.With(base, "ts", kitlog.DefaultTimestampUTC, "caller", kitlog.DefaultCaller)

	if verbose {
		return level.NewFilter(base, level.AllowDebug())
	}
	return level.NewFilter(base, level.AllowInfo())
}

// QuietLogger discards everything, for -q.
func QuietLogger() kitlog.Logger {
	return kitlog.NewNopLogger()
}

// LogBody writes one structured line for body bi, dispatching to every
// attached module's LogBody hook and flattening the result the way
// spacecraft.go's LogInfo concatenates fields before a single Log call.
// Nothing in this repository calls it; Evolution.Run writes module fields
// only through OutputDriver.WriteSnapshot.
func LogBody(sys *System, bi int) {
	b := sys.Bodies[bi]
	kvs := []interface{}{"subsys", "body", "name", b.Name, "age_yr", b.Age / YearSec}
	for _, m := range sys.Modules {
		kvs = append(kvs, m.LogBody(sys, bi)...)
	}
	level.Info(sys.Logger).Log(kvs...)
}
