package lcm

import (
	"io"

	kitlog "github.com/go-kit/kit/log"
)

// NewLogger returns the logfmt logger used throughout the simulation core,
// writing to w with a UTC "ts" timestamp on every line; it applies no level
// filtering. Call sites attach context with kitlog.With rather than
// reaching for a process-wide logger.
func NewLogger(w io.Writer) kitlog.Logger {
	base := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(w))
	return kitlog.With(base, "ts", kitlog.DefaultTimestampUTC)
}
