package goldfish

import (
	"io"

	"github.com/sirupsen/logrus"
)

// log is goldfish's internal logger, used only by the debug-check
// wrappers (AddReadChecks, AddArrayWriteChecks, AddMapWriteChecks) to
// report usage violations as they're turned into errors.
// It discards output by default so importing goldfish is silent unless a
// caller opts in.
var log = newDiscardLogger()

func newDiscardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// SetLogger redirects goldfish's internal diagnostic logging to out.
func SetLogger(out *logrus.Logger) {
	log = out
}
