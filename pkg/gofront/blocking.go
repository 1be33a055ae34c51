package gofront

import "github.com/diego200052/lockpair/pkg/event"

// blockingCall pairs a diagnostic description with how severe it is to
// block on this call while holding a lock or running on the UI thread.
type blockingCall struct {
	desc     string
	severity event.Severity
}

// blockingCalls denylists well-known standard-library operations that may
// block the calling goroutine, keyed by qualified callee name
// ("pkg.Func"/"(*pkg.Type).Method"). Grounded on the same flat
// map[string]bool denylist shape Surge's nonblocking_check.go uses for its
// own blockingMethods table, adapted to Go's actual blocking surface instead
// of a made-up one. Severity distinguishes a bounded in-process wait
// (Medium) from unbounded disk/network/sleep waits (High).
var blockingCalls = map[string]blockingCall{
	"time.Sleep":                 {"time.Sleep", event.SeverityHigh},
	"(*sync.WaitGroup).Wait":     {"sync.WaitGroup.Wait", event.SeverityMedium},
	"(*sync.Cond).Wait":          {"sync.Cond.Wait", event.SeverityMedium},
	"(*os.File).Read":            {"os.File.Read", event.SeverityHigh},
	"(*os.File).Write":           {"os.File.Write", event.SeverityHigh},
	"(*net.TCPConn).Read":        {"net.TCPConn.Read", event.SeverityHigh},
	"(*net.TCPConn).Write":       {"net.TCPConn.Write", event.SeverityHigh},
	"(*bufio.Reader).ReadString": {"bufio.Reader.ReadString", event.SeverityHigh},
	"(*http.Client).Do":          {"http.Client.Do", event.SeverityHigh},
	"(*sql.DB).QueryContext":     {"sql.DB.QueryContext", event.SeverityHigh},
	"(*sql.DB).ExecContext":      {"sql.DB.ExecContext", event.SeverityHigh},
}

// strictModeCalls denylists calls that a Strict-Mode-style policy forbids on
// the UI thread: direct disk and network I/O. This is a subset of
// blockingCalls — every Strict-Mode violation also may-blocks, but not every
// blocking call (e.g. WaitGroup.Wait) touches disk or network.
var strictModeCalls = map[string]string{
	"(*os.File).Read":        "disk read via os.File.Read",
	"(*os.File).Write":       "disk write via os.File.Write",
	"(*net.TCPConn).Read":    "network read via net.TCPConn.Read",
	"(*net.TCPConn).Write":   "network write via net.TCPConn.Write",
	"(*http.Client).Do":      "network call via http.Client.Do",
	"(*sql.DB).QueryContext": "database query via sql.DB.QueryContext",
	"(*sql.DB).ExecContext":  "database exec via sql.DB.ExecContext",
}

// BlockingClassifier implements ir.BlockingClassifier against blockingCalls.
type BlockingClassifier struct{}

func (BlockingClassifier) ClassifyBlocking(callee string) (string, event.Severity, bool) {
	bc, ok := blockingCalls[callee]
	return bc.desc, bc.severity, ok
}

// StrictModeClassifierImpl implements ir.StrictModeClassifier against
// strictModeCalls.
type StrictModeClassifierImpl struct{}

func (StrictModeClassifierImpl) ClassifyStrictMode(callee string) (string, bool) {
	desc, ok := strictModeCalls[callee]
	return desc, ok
}
