// Package objectively is the root of the runtime: a small embedding
// harness over package vm/object, plus the general-purpose helpers
// (error wrapping, unique IDs) the rest of the module pulls in, adapted
// from the teacher's root juicemud package.
package objectively

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/rhelmot/objectively/object"
	"github.com/rhelmot/objectively/vm"
)

var lastUniqueIDCounter uint64

const uniqueIDLen = 16

// Encoding is the base64 encoding used for diagnostic run IDs.
var Encoding = base64.RawURLEncoding

// Increment returns a strictly increasing counter value derived from
// the wall clock, compare-and-swapping against prevPointer until it
// wins a monotonic step. Used wherever a cheap, contention-tolerant
// unique sequence number is needed.
func Increment(prevPointer *uint64) uint64 {
	for {
		next := uint64(time.Now().UnixNano())
		previous := atomic.LoadUint64(prevPointer)
		if next > previous && atomic.CompareAndSwapUint64(prevPointer, previous, next) {
			return next
		}
	}
}

// NextUniqueID generates a unique ID using a monotonic timestamp prefix
// followed by random bytes, base64-encoded. Used to label Run
// invocations in log output so concurrent programs' log lines can be
// told apart.
func NextUniqueID() string {
	counter := Increment(&lastUniqueIDCounter)
	timeSize := binary.Size(counter)
	result := make([]byte, uniqueIDLen)
	binary.BigEndian.PutUint64(result, counter)
	if _, err := rand.Read(result[timeSize:]); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return Encoding.EncodeToString(result)
}

var (
	activeRunsMu sync.Mutex
	activeRuns   = map[string]struct{}{}
)

// ActiveRuns reports the diagnostic run IDs (see NextUniqueID) of Run
// invocations currently in flight, for embedders that want to print a
// "what's running right now" diagnostic.
func ActiveRuns() []string {
	activeRunsMu.Lock()
	defer activeRunsMu.Unlock()
	ids := make([]string, 0, len(activeRuns))
	for id := range activeRuns {
		ids = append(ids, id)
	}
	return ids
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// WithStack wraps err with a captured stack trace unless it already
// carries one, for host-facing (non-VM) internal errors. VM-level
// failures are never wrapped this way — they are *object.Exception
// values threaded through return values, per the interpreter's own
// error-handling convention.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(stackTracer); !ok {
		return errors.WithStack(err)
	}
	return err
}

// StackTrace renders a WithStack-wrapped error's captured frames.
func StackTrace(err error) string {
	buf := &bytes.Buffer{}
	if err, ok := err.(stackTracer); ok {
		for _, f := range err.StackTrace() {
			fmt.Fprintf(buf, "%+v\n", f)
		}
	}
	return buf.String()
}

// Run is the minimal embedding entry point: it locks the process's
// execution lock, runs code against locals/args, and logs a start line
// and an end line identified by a fresh diagnostic run ID. code must be non-empty;
// an empty program is a host-side usage error (not a VM exception),
// reported as a wrapped Go error rather than an *object.Exception.
func Run(code []byte, locals *object.Object, args *object.Object) (*object.Object, *object.Object, error) {
	if len(code) == 0 {
		return nil, nil, WithStack(errors.New("objectively: Run called with empty bytecode"))
	}
	runID := NextUniqueID()
	log.Printf("objectively: run %s starting (%d bytes)", runID, len(code))

	activeRunsMu.Lock()
	activeRuns[runID] = struct{}{}
	activeRunsMu.Unlock()
	defer func() {
		activeRunsMu.Lock()
		delete(activeRuns, runID)
		activeRunsMu.Unlock()
	}()

	owner := object.Lock()
	defer object.Unlock()

	value, exc := vm.Run(owner, object.NewBytes(code), locals, args)
	if exc != nil {
		log.Printf("objectively: run %s raised an exception", runID)
	} else {
		log.Printf("objectively: run %s returned", runID)
	}
	return value, exc, nil
}
