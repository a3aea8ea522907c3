package objectively

import (
	"testing"

	"github.com/rhelmot/objectively/object"
)

func TestRunRejectsEmptyBytecode(t *testing.T) {
	_, _, err := Run(nil, object.NewDict(), object.NewTuple())
	if err == nil {
		t.Fatalf("expected an error for empty bytecode")
	}
}

func TestRunReturnsValueAndTracksActiveRuns(t *testing.T) {
	// [LIT_INT 1, RETURN] — opcodes 11 and 67 per vm/opcodes.go, 1 encoded
	// as a single signed-LEB128 byte.
	program := []byte{11, 1, 67}

	before := len(ActiveRuns())
	value, exc, err := Run(program, object.NewDict(), object.NewTuple())
	if err != nil {
		t.Fatalf("unexpected host error: %v", err)
	}
	if exc != nil {
		t.Fatalf("unexpected VM exception: %v", exc)
	}
	if value.Kind() != object.KindInt || object.IntValue(value) != 1 {
		t.Fatalf("expected Int 1, got %v", value)
	}
	if after := len(ActiveRuns()); after != before {
		t.Fatalf("expected active-run bookkeeping to settle back to %d, got %d", before, after)
	}
}

func TestActiveRunsEmptyAfterRepeatedRuns(t *testing.T) {
	// [LIT_INT 1, RETURN] — see TestRunReturnsValueAndTracksActiveRuns.
	program := []byte{11, 1, 67}

	for i := 0; i < 4; i++ {
		if _, _, err := Run(program, object.NewDict(), object.NewTuple()); err != nil {
			t.Fatalf("unexpected host error: %v", err)
		}
	}
	if ids := ActiveRuns(); len(ids) != 0 {
		t.Fatalf("expected no runs left in flight, got %v", ids)
	}
}
