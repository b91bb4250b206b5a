package typecode

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/quench-lang/quench/internal/diag"
)

func TestEncodeWords(t *testing.T) {
	code, err := Encode([]int{int(OpForall), int(OpApply), int(OpRef), 14, int(OpVar), 0})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if code.Len() != 6 {
		t.Errorf("Len() = %d, want 6", code.Len())
	}
	got := code.Words()
	want := []int{0x00, 0x08, 0x05, 14, 0x06, 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Words() mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeOverflow(t *testing.T) {
	for _, w := range []int{-1, 0x10000, 1 << 20} {
		_, err := Encode([]int{w})
		if !diag.Is(err, diag.Overflow) {
			t.Errorf("Encode(%d) error = %v, want Overflow", w, err)
		}
	}

	// The full 16-bit range is encodable.
	code, err := Encode([]int{0, 0xFFFF})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if got := code.Words(); got[1] != 0xFFFF {
		t.Errorf("Words()[1] = %d, want 0xFFFF", got[1])
	}
}

func mustEncode(t *testing.T, words []int) Code {
	t.Helper()
	code, err := Encode(words)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return code
}

func TestDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		words []int
		want  Term
	}{
		{
			name:  "Ref",
			words: []int{int(OpRef), 7},
			want:  RefTerm{ID: 7},
		},
		{
			name:  "Hole",
			words: []int{int(OpHole), 3},
			want:  HoleTerm{ID: 3},
		},
		{
			name:  "Var with frame and slot",
			words: []int{int(OpVar), PackVar(2, 1)},
			want:  VarTerm{Delta: 2, Slot: 1},
		},
		{
			name: "unconstrained forall over an application",
			// forall T. List T
			words: []int{int(OpForall), int(OpApply), int(OpRef), 14, int(OpVar), 0},
			want: ForallTerm{Body: ApplyTerm{
				Fn:  RefTerm{ID: 14},
				Arg: VarTerm{Delta: 0, Slot: 0},
			}},
		},
		{
			name: "HKT forall",
			// forall (F :: * -> *). F Int
			words: []int{
				int(OpForall), int(OpHkt), int(OpConcrete), int(OpConcrete),
				int(OpApply), int(OpVar), 0, int(OpRef), 0,
			},
			want: ForallTerm{
				Param: HktDesc{Kind: ArrowTerm{Left: StarTerm{}, Right: StarTerm{}}},
				Body:  ApplyTerm{Fn: VarTerm{}, Arg: RefTerm{ID: 0}},
			},
		},
		{
			name: "constrained forall",
			// forall (T: Show). T -> T  (Show = Ref 9)
			words: []int{
				int(OpForall), int(OpImpl), int(OpRef), 9,
				int(OpFun), int(OpVar), 0, int(OpVar), 0,
			},
			want: ForallTerm{
				Param: ConstraintDesc{Impls: []Term{RefTerm{ID: 9}}},
				Body:  FunTerm{Param: VarTerm{}, Ret: VarTerm{}},
			},
		},
		{
			name: "curried function prefixes",
			// Fun Fun a b r decodes left-nested by prefix order.
			words: []int{
				int(OpFun), int(OpFun), int(OpRef), 1, int(OpRef), 2, int(OpRef), 3,
			},
			want: FunTerm{
				Param: FunTerm{Param: RefTerm{ID: 1}, Ret: RefTerm{ID: 2}},
				Ret:   RefTerm{ID: 3},
			},
		},
		{
			name: "tuple as synthetic apply",
			// (Int, Bool) = Apply Apply (Ref tuple/2) Int Bool
			words: []int{
				int(OpApply), int(OpApply), int(OpRef), TupleRef(2),
				int(OpRef), 0, int(OpRef), 6,
			},
			want: ApplyTerm{
				Fn:  ApplyTerm{Fn: RefTerm{ID: TupleRef(2)}, Arg: RefTerm{ID: 0}},
				Arg: RefTerm{ID: 6},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := mustEncode(t, tt.words)
			term, next, err := Decode(code, 0)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if next != code.Len() {
				t.Errorf("Decode() next = %d, want %d", next, code.Len())
			}
			if diff := cmp.Diff(tt.want, term); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		words []int
		want  diag.Kind
	}{
		{"unknown opcode", []int{0x55}, diag.InvalidOp},
		{"truncated operand", []int{int(OpRef)}, diag.UnexpectedEnd},
		{"truncated fun", []int{int(OpFun), int(OpRef), 1}, diag.UnexpectedEnd},
		{"kind op as expression", []int{int(OpConcrete)}, diag.InvalidOp},
		{"impl op as expression", []int{int(OpImpl), int(OpRef), 1}, diag.InvalidOp},
		{"truncated quantifier", []int{int(OpForall)}, diag.UnexpectedEnd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := mustEncode(t, tt.words)
			_, _, err := Decode(code, 0)
			if !diag.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want kind %s", err, tt.want)
			}
		})
	}
}

func TestDecodeAtOffset(t *testing.T) {
	// Two refs back to back: decoding at offset 2 yields the second.
	code := mustEncode(t, []int{int(OpRef), 1, int(OpRef), 2})
	term, next, err := Decode(code, 2)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if term != (RefTerm{ID: 2}) {
		t.Errorf("Decode() = %#v, want RefTerm{ID: 2}", term)
	}
	if next != 4 {
		t.Errorf("next = %d, want 4", next)
	}
}

func TestDisassemble(t *testing.T) {
	code := mustEncode(t, []int{
		int(OpForall), int(OpApply), int(OpRef), TupleRef(2), int(OpVar), PackVar(1, 0),
	})
	out := Disassemble(code, "example")
	for _, want := range []string{"== example ==", "FORALL", "APPLY", "tuple/2", "VAR", "1.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("Disassemble() missing %q in:\n%s", want, out)
		}
	}
}

func TestPackVar(t *testing.T) {
	delta, slot := UnpackVar(PackVar(3, 2))
	if delta != 3 || slot != 2 {
		t.Errorf("UnpackVar(PackVar(3, 2)) = %d, %d", delta, slot)
	}
}
