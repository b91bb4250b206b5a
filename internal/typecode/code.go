package typecode

import (
	"github.com/quench-lang/quench/internal/diag"
)

// Code is the canonical encoding of a normalized type: an opaque byte string
// holding one 16-bit code unit per instruction word, big endian. Two AST
// types that are structurally alpha-equivalent under the same scope tree
// encode to byte-identical Codes, so Go string equality on Code is the
// structural-equality test.
type Code string

// MaxWord is the largest value an instruction word can carry.
const MaxWord = 0xFFFF

// Encode folds a finite sequence of instruction words into a Code. A word
// outside the 16-bit range is a fatal encoder error.
func Encode(words []int) (Code, error) {
	buf := make([]byte, 0, len(words)*2)
	for _, w := range words {
		if w < 0 || w > MaxWord {
			return "", diag.Errorf(diag.Overflow, "instruction word %d does not fit in 16 bits", w)
		}
		buf = append(buf, byte(w>>8), byte(w))
	}
	return Code(buf), nil
}

// Len reports the number of instruction words in the code.
func (c Code) Len() int {
	return len(c) / 2
}

// Word returns the instruction word at the given offset.
func (c Code) Word(offset int) (int, error) {
	i := offset * 2
	if i < 0 || i+1 >= len(c) {
		return 0, diag.Errorf(diag.UnexpectedEnd, "truncated code: no word at offset %d", offset)
	}
	return int(c[i])<<8 | int(c[i+1]), nil
}

// Words unpacks the whole code back into instruction words.
func (c Code) Words() []int {
	words := make([]int, 0, c.Len())
	for i := 0; i+1 < len(c); i += 2 {
		words = append(words, int(c[i])<<8|int(c[i+1]))
	}
	return words
}
