package typecode

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of the code, one instruction
// per line with its operand word (if any) on the same line, for diagnostics.
func Disassemble(c Code, name string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("== %s ==\n", name))

	offset := 0
	for offset < c.Len() {
		offset = disassembleInstruction(&sb, c, offset)
	}

	return sb.String()
}

func disassembleInstruction(sb *strings.Builder, c Code, offset int) int {
	w, err := c.Word(offset)
	if err != nil {
		sb.WriteString(fmt.Sprintf("%04d <truncated>\n", offset))
		return c.Len()
	}

	op := Op(w)
	switch op {
	case OpHole, OpRef:
		return operandInstruction(sb, op.String(), c, offset)
	case OpVar:
		operand, err := c.Word(offset + 1)
		if err != nil {
			sb.WriteString(fmt.Sprintf("%04d %-8s <truncated>\n", offset, op))
			return c.Len()
		}
		delta, slot := UnpackVar(operand)
		sb.WriteString(fmt.Sprintf("%04d %-8s %d.%d\n", offset, op, delta, slot))
		return offset + 2
	case OpForall, OpConcrete, OpHkt, OpImpl, OpFun, OpApply:
		sb.WriteString(fmt.Sprintf("%04d %s\n", offset, op))
		return offset + 1
	default:
		sb.WriteString(fmt.Sprintf("%04d UNKNOWN 0x%02x\n", offset, w))
		return offset + 1
	}
}

func operandInstruction(sb *strings.Builder, name string, c Code, offset int) int {
	operand, err := c.Word(offset + 1)
	if err != nil {
		sb.WriteString(fmt.Sprintf("%04d %-8s <truncated>\n", offset, name))
		return c.Len()
	}
	if arity, ok := IsTupleRef(operand); ok && name == "REF" {
		sb.WriteString(fmt.Sprintf("%04d %-8s tuple/%d\n", offset, name, arity))
	} else {
		sb.WriteString(fmt.Sprintf("%04d %-8s %d\n", offset, name, operand))
	}
	return offset + 2
}
