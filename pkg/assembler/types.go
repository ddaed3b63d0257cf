// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package assembler

import (
	"errors"
	"fmt"
	"strings"
)

type Opcode uint8
type Reason uint

// Record is one raw instruction as read from a program source. A nil field
// means the field was absent.
type Record struct {
	Opcode  *int64
	Operand *int64
}

// Instruction is an opcode/operand pair accepted by Validate.
type Instruction struct {
	opcode  Opcode
	operand uint32
}

// Program is an ordered sequence of validated instructions.
type Program struct {
	instructions []Instruction
}

var (
	ErrMissingField      = errors.New("missing field")
	ErrUnknownOpcode     = errors.New("unknown opcode")
	ErrOperandOutOfRange = errors.New("operand out of range")
)

func NewRecord(opcode, operand int64) Record {
	return Record{Opcode: &opcode, Operand: &operand}
}

func (op Opcode) Valid() bool {
	switch op {
	case OPCODE_LOAD, OPCODE_READ, OPCODE_WRITE, OPCODE_MUL:
		return true
	}

	return false
}

// Width is the operand field width in bits.
func (op Opcode) Width() uint {
	if op == OPCODE_LOAD {
		return WIDTH_CONSTANT
	}

	return WIDTH_ADDRESS
}

func (op Opcode) Max() uint64 {
	return uint64(1)<<op.Width() - 1
}

func (op Opcode) String() string {
	switch op {
	case OPCODE_LOAD:
		return "LOAD"
	case OPCODE_READ:
		return "READ"
	case OPCODE_WRITE:
		return "WRITE"
	case OPCODE_MUL:
		return "MUL"
	}

	return fmt.Sprintf("Opcode(%d)", uint8(op))
}

// Looks up an opcode by its mnemonic, ignoring case
func ParseOpcode(ident string) (Opcode, bool) {
	for _, op := range Opcodes {
		if strings.EqualFold(ident, op.String()) {
			return op, true
		}
	}

	return 0, false
}

func (ins Instruction) Opcode() Opcode {
	return ins.opcode
}

func (ins Instruction) Operand() uint32 {
	return ins.operand
}

func (ins Instruction) String() string {
	return fmt.Sprintf("%s %d", ins.opcode, ins.operand)
}

func (prog Program) Len() int {
	return len(prog.instructions)
}

func (prog Program) At(index int) Instruction {
	return prog.instructions[index]
}

// Instructions returns a copy of the program's instructions.
func (prog Program) Instructions() []Instruction {
	result := make([]Instruction, len(prog.instructions))
	copy(result, prog.instructions)
	return result
}

func (reason Reason) String() string {
	switch reason {
	case REASON_MISSING_FIELD:
		return "MissingField"
	case REASON_UNKNOWN_OPCODE:
		return "UnknownOpcode"
	case REASON_OPERAND_OUT_OF_RANGE:
		return "OperandOutOfRange"
	}

	return "<invalid>"
}

func (reason Reason) sentinel() error {
	switch reason {
	case REASON_MISSING_FIELD:
		return ErrMissingField
	case REASON_UNKNOWN_OPCODE:
		return ErrUnknownOpcode
	case REASON_OPERAND_OUT_OF_RANGE:
		return ErrOperandOutOfRange
	}

	return nil
}

// ValidationError reports the first record rejected by the instruction set
// rules. Index is -1 when the record was validated outside of a program.
type ValidationError struct {
	Index  int
	Reason Reason
	Field  string
	Value  int64
	Want   string
}

func (err *ValidationError) Error() string {
	var prefix string

	if err.Index >= 0 {
		prefix = fmt.Sprintf("instruction %d: ", err.Index)
	}

	switch err.Reason {
	case REASON_MISSING_FIELD:
		return fmt.Sprintf(
			"%sMissing field '%s'", prefix, err.Field,
		)
	case REASON_UNKNOWN_OPCODE:
		return fmt.Sprintf(
			"%sUnknown opcode\n\twant:%s\n\thave:%d",
			prefix,
			err.Want,
			err.Value,
		)
	case REASON_OPERAND_OUT_OF_RANGE:
		return fmt.Sprintf(
			"%sOperand '%s' out of range\n\twant:%s\n\thave:%d",
			prefix,
			err.Field,
			err.Want,
			err.Value,
		)
	}

	return prefix + "Invalid instruction"
}

func (err *ValidationError) Unwrap() error {
	return err.Reason.sentinel()
}

type TruncatedWordError struct {
	Size int
}

func (err *TruncatedWordError) Error() string {
	return fmt.Sprintf(
		"Binary is not a whole number of words\n\twant:multiple of %d\n\thave:%d",
		WORD_BITS/8,
		err.Size,
	)
}

type ReservedBitsError struct {
	Index int
	Word  uint32
}

func (err *ReservedBitsError) Error() string {
	var prefix string

	if err.Index >= 0 {
		prefix = fmt.Sprintf("word %d: ", err.Index)
	}

	return fmt.Sprintf(
		"%sReserved bits set\n\twant:0\n\thave:%#08x",
		prefix,
		err.Word,
	)
}
