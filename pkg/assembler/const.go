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

import "github.com/lassandro/gouvm/pkg/encoding"

const (
	// Opcode values as defined by the UVM instruction set
	OPCODE_LOAD  Opcode = 22 // Load constant
	OPCODE_READ  Opcode = 62 // Read from memory
	OPCODE_WRITE Opcode = 26 // Write to memory
	OPCODE_MUL   Opcode = 45 // Multiply
)

const (
	WIDTH_OPCODE   uint = 7
	WIDTH_CONSTANT uint = 20
	WIDTH_ADDRESS  uint = 11
)

const (
	// Bit offset of the operand field within a machine word
	OPERAND_OFFSET = WIDTH_OPCODE

	WORD_BITS = encoding.WordSize * 8
)

const (
	REASON_NONE Reason = iota
	REASON_MISSING_FIELD
	REASON_UNKNOWN_OPCODE
	REASON_OPERAND_OUT_OF_RANGE
)

const (
	FIELD_NAME_OPCODE  = "opcode"
	FIELD_NAME_OPERAND = "B"
)

// Opcodes lists the instruction set in a stable order.
var Opcodes = [...]Opcode{
	OPCODE_LOAD,
	OPCODE_READ,
	OPCODE_WRITE,
	OPCODE_MUL,
}
