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

package listing

import (
	"fmt"
	"io"

	"github.com/lassandro/gouvm/pkg/assembler"
)

// Printer writes human readable views of programs and binaries. Color
// enables ANSI highlighting.
type Printer struct {
	Out   io.Writer
	Color bool
}

func (p *Printer) bold(s string) string {
	if p.Color {
		return "\033[1m" + s + "\033[0m"
	}

	return s
}

func (p *Printer) dim(s string) string {
	if p.Color {
		return "\033[1;30m" + s + "\033[0m"
	}

	return s
}

// PrintProgram prints the internal representation of each instruction as
// its A (opcode) and B (operand) fields.
func (p *Printer) PrintProgram(prog assembler.Program) {
	for i, ins := range prog.Instructions() {
		fmt.Fprintf(
			p.Out, "Instruction %d: A=%d, B=%d\n",
			i, uint8(ins.Opcode()), ins.Operand(),
		)
	}
}

// PrintMem dumps words four to a row, each row prefixed by the index of its
// first word.
func (p *Printer) PrintMem(words []uint32) {
	for i, word := range words {
		if i == 0 {
			fmt.Fprint(p.Out, p.bold(fmt.Sprintf("[%#04x]", i)), " ")
		} else if i%4 == 0 {
			fmt.Fprintln(p.Out)
			fmt.Fprint(p.Out, p.bold(fmt.Sprintf("[%#04x]", i)), " ")
		}

		text := fmt.Sprintf("%#08x", word)

		if word == 0 {
			text = p.dim(text)
		}

		fmt.Fprint(p.Out, text, " ")
	}

	if len(words) > 0 {
		fmt.Fprintln(p.Out)
	}
}

// PrintListing prints one line per instruction with its encoded word. Words
// that disagree with the table are flagged.
func (p *Printer) PrintListing(prog assembler.Program, table *Table) {
	if table != nil && table.Source != "" {
		fmt.Fprintf(p.Out, "; source: %s\n", table.Source)
	}

	for i, ins := range prog.Instructions() {
		word := ins.Word()

		fmt.Fprintf(
			p.Out, "%s %08x  %-5s %d",
			p.bold(fmt.Sprintf("[%#04x]", i)),
			word,
			ins.Opcode(),
			ins.Operand(),
		)

		if entry, ok := table.Lookup(i); ok && entry.Word != word {
			fmt.Fprintf(p.Out, "  ; table mismatch: %08x", entry.Word)
		}

		fmt.Fprintln(p.Out)
	}
}
