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
	"encoding/gob"
	"io"

	"github.com/lassandro/gouvm/pkg/assembler"
)

// Extension used for table sidecar files next to a binary
const TABLE_EXT = ".uvmdb"

type Entry struct {
	Opcode  uint8
	Operand uint32
	Word    uint32
}

// Table records what each word of a binary was assembled from.
type Table struct {
	Source  string
	Entries []Entry
}

func NewTable(source string, prog assembler.Program) *Table {
	table := &Table{
		Source:  source,
		Entries: make([]Entry, 0, prog.Len()),
	}

	for _, ins := range prog.Instructions() {
		table.Entries = append(table.Entries, Entry{
			Opcode:  uint8(ins.Opcode()),
			Operand: ins.Operand(),
			Word:    ins.Word(),
		})
	}

	return table
}

func (table *Table) Lookup(index int) (Entry, bool) {
	if table == nil || index < 0 || index >= len(table.Entries) {
		return Entry{}, false
	}

	return table.Entries[index], true
}

func WriteTable(w io.Writer, table *Table) error {
	return gob.NewEncoder(w).Encode(table)
}

func ReadTable(r io.Reader) (*Table, error) {
	var table Table

	if err := gob.NewDecoder(r).Decode(&table); err != nil {
		return nil, err
	}

	return &table, nil
}
