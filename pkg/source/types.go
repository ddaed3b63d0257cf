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

package source

import "fmt"

type Format uint

const (
	FORMAT_JSON Format = iota
	FORMAT_YAML
)

const (
	KEY_OPCODE       = "opcode"
	KEY_OPCODE_SHORT = "A"
	KEY_OPERAND      = "B"
)

func (format Format) String() string {
	switch format {
	case FORMAT_JSON:
		return "json"
	case FORMAT_YAML:
		return "yaml"
	}

	return "<invalid>"
}

type NotArrayError struct {
	Received string
}

func (err *NotArrayError) Error() string {
	return fmt.Sprintf(
		"Program must be an array of instructions\n\twant:array\n\thave:%s",
		err.Received,
	)
}

type InvalidRecordError struct {
	Index    int
	Received string
}

func (err *InvalidRecordError) Error() string {
	return fmt.Sprintf(
		"instruction %d: Invalid instruction record\n\twant:object\n\thave:%s",
		err.Index,
		err.Received,
	)
}

type InvalidLiteralError struct {
	Index int
	Field string
	Value string
}

func (err *InvalidLiteralError) Error() string {
	return fmt.Sprintf(
		"instruction %d: Invalid literal for '%s': %s",
		err.Index,
		err.Field,
		err.Value,
	)
}

type TrailingDataError struct {
	Offset int64
}

func (err *TrailingDataError) Error() string {
	return fmt.Sprintf(
		"Unexpected data after program\n\twant:end of input\n\thave:data at offset %d",
		err.Offset,
	)
}
