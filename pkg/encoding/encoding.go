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

package encoding

import (
	"encoding/binary"
	"errors"
	"strconv"
	"strings"
)

// Size of a serialized machine word in bytes
const WordSize = 4

// Decodes a hexidecimal string in the formats: 0xFFFFF, xFFFFF, 0xFF, xFF
func DecodeHex(s string) (uint64, error) {
	if i := strings.IndexAny(s, "xX"); i == 0 {
		s = "0" + s
	} else if i == -1 || i != 1 {
		return 0, errors.New("Invalid hex string")
	}

	result, err := strconv.ParseUint(s, 0, 32)

	if err != nil {
		return 0, err
	}

	return result, nil
}

// Decodes a base-10 string in the formats: #123, 123, #-1, -1
func DecodeInt(s string) (int64, error) {
	if i := strings.Index(s, "#"); i == 0 {
		s = s[1:]
	}

	result, err := strconv.ParseInt(s, 10, 64)

	if err != nil {
		return 0, err
	}

	return result, nil
}

// Decodes either literal format, choosing hex when the string carries an x
func DecodeLiteral(s string) (int64, error) {
	s = strings.TrimSpace(s)

	if strings.ContainsAny(s, "xX") {
		result, err := DecodeHex(s)

		if err != nil {
			return 0, err
		}

		return int64(result), nil
	}

	return DecodeInt(s)
}

func FieldMask(bitcount uint) uint32 {
	return uint32(1)<<bitcount - 1
}

// Returns the largest unsigned value representable in bitcount bits
func FieldMax(bitcount uint) uint64 {
	return uint64(FieldMask(bitcount))
}

func InsertField(word uint32, value uint32, offset, bitcount uint) uint32 {
	mask := FieldMask(bitcount) << offset
	return (word &^ mask) | ((value << offset) & mask)
}

func ExtractField(word uint32, offset, bitcount uint) uint32 {
	return (word >> offset) & FieldMask(bitcount)
}

// Serializes a word least-significant byte first
func PutWord(b []byte, word uint32) {
	binary.LittleEndian.PutUint32(b[:WordSize], word)
}

func Word(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b[:WordSize])
}
