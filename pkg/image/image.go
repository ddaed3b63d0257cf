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

package image

import (
	"errors"
	"io"

	"github.com/lassandro/gouvm/pkg/assembler"
	"github.com/lassandro/gouvm/pkg/encoding"
)

// Image is a binary loaded back into words and decoded instructions.
type Image struct {
	Words   []uint32
	Program assembler.Program
}

func (img *Image) Len() int {
	return len(img.Words)
}

// Bytes re-serializes the loaded words.
func (img *Image) Bytes() []byte {
	result := make([]byte, len(img.Words)*encoding.WordSize)

	for i, word := range img.Words {
		encoding.PutWord(result[i*encoding.WordSize:], word)
	}

	return result
}

func LoadBin(reader io.Reader) (*Image, error) {
	var img Image

	scratch := make([]byte, encoding.WordSize)
	size := 0

	for {
		n, err := io.ReadFull(reader, scratch)
		size += n

		if err == io.EOF {
			break
		} else if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, &assembler.TruncatedWordError{Size: size}
		} else if err != nil {
			return nil, err
		}

		img.Words = append(img.Words, encoding.Word(scratch))
	}

	prog, err := assembler.DecodeProgram(img.Bytes())

	if err != nil {
		return nil, err
	}

	img.Program = prog

	return &img, nil
}
