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

package image_test

import (
	"bytes"
	"errors"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassandro/gouvm/pkg/assembler"
	"github.com/lassandro/gouvm/pkg/image"
)

var reference = []byte{
	0x16, 0x69, 0x01, 0x00,
	0xBE, 0x0E, 0x01, 0x00,
	0x1A, 0x11, 0x00, 0x00,
	0x2D, 0x2F, 0x00, 0x00,
}

func TestLoadBin(t *testing.T) {
	img, err := image.LoadBin(bytes.NewReader(reference))
	require.NoError(t, err)
	require.Equal(t, 4, img.Len())
	assert.Equal(t, []uint32{0x16916, 0x10EBE, 0x111A, 0x2F2D}, img.Words)
	assert.Equal(t, reference, img.Bytes())

	want := []string{"LOAD 722", "READ 541", "WRITE 34", "MUL 94"}
	for i, ins := range img.Program.Instructions() {
		assert.Equal(t, want[i], ins.String())
	}
}

func TestLoadBinOneByteReads(t *testing.T) {
	img, err := image.LoadBin(iotest.OneByteReader(bytes.NewReader(reference)))
	require.NoError(t, err)
	assert.Equal(t, 4, img.Program.Len())
}

func TestLoadBinEmpty(t *testing.T) {
	img, err := image.LoadBin(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Equal(t, 0, img.Len())
	assert.Equal(t, 0, img.Program.Len())
}

func TestLoadBinAssembled(t *testing.T) {
	records := []assembler.Record{
		assembler.NewRecord(22, 1048575),
		assembler.NewRecord(62, 0),
		assembler.NewRecord(45, 2047),
	}

	data, err := assembler.Assemble(records)
	require.NoError(t, err)

	img, err := image.LoadBin(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 3, img.Program.Len())
	assert.Equal(t, uint32(1048575), img.Program.At(0).Operand())
	assert.Equal(t, assembler.OPCODE_MUL, img.Program.At(2).Opcode())
	assert.Equal(t, uint32(2047), img.Program.At(2).Operand())
}

func TestLoadBinErrors(t *testing.T) {
	_, err := image.LoadBin(bytes.NewReader(reference[:6]))
	var truncated *assembler.TruncatedWordError
	require.ErrorAs(t, err, &truncated)
	assert.Equal(t, 6, truncated.Size)

	_, err = image.LoadBin(bytes.NewReader([]byte{0x2D, 0x00, 0x04, 0x00}))
	var reserved *assembler.ReservedBitsError
	require.ErrorAs(t, err, &reserved)
	assert.Equal(t, 0, reserved.Index)

	failure := errors.New("device failure")
	_, err = image.LoadBin(iotest.ErrReader(failure))
	require.ErrorIs(t, err, failure)
}
