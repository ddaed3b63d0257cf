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

package main

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassandro/gouvm/pkg/listing"
	"github.com/lassandro/gouvm/pkg/logging"
)

var referenceSource = `[
	{"opcode": 22, "B": 722},
	{"opcode": 62, "B": 541},
	{"opcode": 26, "B": 34},
	{"opcode": 45, "B": 94}
]`

var referenceBinary = []byte{
	0x16, 0x69, 0x01, 0x00,
	0xBE, 0x0E, 0x01, 0x00,
	0x1A, 0x11, 0x00, 0x00,
	0x2D, 0x2F, 0x00, 0x00,
}

func writeSource(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0666))

	return path
}

func runAsm(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	logger, level := logging.New(&stderr, false)
	code := uvmAsm(args, nil, &stdout, &stderr, logger, level)
	syncLogger(logger)()
	return code, stdout.String(), stderr.String()
}

func TestAssembleFile(t *testing.T) {
	path := writeSource(t, "prog.json", referenceSource)

	code, stdout, stderr := runAsm("-debug", "-test", path)
	require.Equal(t, 0, code, stderr)

	data, err := os.ReadFile(filepath.Join(filepath.Dir(path), "prog.bin"))
	require.NoError(t, err)
	assert.Equal(t, referenceBinary, data)

	assert.Contains(t, stdout, "Instruction 0: A=22, B=722\n")
	assert.Contains(t, stdout, "Instruction 3: A=45, B=94\n")
	assert.Contains(t, stdout, "0x016916")

	file, err := os.Open(filepath.Join(filepath.Dir(path), "prog"+listing.TABLE_EXT))
	require.NoError(t, err)
	defer file.Close()

	table, err := listing.ReadTable(file)
	require.NoError(t, err)
	assert.Equal(t, path, table.Source)
	require.Len(t, table.Entries, 4)
	assert.Equal(t, uint32(0x2F2D), table.Entries[3].Word)
}

func TestAssembleYAMLWithWorkers(t *testing.T) {
	path := writeSource(t, "prog.yaml", `
- {opcode: LOAD, B: 722}
- {opcode: READ, B: 541}
- {opcode: WRITE, B: 34}
- {opcode: MUL, B: 94}
`)
	out := filepath.Join(t.TempDir(), "custom.bin")

	code, _, stderr := runAsm("-workers", "4", "-out", out, path)
	require.Equal(t, 0, code, stderr)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, referenceBinary, data)
}

func TestAssembleFormatOverride(t *testing.T) {
	path := writeSource(t, "prog.txt", "- {opcode: 45, B: 94}\n")

	code, _, stderr := runAsm("-format", "yaml", path)
	require.Equal(t, 0, code, stderr)

	code, _, stderr = runAsm("-format", "toml", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown format 'toml'")

	code, _, _ = runAsm(path)
	assert.Equal(t, 1, code)
}

func TestAssembleEmptyProgram(t *testing.T) {
	path := writeSource(t, "empty.json", "[]")

	code, _, stderr := runAsm(path)
	require.Equal(t, 0, code, stderr)

	data, err := os.ReadFile(filepath.Join(filepath.Dir(path), "empty.bin"))
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestAssembleValidationFailure(t *testing.T) {
	path := writeSource(t, "bad.json", `[
		{"opcode": 22, "B": 1},
		{"opcode": 62, "B": 2},
		{"opcode": 45, "B": 2048},
		{"opcode": 26, "B": 3},
		{"opcode": 45, "B": 4},
		{"opcode": 99, "B": 0}
	]`)

	for _, workers := range []string{"1", "3"} {
		code, _, stderr := runAsm("-workers", workers, path)
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "bad.json: instruction 2: Operand 'B' out of range")
		assert.Contains(t, stderr, "want:0..2047")
	}

	_, err := os.Stat(filepath.Join(filepath.Dir(path), "bad.bin"))
	assert.True(t, os.IsNotExist(err))
}

func TestAssembleMissingField(t *testing.T) {
	path := writeSource(t, "missing.json", `[{"opcode": 22}]`)

	code, _, stderr := runAsm(path)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "instruction 0: Missing field 'B'")
}

func TestAssembleStdin(t *testing.T) {
	path := writeSource(t, "piped.json", referenceSource)

	stdin, err := os.Open(path)
	require.NoError(t, err)
	defer stdin.Close()

	out := filepath.Join(t.TempDir(), "out.bin")

	var stdout, stderr bytes.Buffer
	logger, level := logging.New(&stderr, false)
	code := uvmAsm([]string{"-out", out}, stdin, &stdout, &stderr, logger, level)
	require.Equal(t, 0, code, stderr.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, referenceBinary, data)
}

func TestAssembleUsage(t *testing.T) {
	code, stdout, _ := runAsm("-help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, usage)

	code, _, stderr := runAsm()
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, usage)

	code, _, stderr = runAsm(filepath.Join(t.TempDir(), "nope.json"))
	assert.Equal(t, 1, code)
	assert.NotEmpty(t, stderr)

	code, _, stderr = runAsm(t.TempDir())
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "is not a valid UVM program file")
}

func TestAssembleWideOperand(t *testing.T) {
	path := writeSource(t, "wide.json", `[{"opcode": 22, "B": 99999999999999999999}]`)

	code, _, stderr := runAsm(path)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "wide.json: instruction 0: Operand 'B' out of range")
	assert.Contains(t, stderr, "want:0..1048575")
}

func TestAssembleTrailingData(t *testing.T) {
	path := writeSource(t, "trailing.json", `[{"opcode":22,"B":722}] garbage {`)

	code, _, stderr := runAsm(path)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "trailing.json: Unexpected data after program")

	_, err := os.Stat(filepath.Join(filepath.Dir(path), "trailing.bin"))
	assert.True(t, os.IsNotExist(err))
}

func TestSyncLogger(t *testing.T) {
	var stderr bytes.Buffer

	logger, _ := logging.New(&stderr, false)
	logger.Warn("pending")
	require.Empty(t, stderr.String())

	syncLogger(logger)()
	assert.Contains(t, stderr.String(), "WARN\tpending")
}

// TestMainFlushesLog runs main in a child process so that atexit.Exit ends
// it; log lines only reach stderr if the registered handler ran.
func TestMainFlushesLog(t *testing.T) {
	if args, ok := os.LookupEnv("UVM_ASM_ARGS"); ok {
		os.Args = append([]string{"uvm-asm"}, strings.Split(args, "\n")...)
		main()
		return
	}

	path := writeSource(t, "prog.json", referenceSource)

	cmd := exec.Command(os.Args[0], "-test.run=^TestMainFlushesLog$")
	cmd.Env = append(os.Environ(), "UVM_ASM_ARGS=-verbose\n"+path)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	require.NoError(t, cmd.Run(), stderr.String())
	assert.Contains(t, stderr.String(), "DEBUG\treading program")
	assert.Contains(t, stderr.String(), "INFO\twrote binary")

	data, err := os.ReadFile(filepath.Join(filepath.Dir(path), "prog.bin"))
	require.NoError(t, err)
	assert.Equal(t, referenceBinary, data)
}
