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
	"fmt"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/lassandro/gouvm/pkg/encoding"
)

type options struct {
	workers int
}

type Option func(*options)

// WithWorkers spreads validation and encoding over up to n goroutines. The
// output and the reported failure are identical to a sequential run.
func WithWorkers(n int) Option {
	return func(opts *options) {
		opts.workers = n
	}
}

func opcodeSet() string {
	names := make([]string, 0, len(Opcodes))

	for _, op := range Opcodes {
		names = append(names, fmt.Sprintf("%s(%d)", op, uint8(op)))
	}

	return strings.Join(names, ", ")
}

func validate(rec Record) (Instruction, *ValidationError) {
	if rec.Opcode == nil {
		return Instruction{}, &ValidationError{
			Reason: REASON_MISSING_FIELD,
			Field:  FIELD_NAME_OPCODE,
		}
	}

	if rec.Operand == nil {
		return Instruction{}, &ValidationError{
			Reason: REASON_MISSING_FIELD,
			Field:  FIELD_NAME_OPERAND,
		}
	}

	raw := *rec.Opcode

	if raw < 0 || raw > math.MaxUint8 || !Opcode(raw).Valid() {
		return Instruction{}, &ValidationError{
			Reason: REASON_UNKNOWN_OPCODE,
			Field:  FIELD_NAME_OPCODE,
			Value:  raw,
			Want:   opcodeSet(),
		}
	}

	opcode := Opcode(raw)
	operand := *rec.Operand

	if operand < 0 || uint64(operand) > opcode.Max() {
		return Instruction{}, &ValidationError{
			Reason: REASON_OPERAND_OUT_OF_RANGE,
			Field:  FIELD_NAME_OPERAND,
			Value:  operand,
			Want:   fmt.Sprintf("0..%d", opcode.Max()),
		}
	}

	return Instruction{opcode: opcode, operand: uint32(operand)}, nil
}

// Validate checks a single record against the instruction set.
func Validate(rec Record) (Instruction, error) {
	ins, err := validate(rec)

	if err != nil {
		err.Index = -1
		return Instruction{}, err
	}

	return ins, nil
}

// ValidateProgram validates records in order and stops at the first failure,
// reporting its index.
func ValidateProgram(records []Record) (Program, error) {
	instructions := make([]Instruction, 0, len(records))

	for index, rec := range records {
		ins, err := validate(rec)

		if err != nil {
			err.Index = index
			return Program{}, err
		}

		instructions = append(instructions, ins)
	}

	return Program{instructions: instructions}, nil
}

// Word packs the opcode into the low bits and the operand directly above it.
// Bits past the operand field are always zero.
func (ins Instruction) Word() uint32 {
	word := encoding.InsertField(0, uint32(ins.opcode), 0, WIDTH_OPCODE)

	return encoding.InsertField(
		word, ins.operand, OPERAND_OFFSET, ins.opcode.Width(),
	)
}

func (ins Instruction) Encode() [encoding.WordSize]byte {
	var result [encoding.WordSize]byte
	encoding.PutWord(result[:], ins.Word())
	return result
}

func (prog Program) Encode() []byte {
	result := make([]byte, len(prog.instructions)*encoding.WordSize)

	for i, ins := range prog.instructions {
		encoding.PutWord(result[i*encoding.WordSize:], ins.Word())
	}

	return result
}

// Assemble validates and encodes records into a stream of machine words. No
// output is produced unless every record is valid.
func Assemble(records []Record, opts ...Option) ([]byte, error) {
	_, result, err := AssembleProgram(records, opts...)
	return result, err
}

// AssembleProgram is Assemble that also returns the validated program the
// words were encoded from.
func AssembleProgram(records []Record, opts ...Option) (Program, []byte, error) {
	cfg := options{workers: 1}

	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.workers <= 1 || len(records) < 2 {
		prog, err := ValidateProgram(records)

		if err != nil {
			return Program{}, nil, err
		}

		return prog, prog.Encode(), nil
	}

	return assembleParallel(records, cfg.workers)
}

func assembleParallel(records []Record, workers int) (Program, []byte, error) {
	// Each worker owns a contiguous range of the output, addressed by
	// instruction index, and stops at the first failure inside its range.
	chunk := (len(records) + workers - 1) / workers
	chunks := (len(records) + chunk - 1) / chunk

	instructions := make([]Instruction, len(records))
	result := make([]byte, len(records)*encoding.WordSize)
	failures := make([]*ValidationError, chunks)

	var group errgroup.Group
	group.SetLimit(workers)

	for c := 0; c < chunks; c++ {
		c := c
		start := c * chunk
		end := min(start+chunk, len(records))

		group.Go(func() error {
			for index := start; index < end; index++ {
				ins, err := validate(records[index])

				if err != nil {
					err.Index = index
					failures[c] = err
					return err
				}

				instructions[index] = ins
				encoding.PutWord(
					result[index*encoding.WordSize:], ins.Word(),
				)
			}

			return nil
		})
	}

	if err := group.Wait(); err == nil {
		return Program{instructions: instructions}, result, nil
	}

	// Wait reports whichever failure finished first; the lowest chunk holds
	// the lowest index.
	for _, failure := range failures {
		if failure != nil {
			return Program{}, nil, failure
		}
	}

	return Program{instructions: instructions}, result, nil
}

func decodeWord(index int, word uint32) (Instruction, error) {
	opcode := Opcode(encoding.ExtractField(word, 0, WIDTH_OPCODE))

	if !opcode.Valid() {
		return Instruction{}, &ValidationError{
			Index:  index,
			Reason: REASON_UNKNOWN_OPCODE,
			Field:  FIELD_NAME_OPCODE,
			Value:  int64(opcode),
			Want:   opcodeSet(),
		}
	}

	width := opcode.Width()

	if word>>(OPERAND_OFFSET+width) != 0 {
		return Instruction{}, &ReservedBitsError{index, word}
	}

	return Instruction{
		opcode:  opcode,
		operand: encoding.ExtractField(word, OPERAND_OFFSET, width),
	}, nil
}

// DecodeWord is the inverse of Instruction.Word.
func DecodeWord(word uint32) (Instruction, error) {
	return decodeWord(-1, word)
}

func Decode(b []byte) (Instruction, error) {
	if len(b) != encoding.WordSize {
		return Instruction{}, &TruncatedWordError{len(b)}
	}

	return decodeWord(-1, encoding.Word(b))
}

// DecodeProgram splits a binary into words and decodes each one in order.
func DecodeProgram(b []byte) (Program, error) {
	if len(b)%encoding.WordSize != 0 {
		return Program{}, &TruncatedWordError{len(b)}
	}

	instructions := make([]Instruction, 0, len(b)/encoding.WordSize)

	for offset := 0; offset < len(b); offset += encoding.WordSize {
		ins, err := decodeWord(
			offset/encoding.WordSize, encoding.Word(b[offset:]),
		)

		if err != nil {
			return Program{}, err
		}

		instructions = append(instructions, ins)
	}

	return Program{instructions: instructions}, nil
}
