// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wire implements the external surface of the system (spec.md
// §6): module-definition JSON parsing, the per-bidegree save-file binary
// format, and the tagged-sum message protocol between a resolver and an
// outer shell.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"

	"github.com/SpectralSequences/sseq-sub004/fp"
	"github.com/SpectralSequences/sseq-sub004/matrix"
)

// Kind names a save-file category (spec.md §4.5 "save directory
// partitioned by kind").
type Kind string

const (
	KindDifferential Kind = "differential"
	KindResQI        Kind = "res_qi"
	KindResKernel    Kind = "res_kernel"
	KindResImage     Kind = "res_image"
	KindSecondary    Kind = "secondary"
)

// AlgebraID is the 2-byte algebra tag in a save file's header.
type AlgebraID uint16

const (
	AlgebraAdem   AlgebraID = 0
	AlgebraMilnor AlgebraID = 1
)

var saveMagic = [4]byte{'E', 'X', 'T', 'S'}

// ErrNotFound is returned by SaveDir.Load when no file exists for the
// requested (kind, s, t) in either the read base or the write overlay.
var ErrNotFound = errors.New("wire: no save file for this bidegree")

// ErrNoWriteDir is returned by SaveDir.Store when the directory has no
// write overlay configured.
var ErrNoWriteDir = errors.New("wire: save directory has no write overlay")

// ErrCorrupted reports a checksum mismatch or truncated file; the caller
// should recompute the bidegree (spec.md §7 "Save-file corruption").
type ErrCorrupted struct {
	Path string
	Err  error
}

func (e ErrCorrupted) Error() string {
	return fmt.Sprintf("wire: corrupted save file %s: %v", e.Path, e.Err)
}
func (e ErrCorrupted) Unwrap() error { return e.Err }

// SaveDir is a "split" save directory (spec.md §4.5): Read is an
// optional read-only base checked first, Write is the overlay new data
// is written to. Either may be configured alone.
type SaveDir struct {
	Read  string
	Write string
}

// Record is a decoded save file.
type Record struct {
	Algebra AlgebraID
	Prime   uint32
	S, T    int
	Payload []byte
}

func pathFor(base string, kind Kind, s, t int) string {
	return filepath.Join(base, string(kind), fmt.Sprintf("%d_%d.bin", s, t))
}

// encodeRecord lays out [magic 4B][algebra-id 2B][prime 4B][s 4B][t 4B]
// [payload][checksum 4B], all integers little-endian, checksum a CRC-32
// over every byte preceding it (spec.md §6 "Save file format").
func encodeRecord(alg AlgebraID, p fp.ValidPrime, s, t int, payload []byte) []byte {
	buf := make([]byte, 18+len(payload)+4)
	copy(buf[0:4], saveMagic[:])
	binary.LittleEndian.PutUint16(buf[4:6], uint16(alg))
	binary.LittleEndian.PutUint32(buf[6:10], p.Uint32())
	binary.LittleEndian.PutUint32(buf[10:14], uint32(int32(s)))
	binary.LittleEndian.PutUint32(buf[14:18], uint32(int32(t)))
	copy(buf[18:18+len(payload)], payload)
	sum := crc32.ChecksumIEEE(buf[:18+len(payload)])
	binary.LittleEndian.PutUint32(buf[18+len(payload):], sum)
	return buf
}

func decodeRecord(path string, buf []byte) (*Record, error) {
	if len(buf) < 22 {
		return nil, ErrCorrupted{Path: path, Err: errors.New("truncated file")}
	}
	if [4]byte(buf[0:4]) != saveMagic {
		return nil, ErrCorrupted{Path: path, Err: errors.New("bad magic")}
	}
	body := buf[:len(buf)-4]
	want := binary.LittleEndian.Uint32(buf[len(buf)-4:])
	if crc32.ChecksumIEEE(body) != want {
		return nil, ErrCorrupted{Path: path, Err: errors.New("checksum mismatch")}
	}
	r := &Record{
		Algebra: AlgebraID(binary.LittleEndian.Uint16(buf[4:6])),
		Prime:   binary.LittleEndian.Uint32(buf[6:10]),
		S:       int(int32(binary.LittleEndian.Uint32(buf[10:14]))),
		T:       int(int32(binary.LittleEndian.Uint32(buf[14:18]))),
		Payload: append([]byte(nil), buf[18:len(buf)-4]...),
	}
	return r, nil
}

func loadFrom(base string, kind Kind, s, t int) (*Record, string, error) {
	path := pathFor(base, kind, s, t)
	buf, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, path, ErrNotFound
		}
		return nil, path, err
	}
	rec, err := decodeRecord(path, buf)
	return rec, path, err
}

// Load reads the record for (kind, s, t), checking the read base before
// the write overlay (spec.md §4.5 "the read directory is checked
// first"). A corrupted file is deleted and ErrNotFound is returned so the
// caller recomputes; if deletion fails, an error naming the file and
// wrapping the corruption error is returned (spec.md §7: abort with a
// clear message when recovery itself fails).
func (d SaveDir) Load(kind Kind, s, t int) (*Record, error) {
	if d.Read != "" {
		rec, path, err := loadFrom(d.Read, kind, s, t)
		switch {
		case err == nil:
			return rec, nil
		case errors.Is(err, ErrNotFound):
			// fall through to the overlay
		default:
			if rmErr := os.Remove(path); rmErr != nil {
				return nil, fmt.Errorf("wire: corrupted base file %s and could not delete it: %w", path, err)
			}
			// deleted the stale base copy; still check the overlay
		}
	}
	if d.Write == "" {
		return nil, ErrNotFound
	}
	rec, path, err := loadFrom(d.Write, kind, s, t)
	if err == nil {
		return rec, nil
	}
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if rmErr := os.Remove(path); rmErr != nil {
		return nil, fmt.Errorf("wire: corrupted save file %s and could not delete it: %w", path, err)
	}
	return nil, ErrNotFound
}

// Store writes payload for (kind, s, t) to the write overlay: the file is
// built under a temporary name and renamed onto the target path so a
// concurrent reader observes either the old or the fully-written new file
// (spec.md §5 "Save files ... create a new file and rename onto the
// target path").
func (d SaveDir) Store(kind Kind, alg AlgebraID, p fp.ValidPrime, s, t int, payload []byte) error {
	if d.Write == "" {
		return ErrNoWriteDir
	}
	dir := filepath.Join(d.Write, string(kind))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	target := pathFor(d.Write, kind, s, t)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, encodeRecord(alg, p, s, t, payload), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, target)
}

// EncodeVectors lays out a list of FpVecs as a count (uint32 LE) followed
// by, for each vector, its entry count (uint32 LE) and its MarshalBinary
// limb sequence — used for the "differential" payload kind (spec.md §6
// "for each new generator in degree t, the FpVec image").
func EncodeVectors(vecs []*fp.FpVec) ([]byte, error) {
	var out []byte
	hdr := make([]byte, 4)
	binary.LittleEndian.PutUint32(hdr, uint32(len(vecs)))
	out = append(out, hdr...)
	for _, v := range vecs {
		lenBuf := make([]byte, 4)
		binary.LittleEndian.PutUint32(lenBuf, uint32(v.Len()))
		out = append(out, lenBuf...)
		limbs, err := v.MarshalBinary()
		if err != nil {
			return nil, err
		}
		out = append(out, limbs...)
	}
	return out, nil
}

// EncodeSubspace lays out a subspace as its RREF basis rows via
// EncodeVectors, used for the "res_kernel"/"res_image" payload kinds
// (spec.md §6 "the subspace as an RREF matrix").
func EncodeSubspace(s *matrix.Subspace) ([]byte, error) {
	return EncodeVectors(s.Basis())
}

// DecodeSubspace is EncodeSubspace's inverse; cols is the ambient
// dimension (not itself serialised, since it is already known from the
// bidegree being loaded).
func DecodeSubspace(p fp.ValidPrime, cols int, data []byte) (*matrix.Subspace, error) {
	rows, err := DecodeVectors(p, data)
	if err != nil {
		return nil, err
	}
	return matrix.SubspaceFromRows(p, cols, rows), nil
}

// DecodeVectors is EncodeVectors's inverse.
func DecodeVectors(p fp.ValidPrime, data []byte) ([]*fp.FpVec, error) {
	if len(data) < 4 {
		return nil, errors.New("wire: truncated vector list")
	}
	count := binary.LittleEndian.Uint32(data[0:4])
	data = data[4:]
	out := make([]*fp.FpVec, 0, count)
	for i := uint32(0); i < count; i++ {
		if len(data) < 4 {
			return nil, errors.New("wire: truncated vector entry")
		}
		n := int(binary.LittleEndian.Uint32(data[0:4]))
		data = data[4:]
		byteCount := 8 * fp.NumLimbs(p, n) // MarshalBinary writes 8 bytes per limb
		if len(data) < byteCount {
			return nil, errors.New("wire: truncated vector payload")
		}
		v, err := fp.UnmarshalBinaryInto(p, n, data[:byteCount])
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		data = data[byteCount:]
	}
	return out, nil
}
