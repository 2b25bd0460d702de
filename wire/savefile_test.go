// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SpectralSequences/sseq-sub004/fp"
)

func TestSaveDirStoreLoadRoundTrip(t *testing.T) {
	p := fp.MustValidPrime(2)
	dir := t.TempDir()
	sd := SaveDir{Write: dir}

	vecs := []*fp.FpVec{fp.FpVecFromSlice(p, []uint32{1, 0, 1}), fp.FpVecFromSlice(p, []uint32{0, 1, 0})}
	payload, err := EncodeVectors(vecs)
	require.NoError(t, err)
	require.NoError(t, sd.Store(KindDifferential, AlgebraMilnor, p, 2, 2, payload))

	rec, err := sd.Load(KindDifferential, 2, 2)
	require.NoError(t, err)
	require.Equal(t, AlgebraMilnor, rec.Algebra)
	require.Equal(t, 2, rec.S)
	require.Equal(t, 2, rec.T)

	got, err := DecodeVectors(p, rec.Payload)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, vecs[0].ToSlice(), got[0].ToSlice())
	require.Equal(t, vecs[1].ToSlice(), got[1].ToSlice())
}

func TestSaveDirLoadMissingIsErrNotFound(t *testing.T) {
	sd := SaveDir{Write: t.TempDir()}
	_, err := sd.Load(KindDifferential, 0, 0)
	require.ErrorIs(t, err, ErrNotFound)
}

// TestSaveDirCorruptionDeletesAndRecomputes covers spec.md §8 S.4: a
// corrupted byte partway through a save file's checksum region must make
// Load delete the file and report ErrNotFound, not silently return
// garbage or a decode panic, so the caller recomputes that bidegree.
func TestSaveDirCorruptionDeletesAndRecomputes(t *testing.T) {
	p := fp.MustValidPrime(2)
	dir := t.TempDir()
	sd := SaveDir{Write: dir}

	payload, err := EncodeVectors([]*fp.FpVec{
		fp.FpVecFromSlice(p, []uint32{1, 1}),
		fp.FpVecFromSlice(p, []uint32{0, 1}),
		fp.FpVecFromSlice(p, []uint32{1, 0}),
	})
	require.NoError(t, err)
	require.NoError(t, sd.Store(KindDifferential, AlgebraMilnor, p, 2, 2, payload))

	path := pathFor(dir, KindDifferential, 2, 2)
	buf, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(buf), 41)
	buf[41] ^= 0xff
	require.NoError(t, os.WriteFile(path, buf, 0o644))

	_, err = sd.Load(KindDifferential, 2, 2)
	require.ErrorIs(t, err, ErrNotFound)
	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr), "corrupted save file must be deleted")
}

func TestSaveDirReadBaseCheckedBeforeOverlay(t *testing.T) {
	p := fp.MustValidPrime(2)
	base, overlay := t.TempDir(), t.TempDir()
	sd := SaveDir{Read: base, Write: overlay}

	basePayload, _ := EncodeVectors([]*fp.FpVec{fp.FpVecFromSlice(p, []uint32{1})})
	require.NoError(t, SaveDir{Write: base}.Store(KindDifferential, AlgebraMilnor, p, 1, 1, basePayload))
	overlayPayload, _ := EncodeVectors([]*fp.FpVec{fp.FpVecFromSlice(p, []uint32{0})})
	require.NoError(t, SaveDir{Write: overlay}.Store(KindDifferential, AlgebraMilnor, p, 1, 1, overlayPayload))

	rec, err := sd.Load(KindDifferential, 1, 1)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(base, string(KindDifferential), "1_1.bin"), pathFor(base, KindDifferential, 1, 1))
	got, err := DecodeVectors(p, rec.Payload)
	require.NoError(t, err)
	require.Equal(t, []uint32{1}, got[0].ToSlice())
}

func TestSaveDirStoreRequiresWriteDir(t *testing.T) {
	p := fp.MustValidPrime(2)
	sd := SaveDir{}
	err := sd.Store(KindDifferential, AlgebraMilnor, p, 0, 0, nil)
	require.ErrorIs(t, err, ErrNoWriteDir)
}
