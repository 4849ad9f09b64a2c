package rmdl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		order binary.ByteOrder
		want  string
	}{
		{binary.LittleEndian, "models/hero_LE.rmdl"},
		{binary.BigEndian, "models/hero_BE.rmdl"},
		{nil, "models/hero.rmdl"},
	}
	for _, tt := range tests {
		got := FileName("models/hero", tt.order)
		if got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
		if back := ByteOrderFromFileName(got); back != tt.order {
			t.Errorf("ByteOrderFromFileName(%q) = %v, want %v", got, back, tt.order)
		}
	}
}

func TestByteOrderFromName(t *testing.T) {
	tests := []struct {
		name    string
		want    binary.ByteOrder
		wantErr bool
	}{
		{"le", binary.LittleEndian, false},
		{"Little", binary.LittleEndian, false},
		{"BE", binary.BigEndian, false},
		{"big-endian", binary.BigEndian, false},
		{"middle", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ByteOrderFromName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("got error %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrUnknownByteOrder) {
				t.Errorf("got error %v, want %v", err, ErrUnknownByteOrder)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectByteOrder(t *testing.T) {
	for _, bo := range byteOrders {
		t.Run(bo.name, func(t *testing.T) {
			data := encodeOrFail(t, makeTriangleModel(), bo.order)
			got, err := DetectByteOrder(data)
			if err != nil {
				t.Fatalf("DetectByteOrder failed: %v", err)
			}
			if got != bo.order {
				t.Errorf("got %v, want %v", got, bo.order)
			}
			m, order, err := DecodeAuto(data)
			if err != nil || order != bo.order || len(m.Meshes) != 1 {
				t.Errorf("DecodeAuto = %d meshes, %v, %v", len(m.Meshes), order, err)
			}
		})
	}

	bad := encodeOrFail(t, &Model{}, binary.LittleEndian)
	binary.LittleEndian.PutUint32(bad[headerVersionPos:], 0x02000000)
	if _, err := DetectByteOrder(bad); !errors.Is(err, ErrNoByteOrder) {
		t.Errorf("got error %v, want %v", err, ErrNoByteOrder)
	}
}

func TestReadWriteFile(t *testing.T) {
	dir := t.TempDir()
	want := makeRichModel()

	for _, bo := range byteOrders {
		t.Run(bo.name, func(t *testing.T) {
			path := filepath.Join(dir, FileName("rich", bo.order))
			if err := WriteFile(path, want, bo.order); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}

			// Order taken from the file name.
			got, err := ReadFile(path, nil)
			if err != nil {
				t.Fatalf("ReadFile failed: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Error("ReadFile model mismatch")
			}

			got, err = Open(path, bo.order)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Error("Open model mismatch")
			}
		})
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.rmdl"), nil); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("got error %v, want not-exist", err)
	}
}

func TestZstd(t *testing.T) {
	data := encodeOrFail(t, makeRichModel(), binary.BigEndian)
	packed, err := CompressZstd(data)
	if err != nil {
		t.Fatalf("CompressZstd failed: %v", err)
	}
	if !isZstd(packed) {
		t.Fatal("compressed data has no zstd magic")
	}

	raw, err := MaybeDecompress(packed)
	if err != nil {
		t.Fatalf("MaybeDecompress failed: %v", err)
	}
	if !bytes.Equal(raw, data) {
		t.Error("decompressed bytes differ")
	}

	same, err := MaybeDecompress(data)
	if err != nil || !bytes.Equal(same, data) {
		t.Errorf("plain data changed by MaybeDecompress (err %v)", err)
	}

	// Compressed files load transparently, with the order detected.
	path := filepath.Join(t.TempDir(), "packed.rmdl")
	if err := os.WriteFile(path, packed, 0o644); err != nil {
		t.Fatal(err)
	}
	for _, load := range []func(string, binary.ByteOrder) (*Model, error){ReadFile, Open} {
		m, err := load(path, nil)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if len(m.Materials) != 3 {
			t.Errorf("got %d materials, want 3", len(m.Materials))
		}
	}

	// WriteFile wraps .zst paths; the suffix before .zst still names the order.
	zpath := filepath.Join(t.TempDir(), FileName("rich", binary.BigEndian)+ZstdExt)
	if err := WriteFile(zpath, makeRichModel(), binary.BigEndian); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	onDisk, err := os.ReadFile(zpath)
	if err != nil {
		t.Fatal(err)
	}
	if !isZstd(onDisk) {
		t.Error(".zst file was written uncompressed")
	}
	if got := ByteOrderFromFileName(zpath); got != binary.BigEndian {
		t.Errorf("ByteOrderFromFileName(%q) = %v, want big endian", zpath, got)
	}
	if _, err := ReadFile(zpath, nil); err != nil {
		t.Errorf("ReadFile(.zst) failed: %v", err)
	}
}

func TestCache(t *testing.T) {
	dir := t.TempDir()
	if err := WriteFile(filepath.Join(dir, FileName("tri", binary.LittleEndian)), makeTriangleModel(), binary.LittleEndian); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	c := NewCache(dir, binary.LittleEndian)
	if got := c.Path("tri"); got != filepath.Join(dir, "tri_LE.rmdl") {
		t.Errorf("Path = %q", got)
	}

	var wg sync.WaitGroup
	results := make([]*Model, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := c.Load("tri", "triangle")
			if err != nil {
				t.Errorf("Load failed: %v", err)
				return
			}
			results[i] = m
		}(i)
	}
	wg.Wait()

	for i, m := range results {
		if m != results[0] {
			t.Errorf("load %d returned a different model", i)
		}
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
	if c.Get("triangle") != results[0] {
		t.Error("Get returned a different model")
	}

	if _, err := c.Load("missing", "missing"); err == nil {
		t.Error("expected error for missing model")
	}
	if c.Get("missing") != nil {
		t.Error("failed load was cached")
	}

	c.Remove("triangle")
	if c.Get("triangle") != nil || c.Len() != 0 {
		t.Error("Remove did not drop the model")
	}
	if _, err := c.Load("tri", "a"); err != nil {
		t.Fatal(err)
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
}

func TestInspect(t *testing.T) {
	m := makeTriangleModel()
	data := encodeOrFail(t, m, binary.LittleEndian)
	info, err := Inspect(data, binary.LittleEndian)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}

	l, err := PlanLayout(CountsOf(m))
	if err != nil {
		t.Fatalf("PlanLayout failed: %v", err)
	}
	if !reflect.DeepEqual(info.Regions, l.Regions) {
		t.Errorf("regions from file differ from plan:\ngot  %+v\nwant %+v", info.Regions, l.Regions)
	}
	if info.FileSize != triFileSize || info.ByteOrder != "LE" || info.Version != VersionCurrent {
		t.Errorf("header info = %+v", info)
	}
	if info.Meshes[0].VertexBuf != triVertexBuf || info.Meshes[0].Indices != 3 {
		t.Errorf("mesh info = %+v", info.Meshes[0])
	}
	if got := info.Materials[0].Textures; !reflect.DeepEqual(got, []string{"tex0"}) {
		t.Errorf("textures = %v", got)
	}

	other, err := Inspect(encodeOrFail(t, makeRichModel(), binary.LittleEndian), binary.LittleEndian)
	if err != nil {
		t.Fatal(err)
	}
	if other.Fingerprint == info.Fingerprint {
		t.Error("different files share a fingerprint")
	}
}
