package imagecache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"
	"github.com/zeebo/blake3"
	"golang.org/x/image/draw"
)

// diskFormat is bumped whenever the stored envelope changes. A database
// written with another format is wiped on open.
const diskFormat = 1

var (
	versionKey  = []byte("v")
	thumbPrefix = []byte("t")
)

// envelope is the CBOR record stored per thumbnail. Pix is RGBA.
type envelope struct {
	W   int    `cbor:"w"`
	H   int    `cbor:"h"`
	Pix []byte `cbor:"p"`
}

var (
	encMode     cbor.EncMode
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("imagecache: CBOR encoder initialization failed: " + err.Error())
	}
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		panic("imagecache: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("imagecache: zstd decoder initialization failed: " + err.Error())
	}
}

// Disk is the persistent second level, a LevelDB database of compressed
// thumbnails keyed by the BLAKE3 hash of the cache key.
type Disk struct {
	db *leveldb.DB
}

// OpenDisk opens (creating if needed) the thumbnail database in dir.
func OpenDisk(dir string) (*Disk, error) {
	db, err := leveldb.OpenFile(dir, &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: false,
	})
	if err != nil {
		return nil, fmt.Errorf("open disk cache %s: %w", dir, err)
	}
	d := &Disk{db: db}
	if err := d.checkFormat(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

func (d *Disk) checkFormat() error {
	value, err := d.db.Get(versionKey, nil)
	if err == nil && len(value) == 4 && binary.BigEndian.Uint32(value) == diskFormat {
		return nil
	}
	if err != nil && !errors.Is(err, leveldb.ErrNotFound) {
		return fmt.Errorf("read disk cache version: %w", err)
	}
	if err := d.Clear(); err != nil {
		return err
	}
	version := make([]byte, 4)
	binary.BigEndian.PutUint32(version, diskFormat)
	if err := d.db.Put(versionKey, version, nil); err != nil {
		return fmt.Errorf("write disk cache version: %w", err)
	}
	return nil
}

// Get returns the stored thumbnail for key.
func (d *Disk) Get(key string) (*image.RGBA, bool, error) {
	value, err := d.db.Get(diskKey(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("disk cache get: %w", err)
	}
	raw, err := zstdDecoder.DecodeAll(value, nil)
	if err != nil {
		return nil, false, fmt.Errorf("disk cache decompress: %w", err)
	}
	var env envelope
	if err := cbor.Unmarshal(raw, &env); err != nil {
		return nil, false, fmt.Errorf("disk cache decode: %w", err)
	}
	if env.W <= 0 || env.H <= 0 || len(env.Pix) != env.W*env.H*4 {
		return nil, false, fmt.Errorf("disk cache entry for %q is corrupt", key)
	}
	return &image.RGBA{Pix: env.Pix, Stride: env.W * 4, Rect: image.Rect(0, 0, env.W, env.H)}, true, nil
}

// Put stores img under key.
func (d *Disk) Put(key string, img image.Image) error {
	rgba := toRGBA(img)
	raw, err := encMode.Marshal(envelope{W: rgba.Rect.Dx(), H: rgba.Rect.Dy(), Pix: rgba.Pix})
	if err != nil {
		return fmt.Errorf("disk cache encode: %w", err)
	}
	if err := d.db.Put(diskKey(key), zstdEncoder.EncodeAll(raw, nil), nil); err != nil {
		return fmt.Errorf("disk cache put: %w", err)
	}
	return nil
}

// Delete removes key.
func (d *Disk) Delete(key string) error {
	if err := d.db.Delete(diskKey(key), nil); err != nil {
		return fmt.Errorf("disk cache delete: %w", err)
	}
	return nil
}

// Clear removes every stored thumbnail.
func (d *Disk) Clear() error {
	iter := d.db.NewIterator(ldb_util.BytesPrefix(thumbPrefix), nil)
	batch := new(leveldb.Batch)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return fmt.Errorf("disk cache scan: %w", err)
	}
	if err := d.db.Write(batch, nil); err != nil {
		return fmt.Errorf("disk cache clear: %w", err)
	}
	return nil
}

// Close closes the database.
func (d *Disk) Close() error {
	return d.db.Close()
}

func diskKey(key string) []byte {
	sum := blake3.Sum256([]byte(key))
	return append(append([]byte(nil), thumbPrefix...), sum[:]...)
}

// toRGBA returns img as a tightly packed *image.RGBA anchored at the origin.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == rgba.Rect.Dx()*4 {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
