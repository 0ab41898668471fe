// Package hashfanout feeds each streamed block to every enabled digest
// accumulator in parallel (spec.md §4.5): SHA-1, MD5, and SHA-256 always
// when hash_on_write is set, plus BLAKE3, xxh3, and xxh128 per
// configuration. Results surface as uppercase hex under the
// ltfs.hash.<algo>sum extended-attribute keys spec.md §6 names.
package hashfanout

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"strings"

	"github.com/zeebo/xxh3"
	"lukechampine.com/blake3"
)

// Extended-attribute keys under which digests are recorded, per spec.md §6.
const (
	KeySHA1    = "ltfs.hash.sha1sum"
	KeyMD5     = "ltfs.hash.md5sum"
	KeySHA256  = "ltfs.hash.sha256sum"
	KeyBlake3  = "ltfs.hash.blake3sum"
	KeyXXH3    = "ltfs.hash.xxhash3sum"
	KeyXXH128  = "ltfs.hash.xxhash128sum"
)

// Enabled selects which accumulators a FanOut runs.
type Enabled struct {
	SHA1   bool
	MD5    bool
	SHA256 bool
	Blake3 bool
	XXH3   bool
	XXH128 bool
}

// FanOut accumulates multiple digests over a single stream of blocks
// without re-reading the data, mirroring how the teacher's storage layer
// passes each written record through one code path rather than
// re-traversing the source for every concern.
type FanOut struct {
	enabled Enabled

	sha1   hash.Hash
	md5    hash.Hash
	sha256 hash.Hash
	blake3 hash.Hash
	xxh3   *xxh3.Hasher
	xxh128 *xxh3.Hasher
}

// New constructs a FanOut with only the requested accumulators allocated.
func New(enabled Enabled) *FanOut {
	f := &FanOut{enabled: enabled}
	if enabled.SHA1 {
		f.sha1 = sha1.New()
	}
	if enabled.MD5 {
		f.md5 = md5.New()
	}
	if enabled.SHA256 {
		f.sha256 = sha256.New()
	}
	if enabled.Blake3 {
		f.blake3 = blake3.New(32, nil)
	}
	if enabled.XXH3 {
		f.xxh3 = xxh3.New()
	}
	if enabled.XXH128 {
		f.xxh128 = xxh3.New()
	}
	return f
}

// Write feeds p to every enabled accumulator. It never returns an error:
// hash.Hash.Write is documented to never fail, and xxh3.Hasher follows the
// same contract.
func (f *FanOut) Write(p []byte) {
	if f.sha1 != nil {
		f.sha1.Write(p)
	}
	if f.md5 != nil {
		f.md5.Write(p)
	}
	if f.sha256 != nil {
		f.sha256.Write(p)
	}
	if f.blake3 != nil {
		f.blake3.Write(p)
	}
	if f.xxh3 != nil {
		f.xxh3.Write(p)
	}
	if f.xxh128 != nil {
		f.xxh128.Write(p)
	}
}

// Digests returns the accumulated digests as uppercase hex strings keyed
// by the ltfs.hash.* extended-attribute names, ready to attach to an
// ltfsindex file node. Only accumulators that were enabled are present.
func (f *FanOut) Digests() map[string]string {
	out := make(map[string]string, 6)
	if f.sha1 != nil {
		out[KeySHA1] = upperHex(f.sha1.Sum(nil))
	}
	if f.md5 != nil {
		out[KeyMD5] = upperHex(f.md5.Sum(nil))
	}
	if f.sha256 != nil {
		out[KeySHA256] = upperHex(f.sha256.Sum(nil))
	}
	if f.blake3 != nil {
		out[KeyBlake3] = upperHex(f.blake3.Sum(nil))
	}
	if f.xxh3 != nil {
		out[KeyXXH3] = upperHex(uint64ToBytes(f.xxh3.Sum64()))
	}
	if f.xxh128 != nil {
		sum := f.xxh128.Sum128()
		b := make([]byte, 16)
		binary.BigEndian.PutUint64(b[:8], sum.Hi)
		binary.BigEndian.PutUint64(b[8:], sum.Lo)
		out[KeyXXH128] = upperHex(b)
	}
	return out
}

// QuickDigest computes a single SHA-1 digest over p, used by the optional
// deduplication hook in spec.md §4.5 to key its external lookup before any
// write takes place.
func QuickDigest(p []byte) string {
	sum := sha1.Sum(p)
	return upperHex(sum[:])
}

func upperHex(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

func uint64ToBytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
