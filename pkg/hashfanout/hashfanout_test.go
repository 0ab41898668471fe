package hashfanout

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
)

func TestFanOutOnlyEmitsEnabledDigests(t *testing.T) {
	f := New(Enabled{SHA256: true})
	f.Write([]byte("hello world"))
	digests := f.Digests()

	if len(digests) != 1 {
		t.Fatalf("expected exactly one digest, got %d: %v", len(digests), digests)
	}
	if _, ok := digests[KeySHA256]; !ok {
		t.Fatalf("expected %s present, got %v", KeySHA256, digests)
	}
}

func TestFanOutSHA256MatchesStdlib(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	f := New(Enabled{SHA256: true})
	f.Write(data[:10])
	f.Write(data[10:])

	want := sha256.Sum256(data)
	wantHex := strings.ToUpper(hex.EncodeToString(want[:]))

	got := f.Digests()[KeySHA256]
	if got != wantHex {
		t.Fatalf("sha256 mismatch: got %s want %s", got, wantHex)
	}
}

func TestFanOutAllAlgorithmsProduceDistinctDigests(t *testing.T) {
	f := New(Enabled{SHA1: true, MD5: true, SHA256: true, Blake3: true, XXH3: true, XXH128: true})
	f.Write([]byte("ltfs test payload"))
	digests := f.Digests()

	if len(digests) != 6 {
		t.Fatalf("expected 6 digests, got %d", len(digests))
	}
	seen := make(map[string]bool)
	for key, v := range digests {
		if seen[v] {
			t.Fatalf("digest collision across algorithms for key %s: %s", key, v)
		}
		seen[v] = true
		if v != strings.ToUpper(v) {
			t.Fatalf("digest for %s not uppercase: %s", key, v)
		}
	}
}

func TestQuickDigestIsDeterministic(t *testing.T) {
	a := QuickDigest([]byte("same bytes"))
	b := QuickDigest([]byte("same bytes"))
	if a != b {
		t.Fatalf("expected deterministic quick digest, got %s vs %s", a, b)
	}
	c := QuickDigest([]byte("different bytes"))
	if a == c {
		t.Fatalf("expected different digests for different inputs")
	}
}
