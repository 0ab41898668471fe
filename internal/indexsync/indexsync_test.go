package indexsync

import "testing"

func TestRetryBackoffsMatchSpecSchedule(t *testing.T) {
	want := []int{1, 2, 5} // seconds
	if len(retryBackoffs) != len(want) {
		t.Fatalf("expected %d backoff steps, got %d", len(want), len(retryBackoffs))
	}
	for i, seconds := range want {
		if retryBackoffs[i].Seconds() != float64(seconds) {
			t.Fatalf("backoff %d: expected %ds, got %v", i, seconds, retryBackoffs[i])
		}
	}
}

func TestResultPartialOnlyWhenDataSyncedAndIndexNot(t *testing.T) {
	cases := []struct {
		name    string
		result  Result
		partial bool
	}{
		{"both synced", Result{DataPartitionSynced: true, IndexPartitionSynced: true}, false},
		{"only data synced", Result{DataPartitionSynced: true, IndexPartitionSynced: false}, true},
		{"neither synced", Result{}, false},
	}
	for _, c := range cases {
		if got := c.result.Partial(); got != c.partial {
			t.Errorf("%s: expected Partial()=%v, got %v", c.name, c.partial, got)
		}
	}
}

func TestEncodeGenerationBigEndian(t *testing.T) {
	buf := encodeGeneration(0x0102030405060708)
	want := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	if len(buf) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(buf))
	}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("byte %d: expected 0x%02x, got 0x%02x", i, want[i], buf[i])
		}
	}
}

func TestEncodeGenerationSmallValue(t *testing.T) {
	buf := encodeGeneration(1)
	for i := 0; i < 7; i++ {
		if buf[i] != 0 {
			t.Fatalf("expected leading zero bytes, got %02x at %d", buf[i], i)
		}
	}
	if buf[7] != 1 {
		t.Fatalf("expected trailing byte 1, got %d", buf[7])
	}
}
