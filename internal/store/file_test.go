package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"fieldtrack/internal/geo"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "last-fix.json")
	st, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if _, ok, err := st.Load(ctx); err != nil || ok {
		t.Fatalf("Load on empty store = ok:%v err:%v, want ok:false", ok, err)
	}

	rec := LastFixRecord{
		Fix:        geo.NewFix(-6.2, 106.8167, geo.Float(40), geo.Float(5), time.UnixMilli(1000).UTC()),
		ReceivedAt: time.UnixMilli(2000).UTC(),
	}
	if err := st.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := st.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load = ok:%v err:%v", ok, err)
	}
	if got.Fix.Latitude != rec.Fix.Latitude || !got.Fix.Timestamp.Equal(rec.Fix.Timestamp) ||
		!got.ReceivedAt.Equal(rec.ReceivedAt) {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestFileStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	st, err := NewFileStore(filepath.Join(t.TempDir(), "last-fix.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	for i := 1; i <= 3; i++ {
		rec := LastFixRecord{
			Fix:        geo.FixAt(float64(i), float64(i), time.UnixMilli(int64(i)).UTC()),
			ReceivedAt: time.UnixMilli(int64(i)).UTC(),
		}
		if err := st.Save(ctx, rec); err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
	}
	got, ok, err := st.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load = ok:%v err:%v", ok, err)
	}
	if got.Fix.Latitude != 3 {
		t.Fatalf("Load returned stale record: %+v", got)
	}
}
