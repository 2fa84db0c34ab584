package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/orderparse/internal/model"
)

func TestKey(t *testing.T) {
	k := Key("Kimchi(2)", "cat-a", "opts")
	if !strings.HasPrefix(k, keyPrefix) {
		t.Errorf("Expected prefix %s, got %s", keyPrefix, k)
	}
	if k != Key("Kimchi(2)", "cat-a", "opts") {
		t.Error("Expected stable key")
	}
	if k == Key("Kimchi(2)", "cat-b", "opts") {
		t.Error("Expected catalog change to change the key")
	}
	if k == Key("Kimchi(2)", "cat-a", "other") {
		t.Error("Expected option change to change the key")
	}
	if Key("ab", "c", "") == Key("a", "bc", "") {
		t.Error("Expected part boundaries to matter")
	}
}

func TestDiskCache_RoundTripAndExpiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := Key("text", "", "")

	if err := c.Set(key, []byte("value"), 0); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	got, ok := c.Get(key)
	if !ok || string(got) != "value" {
		t.Fatalf("Expected value, got %q %v", got, ok)
	}

	shard := strings.TrimPrefix(key, keyPrefix)[:2]
	if _, err := os.Stat(filepath.Join(dir, shard)); err != nil {
		t.Errorf("Expected shard directory %s, got %v", shard, err)
	}

	if err := c.Set(key, []byte("short"), -time.Second); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, ok := c.Get(key); ok {
		t.Error("Expected expired entry to miss")
	}

	if err := c.Delete(key); err != nil {
		t.Errorf("Expected deleting a missing entry to succeed, got %v", err)
	}
}

func TestDiskCache_Prune(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	_ = c.Set(Key("live", "", ""), []byte("x"), time.Hour)
	_ = c.Set(Key("dead", "", ""), []byte("x"), -time.Minute)

	removed, err := c.Prune()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 pruned, got %d", removed)
	}
	if _, ok := c.Get(Key("live", "", "")); !ok {
		t.Error("Expected live entry kept")
	}

	empty := NewDiskCache(filepath.Join(t.TempDir(), "missing"), time.Hour)
	if n, err := empty.Prune(); err != nil || n != 0 {
		t.Errorf("Expected missing dir to prune nothing, got %d %v", n, err)
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	key := Key("promote", "", "")

	first := NewLayeredCache(time.Minute, dir, time.Hour)
	if err := first.Set(key, []byte("v"), 0); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	second := NewLayeredCache(time.Minute, dir, time.Hour)
	if _, ok := second.Get(key); !ok {
		t.Fatal("Expected disk hit")
	}
	if _, ok := second.Get(key); !ok {
		t.Fatal("Expected memory hit")
	}
	second.Get(Key("absent", "", ""))

	stats := second.Stats()
	if stats.DiskHits != 1 || stats.MemoryHits != 1 || stats.Misses != 1 {
		t.Errorf("Expected 1/1/1, got %+v", stats)
	}
}

func TestStore(t *testing.T) {
	s := NewStore(model.CacheConfig{Enabled: true, Dir: t.TempDir(), MemoryTTL: time.Minute, DiskTTL: time.Hour})
	key := Key("Kimchi(2)5,000원", "fp", "sig")

	order := model.NewParsedOrder()
	order.Items = append(order.Items, model.OrderItem{Name: "Kimchi", Quantity: 2, Price: 5000})
	order.DerivedTotal = 10000

	if err := s.Save(key, Entry{Layout: "loose", Order: order}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	got, ok := s.Lookup(key)
	if !ok {
		t.Fatal("Expected hit")
	}
	if got.Layout != "loose" || got.Order.DerivedTotal != 10000 || len(got.Order.Items) != 1 {
		t.Errorf("Expected stored entry back, got %+v", got)
	}
	if got.StoredAt.IsZero() {
		t.Error("Expected StoredAt set")
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, ok := s.Lookup(key); ok {
		t.Error("Expected miss after clear")
	}
}

func TestStore_Disabled(t *testing.T) {
	s := NewStore(model.CacheConfig{Enabled: false, Dir: t.TempDir()})
	if s != nil {
		t.Fatal("Expected nil store when disabled")
	}
	if err := s.Save("k", Entry{}); err != nil {
		t.Errorf("Expected nil store save to succeed, got %v", err)
	}
	if _, ok := s.Lookup("k"); ok {
		t.Error("Expected nil store to miss")
	}
	if s.Stats() != (Stats{}) {
		t.Error("Expected zero stats")
	}
}
