package store

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/jpalmerr/scanboard/internal/summary"
)

func strPtr(s string) *string { return &s }

func TestNewMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	if store == nil {
		t.Fatal("NewMemoryStore() = nil")
	}

	if len(store.GetAll()) != 0 {
		t.Errorf("GetAll() = %v items, want 0", len(store.GetAll()))
	}
	if _, ok := store.Countries(); ok {
		t.Error("Countries() ok = true before SetCountries")
	}
}

func TestMemoryStore_Update(t *testing.T) {
	store := NewMemoryStore()

	store.Update(Entry{
		Country:     "is",
		Summary:     summary.Summary{Country: "IS", IPsScanned: 100},
		RefreshedAt: time.Now(),
		LatencyMs:   12,
	})

	all := store.GetAll()
	if len(all) != 1 {
		t.Fatalf("GetAll() = %v items, want 1", len(all))
	}
	if all[0].Country != "IS" {
		t.Errorf("GetAll()[0].Country = %v, want %v", all[0].Country, "IS")
	}

	entry, ok := store.Get("Is")
	if !ok {
		t.Fatal("Get(Is) ok = false, want true")
	}
	if entry.Summary.IPsScanned != 100 {
		t.Errorf("Get().Summary.IPsScanned = %v, want %v", entry.Summary.IPsScanned, 100)
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	if _, ok := NewMemoryStore().Get("NO"); ok {
		t.Error("Get(NO) ok = true on empty store")
	}
}

func TestMemoryStore_UpdateOverwrites(t *testing.T) {
	store := NewMemoryStore()

	store.Update(Entry{Country: "IS", LatencyMs: 100})
	store.Update(Entry{Country: "IS", LatencyMs: 300, Error: strPtr("timeout")})

	all := store.GetAll()
	if len(all) != 1 {
		t.Fatalf("GetAll() = %v items, want 1", len(all))
	}
	if all[0].LatencyMs != 300 {
		t.Errorf("GetAll()[0].LatencyMs = %v, want %v", all[0].LatencyMs, 300)
	}
	if all[0].Error == nil || *all[0].Error != "timeout" {
		t.Errorf("GetAll()[0].Error = %v, want timeout", all[0].Error)
	}
}

func TestMemoryStore_GetAllSorted(t *testing.T) {
	store := NewMemoryStore()

	store.Update(Entry{Country: "SE"})
	store.Update(Entry{Country: "DK"})
	store.Update(Entry{Country: "IS"})

	var got []string
	for _, e := range store.GetAll() {
		got = append(got, e.Country)
	}
	want := []string{"DK", "IS", "SE"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetAll() countries = %v, want %v", got, want)
	}
}

func TestMemoryStore_SetCountries(t *testing.T) {
	store := NewMemoryStore()

	store.Update(Entry{Country: "IS"})
	store.Update(Entry{Country: "DE"})
	store.SetCountries([]string{"no", "IS", " is ", ""})

	got, ok := store.Countries()
	if !ok {
		t.Fatal("Countries() ok = false after SetCountries")
	}
	want := []string{"IS", "NO"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Countries() = %v, want %v", got, want)
	}

	// entries for countries no longer listed are dropped
	if _, ok := store.Get("DE"); ok {
		t.Error("Get(DE) ok = true after DE was removed from the country list")
	}
	if _, ok := store.Get("IS"); !ok {
		t.Error("Get(IS) ok = false, want true")
	}

	// returned slice is a copy
	got[0] = "XX"
	again, _ := store.Countries()
	if again[0] != "IS" {
		t.Error("Countries() returned the internal slice")
	}
}

func TestMemoryStore_SetCountriesEmpty(t *testing.T) {
	store := NewMemoryStore()
	store.SetCountries(nil)

	got, ok := store.Countries()
	if !ok || len(got) != 0 {
		t.Errorf("Countries() = %v, %v, want empty, true", got, ok)
	}
}

func TestMemoryStore_Subscribe(t *testing.T) {
	store := NewMemoryStore()

	ch := store.Subscribe()
	if ch == nil {
		t.Fatal("Subscribe() = nil")
	}

	go func() {
		store.Update(Entry{Country: "IS"})
	}()

	select {
	case entry := <-ch:
		if entry.Country != "IS" {
			t.Errorf("received Country = %v, want %v", entry.Country, "IS")
		}
	case <-time.After(1 * time.Second):
		t.Error("Subscribe() channel did not receive update")
	}
}

func TestMemoryStore_MultipleSubscribers(t *testing.T) {
	store := NewMemoryStore()

	ch1 := store.Subscribe()
	ch2 := store.Subscribe()
	ch3 := store.Subscribe()

	go func() {
		store.Update(Entry{Country: "IS"})
	}()

	received := 0
	timeout := time.After(1 * time.Second)

	for received < 3 {
		select {
		case <-ch1:
			received++
		case <-ch2:
			received++
		case <-ch3:
			received++
		case <-timeout:
			t.Fatalf("Only received %d/3 updates", received)
		}
	}
}

func TestMemoryStore_Unsubscribe(t *testing.T) {
	store := NewMemoryStore()

	ch := store.Subscribe()
	store.Unsubscribe(ch)
	store.Unsubscribe(ch)

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Unsubscribe() channel should be closed")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Unsubscribe() channel should be closed immediately")
	}
}

func TestMemoryStore_SlowSubscriberDoesNotBlock(t *testing.T) {
	store := NewMemoryStore()

	// never read
	_ = store.Subscribe()

	ch2 := store.Subscribe()
	go func() {
		for range ch2 {
		}
	}()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 2*subscriberBuffer; i++ {
			store.Update(Entry{Country: "IS"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("Update() blocked on slow subscriber")
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()

	var wg sync.WaitGroup
	numGoroutines := 10
	numUpdates := 100

	for i := 0; i < numGoroutines; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			for j := 0; j < numUpdates; j++ {
				store.Update(Entry{Country: "IS"})
				store.SetCountries([]string{"IS", "NO"})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < numUpdates; j++ {
				_ = store.GetAll()
				_, _ = store.Get("IS")
				_, _ = store.Countries()
			}
		}()
		go func() {
			defer wg.Done()
			ch := store.Subscribe()
			time.Sleep(10 * time.Millisecond)
			store.Unsubscribe(ch)
		}()
	}

	wg.Wait()
}
