package chart

import (
	"errors"
	"reflect"
	"sync"
	"testing"
)

func TestPage_MountAndLookup(t *testing.T) {
	p := NewPage("a", "b")

	if _, err := p.Mount("b", Config{Type: TypeDoughnut}); err != nil {
		t.Fatalf("Mount(b) error = %v", err)
	}
	if _, err := p.Mount("a", Config{Type: TypeLine}); err != nil {
		t.Fatalf("Mount(a) error = %v", err)
	}

	c, ok := p.Chart("a")
	if !ok {
		t.Fatal("Chart(a) not found")
	}
	if c.Config.Type != TypeLine {
		t.Errorf("Chart(a).Type = %q, want %q", c.Config.Type, TypeLine)
	}

	charts := p.Charts()
	if len(charts) != 2 || charts[0].CanvasID != "b" || charts[1].CanvasID != "a" {
		t.Errorf("Charts() should keep mount order, got %v", charts)
	}
}

func TestPage_CanvasInUse(t *testing.T) {
	p := NewPage("a")

	if _, err := p.Mount("a", Config{}); err != nil {
		t.Fatalf("first Mount() error = %v", err)
	}
	if _, err := p.Mount("a", Config{}); !errors.Is(err, ErrCanvasInUse) {
		t.Fatalf("second Mount() error = %v, want ErrCanvasInUse", err)
	}

	p.Release("a")
	if _, err := p.Mount("a", Config{}); err != nil {
		t.Errorf("Mount() after Release error = %v", err)
	}
	if len(p.Charts()) != 1 {
		t.Errorf("len(Charts()) = %d, want 1", len(p.Charts()))
	}
}

func TestPage_ReleaseUnknown(t *testing.T) {
	p := NewPage("a")
	// should not panic
	p.Release("a")
	p.Release("nope")
}

func TestPage_Declare(t *testing.T) {
	p := NewPage("a")
	p.Declare("b")
	p.Declare("a")

	want := []string{"a", "b"}
	if got := p.Canvases(); !reflect.DeepEqual(got, want) {
		t.Errorf("Canvases() = %v, want %v", got, want)
	}

	if _, err := p.Mount("b", Config{}); err != nil {
		t.Errorf("Mount(b) after Declare error = %v", err)
	}
}

func TestPage_CanvasesIsCopy(t *testing.T) {
	p := NewPage("a")
	ids := p.Canvases()
	ids[0] = "mutated"

	if p.Canvases()[0] != "a" {
		t.Error("mutating Canvases() result affected the page")
	}
}

func TestPage_ConcurrentMount(t *testing.T) {
	p := NewPage("shared")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Mount("shared", Config{}); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Errorf("successful mounts = %d, want 1", successes)
	}
}
