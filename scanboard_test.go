package scanboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/jpalmerr/scanboard/internal/poller"
	"github.com/jpalmerr/scanboard/internal/store"
	"github.com/jpalmerr/scanboard/internal/summary"
)

// stubSource serves fixed summaries and can be switched to failing.
type stubSource struct {
	mu        sync.Mutex
	countries []string
	fail      error
}

func (s *stubSource) Countries(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.countries...), nil
}

func (s *stubSource) Summary(ctx context.Context, country string) (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return Summary{}, s.fail
	}
	return Summary{Country: country, IPsScanned: 100, IPsActive: 40}, nil
}

func (s *stubSource) setFail(err error) {
	s.mu.Lock()
	s.fail = err
	s.mu.Unlock()
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// freePort returns a port that was free a moment ago.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("failed to create listener: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()
	return port
}

func newTestBoard(t *testing.T, opts ...Option) *Scanboard {
	t.Helper()
	base := []Option{
		WithSource(&stubSource{countries: []string{"IS", "NO"}}),
		WithLogger(testLogger()),
		WithPort(freePort(t)),
	}
	sb, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return sb
}

func TestApply_CountriesResult(t *testing.T) {
	sb := newTestBoard(t)
	st := store.NewMemoryStore()

	sb.apply(st, poller.Result{Kind: poller.KindCountries, Countries: []string{"no", "IS"}})

	codes, ok := st.Countries()
	if !ok {
		t.Fatal("Countries() ok = false, want true")
	}
	if len(codes) != 2 || codes[0] != "IS" || codes[1] != "NO" {
		t.Errorf("Countries() = %v, want [IS NO]", codes)
	}
}

func TestApply_FailedCountriesKeepsList(t *testing.T) {
	sb := newTestBoard(t)
	st := store.NewMemoryStore()
	st.SetCountries([]string{"IS"})

	sb.apply(st, poller.Result{Kind: poller.KindCountries, Err: errors.New("db down")})

	codes, ok := st.Countries()
	if !ok || len(codes) != 1 {
		t.Errorf("Countries() = %v, %v, want [IS], true", codes, ok)
	}
}

func TestApply_SummaryResult(t *testing.T) {
	sb := newTestBoard(t)
	st := store.NewMemoryStore()
	now := time.Now()

	sb.apply(st, poller.Result{
		Kind:        poller.KindSummary,
		Country:     "IS",
		Summary:     Summary{Country: "IS", IPsScanned: 10},
		Latency:     25 * time.Millisecond,
		RefreshedAt: now,
	})

	e, ok := st.Get("IS")
	if !ok {
		t.Fatal("Get(IS) ok = false, want true")
	}
	if e.Summary.IPsScanned != 10 {
		t.Errorf("IPsScanned = %d, want 10", e.Summary.IPsScanned)
	}
	if e.LatencyMs != 25 {
		t.Errorf("LatencyMs = %d, want 25", e.LatencyMs)
	}
	if !e.RefreshedAt.Equal(now) {
		t.Errorf("RefreshedAt = %v, want %v", e.RefreshedAt, now)
	}
	if e.Error != nil {
		t.Errorf("Error = %q, want nil", *e.Error)
	}
}

func TestApply_FailedSummaryKeepsLastGood(t *testing.T) {
	sb := newTestBoard(t)
	st := store.NewMemoryStore()
	st.Update(store.Entry{Country: "IS", Summary: Summary{Country: "IS", IPsScanned: 10}})

	sb.apply(st, poller.Result{Kind: poller.KindSummary, Country: "IS", Err: errors.New("timeout")})

	e, _ := st.Get("IS")
	if e.Summary.IPsScanned != 10 {
		t.Errorf("IPsScanned = %d, want last good value 10", e.Summary.IPsScanned)
	}
	if e.Error == nil || *e.Error != "timeout" {
		t.Errorf("Error = %v, want timeout", e.Error)
	}
}

func TestApply_FailedSummaryWithoutPrevious(t *testing.T) {
	sb := newTestBoard(t)
	st := store.NewMemoryStore()

	sb.apply(st, poller.Result{Kind: poller.KindSummary, Country: "IS", Err: errors.New("timeout")})

	if _, ok := st.Get("IS"); ok {
		t.Error("a failed first refresh should not create an entry")
	}
}

func TestApply_RecordsMetrics(t *testing.T) {
	sb := newTestBoard(t)
	st := store.NewMemoryStore()

	sb.apply(st, poller.Result{Kind: poller.KindCountries, Countries: []string{"IS"}})
	sb.apply(st, poller.Result{Kind: poller.KindSummary, Country: "IS"})
	sb.apply(st, poller.Result{Kind: poller.KindSummary, Country: "IS", Err: errors.New("x")})

	n, err := testutil.GatherAndCount(sb.Registry(), "scanboard_refreshes_total")
	if err != nil {
		t.Fatalf("GatherAndCount() error = %v", err)
	}
	if n != 3 {
		t.Errorf("refresh series = %d, want 3", n)
	}
}

func TestToRefreshResult(t *testing.T) {
	countries := toRefreshResult(poller.Result{
		Kind:      poller.KindCountries,
		Countries: []string{"IS"},
	})
	if countries.Country != "" || len(countries.Countries) != 1 || countries.Summary != nil {
		t.Errorf("countries result = %+v", countries)
	}

	ok := toRefreshResult(poller.Result{Kind: poller.KindSummary, Country: "IS", Summary: Summary{IPsActive: 3}})
	if ok.Summary == nil || ok.Summary.IPsActive != 3 {
		t.Errorf("summary result = %+v", ok)
	}

	failed := toRefreshResult(poller.Result{Kind: poller.KindSummary, Country: "IS", Err: summary.ErrUnknownCountry})
	if failed.Summary != nil || !errors.Is(failed.Err, ErrUnknownCountry) {
		t.Errorf("failed result = %+v", failed)
	}
}

func TestToRefreshResult_CountriesCopied(t *testing.T) {
	codes := []string{"IS", "NO"}
	r := toRefreshResult(poller.Result{Kind: poller.KindCountries, Countries: codes})

	r.Countries[0] = "XX"
	if codes[0] != "IS" {
		t.Error("mutating the callback copy changed the scheduler result")
	}
}
