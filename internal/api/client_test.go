package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return b
}

func testClient(baseURL string, tweak ...func(*Options)) *HDevClient {
	opts := Options{
		BaseURL:      baseURL,
		APIKey:       "test-key",
		Regions:      []string{"eu", "na"},
		Spacing:      time.Millisecond,
		Retries:      3,
		InitialDelay: 20 * time.Millisecond,
		Multiplier:   2,
		Timeout:      2 * time.Second,
	}
	for _, fn := range tweak {
		fn(&opts)
	}
	return New(opts, zerolog.Nop())
}

type recorder struct {
	mu    sync.Mutex
	times []time.Time
	paths []string
}

func (r *recorder) record(req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.times = append(r.times, time.Now())
	r.paths = append(r.paths, req.URL.Path)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.times)
}

func TestRetryOnRateLimitThenSuccess(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))
		if rec.count() <= 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("X-Ratelimit-Remaining", "41")
		w.Write(fixture(t, "account.json"))
	}))
	defer srv.Close()

	client := testClient(srv.URL)
	account, err := client.FetchAccount(context.Background(), "Alpha", "NA1")
	require.NoError(t, err)
	assert.Equal(t, "p-red-1", account.Puuid)
	assert.Equal(t, 212, account.AccountLevel)

	require.Equal(t, 4, rec.count())
	gaps := make([]time.Duration, 0, 3)
	for i := 1; i < len(rec.times); i++ {
		gaps = append(gaps, rec.times[i].Sub(rec.times[i-1]))
	}
	assert.GreaterOrEqual(t, gaps[0], 20*time.Millisecond)
	assert.GreaterOrEqual(t, gaps[1], 40*time.Millisecond)
	assert.GreaterOrEqual(t, gaps[2], 80*time.Millisecond)
	assert.Greater(t, gaps[2], gaps[0])

	assert.Equal(t, 41, client.RateLimitInfo().Remaining)
}

func TestRetriesExhaustedIsTransient(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := testClient(srv.URL, func(o *Options) { o.InitialDelay = time.Millisecond })
	_, err := client.FetchAccount(context.Background(), "Alpha", "NA1")

	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.False(t, IsPermanent(err))
	var te *TransientError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 4, te.Attempts)
	assert.Equal(t, http.StatusBadGateway, te.StatusCode)
	assert.Equal(t, int32(4), calls.Load())
}

func TestClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchAccount(context.Background(), "Alpha", "NA1")
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestNotFoundAndEmptyPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "Missing") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := testClient(srv.URL)
	_, err := client.FetchAccount(context.Background(), "Missing", "NA1")
	assert.True(t, IsNotFound(err))

	_, err = client.FetchAccount(context.Background(), "Empty", "NA1")
	assert.True(t, IsNotFound(err))
}

func TestMalformedPayloadIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": 200, "data": [`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchAccount(context.Background(), "Alpha", "NA1")
	assert.True(t, IsPermanent(err))
}

func TestRequestSpacing(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		w.Write(fixture(t, "account.json"))
	}))
	defer srv.Close()

	client := testClient(srv.URL, func(o *Options) { o.Spacing = 60 * time.Millisecond })
	for i := 0; i < 3; i++ {
		_, err := client.FetchAccount(context.Background(), "Alpha", "NA1")
		require.NoError(t, err)
	}

	require.Equal(t, 3, rec.count())
	for i := 1; i < 3; i++ {
		assert.GreaterOrEqual(t, rec.times[i].Sub(rec.times[i-1]), 55*time.Millisecond)
	}
}

func TestSingleRequestInFlight(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		for {
			cur := maxInFlight.Load()
			if n <= cur || maxInFlight.CompareAndSwap(cur, n) {
				break
			}
		}
		time.Sleep(15 * time.Millisecond)
		inFlight.Add(-1)
		w.Write(fixture(t, "account.json"))
	}))
	defer srv.Close()

	client := testClient(srv.URL)
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.FetchAccount(context.Background(), "Alpha", "NA1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInFlight.Load())
}

func TestCancellationAbortsRequest(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write(fixture(t, "account.json"))
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := testClient(srv.URL).FetchAccount(ctx, "Alpha", "NA1")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.False(t, IsTransient(err))
}

func TestCancelledRequestKeepsSlotUntilFinished(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		for {
			cur := maxInFlight.Load()
			if n <= cur || maxInFlight.CompareAndSwap(cur, n) {
				break
			}
		}
		time.Sleep(300 * time.Millisecond)
		inFlight.Add(-1)
		w.Write(fixture(t, "account.json"))
	}))
	defer srv.Close()

	client := testClient(srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)
	_, err := client.FetchAccount(ctx, "Alpha", "NA1")
	require.ErrorIs(t, err, context.Canceled)

	// the abandoned request still holds the slot, so this one waits for it
	start := time.Now()
	_, err = client.FetchAccount(context.Background(), "Alpha", "NA1")
	require.NoError(t, err)

	assert.Equal(t, int32(1), maxInFlight.Load())
	assert.GreaterOrEqual(t, time.Since(start), 400*time.Millisecond)
}

func TestFetchMatchDetailsRegionFallback(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		if r.URL.Path == "/valorant/v4/match/na/b3a8c1d2-0000-4000-8000-000000000001" {
			w.Write(fixture(t, "match_v4.json"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	details, err := testClient(srv.URL).FetchMatchDetails(context.Background(), "b3a8c1d2-0000-4000-8000-000000000001")
	require.NoError(t, err)

	assert.Equal(t, SchemaV4, details.Schema)
	assert.Equal(t, "na", details.Region)
	assert.Equal(t, "Ascent", details.MapName)
	assert.False(t, details.Archived)
	assert.Equal(t, []string{
		"/valorant/v4/match/eu/b3a8c1d2-0000-4000-8000-000000000001",
		"/valorant/v4/match/na/b3a8c1d2-0000-4000-8000-000000000001",
	}, rec.paths)
}

func TestFetchMatchDetailsFallsBackToV2(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		if strings.HasPrefix(r.URL.Path, "/valorant/v2/match/") {
			w.Write(fixture(t, "match_v2.json"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	details, err := testClient(srv.URL).FetchMatchDetails(context.Background(), "legacy-0000-0001")
	require.NoError(t, err)

	assert.Equal(t, SchemaV2, details.Schema)
	assert.Equal(t, "legacy-0000-0001", details.MatchID)
	assert.Equal(t, 3, rec.count())
	assert.Equal(t, "/valorant/v2/match/legacy-0000-0001", rec.paths[2])
}

func TestFetchStoredMatchDetailsUsesArchive(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		if r.URL.Path == "/valorant/v4/stored-match/eu/b3a8c1d2-0000-4000-8000-000000000001" {
			w.Write(fixture(t, "match_v4.json"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	details, err := testClient(srv.URL).FetchStoredMatchDetails(context.Background(), "b3a8c1d2-0000-4000-8000-000000000001")
	require.NoError(t, err)
	assert.True(t, details.Archived)
	assert.Equal(t, 1, rec.count())
}

func TestFetchMatchDetailsAllNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchMatchDetails(context.Background(), "nope")
	assert.True(t, IsNotFound(err))
	assert.False(t, IsPermanent(err))
}

func TestFetchMatchDetailsExhaustedIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/eu/") {
			w.Write([]byte(`{"data": {"metadata": "broken"}}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchMatchDetails(context.Background(), "some-match")
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
	assert.False(t, IsNotFound(err))

	var pe *PermanentError
	require.ErrorAs(t, err, &pe)
	assert.Len(t, pe.Causes, 3)
}

func TestFetchMatchHistory(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/valorant/v4/by-puuid/matches/na/pc/p-red-1", r.URL.Path)
		query = r.URL.RawQuery
		w.Write([]byte(`{"status": 200, "data": [
			{"metadata": {"match_id": "m1", "map": {"name": "Ascent"}, "queue": {"id": "competitive"}, "started_at": "2024-10-20T18:30:00Z"}},
			{"metadata": {"match_id": ""}},
			{"metadata": {"match_id": "m2", "map": {"name": "Bind"}, "queue": {"id": "competitive"}, "started_at": "2024-10-19T18:30:00Z"}}
		]}`))
	}))
	defer srv.Close()

	history, err := testClient(srv.URL).FetchMatchHistory(context.Background(), "na", "p-red-1", 5, "competitive")
	require.NoError(t, err)
	assert.Contains(t, query, "mode=competitive")
	assert.Contains(t, query, "size=5")
	require.Len(t, history, 2)
	assert.Equal(t, "m1", history[0].MatchID)
	assert.Equal(t, "competitive", history[1].Mode)
	assert.Equal(t, time.Date(2024, 10, 19, 18, 30, 0, 0, time.UTC), history[1].StartedAt)
}

func TestFetchRank(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/valorant/v3/by-puuid/mmr/eu/pc/p-1", r.URL.Path)
		w.Write([]byte(`{"status": 200, "data": {"current": {"tier": {"id": 21, "name": "Ascendant 1"}, "rr": 57, "elo": 1857}}}`))
	}))
	defer srv.Close()

	rank, err := testClient(srv.URL).FetchRank(context.Background(), "eu", "p-1")
	require.NoError(t, err)
	assert.Equal(t, &Rank{Tier: 21, TierName: "Ascendant 1", RR: 57, Elo: 1857}, rank)
}

func TestBackoff(t *testing.T) {
	client := New(Options{InitialDelay: time.Second, Multiplier: 2}, zerolog.Nop())
	assert.Equal(t, time.Second, client.backoff(0))
	assert.Equal(t, 2*time.Second, client.backoff(1))
	assert.Equal(t, 4*time.Second, client.backoff(2))
}
