package quranapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/quransync/internal/entities"
)

func fastPolicy() RetryPolicy {
	p := DefaultRetryPolicy()
	p.Delay = time.Millisecond
	return p
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(Config{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Retry:      fastPolicy(),
	})
	return client, server
}

func TestFetchWithRetry_ServerErrorAttemptsThreeTimes(t *testing.T) {
	var calls atomic.Int32
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.FetchWithRetry(context.Background(), server.URL+"/surah", fastPolicy())
	require.Error(t, err)

	var statusErr *StatusError
	assert.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchWithRetry_NotFoundIsTerminal(t *testing.T) {
	var calls atomic.Int32
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.FetchWithRetry(context.Background(), server.URL+"/missing", fastPolicy())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchWithRetry_RecoversAfterFailure(t *testing.T) {
	var calls atomic.Int32
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})

	body, err := client.FetchWithRetry(context.Background(), server.URL, fastPolicy())
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchWithRetry_CancelledBeforeStart(t *testing.T) {
	var calls atomic.Int32
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchWithRetry(ctx, server.URL, fastPolicy())
	assert.ErrorIs(t, err, ErrCancelled)
	assert.True(t, IsCancelled(err))
	assert.Zero(t, calls.Load())
}

func TestFetchWithRetry_CancelledDuringBackoff(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		cancel()
		w.WriteHeader(http.StatusInternalServerError)
	})

	policy := fastPolicy()
	policy.Delay = time.Hour

	_, err := client.FetchWithRetry(ctx, server.URL, policy)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchWithRetry_BreakerOpens(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL:         server.URL,
		HTTPClient:      server.Client(),
		Retry:           fastPolicy(),
		BreakerFailures: 2,
	})

	_, err := client.FetchWithRetry(context.Background(), server.URL, fastPolicy())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content API unavailable")
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_AudioOutageDoesNotBlockContent(t *testing.T) {
	cdn := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer cdn.Close()

	var apiCalls atomic.Int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiCalls.Add(1)
		_, _ = w.Write([]byte(`{"code":200,"status":"OK","data":{"number":1,"englishName":"Al-Faatiha","numberOfAyahs":0,"ayahs":[]}}`))
	}))
	defer api.Close()

	client := NewClient(Config{
		BaseURL:         api.URL,
		Retry:           fastPolicy(),
		BreakerFailures: 2,
	})

	for i := 0; i < 3; i++ {
		_, err := client.FetchAudio(context.Background(), cdn.URL+"/1.mp3")
		require.Error(t, err)
	}
	_, err := client.FetchAudio(context.Background(), cdn.URL+"/1.mp3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audio CDN unavailable")

	detail, err := client.SurahEdition(context.Background(), 1, "quran-uthmani")
	require.NoError(t, err)
	assert.Equal(t, "Al-Faatiha", detail.EnglishName)
	assert.Equal(t, int32(1), apiCalls.Load())
}

func TestClient_GetData_EnvelopeError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":400,"status":"Bad Request","data":"Invalid edition"}`))
	})

	_, err := client.SurahEdition(context.Background(), 1, "xx.bogus")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Code)
}

func TestClient_SurahEdition(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/surah/1/en.asad", r.URL.Path)
		_, _ = w.Write([]byte(`{"code":200,"status":"OK","data":{
			"number":1,"name":"سُورَةُ ٱلْفَاتِحَةِ","englishName":"Al-Faatiha","englishNameTranslation":"The Opening",
			"numberOfAyahs":2,"revelationType":"Meccan",
			"ayahs":[
				{"number":1,"text":"In the name of God","numberInSurah":1,"juz":1,"manzil":1,"page":1,"ruku":1,"hizbQuarter":1,"sajda":false},
				{"number":2,"text":"All praise","numberInSurah":2,"juz":1,"manzil":1,"page":1,"ruku":1,"hizbQuarter":1,"sajda":{"id":1,"recommended":true,"obligatory":false}}
			]}}`))
	})

	detail, err := client.SurahEdition(context.Background(), 1, "en.asad")
	require.NoError(t, err)
	assert.Equal(t, "Al-Faatiha", detail.EnglishName)
	assert.Equal(t, entities.RevelationMeccan, detail.RevelationType)
	require.Len(t, detail.Ayahs, 2)
	assert.False(t, detail.Ayahs[0].Sajda.Present)
	assert.True(t, detail.Ayahs[1].Sajda.Present)
	assert.True(t, detail.Ayahs[1].Sajda.Recommended)
}

func TestClient_Tafsir(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ayah/2:255/ar.jalalayn", r.URL.Path)
		_, _ = w.Write([]byte(`{"code":200,"status":"OK","data":{"number":262,"text":"tafsir text"}}`))
	})

	text, err := client.Tafsir(context.Background(), 2, 255, "ar.jalalayn")
	require.NoError(t, err)
	assert.Equal(t, "tafsir text", text)
}

func TestClient_Search_NotFoundIsEmpty(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.EscapedPath(), "/search/mercy%20of/"))
		w.WriteHeader(http.StatusNotFound)
	})

	matches, err := client.Search(context.Background(), "mercy of", "en.sahih")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestClient_Editions_ReciterQuery(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/edition", r.URL.Path)
		assert.Equal(t, "audio", r.URL.Query().Get("format"))
		assert.Equal(t, "versebyverse", r.URL.Query().Get("type"))
		_, _ = w.Write([]byte(`{"code":200,"status":"OK","data":[{"identifier":"ar.alafasy","language":"ar","name":"مشاري العفاسي","englishName":"Alafasy","format":"audio","type":"versebyverse"}]}`))
	})

	editions, err := client.Editions(context.Background(), entities.EditionTypeVerseByVerse)
	require.NoError(t, err)
	require.Len(t, editions, 1)
	assert.Equal(t, "ar.alafasy", editions[0].Identifier)
}

func TestCDNAudioURL(t *testing.T) {
	assert.Equal(t,
		"https://cdn.islamic.network/quran/audio/128/ar.alafasy/262.mp3",
		CDNAudioURL("ar.alafasy", 262))
}
