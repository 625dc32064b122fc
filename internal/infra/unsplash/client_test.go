package unsplash

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/weather-records/internal/domain/enrichment"
)

func TestSearchPhotos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "/search/photos", r.URL.Path)
		require.Equal(t, "Kyoto", q.Get("query"))
		require.Equal(t, "2", q.Get("per_page"))
		require.Equal(t, "access", q.Get("client_id"))
		_, _ = w.Write([]byte(`{"results":[
			{"alt_description":"temple at dusk","description":"ignored","urls":{"regular":"r1.jpg","thumb":"t1.jpg"}},
			{"alt_description":null,"description":" bamboo path ","urls":{"regular":"r2.jpg","thumb":"t2.jpg"}},
			{"urls":{"regular":"r3.jpg","thumb":"t3.jpg"}},
			{"urls":{"thumb":"only-thumb.jpg"}}
		]}`))
	}))
	defer server.Close()

	client := NewClient("access", server.URL, time.Second, nil)
	photos, err := client.SearchPhotos(context.Background(), "Kyoto", 2)
	require.NoError(t, err)
	require.Equal(t, []enrichment.Photo{
		{URL: "r1.jpg", ThumbnailURL: "t1.jpg", Caption: "temple at dusk"},
		{URL: "r2.jpg", ThumbnailURL: "t2.jpg", Caption: "bamboo path"},
		{URL: "r3.jpg", ThumbnailURL: "t3.jpg", Caption: "Kyoto"},
	}, photos)
}

func TestSearchPhotosErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient("access", server.URL, time.Second, nil)
	_, err := client.SearchPhotos(context.Background(), "Kyoto", 2)
	require.ErrorContains(t, err, "status=401")
}

func TestSearchPhotosRequiresKey(t *testing.T) {
	client := NewClient("", "", time.Second, nil)
	_, err := client.SearchPhotos(context.Background(), "Kyoto", 2)
	require.ErrorIs(t, err, errMissingKey)
}
