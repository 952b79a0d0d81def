package exercisedb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFetchExerciseDB verifies the RapidAPI request and field mapping.
func TestFetchExerciseDB(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/exercises/name/barbell bench press", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "rapid-key", r.Header.Get("X-RapidAPI-Key"))
		assert.NotEmpty(t, r.Header.Get("X-RapidAPI-Host"))
		w.Write([]byte(`[{"gifUrl":"https://cdn.example/bench.gif","target":"pectorals","secondaryMuscles":["triceps","delts"]}]`))
	}))
	defer srv.Close()

	c := NewClient("rapid-key", srv.URL, "")
	got, err := c.FetchExerciseDB(context.Background(), "Barbell Bench Press")
	require.NoError(t, err)
	assert.Equal(t, Remote{
		GifURL:           "https://cdn.example/bench.gif",
		PrimaryMuscle:    "pectorals",
		SecondaryMuscles: []string{"triceps", "delts"},
	}, got)
}

// TestFetchExerciseDBEdgeCases covers no key, no match and HTTP failures.
func TestFetchExerciseDBEdgeCases(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path == "/exercises/name/nothing" {
			w.Write([]byte(`[]`))
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	got, err := NewClient("", srv.URL, "").FetchExerciseDB(context.Background(), "Squat")
	require.NoError(t, err)
	assert.Equal(t, Remote{}, got)
	assert.Equal(t, 0, calls, "no key must not call the API")

	c := NewClient("k", srv.URL, "")
	got, err = c.FetchExerciseDB(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Equal(t, Remote{}, got)

	_, err = c.FetchExerciseDB(context.Background(), "squat")
	assert.Error(t, err)
}

// TestFetchWgerImage verifies the search then info lookup.
func TestFetchWgerImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/exercise/search/":
			assert.Equal(t, "Goblet Squat", r.URL.Query().Get("term"))
			assert.Equal(t, "english", r.URL.Query().Get("language"))
			w.Write([]byte(`{"suggestions":[{"value":"Goblet Squat","data":{"id":345}}]}`))
		case "/exerciseinfo/345/":
			w.Write([]byte(`{"images":[{"image":"https://wger.example/345.png"},{"image":"https://wger.example/other.png"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	img, err := NewClient("", "", srv.URL).FetchWgerImage(context.Background(), "Goblet Squat")
	require.NoError(t, err)
	assert.Equal(t, "https://wger.example/345.png", img)
}

// TestFetchWgerImageEmpty verifies that no suggestion or no image yields "".
func TestFetchWgerImageEmpty(t *testing.T) {
	tests := []struct {
		name   string
		search string
		info   string
	}{
		{"no suggestions", `{"suggestions":[]}`, ``},
		{"no images", `{"suggestions":[{"id":7}]}`, `{"images":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/exercise/search/" {
					w.Write([]byte(tt.search))
					return
				}
				w.Write([]byte(tt.info))
			}))
			defer srv.Close()

			img, err := NewClient("", "", srv.URL).FetchWgerImage(context.Background(), "Cable Fly")
			require.NoError(t, err)
			assert.Equal(t, "", img)
		})
	}
}
