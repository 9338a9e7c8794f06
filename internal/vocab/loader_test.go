package vocab

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoader_Load_FiltersAndNormalizes(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Apple\nbanana\nit\ncafe42\ncherry\n\n  pear  \n"))
	}))
	defer srv.Close()

	loader := NewLoader(srv.URL, 5*time.Second, zap.NewNop())
	vocabulary, err := loader.Load(context.Background())
	require.NoError(t, err)

	require.True(t, vocabulary.Contains("apple"))
	require.True(t, vocabulary.Contains("banana"))
	require.True(t, vocabulary.Contains("cherry"))
	require.True(t, vocabulary.Contains("pear"))
	require.False(t, vocabulary.Contains("it"), "words of length <= 2 are dropped")
	require.False(t, vocabulary.Contains("cafe42"), "non-alphabetic words are dropped")
	require.Len(t, vocabulary, 4)
}

func TestLoader_Load_DeduplicatesAcrossCase(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Apple\napple\nAPPLE\n"))
	}))
	defer srv.Close()

	loader := NewLoader(srv.URL, 5*time.Second, zap.NewNop())
	vocabulary, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, vocabulary, 1)
}

func TestLoader_Load_NonSuccessStatusIsHardFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	loader := NewLoader(srv.URL, 5*time.Second, zap.NewNop())
	_, err := loader.Load(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected status 500")
}

func TestLoader_Load_NetworkErrorIsHardFailure(t *testing.T) {
	t.Parallel()

	loader := NewLoader("http://127.0.0.1:1", time.Second, zap.NewNop())
	_, err := loader.Load(context.Background())
	require.Error(t, err)
}
