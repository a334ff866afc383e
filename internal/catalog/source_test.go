package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileSource_LoadsDocument(t *testing.T) {
	src, err := NewFileSource("testdata/catalog.json")
	require.NoError(t, err)

	products, err := src.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 3)
	require.Equal(t, "p1", products[0].ID)
	require.Equal(t, "Revitalift Day Cream", products[0].Name)
	require.Equal(t, "moisturizer", products[0].Category)
}

func TestNewFileSource_EmptyPath(t *testing.T) {
	_, err := NewFileSource("  ")
	require.Error(t, err)
}

func TestFileSource_MissingFile(t *testing.T) {
	src, err := NewFileSource("testdata/nope.json")
	require.NoError(t, err)
	_, err = src.ListProducts(context.Background())
	require.Error(t, err)
}

func TestHTTPSource_LoadsDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"products":[{"id":"p9","name":"Test Serum","category":"serum"}]}`))
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL, WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	products, err := src.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, "p9", products[0].ID)
}

func TestHTTPSource_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL, WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	_, err = src.ListProducts(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
}

func TestHTTPSource_MalformedDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"broken`))
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL, WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	_, err = src.ListProducts(context.Background())
	require.Error(t, err)
}

func TestDecodeDocument_MissingProducts(t *testing.T) {
	_, err := decodeDocument([]byte(`{}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing products")
}
