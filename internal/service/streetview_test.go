package service

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStreetViewFetchSuccess(t *testing.T) {
	imageBytes := []byte("fake-jpeg-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("location") != "Golden Gate Park, San Francisco" {
			t.Errorf("unexpected location: %s", q.Get("location"))
		}
		if q.Get("key") != "maps-key" {
			t.Errorf("unexpected key: %s", q.Get("key"))
		}
		if q.Get("size") != "640x640" || q.Get("fov") != "90" || q.Get("pitch") != "0" {
			t.Errorf("unexpected camera params: size=%s fov=%s pitch=%s", q.Get("size"), q.Get("fov"), q.Get("pitch"))
		}
		w.Write(imageBytes)
	}))
	defer srv.Close()

	s := NewStreetViewService(&StreetViewConfig{APIKey: "maps-key", BaseURL: srv.URL})

	dataURL, err := s.FetchStreetView(context.Background(), "Golden Gate Park, San Francisco")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(imageBytes)
	if dataURL != expected {
		t.Errorf("unexpected data URL: %s", dataURL)
	}
	if !strings.HasPrefix(dataURL, "data:image/jpeg;base64,") {
		t.Errorf("data URL missing prefix: %s", dataURL)
	}
}

func TestStreetViewFetchErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected error
	}{
		{"billing disabled", 403, "Google Cloud billing is not enabled", ErrStreetViewBilling},
		{"invalid key", 403, "The provided API key is invalid", ErrStreetViewInvalidKey},
		{"expired key", 403, "API key expired", ErrStreetViewInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			s := NewStreetViewService(&StreetViewConfig{APIKey: "k", BaseURL: srv.URL})

			_, err := s.FetchStreetView(context.Background(), "somewhere")
			if !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestStreetViewFetchGenericFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
		w.Write([]byte("server error"))
	}))
	defer srv.Close()

	s := NewStreetViewService(&StreetViewConfig{APIKey: "k", BaseURL: srv.URL})

	_, err := s.FetchStreetView(context.Background(), "somewhere")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrStreetViewBilling) || errors.Is(err, ErrStreetViewInvalidKey) {
		t.Errorf("generic failure misclassified: %v", err)
	}
}
