package routing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
)

func TestOSRMClient_ParsesRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"Ok","routes":[{"distance":8420.5,"duration":912.0,"geometry":"abc123"}]}`))
	}))
	defer srv.Close()

	client := NewOSRMClient(srv.URL)
	info, err := client.GetRouteInfo(context.Background(),
		domain.LatLng{Lat: 33.8938, Lng: 35.5018},
		domain.LatLng{Lat: 33.8886, Lng: 35.4955})
	require.NoError(t, err)
	assert.InDelta(t, 8.4205, info.DistanceKm, 1e-6)
	assert.InDelta(t, 15.2, info.DurationMin, 1e-6)
	assert.Equal(t, "abc123", info.Polyline)
}

func TestOSRMClient_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"code":"Ok","routes":[{"distance":1000,"duration":60,"geometry":""}]}`))
	}))
	defer srv.Close()

	client := NewOSRMClient(srv.URL)
	info, err := client.GetRouteInfo(context.Background(), domain.LatLng{}, domain.LatLng{Lat: 0.01})
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.InDelta(t, 1.0, info.DistanceKm, 1e-9)
}

func TestOSRMClient_GivesUpAfterRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewOSRMClient(srv.URL)
	_, err := client.GetRouteInfo(context.Background(), domain.LatLng{}, domain.LatLng{Lat: 0.01})
	assert.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls)) // initial + 2 retries
}

func TestOSRMClient_NoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"NoRoute","routes":[]}`))
	}))
	defer srv.Close()

	client := NewOSRMClient(srv.URL)
	_, err := client.GetRouteInfo(context.Background(), domain.LatLng{}, domain.LatLng{Lat: 0.01})
	assert.ErrorContains(t, err, "NoRoute")
}

func TestNominatimClient_ReverseGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dispatch-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"display_name":"Hamra Street, Beirut, Lebanon"}`))
	}))
	defer srv.Close()

	client := NewNominatimClient(srv.URL, "dispatch-test")
	addr, err := client.ReverseGeocode(context.Background(), domain.LatLng{Lat: 33.8959, Lng: 35.4781})
	require.NoError(t, err)
	assert.Equal(t, "Hamra Street, Beirut, Lebanon", addr)
}

func TestNominatimClient_EmptyResultIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"display_name":""}`))
	}))
	defer srv.Close()

	client := NewNominatimClient(srv.URL, "")
	_, err := client.ReverseGeocode(context.Background(), domain.LatLng{})
	assert.Error(t, err)
}
