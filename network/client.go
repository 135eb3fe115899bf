// Package network provides the shared HTTP client used to talk to the feed backend.
package network

import (
	"net/http"
	"time"
)

// Client is shared across backend calls so connections are pooled.
var Client = New(time.Minute)

// New returns an http.Client with a tuned transport and the given overall timeout.
func New(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: newTransport(),
	}
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 32
	t.MaxIdleConnsPerHost = 16
	t.IdleConnTimeout = 90 * time.Second
	t.ResponseHeaderTimeout = 20 * time.Second
	t.ExpectContinueTimeout = time.Second
	return t
}
