package moodsource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchPredictedMood(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sample": {"hr": 72}, "predicted_mood": "Relaxed"}`))
	}))
	defer server.Close()

	client := NewSmartwatch(server.URL, time.Second)
	label, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if label != "Relaxed" {
		t.Fatalf("метка должна возвращаться как есть, получили %q", label)
	}
}

func TestFetchPredictedEmotion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"predicted_emotion": "ps"}`))
	}))
	defer server.Close()

	client := NewVoice(server.URL, time.Second)
	label, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if label != "ps" {
		t.Fatalf("ожидали ps, получили %q", label)
	}
}

func TestFetchMissingFieldIsNotTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewEnvironment(server.URL, time.Second)
	label, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("пустое поле — забота агрегатора, не транспорта: %v", err)
	}
	if label != "" {
		t.Fatalf("ожидали пустую метку, получили %q", label)
	}
}

func TestFetchBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewEnvironment(server.URL, time.Second)
	if _, err := client.Fetch(context.Background()); err == nil {
		t.Fatalf("ожидали ошибку при статусе 502")
	}
}
