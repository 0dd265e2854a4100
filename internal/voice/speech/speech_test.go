// internal/voice/speech/speech_test.go
package speech_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tamzrod/modbus-fan/internal/voice/audio"
	"github.com/tamzrod/modbus-fan/internal/voice/speech"
)

var clip = audio.Clip{Samples: []int16{1, 2, 3, 4}, SampleRate: 16000}

func newBaiduServer(t *testing.T, tokenCalls *int32, asr http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(tokenCalls, 1)
		if r.URL.Query().Get("client_id") != "key" || r.URL.Query().Get("client_secret") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid_client"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 2592000})
	})
	mux.HandleFunc("/asr", asr)
	return httptest.NewServer(mux)
}

func TestBaiduClient_Transcribe(t *testing.T) {
	var tokenCalls int32
	server := newBaiduServer(t, &tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req["token"] != "tok" || req["format"] != "pcm" || req["cuid"] != "app-1" {
			t.Errorf("unexpected request: %v", req)
		}
		raw, _ := base64.StdEncoding.DecodeString(req["speech"].(string))
		if len(raw) != 8 || req["len"].(float64) != 8 {
			t.Errorf("speech payload: got %d bytes len=%v", len(raw), req["len"])
		}
		json.NewEncoder(w).Encode(map[string]any{"err_no": 0, "err_msg": "success.", "result": []string{"打开风扇。"}})
	})
	defer server.Close()

	c := speech.NewBaiduClientWithURL(speech.BaiduConfig{
		AppID:     "app-1",
		APIKey:    "key",
		SecretKey: "secret",
		Timeout:   time.Second,
	}, server.URL+"/token", server.URL+"/asr")

	for i := 0; i < 2; i++ {
		text, err := c.Transcribe(context.Background(), clip)
		if err != nil {
			t.Fatalf("transcribe: %v", err)
		}
		if text != "打开风扇。" {
			t.Fatalf("text: got %q", text)
		}
	}

	if atomic.LoadInt32(&tokenCalls) != 1 {
		t.Fatalf("token should be cached, fetched %d times", tokenCalls)
	}
}

func TestBaiduClient_ServiceErrorIsRecognitionError(t *testing.T) {
	var tokenCalls int32
	server := newBaiduServer(t, &tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"err_no": 3301, "err_msg": "speech quality error."})
	})
	defer server.Close()

	c := speech.NewBaiduClientWithURL(speech.BaiduConfig{APIKey: "key", SecretKey: "secret", Timeout: time.Second},
		server.URL+"/token", server.URL+"/asr")

	_, err := c.Transcribe(context.Background(), clip)

	var se *speech.Error
	if !errors.As(err, &se) {
		t.Fatalf("expected *speech.Error, got %v", err)
	}
	if se.Code != 3301 || se.Provider != "baidu" {
		t.Fatalf("unexpected error: %+v", se)
	}
}

func TestBaiduClient_BadCredentials(t *testing.T) {
	var tokenCalls int32
	server := newBaiduServer(t, &tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("asr must not be called without a token")
	})
	defer server.Close()

	c := speech.NewBaiduClientWithURL(speech.BaiduConfig{APIKey: "key", SecretKey: "wrong", Timeout: time.Second},
		server.URL+"/token", server.URL+"/asr")

	var se *speech.Error
	if _, err := c.Transcribe(context.Background(), clip); !errors.As(err, &se) {
		t.Fatalf("expected *speech.Error, got %v", err)
	}
}

func TestWhisperClient_Transcribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.FormValue("model") != "whisper-1" || r.FormValue("language") != "zh" {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"text": "关闭风扇。"})
	}))
	defer server.Close()

	c := speech.NewWhisperClientWithURL("test-key", "zh", server.URL, time.Second)

	text, err := c.Transcribe(context.Background(), clip)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if text != "关闭风扇。" {
		t.Fatalf("text: got %q", text)
	}
}

func TestWhisperClient_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := speech.NewWhisperClientWithURL("k", "", server.URL, time.Second)

	_, err := c.Transcribe(context.Background(), clip)

	var se *speech.Error
	if !errors.As(err, &se) || se.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 speech error, got %v", err)
	}
}
