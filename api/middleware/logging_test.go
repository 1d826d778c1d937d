package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/paddockshare/paddockshare-backend/pkg/logger"
)

func TestLoggingRecordsDownstreamStatus(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})

	handler := Logging(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/brew", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusTeapot {
		t.Fatalf("expected 418 got %d", resp.Code)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"status":418`)) {
		t.Fatalf("expected logged status 418, got %s", buf.String())
	}
}

func TestLoggingDefaultsStatusToOK(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})

	handler := Logging(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if !bytes.Contains(buf.Bytes(), []byte(`"status":200`)) {
		t.Fatalf("expected logged status 200, got %s", buf.String())
	}
}
