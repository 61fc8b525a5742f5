package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPSink_RetryLogic(t *testing.T) {
	tests := []struct {
		name          string
		responses     []int // Status codes to return in sequence
		expectRetries int   // Expected number of requests
		expectError   bool
		errorContains string
	}{
		{
			name:          "Success on first attempt",
			responses:     []int{201},
			expectRetries: 1,
		},
		{
			name:          "Success on second attempt after 5xx",
			responses:     []int{500, 201},
			expectRetries: 2,
		},
		{
			name:          "4xx client error - no retry",
			responses:     []int{403},
			expectRetries: 1,
			expectError:   true,
			errorContains: "client error: status code 403",
		},
		{
			name:          "4xx after 5xx - should retry until 4xx then stop",
			responses:     []int{500, 400},
			expectRetries: 2,
			expectError:   true,
			errorContains: "client error: status code 400",
		},
		{
			name:          "All 5xx errors - retry all attempts",
			responses:     []int{500, 502, 503},
			expectRetries: 3,
			expectError:   true,
			errorContains: "server error: status code 503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requestCount := 0

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				if string(body) != "ID,Type" {
					t.Errorf("attempt %d sent body %q", requestCount+1, body)
				}
				if requestCount < len(tt.responses) {
					w.WriteHeader(tt.responses[requestCount])
					requestCount++
					return
				}
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer server.Close()

			sink, err := NewHTTPSink(server.URL+"/reports", time.Millisecond)
			if err != nil {
				t.Fatalf("NewHTTPSink: %v", err)
			}

			_, err = sink.Put(context.Background(), "trailer_report.csv", []byte("ID,Type"), "text/csv")

			if requestCount != tt.expectRetries {
				t.Errorf("Expected %d requests, got %d", tt.expectRetries, requestCount)
			}
			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error, but got none")
				} else if !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("Expected error to contain '%s', got: %s", tt.errorContains, err.Error())
				}
			} else if err != nil {
				t.Errorf("Expected no error, got: %s", err.Error())
			}
		})
	}
}

func TestHTTPSink_NetworkError_Retry(t *testing.T) {
	requestCount := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		if requestCount < 3 {
			// Simulate network error by closing connection
			if hj, ok := w.(http.Hijacker); ok {
				conn, _, _ := hj.Hijack()
				conn.Close()
			}
			return
		}
		w.Write([]byte("# report"))
	}))
	defer server.Close()

	sink, err := NewHTTPSink(server.URL, time.Millisecond)
	if err != nil {
		t.Fatalf("NewHTTPSink: %v", err)
	}

	data, err := sink.Get(context.Background(), "a_report.md")
	if err != nil {
		t.Fatalf("Expected success after retries, got error: %s", err.Error())
	}
	if string(data) != "# report" {
		t.Errorf("unexpected body %q", data)
	}
	if requestCount != 3 {
		t.Errorf("Expected 3 requests, got %d", requestCount)
	}
}

func TestHTTPSink_RejectsBadNames(t *testing.T) {
	sink, err := NewHTTPSink("http://localhost:9", time.Millisecond)
	if err != nil {
		t.Fatalf("NewHTTPSink: %v", err)
	}
	if _, err := sink.Put(context.Background(), "../escape", nil, ""); err == nil {
		t.Error("Expected a validation error")
	}
}
