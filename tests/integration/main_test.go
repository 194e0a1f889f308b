//go:build integration
// +build integration

package integration

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestHealthz(t *testing.T) {
	resp, err := http.Get(fmt.Sprintf("%s/healthz", baseURL()))
	if err != nil {
		t.Fatalf("health check request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}
}

func TestPingDependencies(t *testing.T) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/ping", baseURL()))
	if err != nil {
		t.Fatalf("ping request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dependencies unhealthy: %d", resp.StatusCode)
	}
}

func TestMetricsExposed(t *testing.T) {
	resp, err := http.Get(fmt.Sprintf("%s/metrics", baseURL()))
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "http_requests_total") {
		t.Fatal("http_requests_total not exported")
	}
}
