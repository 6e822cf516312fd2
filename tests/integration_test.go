package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"testing"
	"time"
)

func TestServerStartsAndShutsdown(t *testing.T) {
	// Create temp config directory
	tmpDir, err := os.MkdirTemp("", "carelink-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	cmd := exec.Command(binaryPath, "--data", tmpDir)
	cmd.Env = append(os.Environ(),
		"CARELINK_GEMINI_API_KEY=test-key",
		"CARELINK_SERVER_PORT=18094",
	)
	input, _ := os.Open("/dev/null")
	cmd.Stdin = input
	defer input.Close()

	// Start server
	if err := cmd.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	defer cmd.Process.Kill()

	// Give it time to start
	time.Sleep(2 * time.Second)

	// Check if process is running
	if cmd.Process == nil {
		t.Fatal("Server process not running")
	}

	resp, err := http.Get("http://127.0.0.1:18094/api/health")
	if err != nil {
		t.Fatalf("Health check failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("Health check returned %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if len(body) == 0 {
		t.Fatal("Health check returned empty body")
	}
}

func TestServerServesMetrics(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "carelink-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	cmd := exec.Command(binaryPath, "--data", tmpDir)
	cmd.Env = append(os.Environ(),
		"CARELINK_GEMINI_API_KEY=test-key",
		"CARELINK_SERVER_PORT=18095",
	)
	input, _ := os.Open("/dev/null")
	cmd.Stdin = input
	defer input.Close()

	if err := cmd.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	defer cmd.Process.Kill()

	time.Sleep(2 * time.Second)

	resp, err := http.Get("http://127.0.0.1:18095/metrics")
	if err != nil {
		t.Fatalf("Metrics scrape failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("Metrics scrape returned %d", resp.StatusCode)
	}
}

func TestCLIRequiresAPIKey(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "carelink-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	cmd := exec.Command(binaryPath, "-m", "I have a headache", "--data", tmpDir)
	cmd.Env = []string{fmt.Sprintf("PATH=%s", os.Getenv("PATH")), fmt.Sprintf("HOME=%s", tmpDir)}
	input, _ := os.Open("/dev/null")
	cmd.Stdin = input
	defer input.Close()

	output, err := cmd.CombinedOutput()

	// Should fail without an API key configured
	if err == nil {
		t.Fatal("Expected failure without API key")
	}
	if len(output) == 0 {
		t.Fatal("Expected some output even on failure")
	}
}
