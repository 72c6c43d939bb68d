// Command sendtest posts a sample contact submission to a running server and
// prints the response.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type submission struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	ProjectType string `json:"projectType"`
	Message     string `json:"message"`
}

var sample = submission{
	Name:        "Test User",
	Email:       "test@example.com",
	ProjectType: "DeFi",
	Message:     "This is a test message",
}

func main() {
	baseURL := flag.String("url", "http://localhost:3001", "server base URL")
	timeout := flag.Duration("timeout", 10*time.Second, "request timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	status, body, err := send(ctx, http.DefaultClient, *baseURL, sample)
	if err != nil {
		fmt.Fprintf(os.Stderr, "problem with request: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("STATUS: %d\n", status)
	fmt.Printf("BODY: %s\n", strings.TrimSpace(body))
	if status != http.StatusCreated {
		os.Exit(1)
	}
}

// send posts sub as JSON to <baseURL>/api/message.
func send(ctx context.Context, client *http.Client, baseURL string, sub submission) (int, string, error) {
	data, err := json.Marshal(sub)
	if err != nil {
		return 0, "", err
	}
	url := strings.TrimRight(baseURL, "/") + "/api/message"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, string(body), nil
}
