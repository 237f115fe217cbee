// Package main is the container health probe. It exits 0 when the
// server answers its readiness endpoint with 200.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/garyellow/calmmate-go/internal/config"
)

func main() {
	port := os.Getenv(config.EnvPort)
	if port == "" {
		port = "10000"
	}

	path := "/readyz"
	if len(os.Args) > 1 && os.Args[1] == "-live" {
		path = "/livez"
	}

	client := &http.Client{Timeout: config.ReadinessCheck + 2*time.Second}
	resp, err := client.Get(fmt.Sprintf("http://localhost:%s%s", port, path))
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
