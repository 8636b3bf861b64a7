// Command proof-upload posts PDF files to a running server and prints their
// review links.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type uploadResponse struct {
	OK    bool   `json:"ok"`
	Token string `json:"token"`
	URL   string `json:"url"`
	Error string `json:"error"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	defaultServer := os.Getenv("PROOFOK_SERVER")
	if defaultServer == "" {
		defaultServer = "http://127.0.0.1:5000"
	}

	var (
		server  string
		name    string
		timeout time.Duration
	)
	flag.StringVar(&server, "server", defaultServer, "base URL of the proof server")
	flag.StringVar(&name, "name", "", "original name to record (single file only)")
	flag.DurationVar(&timeout, "timeout", 60*time.Second, "request timeout")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		log.Fatal("usage: proof-upload [-server URL] [-name NAME] file.pdf [file.pdf ...]")
	}
	if name != "" && len(files) > 1 {
		log.Fatal("-name can only be used with a single file")
	}

	client := &http.Client{Timeout: timeout}
	endpoint := strings.TrimRight(server, "/") + "/api/upload"

	failed := 0
	for _, path := range files {
		resp, err := upload(client, endpoint, path, name)
		if err != nil {
			log.Printf("❌ %s: %v", path, err)
			failed++
			continue
		}
		fmt.Printf("%s\t%s\n", filepath.Base(path), resp.URL)
	}

	if failed > 0 {
		os.Exit(2)
	}
}

func upload(client *http.Client, endpoint, path, name string) (*uploadResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, err
	}
	if name != "" {
		if err := writer.WriteField("original_name", name); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var out uploadResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response (status %d): %w", res.StatusCode, err)
	}
	if res.StatusCode != http.StatusOK || !out.OK {
		if out.Error == "" {
			out.Error = res.Status
		}
		return nil, fmt.Errorf("server rejected upload: %s", out.Error)
	}
	return &out, nil
}
