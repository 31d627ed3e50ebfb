// Command mocks3 is a minimal S3-compatible HTTP server for local runs
// and e2e tests: put/get/head/delete of blobs in memory, nothing else.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
)

func main() {
	addr := getEnv("MOCK_S3_ADDR", ":9090")
	server := NewMockS3Server(addr)

	go func() {
		if err := server.Start(); err != nil {
			log.Printf("Mock S3 server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down Mock S3 server...")
	if err := server.Stop(context.Background()); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

type MockS3Server struct {
	server *http.Server
	data   *sync.Map
}

func NewMockS3Server(addr string) *MockS3Server {
	mux := http.NewServeMux()
	server := &MockS3Server{
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
		data: &sync.Map{},
	}

	mux.HandleFunc("/", server.handleRequest)
	return server
}

func (m *MockS3Server) Start() error {
	log.Printf("Mock S3 server starting on %s", m.server.Addr)
	return m.server.ListenAndServe()
}

func (m *MockS3Server) Stop(ctx context.Context) error {
	return m.server.Shutdown(ctx)
}

func (m *MockS3Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	bucket, key := extractBucketAndKey(r.URL.Path)

	switch r.Method {
	case http.MethodHead:
		if key == "" {
			m.headBucket(w, bucket)
		} else {
			m.headObject(w, bucket, key)
		}
	case http.MethodGet:
		m.getObject(w, bucket, key)
	case http.MethodPut:
		m.putObject(w, r, bucket, key)
	case http.MethodDelete:
		m.deleteObject(w, bucket, key)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func extractBucketAndKey(path string) (string, string) {
	parts := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func objectKey(bucket, key string) string {
	return fmt.Sprintf("%s/%s", bucket, key)
}

func (m *MockS3Server) headBucket(w http.ResponseWriter, bucket string) {
	if bucket == "" {
		http.Error(w, "Bucket name required", http.StatusBadRequest)
		return
	}

	// Every bucket exists for simplicity
	w.WriteHeader(http.StatusOK)
}

func (m *MockS3Server) headObject(w http.ResponseWriter, bucket, key string) {
	if _, exists := m.data.Load(objectKey(bucket, key)); !exists {
		http.Error(w, "Object not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (m *MockS3Server) getObject(w http.ResponseWriter, bucket, key string) {
	value, exists := m.data.Load(objectKey(bucket, key))
	if !exists {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(value.([]byte))
}

func (m *MockS3Server) putObject(w http.ResponseWriter, r *http.Request, bucket, key string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	m.data.Store(objectKey(bucket, key), body)
	w.WriteHeader(http.StatusOK)
}

func (m *MockS3Server) deleteObject(w http.ResponseWriter, bucket, key string) {
	m.data.Delete(objectKey(bucket, key))
	w.WriteHeader(http.StatusNoContent)
}
