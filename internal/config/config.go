package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type HTTPServer struct {
	Host string
	Port string
}

type Metadata struct {
	BaseURL string
	APIKey  string
	Pages   int
	Timeout time.Duration
}

type S3 struct {
	Bucket       string
	Prefix       string
	SnapshotKey  string
	ClientType   string
	MockEndpoint string
}

type Refresh struct {
	Interval time.Duration
}

type Config struct {
	HTTP     HTTPServer
	Metadata Metadata
	S3       S3
	Refresh  Refresh
}

const logtag = "[config]"

func Load() *Config {
	configPath := flag.String("config", "", "path env file")
	flag.Parse()

	if *configPath != "" {
		if err := godotenv.Load(*configPath); err != nil {
			log.Fatalf("%s err loading env from file : %v", logtag, err)
		}
		log.Printf("%s using env from : %s", logtag, *configPath)
	} else {
		log.Printf("%s using env from .env", logtag)
		_ = godotenv.Load()
	}

	cfg := &Config{
		HTTP:     *newHTTP(),
		Metadata: *newMetadata(),
		S3:       *newS3(),
		Refresh:  *newRefresh(),
	}

	log.Printf("%s backend config : %+v\n", logtag, cfg)
	return cfg
}

func newHTTP() *HTTPServer {
	return &HTTPServer{
		Port: getenv("HTTP_PORT", "8080"),
		Host: getenv("HTTP_HOST", "localhost"),
	}
}

func newMetadata() *Metadata {
	return &Metadata{
		BaseURL: getenv("METADATA_BASE_URL", "https://api.themoviedb.org/3"),
		APIKey:  getenv("METADATA_API_KEY", ""),
		Pages:   getenvInt("METADATA_PAGES", 3),
		Timeout: getenvDuration("METADATA_TIMEOUT", 10*time.Second),
	}
}

func newS3() *S3 {
	return &S3{
		Bucket:       getenv("S3_BUCKET", "kinoreco-snapshots"),
		Prefix:       getenv("S3_PREFIX", "catalog/"),
		SnapshotKey:  getenv("S3_SNAPSHOT_KEY", "latest.snapshot.gz"),
		ClientType:   getenv("S3_CLIENT_TYPE", "real"),
		MockEndpoint: getenv("MOCK_S3_ENDPOINT", "http://mock-s3-server:9090"),
	}
}

func newRefresh() *Refresh {
	return &Refresh{
		Interval: getenvDuration("REFRESH_INTERVAL", 12*time.Hour),
	}
}

func getenv(key, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		fmt.Printf("%s %s undefined. Using default value %s\n", logtag, key, defaultValue)
		return defaultValue
	}
	fmt.Printf("%s %s = %s\n", logtag, key, val)
	return val
}

func getenvInt(key string, defaultValue int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		log.Printf("%s %s is not a number, using default %d", logtag, key, defaultValue)
		return defaultValue
	}
	return n
}

func getenvDuration(key string, defaultValue time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		log.Printf("%s %s is not a duration, using default %s", logtag, key, defaultValue)
		return defaultValue
	}
	return d
}
