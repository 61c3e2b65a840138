package db

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/elastic/go-elasticsearch/v8"
)

// BulkIndexer const
const NUM_WORKERS = 5
const FLUSH_BYTES = 5000000
const FLUSH_INTERVAL = time.Second * 30

type EsOptions struct {
	Host     string
	Port     int
	Username string
	Password string
	Secure   bool
}

func (o EsOptions) Address() string {
	protocol := "http"
	if o.Secure {
		protocol += "s"
	}
	return fmt.Sprintf("%s://%s:%d", protocol, o.Host, o.Port)
}

// Client Connection
func NewConnectionEs(opts EsOptions) (*elasticsearch.Client, error) {
	retryBackoff := backoff.NewExponentialBackOff()

	cfg := elasticsearch.Config{
		Addresses: []string{opts.Address()},
		Username:  opts.Username,
		Password:  opts.Password,
		Transport: &http.Transport{
			MaxIdleConns:          10,
			ResponseHeaderTimeout: time.Second * 2,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
		},
		// Retry on 429 TooManyRequests statuses
		RetryOnStatus: []int{502, 503, 504, 429},
		// Configure the backoff function
		RetryBackoff: func(attempt int) time.Duration {
			if attempt == 1 {
				retryBackoff.Reset()
			}
			return retryBackoff.NextBackOff()
		},
		MaxRetries: 5,
	}

	return elasticsearch.NewClient(cfg)
}

// Construct Query
func ConstructQuery(q string) *strings.Reader {
	var query = `{"query": {`

	query += fmt.Sprintf("%s}}", q)

	var b strings.Builder
	b.WriteString(query)
	read := strings.NewReader(b.String())
	return read
}
