// Package embed provides the optional semantic-embedding capability as a
// client for a llama.cpp-compatible embeddings endpoint. Absence of a
// configured host means the capability is simply off; callers degrade to
// lexical-only similarity scoring.
package embed

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

// Request/response mirror llama.cpp's expected schema
type embeddingRequest struct {
	Content string `json:"content"`
}

type embeddingResponse []struct {
	Embedding [][]float32 `json:"embedding"`
}

type Client struct {
	host       string
	httpClient *http.Client
	maxRetries int
	cache      *lru.Cache
	logger     *zap.Logger
}

// New builds a client for the given host. Returns nil when host is empty so
// callers can treat a nil client as capability-absent.
func New(host string, timeout time.Duration, maxRetries, cacheSize int, logger *zap.Logger) *Client {
	if strings.TrimSpace(host) == "" {
		return nil
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		// Only reachable with a non-positive size, which is guarded above.
		cache = nil
	}
	return &Client{
		host:       host,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		cache:      cache,
		logger:     logger,
	}
}

// Embed returns the embedding vector for the text. Identical inputs are
// served from an in-process LRU cache keyed by content hash.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	sum := sha256.Sum256([]byte(text))
	cacheKey := hex.EncodeToString(sum[:])

	if c.cache != nil {
		if cached, ok := c.cache.Get(cacheKey); ok {
			return cached.([]float32), nil
		}
	}

	vector, err := c.fetch(ctx, text)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Add(cacheKey, vector)
	}
	return vector, nil
}

func (c *Client) fetch(ctx context.Context, text string) ([]float32, error) {
	reqBody := embeddingRequest{Content: text}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/embeddings", strings.TrimRight(c.host, "/"))
	var resp *http.Response
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
		if err != nil {
			return nil, fmt.Errorf("create embedding request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		r, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		if r.StatusCode == http.StatusServiceUnavailable {
			// Model loading; retry with backoff
			io.Copy(io.Discard, r.Body)
			r.Body.Close()
			c.logger.Warn("Embedding model loading, retrying")
			c.backoffSleep(attempt)
			continue
		}

		resp = r
		break
	}
	if resp == nil {
		return nil, fmt.Errorf("no response from embedding server: %w", lastErr)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embedding response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding server status %s: %s", resp.Status, string(bodyBytes))
	}

	var er embeddingResponse
	if err := json.Unmarshal(bodyBytes, &er); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(er) == 0 || len(er[0].Embedding) == 0 {
		return nil, fmt.Errorf("embedding response was empty")
	}
	return er[0].Embedding[0], nil
}

func (c *Client) backoffSleep(attempt int) {
	d := time.Second * time.Duration(1<<attempt)
	if d > 10*time.Second {
		d = 10 * time.Second
	}
	time.Sleep(d)
}
