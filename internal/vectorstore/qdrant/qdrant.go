package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/abhishektayde15/argo-chatbot-rag/internal/domain"
	"github.com/abhishektayde15/argo-chatbot-rag/internal/vectorstore"
)

var _ domain.VectorStore = (*Storage)(nil)

// pointNamespace scopes the name-based UUIDs derived from document ids.
var pointNamespace = uuid.MustParse("6f1c1f1e-5b0e-4c53-9a52-7a0d9f1b2c3d")

// Storage is a minimal REST client to Qdrant using cosine distance.
// The embedder name is written into every point payload so Describe can
// report which embedder built the collection.
type Storage struct {
	url        string
	apiKey     string
	collection string
	embedder   string
	client     *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if cfg.URL == "" {
		cfg.URL = "http://localhost:6333"
	}
	if cfg.Collection == "" {
		cfg.Collection = vectorstore.DefaultCollection
	}
	return &Storage{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// PointID maps a document id to the deterministic UUID used as Qdrant point id.
func PointID(docID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(docID)).String()
}

func (s *Storage) collectionURL() string {
	return fmt.Sprintf("%s/collections/%s", s.url, s.collection)
}

func (s *Storage) Drop(ctx context.Context) error {
	var resp struct {
		Result bool `json:"result"`
	}
	status, err := s.do(ctx, http.MethodDelete, s.collectionURL(), nil, &resp)
	if status == http.StatusNotFound {
		return domain.ErrCollectionNotFound
	}
	if err != nil {
		return domain.Wrap("drop collection", domain.ErrVectorIndexUnavailable, err)
	}
	if !resp.Result {
		return domain.ErrCollectionNotFound
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, spec domain.CollectionSpec) error {
	if spec.Dimension <= 0 {
		return errors.New("invalid dimension")
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     spec.Dimension,
			"distance": "Cosine",
		},
	}
	if _, err := s.do(ctx, http.MethodPut, s.collectionURL(), body, nil); err != nil {
		return domain.Wrap("create collection", domain.ErrVectorIndexUnavailable, err)
	}
	s.embedder = spec.Embedder
	return nil
}

func (s *Storage) Describe(ctx context.Context) (domain.CollectionInfo, error) {
	var resp struct {
		Result struct {
			PointsCount int `json:"points_count"`
			Config      struct {
				Params struct {
					Vectors struct {
						Size int `json:"size"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	status, err := s.do(ctx, http.MethodGet, s.collectionURL(), nil, &resp)
	if status == http.StatusNotFound {
		return domain.CollectionInfo{}, fmt.Errorf("%w: collection %q does not exist", domain.ErrVectorIndexUnavailable, s.collection)
	}
	if err != nil {
		return domain.CollectionInfo{}, domain.Wrap("describe collection", domain.ErrVectorIndexUnavailable, err)
	}
	info := domain.CollectionInfo{
		Name:      s.collection,
		Dimension: resp.Result.Config.Params.Vectors.Size,
		Count:     resp.Result.PointsCount,
	}
	if info.Count > 0 {
		if info.Embedder, err = s.sampleEmbedder(ctx); err != nil {
			return domain.CollectionInfo{}, domain.Wrap("describe collection", domain.ErrVectorIndexUnavailable, err)
		}
	}
	return info, nil
}

func (s *Storage) sampleEmbedder(ctx context.Context) (string, error) {
	var resp struct {
		Result struct {
			Points []struct {
				Payload map[string]any `json:"payload"`
			} `json:"points"`
		} `json:"result"`
	}
	req := map[string]any{"limit": 1, "with_payload": true, "with_vector": false}
	if _, err := s.do(ctx, http.MethodPost, s.collectionURL()+"/points/scroll", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Result.Points) == 0 {
		return "", nil
	}
	name, _ := resp.Result.Points[0].Payload["embedder"].(string)
	return name, nil
}

func (s *Storage) Upsert(ctx context.Context, docs []domain.SummaryDocument) error {
	if len(docs) == 0 {
		return nil
	}
	points := make([]map[string]any, len(docs))
	for i, d := range docs {
		points[i] = map[string]any{
			"id":     PointID(d.ID),
			"vector": d.Embedding,
			"payload": map[string]any{
				"doc_id":   d.ID,
				"text":     d.Text,
				"metadata": d.Metadata,
				"embedder": s.embedder,
			},
		}
	}
	body := map[string]any{"points": points}
	if _, err := s.do(ctx, http.MethodPut, s.collectionURL()+"/points?wait=true", body, nil); err != nil {
		return domain.Wrap("upsert", domain.ErrVectorIndexUnavailable, err)
	}
	return nil
}

// Search converts Qdrant's cosine similarity score to a distance (1 - score).
func (s *Storage) Search(ctx context.Context, vector []float32, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		return nil, nil
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64 `json:"score"`
			Payload struct {
				DocID    string            `json:"doc_id"`
				Text     string            `json:"text"`
				Metadata map[string]string `json:"metadata"`
			} `json:"payload"`
		} `json:"result"`
	}
	status, err := s.do(ctx, http.MethodPost, s.collectionURL()+"/points/search", req, &resp)
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: collection %q does not exist", domain.ErrVectorIndexUnavailable, s.collection)
	}
	if err != nil {
		return nil, domain.Wrap("search", domain.ErrVectorIndexUnavailable, err)
	}
	results := make([]domain.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, domain.SearchResult{
			Document: domain.SummaryDocument{
				ID:       r.Payload.DocID,
				Text:     r.Payload.Text,
				Metadata: r.Payload.Metadata,
			},
			Distance: 1 - r.Score,
		})
	}
	return vectorstore.Rank(results, topK), nil
}

func (s *Storage) Close() error { return nil }

// do sends a JSON request and decodes the JSON response into out when out is
// non-nil. The HTTP status is returned even when err is set.
func (s *Storage) do(ctx context.Context, method, url string, body, out any) (int, error) {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rdr)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf("qdrant %s %s failed: %s: %s", method, url, resp.Status, bytes.TrimSpace(msg))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
