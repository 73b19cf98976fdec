package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ninjaengine/internal/domain"
	"ninjaengine/internal/observability"
)

// textAnalyticsRequest is one document in the batch request shape fixed
// by spec.md §6.
type textAnalyticsRequest struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Language string `json:"language"`
}

type textAnalyticsDocument struct {
	ID        string             `json:"id"`
	Sentiment SentimentResult    `json:"sentiment"`
	Emotion   EmotionResult      `json:"emotion"`
}

type textAnalyticsResponse struct {
	Documents []textAnalyticsDocument `json:"documents"`
	Errors    []struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	} `json:"errors"`
}

// RemoteBackend is a thin HTTP client over an external text-analytics
// service, the tier-2 backend tried after the local scorer.
type RemoteBackend struct {
	url    string
	apiKey string
	client *http.Client
}

// NewRemoteBackend builds a RemoteBackend posting to url, authenticated by
// apiKey (sent as a bearer token). The underlying client is wrapped with
// the shared otelhttp transport so requests are traced like every other
// outbound call in the engine.
func NewRemoteBackend(url, apiKey string, timeout time.Duration) *RemoteBackend {
	client := observability.NewHTTPClient(&http.Client{Timeout: timeout})
	headers := map[string]string{"Content-Type": "application/json"}
	if apiKey != "" {
		headers["Authorization"] = "Bearer " + apiKey
	}
	return &RemoteBackend{
		url:    url,
		apiKey: apiKey,
		client: observability.WithHeaders(client, headers),
	}
}

func (b *RemoteBackend) Ready() bool { return b.url != "" }

func (b *RemoteBackend) Score(ctx context.Context, text string) (EmotionResult, SentimentResult, error) {
	if !b.Ready() {
		return EmotionResult{}, SentimentResult{}, fmt.Errorf("%w: remote text-analytics not configured", domain.ErrFatal)
	}

	batch := []textAnalyticsRequest{{ID: "1", Text: text, Language: "zh-Hans"}}
	body, err := json.Marshal(batch)
	if err != nil {
		return EmotionResult{}, SentimentResult{}, fmt.Errorf("%w: marshal request: %v", domain.ErrFatal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return EmotionResult{}, SentimentResult{}, fmt.Errorf("%w: build request: %v", domain.ErrFatal, err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return EmotionResult{}, SentimentResult{}, fmt.Errorf("%w: text-analytics request: %v", domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		observability.LoggerWithTrace(ctx).Error().Int("status", resp.StatusCode).
			RawJSON("body", observability.RedactJSON(body)).Msg("text-analytics request rejected")
		if resp.StatusCode >= 500 {
			return EmotionResult{}, SentimentResult{}, fmt.Errorf("%w: text-analytics status %d", domain.ErrTransient, resp.StatusCode)
		}
		return EmotionResult{}, SentimentResult{}, fmt.Errorf("%w: text-analytics status %d", domain.ErrFatal, resp.StatusCode)
	}

	var parsed textAnalyticsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return EmotionResult{}, SentimentResult{}, fmt.Errorf("%w: decode response: %v", domain.ErrFatal, err)
	}
	if len(parsed.Documents) == 0 {
		return EmotionResult{}, SentimentResult{}, fmt.Errorf("%w: no documents returned", domain.ErrTransient)
	}

	doc := parsed.Documents[0]
	return doc.Emotion, doc.Sentiment, nil
}
