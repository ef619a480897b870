package driver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"permanode/domain"
	"permanode/metrics"
	apperrors "permanode/utils/errors"
)

const maxNodeResponseBytes = 1 << 20

var errNodeNotFound = errors.New("node returned 404")

// NodeClient implements port.NodeDriver against node REST endpoints. Each
// request tries every endpoint in order, retrying each one before moving on.
type NodeClient struct {
	endpoints  []string
	retries    int
	limiter    *rate.Limiter
	httpClient *http.Client
}

// NewNodeClient creates a client sharing one limiter across endpoints. A
// non-positive requestsPerSecond disables limiting.
func NewNodeClient(endpoints []string, retriesPerEndpoint int, requestsPerSecond float64, timeout time.Duration) *NodeClient {
	limit := rate.Inf
	burst := 1
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
		burst = int(requestsPerSecond)
		if burst < 1 {
			burst = 1
		}
	}
	if retriesPerEndpoint < 1 {
		retriesPerEndpoint = 1
	}
	trimmed := make([]string, 0, len(endpoints))
	for _, ep := range endpoints {
		trimmed = append(trimmed, strings.TrimRight(ep, "/"))
	}
	return &NodeClient{
		endpoints:  trimmed,
		retries:    retriesPerEndpoint,
		limiter:    rate.NewLimiter(limit, burst),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *NodeClient) GetMessageRaw(ctx context.Context, id domain.MessageID) ([]byte, error) {
	body, err := c.get(ctx, "GetMessageRaw", "/api/v1/messages/"+id.String()+"/raw")
	if errors.Is(err, errNodeNotFound) {
		return nil, apperrors.NewMessageNotFoundError("driver", "node", "GetMessageRaw",
			map[string]interface{}{"message_id": id.String()})
	}
	return body, err
}

type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

func (c *NodeClient) GetMessageMetadata(ctx context.Context, id domain.MessageID) (*domain.MessageMetadata, error) {
	body, err := c.get(ctx, "GetMessageMetadata", "/api/v1/messages/"+id.String()+"/metadata")
	if errors.Is(err, errNodeNotFound) {
		return nil, apperrors.NewMessageNotFoundError("driver", "node", "GetMessageMetadata",
			map[string]interface{}{"message_id": id.String()})
	}
	if err != nil {
		return nil, err
	}

	var env dataEnvelope[json.RawMessage]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decoding metadata response: %w", err)
	}
	return domain.ParseMetadata(env.Data)
}

type nodeMilestone struct {
	Index     uint32           `json:"index"`
	MessageID domain.MessageID `json:"messageId"`
	Timestamp int64            `json:"timestamp"`
}

func (c *NodeClient) GetMilestone(ctx context.Context, index uint32) (*domain.Milestone, error) {
	body, err := c.get(ctx, "GetMilestone", "/api/v1/milestones/"+strconv.FormatUint(uint64(index), 10))
	if errors.Is(err, errNodeNotFound) {
		return nil, apperrors.NewMilestoneNotFoundError("driver", "node", "GetMilestone",
			map[string]interface{}{"milestone_index": index})
	}
	if err != nil {
		return nil, err
	}

	var env dataEnvelope[nodeMilestone]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decoding milestone response: %w", err)
	}
	if env.Data.Index != index {
		return nil, fmt.Errorf("node answered milestone %d for %d", env.Data.Index, index)
	}
	return &domain.Milestone{
		Index:     env.Data.Index,
		MessageID: env.Data.MessageID,
		Timestamp: time.Unix(env.Data.Timestamp, 0).UTC(),
	}, nil
}

// get returns the body of the first 200 response. A 404 moves on to the next
// endpoint without retrying; the result is not found only when every
// endpoint answered 404.
func (c *NodeClient) get(ctx context.Context, operation, path string) ([]byte, error) {
	if len(c.endpoints) == 0 {
		return nil, apperrors.NewEndpointUnavailableError("driver", "node", operation,
			errors.New("no endpoints configured"), nil)
	}

	var lastErr error
	notFound := 0
endpoints:
	for _, endpoint := range c.endpoints {
		for attempt := 1; attempt <= c.retries; attempt++ {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, apperrors.NewOperationTimeoutError("driver", "node", operation, err, nil)
			}

			body, err := c.fetch(ctx, endpoint+path)
			switch {
			case err == nil:
				metrics.NodeRequests.WithLabelValues(operation, "ok").Inc()
				return body, nil
			case errors.Is(err, errNodeNotFound):
				metrics.NodeRequests.WithLabelValues(operation, "not_found").Inc()
				notFound++
				continue endpoints
			case ctx.Err() != nil:
				return nil, apperrors.NewOperationTimeoutError("driver", "node", operation, ctx.Err(), nil)
			}

			metrics.NodeRequests.WithLabelValues(operation, "error").Inc()
			slog.DebugContext(ctx, "node request failed",
				"endpoint", endpoint,
				"path", path,
				"attempt", attempt,
				"error", err,
			)
			lastErr = err
		}
	}
	if notFound == len(c.endpoints) {
		return nil, errNodeNotFound
	}
	return nil, apperrors.NewEndpointUnavailableError("driver", "node", operation, lastErr,
		map[string]interface{}{"path": path})
}

func (c *NodeClient) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errNodeNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%s: unexpected status %d", url, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxNodeResponseBytes))
}
