package beam

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	nxerrors "github.com/nexushq/nexus/pkg/errors"
	"github.com/nexushq/nexus/pkg/integrations"
	"github.com/nexushq/nexus/pkg/observability"
)

// streamDone is the sentinel event terminating an SSE agent run.
const streamDone = "[DONE]"

// RunAgent starts an agent run and streams its server-sent events, invoking
// onEvent with each decoded data payload until the stream ends, the server
// sends [DONE], or ctx is cancelled (ctrl-C aborts mid-stream cleanly).
//
// Streaming bypasses the retry wrapper: a broken stream is surfaced to the
// caller rather than transparently restarted, since the run already consumed
// the prompt.
func (c *Client) RunAgent(ctx context.Context, agentID, prompt string, onEvent func(data string)) error {
	payload, err := json.Marshal(map[string]any{
		"agentId": agentID,
		"input":   prompt,
		"stream":  true,
	})
	if err != nil {
		return nxerrors.Wrap(nxerrors.ErrCodeInvalidInput, err, "encoding agent run")
	}

	endpoint := c.workspacePath("/agents/" + agentID + "/runs")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nxerrors.Wrap(nxerrors.ErrCodeInvalidInput, err, "building agent run request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if err := c.auth.Apply(ctx, req); err != nil {
		return err
	}

	reqID := req.Header.Get("X-Request-ID")
	observability.HTTP().OnRequest(ctx, reqID, http.MethodPost, req.URL.Host, endpoint)
	start := time.Now()
	resp, err := integrations.NewStreamingHTTPClient().Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, reqID, http.MethodPost, req.URL.Host, endpoint, err)
		return nxerrors.Wrap(nxerrors.ErrCodeNetwork, err, "starting agent run")
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, reqID, http.MethodPost, req.URL.Host, endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nxerrors.Wrap(nxerrors.ErrCodeAPI,
			&nxerrors.APIError{StatusCode: resp.StatusCode, Body: string(raw), Endpoint: endpoint},
			"agent run rejected with status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == streamDone {
			return nil
		}
		if data != "" {
			onEvent(data)
		}
	}
	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return nxerrors.Wrap(nxerrors.ErrCodeNetwork, err, "agent run stream interrupted")
	}
	return nil
}
