package logger

import (
	"bytes"
	"io"
	log "log/slog"
	"net/http"
	"time"
)

const esBodyLimit = 1000

// ESTransport 记录每次 ES 请求的耗时与请求体，慢查询单独告警
type ESTransport struct {
	Transport http.RoundTripper
}

func truncateBody(body []byte) string {
	if len(body) > esBodyLimit {
		return string(body[:esBodyLimit]) + "...[truncated]"
	}
	return string(body)
}

func (t *ESTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	var reqBody []byte
	if req.Body != nil {
		reqBody, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewBuffer(reqBody))
	}

	resp, err := t.Transport.RoundTrip(req)
	elapsed := time.Since(start)

	fields := []any{
		log.String("method", req.Method),
		log.String("url", req.URL.String()),
		log.Duration("latency", elapsed),
		log.String("req_body", truncateBody(reqBody)),
	}

	if err != nil {
		log.ErrorContext(req.Context(), "ES_QUERY_ERROR", append(fields, log.Any("err", err))...)
		return nil, err
	}

	var resBody []byte
	if resp.Body != nil {
		resBody, _ = io.ReadAll(resp.Body)
		resp.Body = io.NopCloser(bytes.NewBuffer(resBody))
	}

	fields = append(fields, log.Int("status", resp.StatusCode), log.String("res_body", truncateBody(resBody)))

	if elapsed > 500*time.Millisecond {
		log.WarnContext(req.Context(), "ES_QUERY_SLOW", fields...)
	} else {
		log.InfoContext(req.Context(), "ES_QUERY", fields...)
	}

	return resp, nil
}
