package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	// maximum number of body bytes included in a log entry
	maxLoggedBody = 2048
	// set by httpcache on responses served from the cache
	headerFromCache = "X-From-Cache"
)

// redactedParams are query parameters which reveal the user's position.
var redactedParams = []string{"lat", "latitude", "lon", "longitude"}

// logResponse is the response hook for retryablehttp.
// Failed requests are logged as warnings. All responses are logged when DEBUG is enabled.
func logResponse(_ retryablehttp.Logger, r *http.Response) {
	ctx := context.Background()
	level := slog.LevelDebug
	if r.StatusCode >= 400 {
		level = slog.LevelWarn
	}
	if !slog.Default().Enabled(ctx, level) {
		return
	}
	args := []any{
		"method", r.Request.Method,
		"url", redactURL(r.Request.URL),
		"status", r.StatusCode,
		"cached", r.Header.Get(headerFromCache) == "1",
	}
	if level == slog.LevelDebug {
		args = append(args, "header", r.Header)
	}
	body, err := peekBody(r)
	if err != nil {
		slog.Warn("HTTP response: read body", "error", err)
	} else if body != nil {
		args = append(args, "body", body)
	}
	slog.Log(ctx, level, "HTTP response", args...)
}

// redactURL returns a string of u with location parameters masked.
func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	q := u.Query()
	changed := false
	for _, k := range redactedParams {
		if q.Has(k) {
			q.Set(k, "xxx")
			changed = true
		}
	}
	if !changed {
		return u.String()
	}
	u2 := *u
	u2.RawQuery = q.Encode()
	return u2.String()
}

// peekBody returns the body of r for logging and leaves r.Body readable.
// JSON bodies are decoded so they are logged as structured values.
func peekBody(r *http.Response) (any, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	b, err := io.ReadAll(r.Body)
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, nil
	}
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody]) + "...", nil
	}
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/json" {
		var v any
		if json.Unmarshal(b, &v) == nil {
			return v, nil
		}
	}
	return string(b), nil
}
