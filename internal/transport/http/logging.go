package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	requestBodyLogKey  = "http.request.body.summary"
	responseBodyLogKey = "http.response.body.summary"
	maxLoggedBody      = 2048
)

var redactedKeyParts = []string{"password", "secret", "token", "key"}

type requestLogLine struct {
	Time      string `json:"time"`
	RequestID string `json:"request_id,omitempty"`
	Caller    string `json:"caller"`
	LatencyMS int64  `json:"latency_ms"`
	Request   struct {
		Method string `json:"method"`
		URI    string `json:"uri"`
		Body   any    `json:"body,omitempty"`
	} `json:"request"`
	Response struct {
		Status int    `json:"status"`
		Body   any    `json:"body,omitempty"`
		Error  string `json:"error,omitempty"`
	} `json:"response"`
}

func registerLogging(e *echo.Echo) {
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			line := requestLogLine{
				Time:      v.StartTime.UTC().Format(time.RFC3339),
				RequestID: v.RequestID,
				Caller:    "public",
				LatencyMS: v.Latency.Milliseconds(),
			}
			if isAdmin(c) {
				line.Caller = "admin"
			}
			line.Request.Method = v.Method
			line.Request.URI = v.URI
			line.Request.Body = c.Get(requestBodyLogKey)
			line.Response.Status = v.Status
			line.Response.Body = c.Get(responseBodyLogKey)
			if v.Error != nil {
				line.Response.Error = v.Error.Error()
			}

			buf, err := json.Marshal(line)
			if err != nil {
				return err
			}
			log.Println(string(buf))
			return nil
		},
	}))

	e.Use(middleware.BodyDumpWithConfig(middleware.BodyDumpConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/health" || path == "/ready" || strings.HasPrefix(path, "/swagger")
		},
		Handler: func(c echo.Context, reqBody, resBody []byte) {
			if summary := summarizeBody(reqBody, c.Request().Header.Get(echo.HeaderContentType)); summary != nil {
				c.Set(requestBodyLogKey, summary)
			}
			if summary := summarizeBody(resBody, c.Response().Header().Get(echo.HeaderContentType)); summary != nil {
				c.Set(responseBodyLogKey, summary)
			}
		},
	}))
}

// summarizeBody turns a body into something safe to log: uploads become
// name and size, JSON is redacted and truncated, anything else is clamped.
func summarizeBody(body []byte, contentType string) any {
	if len(body) == 0 {
		return nil
	}
	mediaType, params, _ := mime.ParseMediaType(strings.TrimSpace(contentType))

	switch {
	case strings.HasPrefix(mediaType, "multipart/"):
		return summarizeMultipart(body, params["boundary"])
	case mediaType == "application/json" || json.Valid(body):
		var data any
		if err := json.Unmarshal(body, &data); err == nil {
			return truncateJSON(redact(data, ""))
		}
	case mediaType == "text/csv" || strings.HasPrefix(mediaType, "application/vnd.openxmlformats"):
		return "binary"
	}

	if isBinary(body) {
		return "binary"
	}
	return clampString(string(body))
}

func summarizeMultipart(body []byte, boundary string) any {
	if boundary == "" {
		return "binary"
	}
	reader := multipart.NewReader(bytes.NewReader(body), boundary)
	fields := make(map[string]any)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "binary"
		}
		name := part.FormName()
		if name == "" {
			_ = part.Close()
			continue
		}
		if filename := part.FileName(); filename != "" {
			n, _ := io.Copy(io.Discard, part)
			fields[name] = map[string]any{"filename": filename, "bytes": n}
		} else {
			data, _ := io.ReadAll(io.LimitReader(part, maxLoggedBody+1))
			fields[name] = redactString(string(data), strings.ToLower(name))
		}
		_ = part.Close()
	}
	if len(fields) == 0 {
		return "binary"
	}
	return fields
}

func redact(value any, keyHint string) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = redact(val, strings.ToLower(key))
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = redact(item, keyHint)
		}
		return out
	case string:
		return redactString(v, keyHint)
	default:
		return v
	}
}

func redactString(value, keyHint string) string {
	for _, part := range redactedKeyParts {
		if strings.Contains(keyHint, part) {
			return "redacted"
		}
	}
	if isBinary([]byte(value)) {
		return "binary"
	}
	return clampString(value)
}

// truncateJSON keeps small payloads intact. Larger ones, such as JSON import
// batches, are reduced to their top-level shape.
func truncateJSON(value any) any {
	buf, err := json.Marshal(value)
	if err != nil || len(buf) <= maxLoggedBody {
		return value
	}
	shape := map[string]any{"_truncated": true, "_bytes": len(buf)}
	if obj, ok := value.(map[string]any); ok {
		for key, val := range obj {
			if items, ok := val.([]any); ok {
				shape[key] = map[string]any{"_total_items": len(items)}
			}
		}
	}
	return shape
}

func isBinary(data []byte) bool {
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			return true
		}
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return true
		}
		data = data[size:]
	}
	return false
}

func clampString(value string) string {
	if len(value) <= maxLoggedBody {
		return value
	}
	truncated := value[:maxLoggedBody]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated + "...(truncated)"
}
