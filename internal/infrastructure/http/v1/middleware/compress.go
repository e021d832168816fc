package middleware

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/zstd"

	"jobboard/pkg/logger"
)

// DefaultCompressThreshold is the smallest body worth compressing.
const DefaultCompressThreshold = 1024

// Compress buffers the response and encodes it with zstd when the client
// accepts it and the body reaches threshold bytes.
func Compress(threshold int) (gin.HandlerFunc, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	if threshold <= 0 {
		threshold = DefaultCompressThreshold
	}

	return func(c *gin.Context) {
		if !acceptsZstd(c.GetHeader("Accept-Encoding")) {
			c.Next()
			return
		}

		bw := &bufferedWriter{ResponseWriter: c.Writer}
		c.Writer = bw
		c.Next()
		c.Writer = bw.ResponseWriter

		body := bw.buf.Bytes()
		h := bw.Header()
		h.Add("Vary", "Accept-Encoding")
		if len(body) >= threshold && h.Get("Content-Encoding") == "" {
			compressed := encoder.EncodeAll(body, make([]byte, 0, len(body)/2))
			h.Set("Content-Encoding", "zstd")
			h.Set("Content-Length", strconv.Itoa(len(compressed)))
			logger.Debug(c.Request.Context(), "response compressed",
				"original", len(body), "compressed", len(compressed))
			body = compressed
		}

		bw.ResponseWriter.WriteHeader(bw.status())
		if len(body) > 0 {
			_, _ = bw.ResponseWriter.Write(body)
		}
	}, nil
}

func acceptsZstd(header string) bool {
	for _, part := range strings.Split(header, ",") {
		enc, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(enc), "zstd") {
			continue
		}
		return strings.ReplaceAll(strings.TrimSpace(params), " ", "") != "q=0"
	}
	return false
}

// bufferedWriter holds the body and status until the handler chain returns.
type bufferedWriter struct {
	gin.ResponseWriter
	buf  bytes.Buffer
	code int
}

func (w *bufferedWriter) WriteHeader(code int) {
	w.code = code
}

func (w *bufferedWriter) WriteHeaderNow() {}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	if w.code == 0 {
		w.code = http.StatusOK
	}
	return w.buf.Write(b)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *bufferedWriter) Written() bool {
	return w.code != 0
}

func (w *bufferedWriter) Status() int {
	return w.status()
}

func (w *bufferedWriter) Size() int {
	return w.buf.Len()
}

func (w *bufferedWriter) status() int {
	if w.code == 0 {
		return http.StatusOK
	}
	return w.code
}
