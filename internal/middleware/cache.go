package middleware

import (
	"bytes"
	"net/http"
	"time"
	"yatube/internal/cache"

	"github.com/gin-gonic/gin"
)

// IndexCacheKey is the fixed key of the cached global timeline.
const IndexCacheKey = "timeline:index"

// IndexCacheTTL bounds how long the cached rendering may serve stale reads.
const IndexCacheTTL = 20 * time.Second

type blobWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *blobWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *blobWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CachePage serves the cached rendering when present and otherwise tees the
// handler's response into the cache. Within the TTL window the cached blob
// is served as-is, so deletions stay invisible on this view until expiry or
// an explicit clear.
func CachePage(c cache.Cache, key string, ttl time.Duration) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		// Keep paginated requests on distinct keys.
		k := key
		if q := ctx.Request.URL.RawQuery; q != "" {
			k += "?" + q
		}

		if blob, ok := c.Get(k); ok {
			ctx.Data(http.StatusOK, "text/html; charset=utf-8", blob)
			ctx.Abort()
			return
		}

		w := &blobWriter{ResponseWriter: ctx.Writer}
		ctx.Writer = w
		ctx.Next()

		if w.Status() == http.StatusOK && w.body.Len() > 0 {
			c.Set(k, append([]byte(nil), w.body.Bytes()...), ttl)
		}
	}
}
