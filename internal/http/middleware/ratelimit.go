package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type rateWindow struct {
	count int
	start time.Time
}

// RateLimit enforces a fixed request budget per client IP per window. The
// counter is in-memory only; this is the single piece of cross-request
// shared state in the request path.
func RateLimit(max int, window time.Duration) gin.HandlerFunc {
	var (
		mu      sync.Mutex
		windows = make(map[string]*rateWindow)
	)

	return func(c *gin.Context) {
		now := time.Now()
		ip := c.ClientIP()

		mu.Lock()
		w, ok := windows[ip]
		if !ok || now.Sub(w.start) >= window {
			// stale entries from other IPs are pruned lazily on rollover
			if len(windows) > 10000 {
				for k, v := range windows {
					if now.Sub(v.start) >= window {
						delete(windows, k)
					}
				}
			}
			w = &rateWindow{start: now}
			windows[ip] = w
		}
		w.count++
		over := w.count > max
		mu.Unlock()

		if over {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":  "fail",
				"message": "too many requests from this IP, please try again later",
			})
			return
		}
		c.Next()
	}
}
