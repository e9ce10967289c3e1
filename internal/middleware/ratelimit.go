// internal/middleware/ratelimit.go
package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ClientLimiter хранит лимитер и время последней активности для одного IP.
type ClientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	clients = make(map[string]*ClientLimiter)
	mu      sync.Mutex
)

func init() {
	go cleanupClients()
}

func cleanupClients() {
	for {
		time.Sleep(10 * time.Minute)

		mu.Lock()
		for ip, client := range clients {
			if time.Since(client.lastSeen) > 15*time.Minute {
				delete(clients, ip)
				slog.Debug("Удалён лимитер для неактивного IP", "ip", ip)
			}
		}
		mu.Unlock()
	}
}

// ClientIP извлекает IP клиента с учётом прокси-заголовков.
// Используется и лимитером, и построением ссылки на шлюз (vnp_IpAddr).
func ClientIP(r *http.Request) string {
	var clientIP string
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		clientIP = strings.TrimSpace(strings.Split(xff, ",")[0])
	} else {
		clientIP = r.Header.Get("X-Real-IP")
	}
	if clientIP == "" {
		clientIP = strings.Split(r.RemoteAddr, ":")[0]
	}
	return clientIP
}

// RateLimitMiddleware ограничивает количество запросов с одного IP.
func RateLimitMiddleware(next http.Handler, rps float64, burst int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := ClientIP(r)

		mu.Lock()
		clientData, found := clients[clientIP]
		if !found {
			clientData = &ClientLimiter{
				limiter: rate.NewLimiter(rate.Limit(rps), burst),
			}
			clients[clientIP] = clientData
		}
		clientData.lastSeen = time.Now()
		limiterInstance := clientData.limiter
		mu.Unlock()

		if !limiterInstance.Allow() {
			slog.Warn("Превышен лимит запросов (Rate Limit)", "ip", clientIP, "path", r.URL.Path)
			http.Error(w, "Слишком много запросов. Пожалуйста, попробуйте позже.", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
