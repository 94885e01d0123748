package api

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	raven "github.com/getsentry/raven-go"
	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

func middleware(h http.Handler) http.Handler {
	originsOk := handlers.AllowedOrigins([]string{os.Getenv("ALLOWED_ORIGINS")})
	methodsOk := handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE"})

	return handlers.LoggingHandler(os.Stdout,
		recoveryHandler(
			requestIDHandler(handlers.CORS(originsOk, methodsOk)(h)),
		),
	)
}

func throttle(period time.Duration, limit int64) func(http.Handler) http.Handler {
	if flag.Lookup("test.v") != nil {
		// Don't throttle tests
		return func(f http.Handler) http.Handler { return f }
	}
	rateLimitStore := memory.NewStore()
	rate := limiter.Rate{
		Period: period,
		Limit:  limit,
	}
	rateLimiter := stdlib.NewMiddleware(limiter.New(rateLimitStore, rate,
		limiter.WithTrustForwardHeader(true)))
	return rateLimiter.Handler
}

func recoveryHandler(f http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		defer func() {
			if err, ok := recover().(error); ok {
				rvalStr := fmt.Sprint(err)
				packet := raven.NewPacket(rvalStr, raven.NewException(err, raven.GetOrNewStacktrace(err, 2, 3, nil)), raven.NewHttp(r))
				raven.Capture(packet, nil)
				w.WriteHeader(http.StatusInternalServerError)
			}
		}()

		f.ServeHTTP(w, r)
	})
}

// requestIDHandler tags every request and response with an X-Request-Id so
// access-log lines can be correlated with Sentry events.
func requestIDHandler(f http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		f.ServeHTTP(w, r)
	})
}
