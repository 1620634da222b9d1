package xiq

import (
	"context"
	"maps"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type middleware func(http.RoundTripper) http.RoundTripper

func chain(base http.RoundTripper, mws ...middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	// first middleware is outermost
	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}

	return base
}

func bearerAuth(token func() string) middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			value := token()
			if value == "" {
				return next.RoundTrip(req)
			}

			req = cloneRequest(req)
			req.Header.Set("Authorization", "Bearer "+value)
			return next.RoundTrip(req)
		})
	}
}

func jsonHeaders() middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			req = cloneRequest(req)
			req.Header.Set("Accept", "application/json")
			req.Header.Set("Content-Type", "application/json")
			return next.RoundTrip(req)
		})
	}
}

func rateLimit(limiter *rate.Limiter, log *logrus.Entry) middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if limiter == nil {
				return next.RoundTrip(req)
			}
			if err := waitLimiter(req.Context(), limiter, req.URL.Path, log); err != nil {
				return nil, err
			}
			return next.RoundTrip(req)
		})
	}
}

func waitLimiter(ctx context.Context, limiter *rate.Limiter, path string, log *logrus.Entry) error {
	reservation := limiter.Reserve()
	if !reservation.OK() {
		return errors.New("rate limit reservation failed")
	}

	delay := reservation.Delay()
	if delay <= 0 {
		return nil
	}
	log.WithFields(logrus.Fields{"path": path, "delay": delay}).Debug("rate limit delay")

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		reservation.Cancel()
		return errors.Wrap(ctx.Err(), "context canceled during rate limit wait")
	}
}

func requestLogging(log *logrus.Entry) middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			fields := logrus.Fields{"method": req.Method, "url": req.URL.String()}

			resp, err := next.RoundTrip(req)
			fields["duration"] = time.Since(start)
			if err != nil {
				log.WithFields(fields).WithError(err).Error("http request failed")
				return nil, err
			}

			fields["status"] = resp.StatusCode
			if resp.StatusCode >= http.StatusBadRequest {
				log.WithFields(fields).Warn("http request completed with error")
			} else {
				log.WithFields(fields).Debug("http request completed")
			}

			return resp, nil
		})
	}
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func cloneRequest(req *http.Request) *http.Request {
	r := new(http.Request)
	*r = *req
	r.Header = make(http.Header, len(req.Header))
	maps.Copy(r.Header, req.Header)
	return r
}

func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}

	return rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute)
}
