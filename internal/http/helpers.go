package http

import (
	"context"
	"mime"
	"time"

	"github.com/cenkalti/backoff/v4"

	httpPkg "github.com/NamanBalaji/fetchr/pkg/http"
)

const maxRetryInterval = 2 * time.Minute

// retryPolicy repeats a failed attempt at most maxRetries times with
// exponential, jittered delays starting at baseDelay.
func retryPolicy(ctx context.Context, maxRetries int, baseDelay time.Duration) backoff.BackOff {
	var b backoff.BackOff = &backoff.ZeroBackOff{}

	if baseDelay > 0 {
		expo := backoff.NewExponentialBackOff()
		expo.InitialInterval = baseDelay
		expo.MaxInterval = maxRetryInterval
		expo.MaxElapsedTime = 0
		b = expo
	}

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(maxRetries)), ctx)
}

// classify maps a client error to a pkg/http sentinel and marks it
// permanent unless a fresh attempt could succeed.
func classify(err error) (classified error, retryable bool) {
	classified = httpPkg.ClassifyError(err)
	return classified, httpPkg.IsRetryable(classified)
}

func charset(contentType string) string {
	if contentType == "" {
		return ""
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}

	return params["charset"]
}
