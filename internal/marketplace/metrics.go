package marketplace

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jafarshop/checkoutapi/internal/metrics"
)

func observeUpstream(path string, resp *http.Response, start time.Time) {
	code := "error"
	if resp != nil {
		code = strconv.Itoa(resp.StatusCode)
	}
	metrics.UpstreamDuration.WithLabelValues(path, code).Observe(time.Since(start).Seconds())
}
