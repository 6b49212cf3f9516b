package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// probeTimeout is the deadline for connectivity probes, deliberately
// shorter than operation timeouts.
const probeTimeout = 5 * time.Second

// Reachability is the tri-state result of a connectivity probe. A probe
// never fails hard: transport errors are folded into the classification.
type Reachability struct {
	Up     bool
	Reason string
}

// doProbe sends a minimal request and classifies the outcome. Any response
// with a status below 500 counts as reachable, 401/403/404 included: the
// service is up even if auth or the resource is wrong.
func doProbe(ctx context.Context, hc *http.Client, req *http.Request) Reachability {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	resp, err := hc.Do(req.WithContext(ctx))
	if err != nil {
		return Reachability{Reason: err.Error()}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 500 {
		return Reachability{Reason: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}
	return Reachability{Up: true}
}
