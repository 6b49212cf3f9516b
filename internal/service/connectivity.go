package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/cojovi/cmac-chat-module-win86/internal/client"
	"github.com/cojovi/cmac-chat-module-win86/internal/model"
	"github.com/cojovi/cmac-chat-module-win86/pkg/metrics"
)

// prober is the probe surface shared by all three clients.
type prober interface {
	Probe(ctx context.Context) client.Reachability
}

// CheckConnectivity probes each service independently and stores the
// result. Probe failures never surface as errors; they become
// disconnected states.
func (p *Pipeline) CheckConnectivity(ctx context.Context) model.Connectivity {
	p.logger.Info("checking connectivity")

	p.checkService(ctx, model.ServiceWhisper, p.transcriber)
	p.checkService(ctx, model.ServiceOpenWebUI, p.chatter)
	p.checkService(ctx, model.ServiceElevenLabs, p.synthesizer)

	return p.state.Connectivity()
}

func (p *Pipeline) checkService(ctx context.Context, service model.ServiceName, pr prober) {
	p.state.SetServiceState(service, model.ServiceState{Phase: model.ServiceChecking})

	var result model.ServiceState
	switch {
	case pr == nil:
		result = model.Disconnected("client initialization failed")
	default:
		r := pr.Probe(ctx)
		if r.Up {
			result = model.Connected()
		} else {
			reason := r.Reason
			if reason == "" {
				reason = "service unreachable"
			}
			result = model.Disconnected(reason)
		}
	}

	metrics.RecordProbe(string(service), result.Phase == model.ServiceConnected)
	p.state.SetServiceState(service, result)

	p.logger.Info("service checked",
		zap.String("service", string(service)),
		zap.String("phase", string(result.Phase)),
	)
}
