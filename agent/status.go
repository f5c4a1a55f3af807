package agent

import (
	"github.com/sayandeep-bot/spectosoft/metrics"
	"github.com/sayandeep-bot/spectosoft/types"
)

// ServiceStatus reports one service and its pending backlog.
type ServiceStatus struct {
	Service      string     `json:"service"`
	Kind         types.Kind `json:"kind"`
	Running      bool       `json:"running"`
	PendingCount int        `json:"pending_count"`
	PendingBytes int64      `json:"pending_bytes"`
}

// Status is the agent status report served by the control surface.
// Services are ordered recording, screenshots, activity.
type Status struct {
	AgentID  string           `json:"agent_id"`
	Version  string           `json:"version"`
	Services []ServiceStatus  `json:"services"`
	Metrics  metrics.Snapshot `json:"metrics"`
}

// Status assembles the current report. Backlog numbers come from a
// fresh store scan, so the report is consistent with what a sweep
// would see.
func (a *Agent) Status() (Status, error) {
	status := Status{
		AgentID: a.cfg.AgentID,
		Version: a.cfg.Version,
		Metrics: a.collector.Snapshot(),
	}

	entries := []struct {
		service string
		kind    types.Kind
		running bool
	}{
		{"recording", types.KindVideo, a.recording.Running()},
		{"screenshots", types.KindScreenshot, a.screenshots.Running()},
		{"activity", types.KindActivity, a.activity.Running()},
	}
	for _, e := range entries {
		stats, err := a.store.Stats(e.kind)
		if err != nil {
			return Status{}, err
		}
		status.Services = append(status.Services, ServiceStatus{
			Service:      e.service,
			Kind:         e.kind,
			Running:      e.running,
			PendingCount: stats.Count,
			PendingBytes: stats.Bytes,
		})
	}
	return status, nil
}
