package handler

import (
	"context"
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/mobileid/portal/internal/api/models"
	"github.com/mobileid/portal/internal/api/response"
	"github.com/mobileid/portal/internal/provider/resilience"
)

// readyTimeout bounds each readiness check.
const readyTimeout = 2 * time.Second

// Pinger is a dependency the readiness check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OpsHandlerConfig holds configuration for the ops endpoints.
type OpsHandlerConfig struct {
	Version   string
	BuildTime string
	Registry  *resilience.Registry

	// Subsystems are probed by the readiness and status endpoints, keyed by
	// name. Disabled subsystems are simply absent.
	Subsystems map[string]Pinger
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version    string
	buildTime  string
	registry   *resilience.Registry
	subsystems map[string]Pinger
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsHandlerConfig) *OpsHandler {
	if cfg.Registry == nil {
		cfg.Registry = resilience.NewRegistry()
	}
	return &OpsHandler{
		version:    cfg.Version,
		buildTime:  cfg.BuildTime,
		registry:   cfg.Registry,
		subsystems: cfg.Subsystems,
	}
}

// HealthCheck handles GET /api/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /api/ops/ready. It fails with 503 when any
// configured subsystem does not answer a ping.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	subsystems := h.probe(r.Context())

	details := make(map[string]interface{}, len(subsystems))
	status := models.HealthStatusOK
	for _, s := range subsystems {
		details[s.Name] = s.Status
		if s.Status != models.HealthStatusOK {
			status = models.HealthStatusFail
		}
	}

	code := http.StatusOK
	if status != models.HealthStatusOK {
		code = http.StatusServiceUnavailable
	}

	response.JSON(w, r, code, models.Health{
		Status:  status,
		Time:    models.Timestamp(time.Now()),
		Details: details,
	})
}

// SystemStatus handles GET /api/ops/status - subsystem and upstream provider
// status. Feeds keep answering with fallback data while a provider is down,
// so a down provider only degrades the overall status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	subsystems := h.probe(r.Context())
	overall := models.HealthStatusOK
	for _, s := range subsystems {
		if s.Status != models.HealthStatusOK {
			overall = models.HealthStatusFail
		}
	}

	upstreams := h.registry.All()
	providers := make([]models.ProviderStatus, 0, len(upstreams))
	for _, u := range upstreams {
		ps := models.ProviderStatus{
			Provider:            u.Name,
			Status:              providerStatus(u),
			Breaker:             u.State.String(),
			ConsecutiveFailures: u.Counts.ConsecutiveFailures,
		}
		if u.LastSuccessAt != nil {
			ps.LastSuccessAt = models.TimestampPtr(*u.LastSuccessAt)
		}
		if u.LastFailureAt != nil {
			ps.LastFailureAt = models.TimestampPtr(*u.LastFailureAt)
		}
		if u.LastError != "" {
			msg := u.LastError
			ps.Message = &msg
		}
		if ps.Status != models.HealthStatusOK && overall == models.HealthStatusOK {
			overall = models.HealthStatusDegraded
		}
		providers = append(providers, ps)
	}

	response.JSON(w, r, http.StatusOK, models.SystemStatus{
		Status:     overall,
		Time:       models.Timestamp(time.Now()),
		Subsystems: subsystems,
		Providers:  providers,
	})
}

func (h *OpsHandler) probe(ctx context.Context) []models.SubsystemStatus {
	out := make([]models.SubsystemStatus, 0, len(h.subsystems))
	for _, name := range slices.Sorted(maps.Keys(h.subsystems)) {
		pctx, cancel := context.WithTimeout(ctx, readyTimeout)
		err := h.subsystems[name].Ping(pctx)
		cancel()

		s := models.SubsystemStatus{Name: name, Status: models.HealthStatusOK}
		if err != nil {
			detail := err.Error()
			s.Status = models.HealthStatusFail
			s.Detail = &detail
		}
		out = append(out, s)
	}
	return out
}

func providerStatus(u *resilience.UpstreamHealth) models.HealthStatus {
	switch u.Status() {
	case "down":
		return models.HealthStatusFail
	case "degraded":
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusOK
	}
}
