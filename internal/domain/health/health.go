package health

import "context"

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

// StoreStatus describes the record store connection.
type StoreStatus struct {
	Backend   string `json:"backend"`
	Connected bool   `json:"connected"`
}

// Features reports which optional integrations are active. The backend
// fields name the adapter chosen at startup.
type Features struct {
	Weather                bool   `json:"weather"`
	Geocoding              bool   `json:"geocoding"`
	Videos                 bool   `json:"videos"`
	Photos                 bool   `json:"photos"`
	Archive                bool   `json:"archive"`
	ArchiveBackend         string `json:"archiveBackend,omitempty"`
	SuggestionCache        bool   `json:"suggestionCache"`
	SuggestionCacheBackend string `json:"suggestionCacheBackend,omitempty"`
}

// Report is the service health summary.
type Report struct {
	Status   string      `json:"status"`
	Store    StoreStatus `json:"store"`
	Features Features    `json:"features"`
}

// StoreProbe exposes the last known store status.
type StoreProbe interface {
	Status() StoreStatus
}

// Service builds health reports.
type Service interface {
	Report(ctx context.Context) Report
}

type service struct {
	features Features
	probe    StoreProbe
}

// NewService combines static feature flags with a live store probe.
func NewService(features Features, probe StoreProbe) Service {
	return &service{features: features, probe: probe}
}

func (s *service) Report(context.Context) Report {
	store := StoreStatus{Backend: "unknown"}
	if s.probe != nil {
		store = s.probe.Status()
	}
	status := StatusOK
	if !store.Connected {
		status = StatusDegraded
	}
	return Report{Status: status, Store: store, Features: s.features}
}
