package health

import "net/url"

// SessionCounter reports how many browser sessions hold state.
type SessionCounter interface {
	Len() int
}

// Service encapsulates health-related checks.
type Service struct {
	Sessions SessionCounter
	Endpoint string
}

// NewService constructs a new health service.
func NewService(sessions SessionCounter, endpoint string) *Service {
	return &Service{Sessions: sessions, Endpoint: endpoint}
}

// Status is the health payload.
type Status struct {
	OK           bool   `json:"ok"`
	Sessions     int    `json:"sessions"`
	AnalysisHost string `json:"analysisHost,omitempty"`
}

// Status reports liveness with the session count and the configured upstream host.
// It does not call the analysis service.
func (s *Service) Status() Status {
	st := Status{OK: true}
	if s == nil {
		return st
	}
	if s.Sessions != nil {
		st.Sessions = s.Sessions.Len()
	}
	if u, err := url.Parse(s.Endpoint); err == nil {
		st.AnalysisHost = u.Host
	}
	return st
}
