package health

import "testing"

type fixedCount int

func (f fixedCount) Len() int { return int(f) }

func TestStatus(t *testing.T) {
	st := NewService(fixedCount(3), "http://127.0.0.1:5000/pdf/upload").Status()
	if !st.OK {
		t.Fatalf("expected ok")
	}
	if st.Sessions != 3 {
		t.Fatalf("expected 3 sessions, got %d", st.Sessions)
	}
	if st.AnalysisHost != "127.0.0.1:5000" {
		t.Fatalf("unexpected host %q", st.AnalysisHost)
	}
}

func TestStatusNilService(t *testing.T) {
	var s *Service
	if !s.Status().OK {
		t.Fatalf("expected ok from nil service")
	}
}
