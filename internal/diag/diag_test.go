package diag

import "testing"

func TestSinkCountsAndCallbacks(t *testing.T) {
	s := NewSink()
	var seen []string
	s.RegisterCallback(func(d *Diagnostic) {
		seen = append(seen, d.Message)
	})

	s.Report(Warning, Parser, ErrParserUnexpectedToken, "unexpected token", Location{File: "m.hoil", Line: 1, Column: 2})
	s.Report(Error, Semantic, ErrSemanticRedefined, "duplicate function", Location{})

	if got := s.ErrorCount(Warning); got != 1 {
		t.Errorf("warning count = %d, want 1", got)
	}
	if got := s.ErrorCount(Error); got != 1 {
		t.Errorf("error count = %d, want 1", got)
	}
	if !s.HadErrors() {
		t.Errorf("HadErrors() = false, want true")
	}
	if len(seen) != 2 {
		t.Fatalf("callback invoked %d times, want 2", len(seen))
	}
	if seen[0] != "unexpected token" || seen[1] != "duplicate function" {
		t.Errorf("callbacks invoked out of order: %v", seen)
	}

	s.Clear()
	if s.HadErrors() {
		t.Errorf("HadErrors() after Clear = true, want false")
	}
}

func TestSinkHistoryBounded(t *testing.T) {
	s := NewSink()
	s.RegisterCallback(func(*Diagnostic) {}) // suppress stderr output during the test
	for i := 0; i < historyLimit+5; i++ {
		s.Report(Info, General, CodeGeneralBase, "n/a", Location{})
	}
	if got := len(s.Last(100)); got != historyLimit {
		t.Errorf("history length = %d, want %d", got, historyLimit)
	}
}
