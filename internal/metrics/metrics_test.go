package metrics

import (
	"errors"
	"testing"
	"time"
)

// fakeBackend is a simple in-memory Backend implementation for tests.
type fakeBackend struct {
	counters   []counterCall
	histograms []histCall
	flushed    int
}

type counterCall struct {
	name   string
	delta  float64
	labels Labels
}

type histCall struct {
	name   string
	value  float64
	labels Labels
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.counters = append(f.counters, counterCall{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.histograms = append(f.histograms, histCall{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.flushed++
	return nil
}

func TestRecordStepSuccessAndFailure(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()
	fb := &fakeBackend{}
	backend = fb

	RecordStep("nightly", "clean", nil, 2*time.Second)
	RecordStep("nightly", "load", errors.New("boom"), time.Second)

	if len(fb.counters) != 2 || len(fb.histograms) != 2 {
		t.Fatalf("calls = %d counters, %d histograms; want 2 and 2", len(fb.counters), len(fb.histograms))
	}
	if fb.counters[0].labels["status"] != "success" || fb.counters[1].labels["status"] != "failure" {
		t.Errorf("statuses = %v / %v", fb.counters[0].labels, fb.counters[1].labels)
	}
	if fb.histograms[0].value != 2.0 {
		t.Errorf("duration = %v, want 2.0s", fb.histograms[0].value)
	}
}

func TestRecordRowsSkipsNonPositiveDeltas(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()
	fb := &fakeBackend{}
	backend = fb

	RecordRows("customers", "loaded", 0)
	RecordRows("customers", "loaded", -3)
	RecordRows("customers", "loaded", 7)

	if len(fb.counters) != 1 || fb.counters[0].delta != 7 {
		t.Fatalf("counters = %#v, want single call with delta 7", fb.counters)
	}
}

func TestSetBackendIgnoresNil(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()
	fb := &fakeBackend{}
	SetBackend(fb)
	SetBackend(nil)

	if err := Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if fb.flushed != 1 {
		t.Errorf("flushed = %d, want 1", fb.flushed)
	}
}
