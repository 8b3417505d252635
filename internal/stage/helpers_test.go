package stage_test

import (
	"errors"
	"testing"

	"dubsmart/internal/queue"
	"dubsmart/internal/segment"
	"dubsmart/internal/services"
	"dubsmart/internal/stage"
)

func TestLoadSegmentsRoundTrip(t *testing.T) {
	job := &queue.Job{}
	segments := []segment.Segment{
		{SpeakerID: "S1", Start: 0, End: 1.5, SourceText: "hello"},
	}
	if err := stage.StoreSegments(job, segments); err != nil {
		t.Fatalf("StoreSegments: %v", err)
	}
	loaded, err := stage.LoadSegments(job)
	if err != nil {
		t.Fatalf("LoadSegments: %v", err)
	}
	if len(loaded) != 1 || loaded[0].SourceText != "hello" {
		t.Fatalf("round trip = %+v", loaded)
	}
}

func TestLoadSegmentsInvalidPayload(t *testing.T) {
	job := &queue.Job{SegmentsJSON: "{not json"}
	_, err := stage.LoadSegments(job)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
