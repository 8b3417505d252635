package stage

import (
	"dubsmart/internal/queue"
	"dubsmart/internal/segment"
	"dubsmart/internal/services"
)

// LoadSegments decodes the job's persisted segment list. On failure it returns
// a services.ErrValidation suitable for stage Execute methods.
func LoadSegments(job *queue.Job) ([]segment.Segment, error) {
	segments, err := segment.DecodeList(job.SegmentsJSON)
	if err != nil {
		return nil, services.Wrap(
			services.ErrValidation, "stage", "decode segments",
			"Segment list missing or invalid; rerun merge", err)
	}
	return segments, nil
}

// StoreSegments encodes segments back onto the job row.
func StoreSegments(job *queue.Job, segments []segment.Segment) error {
	payload, err := segment.EncodeList(segments)
	if err != nil {
		return services.Wrap(
			services.ErrValidation, "stage", "encode segments",
			"Could not serialize segment list", err)
	}
	job.SegmentsJSON = payload
	return nil
}
