package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finsightapp/finsight/internal/queue"
	"github.com/finsightapp/finsight/internal/services"
)

// Submitter publishes forecast jobs to the request subject
type Submitter struct {
	publisher queue.Publisher
	subject   string
	codec     Codec
	now       func() time.Time
}

// NewSubmitter creates a Submitter
func NewSubmitter(publisher queue.Publisher, subject string, codec Codec) *Submitter {
	return &Submitter{
		publisher: publisher,
		subject:   subject,
		codec:     codec,
		now:       time.Now,
	}
}

// newJob stamps req with a fresh ID and submission time
func (s *Submitter) newJob(kind Kind, req services.ForecastRequest, metadata map[string]string) *ForecastJob {
	return &ForecastJob{
		ID:          uuid.New().String(),
		Kind:        kind,
		SubmittedAt: s.now().UTC(),
		Request:     req,
		Metadata:    metadata,
	}
}

// Submit publishes one job and returns its ID
func (s *Submitter) Submit(ctx context.Context, kind Kind, req services.ForecastRequest, metadata map[string]string) (string, error) {
	job := s.newJob(kind, req, metadata)
	data, err := s.codec.EncodeJob(job)
	if err != nil {
		return "", err
	}
	if err := s.publisher.Publish(ctx, s.subject, data); err != nil {
		return "", fmt.Errorf("failed to submit job %s: %w", job.ID, err)
	}
	return job.ID, nil
}

// SubmitBatch publishes one job of kind per request, all sharing metadata.
// It returns the job IDs in request order and how many of them the queue
// accepted.
func (s *Submitter) SubmitBatch(ctx context.Context, kind Kind, reqs []services.ForecastRequest, metadata map[string]string) ([]string, int, error) {
	ids := make([]string, len(reqs))
	messages := make([]queue.BatchMessage, len(reqs))
	for i, req := range reqs {
		job := s.newJob(kind, req, metadata)
		data, err := s.codec.EncodeJob(job)
		if err != nil {
			return nil, 0, err
		}
		ids[i] = job.ID
		messages[i] = queue.BatchMessage{Subject: s.subject, Data: data}
	}

	accepted, err := s.publisher.PublishBatch(ctx, messages)
	if err != nil {
		return ids, accepted, fmt.Errorf("failed to submit batch: %w", err)
	}
	return ids, accepted, nil
}
