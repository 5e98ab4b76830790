package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/pianoscribe/api/internal/config"
	"github.com/pianoscribe/api/internal/model"
)

const (
	TaskTypeTranscribe = "transcribe:process"
)

// TranscribeService handles transcription job management
type TranscribeService struct {
	redis       *redis.Client
	asynqClient *asynq.Client
	defaults    config.TranscribeConfig
}

func NewTranscribeService(redisClient *redis.Client, asynqClient *asynq.Client, defaults config.TranscribeConfig) *TranscribeService {
	return &TranscribeService{
		redis:       redisClient,
		asynqClient: asynqClient,
		defaults:    defaults,
	}
}

// StartTranscription queues a transcription job for an uploaded recording.
// The audio is already in object storage under uploadKey.
func (s *TranscribeService) StartTranscription(ctx context.Context, uploadKey, filename string, params model.TranscribeParams) (*model.TranscribeStartResponse, error) {
	jobID := uuid.New().String()
	now := time.Now()

	s.applyDefaults(&params)

	job := &model.Job{
		ID:        jobID,
		Type:      model.JobTypeTranscribe,
		Status:    model.JobStatusQueued,
		Progress:  0,
		CreatedAt: now,
	}

	payload := &model.TranscribeJobPayload{
		UploadKey: uploadKey,
		Filename:  filename,
		Params:    params,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	job.Payload = payloadBytes

	if err := s.saveJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	task, err := newTranscribeTask(jobID, payloadBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	_, err = s.asynqClient.Enqueue(task,
		asynq.Queue("transcribe"),
		asynq.MaxRetry(3),
		asynq.Retention(24*time.Hour),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	return &model.TranscribeStartResponse{
		JobID:     jobID,
		Status:    model.JobStatusQueued,
		CreatedAt: now,
	}, nil
}

// GetStatus returns the current status of a transcription job
func (s *TranscribeService) GetStatus(ctx context.Context, jobID string) (*model.TranscribeStatusResponse, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	return &model.TranscribeStatusResponse{
		JobID:       job.ID,
		Status:      job.Status,
		Progress:    job.Progress,
		CurrentStep: job.CurrentStep,
		Error:       job.Error,
		CreatedAt:   job.CreatedAt,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
		RetryCount:  job.RetryCount,
	}, nil
}

// GetResult returns the result of a completed transcription job
func (s *TranscribeService) GetResult(ctx context.Context, jobID string) (*model.TranscribeResultResponse, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status != model.JobStatusSucceeded {
		return nil, fmt.Errorf("job not completed")
	}

	var result model.TranscribeResultResponse
	if err := json.Unmarshal(job.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	return &result, nil
}

// CancelTranscription cancels a queued or running job. The worker checks the
// stored status between steps and abandons canceled jobs.
func (s *TranscribeService) CancelTranscription(ctx context.Context, jobID string) (*model.TranscribeCancelResponse, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status == model.JobStatusSucceeded || job.Status == model.JobStatusFailed {
		return nil, fmt.Errorf("job already completed")
	}

	job.Status = model.JobStatusCanceled
	now := time.Now()
	job.CompletedAt = &now

	if err := s.saveJob(ctx, job); err != nil {
		return nil, err
	}

	return &model.TranscribeCancelResponse{
		Success: true,
		JobID:   jobID,
		Status:  model.JobStatusCanceled,
	}, nil
}

// IsCanceled reports whether a job has been canceled (called by worker)
func (s *TranscribeService) IsCanceled(ctx context.Context, jobID string) bool {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return false
	}
	return job.Status == model.JobStatusCanceled
}

// UpdateJobProgress updates job progress (called by worker)
func (s *TranscribeService) UpdateJobProgress(ctx context.Context, jobID string, progress int, step string) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}

	job.Progress = progress
	job.CurrentStep = step

	if job.Status == model.JobStatusQueued {
		job.Status = model.JobStatusRunning
		now := time.Now()
		job.StartedAt = &now
	}

	return s.saveJob(ctx, job)
}

// CompleteJob marks job as completed (called by worker)
func (s *TranscribeService) CompleteJob(ctx context.Context, jobID string, result interface{}) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}

	resultBytes, err := json.Marshal(result)
	if err != nil {
		return err
	}

	job.Status = model.JobStatusSucceeded
	job.Progress = 100
	job.Result = resultBytes
	now := time.Now()
	job.CompletedAt = &now

	return s.saveJob(ctx, job)
}

// FailJob marks job as failed (called by worker)
func (s *TranscribeService) FailJob(ctx context.Context, jobID string, errMsg string) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}

	job.Status = model.JobStatusFailed
	job.Error = &errMsg
	now := time.Now()
	job.CompletedAt = &now

	return s.saveJob(ctx, job)
}

// applyDefaults fills zero-valued knobs from configuration
func (s *TranscribeService) applyDefaults(params *model.TranscribeParams) {
	if params.OnsetThreshold == 0 {
		params.OnsetThreshold = s.defaults.OnsetThreshold
	}
	if params.FrameThreshold == 0 {
		params.FrameThreshold = s.defaults.FrameThreshold
	}
	if params.MinNoteLengthMs == 0 {
		params.MinNoteLengthMs = s.defaults.MinNoteLengthMs
	}
	if params.Tempo == 0 {
		params.Tempo = s.defaults.DefaultTempo
	}
	if params.Strategy == "" {
		params.Strategy = model.QuantizationStrategy(s.defaults.Strategy)
	}
}

// Helper methods

func (s *TranscribeService) saveJob(ctx context.Context, job *model.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, fmt.Sprintf("job:%s", job.ID), data, 24*time.Hour).Err()
}

func (s *TranscribeService) getJob(ctx context.Context, jobID string) (*model.Job, error) {
	data, err := s.redis.Get(ctx, fmt.Sprintf("job:%s", jobID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("job not found")
		}
		return nil, err
	}

	var job model.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, err
	}

	return &job, nil
}

func newTranscribeTask(jobID string, payload []byte) (*asynq.Task, error) {
	taskPayload := map[string]interface{}{
		"jobId":   jobID,
		"payload": payload,
	}
	data, err := json.Marshal(taskPayload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeTranscribe, data), nil
}
