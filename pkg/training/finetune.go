package training

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultBaseModel is the model that gets fine-tuned.
const DefaultBaseModel = "gpt-4o-mini-2024-07-18"

// FineTuner uploads training files and manages fine-tuning jobs.
type FineTuner struct {
	client    *openai.Client
	logger    *slog.Logger
	baseModel string
}

// NewFineTuner builds a FineTuner. The API key falls back to OPENAI_API_KEY.
func NewFineTuner(apiKey, baseModel string, logger *slog.Logger) (*FineTuner, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("OpenAI API key not found: set OPENAI_API_KEY")
	}
	if baseModel == "" {
		baseModel = DefaultBaseModel
	}
	return &FineTuner{
		client:    openai.NewClient(apiKey),
		logger:    logger,
		baseModel: baseModel,
	}, nil
}

// UploadFile uploads a JSONL file for fine-tuning and returns its file ID.
func (f *FineTuner) UploadFile(ctx context.Context, path string) (string, error) {
	file, err := f.client.CreateFile(ctx, openai.FileRequest{
		FileName: path,
		FilePath: path,
		Purpose:  "fine-tune",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", path, err)
	}
	f.logger.Info("file uploaded", "path", path, "file_id", file.ID)
	return file.ID, nil
}

// CreateJob starts a fine-tuning job. validationFileID may be empty.
func (f *FineTuner) CreateJob(ctx context.Context, trainingFileID, validationFileID string, epochs int) (string, error) {
	if epochs <= 0 {
		epochs = targetEpochs
	}
	job, err := f.client.CreateFineTuningJob(ctx, openai.FineTuningJobRequest{
		TrainingFile:   trainingFileID,
		ValidationFile: validationFileID,
		Model:          f.baseModel,
		Hyperparameters: &openai.Hyperparameters{
			Epochs: epochs,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create fine-tuning job: %w", err)
	}
	f.logger.Info("fine-tuning job created", "job_id", job.ID, "model", f.baseModel, "epochs", epochs)
	return job.ID, nil
}

// JobStatus reports a job's status and, once finished, the fine-tuned model
// name to set as MODEL_NAME for evaluation.
func (f *FineTuner) JobStatus(ctx context.Context, jobID string) (status, model string, err error) {
	job, err := f.client.RetrieveFineTuningJob(ctx, jobID)
	if err != nil {
		return "", "", fmt.Errorf("failed to retrieve fine-tuning job %s: %w", jobID, err)
	}
	return job.Status, job.FineTunedModel, nil
}
