package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nklact/normaai/internal/domain"
)

// Decision is the outcome of an authorization check. Reason is user-facing
// and only meaningful when Allowed is false.
type Decision struct {
	Allowed bool
	Reason  string
}

// Authorizer decides whether a user may have contract files generated.
// Plan and quota rules live behind this interface, outside the pipeline.
type Authorizer interface {
	Authorize(ctx context.Context, user domain.UserContext) Decision
}

// UsageRecorder is implemented by authorizers that meter generations. The
// pipeline reports only successful ones, so a failed render never counts
// against a quota.
type UsageRecorder interface {
	RecordGeneration(ctx context.Context, user domain.UserContext)
}

const (
	deniedNotice         = "Contract generation requires at least an Individual plan. Please upgrade your account."
	generationFailNotice = "Something went wrong while generating the contract file. Please try again."
)

// Pipeline turns a raw LLM response into the answer the client sees, plus a
// downloadable contract document when the response contains a valid one.
type Pipeline struct {
	generator  *DocumentGenerator
	scheduler  *CleanupScheduler
	authorizer Authorizer
	baseURL    string
}

func NewPipeline(generator *DocumentGenerator, scheduler *CleanupScheduler, authorizer Authorizer, baseURL string) *Pipeline {
	return &Pipeline{
		generator:  generator,
		scheduler:  scheduler,
		authorizer: authorizer,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Process never fails the call: whatever happens to the contract stages, the
// narrative answer goes back to the user, annotated when something was denied
// or broke.
func (p *Pipeline) Process(ctx context.Context, response string, user domain.UserContext) domain.AssistantResult {
	detection := DetectContract(response)
	result := domain.AssistantResult{Answer: detection.CleanResponse}

	if !detection.Found {
		return result
	}

	if !ValidateContract(detection.Contract) {
		slog.Warn("generated contract failed validation", "length", len(detection.Contract))
		return result
	}

	decision := p.authorizer.Authorize(ctx, user)
	if !decision.Allowed {
		reason := decision.Reason
		if reason == "" {
			reason = deniedNotice
		}
		slog.Info("contract generation denied", "userId", user.UserID, "plan", user.Plan)
		result.Answer += "\n\n" + reason
		return result
	}

	contractType := DetectContractType(detection.Contract)

	doc, err := p.generator.Generate(detection.Contract, contractType)
	if err != nil {
		slog.Error("contract generation failed", "error", err)
		result.Answer += "\n\n" + generationFailNotice
		return result
	}

	p.scheduler.Schedule(doc.ID)

	if recorder, ok := p.authorizer.(UsageRecorder); ok {
		recorder.RecordGeneration(ctx, user)
	}

	result.Contract = &domain.ContractMetadata{
		FileID:       doc.ID,
		Filename:     doc.Filename,
		DownloadURL:  fmt.Sprintf("%s/api/contracts/%s", p.baseURL, doc.ID),
		ContractType: contractType,
		PreviewText:  PreviewText(detection.Contract, previewMaxLength),
	}
	return result
}
