package intake

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/claimreview/claimintake/internal/logger"
	"github.com/claimreview/claimintake/internal/platform"
	"github.com/claimreview/claimintake/internal/types"
)

var tracer = otel.Tracer("github.com/claimreview/claimintake/internal/intake")

type State string

const (
	StateReceived             State = "received"
	StateValidating           State = "validating"
	StateUpdatingMetadata     State = "updating_metadata"
	StateUploadingAttachments State = "uploading_attachments"
	StateSucceeded            State = "succeeded"
	StateFailed               State = "failed"
)

// One step of a submission. Blocks is only set when updating metadata, Index and Attachment
// while uploading attachments, Err and Uploaded on the terminal states.
type Transition struct {
	SubmissionID uuid.UUID
	Form         string
	ClaimID      string
	State        State
	Blocks       map[string]string
	Index        int
	Attachment   *types.Attachment
	Uploaded     int
	Err          error
}

type Observer interface {
	Observe(ctx context.Context, t Transition)
}

type ObserverFunc func(ctx context.Context, t Transition)

func (f ObserverFunc) Observe(ctx context.Context, t Transition) {
	f(ctx, t)
}

// A remote step that failed after validation passed. Steps before it are not undone.
type StepError struct {
	Err      error
	State    State
	Filename string
	Index    int
}

func (e *StepError) Error() string {
	if e.State == StateUploadingAttachments {
		return fmt.Sprintf("failed to upload attachment %d (%s): %s", e.Index, e.Filename, e.Err)
	}
	return fmt.Sprintf("failed to update claim blocks: %s", e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type Result struct {
	SubmissionID uuid.UUID
	ClaimID      string
	Uploaded     int
}

// Validates a submission then forwards it to the platform: one claim block update followed by
// each attachment in input order, one at a time. The first failure ends the submission.
type Submitter struct {
	platform  platform.Platform
	observers []Observer
}

func NewSubmitter(p platform.Platform, observers ...Observer) *Submitter {
	return &Submitter{platform: p, observers: observers}
}

func (s *Submitter) Submit(ctx context.Context, form Form, req Request) (*Result, error) {
	ctx, span := tracer.Start(ctx, "Submitter.Submit", trace.WithAttributes(
		attribute.String("form", form.Name),
	))
	defer span.End()

	run := &submission{
		submitter: s,
		id:        uuid.New(),
		form:      form,
		claimID:   req.ClaimID,
	}
	run.log = logger.Logger.With("submissionID", run.id.String(), "form", form.Name)
	span.SetAttributes(attribute.String("submission.id", run.id.String()))

	run.enter(ctx, StateReceived)
	run.enter(ctx, StateValidating)

	span.AddEvent("validating")
	claim, err := Validate(form, req)
	if err != nil {
		run.fail(ctx, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission rejected")
		return nil, err
	}

	run.enterMetadata(ctx, claim.Blocks)
	span.AddEvent("updating_metadata")
	if err := s.platform.UpdateClaimBlocks(ctx, claim.ClaimID, claim.Blocks); err != nil {
		stepErr := &StepError{State: StateUpdatingMetadata, Err: err}
		run.fail(ctx, stepErr)
		span.RecordError(stepErr)
		span.SetStatus(codes.Error, "failed to update claim blocks")
		return nil, stepErr
	}

	for i := range claim.Attachments {
		attachment := &claim.Attachments[i]
		run.enterAttachment(ctx, i, attachment)

		span.AddEvent("uploading_attachment", trace.WithAttributes(
			attribute.Int("index", i),
			attribute.String("filename", attachment.Name),
		))
		if err := s.platform.UploadAttachment(ctx, claim.ClaimID, *attachment); err != nil {
			stepErr := &StepError{
				State:    StateUploadingAttachments,
				Index:    i,
				Filename: attachment.Name,
				Err:      err,
			}
			run.fail(ctx, stepErr)
			span.RecordError(stepErr)
			span.SetStatus(codes.Error, "failed to upload attachment")
			return nil, stepErr
		}
	}

	run.succeed(ctx, len(claim.Attachments))

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "submission forwarded")
	return &Result{
		SubmissionID: run.id,
		ClaimID:      claim.ClaimID,
		Uploaded:     len(claim.Attachments),
	}, nil
}

type submission struct {
	submitter *Submitter
	log       *slog.Logger
	form      Form
	claimID   string
	id        uuid.UUID
}

func (r *submission) transition(state State) Transition {
	return Transition{
		SubmissionID: r.id,
		Form:         r.form.Name,
		ClaimID:      r.claimID,
		State:        state,
	}
}

func (r *submission) enter(ctx context.Context, state State) {
	r.log.DebugContext(ctx, "submission state", "state", state)
	r.notify(ctx, r.transition(state))
}

func (r *submission) enterMetadata(ctx context.Context, blocks map[string]string) {
	r.log.DebugContext(ctx, "submission state", "state", StateUpdatingMetadata, "blocks", len(blocks))

	t := r.transition(StateUpdatingMetadata)
	t.Blocks = blocks
	r.notify(ctx, t)
}

func (r *submission) enterAttachment(ctx context.Context, index int, attachment *types.Attachment) {
	r.log.DebugContext(
		ctx,
		"submission state",
		"state",
		StateUploadingAttachments,
		"index",
		index,
		"filename",
		attachment.Name,
	)

	t := r.transition(StateUploadingAttachments)
	t.Index = index
	t.Attachment = attachment
	r.notify(ctx, t)
}

func (r *submission) succeed(ctx context.Context, uploaded int) {
	r.log.InfoContext(ctx, "submission forwarded", "claimID", r.claimID, "uploaded", uploaded)

	t := r.transition(StateSucceeded)
	t.Uploaded = uploaded
	r.notify(ctx, t)
}

func (r *submission) fail(ctx context.Context, err error) {
	r.log.InfoContext(ctx, "submission failed", "claimID", r.claimID, "error", err)

	t := r.transition(StateFailed)
	t.Err = err
	r.notify(ctx, t)
}

func (r *submission) notify(ctx context.Context, t Transition) {
	for _, observer := range r.submitter.observers {
		observer.Observe(ctx, t)
	}
}
