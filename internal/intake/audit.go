package intake

import (
	"context"
	"errors"

	"github.com/claimreview/claimintake/internal/audit"
	"github.com/claimreview/claimintake/internal/platform"
)

// Writes one audit event per transition worth keeping. Validating carries nothing new and is skipped.
var AuditObserver = ObserverFunc(func(_ context.Context, t Transition) {
	c := audit.Context{
		SubmissionID: t.SubmissionID.String(),
		ClaimID:      t.ClaimID,
		Form:         t.Form,
	}

	switch t.State {
	case StateReceived:
		audit.LogSubmissionReceived(c)
	case StateUpdatingMetadata:
		audit.LogClaimBlocksUpdating(c, t.Blocks)
	case StateUploadingAttachments:
		if t.Attachment != nil {
			audit.LogAttachmentUpload(c, t.Index, *t.Attachment)
		}
	case StateSucceeded:
		audit.LogSubmissionSucceeded(c, t.Uploaded)
	case StateFailed:
		audit.LogSubmissionFailed(c, failureOf(t.Err))
	}
})

func failureOf(err error) audit.Failure {
	failure := audit.Failure{Stage: string(StateValidating)}
	if err != nil {
		failure.Err = err.Error()
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		failure.Field = validationErr.Field
		failure.Reason = validationErr.Reason
		failure.Filename = validationErr.Filename
		return failure
	}

	var stepErr *StepError
	if errors.As(err, &stepErr) {
		failure.Stage = string(stepErr.State)
		failure.Filename = stepErr.Filename
	}

	var remoteErr *platform.RemoteAPIError
	if errors.As(err, &remoteErr) {
		status := remoteErr.Status
		failure.RemoteStatus = &status
	}

	return failure
}
