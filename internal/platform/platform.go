package platform

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/claimreview/claimintake/internal/types"
)

var tracer = otel.Tracer("github.com/claimreview/claimintake/internal/platform")

//go:generate mockgen -destination ./mock/mock.go -package mock . Platform

// Claim operations on the remote insurance platform
type Platform interface {
	// Set claim block values, keyed by block key
	UpdateClaimBlocks(ctx context.Context, claimID string, blocks map[string]string) error
	// Create one attachment on the claim
	UploadAttachment(ctx context.Context, claimID string, attachment types.Attachment) error
}

// Non 2xx answer from the platform
type RemoteAPIError struct {
	Body   string
	Status int
}

func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("Root API error (%d): %s", e.Status, e.Body)
}
