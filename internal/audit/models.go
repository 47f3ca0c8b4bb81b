package audit

import (
	"github.com/claimreview/claimintake/internal/types"
)

var schemaVersion = "0.1.0"
var logContext = "audit"

type Disposition string

const (
	DispositionNeutral Disposition = "neutral"
	DispositionGood    Disposition = "good"
	DispositionBad     Disposition = "bad"
)

type EventType string

const (
	EvtSubmissionReceived  EventType = "submission_received"
	EvtClaimBlocksUpdating EventType = "claim_blocks_updating"
	EvtAttachmentUpload    EventType = "attachment_upload"
	EvtSubmissionSucceeded EventType = "submission_succeeded"
	EvtSubmissionFailed    EventType = "submission_failed"
)

type Message struct {
	SubmissionID  string      `json:"submission_id" validate:"required"`
	ClaimID       string      `json:"claim_id"`
	Form          string      `json:"form"          validate:"required"`
	LogContext    string      `json:"log_context"   validate:"required"`
	SchemaVersion string      `json:"version"       validate:"required"`
	Disposition   Disposition `json:"disposition"   validate:"required"`
	Type          EventType   `json:"event_type"    validate:"required"`

	Timestamp types.UnixMilli `json:"timestamp" validate:"required"`
}

// Exists to maintain existing contract structure of audit log
type SubmissionReceivedEvent struct{}

type SubmissionReceived struct {
	Event SubmissionReceivedEvent `json:"event"`
	Message
}

type ClaimBlocksUpdatingEvent struct {
	Blocks []string `json:"blocks"`
}

type ClaimBlocksUpdating struct {
	Event ClaimBlocksUpdatingEvent `json:"event"`
	Message
}

type AttachmentUploadEvent struct {
	DeclaredSize  *int64 `json:"declared_size"`
	Filename      string `json:"filename"`
	MimeType      string `json:"mime_type"`
	DataSHA256    string `json:"data_sha256"    validate:"required"`
	Index         int    `json:"index"`
	EncodedLength int    `json:"encoded_length"`
}

type AttachmentUpload struct {
	Event AttachmentUploadEvent `json:"event" validate:"required"`
	Message
}

type SubmissionSucceededEvent struct {
	Uploaded int `json:"uploaded"`
}

type SubmissionSucceeded struct {
	Event SubmissionSucceededEvent `json:"event"`
	Message
}

type SubmissionFailedEvent struct {
	RemoteStatus *int   `json:"remote_status"`
	Stage        string `json:"stage"    validate:"required"`
	Field        string `json:"field,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Filename     string `json:"filename,omitempty"`
	Error        string `json:"error"`
}

type SubmissionFailed struct {
	Event SubmissionFailedEvent `json:"event" validate:"required"`
	Message
}
