package audit

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/claimreview/claimintake/internal/hash"
	"github.com/claimreview/claimintake/internal/logger"
	"github.com/claimreview/claimintake/internal/types"
)

type Context struct {
	SubmissionID string
	ClaimID      string
	Form         string
}

// Why a submission stopped. Stage is the state it was in when it failed.
type Failure struct {
	RemoteStatus *int
	Stage        string
	Field        string
	Reason       string
	Filename     string
	Err          string
}

func newMessage(c Context, evtType EventType, disposition Disposition) Message {
	return Message{
		SubmissionID:  c.SubmissionID,
		ClaimID:       c.ClaimID,
		Form:          c.Form,
		LogContext:    logContext,
		SchemaVersion: schemaVersion,
		Disposition:   disposition,
		Type:          evtType,
		Timestamp:     types.UnixMilli(time.Now().UTC().UnixMilli()),
	}
}

func emit(c Context, evtType EventType, event any) {
	evtStr, err := json.Marshal(event)
	if err != nil {
		logger.Logger.Error(
			"could not serialize audit event",
			"eventType",
			evtType,
			"submissionID",
			c.SubmissionID,
			"claimID",
			c.ClaimID,
			"error",
			err,
		)
		return
	}

	fmt.Println(string(evtStr))
}

func LogSubmissionReceived(c Context) {
	event := SubmissionReceived{}
	event.Message = newMessage(c, EvtSubmissionReceived, DispositionNeutral)

	emit(c, event.Type, event)
}

// Only block names are recorded, never their contents
func LogClaimBlocksUpdating(c Context, blocks map[string]string) {
	event := ClaimBlocksUpdating{}
	event.Message = newMessage(c, EvtClaimBlocksUpdating, DispositionNeutral)

	event.Event.Blocks = make([]string, 0, len(blocks))
	for name := range blocks {
		event.Event.Blocks = append(event.Event.Blocks, name)
	}
	sort.Strings(event.Event.Blocks)

	emit(c, event.Type, event)
}

func LogAttachmentUpload(c Context, index int, attachment types.Attachment) {
	event := AttachmentUpload{}
	event.Message = newMessage(c, EvtAttachmentUpload, DispositionNeutral)

	event.Event.Index = index
	event.Event.Filename = attachment.Name
	event.Event.MimeType = attachment.Type
	event.Event.DeclaredSize = attachment.Size
	event.Event.EncodedLength = len(attachment.Data)
	event.Event.DataSHA256 = hash.Attachment(attachment.Data)

	emit(c, event.Type, event)
}

func LogSubmissionSucceeded(c Context, uploaded int) {
	event := SubmissionSucceeded{}
	event.Message = newMessage(c, EvtSubmissionSucceeded, DispositionGood)

	event.Event.Uploaded = uploaded

	emit(c, event.Type, event)
}

func LogSubmissionFailed(c Context, failure Failure) {
	event := SubmissionFailed{}
	event.Message = newMessage(c, EvtSubmissionFailed, DispositionBad)

	event.Event.Stage = failure.Stage
	event.Event.Field = failure.Field
	event.Event.Reason = failure.Reason
	event.Event.Filename = failure.Filename
	event.Event.RemoteStatus = failure.RemoteStatus
	event.Event.Error = failure.Err

	emit(c, event.Type, event)
}
