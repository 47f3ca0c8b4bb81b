package types

import "encoding/json"

// Claim block keys on the insurance platform
const (
	BlockEngineerReview        string = "engineer_review_of_damages"
	BlockEngineerSuggestedWork string = "engineer_suggested_work"
)

// 4 MiB per attachment before base64 encoding
const MaxAttachmentBytes int64 = 4 * 1024 * 1024

type Attachment struct {
	// File name as chosen by the uploader
	Name string `json:"name"`
	// MIME type as reported by the browser
	Type string `json:"type"`
	// Declared size in bytes of the decoded file. Optional.
	Size *int64 `json:"size" validate:"omitempty,min=0"`
	// Base64 encoded file contents without the data URL prefix
	Data string `json:"data"`
}

// Validated submission, only lives for the duration of a request
type ClaimSubmission struct {
	ClaimID     string
	Blocks      map[string]string
	Attachments []Attachment
}

// Body of POST /submit-claim
type GenericClaimRequest struct {
	ClaimID     string                    `json:"claimId"`
	Description string                    `json:"description"`
	Email       string                    `json:"email"`
	Reference   string                    `json:"reference"`
	Images      Optional[json.RawMessage] `json:"images"`
}

// Body of POST /submit-claim/{claim_number}
type EngineerReviewRequest struct {
	ClaimNumber     string                    `param:"claim_number" json:"-"`
	ReviewOfDamages string                    `json:"engineer_review_of_damages"`
	SuggestedWork   string                    `json:"engineer_suggested_work"`
	Images          Optional[json.RawMessage] `json:"images"`
}

type SubmitResponse struct {
	Message      string `json:"message"`
	SubmissionID string `json:"submission_id,omitempty"`
	Uploaded     int    `json:"uploaded"`
}
