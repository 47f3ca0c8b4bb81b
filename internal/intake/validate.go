package intake

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/claimreview/claimintake/internal/types"
	"github.com/claimreview/claimintake/internal/validator"
)

const imagesField = "images"

// Reasons reported in a ValidationError
const (
	ReasonRequired          = "required"
	ReasonNotAnArray        = "not_an_array"
	ReasonTooMany           = "too_many"
	ReasonInvalidAttachment = "invalid_attachment"
	ReasonTooLarge          = "too_large"
)

// Describes one entry point: where the claim id comes from, which text fields it takes and how
// many attachments it accepts. Text fields other than Withheld ones are forwarded as claim blocks
// under their own names.
type Form struct {
	Name           string
	ClaimField     string
	Required       []string
	Optional       []string
	// Checked like any other field but never sent to the platform
	Withheld       []string
	MaxAttachments int
}

var (
	GenericForm = Form{
		Name:           "generic",
		ClaimField:     "claimId",
		Required:       []string{"description", "email"},
		Optional:       []string{"reference"},
		Withheld:       []string{"email"},
		MaxAttachments: 4,
	}
	EngineerReviewForm = Form{
		Name:           "engineer_review",
		ClaimField:     "claim_number",
		Required:       []string{types.BlockEngineerReview, types.BlockEngineerSuggestedWork},
		MaxAttachments: 5,
	}
)

// Raw submission as it arrived, before any checks
type Request struct {
	ClaimID string
	Fields  map[string]string
	Images  types.Optional[json.RawMessage]
}

func GenericRequest(body *types.GenericClaimRequest) Request {
	return Request{
		ClaimID: body.ClaimID,
		Fields: map[string]string{
			"description": body.Description,
			"email":       body.Email,
			"reference":   body.Reference,
		},
		Images: body.Images,
	}
}

func EngineerReviewRequest(body *types.EngineerReviewRequest) Request {
	return Request{
		ClaimID: body.ClaimNumber,
		Fields: map[string]string{
			types.BlockEngineerReview:        body.ReviewOfDamages,
			types.BlockEngineerSuggestedWork: body.SuggestedWork,
		},
		Images: body.Images,
	}
}

type ValidationError struct {
	Field    string
	Reason   string
	Filename string
	Message  string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var structValidator = validator.Create()

// Checks a request against a form. The first failing check wins and nothing after it is looked at.
func Validate(form Form, req Request) (*types.ClaimSubmission, error) {
	if req.ClaimID == "" {
		return nil, requiredError(form.ClaimField)
	}

	blocks := make(map[string]string, len(form.Required)+len(form.Optional))
	for _, field := range form.Required {
		value := req.Fields[field]
		if value == "" {
			return nil, requiredError(field)
		}
		blocks[field] = value
	}
	for _, field := range form.Optional {
		if value := req.Fields[field]; value != "" {
			blocks[field] = value
		}
	}
	for _, field := range form.Withheld {
		delete(blocks, field)
	}

	attachments, err := decodeImages(form, req.Images)
	if err != nil {
		return nil, err
	}

	return &types.ClaimSubmission{
		ClaimID:     req.ClaimID,
		Blocks:      blocks,
		Attachments: attachments,
	}, nil
}

func decodeImages(form Form, images types.Optional[json.RawMessage]) ([]types.Attachment, error) {
	if !images.Defined {
		return []types.Attachment{}, nil
	}

	if images.IsNull() || !bytes.HasPrefix(bytes.TrimSpace(*images.Value), []byte("[")) {
		return nil, &ValidationError{
			Field:   imagesField,
			Reason:  ReasonNotAnArray,
			Message: "images must be an array.",
		}
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(*images.Value, &elements); err != nil {
		return nil, &ValidationError{
			Field:   imagesField,
			Reason:  ReasonNotAnArray,
			Message: "images must be an array.",
		}
	}

	if len(elements) > form.MaxAttachments {
		return nil, &ValidationError{
			Field:   imagesField,
			Reason:  ReasonTooMany,
			Message: fmt.Sprintf("You can upload a maximum of %d images.", form.MaxAttachments),
		}
	}

	attachments := make([]types.Attachment, 0, len(elements))
	for i, element := range elements {
		attachment, err := decodeAttachment(i, element)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, attachment)
	}

	for _, attachment := range attachments {
		if attachment.Size != nil && *attachment.Size > types.MaxAttachmentBytes {
			return nil, tooLargeError(attachment.Name)
		}
		// declared size is optional and can understate, the payload itself is bounded too
		if !validator.ValidateAttachmentSize(len(attachment.Data), types.MaxAttachmentBytes) {
			return nil, tooLargeError(attachment.Name)
		}
	}

	return attachments, nil
}

func decodeAttachment(index int, element json.RawMessage) (types.Attachment, error) {
	var attachment types.Attachment

	invalid := func() error {
		label := fmt.Sprintf("at position %d", index)
		if attachment.Name != "" {
			label = fmt.Sprintf("%q", attachment.Name)
		}
		return &ValidationError{
			Field:    imagesField,
			Reason:   ReasonInvalidAttachment,
			Filename: attachment.Name,
			Message:  fmt.Sprintf("Image %s is not a valid attachment.", label),
		}
	}

	if !bytes.HasPrefix(bytes.TrimSpace(element), []byte("{")) {
		return attachment, invalid()
	}
	if err := json.Unmarshal(element, &attachment); err != nil {
		return attachment, invalid()
	}
	if err := structValidator.Validate(&attachment); err != nil {
		return attachment, invalid()
	}

	return attachment, nil
}

func requiredError(field string) error {
	return &ValidationError{
		Field:   field,
		Reason:  ReasonRequired,
		Message: field + " is required.",
	}
}

func tooLargeError(name string) error {
	return &ValidationError{
		Field:    imagesField,
		Reason:   ReasonTooLarge,
		Filename: name,
		Message:  fmt.Sprintf("Image %q is larger than 4MB.", name),
	}
}
