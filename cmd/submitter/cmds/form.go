package cmds

import (
	"errors"

	"github.com/claimreview/claimintake/internal/intake"
)

// Entry point selected on the command line
type formName string

const (
	formEngineerReview formName = "engineer_review"
	formGeneric        formName = "generic"
)

func (f formName) String() string {
	return string(f)
}

func (f *formName) Set(v string) error {
	switch formName(v) {
	case formEngineerReview, formGeneric:
		*f = formName(v)
		return nil
	default:
		return errors.New(`must be one of "engineer_review" or "generic"`)
	}
}

// Allow use as a cobra flag
func (*formName) Type() string {
	return "Form"
}

func (f formName) Form() intake.Form {
	if f == formGeneric {
		return intake.GenericForm
	}
	return intake.EngineerReviewForm
}
