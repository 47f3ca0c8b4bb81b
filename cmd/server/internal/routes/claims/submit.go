package claims

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	servermiddleware "github.com/claimreview/claimintake/cmd/server/internal/middleware"
	"github.com/claimreview/claimintake/cmd/server/internal/response"
	"github.com/claimreview/claimintake/internal/intake"
	"github.com/claimreview/claimintake/internal/logger"
	"github.com/claimreview/claimintake/internal/platform"
	"github.com/claimreview/claimintake/internal/types"
)

const successMessage = "Claim blocks updated and attachments uploaded successfully."

func (h *Handler) SubmitGeneric(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "SubmitGeneric")
	defer span.End()

	span.AddEvent("received claim submission request")

	var body types.GenericClaimRequest

	span.AddEvent("parsing request body")
	if err := c.Bind(&body); err != nil {
		span.SetStatus(codes.Ok, "failed to parse request data")
		span.RecordError(err)
		return bindError(err)
	}

	span.SetAttributes(attribute.String("claim.id", body.ClaimID))

	span.AddEvent("submitting claim")
	result, err := h.submitter.Submit(ctx, intake.GenericForm, intake.GenericRequest(&body))

	return respond(c, span, result, err)
}

func (h *Handler) SubmitEngineerReview(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "SubmitEngineerReview")
	defer span.End()

	span.AddEvent("received engineer review submission request")

	var body types.EngineerReviewRequest

	span.AddEvent("parsing request body")
	if err := c.Bind(&body); err != nil {
		span.SetStatus(codes.Ok, "failed to parse request data")
		span.RecordError(err)
		return bindError(err)
	}

	claimNumber, err := servermiddleware.PathParam(c, "claim_number")
	if err != nil {
		span.SetStatus(codes.Ok, "failed to parse claim number")
		span.RecordError(err)
		return echo.NewHTTPError(
			http.StatusBadRequest,
			types.KindError(types.ErrorKindMalformed, "Claim number is not a valid path segment."),
		)
	}
	body.ClaimNumber = claimNumber

	span.SetAttributes(attribute.String("claim.id", body.ClaimNumber))

	span.AddEvent("submitting claim")
	result, err := h.submitter.Submit(ctx, intake.EngineerReviewForm, intake.EngineerReviewRequest(&body))

	return respond(c, span, result, err)
}

func bindError(err error) error {
	if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
		return echo.ErrStatusRequestEntityTooLarge
	}

	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code == http.StatusUnsupportedMediaType {
		return he
	}

	return echo.NewHTTPError(
		http.StatusBadRequest,
		types.KindError(types.ErrorKindMalformed, "Request body must be a JSON object."),
	)
}

func respond(c echo.Context, span trace.Span, result *intake.Result, err error) error {
	if err == nil {
		span.SetAttributes(
			attribute.String("submission.id", result.SubmissionID.String()),
			attribute.Int("submission.uploaded", result.Uploaded),
		)
		span.RecordError(nil)
		span.SetStatus(codes.Ok, "claim submitted")
		return c.JSON(http.StatusOK, types.SubmitResponse{
			Message:      successMessage,
			SubmissionID: result.SubmissionID.String(),
			Uploaded:     result.Uploaded,
		})
	}

	var validationErr *intake.ValidationError
	if errors.As(err, &validationErr) {
		span.SetStatus(codes.Ok, "submission rejected")
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusBadRequest, types.ErrorResponse{
			Error:    validationErr.Message,
			Kind:     types.ErrorKindValidation,
			Field:    validationErr.Field,
			Reason:   validationErr.Reason,
			Filename: validationErr.Filename,
		})
	}

	span.RecordError(err)

	var remoteErr *platform.RemoteAPIError
	if errors.As(err, &remoteErr) {
		span.SetStatus(codes.Error, "platform rejected the submission")

		resp := types.ErrorResponse{
			Error:        remoteErr.Error(),
			Kind:         types.ErrorKindRemote,
			RemoteStatus: remoteErr.Status,
		}
		var stepErr *intake.StepError
		if errors.As(err, &stepErr) {
			resp.Filename = stepErr.Filename
		}
		return echo.NewHTTPError(http.StatusInternalServerError, resp).SetInternal(err)
	}

	span.SetStatus(codes.Error, "unexpected submission failure")
	logger.Logger.ErrorContext(c.Request().Context(), "unexpected submission failure", "error", err)
	return response.UnexpectedSubmitError
}
