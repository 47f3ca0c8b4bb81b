package cmds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/spf13/cobra"

	"github.com/claimreview/claimintake/cmd/submitter/internal/build"
	"github.com/claimreview/claimintake/cmd/submitter/internal/client"
	"github.com/claimreview/claimintake/internal/clierrors"
	"github.com/claimreview/claimintake/internal/fetch"
	"github.com/claimreview/claimintake/internal/intake"
	"github.com/claimreview/claimintake/internal/logger"
	"github.com/claimreview/claimintake/internal/types"
)

type options struct {
	fetcher       fetch.Fetcher
	httpClient    *http.Client
	server        string
	claim         string
	review        string
	suggestedWork string
	description   string
	email         string
	reference     string
	form          formName
	images        []string
	dryRun        bool
}

var opts = options{form: formEngineerReview}

var rootCmd = &cobra.Command{
	Use:           "submitter",
	Short:         "Submits a claim review and its photos to the claim intake server",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return submit(cmd.Context(), &opts, cmd.OutOrStdout())
	},
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&opts.server, "server", "http://localhost:3000", "Base url of the claim intake server")
	flags.Var(&opts.form, "form", `"engineer_review" or "generic"`)
	flags.StringVar(&opts.claim, "claim", "", "Claim number (engineer_review) or claim id (generic)")
	flags.StringVar(&opts.review, "review", "", "Engineer review of damages")
	flags.StringVar(&opts.suggestedWork, "suggested-work", "", "Engineer suggested work")
	flags.StringVar(&opts.description, "description", "", "Claim description (generic)")
	flags.StringVar(&opts.email, "email", "", "Contact email (generic)")
	flags.StringVar(&opts.reference, "reference", "", "Optional reference (generic)")
	flags.StringArrayVar(&opts.images, "image", nil, "Image path or http(s) url, repeatable, sent in order")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Build and check the submission without sending it")

	if err := rootCmd.MarkFlagRequired("claim"); err != nil {
		panic("Internal error contact a contributor [claim-flag-required]")
	}
}

func (o *options) fields() map[string]string {
	if o.form == formGeneric {
		return map[string]string{
			"description": o.description,
			"email":       o.email,
			"reference":   o.reference,
		}
	}
	return map[string]string{
		types.BlockEngineerReview:        o.review,
		types.BlockEngineerSuggestedWork: o.suggestedWork,
	}
}

// Image downloads are plain GETs, so unlike the submission itself they are retried
func newImageFetcher() *fetch.SourceFetcher {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 3
	httpClient.Logger = logger.For("submitter")
	return fetch.NewSourceFetcher(httpClient.StandardClient())
}

func submit(ctx context.Context, o *options, out io.Writer) error {
	l := logger.For("submitter")

	sub := build.New(o.form.Form(), o.claim, o.fields())

	fetcher := o.fetcher
	if fetcher == nil {
		fetcher = newImageFetcher()
	}

	for _, source := range o.images {
		loaded, err := build.LoadAttachment(ctx, fetcher, source)
		if err != nil {
			return clierrors.ExitErrorWrap(clierrors.ExitErrored, err)
		}
		l.InfoContext(ctx, "loaded image",
			"source", source,
			"name", loaded.Name,
			"type", loaded.Type,
			"size", *loaded.Size,
			"sha256", loaded.SHA256,
		)
		sub.Attachments = append(sub.Attachments, loaded.Attachment)
	}

	if err := sub.Check(); err != nil {
		var validationErr *intake.ValidationError
		if errors.As(err, &validationErr) {
			return clierrors.ExitErrorWrap(clierrors.ExitRejected, err)
		}
		return clierrors.ExitErrorWrap(clierrors.ExitErrored, err)
	}

	if o.dryRun {
		fmt.Fprintf(out, "POST %s with %d image(s)\n", sub.Path(), len(sub.Attachments))
		return nil
	}

	result, err := client.New(o.server, o.httpClient).Submit(ctx, sub.Path(), sub.Body())
	if err != nil {
		var respErr *client.ResponseError
		if errors.As(err, &respErr) {
			if respErr.Status >= http.StatusInternalServerError {
				return clierrors.ExitErrorWrap(clierrors.ExitFailed, err)
			}
			return clierrors.ExitErrorWrap(clierrors.ExitRejected, err)
		}
		return clierrors.ExitErrorWrap(clierrors.ExitFailed, err)
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return clierrors.ExitErrorWrap(clierrors.ExitErrored, err)
	}
	fmt.Fprintln(out, string(encoded))

	return nil
}
