package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/terraincognita07/fertyfit/internal/config"
	"github.com/terraincognita07/fertyfit/internal/models"
	"github.com/terraincognita07/fertyfit/internal/services"
)

const (
	commandServe  = "serve"
	commandSweep  = "sweep"
	commandRecalc = "recalc"
	commandIndex  = "index"
	commandReview = "review"
)

var errUsage = errors.New("usage: fertyfit [serve | sweep --trigger TRIGGER | recalc --user ID | index --source NAME --pillar PILLAR FILE | review --form ID [--pdf URL]]")

type invocation struct {
	command string
	trigger services.RuleTrigger
	userID  uint
	source  string
	pillar  string
	path    string
	formID  uint
	pdfURL  string
}

// Run executes one command. Logs go to stderr; command results are written to
// stdout as JSON.
func Run(ctx context.Context, args []string, stdout io.Writer) error {
	request, err := parseInvocation(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	logger := NewLogger(cfg.Logging, os.Stderr)

	app, err := NewApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warnf("shutdown cleanup failed: %v", err)
		}
	}()

	return execute(ctx, app, request, stdout)
}

func execute(ctx context.Context, app *Application, request invocation, stdout io.Writer) error {
	switch request.command {
	case commandServe:
		return serve(ctx, app)
	case commandSweep:
		report, err := app.Sweep.Run(ctx, request.trigger)
		if err != nil {
			return err
		}
		return writeJSON(stdout, report)
	case commandRecalc:
		result, err := app.Services.Scores.Recalculate(ctx, request.userID, models.ScoreReasonManual)
		if err != nil {
			return err
		}
		return writeJSON(stdout, result)
	case commandIndex:
		text, err := os.ReadFile(request.path)
		if err != nil {
			return fmt.Errorf("read document: %w", err)
		}
		chunks, err := app.Services.Reports.IndexDocument(ctx, request.source, request.pillar, string(text))
		if err != nil {
			return err
		}
		return writeJSON(stdout, map[string]any{"source": request.source, "chunks": chunks})
	case commandReview:
		if err := app.Services.Pillars.MarkFormReviewed(ctx, request.formID, request.pdfURL); err != nil {
			return err
		}
		return writeJSON(stdout, map[string]any{"form_id": request.formID, "status": models.FormStatusReviewed, "reviewed_pdf_url": request.pdfURL})
	default:
		return errUsage
	}
}

func parseInvocation(args []string) (invocation, error) {
	if len(args) == 0 {
		return invocation{command: commandServe}, nil
	}

	request := invocation{command: strings.ToLower(args[0])}
	flags := flag.NewFlagSet(request.command, flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	switch request.command {
	case commandServe:
		if err := flags.Parse(args[1:]); err != nil {
			return invocation{}, errUsage
		}
	case commandSweep:
		trigger := flags.String("trigger", string(services.TriggerDailyCheck), "rule trigger")
		if err := flags.Parse(args[1:]); err != nil {
			return invocation{}, errUsage
		}
		parsed, err := services.ParseRuleTrigger(strings.ToUpper(strings.TrimSpace(*trigger)))
		if err != nil {
			return invocation{}, err
		}
		request.trigger = parsed
	case commandRecalc:
		userID := flags.Uint("user", 0, "user id")
		if err := flags.Parse(args[1:]); err != nil {
			return invocation{}, errUsage
		}
		if *userID == 0 {
			return invocation{}, fmt.Errorf("recalc: --user is required")
		}
		request.userID = *userID
	case commandIndex:
		source := flags.String("source", "", "document source name")
		pillar := flags.String("pillar", "", "pillar the document belongs to")
		if err := flags.Parse(args[1:]); err != nil {
			return invocation{}, errUsage
		}
		if strings.TrimSpace(*source) == "" || flags.NArg() != 1 {
			return invocation{}, errUsage
		}
		request.source = strings.TrimSpace(*source)
		request.pillar = strings.ToUpper(strings.TrimSpace(*pillar))
		request.path = flags.Arg(0)
	case commandReview:
		formID := flags.Uint("form", 0, "consultation form id")
		pdfURL := flags.String("pdf", "", "url of the reviewed report")
		if err := flags.Parse(args[1:]); err != nil {
			return invocation{}, errUsage
		}
		if *formID == 0 {
			return invocation{}, fmt.Errorf("review: --form is required")
		}
		request.formID = *formID
		request.pdfURL = strings.TrimSpace(*pdfURL)
	default:
		return invocation{}, errUsage
	}
	return request, nil
}

func writeJSON(output io.Writer, value any) error {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
