// Package tui drives a wizard engine from an interactive terminal.
//
// The Runner walks the live steps, prompts every visible control through a
// PromptDriver, feeds the answers back into the engine, and offers the
// footer actions of each step. Background work is drained between prompts,
// so the engine must be built with a draining dispatcher such as
// engine.QueueDispatcher.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goliatone/go-formwizard/pkg/engine"
	"github.com/goliatone/go-formwizard/pkg/schema"
	"github.com/goliatone/go-formwizard/pkg/submit"
)

// ActionQuit is reported when the user leaves without writing.
const ActionQuit engine.Action = "quit"

// actionBack moves to the previous step. It never leaves the runner.
const actionBack engine.Action = "back"

var actionLabels = map[engine.Action]string{
	engine.ActionNext:    "Siguiente",
	engine.ActionSave:    "Guardar",
	engine.ActionSend:    "Enviar a revisión",
	engine.ActionApprove: "Aprobar",
	engine.ActionReject:  "Rechazar",
	engine.ActionClose:   "Cerrar",
	actionBack:           "Anterior",
	ActionQuit:           "Salir sin guardar",
}

// Result reports how a run ended.
type Result struct {
	Action  engine.Action
	Outcome submit.Outcome
}

// Runner is a terminal front end for one engine.
type Runner struct {
	engine      *engine.Engine
	driver      PromptDriver
	out         io.Writer
	theme       Theme
	logger      *slog.Logger
	confirmSend bool
}

// New builds a runner. Without WithPromptDriver it prompts through survey.
func New(eng *engine.Engine, opts ...Option) (*Runner, error) {
	if eng == nil {
		return nil, errors.New("tui: engine is required")
	}
	r := &Runner{
		engine: eng,
		out:    os.Stdout,
		theme:  DefaultTheme,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(r.out)
	}
	return r, nil
}

// Run starts the engine and loops over steps until the user writes, closes
// or quits. Failed writes are reported and the loop resumes on the same
// step. Aborting a prompt returns ErrAborted.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	r.engine.Start(ctx)
	r.engine.Settle()
	if err := r.engine.LoadErr(); err != nil {
		r.failure(ctx, "no se pudo cargar el registro", err)
	}
	for _, u := range r.engine.Unmapped() {
		r.info(ctx, "entrada sin categoría conocida: "+u.String())
	}
	if r.engine.Locked() {
		r.info(ctx, fmt.Sprintf("registro en estado %s: solo lectura", r.engine.State()))
	}

	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		nav := r.engine.Navigator()
		idx := nav.Current()
		sections := r.engine.Sections()
		if idx < 0 || idx >= len(sections) {
			return Result{}, fmt.Errorf("tui: step %d out of range", idx)
		}
		section := sections[idx]

		if err := r.info(ctx, fmt.Sprintf("[%d/%d] %s", idx+1, nav.Len(), section.Title)); err != nil {
			return Result{}, err
		}
		if err := r.fillSection(ctx, section); err != nil {
			return Result{}, err
		}
		r.printProgress(ctx, idx)

		action, err := r.chooseAction(ctx, idx)
		if err != nil {
			return Result{}, err
		}
		switch action {
		case engine.ActionNext:
			nav.Next()
		case actionBack:
			nav.Prev()
		case engine.ActionClose, ActionQuit:
			return Result{Action: action}, nil
		default:
			out, err := r.perform(ctx, action)
			switch {
			case errors.Is(err, ErrAborted):
				return Result{}, err
			case errors.Is(err, errCancelled):
				continue
			case err != nil:
				r.logger.WarnContext(ctx, "tui: action failed", "action", string(action), "error", err)
				r.failure(ctx, actionLabels[action]+" falló", err)
				continue
			}
			r.info(ctx, fmt.Sprintf("%s: registro %s", actionLabels[action], out.ID))
			return Result{Action: action, Outcome: out}, nil
		}
	}
}

func (r *Runner) fillSection(ctx context.Context, section schema.Section) error {
	var fields []schema.Field
	schema.Walk(section.Fields, func(field schema.Field, _ []schema.Field) {
		fields = append(fields, field)
	})
	for _, field := range fields {
		if !r.engine.Visible(field.Key) {
			continue
		}
		if field.IsGroup() {
			if field.Label != "" {
				if err := r.info(ctx, "## "+field.Label); err != nil {
					return err
				}
			}
			continue
		}
		// A previous answer may have pruned the field.
		c, ok := r.engine.Lookup(field.Key)
		if !ok {
			continue
		}
		if err := r.prompt(ctx, c); err != nil {
			return err
		}
		r.engine.Settle()
	}
	return nil
}

func (r *Runner) printProgress(ctx context.Context, idx int) {
	report := r.engine.Progress()
	line := report.Label()
	if idx < len(report.Sections) {
		line = fmt.Sprintf("%s · paso %s", line, report.Sections[idx].Label())
	}
	r.info(ctx, line)
}

func (r *Runner) chooseAction(ctx context.Context, idx int) (engine.Action, error) {
	actions := r.engine.Footer()
	if idx > 0 {
		actions = append(actions, actionBack)
	}
	if !r.engine.Locked() {
		actions = append(actions, ActionQuit)
	}
	labels := make([]string, len(actions))
	for i, a := range actions {
		labels[i] = actionLabels[a]
	}
	choice, err := r.driver.Select(ctx, SelectConfig{Message: r.theme.PromptPrefix + "Acción", Options: labels})
	if err != nil {
		return "", err
	}
	if choice < 0 || choice >= len(actions) {
		return "", fmt.Errorf("tui: action index %d out of range", choice)
	}
	return actions[choice], nil
}

// perform runs a write action and waits for its completion. Send saves
// pending edits before the status change.
func (r *Runner) perform(ctx context.Context, action engine.Action) (submit.Outcome, error) {
	switch action {
	case engine.ActionSave:
		return r.await(func(done engine.SubmitFunc) { r.engine.Submit(ctx, done) })
	case engine.ActionSend:
		if r.confirmSend {
			ok, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "¿Enviar el registro a revisión?"})
			if err != nil {
				return submit.Outcome{}, err
			}
			if !ok {
				return submit.Outcome{}, errCancelled
			}
		}
		if _, err := r.await(func(done engine.SubmitFunc) { r.engine.Submit(ctx, done) }); err != nil {
			return submit.Outcome{}, err
		}
		return r.await(func(done engine.SubmitFunc) { r.engine.Send(ctx, done) })
	case engine.ActionApprove, engine.ActionReject:
		approve := action == engine.ActionApprove
		comment, err := r.driver.TextArea(ctx, TextAreaConfig{Message: "Comentario"})
		if err != nil {
			return submit.Outcome{}, err
		}
		if !approve && comment == "" {
			ok, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "¿Rechazar sin comentario?"})
			if err != nil {
				return submit.Outcome{}, err
			}
			if !ok {
				return submit.Outcome{}, errCancelled
			}
		}
		return r.await(func(done engine.SubmitFunc) { r.engine.Review(ctx, approve, comment, done) })
	default:
		return submit.Outcome{}, fmt.Errorf("tui: unsupported action %q", action)
	}
}

func (r *Runner) await(start func(done engine.SubmitFunc)) (submit.Outcome, error) {
	var (
		out      submit.Outcome
		err      error
		finished bool
	)
	start(func(o submit.Outcome, e error) {
		out, err, finished = o, e, true
	})
	r.engine.Settle()
	if !finished {
		return submit.Outcome{}, ErrUnsettled
	}
	return out, err
}

func (r *Runner) info(ctx context.Context, msg string) error {
	if r.theme.InfoPrefix != "" {
		msg = r.theme.InfoPrefix + " " + msg
	}
	return r.driver.Info(ctx, msg)
}

func (r *Runner) failure(ctx context.Context, msg string, err error) {
	line := fmt.Sprintf("%s: %v", msg, err)
	if r.theme.ErrorPrefix != "" {
		line = r.theme.ErrorPrefix + " " + line
	}
	r.driver.Info(ctx, line)
}
