package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-formwizard/pkg/controls"
	"github.com/goliatone/go-formwizard/pkg/engine"
)

const noSelection = "(sin selección)"

// prompt asks for one control's value and writes the answer through the
// engine. Disabled controls are printed, not prompted.
func (r *Runner) prompt(ctx context.Context, c controls.Control) error {
	label := labelOf(c)
	if !c.Enabled() {
		return r.info(ctx, fmt.Sprintf("%s: %s (bloqueado)", label, display(c)))
	}
	message := r.theme.PromptPrefix + label

	switch ctl := c.(type) {
	case *controls.Select:
		return r.promptSelect(ctx, message, ctl)
	case *controls.MultiSelect:
		return r.promptMulti(ctx, message, ctl)
	case *controls.Date:
		answer, err := r.driver.Input(ctx, InputConfig{
			Message:   message + " (dd-mm-aaaa)",
			Default:   ctl.Display(),
			Validator: validDate,
		})
		if err != nil {
			return err
		}
		return r.set(ctx, c, answer)
	case *controls.FileText:
		file, text := ctl.Parts()
		path, err := r.driver.Input(ctx, InputConfig{Message: message + " (archivo)", Default: file})
		if err != nil {
			return err
		}
		body, err := r.driver.TextArea(ctx, TextAreaConfig{Message: message + " (texto)", Default: text})
		if err != nil {
			return err
		}
		return r.set(ctx, c, map[string]any{"file": path, "text": body})
	case *controls.FilePicker:
		path, err := r.driver.Input(ctx, InputConfig{Message: message + " (archivo)", Default: ctl.Path()})
		if err != nil {
			return err
		}
		return r.set(ctx, c, path)
	case *controls.RiskMatrix:
		return r.promptMatrix(ctx, message, ctl)
	case *controls.Text:
		if ctl.Kind() == controls.KindTextArea {
			answer, err := r.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: ctl.Text(), Help: helpOf(c)})
			if err != nil {
				return err
			}
			return r.set(ctx, c, answer)
		}
		answer, err := r.driver.Input(ctx, InputConfig{
			Message: message,
			Default: ctl.Text(),
			Help:    helpOf(c),
		})
		if err != nil {
			return err
		}
		return r.set(ctx, c, answer)
	default:
		return r.info(ctx, fmt.Sprintf("%s: %s", label, display(c)))
	}
}

func (r *Runner) promptSelect(ctx context.Context, message string, c *controls.Select) error {
	options := c.Options()
	if len(options) == 0 {
		return r.info(ctx, fmt.Sprintf("%s: %s", labelOf(c), r.emptyReason(c.Key())))
	}
	labels := make([]string, 0, len(options)+1)
	labels = append(labels, noSelection)
	for _, opt := range options {
		labels = append(labels, opt.Name)
	}
	choice, err := r.driver.Select(ctx, SelectConfig{
		Message:      message,
		Options:      labels,
		DefaultIndex: c.Index() + 1,
		Help:         helpOf(c),
	})
	if err != nil {
		return err
	}
	if choice <= 0 || choice > len(options) {
		return r.set(ctx, c, nil)
	}
	return r.set(ctx, c, options[choice-1].ID)
}

func (r *Runner) promptMulti(ctx context.Context, message string, c *controls.MultiSelect) error {
	options := c.Options()
	if len(options) == 0 {
		return r.info(ctx, fmt.Sprintf("%s: %s", labelOf(c), r.emptyReason(c.Key())))
	}
	checked := make(map[string]struct{})
	for _, id := range c.IDs() {
		checked[id] = struct{}{}
	}
	labels := make([]string, len(options))
	var defaults []int
	for i, opt := range options {
		labels[i] = opt.Name
		if _, ok := checked[opt.ID]; ok {
			defaults = append(defaults, i)
		}
	}
	picked, err := r.driver.MultiSelect(ctx, SelectConfig{Message: message, Options: labels, Defaults: defaults})
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(picked))
	for _, idx := range picked {
		if idx >= 0 && idx < len(options) {
			ids = append(ids, options[idx].ID)
		}
	}
	return r.set(ctx, c, ids)
}

func (r *Runner) promptMatrix(ctx context.Context, message string, c *controls.RiskMatrix) error {
	if err := r.info(ctx, message); err != nil {
		return err
	}
	for row := 0; row < c.Len(); row++ {
		edit, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "¿Editar " + c.Label(row) + "?"})
		if err != nil {
			return err
		}
		if !edit {
			continue
		}
		for _, col := range c.Columns() {
			answer, err := r.driver.Input(ctx, InputConfig{
				Message: fmt.Sprintf("%s · %s", c.Label(row), col),
				Default: c.Cell(row, col),
			})
			if err != nil {
				return err
			}
			if err := c.SetCell(row, col, strings.TrimSpace(answer)); err != nil {
				return err
			}
		}
	}
	return nil
}

// set writes a value and reports rejected values without failing the run.
func (r *Runner) set(ctx context.Context, c controls.Control, value any) error {
	err := r.engine.Set(c.Key(), value)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, controls.ErrInvalidValue), errors.Is(err, controls.ErrNoMatch), errors.Is(err, engine.ErrLocked):
		r.failure(ctx, labelOf(c), err)
		return nil
	default:
		return err
	}
}

func (r *Runner) emptyReason(key string) string {
	switch r.engine.DependencyState(key) {
	case engine.Loading:
		return "cargando opciones"
	case engine.LoadError:
		return "no se pudieron cargar las opciones"
	default:
		return "sin opciones disponibles"
	}
}

func labelOf(c controls.Control) string {
	field := c.Field()
	label := field.Label
	if label == "" {
		label = field.Key
	}
	if field.Required {
		label += " *"
	}
	return label
}

// helpOf is shown on "?": the field description, else its placeholder.
func helpOf(c controls.Control) string {
	field := c.Field()
	if field.Description != "" {
		return field.Description
	}
	if field.Placeholder != "" {
		return "Ej.: " + field.Placeholder
	}
	return ""
}

func display(c controls.Control) string {
	var text string
	switch ctl := c.(type) {
	case *controls.Select:
		text = ctl.SelectedName()
	case *controls.MultiSelect:
		text = ctl.Text()
	case *controls.Date:
		text = ctl.Display()
	case *controls.Text:
		text = ctl.Text()
	case *controls.FilePicker:
		text = ctl.Path()
	case *controls.FileText:
		file, _ := ctl.Parts()
		text = file
	case *controls.RiskMatrix:
		text = fmt.Sprintf("%d filas", ctl.Len())
	}
	if strings.TrimSpace(text) == "" {
		return "—"
	}
	return text
}

func validDate(answer string) error {
	raw := strings.TrimSpace(answer)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{controls.DisplayDate, controls.ISODate} {
		if _, err := time.Parse(layout, raw); err == nil {
			return nil
		}
	}
	return fmt.Errorf("fecha inválida %q, use dd-mm-aaaa", raw)
}
