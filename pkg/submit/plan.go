package submit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/schema"
)

// BuildFunc produces a step payload from the flat values. Returning skip
// leaves the step out of the run.
type BuildFunc func(values map[string]any) (payload any, skip bool, err error)

// Step is one backend call in a plan.
type Step struct {
	Name   string
	Method string
	// Path may carry {id}, replaced by the record id known at run time.
	Path  string
	Build BuildFunc
	// CaptureID reads the new record id from the response.
	CaptureID bool
	// IDField names the response key holding the id; "id" when empty.
	IDField string
	// Compensate undoes the step when a later step fails and compensation
	// is enabled.
	Compensate *Step
}

// Plan is an explicit ordered list of steps.
type Plan struct {
	Steps []Step
}

// Names returns the step names in order.
func (p Plan) Names() []string {
	out := make([]string, 0, len(p.Steps))
	for _, step := range p.Steps {
		out = append(out, step.Name)
	}
	return out
}

// SinglePlan wraps one payload-producing call, used for generic records.
func SinglePlan(name, method, path string, payload map[string]any, capture bool) Plan {
	step := Step{
		Name:      name,
		Method:    method,
		Path:      path,
		CaptureID: capture,
		Build: func(map[string]any) (any, bool, error) {
			return payload, false, nil
		},
	}
	if capture {
		step.Compensate = deleteStep(name, path)
	}
	return Plan{Steps: []Step{step}}
}

// PlanOptions selects which declared calls make up a plan.
type PlanOptions struct {
	Editing bool
	Variant string
}

// BuildPlan converts a declared submission block into a plan. The primary
// call is Create for new records and Update when editing; Update defaults to
// PUT <create.path>/{id}. Steps bound to another variant are excluded.
func BuildPlan(sub *schema.Submission, opts PlanOptions) (Plan, error) {
	if sub == nil {
		return Plan{}, ErrNoPlan
	}
	primary, err := primaryCall(sub, opts.Editing)
	if err != nil {
		return Plan{}, err
	}

	first, err := callStep(primary, sub.CreatorField)
	if err != nil {
		return Plan{}, err
	}
	if !opts.Editing {
		first.CaptureID = true
		first.IDField = sub.IDField
		first.Compensate = deleteStep(first.Name, primary.Path)
	}

	plan := Plan{Steps: []Step{first}}
	for _, call := range sub.Steps {
		if call.Variant != "" && !strings.EqualFold(call.Variant, opts.Variant) {
			continue
		}
		step, err := callStep(call, "")
		if err != nil {
			return Plan{}, err
		}
		plan.Steps = append(plan.Steps, step)
	}
	return plan, nil
}

func primaryCall(sub *schema.Submission, editing bool) (schema.Call, error) {
	if !editing {
		if sub.Create == nil {
			return schema.Call{}, fmt.Errorf("%w: create", ErrNoPlan)
		}
		return *sub.Create, nil
	}
	if sub.Update != nil {
		return *sub.Update, nil
	}
	if sub.Create == nil {
		return schema.Call{}, fmt.Errorf("%w: update", ErrNoPlan)
	}
	update := *sub.Create
	update.Method = http.MethodPut
	update.Path = strings.TrimRight(update.Path, "/") + "/" + schema.IDPlaceholder
	if update.Name == sub.Create.Name {
		update.Name = strings.Replace(update.Name, "create", "update", 1)
	}
	return update, nil
}

func callStep(call schema.Call, creatorField string) (Step, error) {
	for _, m := range call.Fields {
		if _, ok := transforms[m.Transform]; !ok {
			return Step{}, fmt.Errorf("%w %q on %s.%s", ErrUnknownTransform, m.Transform, call.Name, m.Target)
		}
	}
	name := call.Name
	if name == "" {
		name = strings.ToLower(call.Method) + " " + call.Path
	}
	return Step{
		Name:   name,
		Method: strings.ToUpper(call.Method),
		Path:   call.Path,
		Build: func(values map[string]any) (any, bool, error) {
			if len(call.WhenAny) > 0 && !anyPresent(values, call.WhenAny) {
				return nil, true, nil
			}
			payload, err := mapValues(call, values)
			if err != nil {
				return nil, false, err
			}
			if creatorField != "" {
				if creator, ok := values[creatorField]; ok {
					payload[creatorField] = creator
				}
			}
			return payload, false, nil
		},
	}, nil
}

// mapValues builds the payload of a call. Calls without mappings send every
// value.
func mapValues(call schema.Call, values map[string]any) (map[string]any, error) {
	payload := make(map[string]any, len(call.Fields)+len(call.Constants))
	if len(call.Fields) == 0 {
		for k, v := range values {
			payload[k] = v
		}
	}
	for _, m := range call.Fields {
		source := m.Source
		if source == "" {
			source = m.Target
		}
		value, err := transforms[m.Transform](values[source])
		if err != nil {
			return nil, fmt.Errorf("submit: %s.%s: %w", call.Name, m.Target, err)
		}
		payload[m.Target] = value
	}
	for k, v := range call.Constants {
		payload[k] = v
	}
	return payload, nil
}

func anyPresent(values map[string]any, keys []string) bool {
	for _, key := range keys {
		if !isBlank(values[key]) {
			return true
		}
	}
	return false
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case []map[string]any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

func deleteStep(name, path string) *Step {
	return &Step{
		Name:   name + ":rollback",
		Method: http.MethodDelete,
		Path:   strings.TrimRight(path, "/") + "/" + schema.IDPlaceholder,
	}
}

type transformFunc func(any) (any, error)

var transforms = map[string]transformFunc{
	"":       func(v any) (any, error) { return v, nil },
	"bool":   toBool,
	"json":   toJSON,
	"list":   toList,
	"string": toString,
}

func toBool(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	default:
		switch strings.ToLower(strings.TrimSpace(fmt.Sprint(v))) {
		case "si", "sí", "true", "1", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}

func toJSON(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func toList(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, schema.NormalizeID(item))
		}
		return out, nil
	case string:
		out := make([]string, 0)
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	default:
		return []string{schema.NormalizeID(v)}, nil
	}
}

func toString(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case []string:
		return strings.Join(v, ", "), nil
	default:
		return schema.NormalizeID(v), nil
	}
}
