package engine_test

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/goliatone/go-formwizard/pkg/controls"
	"github.com/goliatone/go-formwizard/pkg/submit"
)

type scenario struct {
	h         *harness
	submitErr error
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "engine",
		ScenarioInitializer: initializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

func initializeScenario(ctx *godog.ScenarioContext) {
	sc := &scenario{}

	ctx.Given(`^the "([^"]*)" form is open$`, sc.theFormIsOpen)
	ctx.When(`^I select "([^"]*)" in "([^"]*)"$`, sc.iSet)
	ctx.When(`^I enter "([^"]*)" in "([^"]*)"$`, sc.iSet)
	ctx.When(`^background work completes$`, sc.backgroundWorkCompletes)
	ctx.When(`^I submit the form$`, sc.iSubmitTheForm)
	ctx.Then(`^the wizard has (\d+) sections$`, sc.theWizardHasSections)
	ctx.Then(`^the field "([^"]*)" is not registered$`, sc.theFieldIsNotRegistered)
	ctx.Then(`^the field "([^"]*)" is registered$`, sc.theFieldIsRegistered)
	ctx.Then(`^section "([^"]*)" reports (\d+)/(\d+)$`, sc.sectionReports)
	ctx.Then(`^the options of "([^"]*)" are empty$`, sc.theOptionsAreEmpty)
	ctx.Then(`^the options of "([^"]*)" are "([^"]*)"$`, sc.theOptionsAre)
	ctx.Then(`^a request was made to "([^"]*)"$`, sc.aRequestWasMadeTo)
	ctx.Then(`^the submitted field "([^"]*)" is null$`, sc.theSubmittedFieldIsNull)
	ctx.Then(`^the submitted field "([^"]*)" is "([^"]*)"$`, sc.theSubmittedFieldIs)
}

func (sc *scenario) theFormIsOpen(name string) error {
	h, err := buildHarness(name)
	if err != nil {
		return err
	}
	sc.h = h
	sc.h.start()
	return nil
}

func (sc *scenario) iSet(value, key string) error {
	return sc.h.engine.Set(key, value)
}

func (sc *scenario) backgroundWorkCompletes() error {
	sc.h.engine.Settle()
	return nil
}

func (sc *scenario) iSubmitTheForm() error {
	sc.h.engine.Submit(context.Background(), func(_ submit.Outcome, err error) {
		sc.submitErr = err
	})
	return nil
}

func (sc *scenario) theWizardHasSections(n int) error {
	if got := len(sc.h.engine.Sections()); got != n {
		return fmt.Errorf("wizard has %d sections (%s), want %d", got, sectionTitles(sc.h.engine), n)
	}
	if got := sc.h.engine.Navigator().Len(); got != n {
		return fmt.Errorf("navigator has %d steps, want %d", got, n)
	}
	return nil
}

func (sc *scenario) theFieldIsNotRegistered(key string) error {
	if _, ok := sc.h.engine.Lookup(key); ok {
		return fmt.Errorf("%s is still registered", key)
	}
	return nil
}

func (sc *scenario) theFieldIsRegistered(key string) error {
	if _, ok := sc.h.engine.Lookup(key); !ok {
		return fmt.Errorf("%s is not registered", key)
	}
	return nil
}

func (sc *scenario) sectionReports(title string, filled, total int) error {
	for _, sp := range sc.h.engine.Progress().Sections {
		if sp.Title != title {
			continue
		}
		if sp.Filled != filled || sp.Total != total {
			return fmt.Errorf("section %s reports %s, want %d/%d", title, sp.Label(), filled, total)
		}
		return nil
	}
	return fmt.Errorf("no section %q", title)
}

func (sc *scenario) optionIDs(key string) ([]string, error) {
	c, ok := sc.h.engine.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%s not registered", key)
	}
	sel, ok := c.(*controls.Select)
	if !ok {
		return nil, fmt.Errorf("%s is %T", key, c)
	}
	var ids []string
	for _, opt := range sel.Options() {
		ids = append(ids, opt.ID)
	}
	return ids, nil
}

func (sc *scenario) theOptionsAreEmpty(key string) error {
	ids, err := sc.optionIDs(key)
	if err != nil {
		return err
	}
	if len(ids) != 0 {
		return fmt.Errorf("%s still offers %v", key, ids)
	}
	return nil
}

func (sc *scenario) theOptionsAre(key, want string) error {
	ids, err := sc.optionIDs(key)
	if err != nil {
		return err
	}
	if got := strings.Join(ids, ","); got != want {
		return fmt.Errorf("%s offers %q, want %q", key, got, want)
	}
	return nil
}

func (sc *scenario) aRequestWasMadeTo(endpoint string) error {
	if !slices.Contains(sc.h.options.Requests(), endpoint) {
		return fmt.Errorf("no request to %q, got %v", endpoint, sc.h.options.Requests())
	}
	return nil
}

func (sc *scenario) submittedBody() (map[string]any, error) {
	if sc.submitErr != nil {
		return nil, sc.submitErr
	}
	calls := sc.h.store.Calls()
	if len(calls) == 0 {
		return nil, fmt.Errorf("nothing was submitted")
	}
	body, ok := calls[len(calls)-1].Body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("body is %T", calls[len(calls)-1].Body)
	}
	return body, nil
}

func (sc *scenario) theSubmittedFieldIsNull(key string) error {
	body, err := sc.submittedBody()
	if err != nil {
		return err
	}
	value, ok := body[key]
	if !ok {
		return fmt.Errorf("%s missing from payload", key)
	}
	if value != nil {
		return fmt.Errorf("%s = %#v, want null", key, value)
	}
	return nil
}

func (sc *scenario) theSubmittedFieldIs(key, want string) error {
	body, err := sc.submittedBody()
	if err != nil {
		return err
	}
	if got := fmt.Sprint(body[key]); got != want {
		return fmt.Errorf("%s = %q, want %q", key, got, want)
	}
	return nil
}
