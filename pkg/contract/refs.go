package contract

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/grid"
	"github.com/goliatone/go-formwizard/pkg/schema"
)

const statusSuffix = "/estado"

// FromDocument collects the calls a form schema makes: its record endpoint,
// remote and dependent option sources, prefill lookups, status changes and
// submission steps.
func FromDocument(doc *schema.Document, origin string) []Reference {
	var refs []Reference
	add := func(method, path, where string) {
		if strings.TrimSpace(path) == "" {
			return
		}
		refs = append(refs, Reference{Origin: origin + ":" + where, Method: method, Path: path})
	}

	if ep := strings.TrimRight(doc.Endpoint, "/"); ep != "" {
		record := ep + "/" + schema.IDPlaceholder
		read := record
		if doc.EndpointEditFull {
			read += "/full"
		}
		add(http.MethodGet, read, "endpoint")
		if doc.Submission == nil || (doc.Submission.Create == nil && doc.Submission.Update == nil) {
			add(http.MethodPost, ep, "endpoint")
			add(http.MethodPut, record, "endpoint")
		}
		if doc.Workflow != nil {
			status := doc.Workflow.StatusEndpoint
			if status == "" {
				status = record + statusSuffix
			}
			add(http.MethodPut, status, "workflow")
		}
	}

	for _, section := range doc.Sections {
		schema.Walk(section.Fields, func(f schema.Field, _ []schema.Field) {
			add(http.MethodGet, f.Source, "fields."+f.Key+".source")
			add(http.MethodGet, f.DependencyEndpointTemplate, "fields."+f.Key+".dependency_endpoint_template")
		})
	}

	for _, rule := range doc.Prefill {
		add(http.MethodGet, rule.Endpoint, "prefill."+rule.Trigger)
	}

	if sub := doc.Submission; sub != nil {
		if sub.Create != nil {
			add(methodOr(sub.Create.Method, http.MethodPost), sub.Create.Path, "submission.create")
		}
		if sub.Update != nil {
			add(methodOr(sub.Update.Method, http.MethodPut), sub.Update.Path, "submission.update")
		}
		for _, step := range sub.Steps {
			add(methodOr(step.Method, http.MethodPut), step.Path, "submission.steps."+step.Name)
		}
	}
	return refs
}

// FromGrid collects the calls a grid makes.
func FromGrid(cfg *grid.Config, origin string) []Reference {
	var refs []Reference
	add := func(method, path, where string) {
		if strings.TrimSpace(path) == "" {
			return
		}
		refs = append(refs, Reference{Origin: origin + ":" + where, Method: method, Path: path})
	}
	add(http.MethodGet, cfg.Endpoints.List, "endpoints.list")
	add(http.MethodDelete, cfg.Endpoints.Delete, "endpoints.delete")
	add(http.MethodGet, cfg.Endpoints.Indicators, "endpoints.indicators")
	for _, f := range cfg.Filters {
		add(http.MethodGet, f.Endpoint, "filters."+f.ID)
	}
	return refs
}

func methodOr(method, fallback string) string {
	if method = strings.TrimSpace(method); method != "" {
		return strings.ToUpper(method)
	}
	return fallback
}
