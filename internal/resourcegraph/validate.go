package resourcegraph

import (
	"fmt"

	"github.com/saltbo/openapi-rest-admin-sub002/internal/domain"
)

// ValidationResult carries three independent severities. Findings are data,
// never errors: callers decide what to do with warnings and suggestions.
// IsValid reflects Errors only.
type ValidationResult struct {
	IsValid     bool     `json:"is_valid"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}

// ValidateResource performs a structural check of a resource and, recursively,
// its sub-resources. Nested findings are prefixed with the sub-resource index
// so they can be traced back to the offending node.
func ValidateResource(r *domain.ParsedResource) ValidationResult {
	result := ValidationResult{}
	validateInto(r, "", &result)
	result.IsValid = len(result.Errors) == 0
	return result
}

func validateInto(r *domain.ParsedResource, prefix string, result *ValidationResult) {
	if r == nil {
		result.Errors = append(result.Errors, prefix+"resource is nil")
		return
	}

	if r.ID == "" {
		result.Errors = append(result.Errors, prefix+"resource has no id")
	}
	if r.Name == "" {
		result.Errors = append(result.Errors, prefix+"resource has no name")
	}
	if r.Path == "" {
		result.Errors = append(result.Errors, prefix+"resource has no path")
	}

	if len(r.Methods) == 0 {
		result.Warnings = append(result.Warnings, prefix+"resource exposes no HTTP methods")
	} else if r.IsRestful {
		for _, m := range []string{"GET", "POST", "PUT", "DELETE"} {
			if !r.HasMethod(m) {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("%sRESTful resource is missing %s", prefix, m))
			}
		}
	}

	if len(r.Schema) == 0 {
		result.Suggestions = append(result.Suggestions, prefix+"resource has no schema defined")
	}

	for i, sub := range r.SubResources {
		validateInto(sub, fmt.Sprintf("%ssubResources[%d]: ", prefix, i), result)
	}
}
