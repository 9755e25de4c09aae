package lifecycle

import (
	"context"
	"net/http"

	"github.com/travelguide/crud-contract-tests/assertions"
	"github.com/travelguide/crud-contract-tests/framework/harness"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// ResolveDependency lists the dependency's collection and returns the identifier of the record
// to use: the first one, or the first one matching dep.MatchField. An empty list or no match is
// a *DependencyMissingError.
func ResolveDependency(
	ctx context.Context,
	executor *harness.Executor,
	session harness.Session,
	dependent string,
	dep Dependency,
) (string, error) {
	result, err := executor.Execute(ctx, session, harness.Request{Method: http.MethodGet, Path: dep.Resource.Path})
	if err != nil {
		return "", err
	}
	if err := assertions.All(
		func() error { return assertions.Status(result, http.StatusOK) },
		func() error { return assertions.BodyNotEmpty(result) },
		func() error { return assertions.IsArray(result.Parsed, dep.Resource.Name+" list") },
	); err != nil {
		return "", err
	}
	missing := &DependencyMissingError{
		Resource:   dependent,
		Dependency: dep.Resource.Name,
		MatchField: dep.MatchField,
		MatchValue: dep.MatchValue,
	}
	var chosen ldvalue.Value
	if dep.MatchField != "" {
		item, ok := assertions.FindByField(result.Parsed, dep.MatchField, dep.MatchValue)
		if !ok {
			return "", missing
		}
		chosen = item
	} else {
		if result.Parsed.Count() == 0 {
			return "", missing
		}
		chosen = result.Parsed.GetByIndex(0)
	}
	if err := assertions.NonEmptyString(chosen, dep.Resource.idField()); err != nil {
		return "", err
	}
	return assertions.StringField(chosen, dep.Resource.idField())
}
