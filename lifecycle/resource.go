package lifecycle

import (
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// DefaultIDField is the name of the server-assigned identifier in every record.
const DefaultIDField = "_id"

// ShapeKind says what a listed record's field must look like.
type ShapeKind int

const (
	// ShapeNonEmpty fields must be present with a non-empty string representation.
	ShapeNonEmpty ShapeKind = iota
	// ShapePresent fields must be present, with any value.
	ShapePresent
	// ShapeArray fields must be JSON arrays.
	ShapeArray
	// ShapeObject fields must be JSON objects.
	ShapeObject
)

// ShapeRule is one requirement that every element of a collection listing must meet.
type ShapeRule struct {
	Field string
	Kind  ShapeKind
}

// Dependency is another resource that must already exist before this one can be created. Its
// identifier is put in the creation payload under Field, and the created record must echo it
// back as a nested object whose identifier is the same.
type Dependency struct {
	Resource *Resource
	Field    string
	// If MatchField is set, the dependency is the first listed record whose MatchField equals
	// MatchValue; otherwise it is the first listed record.
	MatchField string
	MatchValue string
}

// Resource describes a kind of entity the service manages and how to exercise it.
type Resource struct {
	Name string
	// Path is the collection path, such as "/category". Individual records are at Path/{id}.
	Path    string
	IDField string
	Shape   []ShapeRule

	Dependencies []Dependency

	// Create builds the creation payload. Dependency identifiers are already in rc when it is
	// called, and are added to the payload automatically.
	Create func(rc *RunContext) Payload
	// Update builds the update payload, which may contain only some of the fields.
	Update func(rc *RunContext) Payload

	// EchoUpdate means the response to an update must be the updated record, so the updated
	// fields are checked in it as well as in the following read.
	EchoUpdate bool
}

func (r *Resource) idField() string {
	if r.IDField == "" {
		return DefaultIDField
	}
	return r.IDField
}

func (r *Resource) itemPath(id string) string {
	return strings.TrimSuffix(r.Path, "/") + "/" + id
}

func (r *Resource) dependencyFor(field string) (Dependency, bool) {
	for _, d := range r.Dependencies {
		if d.Field == field {
			return d, true
		}
	}
	return Dependency{}, false
}

// RunContext is the state threaded through a single lifecycle run. It is created by the Runner
// for each run and must not be shared.
type RunContext struct {
	Resource *Resource
	// ID is the identifier assigned at creation.
	ID string
	// DependencyIDs maps payload field names to the identifiers of resolved dependencies.
	DependencyIDs map[string]string
	Submitted     Payload
	Updated       Payload
	// Record is the most recent full record read from the service.
	Record ldvalue.Value
}
