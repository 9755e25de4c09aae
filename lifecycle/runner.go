package lifecycle

import (
	"context"
	"net/http"
	"strconv"

	"github.com/travelguide/crud-contract-tests/assertions"
	"github.com/travelguide/crud-contract-tests/framework"
	"github.com/travelguide/crud-contract-tests/framework/harness"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Options adjust how thorough a run is. The zero value gives the basic lifecycle.
type Options struct {
	// RepeatRead makes the read-by-id step read the record a second time and require the two
	// responses to be identical.
	RepeatRead bool
	// AbsenceReads is how many times the deleted record is read back; each read must find it
	// absent. Zero means once.
	AbsenceReads int
	// CheckUnchangedFields makes the update verification also require that every created field
	// the update did not mention still has the value read before the update.
	CheckUnchangedFields bool
}

// Outcome is the result of one run.
type Outcome struct {
	Resource string
	// State is the last state the run reached. It is StateDone if and only if Err is nil.
	State   State
	Context *RunContext
	Err     error
}

// Kind is shorthand for KindOf(o.Err).
func (o Outcome) Kind() Kind {
	return KindOf(o.Err)
}

// Runner executes lifecycle runs for one Session. The Session should have been opened for this
// run alone; runs for different resource types can proceed concurrently on different Runners.
type Runner struct {
	Executor *harness.Executor
	Session  harness.Session
	Logger   framework.Logger
	Options  Options
}

type transition struct {
	from, to State
	run      func(rs *runState, ctx context.Context) error
}

var transitions = []transition{
	{StateStart, StateCreated, (*runState).create},
	{StateCreated, StateListed, (*runState).list},
	{StateListed, StateFetchedByID, (*runState).fetchByID},
	{StateFetchedByID, StateUpdated, (*runState).update},
	{StateUpdated, StateVerifiedUpdate, (*runState).verifyUpdate},
	{StateVerifiedUpdate, StateDeleted, (*runState).delete},
	{StateDeleted, StateVerifiedAbsent, (*runState).verifyAbsent},
}

type runState struct {
	runner *Runner
	rc     *RunContext
	state  State
	// the request currently being checked, for error reporting
	method, path string
}

// Run takes a resource through its whole lifecycle, stopping at the first failure.
func (r *Runner) Run(ctx context.Context, resource *Resource) Outcome {
	logger := framework.PrefixedLogger(r.Logger, "["+resource.Name+"] ")
	rs := &runState{
		runner: &Runner{Executor: r.Executor.WithLogger(logger), Session: r.Session, Logger: logger, Options: r.Options},
		rc: &RunContext{
			Resource:      resource,
			DependencyIDs: make(map[string]string),
			Record:        ldvalue.Null(),
		},
		state: StateStart,
	}
	outcome := Outcome{Resource: resource.Name, Context: rs.rc}

	if !r.Session.Authenticated() {
		outcome.Err = &harness.SetupError{Message: "session has no token"}
		return outcome
	}

	if err := rs.resolveDependencies(ctx); err != nil {
		outcome.Err = err
		return outcome
	}

	for _, t := range transitions {
		rs.method, rs.path = "", ""
		if err := ctx.Err(); err != nil {
			outcome.State = rs.state
			outcome.Err = rs.wrap(t, err)
			return outcome
		}
		if err := t.run(rs, ctx); err != nil {
			logger.Printf("%s→%s failed: %s", t.from, t.to, err)
			outcome.State = rs.state
			outcome.Err = rs.wrap(t, err)
			return outcome
		}
		rs.state = t.to
		logger.Printf("%s→%s ok", t.from, t.to)
	}
	rs.state = StateDone
	outcome.State = StateDone
	return outcome
}

func (rs *runState) wrap(t transition, err error) error {
	return &StepError{Resource: rs.rc.Resource.Name, From: t.from, To: t.to, Method: rs.method, Path: rs.path, Err: err}
}

func (rs *runState) call(ctx context.Context, method, path string, body interface{}) (harness.StepResult, error) {
	rs.method, rs.path = method, path
	return rs.runner.Executor.Execute(ctx, rs.runner.Session, harness.Request{Method: method, Path: path, Body: body})
}

func (rs *runState) resolveDependencies(ctx context.Context) error {
	for _, dep := range rs.rc.Resource.Dependencies {
		id, err := ResolveDependency(ctx, rs.runner.Executor, rs.runner.Session, rs.rc.Resource.Name, dep)
		if err != nil {
			return &StepError{Resource: rs.rc.Resource.Name, From: StateStart, To: StateStart,
				Method: http.MethodGet, Path: dep.Resource.Path, Err: err}
		}
		rs.runner.Logger.Printf("using %s %s", dep.Resource.Name, id)
		rs.rc.DependencyIDs[dep.Field] = id
	}
	return nil
}

func (rs *runState) create(ctx context.Context) error {
	res := rs.rc.Resource
	payload := res.Create(rs.rc)
	for _, dep := range res.Dependencies {
		payload = payload.With(dep.Field, ldvalue.String(rs.rc.DependencyIDs[dep.Field]))
	}
	rs.rc.Submitted = payload

	result, err := rs.call(ctx, http.MethodPost, res.Path, payload)
	if err != nil {
		return err
	}
	if err := assertions.All(
		func() error { return assertions.Status(result, http.StatusOK, http.StatusCreated) },
		func() error { return assertions.BodyNotEmpty(result) },
		func() error { return assertions.IsObject(result.Parsed, "created "+res.Name) },
		func() error { return assertions.NonEmptyString(result.Parsed, res.idField()) },
	); err != nil {
		return err
	}
	rs.rc.ID, _ = assertions.StringField(result.Parsed, res.idField())
	rs.runner.Logger.Printf("created with %s %s", res.idField(), rs.rc.ID)
	return nil
}

func (rs *runState) list(ctx context.Context) error {
	res := rs.rc.Resource
	result, err := rs.call(ctx, http.MethodGet, res.Path, nil)
	if err != nil {
		return err
	}
	if err := assertions.All(
		func() error { return assertions.Status(result, http.StatusOK) },
		func() error { return assertions.BodyNotEmpty(result) },
		func() error { return assertions.MinLength(result.Parsed, res.Name+" list", 1) },
	); err != nil {
		return err
	}
	for i, item := range assertions.Elements(result.Parsed) {
		if err := CheckShape(res, item); err != nil {
			return &assertions.AssertionError{
				Field:    res.Name + " list element " + strconv.Itoa(i),
				Expected: "to match the " + res.Name + " shape",
				Actual:   err.Error(),
			}
		}
	}
	// other runs may be adding records concurrently, so only our own record is counted
	if n := assertions.CountByField(result.Parsed, res.idField(), rs.rc.ID); n != 1 {
		return &assertions.AssertionError{
			Field:    res.Name + " list",
			Expected: "exactly one element with " + res.idField() + " " + rs.rc.ID,
			Actual:   strconv.Itoa(n),
		}
	}
	return nil
}

func (rs *runState) fetchByID(ctx context.Context) error {
	record, err := rs.readRecord(ctx)
	if err != nil {
		return err
	}
	if err := rs.checkFields(record, rs.rc.Submitted); err != nil {
		return err
	}
	if rs.runner.Options.RepeatRead {
		again, err := rs.readRecord(ctx)
		if err != nil {
			return err
		}
		if !again.Equal(record) {
			return &assertions.AssertionError{
				Field:    "repeated read of " + rs.rc.Resource.Name + " " + rs.rc.ID,
				Expected: record.JSONString(),
				Actual:   again.JSONString(),
			}
		}
	}
	rs.rc.Record = record
	return nil
}

func (rs *runState) update(ctx context.Context) error {
	res := rs.rc.Resource
	payload := res.Update(rs.rc)
	rs.rc.Updated = payload

	result, err := rs.call(ctx, http.MethodPut, res.itemPath(rs.rc.ID), payload)
	if err != nil {
		return err
	}
	if err := assertions.Status(result, http.StatusOK); err != nil {
		return err
	}
	if res.EchoUpdate {
		if err := assertions.All(
			func() error { return assertions.BodyNotEmpty(result) },
			func() error { return assertions.IsObject(result.Parsed, "updated "+res.Name) },
			func() error { return rs.checkFields(result.Parsed, payload) },
		); err != nil {
			return err
		}
	}
	return nil
}

func (rs *runState) verifyUpdate(ctx context.Context) error {
	before := rs.rc.Record
	record, err := rs.readRecord(ctx)
	if err != nil {
		return err
	}
	if err := rs.checkFields(record, rs.rc.Updated); err != nil {
		return err
	}
	if rs.runner.Options.CheckUnchangedFields {
		for _, f := range rs.rc.Submitted {
			if rs.rc.Updated.Has(f.Name) {
				continue
			}
			previous, err := assertions.Field(before, f.Name)
			if err != nil {
				continue
			}
			if err := assertions.ValueEquals(record, f.Name, previous); err != nil {
				return err
			}
		}
	}
	rs.rc.Record = record
	return nil
}

func (rs *runState) delete(ctx context.Context) error {
	result, err := rs.call(ctx, http.MethodDelete, rs.rc.Resource.itemPath(rs.rc.ID), nil)
	if err != nil {
		return err
	}
	return assertions.Status(result, http.StatusOK)
}

func (rs *runState) verifyAbsent(ctx context.Context) error {
	reads := rs.runner.Options.AbsenceReads
	if reads < 1 {
		reads = 1
	}
	for i := 0; i < reads; i++ {
		result, err := rs.call(ctx, http.MethodGet, rs.rc.Resource.itemPath(rs.rc.ID), nil)
		if err != nil {
			return err
		}
		if err := assertions.Absent(result); err != nil {
			return err
		}
	}
	rs.rc.Record = ldvalue.Null()
	return nil
}

// readRecord reads the run's record by id and checks that it is the same record.
func (rs *runState) readRecord(ctx context.Context) (ldvalue.Value, error) {
	res := rs.rc.Resource
	result, err := rs.call(ctx, http.MethodGet, res.itemPath(rs.rc.ID), nil)
	if err != nil {
		return ldvalue.Null(), err
	}
	if err := assertions.All(
		func() error { return assertions.Status(result, http.StatusOK) },
		func() error { return assertions.BodyNotEmpty(result) },
		func() error { return assertions.IsObject(result.Parsed, res.Name) },
		func() error { return assertions.FieldEquals(result.Parsed, res.idField(), rs.rc.ID) },
	); err != nil {
		return ldvalue.Null(), err
	}
	return result.Parsed, nil
}

// checkFields verifies that a record has the values that were sent in a payload. A field
// holding a dependency identifier is expected back as a nested object with that identifier.
func (rs *runState) checkFields(record ldvalue.Value, payload Payload) error {
	res := rs.rc.Resource
	for _, f := range payload {
		if dep, ok := res.dependencyFor(f.Name); ok {
			if err := assertions.All(
				func() error { _, err := assertions.ObjectField(record, f.Name); return err },
				func() error {
					return assertions.FieldEquals(record, f.Name+"."+dep.Resource.idField(), assertions.Representation(f.Value))
				},
			); err != nil {
				return err
			}
			continue
		}
		if err := assertions.ValueEquals(record, f.Name, f.Value); err != nil {
			return err
		}
	}
	return nil
}

// CheckShape verifies that a listed record has the identifier and the fields the resource's Shape
// requires.
func CheckShape(res *Resource, item ldvalue.Value) error {
	if err := assertions.IsObject(item, res.Name); err != nil {
		return err
	}
	if err := assertions.FieldPresent(item, res.idField()); err != nil {
		return err
	}
	for _, rule := range res.Shape {
		var err error
		switch rule.Kind {
		case ShapeNonEmpty:
			err = assertions.NonEmptyString(item, rule.Field)
		case ShapePresent:
			err = assertions.FieldPresent(item, rule.Field)
		case ShapeArray:
			_, err = assertions.ArrayField(item, rule.Field)
		case ShapeObject:
			_, err = assertions.ObjectField(item, rule.Field)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
