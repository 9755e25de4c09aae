package crudtests

import (
	"github.com/travelguide/crud-contract-tests/lifecycle"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// CategoryPayloads are the values used in a category lifecycle.
type CategoryPayloads struct {
	Name        string
	UpdatedName string
}

// DestinationUpdate is a partial destination update. Only the defined fields are sent.
type DestinationUpdate struct {
	Name            ldvalue.OptionalString
	Location        ldvalue.OptionalString
	Description     ldvalue.OptionalString
	BestTimeToVisit ldvalue.OptionalString
	Attractions     []string
}

// DestinationPayloads are the values used in a destination lifecycle.
type DestinationPayloads struct {
	Name            string
	Location        string
	Description     string
	BestTimeToVisit string
	Attractions     []string
	// CategoryName selects the category the destination is created in. If empty, the first
	// listed category is used.
	CategoryName string
	Update       DestinationUpdate
}

// Payloads are the values submitted during lifecycle runs.
type Payloads struct {
	Category    CategoryPayloads
	Destination DestinationPayloads
}

// DefaultPayloads returns the standard lifecycle values.
func DefaultPayloads() Payloads {
	return Payloads{
		Category: CategoryPayloads{
			Name:        "Test Category",
			UpdatedName: "Updated Test Category",
		},
		Destination: DestinationPayloads{
			Name:            "Test Destination",
			Location:        "Test Location",
			Description:     "Test Description",
			BestTimeToVisit: "Summer",
			Attractions:     []string{"Attraction 1", "Attraction 2"},
			Update: DestinationUpdate{
				Name:        ldvalue.NewOptionalString("Updated Test Destination"),
				Description: ldvalue.NewOptionalString("Updated Test Description"),
				Attractions: []string{"Attraction 3"},
			},
		},
	}
}

// withDefaults fills in any empty values from DefaultPayloads.
func (p Payloads) withDefaults() Payloads {
	d := DefaultPayloads()
	fill := func(target *string, value string) {
		if *target == "" {
			*target = value
		}
	}
	fill(&p.Category.Name, d.Category.Name)
	fill(&p.Category.UpdatedName, d.Category.UpdatedName)
	fill(&p.Destination.Name, d.Destination.Name)
	fill(&p.Destination.Location, d.Destination.Location)
	fill(&p.Destination.Description, d.Destination.Description)
	fill(&p.Destination.BestTimeToVisit, d.Destination.BestTimeToVisit)
	if p.Destination.Attractions == nil {
		p.Destination.Attractions = d.Destination.Attractions
	}
	if p.Destination.Update.isEmpty() {
		p.Destination.Update = d.Destination.Update
	}
	return p
}

func (u DestinationUpdate) isEmpty() bool {
	return !u.Name.IsDefined() && !u.Location.IsDefined() && !u.Description.IsDefined() &&
		!u.BestTimeToVisit.IsDefined() && u.Attractions == nil
}

func (u DestinationUpdate) payload() lifecycle.Payload {
	var p lifecycle.Payload
	for _, f := range []struct {
		name  string
		value ldvalue.OptionalString
	}{
		{"name", u.Name},
		{"location", u.Location},
		{"description", u.Description},
		{"bestTimeToVisit", u.BestTimeToVisit},
	} {
		if f.value.IsDefined() {
			p = append(p, lifecycle.Field(f.name, f.value.AsValue()))
		}
	}
	if u.Attractions != nil {
		p = append(p, lifecycle.Field("attractions", stringArray(u.Attractions)))
	}
	return p
}

func stringArray(values []string) ldvalue.Value {
	b := ldvalue.ArrayBuild()
	for _, v := range values {
		b.Add(ldvalue.String(v))
	}
	return b.Build()
}

// CategoryResource describes the /category endpoints.
func CategoryResource(p CategoryPayloads) *lifecycle.Resource {
	return &lifecycle.Resource{
		Name:  "category",
		Path:  "/category",
		Shape: []lifecycle.ShapeRule{{Field: "name", Kind: lifecycle.ShapeNonEmpty}},
		Create: func(*lifecycle.RunContext) lifecycle.Payload {
			return lifecycle.Payload{lifecycle.Field("name", ldvalue.String(p.Name))}
		},
		Update: func(*lifecycle.RunContext) lifecycle.Payload {
			return lifecycle.Payload{lifecycle.Field("name", ldvalue.String(p.UpdatedName))}
		},
	}
}

// DestinationResource describes the /destination endpoints. A destination needs an existing
// category, which it embeds in its records.
func DestinationResource(p DestinationPayloads, category *lifecycle.Resource) *lifecycle.Resource {
	dep := lifecycle.Dependency{Resource: category, Field: "category"}
	if p.CategoryName != "" {
		dep.MatchField, dep.MatchValue = "name", p.CategoryName
	}
	return &lifecycle.Resource{
		Name: "destination",
		Path: "/destination",
		Shape: []lifecycle.ShapeRule{
			{Field: "name", Kind: lifecycle.ShapeNonEmpty},
			{Field: "location", Kind: lifecycle.ShapeNonEmpty},
			{Field: "bestTimeToVisit", Kind: lifecycle.ShapeNonEmpty},
			{Field: "description", Kind: lifecycle.ShapePresent},
			{Field: "attractions", Kind: lifecycle.ShapeArray},
			{Field: "category", Kind: lifecycle.ShapeObject},
		},
		Dependencies: []lifecycle.Dependency{dep},
		Create: func(*lifecycle.RunContext) lifecycle.Payload {
			return lifecycle.Payload{
				lifecycle.Field("name", ldvalue.String(p.Name)),
				lifecycle.Field("location", ldvalue.String(p.Location)),
				lifecycle.Field("description", ldvalue.String(p.Description)),
				lifecycle.Field("bestTimeToVisit", ldvalue.String(p.BestTimeToVisit)),
				lifecycle.Field("attractions", stringArray(p.Attractions)),
			}
		},
		Update: func(*lifecycle.RunContext) lifecycle.Payload {
			return p.Update.payload()
		},
		EchoUpdate: true,
	}
}
