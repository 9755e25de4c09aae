package crudtests

import (
	"github.com/travelguide/crud-contract-tests/framework"
)

// RunTestSuite runs every contract test against the service described by config.
func RunTestSuite(
	config Config,
	filter framework.Filter,
	testLogger framework.TestLogger,
) framework.Results {
	config.Payloads = config.Payloads.withDefaults()
	category := CategoryResource(config.Payloads.Category)
	env := &environment{
		config:   config,
		category: category,
		dest:     DestinationResource(config.Payloads.Destination, category),
	}
	return framework.Run(filter, testLogger, func(c *framework.Context) {
		t := newTestScope(c, env)

		t.RunParallel(
			Subtest{Name: "category", Action: DoCategoryTests},
			Subtest{Name: "destination", Action: DoDestinationTests},
		)
	})
}
