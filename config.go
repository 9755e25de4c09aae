package main

import (
	"fmt"
	"os"
	"time"

	"github.com/travelguide/crud-contract-tests/crudtests"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
	"gopkg.in/yaml.v3"
)

// fileConfig is the format of the -config file. Every field is optional; command-line flags
// take precedence over it.
type fileConfig struct {
	URL       string   `yaml:"url"`
	User      string   `yaml:"user"`
	Password  string   `yaml:"password"`
	Token     string   `yaml:"token"`
	LoginPath string   `yaml:"loginPath"`
	Timeout   string   `yaml:"timeout"`
	Parallel  int      `yaml:"parallel"`
	Run       []string `yaml:"run"`
	Skip      []string `yaml:"skip"`

	Payloads struct {
		Category struct {
			Name        string `yaml:"name"`
			UpdatedName string `yaml:"updatedName"`
		} `yaml:"category"`
		Destination struct {
			Name            string   `yaml:"name"`
			Location        string   `yaml:"location"`
			Description     string   `yaml:"description"`
			BestTimeToVisit string   `yaml:"bestTimeToVisit"`
			Attractions     []string `yaml:"attractions"`
			Category        string   `yaml:"category"`
			Update          struct {
				Name            *string  `yaml:"name"`
				Location        *string  `yaml:"location"`
				Description     *string  `yaml:"description"`
				BestTimeToVisit *string  `yaml:"bestTimeToVisit"`
				Attractions     []string `yaml:"attractions"`
			} `yaml:"update"`
		} `yaml:"destination"`
	} `yaml:"payloads"`

	Fixtures []struct {
		Name            string   `yaml:"name"`
		Location        string   `yaml:"location"`
		Description     string   `yaml:"description"`
		BestTimeToVisit string   `yaml:"bestTimeToVisit"`
		Attractions     []string `yaml:"attractions"`
		Category        string   `yaml:"category"`
	} `yaml:"fixtures"`
}

func loadConfigFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	if fc.Timeout != "" {
		if _, err := time.ParseDuration(fc.Timeout); err != nil {
			return nil, fmt.Errorf("parse config %q: invalid timeout: %w", path, err)
		}
	}
	return &fc, nil
}

func (fc *fileConfig) payloads() crudtests.Payloads {
	c, d := fc.Payloads.Category, fc.Payloads.Destination
	return crudtests.Payloads{
		Category: crudtests.CategoryPayloads{Name: c.Name, UpdatedName: c.UpdatedName},
		Destination: crudtests.DestinationPayloads{
			Name:            d.Name,
			Location:        d.Location,
			Description:     d.Description,
			BestTimeToVisit: d.BestTimeToVisit,
			Attractions:     d.Attractions,
			CategoryName:    d.Category,
			Update: crudtests.DestinationUpdate{
				Name:            ldvalue.NewOptionalStringFromPointer(d.Update.Name),
				Location:        ldvalue.NewOptionalStringFromPointer(d.Update.Location),
				Description:     ldvalue.NewOptionalStringFromPointer(d.Update.Description),
				BestTimeToVisit: ldvalue.NewOptionalStringFromPointer(d.Update.BestTimeToVisit),
				Attractions:     d.Update.Attractions,
			},
		},
	}
}

func (fc *fileConfig) fixtures() []crudtests.Fixture {
	ret := make([]crudtests.Fixture, 0, len(fc.Fixtures))
	for _, f := range fc.Fixtures {
		ret = append(ret, crudtests.Fixture{
			Name:            f.Name,
			Location:        f.Location,
			Description:     f.Description,
			BestTimeToVisit: f.BestTimeToVisit,
			Attractions:     f.Attractions,
			CategoryName:    f.Category,
		})
	}
	return ret
}
