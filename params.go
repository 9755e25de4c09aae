package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/travelguide/crud-contract-tests/crudtests"
	"github.com/travelguide/crud-contract-tests/framework"
	"github.com/travelguide/crud-contract-tests/framework/harness"

	"github.com/alessio/shellescape"
)

const passwordEnvVar = "API_PASSWORD"

type commandParams struct {
	serviceURL string
	user       string
	password   string
	token      string
	loginPath  string
	timeout    time.Duration
	parallel   int
	configFile string
	filters    framework.RegexFilters
	debug      bool
	debugAll   bool

	payloads crudtests.Payloads
	fixtures []crudtests.Fixture
}

func (c *commandParams) Read(args []string, stderr io.Writer) bool {
	fs := flag.NewFlagSet("", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&c.serviceURL, "url", "", "base URL of the service under test")
	fs.StringVar(&c.user, "user", "", "email address to log in as")
	fs.StringVar(&c.password, "password", "", "password to log in with (default $"+passwordEnvVar+")")
	fs.StringVar(&c.token, "token", "", "use this bearer token instead of logging in")
	fs.StringVar(&c.loginPath, "login-path", harness.DefaultLoginPath, "path of the login endpoint")
	fs.DurationVar(&c.timeout, "timeout", harness.DefaultCallTimeout, "timeout for each request")
	fs.IntVar(&c.parallel, "parallel", 2, "maximum number of lifecycle runs at once")
	fs.StringVar(&c.configFile, "config", "", "YAML file with settings, payloads, and fixtures")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		return false
	}

	if c.configFile != "" {
		set := make(map[string]bool)
		fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
		if err := c.applyConfigFile(set); err != nil {
			fmt.Fprintln(stderr, err)
			return false
		}
	}
	if c.password == "" {
		c.password = os.Getenv(passwordEnvVar)
	}

	if c.serviceURL == "" {
		fmt.Fprintln(stderr, "-url is required")
		fs.Usage()
		return false
	}
	if c.token == "" && c.user == "" {
		fmt.Fprintln(stderr, "either -user or -token is required")
		fs.Usage()
		return false
	}
	return true
}

func (c *commandParams) applyConfigFile(set map[string]bool) error {
	fc, err := loadConfigFile(c.configFile)
	if err != nil {
		return err
	}
	setString := func(name string, target *string, value string) {
		if !set[name] && value != "" {
			*target = value
		}
	}
	setString("url", &c.serviceURL, fc.URL)
	setString("user", &c.user, fc.User)
	setString("password", &c.password, fc.Password)
	setString("token", &c.token, fc.Token)
	setString("login-path", &c.loginPath, fc.LoginPath)
	if !set["timeout"] && fc.Timeout != "" {
		c.timeout, _ = time.ParseDuration(fc.Timeout)
	}
	if !set["parallel"] && fc.Parallel > 0 {
		c.parallel = fc.Parallel
	}
	if !set["run"] {
		for _, p := range fc.Run {
			if err := c.filters.MustMatch.Set(p); err != nil {
				return fmt.Errorf("config %q: %w", c.configFile, err)
			}
		}
	}
	if !set["skip"] {
		for _, p := range fc.Skip {
			if err := c.filters.MustNotMatch.Set(p); err != nil {
				return fmt.Errorf("config %q: %w", c.configFile, err)
			}
		}
	}
	c.payloads = fc.payloads()
	c.fixtures = fc.fixtures()
	return nil
}

// rerunCommand returns a command line that runs only the given tests with the same settings.
// The password is left out, so it has to come from the environment or the config file.
func (c *commandParams) rerunCommand(program string, ids []framework.TestID) string {
	var b commandBuilder
	b.add(program, "-url", c.serviceURL)
	if c.configFile != "" {
		b.add("-config", c.configFile)
	}
	if c.user != "" {
		b.add("-user", c.user)
	}
	if c.loginPath != harness.DefaultLoginPath {
		b.add("-login-path", c.loginPath)
	}
	if c.timeout != harness.DefaultCallTimeout {
		b.add("-timeout", c.timeout.String())
	}
	for _, id := range ids {
		b.add("-run", framework.ExactMatchPattern(id))
	}
	if c.debug {
		b.add("-debug")
	}
	if c.debugAll {
		b.add("-debug-all")
	}
	return b.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
