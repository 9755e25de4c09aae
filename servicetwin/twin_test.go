package servicetwin

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	testEmail    = "tester@example.com"
	testPassword = "secret"
)

type twinClient struct {
	t      *testing.T
	server *httptest.Server
	token  string
}

func setupTwin(t *testing.T, config Config) (*Twin, *twinClient) {
	t.Helper()
	config.Users = map[string]string{testEmail: testPassword}
	twin := New(config)
	srv := httptest.NewServer(twin.Handler())
	t.Cleanup(srv.Close)
	token, err := twin.IssueToken(testEmail)
	require.NoError(t, err)
	return twin, &twinClient{t: t, server: srv, token: token}
}

func (c *twinClient) do(method, path string, body any) (int, string) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.server.URL+path, reader)
	require.NoError(c.t, err)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, string(bytes.TrimSpace(data))
}

func (c *twinClient) doJSON(method, path string, body any, into any) int {
	c.t.Helper()
	status, data := c.do(method, path, body)
	require.NoError(c.t, json.Unmarshal([]byte(data), into), "body: %s", data)
	return status
}

func TestLogin(t *testing.T) {
	_, tc := setupTwin(t, Config{})
	tc.token = ""

	var resp map[string]string
	status := tc.doJSON("POST", "/user/login", map[string]string{"email": testEmail, "password": testPassword}, &resp)
	assert.Equal(t, 200, status)
	assert.NotEmpty(t, resp["token"])

	tc.token = resp["token"]
	status, _ = tc.do("GET", "/category", nil)
	assert.Equal(t, 200, status)
}

func TestLoginWrongPassword(t *testing.T) {
	_, tc := setupTwin(t, Config{})
	status, body := tc.do("POST", "/user/login", map[string]string{"email": testEmail, "password": "nope"})
	assert.Equal(t, 401, status)
	assert.Contains(t, body, "Invalid email or password")
}

func TestAuthRequired(t *testing.T) {
	_, tc := setupTwin(t, Config{})

	tc.token = ""
	status, body := tc.do("GET", "/category", nil)
	assert.Equal(t, 401, status)
	assert.Contains(t, body, "Missing authorization header")

	tc.token = "not-a-jwt"
	status, body = tc.do("GET", "/category", nil)
	assert.Equal(t, 401, status)
	assert.Contains(t, body, "Invalid token")
}

func TestTokenFromOtherKeyIsRejected(t *testing.T) {
	other := New(Config{SigningKey: []byte("other key")})
	token, err := other.IssueToken(testEmail)
	require.NoError(t, err)

	_, tc := setupTwin(t, Config{})
	tc.token = token
	status, _ := tc.do("GET", "/category", nil)
	assert.Equal(t, 401, status)
}

func TestCategoryLifecycle(t *testing.T) {
	_, tc := setupTwin(t, Config{})

	var created Category
	status := tc.doJSON("POST", "/category", map[string]string{"name": "Test Category"}, &created)
	require.Equal(t, 200, status)
	assert.Len(t, created.ID, 24)
	assert.Equal(t, "Test Category", created.Name)

	var list []Category
	tc.doJSON("GET", "/category", nil, &list)
	assert.Equal(t, []Category{created}, list)

	var updated Category
	status = tc.doJSON("PUT", "/category/"+created.ID, map[string]string{"name": "Updated Test Category"}, &updated)
	assert.Equal(t, 200, status)
	assert.Equal(t, Category{ID: created.ID, Name: "Updated Test Category"}, updated)

	status, _ = tc.do("DELETE", "/category/"+created.ID, nil)
	assert.Equal(t, 200, status)

	status, body := tc.do("GET", "/category/"+created.ID, nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, "null", body)
}

func TestCreateCategoryRequiresName(t *testing.T) {
	_, tc := setupTwin(t, Config{})
	status, _ := tc.do("POST", "/category", map[string]string{"name": " "})
	assert.Equal(t, 400, status)
}

func TestDestinationEmbedsCategory(t *testing.T) {
	twin, tc := setupTwin(t, Config{})
	cat := twin.Store().AddCategory(Category{Name: "Beaches"})

	var created destinationView
	status := tc.doJSON("POST", "/destination", map[string]any{
		"name":            "Test Destination",
		"location":        "Test Location",
		"description":     "Test Description",
		"bestTimeToVisit": "Summer",
		"attractions":     []string{"A", "B"},
		"category":        cat.ID,
	}, &created)
	require.Equal(t, 200, status)
	require.NotNil(t, created.Category)
	assert.Equal(t, cat, *created.Category)

	var fetched destinationView
	tc.doJSON("GET", "/destination/"+created.ID, nil, &fetched)
	assert.Equal(t, created, fetched)
}

func TestDestinationUpdateIsPartial(t *testing.T) {
	twin, tc := setupTwin(t, Config{})
	cat := twin.Store().AddCategory(Category{Name: "Beaches"})
	d := twin.Store().AddDestination(Destination{
		Name: "Old", Location: "Somewhere", BestTimeToVisit: "Never", Attractions: []string{"x"}, CategoryID: cat.ID,
	})

	var updated destinationView
	status := tc.doJSON("PUT", "/destination/"+d.ID, map[string]any{"name": "New", "attractions": []string{"y", "z"}}, &updated)
	assert.Equal(t, 200, status)
	assert.Equal(t, "New", updated.Name)
	assert.Equal(t, "Somewhere", updated.Location)
	assert.Equal(t, []string{"y", "z"}, updated.Attractions)
}

func TestDestinationRejectsUnknownCategory(t *testing.T) {
	_, tc := setupTwin(t, Config{})
	status, body := tc.do("POST", "/destination", map[string]any{
		"name": "n", "location": "l", "bestTimeToVisit": "b", "category": "000000000000000000000000",
	})
	assert.Equal(t, 400, status)
	assert.Contains(t, body, "Unknown category")
}

func TestSeedFixtures(t *testing.T) {
	_, tc := setupTwin(t, Config{Seed: true})

	var list []destinationView
	tc.doJSON("GET", "/destination", nil, &list)
	require.NotEmpty(t, list)
	nyc := list[0]
	assert.Equal(t, "New York City", nyc.Name)
	assert.Equal(t, "New York, USA", nyc.Location)
	assert.Equal(t, "The largest city in the USA, known for its skyscrapers, culture, and entertainment.", nyc.Description)
	require.NotNil(t, nyc.Category)
	assert.Equal(t, "Cities", nyc.Category.Name)
}

func TestQuirks(t *testing.T) {
	t.Run("not found status", func(t *testing.T) {
		_, tc := setupTwin(t, Config{Quirks: Quirks{NotFoundStatus: 404}})
		status, _ := tc.do("GET", "/category/nothing", nil)
		assert.Equal(t, 404, status)
	})

	t.Run("ignore deletes", func(t *testing.T) {
		twin, tc := setupTwin(t, Config{Quirks: Quirks{IgnoreDeletes: true}})
		c := twin.Store().AddCategory(Category{Name: "kept"})
		status, _ := tc.do("DELETE", "/category/"+c.ID, nil)
		assert.Equal(t, 200, status)
		_, ok := twin.Store().GetCategory(c.ID)
		assert.True(t, ok)
	})

	t.Run("ignore updates", func(t *testing.T) {
		twin, tc := setupTwin(t, Config{Quirks: Quirks{IgnoreUpdates: true}})
		c := twin.Store().AddCategory(Category{Name: "same"})
		var updated Category
		status := tc.doJSON("PUT", "/category/"+c.ID, map[string]string{"name": "different"}, &updated)
		assert.Equal(t, 200, status)
		assert.Equal(t, "same", updated.Name)
	})

	t.Run("created status", func(t *testing.T) {
		_, tc := setupTwin(t, Config{Quirks: Quirks{CreatedStatus: 201}})
		status, _ := tc.do("POST", "/category", map[string]string{"name": "x"})
		assert.Equal(t, 201, status)
	})

	t.Run("response delay", func(t *testing.T) {
		_, tc := setupTwin(t, Config{Quirks: Quirks{ResponseDelay: 20 * time.Millisecond}})
		start := time.Now()
		tc.do("GET", "/category", nil)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("clobber unmentioned fields", func(t *testing.T) {
		twin, tc := setupTwin(t, Config{Quirks: Quirks{ClobberUnmentionedFields: true}})
		cat := twin.Store().AddCategory(Category{Name: "Beaches"})
		d := twin.Store().AddDestination(Destination{Name: "Old", Location: "Somewhere", CategoryID: cat.ID})
		var updated destinationView
		tc.doJSON("PUT", "/destination/"+d.ID, map[string]any{"name": "New"}, &updated)
		assert.Equal(t, "Somewhere (changed)", updated.Location)
		tc.doJSON("PUT", "/destination/"+d.ID, map[string]any{"location": "Elsewhere"}, &updated)
		assert.Equal(t, "Elsewhere", updated.Location)
	})

	t.Run("unstable reads", func(t *testing.T) {
		twin, tc := setupTwin(t, Config{Quirks: Quirks{UnstableReads: true}})
		c := twin.Store().AddCategory(Category{Name: "Beaches"})
		var first, second map[string]any
		tc.doJSON("GET", "/category/"+c.ID, nil, &first)
		tc.doJSON("GET", "/category/"+c.ID, nil, &second)
		assert.Equal(t, "Beaches", first["name"])
		assert.NotEqual(t, first["readCount"], second["readCount"])
	})

	t.Run("wrong embedded category", func(t *testing.T) {
		twin, tc := setupTwin(t, Config{Quirks: Quirks{WrongEmbeddedCategory: true}})
		cat := twin.Store().AddCategory(Category{Name: "Beaches"})
		d := twin.Store().AddDestination(Destination{Name: "Somewhere", CategoryID: cat.ID})
		var fetched destinationView
		tc.doJSON("GET", "/destination/"+d.ID, nil, &fetched)
		require.NotNil(t, fetched.Category)
		assert.Equal(t, "Beaches", fetched.Category.Name)
		assert.NotEqual(t, cat.ID, fetched.Category.ID)
	})
}

func TestRequestsAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	_, tc := setupTwin(t, Config{Logger: zap.New(core)})

	tc.do("GET", "/category", nil)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/category", fields["path"])
	assert.Equal(t, int64(200), fields["status"])
}
