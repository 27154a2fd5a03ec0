package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"dim-editor/api"
	"dim-editor/session"
)

const testBOM = "\xef\xbb\xbf"

const testDimContent = testBOM + `"External"= 1000mm
D1@Sketch1@Part1.SLDPRT = 25.4mm
`

const testPresetContent = `Width, D1@Sketch1@Part1.SLDPRT, 10, 50, 0.5, 25.4
Ghost, D9@Sketch9@Gone.SLDPRT, 0, 10, 1, 5
`

type testEnv struct {
	srv        *httptest.Server
	mgr        *session.Manager
	dimPath    string
	presetPath string
}

// newTestServer spins up the API over a temp dimension/preset file pair,
// bound as the server defaults.
func newTestServer(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	dimPath := filepath.Join(dir, "room.txt")
	presetPath := filepath.Join(dir, "room_presets.txt")
	if err := os.WriteFile(dimPath, []byte(testDimContent), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(presetPath, []byte(testPresetContent), 0644); err != nil {
		t.Fatal(err)
	}

	mgr := session.NewManager()
	srv := httptest.NewServer(api.RegisterRoutes(mgr, zaptest.NewLogger(t), api.Defaults{
		DimensionFile: dimPath,
		PresetFile:    presetPath,
	}))
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, mgr: mgr, dimPath: dimPath, presetPath: presetPath}
}

// newBareServer spins up the API with no default files, for sessions fed
// over the text endpoints.
func newBareServer(t *testing.T) *testEnv {
	t.Helper()
	mgr := session.NewManager()
	srv := httptest.NewServer(api.RegisterRoutes(mgr, zaptest.NewLogger(t), api.Defaults{}))
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, mgr: mgr}
}

type sessionInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	State    string `json:"state"`
	Warnings []struct {
		Preset          string `json:"preset"`
		TargetDimension string `json:"target_dimension"`
	} `json:"warnings"`
}

func (e *testEnv) createSession(t *testing.T, name string) sessionInfo {
	t.Helper()
	resp := doJSON(t, http.MethodPost, e.srv.URL+"/api/sessions", `{"name":"`+name+`"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session: expected 201, got %d", resp.StatusCode)
	}
	var info sessionInfo
	decode(t, resp, &info)
	return info
}

func doJSON(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func doText(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "text/plain")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

type dimRecord struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

func (e *testEnv) getDimensions(t *testing.T, id string) []dimRecord {
	t.Helper()
	resp, err := http.Get(e.srv.URL + "/api/sessions/" + id + "/dimensions")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get dimensions: expected 200, got %d", resp.StatusCode)
	}
	var recs []dimRecord
	decode(t, resp, &recs)
	return recs
}

func (e *testEnv) dimensionValue(t *testing.T, id, name string) float64 {
	t.Helper()
	for _, r := range e.getDimensions(t, id) {
		if r.Name == name {
			return r.Value
		}
	}
	t.Fatalf("dimension %q not found", name)
	return 0
}
