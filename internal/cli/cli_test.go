package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/leafstorm/railgen/internal/config"
	rgerrors "github.com/leafstorm/railgen/pkg/errors"
	"github.com/leafstorm/railgen/pkg/observability"
	"github.com/leafstorm/railgen/pkg/render/nodes"
	"github.com/leafstorm/railgen/pkg/snapshot"
	"github.com/leafstorm/railgen/pkg/store"
)

// metroFixturePath is resolved at package init, before any test changes
// the working directory.
var metroFixturePath, metroFixtureErr = filepath.Abs(filepath.Join("..", "..", "pkg", "loader", "testdata", "metro.yml"))

// metroFixture returns the absolute path of the shared test document.
func metroFixture(t *testing.T) string {
	t.Helper()
	if metroFixtureErr != nil {
		t.Fatal(metroFixtureErr)
	}
	return metroFixturePath
}

// sandbox moves the test into an empty directory that also serves as the
// config and cache home.
func sandbox(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	for _, k := range []string{config.EnvConfig, config.EnvAddr, config.EnvRedisURL,
		config.EnvMongoURI, config.EnvCacheTTL, config.EnvStylesheet} {
		t.Setenv(k, "")
	}
	t.Cleanup(observability.Reset)
	return dir
}

// run executes the CLI with args and returns stdout and the log output.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	c := New(&out, &logs, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetErr(&logs)
	err := root.ExecuteContext(context.Background())
	return out.String(), logs.String(), err
}

func TestRenderCommand(t *testing.T) {
	dir := sandbox(t)
	data := metroFixture(t)

	out, _, err := run(t, "render", data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	page, err := os.ReadFile(filepath.Join(dir, "metro.html"))
	if err != nil {
		t.Fatalf("default output missing: %v", err)
	}
	for _, want := range []string{`href="rail-style.css"`, `id="line-1"`, `id="station-old-town"`} {
		if !bytes.Contains(page, []byte(want)) {
			t.Errorf("page lacks %s", want)
		}
	}
	if !strings.Contains(out, "Rendered") || !strings.Contains(out, "fresh") {
		t.Errorf("summary = %q", out)
	}

	out, _, err = run(t, "render", data)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "cached") {
		t.Errorf("second render summary = %q, want cached", out)
	}
}

func TestRenderCustomTemplate(t *testing.T) {
	dir := sandbox(t)
	tmpl := filepath.Join(dir, "names.html.tmpl")
	if err := os.WriteFile(tmpl, []byte(`<link href="{{.Stylesheet}}">{{range .Network.Stations}}{{.Name}};{{end}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := run(t, "render", metroFixture(t), tmpl, "--stylesheet", "/css/metro.css", "--no-cache"); err != nil {
		t.Fatalf("render: %v", err)
	}
	page, err := os.ReadFile(filepath.Join(dir, "names.html"))
	if err != nil {
		t.Fatalf("template-derived output missing: %v", err)
	}
	if got := string(page); got != `<link href="/css/metro.css">Central;Harbour;Old Town;` {
		t.Errorf("page = %q", got)
	}
}

func TestRenderErrors(t *testing.T) {
	dir := sandbox(t)
	tests := []struct {
		name string
		args []string
		code rgerrors.Code
	}{
		{"missing data", []string{"render", filepath.Join(dir, "absent.yml")}, rgerrors.ErrCodeFileNotFound},
		{"missing template", []string{"render", metroFixture(t), filepath.Join(dir, "absent.tmpl")}, rgerrors.ErrCodeFileNotFound},
		{"unknown extension", []string{"check", filepath.Join(dir, "metro.xml")}, rgerrors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			if !rgerrors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestMissingDataShowsUsage(t *testing.T) {
	sandbox(t)
	for _, name := range []string{"render", "dump", "check", "dot", "nodes", "export", "browse", "serve", "publish"} {
		t.Run(name, func(t *testing.T) {
			_, _, err := run(t, name)
			if !rgerrors.Is(err, rgerrors.ErrCodeInvalidInput) {
				t.Fatalf("error = %v, want INVALID_INPUT", err)
			}
			msg := err.Error()
			if !strings.Contains(msg, "missing DATA argument") ||
				!strings.Contains(msg, "Usage:") ||
				!strings.Contains(msg, "railgen "+name+" DATA") {
				t.Errorf("error lacks usage:\n%s", msg)
			}
		})
	}

	if _, _, err := run(t, "dump", metroFixture(t), "extra"); err == nil || rgerrors.Is(err, rgerrors.ErrCodeInvalidInput) {
		t.Errorf("surplus argument error = %v, want an arity error", err)
	}
}

func TestDumpCommand(t *testing.T) {
	sandbox(t)
	out, _, err := run(t, "dump", metroFixture(t))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "== Metro ==\n1 - Red (line-1)\n") {
		t.Errorf("dump starts %q", out[:min(len(out), 40)])
	}
	if !strings.Contains(out, "  (waypoint) (x = 60, ") {
		t.Errorf("dump lacks the waypoint:\n%s", out)
	}
}

func TestCheckCommand(t *testing.T) {
	sandbox(t)
	out, _, err := run(t, "check", metroFixture(t))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Metro", "is valid", "3 stations", "2 lines", "1 waypoint", "x bound [-500, 500]"} {
		if !strings.Contains(out, want) {
			t.Errorf("check output lacks %q:\n%s", want, out)
		}
	}
}

func TestDotCommand(t *testing.T) {
	sandbox(t)
	out, _, err := run(t, "dot", metroFixture(t))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, `digraph "Metro" {`) {
		t.Errorf("dot output starts %q", out[:min(len(out), 30)])
	}

	if _, _, err := run(t, "dot", metroFixture(t), "-f", "jpeg"); !rgerrors.Is(err, rgerrors.ErrCodeUnsupported) {
		t.Errorf("jpeg error = %v, want UNSUPPORTED", err)
	}
}

func TestNodesCommand(t *testing.T) {
	dir := sandbox(t)
	data := metroFixture(t)

	out, _, err := run(t, "nodes", data)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]nodes.Node
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("stdout is not JSON: %v", err)
	}
	if got := strings.Join(m["Central"].Destinations, ","); got != "Old Town,Harbour,Harbour" {
		t.Errorf("Central destinations = %s", got)
	}

	file := filepath.Join(dir, "nodes.js")
	out, _, err = run(t, "nodes", data, "-o", file, "--javascript", "--quiet")
	if err != nil {
		t.Fatal(err)
	}
	if out != "" {
		t.Errorf("--quiet still echoed %q", out)
	}
	js, _ := os.ReadFile(file)
	if !strings.HasPrefix(string(js), "stations = {") || !strings.HasSuffix(string(js), ";\n") {
		t.Errorf("javascript output = %q", js)
	}

	out, _, err = run(t, "nodes", data, "-o", filepath.Join(dir, "nodes.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"destinations"`) {
		t.Errorf("map not echoed without --quiet: %q", out)
	}

	out, _, err = run(t, "nodes", data, "--undirected")
	if err != nil {
		t.Fatal(err)
	}
	var undirected map[string]nodes.Node
	if err := json.Unmarshal([]byte(out), &undirected); err != nil {
		t.Fatalf("stdout is not JSON: %v", err)
	}
	if got := strings.Join(undirected["Harbour"].Destinations, ","); got != "Central,Central" {
		t.Errorf("undirected Harbour destinations = %s", got)
	}
	if got := strings.Join(m["Harbour"].Destinations, ","); got != "Central" {
		t.Errorf("directed Harbour destinations = %s", got)
	}
}

func TestExportCommand(t *testing.T) {
	dir := sandbox(t)
	data := metroFixture(t)

	out, _, err := run(t, "export", data, "-f", "geojson")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"FeatureCollection"`) {
		t.Errorf("geojson = %q", out[:min(len(out), 60)])
	}

	snapFile := filepath.Join(dir, "metro.snapshot.json")
	if _, _, err := run(t, "export", data, "-f", "json", "-o", snapFile); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(snapFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	snap, err := snapshot.Read(f)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Name != "Metro" || snap.Stations != 3 || snap.Lines != 2 {
		t.Errorf("snapshot = %+v", snap)
	}

	db := filepath.Join(dir, "metro.db")
	if _, _, err := run(t, "export", data, "-f", "sqlite", "-o", db); err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(db); err != nil || fi.Size() == 0 {
		t.Errorf("sqlite file = %v, %v", fi, err)
	}

	if _, _, err := run(t, "export", data, "-f", "sqlite"); !rgerrors.Is(err, rgerrors.ErrCodeInvalidInput) {
		t.Errorf("sqlite without -o error = %v", err)
	}
}

func TestRemoteSource(t *testing.T) {
	sandbox(t)
	doc, err := os.ReadFile(metroFixture(t))
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(doc)
	}))
	defer srv.Close()

	out, _, err := run(t, "check", srv.URL+"/maps/metro.yml?rev=2")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "is valid") {
		t.Errorf("check output = %q", out)
	}
}

func TestPublishCommand(t *testing.T) {
	sandbox(t)
	mem := store.NewMemory()
	var gotURI string
	orig := openMongo
	openMongo = func(_ context.Context, cfg store.MongoConfig) (store.Store, error) {
		gotURI = cfg.URI
		return mem, nil
	}
	t.Cleanup(func() { openMongo = orig })

	out, _, err := run(t, "publish", metroFixture(t), "--mongo-uri", "mongodb://db.example:27017")
	if err != nil {
		t.Fatal(err)
	}
	if gotURI != "mongodb://db.example:27017" {
		t.Errorf("store opened with %q", gotURI)
	}
	latest, err := mem.Latest(context.Background(), "Metro")
	if err != nil {
		t.Fatalf("nothing published: %v", err)
	}
	if !strings.Contains(out, latest.ID) {
		t.Errorf("publish output lacks id %s:\n%s", latest.ID, out)
	}

	out, _, err = run(t, "snapshots", "Metro")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, latest.ID) || !strings.Contains(out, "3 stations, 2 lines") {
		t.Errorf("snapshots output = %q", out)
	}
}

func TestConfigFlag(t *testing.T) {
	dir := sandbox(t)
	cfgPath := filepath.Join(dir, "railgen.toml")
	os.WriteFile(cfgPath, []byte("[render]\nstylesheet = \"/static/rail.css\"\n[cache]\ndir = \"artifacts\"\n"), 0o644)

	if _, _, err := run(t, "--config", cfgPath, "render", metroFixture(t)); err != nil {
		t.Fatal(err)
	}
	page, _ := os.ReadFile(filepath.Join(dir, "metro.html"))
	if !bytes.Contains(page, []byte(`href="/static/rail.css"`)) {
		t.Error("stylesheet from config not used")
	}

	out, _, err := run(t, "--config", cfgPath, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "artifacts" {
		t.Errorf("cache path = %q, want artifacts", out)
	}

	_, _, err = run(t, "--config", filepath.Join(dir, "missing.toml"), "check", metroFixture(t))
	if !rgerrors.Is(err, rgerrors.ErrCodeFileNotFound) {
		t.Errorf("missing config error = %v", err)
	}
}

func TestCompletionCommand(t *testing.T) {
	sandbox(t)
	out, _, err := run(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "railgen") {
		t.Error("bash completion does not mention railgen")
	}

	if _, _, err := run(t, "completion", "tcsh"); err == nil {
		t.Error("unknown shell accepted")
	}
}

func TestCompleteData(t *testing.T) {
	tests := []struct {
		name      string
		max       int
		args      []string
		want      []string
		directive cobra.ShellCompDirective
	}{
		{"document", 1, nil, []string{"yml", "yaml", "toml", "json"}, cobra.ShellCompDirectiveFilterFileExt},
		{"template", 2, []string{"metro.yml"}, templateExts, cobra.ShellCompDirectiveFilterFileExt},
		{"no more", 1, []string{"metro.yml"}, nil, cobra.ShellCompDirectiveNoFileComp},
		{"render full", 2, []string{"metro.yml", "map.html.tmpl"}, nil, cobra.ShellCompDirectiveNoFileComp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dir := completeData(tt.max)(nil, tt.args, "")
			if !slices.Equal(got, tt.want) || dir != tt.directive {
				t.Errorf("completeData(%d)(%v) = %v, %d; want %v, %d", tt.max, tt.args, got, dir, tt.want, tt.directive)
			}
		})
	}
}

func TestShellCompletesData(t *testing.T) {
	sandbox(t)
	out, _, err := run(t, cobra.ShellCompRequestCmd, "render", "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "yaml\n") || !strings.Contains(out, fmt.Sprintf(":%d\n", cobra.ShellCompDirectiveFilterFileExt)) {
		t.Errorf("render completions = %q", out)
	}
}

func TestVerboseLogging(t *testing.T) {
	sandbox(t)
	_, logs, err := run(t, "-v", "dump", metroFixture(t))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(logs, "loaded network") {
		t.Errorf("debug logs = %q", logs)
	}
}
