package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/csheth/promptasm/internal/config"
	"github.com/csheth/promptasm/internal/library"
)

func writeConfig(t *testing.T, dir, endpoint string, extra string) (string, string) {
	t.Helper()
	libPath := filepath.Join(dir, "library.json")
	body := fmt.Sprintf("[scrape]\nendpoint = %q\ndisable_cache = true\n\n[library]\npath = %q\n%s", endpoint, libPath, extra)
	cfgPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath, libPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func scrapeServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target := r.URL.Query().Get("url")
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(target, "broken") {
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "upstream exploded"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"markdown": "# " + target})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetchAddsPagesToLibrary(t *testing.T) {
	t.Parallel()

	server := scrapeServer(t)
	cfgPath, libPath := writeConfig(t, t.TempDir(), server.URL+"/api/scrape", "")

	out, err := execute(t, "fetch", "--config", cfgPath, "example.com/a", "https://docs.example.org/guide")
	if err != nil {
		t.Fatalf("fetch: %v\n%s", err, out)
	}
	if !strings.Contains(out, "added example.com-a.md") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	records, err := library.Load(libPath)
	if err != nil {
		t.Fatalf("load library: %v", err)
	}
	got := map[string]string{}
	for _, r := range records {
		if r.Source != library.SourceURL {
			t.Fatalf("record %s has source %q", r.FileName, r.Source)
		}
		got[r.FileName] = r.Content
	}
	want := map[string]string{
		"example.com-a.md":          "# https://www.example.com/a",
		"docs.example.org-guide.md": "# https://docs.example.org/guide",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("library mismatch (-want +got):\n%s", diff)
	}

	out, err = execute(t, "fetch", "--config", cfgPath, "example.com/a")
	if err == nil || !strings.Contains(out, "skip example.com/a") {
		t.Fatalf("duplicate fetch should be skipped, err=%v out=%s", err, out)
	}
}

func TestFetchFailureLeavesLibraryUntouched(t *testing.T) {
	t.Parallel()

	server := scrapeServer(t)
	cfgPath, libPath := writeConfig(t, t.TempDir(), server.URL+"/api/scrape", "")

	out, err := execute(t, "fetch", "--config", cfgPath, "broken.example.com")
	if err == nil {
		t.Fatal("expected failure")
	}
	if !strings.Contains(out, "upstream exploded") {
		t.Fatalf("error should carry the service message:\n%s", out)
	}
	if _, err := os.Stat(libPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("library should not be written, stat err=%v", err)
	}
}

func TestFetchFailureStoresPlaceholderWhenEnabled(t *testing.T) {
	t.Parallel()

	server := scrapeServer(t)
	cfgPath, libPath := writeConfig(t, t.TempDir(), server.URL+"/api/scrape", "\n[fetch]\nplaceholder_on_error = true\n")

	if _, err := execute(t, "fetch", "--config", cfgPath, "broken.example.com"); err == nil {
		t.Fatal("a placeholder still counts as a failure")
	}
	records, err := library.Load(libPath)
	if err != nil || len(records) != 1 {
		t.Fatalf("expected one placeholder record, got %v (%v)", records, err)
	}
	if !strings.Contains(records[0].Content, "Failed to fetch content") {
		t.Fatalf("unexpected placeholder:\n%s", records[0].Content)
	}
}

func TestLibraryListAndRemove(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath, libPath := writeConfig(t, dir, "http://localhost:5173/api/scrape", "")
	store := library.NewStore()
	store.AddFiles([]library.Entry{
		{FileName: "notes.md", Content: "alpha", Source: library.SourceUpload},
		{FileName: "spec.txt", Content: "beta", Source: library.SourceUpload},
	})
	if err := library.Save(libPath, store.Records()); err != nil {
		t.Fatalf("seed library: %v", err)
	}

	out, err := execute(t, "library", "list", "--config", cfgPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"NAME", "notes.md", "spec.txt"} {
		if !strings.Contains(out, want) {
			t.Fatalf("list output missing %q:\n%s", want, out)
		}
	}

	if out, err := execute(t, "library", "rm", "--config", cfgPath, "notes.md"); err != nil || !strings.Contains(out, "removed notes.md") {
		t.Fatalf("rm: %v\n%s", err, out)
	}
	records, err := library.Load(libPath)
	if err != nil || len(records) != 1 || records[0].FileName != "spec.txt" {
		t.Fatalf("unexpected library after rm: %+v (%v)", records, err)
	}

	_, err = execute(t, "library", "rm", "--config", cfgPath, "missing.md")
	if !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLibraryFlagOverridesConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath, _ := writeConfig(t, dir, "http://localhost:5173/api/scrape", "")
	other := filepath.Join(dir, "other.json")
	if err := library.Save(other, []library.FileRecord{{ID: "abc", FileName: "other.md", Content: "x"}}); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "library", "list", "--config", cfgPath, "--library", other)
	if err != nil || !strings.Contains(out, "other.md") {
		t.Fatalf("list with --library: %v\n%s", err, out)
	}
}

func TestConfigInit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if out, err := execute(t, "config", "init", "--config", path); err != nil || !strings.Contains(out, "wrote") {
		t.Fatalf("init: %v\n%s", err, out)
	}
	if _, err := execute(t, "config", "init", "--config", path); err == nil {
		t.Fatal("second init without --force should fail")
	}
	if _, err := execute(t, "config", "init", "--config", path, "--force"); err != nil {
		t.Fatalf("forced init: %v", err)
	}
	if _, err := config.Load(path); err != nil {
		t.Fatalf("written config should load: %v", err)
	}
}

func TestInvalidEndpointFlagRejected(t *testing.T) {
	t.Parallel()

	cfgPath, _ := writeConfig(t, t.TempDir(), "http://localhost:5173/api/scrape", "")
	if _, err := execute(t, "fetch", "--config", cfgPath, "--scrape-endpoint", "not-a-url", "example.com"); err == nil {
		t.Fatal("relative endpoint should be rejected")
	}
}
