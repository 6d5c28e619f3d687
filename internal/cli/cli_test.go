package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pagegraph/pkg/errors"
	"github.com/matzehuels/pagegraph/pkg/graph/graphtest"
	"github.com/matzehuels/pagegraph/pkg/query"
)

// run executes the root command with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(newSyncBuffer(), log.InfoLevel)
	root := c.RootCommand()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	base := []string{"--config", filepath.Join(t.TempDir(), "missing.toml"), "--no-cache", "--no-frames"}
	root.SetArgs(append(base, args...))
	err := root.Execute()
	return out.String(), err
}

func writeRecording(t *testing.T) string {
	t.Helper()
	doc := graphtest.New().
		Desc(true, "").
		Node("n1", "parser").
		HTML("n2", "div", true, 1).
		HTML("n3", "p", false, 2).
		Edge("e1", "n1", "n2", "create node", "sequence", "1").
		Edge("e2", "n2", "n3", "structure", "sequence", "2").
		String()
	path := filepath.Join(t.TempDir(), "page_graph.graphml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestQueryCommand(t *testing.T) {
	path := writeRecording(t)

	out, err := run(t, "query", path, "deleted-elements")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	want := "id,tag,node_id,deleted\nn2,div,1,true\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}

	out, err = run(t, "query", path, "html-elements", "--format", "json")
	if err != nil {
		t.Fatalf("query json: %v", err)
	}
	var rows []map[string]string
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	wantRows := []map[string]string{
		{"id": "n2", "tag": "div", "node_id": "1", "deleted": "true"},
		{"id": "n3", "tag": "p", "node_id": "2", "deleted": "false"},
	}
	if len(rows) != len(wantRows) {
		t.Fatalf("rows = %v, want %v", rows, wantRows)
	}
	for i := range wantRows {
		for k, v := range wantRows[i] {
			if rows[i][k] != v {
				t.Errorf("row %d %s = %q, want %q", i, k, rows[i][k], v)
			}
		}
	}
}

func TestQueryCommandErrors(t *testing.T) {
	path := writeRecording(t)

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"unknown query", []string{"query", path, "nope"}, errors.ErrCodeInvalidQuery},
		{"bad format", []string{"query", path, "scripts", "-f", "xml"}, errors.ErrCodeInvalidFormat},
		{"bad arg", []string{"query", path, "modified-elements", "--arg", "min"}, errors.ErrCodeInvalidInput},
		{"missing file", []string{"query", filepath.Join(t.TempDir(), "none.graphml"), "scripts"}, errors.ErrCodeFileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %v", err, tt.code)
			}
		})
	}
}

func TestQueriesCommand(t *testing.T) {
	out, err := run(t, "queries")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range query.Names() {
		if !strings.Contains(out, name) {
			t.Errorf("output missing %q", name)
		}
	}
}

func TestIdentifyCommand(t *testing.T) {
	path := writeRecording(t)

	out, err := run(t, "identify", path, "n2", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var node struct {
		ID   string `json:"id"`
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal([]byte(out), &node); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if node.ID != "n2" || node.Kind != "HTML element" {
		t.Errorf("identify = %+v", node)
	}

	if _, err := run(t, "identify", path, "n9"); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("error = %v, want NODE_NOT_FOUND", err)
	}
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		raw     []string
		want    query.Args
		wantErr bool
	}{
		{nil, nil, false},
		{[]string{"min=2"}, query.Args{"min": "2"}, false},
		{[]string{"a=1", "b=x=y"}, query.Args{"a": "1", "b": "x=y"}, false},
		{[]string{"a=1", "a=2"}, query.Args{"a": "2"}, false},
		{[]string{"novalue"}, nil, true},
		{[]string{"=1"}, nil, true},
	}
	for _, tt := range tests {
		got, err := parseArgs(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseArgs(%v) error = %v", tt.raw, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("parseArgs(%v) = %v, want %v", tt.raw, got, tt.want)
			continue
		}
		for k, v := range tt.want {
			if got[k] != v {
				t.Errorf("parseArgs(%v)[%s] = %q, want %q", tt.raw, k, got[k], v)
			}
		}
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, err := run(t, "completion", shell)
		if err != nil {
			t.Fatalf("completion %s: %v", shell, err)
		}
		if !strings.Contains(out, "pagegraph") {
			t.Errorf("completion %s: script does not mention pagegraph", shell)
		}
	}
	if _, err := run(t, "completion", "tcsh"); err == nil {
		t.Error("completion tcsh: want error")
	}
}

func TestStatsCommand(t *testing.T) {
	out, err := run(t, "stats", writeRecording(t), "--json")
	if err != nil {
		t.Fatal(err)
	}
	var s summary
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if s.Nodes != 3 || s.Edges != 2 || !s.IsRoot {
		t.Errorf("stats = %+v", s)
	}
	if s.NodeKinds["HTML element"] != 2 {
		t.Errorf("node kinds = %v", s.NodeKinds)
	}
}

func TestAdblockCommand(t *testing.T) {
	dir := t.TempDir()
	doc := graphtest.New().
		Desc(true, "").
		HTML("n1", "img", false, 1).
		Node("n2", "resource", "url", "https://example.com/logo.png").
		Node("n3", "resource", "url", "https://ads.tracker.net/a.png").
		Node("n4", "resource", "url", "https://cdn.tracker.net/allowed/b.png").
		Edge("e1", "n1", "n2", "request start", "request type", "Image", "status", "started", "request id", "1", "sequence", "1").
		Edge("e2", "n1", "n3", "request start", "request type", "Image", "status", "started", "request id", "2", "sequence", "2").
		Edge("e3", "n1", "n4", "request start", "request type", "Image", "status", "started", "request id", "3", "sequence", "3").
		String()
	path := filepath.Join(dir, "page_graph.graphml")
	rules := filepath.Join(dir, "list.txt")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(rules, []byte("! list\n||tracker.net^\n@@/allowed/\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ids := func(out string) []string {
		t.Helper()
		var nodes []struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal([]byte(out), &nodes); err != nil {
			t.Fatalf("decode %q: %v", out, err)
		}
		var got []string
		for _, n := range nodes {
			got = append(got, n.ID)
		}
		return got
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"inline rule", []string{"||tracker.net^$third-party"}, "n3,n4"},
		{"rules file", []string{"--rules-file", rules}, "n3"},
		{"exceptions", []string{"--rules-file", rules, "--exceptions"}, "n4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"adblock", path, "--json"}, tt.args...)...)
			if err != nil {
				t.Fatal(err)
			}
			if got := strings.Join(ids(out), ","); got != tt.want {
				t.Errorf("matches = %s, want %s", got, tt.want)
			}
		})
	}

	if _, err := run(t, "adblock", path); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("no rules: error = %v, want INVALID_INPUT", err)
	}
	if _, err := run(t, "adblock", path, "--rules-file", filepath.Join(dir, "nope.txt")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing rules file: error = %v, want FILE_NOT_FOUND", err)
	}
}
