package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pelletier/go-toml/v2"

	"relexer/internal/config"
	"relexer/internal/emit"
	"relexer/internal/testsupport"
	"relexer/internal/tokenstore"
)

func writeTestConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()
	cfg.Logging.Level = "error"
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "relex.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func decodeTokens(t *testing.T, out string) []emit.Token {
	t.Helper()
	var tokens []emit.Token
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var tok emit.Token
		if err := json.Unmarshal([]byte(line), &tok); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func texts(tokens []emit.Token) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tok.Text)
	}
	return out
}

func TestLexFileAsJSONLines(t *testing.T) {
	cfgPath := writeTestConfig(t, testsupport.NewConfig(t))
	input := testsupport.WriteFile(t, t.TempDir(), "in.txt", "alpha 12 beta\n7")

	out, err := runCLI(t, []string{"lex", input}, cfgPath, "")
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	tokens := decodeTokens(t, out)
	if diff := cmp.Diff([]string{"alpha", "12", "beta", "7"}, texts(tokens)); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
	for i, tok := range tokens {
		if tok.Seq != i || tok.Input != input || tok.Session == "" {
			t.Fatalf("token %d carries unexpected metadata: %+v", i, tok)
		}
	}
	if tokens[1].RuleName != "number" || tokens[1].Offset != 6 {
		t.Fatalf("unexpected second token: %+v", tokens[1])
	}
}

func TestLexReadsStdin(t *testing.T) {
	cfgPath := writeTestConfig(t, testsupport.NewConfig(t))

	out, err := runCLI(t, []string{"lex"}, cfgPath, "one two")
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	tokens := decodeTokens(t, out)
	if diff := cmp.Diff([]string{"one", "two"}, texts(tokens)); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
	if tokens[0].Input != stdinName {
		t.Fatalf("expected stdin input name, got %q", tokens[0].Input)
	}
}

func TestLexRulesFlagOverridesConfig(t *testing.T) {
	cfgPath := writeTestConfig(t, testsupport.NewConfig(t))
	dir := t.TempDir()
	rulesPath := testsupport.WriteFile(t, dir, "rules.toml", `
[[rules]]
name = "pair"
pattern = '[a-z]{2}'

[[rules]]
name = "space"
pattern = ' '
skip = true
`)
	input := testsupport.WriteFile(t, dir, "in.txt", "abcd ef")

	out, err := runCLI(t, []string{"lex", "--rules", rulesPath, input}, cfgPath, "")
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	if diff := cmp.Diff([]string{"ab", "cd", "ef"}, texts(decodeTokens(t, out))); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestLexTableFormatToOutputFile(t *testing.T) {
	cfgPath := writeTestConfig(t, testsupport.NewConfig(t))
	dir := t.TempDir()
	input := testsupport.WriteFile(t, dir, "in.txt", "hello 42")
	outPath := filepath.Join(dir, "out", "tokens.txt")

	stdout, err := runCLI(t, []string{"lex", "--format", "table", "--output", outPath, input}, cfgPath, "")
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	if stdout != "" {
		t.Fatalf("expected nothing on stdout, got %q", stdout)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	for _, want := range []string{"hello", "42", "number", "Offset"} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("table missing %q:\n%s", want, data)
		}
	}
}

func TestLexRecordsSessionsInDatabase(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDatabase())
	cfgPath := writeTestConfig(t, cfg)
	dir := t.TempDir()
	good := testsupport.WriteFile(t, dir, "good.txt", "a 1 b")
	bad := testsupport.WriteFile(t, dir, "bad.txt", "a ? b")

	out, err := runCLI(t, []string{"lex", "--jobs", "2", good, bad}, cfgPath, "")
	if err == nil || !strings.Contains(err.Error(), "1 of 2 inputs failed") {
		t.Fatalf("expected one failed input, got %v", err)
	}

	sessions := map[string]string{}
	for _, tok := range decodeTokens(t, out) {
		sessions[tok.Input] = tok.Session
	}
	if sessions[good] == "" || sessions[bad] == "" {
		t.Fatalf("expected tokens from both inputs, got %v", sessions)
	}

	store, err := tokenstore.Open(cfg.Output.Database)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	okSession, err := store.Session(ctx, sessions[good])
	if err != nil {
		t.Fatalf("good session: %v", err)
	}
	if okSession.Status != tokenstore.StatusComplete || okSession.TokenCount != 3 {
		t.Fatalf("unexpected good session: %+v", okSession)
	}
	stored, err := store.Tokens(ctx, sessions[good])
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	if len(stored) != 3 || stored[1].Text != "1" || stored[1].Offset != 2 {
		t.Fatalf("unexpected stored tokens: %+v", stored)
	}

	failed, err := store.Session(ctx, sessions[bad])
	if err != nil {
		t.Fatalf("bad session: %v", err)
	}
	if failed.Status != tokenstore.StatusFailed || failed.ErrorKind != "no-match-at-position" {
		t.Fatalf("unexpected failed session: %+v", failed)
	}
}

type failingSink struct {
	failAt int
	got    []emit.Token
}

func (s *failingSink) Emit(_ context.Context, tok emit.Token) error {
	if len(s.got) == s.failAt {
		return errors.New("sink full")
	}
	s.got = append(s.got, tok)
	return nil
}

func (s *failingSink) Flush() error { return nil }

func TestTokenActionCountsOnlyAcceptedTokens(t *testing.T) {
	sink := &failingSink{failAt: 2}
	run := &inputRun{name: "in.txt"}
	ctx := context.WithValue(context.Background(), runKey{}, run)
	action := tokenAction(sink, 0, "word")

	for i, text := range []string{"a", "b"} {
		if err := action(ctx, text, i*2); err != nil {
			t.Fatalf("emit %q: %v", text, err)
		}
	}
	if err := action(ctx, "c", 4); err == nil {
		t.Fatal("expected sink error")
	}
	if run.seq != len(sink.got) {
		t.Fatalf("seq %d does not match %d stored tokens", run.seq, len(sink.got))
	}
	if sink.got[1].Seq != 1 || sink.got[1].Input != "in.txt" || sink.got[1].RuleName != "word" {
		t.Fatalf("unexpected token: %+v", sink.got[1])
	}
}

func TestLexWithoutRules(t *testing.T) {
	cfgPath := writeTestConfig(t, testsupport.NewConfig(t, testsupport.WithRules()))
	_, err := runCLI(t, []string{"lex"}, cfgPath, "x")
	if err == nil || !strings.Contains(err.Error(), "no rules configured") {
		t.Fatalf("expected missing rules error, got %v", err)
	}
}

func TestLexRejectsInvalidFlag(t *testing.T) {
	cfgPath := writeTestConfig(t, testsupport.NewConfig(t))
	_, err := runCLI(t, []string{"lex", "--format", "xml"}, cfgPath, "x")
	if err == nil || !strings.Contains(err.Error(), "output.format") {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestRulesCheckAndList(t *testing.T) {
	cfgPath := writeTestConfig(t, testsupport.NewConfig(t))

	out, err := runCLI(t, []string{"rules", "check"}, cfgPath, "")
	if err != nil {
		t.Fatalf("rules check: %v", err)
	}
	if !strings.Contains(out, "Rules valid: 3") || !strings.Contains(out, `Pattern: (?:([A-Za-z]+)|([0-9]+)|(\s+))`) {
		t.Fatalf("unexpected check output: %q", out)
	}

	out, err = runCLI(t, []string{"rules", "list", "--json"}, cfgPath, "")
	if err != nil {
		t.Fatalf("rules list: %v", err)
	}
	var views []ruleView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("decode rules list: %v", err)
	}
	if len(views) != 3 || views[2].Name != "space" || !views[2].Skip {
		t.Fatalf("unexpected rules: %+v", views)
	}

	out, err = runCLI(t, []string{"rules", "list"}, cfgPath, "")
	if err != nil {
		t.Fatalf("rules list table: %v", err)
	}
	if !strings.Contains(out, "word") || !strings.Contains(out, "yes") {
		t.Fatalf("unexpected rules table: %q", out)
	}
}

func TestRulesCheckReportsCaptureGroup(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithRules(config.Rule{Name: "bad", Pattern: "a(b)"}))
	cfgPath := writeTestConfig(t, cfg)

	_, err := runCLI(t, []string{"rules", "check"}, cfgPath, "")
	if err == nil || !strings.Contains(err.Error(), "capturing") {
		t.Fatalf("expected capture group error, got %v", err)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "relex.toml")

	out, err := runCLI(t, []string{"config", "init", "--path", target}, "", "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected init output: %q", out)
	}
	if _, err := runCLI(t, []string{"config", "init", "--path", target}, "", ""); err == nil || !strings.Contains(err.Error(), "--overwrite") {
		t.Fatalf("expected init to refuse overwriting, got %v", err)
	}
	if _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, "", ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, err = runCLI(t, []string{"config", "validate"}, target, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "Rules: 5") || !strings.Contains(out, "Configuration valid") {
		t.Fatalf("unexpected validate output: %q", out)
	}
}

func TestConfigInitStdout(t *testing.T) {
	out, err := runCLI(t, []string{"config", "init", "--stdout"}, "", "")
	if err != nil {
		t.Fatalf("config init --stdout: %v", err)
	}
	if out != config.Sample() {
		t.Fatalf("unexpected sample output: %q", out)
	}
}
