package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"relexer/internal/rules"
)

//go:embed sample_config.toml
var sampleConfig string

// Lexer tunes lexing sessions.
type Lexer struct {
	// AggregateUntil is the number of decoded bytes buffered before a
	// mid-stream scan pass. It must exceed the longest expected token.
	AggregateUntil int    `toml:"aggregate_until"`
	Encoding       string `toml:"encoding"`
	ReadSize       int    `toml:"read_size"`
	// Jobs bounds how many inputs are lexed concurrently.
	Jobs int `toml:"jobs"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Output selects where matched tokens go.
type Output struct {
	// Format is one of "auto", "table" or "jsonl". "auto" picks a table on a
	// terminal and JSON lines otherwise.
	Format string `toml:"format"`
	// Path receives token output instead of stdout when set.
	Path string `toml:"path"`
	// Database, when set, also records every session and token in SQLite.
	Database string `toml:"database"`
}

// Rule declares one token class.
type Rule struct {
	Name    string `toml:"name"`
	Pattern string `toml:"pattern"`
	// Skip drops matching tokens instead of emitting them.
	Skip bool `toml:"skip"`
}

// Config encapsulates all configuration values for relex.
type Config struct {
	Lexer   Lexer   `toml:"lexer"`
	Logging Logging `toml:"logging"`
	Output  Output  `toml:"output"`
	Rules   []Rule  `toml:"rules"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. It returns the
// config, the resolved path and whether a file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, err
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// LoadRules reads only the [[rules]] tables from path.
func LoadRules(path string) ([]Rule, error) {
	expanded, err := expandPath(path)
	if err != nil {
		return nil, err
	}
	var file struct {
		Rules []Rule `toml:"rules"`
	}
	if err := decodeFile(expanded, &file); err != nil {
		return nil, err
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("rules file %s declares no rules", expanded)
	}
	for i := range file.Rules {
		normalizeRule(&file.Rules[i])
	}
	return file.Rules, nil
}

func decodeFile(path string, v any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("parse config %s: %s", path, strict.String())
		}
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("relex.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// Sample returns the annotated sample configuration.
func Sample() string { return sampleConfig }

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// RuleSet turns the declared rules into a rules.Set. emit supplies the action
// for every rule that is not marked skip; skipped rules discard their tokens.
func (c *Config) RuleSet(emit func(index int, rule Rule) rules.Action) rules.Set {
	set := make(rules.Set, 0, len(c.Rules))
	for i, rule := range c.Rules {
		action := rules.Action(rules.Discard)
		if !rule.Skip && emit != nil {
			action = emit(i, rule)
		}
		set = append(set, rules.Rule{Name: rule.Name, Pattern: rule.Pattern, Action: action})
	}
	return set
}
