// Package config loads glance configuration files.
//
// A configuration file is a YAML mapping from entry key to entry. The
// reserved "defaults" key supplies values for every entry that does not
// set them itself.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spiffcs/glance/internal/constants"
	"github.com/spiffcs/glance/internal/model"
	"gopkg.in/yaml.v3"
)

// DefaultsKey is the reserved key holding entry defaults.
const DefaultsKey = "defaults"

// AssigneeOwner assigns a matched issue to its author.
const AssigneeOwner = "owner"

var (
	// ErrInvalidEntry is wrapped by every ValidationError.
	ErrInvalidEntry = errors.New("invalid configuration entry")

	// ErrNoToken is returned when no GitHub token source is set.
	ErrNoToken = errors.New("no GitHub token: use --token, defaults.token, GITHUB_TOKEN or " + constants.TokenFileName)
)

// Config is a loaded configuration file.
type Config struct {
	// Path is the file the configuration was read from.
	Path string

	// Token is defaults.token, if set.
	Token string

	// Entries are the valid entries in declaration order.
	Entries []*Entry

	// Invalid holds one error per entry that failed validation.
	Invalid []*ValidationError
}

// Entry is one ranking report after defaults have been applied.
type Entry struct {
	Key           string       `yaml:"-" json:"key"`
	Repos         []string     `yaml:"repos,omitempty" json:"repos,omitempty"`
	Filter        string       `yaml:"filter" json:"filter"`
	Weights       []WeightRule `yaml:"weights,omitempty" json:"weights,omitempty"`
	InheritFrom   string       `yaml:"inherit_from,omitempty" json:"inherit_from,omitempty"`
	InheritFilter string       `yaml:"inherit_filter,omitempty" json:"inherit_filter,omitempty"`
	Header        string       `yaml:"header,omitempty" json:"header,omitempty"`
	Footer        string       `yaml:"footer,omitempty" json:"footer,omitempty"`
	Output        Output       `yaml:"output" json:"output"`
}

// WeightRule multiplies the weight of every issue matched by Filter.
type WeightRule struct {
	Filter   string  `yaml:"filter" json:"filter"`
	Weight   float64 `yaml:"weight" json:"weight"`
	Assignee string  `yaml:"assignee,omitempty" json:"assignee,omitempty"`
	Suffix   string  `yaml:"suffix,omitempty" json:"suffix,omitempty"`
}

// Output is where an entry's report is published.
type Output struct {
	Repo   string `yaml:"repo" json:"repo"`
	Path   string `yaml:"path" json:"path"`
	Branch string `yaml:"branch,omitempty" json:"branch,omitempty"`
}

// IsInheriting reports whether the entry reuses another entry's ranking.
func (e *Entry) IsInheriting() bool {
	return e.InheritFrom != ""
}

// RepoList returns the parsed source repositories.
func (e *Entry) RepoList() []model.Repo {
	repos := make([]model.Repo, 0, len(e.Repos))
	for _, r := range e.Repos {
		if repo, err := model.ParseRepo(r); err == nil {
			repos = append(repos, repo)
		}
	}
	return repos
}

// OutputRepo returns the parsed output repository.
func (e *Entry) OutputRepo() model.Repo {
	repo, _ := model.ParseRepo(e.Output.Repo)
	return repo
}

// ValidationError reports why one entry cannot be used.
type ValidationError struct {
	Key string
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("entry %q: %s", e.Key, strings.ReplaceAll(e.Err.Error(), "\n", "; "))
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is makes every ValidationError match ErrInvalidEntry.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidEntry
}

// Load reads and validates the configuration file at path. A missing
// file or a YAML syntax error is returned as an error; invalid entries
// are collected in Config.Invalid.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes configuration data. Entry order follows the document.
func Parse(data []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if len(doc.Content) == 0 {
		return cfg, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: top level must be a mapping of entries", root.Line)
	}

	defaults := &rawEntry{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != DefaultsKey {
			continue
		}
		if err := root.Content[i+1].Decode(defaults); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", DefaultsKey, err)
		}
		cfg.Token = strings.TrimSpace(defaults.Token)
	}

	declared := make(map[string]bool)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		if key == DefaultsKey {
			continue
		}

		entry, err := decodeEntry(key, root.Content[i+1], defaults, declared)
		declared[key] = true
		if err != nil {
			cfg.Invalid = append(cfg.Invalid, &ValidationError{Key: key, Err: err})
			continue
		}
		cfg.Entries = append(cfg.Entries, entry)
	}

	return cfg, nil
}

func decodeEntry(key string, node *yaml.Node, defaults *rawEntry, declared map[string]bool) (*Entry, error) {
	if declared[key] {
		return nil, errors.New("duplicate entry key")
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: entry must be a mapping", node.Line)
	}

	var local rawEntry
	if err := node.Decode(&local); err != nil {
		return nil, err
	}
	if local.Token != "" {
		return nil, errors.New("token is only allowed under defaults")
	}

	entry := mergeEntry(defaults, &local).build(key)
	if err := entry.validate(declared); err != nil {
		return nil, err
	}
	return entry, nil
}

// Entry returns the entry with key, or nil.
func (c *Config) Entry(key string) *Entry {
	for _, e := range c.Entries {
		if e.Key == key {
			return e
		}
	}
	return nil
}

// Select returns a Config holding the named entries together with every
// entry they inherit from, in declaration order. Invalid entries on those
// chains are kept in Invalid.
func (c *Config) Select(keys []string) (*Config, error) {
	invalid := make(map[string]*ValidationError)
	for _, v := range c.Invalid {
		invalid[v.Key] = v
	}

	need := make(map[string]bool)
	for _, key := range keys {
		for key != "" && !need[key] {
			need[key] = true
			if e := c.Entry(key); e != nil {
				key = e.InheritFrom
				continue
			}
			if _, ok := invalid[key]; !ok {
				return nil, fmt.Errorf("unknown entry %q", key)
			}
			key = ""
		}
	}

	sub := &Config{Path: c.Path, Token: c.Token}
	for _, e := range c.Entries {
		if need[e.Key] {
			sub.Entries = append(sub.Entries, e)
		}
	}
	for _, v := range c.Invalid {
		if need[v.Key] {
			sub.Invalid = append(sub.Invalid, v)
		}
	}
	return sub, nil
}

// Keys returns the keys of every entry, valid or not.
func (c *Config) Keys() []string {
	keys := make([]string, 0, len(c.Entries)+len(c.Invalid))
	for _, e := range c.Entries {
		keys = append(keys, e.Key)
	}
	for _, v := range c.Invalid {
		keys = append(keys, v.Key)
	}
	return keys
}

// ResolveToken returns the first token found in flagToken,
// defaults.token, GITHUB_TOKEN and the token file beside the
// configuration file.
func (c *Config) ResolveToken(flagToken string) (string, error) {
	if t := strings.TrimSpace(flagToken); t != "" {
		return t, nil
	}
	if c.Token != "" {
		return c.Token, nil
	}
	if t := strings.TrimSpace(os.Getenv("GITHUB_TOKEN")); t != "" {
		return t, nil
	}

	data, err := os.ReadFile(filepath.Join(filepath.Dir(c.Path), constants.TokenFileName))
	if err == nil {
		if t := strings.TrimSpace(string(data)); t != "" {
			return t, nil
		}
	}
	return "", ErrNoToken
}

// AbsPath returns the absolute form of path.
func AbsPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
