// Package config loads auto-assign settings from a YAML file and action inputs.
//
// Settings are resolved in two layers: an optional YAML configuration file
// (default .github/auto_assign.yml, missing files are fine), then INPUT_*
// environment variables injected by the CI runner, which override file
// values. List inputs accept newline- or comma-delimited text.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file read when no path is configured.
const DefaultPath = ".github/auto_assign.yml"

// Config holds all recognized options.
type Config struct {
	Reviewers         []string `yaml:"reviewers"`
	Assignees         []string `yaml:"assignees"`
	IncludeLabels     []string `yaml:"includeLabels"`
	ExcludeLabels     []string `yaml:"excludeLabels"`
	TriggerEvents     []string `yaml:"triggerEvents"`
	TriggerActions    []string `yaml:"triggerActions"`
	NumberOfReviewers int      `yaml:"numberOfReviewers"`
	NumberOfAssignees int      `yaml:"numberOfAssignees"`
	AddReviewers      bool     `yaml:"addReviewers"`
	AddAssignees      bool     `yaml:"addAssignees"`
	RunOnDraft        bool     `yaml:"runOnDraft"`
}

// AssigneeCandidates returns the assignee pool, falling back to the
// reviewer pool when no assignees are configured.
func (c *Config) AssigneeCandidates() []string {
	if len(c.Assignees) > 0 {
		return c.Assignees
	}
	return c.Reviewers
}

// AssigneeCount returns the assignee sample count, falling back to
// numberOfReviewers when numberOfAssignees is zero or absent.
func (c *Config) AssigneeCount() int {
	if c.NumberOfAssignees > 0 {
		return c.NumberOfAssignees
	}
	return c.NumberOfReviewers
}

// Load resolves the configuration. An explicit path overrides the
// INPUT_CONFIGURATION-PATH input, which overrides DefaultPath.
func Load(path string) (*Config, error) {
	cfg := &Config{
		TriggerEvents:  []string{"pull_request", "pull_request_target", "issues"},
		TriggerActions: []string{"opened", "reopened", "ready_for_review"},
	}

	// The env name GitHub Actions generates for a configuration-path input.
	if path == "" {
		path = input("CONFIGURATION-PATH")
	}
	explicit := path != ""
	if path == "" {
		path = DefaultPath
	}

	if err := loadFile(cfg, path, explicit); err != nil {
		return nil, err
	}
	applyInputs(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile merges a YAML configuration file into cfg. A missing file is an
// error only when its path was explicitly configured.
func loadFile(cfg *Config, path string, explicit bool) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-supplied configuration
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse configuration file %s: %w", path, err)
	}
	return nil
}

// applyInputs overrides cfg fields from INPUT_* environment variables.
func applyInputs(cfg *Config) {
	setList(&cfg.Reviewers, "REVIEWERS")
	setList(&cfg.Assignees, "ASSIGNEES")
	setList(&cfg.IncludeLabels, "INCLUDELABELS")
	setList(&cfg.ExcludeLabels, "EXCLUDELABELS")
	setList(&cfg.TriggerEvents, "TRIGGEREVENTS")
	setList(&cfg.TriggerActions, "TRIGGERACTIONS")
	setInt(&cfg.NumberOfReviewers, "NUMBEROFREVIEWERS")
	setInt(&cfg.NumberOfAssignees, "NUMBEROFASSIGNEES")
	setBool(&cfg.AddReviewers, "ADDREVIEWERS")
	setBool(&cfg.AddAssignees, "ADDASSIGNEES")
	setBool(&cfg.RunOnDraft, "RUNONDRAFT")
}

// validate rejects configurations the dispatcher cannot act on.
func validate(cfg *Config) error {
	if cfg.NumberOfReviewers < 0 {
		return errors.New("numberOfReviewers must not be negative")
	}
	if cfg.NumberOfAssignees < 0 {
		return errors.New("numberOfAssignees must not be negative")
	}
	if cfg.AddReviewers && len(cfg.Reviewers) == 0 {
		return errors.New("addReviewers is enabled but no reviewers are configured")
	}
	if cfg.AddAssignees && len(cfg.AssigneeCandidates()) == 0 {
		return errors.New("addAssignees is enabled but no assignees or reviewers are configured")
	}
	return nil
}

// input returns the raw value of an action input, trimmed.
func input(name string) string {
	return strings.TrimSpace(os.Getenv("INPUT_" + name))
}

// ParseList splits newline- or comma-delimited text into trimmed,
// non-empty entries.
func ParseList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == ','
	})
	var items []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			items = append(items, f)
		}
	}
	return items
}

func setList(target *[]string, name string) {
	if raw := input(name); raw != "" {
		*target = ParseList(raw)
	}
}

func setInt(target *int, name string) {
	raw := input(name)
	if raw == "" {
		return
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		// Malformed numbers fall back to the file value or default.
		slog.Warn("Ignoring malformed integer input", "input", name, "value", raw)
		return
	}
	*target = n
}

func setBool(target *bool, name string) {
	raw := input(name)
	if raw == "" {
		return
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("Ignoring malformed boolean input", "input", name, "value", raw)
		return
	}
	*target = b
}
