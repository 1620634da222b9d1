package domain

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	UnknownValue  = "unknown"
	NoOutputValue = "no output"
)

type Check struct {
	Name       string
	Commands   []string
	Pattern    string
	Column     string
	FileSuffix string
	OKValues   []string
}

func DefaultPowerCheck() Check {
	return Check{
		Name:       "poe",
		Commands:   []string{"show system power status"},
		Pattern:    `System\sPower\sStatus:\s+(\w+)`,
		Column:     "Power Status",
		FileSuffix: "PoE_Check",
		OKValues:   []string{"Normal", "Redundant"},
	}
}

func (c Check) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("check name is required")
	}
	if len(c.Commands) == 0 {
		return fmt.Errorf("check %q: at least one command is required", c.Name)
	}
	if strings.TrimSpace(c.Column) == "" {
		return fmt.Errorf("check %q: column is required", c.Name)
	}
	if strings.TrimSpace(c.FileSuffix) == "" {
		return fmt.Errorf("check %q: file suffix is required", c.Name)
	}
	re, err := regexp.Compile(c.Pattern)
	if err != nil {
		return fmt.Errorf("check %q: compile pattern: %w", c.Name, err)
	}
	if re.NumSubexp() < 1 {
		return fmt.Errorf("check %q: pattern needs a capture group", c.Name)
	}

	return nil
}

type Extractor struct {
	re *regexp.Regexp
}

func NewExtractor(check Check) (*Extractor, error) {
	if err := check.Validate(); err != nil {
		return nil, err
	}

	return &Extractor{re: regexp.MustCompile(check.Pattern)}, nil
}

// Extract returns the first capture group, or UnknownValue when the pattern does not match.
func (e *Extractor) Extract(output string) (string, bool) {
	match := e.re.FindStringSubmatch(output)
	if len(match) < 2 {
		return UnknownValue, false
	}

	return match[1], true
}

type ReportRow struct {
	Device string
	Value  string
}

func ReportFileName(building string, check Check) string {
	return fmt.Sprintf("%s_%s.csv", building, check.FileSuffix)
}
