package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario 描述一段脚本化的对话及每轮的断言。
type Scenario struct {
	Name      string        `yaml:"name"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	Threshold *float64      `yaml:"threshold,omitempty"`
	Turns     []Turn        `yaml:"turns"`
}

// Turn is one user message and the checks applied to the bot's reply.
type Turn struct {
	Say         string   `yaml:"say"`
	Contains    []string `yaml:"contains,omitempty"`
	ForbidEmpty bool     `yaml:"forbid_empty,omitempty"`
	SimilarTo   string   `yaml:"similar_to,omitempty"`
	Threshold   *float64 `yaml:"threshold,omitempty"`
}

// Load reads and validates a scenario file.
func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario %s: %w", path, err)
	}

	sc, err := Parse(data)
	if err != nil {
		return Scenario{}, fmt.Errorf("scenario %s: %w", path, err)
	}
	return sc, nil
}

// Parse 解析 YAML，未知字段视为错误。
func Parse(data []byte) (Scenario, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var sc Scenario
	if err := decoder.Decode(&sc); err != nil {
		return Scenario{}, fmt.Errorf("decode: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}

// Validate checks required fields and value ranges.
func (s Scenario) Validate() error {
	var errs []error
	if s.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if s.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout %s must not be negative", s.Timeout))
	}
	if err := validThreshold(s.Threshold); err != nil {
		errs = append(errs, err)
	}
	if len(s.Turns) == 0 {
		errs = append(errs, errors.New("at least one turn is required"))
	}
	for i, turn := range s.Turns {
		if turn.Say == "" {
			errs = append(errs, fmt.Errorf("turn %d: say is required", i+1))
		}
		if err := validThreshold(turn.Threshold); err != nil {
			errs = append(errs, fmt.Errorf("turn %d: %w", i+1, err))
		}
	}
	return errors.Join(errs...)
}

func validThreshold(v *float64) error {
	if v != nil && (*v < 0 || *v > 1) {
		return fmt.Errorf("threshold %v must be within [0, 1]", *v)
	}
	return nil
}
