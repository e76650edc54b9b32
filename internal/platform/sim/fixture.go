package sim

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/mj1618/dump-hierarchy/internal/model"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultFixture []byte

// Fixture describes a simulated device as a set of named screens.
type Fixture struct {
	Rotation int                      `yaml:"rotation"`
	Start    string                   `yaml:"start"`
	Screens  map[string][]FixtureNode `yaml:"screens"`
}

// FixtureNode is a node plus the behaviour the simulator gives it.
type FixtureNode struct {
	model.Attributes `yaml:",inline"`
	// Goto names the screen shown after the node is tapped.
	Goto string `yaml:"goto,omitempty"`
	// MaxLength truncates text set on the node; 0 means unlimited.
	MaxLength int           `yaml:"max-length,omitempty"`
	Children  []FixtureNode `yaml:"children,omitempty"`
}

// UnmarshalYAML decodes a fixture node with enabled=true unless the document says otherwise.
func (n *FixtureNode) UnmarshalYAML(value *yaml.Node) error {
	type rawNode FixtureNode
	raw := rawNode{Attributes: model.Attributes{Enabled: true}}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*n = FixtureNode(raw)
	return nil
}

// LoadFixture reads a fixture file. An empty path loads the built-in fixture.
func LoadFixture(path string) (*Fixture, error) {
	data := defaultFixture
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read fixture: %w", err)
		}
	}
	return ParseFixture(data)
}

// ParseFixture decodes and validates a fixture document.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if len(f.Screens) == 0 {
		return nil, fmt.Errorf("fixture defines no screens")
	}
	if f.Start == "" {
		if len(f.Screens) != 1 {
			return nil, fmt.Errorf("fixture has %d screens but no start screen", len(f.Screens))
		}
		for name := range f.Screens {
			f.Start = name
		}
	}
	if _, ok := f.Screens[f.Start]; !ok {
		return nil, fmt.Errorf("start screen %q not defined", f.Start)
	}
	for name, roots := range f.Screens {
		if err := checkGotos(f.Screens, roots); err != nil {
			return nil, fmt.Errorf("screen %q: %w", name, err)
		}
	}
	return &f, nil
}

func checkGotos(screens map[string][]FixtureNode, nodes []FixtureNode) error {
	for _, n := range nodes {
		if n.Goto != "" {
			if _, ok := screens[n.Goto]; !ok {
				return fmt.Errorf("goto references unknown screen %q", n.Goto)
			}
		}
		if err := checkGotos(screens, n.Children); err != nil {
			return err
		}
	}
	return nil
}

// behaviour holds the per-path simulator extras of one screen.
type behaviour struct {
	gotos  map[string]string
	limits map[string]int
}

// build converts fixture nodes into a fresh model tree, recording the
// simulator extras keyed by flatten path.
func build(nodes []FixtureNode) ([]model.Node, behaviour) {
	b := behaviour{gotos: map[string]string{}, limits: map[string]int{}}
	return buildNodes(nodes, "", b), b
}

func buildNodes(nodes []FixtureNode, prefix string, b behaviour) []model.Node {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]model.Node, len(nodes))
	for i, fn := range nodes {
		path := fmt.Sprintf("%s%d", prefix, i)
		if fn.Goto != "" {
			b.gotos[path] = fn.Goto
		}
		if fn.MaxLength > 0 {
			b.limits[path] = fn.MaxLength
		}
		out[i] = model.Node{
			Attributes: fn.Attributes,
			Index:      i,
			Children:   buildNodes(fn.Children, path+"/", b),
		}
	}
	return out
}
