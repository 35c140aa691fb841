package devserver

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Difficulty levels a question can carry.
const (
	Beginner     = "beginner"
	Intermediate = "intermediate"
	Advanced     = "advanced"
)

//go:embed seed.yaml
var seedYAML []byte

// SeedQuestion is one practice question attached to a leaf concept.
type SeedQuestion struct {
	ID          string   `yaml:"id"`
	Difficulty  string   `yaml:"difficulty"`
	Content     string   `yaml:"content"`
	Options     []string `yaml:"options"`
	Answer      string   `yaml:"answer"`
	Explanation string   `yaml:"explanation"`
}

// KnowledgeNode is a topic or concept in a knowledge base. Nodes without
// children are leaves and carry questions.
type KnowledgeNode struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Children    []*KnowledgeNode `yaml:"children"`
	Questions   []SeedQuestion   `yaml:"questions"`

	ParentID string `yaml:"-"`
	Path     string `yaml:"-"`
}

// IsLeaf reports whether n is a concept that questions are served from.
func (n *KnowledgeNode) IsLeaf() bool { return len(n.Children) == 0 }

// QuestionsAt returns the questions of n at difficulty, in seed order.
func (n *KnowledgeNode) QuestionsAt(difficulty string) []SeedQuestion {
	var out []SeedQuestion
	for _, q := range n.Questions {
		if q.Difficulty == difficulty {
			out = append(out, q)
		}
	}
	return out
}

// KnowledgeBase is the concept tree of one topic.
type KnowledgeBase struct {
	Topic string
	Root  *KnowledgeNode
	nodes map[string]*KnowledgeNode
}

// Node looks up a node by ID.
func (kb *KnowledgeBase) Node(id string) (*KnowledgeNode, bool) {
	n, ok := kb.nodes[id]
	return n, ok
}

type seedFile struct {
	Topics []struct {
		Name string         `yaml:"name"`
		Root *KnowledgeNode `yaml:"root"`
	} `yaml:"topics"`
}

// LoadSeed parses knowledge bases from YAML. A nil or empty input loads
// the embedded seed.
func LoadSeed(data []byte) (map[string]*KnowledgeBase, error) {
	if len(data) == 0 {
		data = seedYAML
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	kbs := make(map[string]*KnowledgeBase, len(f.Topics))
	for _, t := range f.Topics {
		if t.Name == "" || t.Root == nil {
			return nil, fmt.Errorf("seed topic %q has no root", t.Name)
		}
		kb, err := newKnowledgeBase(t.Name, t.Root)
		if err != nil {
			return nil, err
		}
		kbs[t.Name] = kb
	}
	return kbs, nil
}

// newKnowledgeBase indexes root and fills in parent links and breadcrumb
// paths.
func newKnowledgeBase(topic string, root *KnowledgeNode) (*KnowledgeBase, error) {
	kb := &KnowledgeBase{Topic: topic, Root: root, nodes: make(map[string]*KnowledgeNode)}

	var walk func(n *KnowledgeNode, parent *KnowledgeNode) error
	walk = func(n *KnowledgeNode, parent *KnowledgeNode) error {
		if n.ID == "" {
			return fmt.Errorf("topic %q: node %q has no id", topic, n.Name)
		}
		if _, dup := kb.nodes[n.ID]; dup {
			return fmt.Errorf("topic %q: duplicate node id %q", topic, n.ID)
		}
		kb.nodes[n.ID] = n
		n.Path = n.Name
		if parent != nil {
			n.ParentID = parent.ID
			n.Path = parent.Path + " > " + n.Name
		}
		for _, c := range n.Children {
			if err := walk(c, n); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root, nil); err != nil {
		return nil, err
	}
	return kb, nil
}

// stubKnowledgeBase builds the single-concept knowledge base created by
// ingesting a topic the server has no material for.
func stubKnowledgeBase(topic string) *KnowledgeBase {
	slug := strings.ToLower(strings.Join(strings.Fields(topic), "_"))
	leafID := slug + ".intro"
	question := func(difficulty string) SeedQuestion {
		return SeedQuestion{
			ID:          leafID + "." + difficulty,
			Difficulty:  difficulty,
			Content:     fmt.Sprintf("Which topic does this knowledge base cover? (%s)", difficulty),
			Options:     []string{topic, "Something else", "Nothing at all"},
			Answer:      "A",
			Explanation: fmt.Sprintf("It was ingested as %q.", topic),
		}
	}

	root := &KnowledgeNode{
		ID:          slug,
		Name:        topic,
		Description: "Introduction to " + topic + ".",
		Children: []*KnowledgeNode{{
			ID:          leafID,
			Name:        "Introduction",
			Description: "Introduction to " + topic + ".",
			Questions:   []SeedQuestion{question(Beginner), question(Intermediate), question(Advanced)},
		}},
	}
	kb, _ := newKnowledgeBase(topic, root)
	return kb
}
