package values

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"gopkg.in/yaml.v3"
)

// Label store errors.
var (
	ErrInvalidLabels = errors.New("invalid label data")
	ErrEmptyName     = errors.New("user and label must not be empty")
)

// Format is the on-disk encoding of a label file.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFromPath picks the format from a file extension. Anything other
// than .yaml or .yml is JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

const usersKey = "users"

// LabelStore holds the labels a user has attached to other users.
//
// The document has one top-level "users" object mapping a username to its
// list of labels:
//
//	{"users": {"alice": ["friend"], "bob": ["mod", "helpful"]}}
//
// YAML files use the same shape. Key order is preserved on save.
type LabelStore struct {
	path   string
	format Format
	doc    []byte // always JSON
}

// NewLabelStore creates an empty store that saves to path.
func NewLabelStore(path string) *LabelStore {
	return &LabelStore{path: path, format: FormatFromPath(path), doc: []byte(`{"users":{}}`)}
}

// OpenLabels reads the label file at path. A missing file yields an
// empty store.
func OpenLabels(path string) (*LabelStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewLabelStore(path), nil
		}
		return nil, fmt.Errorf("read labels: %w", err)
	}
	s, err := ParseLabels(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.path = path
	return s, nil
}

// ParseLabels decodes label data in the given format.
func ParseLabels(data []byte, format Format) (*LabelStore, error) {
	s := &LabelStore{format: format}
	switch format {
	case FormatYAML:
		doc, err := yamlToJSON(data)
		if err != nil {
			return nil, err
		}
		s.doc = doc
	default:
		if len(strings.TrimSpace(string(data))) == 0 {
			data = []byte(`{}`)
		}
		if !gjson.ValidBytes(data) {
			return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidLabels)
		}
		s.doc = data
	}

	users := gjson.GetBytes(s.doc, usersKey)
	switch {
	case !users.Exists():
		doc, err := sjson.SetRawBytes(s.doc, usersKey, []byte(`{}`))
		if err != nil {
			return nil, err
		}
		s.doc = doc
	case !users.IsObject():
		return nil, fmt.Errorf("%w: %q must be an object", ErrInvalidLabels, usersKey)
	}
	return s, nil
}

// Path returns the file the store saves to.
func (s *LabelStore) Path() string {
	return s.path
}

// Usernames returns every labeled user in file order.
func (s *LabelStore) Usernames() []string {
	var names []string
	gjson.GetBytes(s.doc, usersKey).ForEach(func(key, _ gjson.Result) bool {
		names = append(names, key.String())
		return true
	})
	return names
}

// Labels returns the labels attached to user.
func (s *LabelStore) Labels(user string) []string {
	var labels []string
	for _, r := range gjson.GetBytes(s.doc, userPath(user)).Array() {
		labels = append(labels, r.String())
	}
	return labels
}

// WithLabel returns the users carrying label, in file order.
func (s *LabelStore) WithLabel(label string) []string {
	var names []string
	gjson.GetBytes(s.doc, usersKey).ForEach(func(key, value gjson.Result) bool {
		for _, r := range value.Array() {
			if r.String() == label {
				names = append(names, key.String())
				break
			}
		}
		return true
	})
	return names
}

// AddLabel attaches label to user, creating the user if needed. Adding a
// label twice is a no-op.
func (s *LabelStore) AddLabel(user, label string) error {
	if user == "" || label == "" {
		return ErrEmptyName
	}
	for _, l := range s.Labels(user) {
		if l == label {
			return nil
		}
	}

	path := userPath(user)
	if !gjson.GetBytes(s.doc, path).IsArray() {
		doc, err := sjson.SetRawBytes(s.doc, path, []byte(`[]`))
		if err != nil {
			return fmt.Errorf("add label: %w", err)
		}
		s.doc = doc
	}
	doc, err := sjson.SetBytes(s.doc, path+".-1", label)
	if err != nil {
		return fmt.Errorf("add label: %w", err)
	}
	s.doc = doc
	return nil
}

// RemoveUser drops user and all of its labels.
func (s *LabelStore) RemoveUser(user string) error {
	doc, err := sjson.DeleteBytes(s.doc, userPath(user))
	if err != nil {
		return fmt.Errorf("remove user: %w", err)
	}
	s.doc = doc
	return nil
}

// Bytes encodes the store in its format.
func (s *LabelStore) Bytes() ([]byte, error) {
	if s.format == FormatYAML {
		return jsonToYAML(s.doc)
	}
	return append([]byte(nil), s.doc...), nil
}

// Save writes the store to its path.
func (s *LabelStore) Save() error {
	if s.path == "" {
		return errors.New("label store has no path")
	}
	data, err := s.Bytes()
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("save labels: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("save labels: %w", err)
	}
	return nil
}

func userPath(user string) string {
	return usersKey + "." + gjson.Escape(user)
}

// yamlToJSON walks the YAML node tree so mapping order survives.
func yamlToJSON(data []byte) ([]byte, error) {
	doc := []byte(`{"users":{}}`)

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLabels, err)
	}
	if root.Kind == 0 {
		return doc, nil
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: expected a mapping", ErrInvalidLabels)
	}

	top := root.Content[0]
	for i := 0; i+1 < len(top.Content); i += 2 {
		if top.Content[i].Value != usersKey {
			continue
		}
		users := top.Content[i+1]
		if users.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: %q must be a mapping", ErrInvalidLabels, usersKey)
		}
		for j := 0; j+1 < len(users.Content); j += 2 {
			var labels []string
			if err := users.Content[j+1].Decode(&labels); err != nil {
				return nil, fmt.Errorf("%w: labels for %s: %v", ErrInvalidLabels, users.Content[j].Value, err)
			}
			if labels == nil {
				labels = []string{}
			}
			var err error
			doc, err = sjson.SetBytes(doc, userPath(users.Content[j].Value), labels)
			if err != nil {
				return nil, err
			}
		}
	}
	return doc, nil
}

func jsonToYAML(doc []byte) ([]byte, error) {
	users := &yaml.Node{Kind: yaml.MappingNode}
	gjson.GetBytes(doc, usersKey).ForEach(func(key, value gjson.Result) bool {
		seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, r := range value.Array() {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.String()})
		}
		users.Content = append(users.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key.String()},
			seq,
		)
		return true
	})

	root := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		{Kind: yaml.ScalarNode, Tag: "!!str", Value: usersKey},
		users,
	}}
	return yaml.Marshal(root)
}
