package tree

import (
	"encoding/json"
	"strconv"

	"github.com/YuminosukeSato/id3/core/model"
	"github.com/YuminosukeSato/id3/dataset"
	"github.com/YuminosukeSato/id3/pkg/errors"
	"github.com/YuminosukeSato/id3/pkg/log"
)

// Values are written with an explicit type so that 1, 1.0 and "1" survive
// a round trip as different keys.
const (
	typeNil     = "nil"
	typeString  = "string"
	typeBool    = "bool"
	typeInt     = "int"
	typeInt64   = "int64"
	typeFloat64 = "float64"
)

type jsonValue struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

type jsonChild struct {
	Value jsonValue `json:"value"`
	Node  *jsonNode `json:"node"`
}

type jsonNode struct {
	Kind      string      `json:"kind"`
	Label     *jsonValue  `json:"label,omitempty"`
	Attribute string      `json:"attribute,omitempty"`
	Default   *jsonValue  `json:"default,omitempty"`
	Children  []jsonChild `json:"children,omitempty"`
}

type jsonModel struct {
	LabelKey   string                 `json:"label_key"`
	Attributes []string               `json:"attributes"`
	Classes    []jsonValue            `json:"classes"`
	Params     map[string]interface{} `json:"params"`
	State      model.ModelState       `json:"state"`
	Root       *jsonNode              `json:"root"`
}

const (
	kindLeaf  = "leaf"
	kindSplit = "split"
)

func encodeValue(v any) (jsonValue, error) {
	switch x := v.(type) {
	case nil:
		return jsonValue{Type: typeNil}, nil
	case string:
		return jsonValue{Type: typeString, Value: x}, nil
	case bool:
		return jsonValue{Type: typeBool, Value: strconv.FormatBool(x)}, nil
	case int:
		return jsonValue{Type: typeInt, Value: strconv.Itoa(x)}, nil
	case int64:
		return jsonValue{Type: typeInt64, Value: strconv.FormatInt(x, 10)}, nil
	case float64:
		return jsonValue{Type: typeFloat64, Value: strconv.FormatFloat(x, 'g', -1, 64)}, nil
	default:
		return jsonValue{}, errors.Wrapf(errors.ErrUnsupportedValue, "encoding %T", v)
	}
}

func decodeValue(j jsonValue) (any, error) {
	switch j.Type {
	case typeNil:
		return nil, nil
	case typeString:
		return j.Value, nil
	case typeBool:
		b, err := strconv.ParseBool(j.Value)
		return b, errors.Wrap(err, "decoding bool")
	case typeInt:
		n, err := strconv.Atoi(j.Value)
		return n, errors.Wrap(err, "decoding int")
	case typeInt64:
		n, err := strconv.ParseInt(j.Value, 10, 64)
		return n, errors.Wrap(err, "decoding int64")
	case typeFloat64:
		f, err := strconv.ParseFloat(j.Value, 64)
		return f, errors.Wrap(err, "decoding float64")
	default:
		return nil, errors.Wrapf(errors.ErrUnsupportedValue, "decoding type %q", j.Type)
	}
}

func encodeNode(n Node) (*jsonNode, error) {
	switch node := n.(type) {
	case *Leaf:
		label, err := encodeValue(node.Label)
		if err != nil {
			return nil, err
		}
		return &jsonNode{Kind: kindLeaf, Label: &label}, nil
	case *Split:
		def, err := encodeValue(node.Default)
		if err != nil {
			return nil, err
		}
		out := &jsonNode{Kind: kindSplit, Attribute: node.Attribute, Default: &def}
		for _, v := range node.Values {
			key, err := encodeValue(v)
			if err != nil {
				return nil, err
			}
			child, err := encodeNode(node.Children[v])
			if err != nil {
				return nil, err
			}
			out.Children = append(out.Children, jsonChild{Value: key, Node: child})
		}
		return out, nil
	default:
		return nil, errors.NewValueError("encodeNode", "nil node")
	}
}

func decodeNode(j *jsonNode) (Node, error) {
	if j == nil {
		return nil, errors.NewValueError("decodeNode", "missing node")
	}
	switch j.Kind {
	case kindLeaf:
		if j.Label == nil {
			return nil, errors.NewValueError("decodeNode", "leaf without label")
		}
		label, err := decodeValue(*j.Label)
		if err != nil {
			return nil, err
		}
		return &Leaf{Label: label}, nil
	case kindSplit:
		if j.Attribute == "" || j.Default == nil || len(j.Children) == 0 {
			return nil, errors.NewValueError("decodeNode", "incomplete split")
		}
		def, err := decodeValue(*j.Default)
		if err != nil {
			return nil, err
		}
		split := &Split{
			Attribute: j.Attribute,
			Default:   def,
			Children:  make(map[any]Node, len(j.Children)),
		}
		for _, c := range j.Children {
			v, err := decodeValue(c.Value)
			if err != nil {
				return nil, err
			}
			child, err := decodeNode(c.Node)
			if err != nil {
				return nil, err
			}
			if _, dup := split.Children[v]; dup {
				return nil, errors.NewValueError("decodeNode", "duplicate child value under "+j.Attribute)
			}
			split.Values = append(split.Values, v)
			split.Children[v] = child
		}
		dataset.SortValues(split.Values)
		return split, nil
	default:
		return nil, errors.NewValueError("decodeNode", "unknown node kind "+strconv.Quote(j.Kind))
	}
}

// MarshalJSON encodes the fitted tree, its attributes, label key and
// hyperparameters. Values must be nil, string, bool, int, int64 or float64.
func (c *DecisionTreeClassifier) MarshalJSON() ([]byte, error) {
	root, err := c.snapshot("MarshalJSON")
	if err != nil {
		return nil, err
	}
	jroot, err := encodeNode(root)
	if err != nil {
		return nil, err
	}
	m := jsonModel{
		LabelKey:   c.LabelKey(),
		Attributes: c.Attributes(),
		Params:     c.GetParams(),
		State:      c.state.GetState(),
		Root:       jroot,
	}
	for _, cl := range c.Classes() {
		v, err := encodeValue(cl)
		if err != nil {
			return nil, err
		}
		m.Classes = append(m.Classes, v)
	}
	return json.Marshal(m)
}

// UnmarshalJSON replaces the classifier with the encoded model.
func (c *DecisionTreeClassifier) UnmarshalJSON(data []byte) error {
	var m jsonModel
	if err := json.Unmarshal(data, &m); err != nil {
		return errors.Wrap(err, "decoding model")
	}
	if m.LabelKey == "" {
		return errors.NewValidationError("label_key", "must not be empty", m.LabelKey)
	}
	root, err := decodeNode(m.Root)
	if err != nil {
		return err
	}
	classes := make([]any, 0, len(m.Classes))
	for _, jv := range m.Classes {
		v, err := decodeValue(jv)
		if err != nil {
			return err
		}
		classes = append(classes, v)
	}

	if c.state == nil {
		c.state = model.NewStateManager()
	}
	if c.logger == nil {
		c.logger = log.GetLoggerWithName("tree").With(log.ModelNameKey, modelName)
	}
	if len(m.Params) > 0 {
		if err := c.SetParams(m.Params); err != nil {
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.root = root
	c.attributes = m.Attributes
	c.labelKey = m.LabelKey
	c.classes = classes
	c.state.SetState(m.State)
	c.state.SetFitted()
	return nil
}

// GobEncode lets core/model.SaveModel write the classifier.
func (c *DecisionTreeClassifier) GobEncode() ([]byte, error) {
	return c.MarshalJSON()
}

// GobDecode lets core/model.LoadModel read the classifier.
func (c *DecisionTreeClassifier) GobDecode(data []byte) error {
	return c.UnmarshalJSON(data)
}
