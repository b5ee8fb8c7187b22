package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"
)

type elementJSON struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Class      Class             `json:"class"`
	Properties map[string]any    `json:"properties,omitempty"`
	Children   []json.RawMessage `json:"children"`
}

// MarshalJSON encodes an element with its children.
func (e *Element) MarshalJSON() ([]byte, error) {
	children := make([]json.RawMessage, len(e.Children))
	for i, c := range e.Children {
		b, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		children[i] = b
	}
	return json.Marshal(elementJSON{
		ID:         e.ID,
		Type:       e.Type,
		Class:      e.Class,
		Properties: e.Properties,
		Children:   children,
	})
}

// MarshalJSON encodes a text leaf with its marks flattened into the object.
func (t *Text) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(t.Marks)+2)
	maps.Copy(obj, t.Marks)
	obj["text"] = t.Text
	if t.Placeholder != "" {
		obj["placeholder"] = t.Placeholder
	}
	return json.Marshal(obj)
}

// MarshalNodes encodes a root-level node list. This is the persisted
// document format.
func MarshalNodes(nodes []Node) ([]byte, error) {
	if nodes == nil {
		nodes = []Node{}
	}
	return json.Marshal(nodes)
}

// UnmarshalNodes decodes a root-level node list.
func UnmarshalNodes(data []byte) ([]Node, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decoding nodes: %w", err)
	}
	return decodeList(raws)
}

func decodeList(raws []json.RawMessage) ([]Node, error) {
	nodes := make([]Node, 0, len(raws))
	for _, raw := range raws {
		n, err := decodeNode(raw)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func decodeNode(raw json.RawMessage) (Node, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("decoding node: %w", err)
	}
	if _, isText := probe["text"]; isText {
		if _, hasChildren := probe["children"]; !hasChildren {
			return decodeText(raw)
		}
	}

	var ej elementJSON
	if err := unmarshalNumbers(raw, &ej); err != nil {
		return nil, fmt.Errorf("decoding element: %w", err)
	}
	children, err := decodeList(ej.Children)
	if err != nil {
		return nil, fmt.Errorf("element %s: %w", ej.ID, err)
	}
	return &Element{
		ID:         ej.ID,
		Type:       ej.Type,
		Class:      ej.Class,
		Properties: numbersIn(ej.Properties),
		Children:   children,
	}, nil
}

func decodeText(raw json.RawMessage) (*Text, error) {
	var obj map[string]any
	if err := unmarshalNumbers(raw, &obj); err != nil {
		return nil, fmt.Errorf("decoding text: %w", err)
	}
	obj = numbersIn(obj)
	t := &Text{}
	if s, ok := obj["text"].(string); ok {
		t.Text = s
	}
	if s, ok := obj["placeholder"].(string); ok {
		t.Placeholder = s
	}
	delete(obj, "text")
	delete(obj, "placeholder")
	if len(obj) > 0 {
		t.Marks = obj
	}
	return t, nil
}

// unmarshalNumbers decodes raw keeping numbers as json.Number.
func unmarshalNumbers(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

// numbersIn converts the json.Number values in m to int when integral and
// float64 otherwise, so that decoded values compare equal to the ones set
// by plugins.
func numbersIn(m map[string]any) map[string]any {
	for k, v := range m {
		m[k] = number(v)
	}
	return m
}

func number(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil && i >= math.MinInt && i <= math.MaxInt {
			return int(i)
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any:
		return numbersIn(x)
	case []any:
		for i := range x {
			x[i] = number(x[i])
		}
		return x
	}
	return v
}
