package ast

import (
	"encoding/hex"
	"encoding/json"
)

// The JSON form of the tree is used by "hexraw ast". Every node carries a
// "type" discriminator.

func (s *Script) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string  `json:"type"`
		Filename string  `json:"filename,omitempty"`
		Blocks   []Block `json:"blocks"`
	}{"script", s.Filename, nonNilBlocks(s.Blocks)})
}

func (b *Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"type"`
		Line  int    `json:"line"`
		Items []Item `json:"items"`
	}{"bytes", b.Line, nonNilItems(b.Items)})
}

func (d *Define) MarshalJSON() ([]byte, error) {
	params := d.Params
	if params == nil {
		params = []string{}
	}
	return json.Marshal(struct {
		Type   string   `json:"type"`
		Line   int      `json:"line"`
		Name   string   `json:"name"`
		Params []string `json:"params"`
		Body   []Block  `json:"body"`
	}{"define", d.Line, d.Name, params, nonNilBlocks(d.Body)})
}

func (r *Repeat) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string  `json:"type"`
		Line  int     `json:"line"`
		Count int     `json:"count"`
		Body  []Block `json:"body"`
	}{"repeat", r.Line, r.Count, nonNilBlocks(r.Body)})
}

func (a *Assembly) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string `json:"type"`
		Line   int    `json:"line"`
		Source string `json:"source"`
		Code   string `json:"code"`
	}{"assembly", a.Line, a.Source, hex.EncodeToString(a.Code)})
}

func (x *Literal) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"type"`
		Text  string `json:"text"`
		Value string `json:"value"`
	}{"literal", x.Text, hex.EncodeToString(x.Value)})
}

func (x *Expansion) MarshalJSON() ([]byte, error) {
	args := make([][]Item, 0, len(x.Args))
	for _, arg := range x.Args {
		args = append(args, nonNilItems(arg))
	}
	return json.Marshal(struct {
		Type string   `json:"type"`
		Name string   `json:"name"`
		Args [][]Item `json:"args"`
	}{"expansion", x.Name, args})
}

func (x *Left) MarshalJSON() ([]byte, error) {
	return []byte(`{"type":"left"}`), nil
}

func (x *Right) MarshalJSON() ([]byte, error) {
	return []byte(`{"type":"right"}`), nil
}

func nonNilBlocks(blocks []Block) []Block {
	if blocks == nil {
		return []Block{}
	}
	return blocks
}

func nonNilItems(items []Item) []Item {
	if items == nil {
		return []Item{}
	}
	return items
}
