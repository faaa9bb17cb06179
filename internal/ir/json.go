package ir

import "encoding/json"

// The MarshalJSON methods add a node_type discriminator so a dumped forest
// can be read back by tools without guessing the variant.

func (n *Namespace) MarshalJSON() ([]byte, error) {
	type alias Namespace
	return json.Marshal(struct {
		NodeType NodeType `json:"node_type"`
		*alias
	}{NodeNamespace, (*alias)(n)})
}

func (n *Class) MarshalJSON() ([]byte, error) {
	type alias Class
	return json.Marshal(struct {
		NodeType NodeType `json:"node_type"`
		*alias
	}{NodeClass, (*alias)(n)})
}

func (n *Method) MarshalJSON() ([]byte, error) {
	type alias Method
	return json.Marshal(struct {
		NodeType NodeType `json:"node_type"`
		*alias
	}{NodeMethod, (*alias)(n)})
}

func (n *Generic) MarshalJSON() ([]byte, error) {
	type alias Generic
	return json.Marshal(struct {
		NodeType NodeType `json:"node_type"`
		*alias
	}{NodeGeneric, (*alias)(n)})
}
