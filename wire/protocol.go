// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import "encoding/json"

// SseqTarget discriminates which spectral sequence a message concerns
// (spec.md §6 "Each message carries a target sseq discriminator").
type SseqTarget string

const (
	SseqMain SseqTarget = "Main"
	SseqUnit SseqTarget = "Unit"
)

// Bidegree is the (s, t) coordinate carried by query messages.
type Bidegree struct {
	S int `json:"s"`
	T int `json:"t"`
}

// InboundMessage is the tagged-sum inbound half of the protocol (spec.md
// §6 "Message protocol"): exactly one of the named fields is populated,
// selected by Type.
type InboundMessage struct {
	Type string `json:"type"`

	Construct         *ConstructMsg         `json:"construct,omitempty"`
	Resolve           *ResolveMsg           `json:"resolve,omitempty"`
	AddProductType    *AddProductTypeMsg    `json:"add_product_type,omitempty"`
	AddDifferential   *AddDifferentialMsg   `json:"add_differential,omitempty"`
	AddPermanentClass *AddPermanentClassMsg `json:"add_permanent_class,omitempty"`
	QueryTable        *QueryTableMsg        `json:"query_table,omitempty"`
	QueryCocycle      *QueryCocycleMsg      `json:"query_cocycle_string,omitempty"`
	BlockRefresh      *BlockRefreshMsg      `json:"block_refresh,omitempty"`
}

type ConstructMsg struct {
	ModuleName string `json:"module_name"`
	Algebra    string `json:"algebra"`
}

type ResolveMsg struct {
	MaxDegree int `json:"max_degree"`
}

type AddProductTypeMsg struct {
	Name string `json:"name"`
	DX   int    `json:"dx"`
	DY   int    `json:"dy"`
}

type AddDifferentialMsg struct {
	Target Bidegree `json:"target"`
	Page   int      `json:"page"`
	Source []uint32 `json:"source"`
	Image  []uint32 `json:"image"`
}

type AddPermanentClassMsg struct {
	Target Bidegree `json:"target"`
	Class  []uint32 `json:"class"`
}

type QueryTableMsg struct {
	Target Bidegree `json:"target"`
}

type QueryCocycleMsg struct {
	Target    Bidegree `json:"target"`
	Generator int      `json:"generator"`
}

type BlockRefreshMsg struct {
	On bool `json:"on"`
}

// OutboundMessage is the tagged-sum outbound half of the protocol. Recipients
// is the message's recipient list (spec.md §6); Sseq picks Main or Unit.
type OutboundMessage struct {
	Type       string     `json:"type"`
	Sseq       SseqTarget `json:"sseq"`
	Recipients []string   `json:"recipients,omitempty"`

	Resolving          *ResolvingMsg          `json:"resolving,omitempty"`
	AddClass           *AddClassMsg           `json:"add_class,omitempty"`
	AddProduct         *AddProductMsg         `json:"add_product,omitempty"`
	SetClass           *SetClassMsg           `json:"set_class,omitempty"`
	SetStructline      *SetStructlineMsg      `json:"set_structline,omitempty"`
	SetDifferential    *SetDifferentialMsg    `json:"set_differential,omitempty"`
	SetPageList        *SetPageListMsg        `json:"set_page_list,omitempty"`
	QueryTableResult   *QueryTableResultMsg   `json:"query_table_result,omitempty"`
	QueryCocycleResult *QueryCocycleResultMsg `json:"query_cocycle_string_result,omitempty"`
	Complete           *CompleteMsg           `json:"complete,omitempty"`
}

type ResolvingMsg struct {
	Prime     uint32 `json:"p"`
	MinDegree int    `json:"min"`
	MaxDegree int    `json:"max"`
	IsUnit    bool   `json:"is_unit"`
}

type AddClassMsg struct {
	X   int `json:"x"`
	Y   int `json:"y"`
	Num int `json:"num"`
}

type AddProductMsg struct {
	Name   string   `json:"name"`
	Source Bidegree `json:"source"`
	Matrix [][]uint32 `json:"matrix"`
}

type SetClassMsg struct {
	Target Bidegree `json:"target"`
	Page   int      `json:"page"`
	Basis  [][]uint32 `json:"basis"`
}

type SetStructlineMsg struct {
	Name   string   `json:"name"`
	Source Bidegree `json:"source"`
}

type SetDifferentialMsg struct {
	Source Bidegree `json:"source"`
	Page   int      `json:"page"`
	Pairs  [][2][]uint32 `json:"pairs"`
}

type SetPageListMsg struct {
	Target Bidegree `json:"target"`
	Pages  []int    `json:"pages"`
}

type QueryTableResultMsg struct {
	Target Bidegree `json:"target"`
	Dim    int      `json:"dim"`
}

type QueryCocycleResultMsg struct {
	Target     Bidegree `json:"target"`
	Generator  int      `json:"generator"`
	Expression string   `json:"expression"`
}

type CompleteMsg struct {
	MaxDegree int `json:"max_degree"`
}

// DecodeInbound parses a raw inbound message.
func DecodeInbound(data []byte) (*InboundMessage, error) {
	var m InboundMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Encode serialises an outbound message.
func (m *OutboundMessage) Encode() ([]byte, error) {
	return json.Marshal(m)
}
