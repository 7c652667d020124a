// ABOUTME: Signal is a discrete analytical finding with confidence, intensity, and a causal chain.
// ABOUTME: Unmarshals leniently: chain nodes and sources accept several upstream key aliases.
package model

import (
	"encoding/json"
	"sort"
)

// ChainNode is one hop in a signal's causal transmission chain.
type ChainNode struct {
	NodeName   string `json:"node_name"`
	ImpactType string `json:"impact_type"`
}

// chainNodeJSON accepts the aliases different pipeline agents emit for the
// node label: node_name, label, or name.
type chainNodeJSON struct {
	NodeName   string `json:"node_name"`
	Label      string `json:"label"`
	Name       string `json:"name"`
	ImpactType string `json:"impact_type"`
}

// UnmarshalJSON resolves the first non-empty name alias.
func (n *ChainNode) UnmarshalJSON(data []byte) error {
	var j chainNodeJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	name := j.NodeName
	if name == "" {
		name = j.Label
	}
	if name == "" {
		name = j.Name
	}
	n.NodeName = name
	n.ImpactType = j.ImpactType
	return nil
}

// Source is one citation backing a signal.
type Source struct {
	SourceName string `json:"source_name"`
	URL        string `json:"url"`
}

type sourceJSON struct {
	SourceName string `json:"source_name"`
	Title      string `json:"title"`
	URL        string `json:"url"`
}

// UnmarshalJSON resolves source_name with title as fallback.
func (s *Source) UnmarshalJSON(data []byte) error {
	var j sourceJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	name := j.SourceName
	if name == "" {
		name = j.Title
	}
	s.SourceName = name
	s.URL = j.URL
	return nil
}

// Signal is an analytical finding. Confidence and intensity are pipeline
// outputs; the engine only ranks by them and never interprets them.
type Signal struct {
	SignalID          string      `json:"signal_id"`
	Title             string      `json:"title"`
	Confidence        float64     `json:"confidence"`
	Intensity         float64     `json:"intensity"`
	Summary           string      `json:"summary,omitempty"`
	TransmissionChain []ChainNode `json:"transmission_chain,omitempty"`
	Sources           []Source    `json:"sources,omitempty"`
}

// HasChain reports whether the signal carries a non-empty transmission chain,
// the eligibility bar for the causal-path display.
func (s Signal) HasChain() bool {
	return len(s.TransmissionChain) > 0
}

// RankSignals returns a copy of signals ordered by confidence descending,
// breaking ties by intensity descending and then title for determinism.
func RankSignals(signals []Signal) []Signal {
	out := make([]Signal, len(signals))
	copy(out, signals)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		if out[i].Intensity != out[j].Intensity {
			return out[i].Intensity > out[j].Intensity
		}
		return out[i].Title < out[j].Title
	})
	return out
}
