// ABOUTME: Tagged union for inbound realtime frames, discriminated by the "type" field.
// ABOUTME: Decode returns one Message variant per frame kind; unknown types yield UnknownMessage.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/signalflux/fluxwatch/model"
)

// Message is the closed sum of inbound frame variants. Dispatch sites switch
// exhaustively over the concrete types, with a default arm ignoring
// UnknownMessage for forward compatibility.
type Message interface {
	MessageType() string
	messageSeal()
}

// envelope is the outer wire shape of every inbound frame.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// InitMessage reconciles client state after a fresh connect or page reload
// while a run is mid-flight. A nil/empty RunID means no run is in progress.
type InitMessage struct {
	RunID   string                       `json:"run_id"`
	Status  model.RunStatus              `json:"status"`
	Query   string                       `json:"query"`
	Steps   []StepData                   `json:"steps"`
	Signals []model.Signal               `json:"signals"`
	Charts  map[string]model.ChartSeries `json:"charts"`
	Graph   model.Graph                  `json:"graph"`
}

func (InitMessage) MessageType() string { return "init" }
func (InitMessage) messageSeal()        {}

// ProgressMessage updates the current phase label and percent complete.
type ProgressMessage struct {
	RunID    string `json:"run_id,omitempty"`
	Phase    string `json:"phase"`
	Progress int    `json:"progress"`
}

func (ProgressMessage) MessageType() string { return "progress" }
func (ProgressMessage) messageSeal()        {}

// StepData is the wire shape of one step log entry. The pipeline emits the
// category under "type" on the stream but "step_type" in persisted rows, so
// both keys are accepted.
type StepData struct {
	StepType  string `json:"-"`
	Agent     string `json:"agent"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	RunID     string `json:"run_id,omitempty"`
}

type stepDataJSON struct {
	Type      string `json:"type"`
	StepType  string `json:"step_type"`
	Agent     string `json:"agent"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	RunID     string `json:"run_id,omitempty"`
}

// UnmarshalJSON resolves the step category from either key.
func (s *StepData) UnmarshalJSON(data []byte) error {
	var j stepDataJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	st := j.StepType
	if st == "" {
		st = j.Type
	}
	s.StepType = st
	s.Agent = j.Agent
	s.Content = j.Content
	s.Timestamp = j.Timestamp
	s.RunID = j.RunID
	return nil
}

// Step converts the wire shape to the domain Step.
func (s StepData) Step() model.Step {
	return model.Step{
		Timestamp: s.Timestamp,
		Agent:     s.Agent,
		StepType:  model.NormalizeStepType(s.StepType),
		Content:   s.Content,
	}
}

// StepMessage appends one log entry.
type StepMessage struct {
	StepData
}

func (StepMessage) MessageType() string { return "step" }
func (StepMessage) messageSeal()        {}

// SignalMessage appends one discovered signal.
type SignalMessage struct {
	RunID  string `json:"run_id,omitempty"`
	Signal model.Signal
}

// UnmarshalJSON reads the signal fields and the injected run_id from the
// same flat object.
func (m *SignalMessage) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &m.Signal); err != nil {
		return err
	}
	var rid struct {
		RunID string `json:"run_id"`
	}
	if err := json.Unmarshal(data, &rid); err != nil {
		return err
	}
	m.RunID = rid.RunID
	return nil
}

func (SignalMessage) MessageType() string { return "signal" }
func (SignalMessage) messageSeal()        {}

// ChartMessage upserts one chart series keyed by ticker.
type ChartMessage struct {
	RunID  string `json:"run_id,omitempty"`
	Series model.ChartSeries
}

func (m *ChartMessage) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &m.Series); err != nil {
		return err
	}
	var rid struct {
		RunID string `json:"run_id"`
	}
	if err := json.Unmarshal(data, &rid); err != nil {
		return err
	}
	m.RunID = rid.RunID
	return nil
}

func (ChartMessage) MessageType() string { return "chart" }
func (ChartMessage) messageSeal()        {}

// GraphMessage replaces the current transmission graph.
type GraphMessage struct {
	Graph model.Graph
}

func (m *GraphMessage) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &m.Graph)
}

func (GraphMessage) MessageType() string { return "graph" }
func (GraphMessage) messageSeal()        {}

// CompletedMessage marks the run terminal with its final signal count.
type CompletedMessage struct {
	RunID       string `json:"run_id"`
	SignalCount int    `json:"signal_count"`
}

func (CompletedMessage) MessageType() string { return "completed" }
func (CompletedMessage) messageSeal()        {}

// ErrorMessage marks the run failed with a server-provided message.
type ErrorMessage struct {
	RunID   string `json:"run_id,omitempty"`
	Message string `json:"message"`
}

func (ErrorMessage) MessageType() string { return "error" }
func (ErrorMessage) messageSeal()        {}

// HistoryMessage replaces the history listing.
type HistoryMessage struct {
	Items []model.HistoryItem
}

func (m *HistoryMessage) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &m.Items)
}

func (HistoryMessage) MessageType() string { return "history" }
func (HistoryMessage) messageSeal()        {}

// QueryGroupsMessage replaces the per-query run groupings.
type QueryGroupsMessage struct {
	Groups []model.QueryGroup
}

func (m *QueryGroupsMessage) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &m.Groups)
}

func (QueryGroupsMessage) MessageType() string { return "query_groups" }
func (QueryGroupsMessage) messageSeal()        {}

// RunDetailsMessage answers a get_run_details command with the stored run and
// its step log.
type RunDetailsMessage struct {
	Run   *model.Run `json:"run"`
	Steps []StepData `json:"steps"`
}

func (RunDetailsMessage) MessageType() string { return "run_details" }
func (RunDetailsMessage) messageSeal()        {}

// UnknownMessage is any frame with an unrecognized type tag. Dispatch ignores
// it silently so newer servers can add frame kinds without breaking clients.
type UnknownMessage struct {
	Type string
	Data json.RawMessage
}

func (m UnknownMessage) MessageType() string { return m.Type }
func (UnknownMessage) messageSeal()          {}

// Decode parses one inbound frame. A malformed envelope or payload returns an
// error; callers drop the frame and keep the connection alive.
func Decode(raw []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode frame envelope: %w", err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("decode frame: missing type tag")
	}

	var (
		msg Message
		err error
	)
	switch env.Type {
	case "init":
		var m InitMessage
		err = json.Unmarshal(env.Data, &m)
		msg = m
	case "progress":
		var m ProgressMessage
		err = json.Unmarshal(env.Data, &m)
		msg = m
	case "step":
		var m StepMessage
		err = json.Unmarshal(env.Data, &m.StepData)
		msg = m
	case "signal":
		var m SignalMessage
		err = json.Unmarshal(env.Data, &m)
		msg = m
	case "chart":
		var m ChartMessage
		err = json.Unmarshal(env.Data, &m)
		msg = m
	case "graph":
		var m GraphMessage
		err = json.Unmarshal(env.Data, &m)
		msg = m
	case "completed":
		var m CompletedMessage
		err = json.Unmarshal(env.Data, &m)
		msg = m
	case "error":
		var m ErrorMessage
		err = json.Unmarshal(env.Data, &m)
		msg = m
	case "history":
		var m HistoryMessage
		err = json.Unmarshal(env.Data, &m)
		msg = m
	case "query_groups":
		var m QueryGroupsMessage
		err = json.Unmarshal(env.Data, &m)
		msg = m
	case "run_details":
		var m RunDetailsMessage
		err = json.Unmarshal(env.Data, &m)
		msg = m
	default:
		return UnknownMessage{Type: env.Type, Data: env.Data}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s frame: %w", env.Type, err)
	}
	return msg, nil
}
