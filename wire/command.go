// ABOUTME: Outbound command frames sent over the realtime channel.
// ABOUTME: Flat JSON objects with a "command" discriminator plus optional payload fields.
package wire

import "encoding/json"

// Command names accepted by the server.
const (
	CmdGetHistory     = "get_history"
	CmdGetQueryGroups = "get_query_groups"
	CmdGetRunDetails  = "get_run_details"
)

// Command is a fire-and-forget request frame. Delivery is not guaranteed:
// senders drop commands silently when the channel is closed.
type Command struct {
	Command string `json:"command"`
	RunID   string `json:"run_id,omitempty"`
}

// Encode serializes the command frame.
func (c Command) Encode() ([]byte, error) {
	return json.Marshal(c)
}

// GetHistory requests the history listing.
func GetHistory() Command { return Command{Command: CmdGetHistory} }

// GetQueryGroups requests the per-query run groupings.
func GetQueryGroups() Command { return Command{Command: CmdGetQueryGroups} }

// GetRunDetails requests the stored run and step log for one run.
func GetRunDetails(runID string) Command {
	return Command{Command: CmdGetRunDetails, RunID: runID}
}
