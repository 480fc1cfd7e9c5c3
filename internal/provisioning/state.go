package provisioning

import (
	"encoding/json"
	"fmt"
)

// SiteState is the position of a site in the pipeline.
// Sites move forward through the happy path or enter StateFailed, which is terminal.
type SiteState int

const (
	StatePending SiteState = iota
	StateDatabaseReady
	StateStaged
	StateConfigured
	StateHardened
	StateInstalled
	StateDone
	StateFailed
)

var stateNames = map[SiteState]string{
	StatePending:       "pending",
	StateDatabaseReady: "database_ready",
	StateStaged:        "staged",
	StateConfigured:    "configured",
	StateHardened:      "hardened",
	StateInstalled:     "installed",
	StateDone:          "done",
	StateFailed:        "failed",
}

func (s SiteState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalJSON encodes the state by name.
func (s SiteState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
