package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type CliJob struct {
	DeviceIDs []DeviceID
	Commands  []string
}

func (j CliJob) Validate() error {
	if len(j.DeviceIDs) == 0 {
		return fmt.Errorf("at least one device id is required")
	}
	if len(j.Commands) == 0 {
		return fmt.Errorf("at least one command is required")
	}
	for _, command := range j.Commands {
		if strings.TrimSpace(command) == "" {
			return fmt.Errorf("commands must not be blank")
		}
	}

	return nil
}

type CLIOutput struct {
	Output       string `json:"output"`
	ResponseCode string `json:"response_code"`
}

// PerDeviceOutput is keyed by device id; each slice holds one entry per command in job order.
type PerDeviceOutput map[DeviceID][]CLIOutput

// First returns the first command output for a device.
func (o PerDeviceOutput) First(id DeviceID) (CLIOutput, bool) {
	outputs, ok := o[id]
	if !ok || len(outputs) == 0 {
		return CLIOutput{}, false
	}

	return outputs[0], true
}

type LroState string

const (
	LroStateSubmitting  LroState = "submitting"
	LroStatePollingWait LroState = "polling_wait"
	LroStatePolling     LroState = "polling"
	LroStateDone        LroState = "done"
	LroStateFailed      LroState = "failed"
	LroStateAborted     LroState = "aborted"
)

func (s LroState) Terminal() bool {
	switch s {
	case LroStateDone, LroStateFailed, LroStateAborted:
		return true
	default:
		return false
	}
}

const LroStatusRunning = "RUNNING"

type LroOperation struct {
	Location string
	Attempt  int
	State    LroState
	Status   string
}

type OperationSnapshot struct {
	Done     bool
	Status   string
	Response json.RawMessage
	// Raw is the whole poll body, kept for failure logs.
	Raw json.RawMessage
}

// Running is true while the server still reports the operation as in progress.
func (s OperationSnapshot) Running() bool {
	return !s.Done && s.Status == LroStatusRunning
}

// DecodePerDeviceOutput accepts the payload wrapped in device_cli_outputs or the bare id map.
func DecodePerDeviceOutput(raw json.RawMessage) (PerDeviceOutput, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, &MalformedResponseError{URL: "operation response", Reason: "empty response payload"}
	}

	var wrapped struct {
		DeviceCLIOutputs map[string][]CLIOutput `json:"device_cli_outputs"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err == nil && wrapped.DeviceCLIOutputs != nil {
		return perDeviceFromKeys(wrapped.DeviceCLIOutputs)
	}

	var bare map[string][]CLIOutput
	if err := json.Unmarshal(trimmed, &bare); err != nil {
		return nil, &MalformedResponseError{URL: "operation response", Reason: "unexpected cli output shape", Err: err}
	}

	return perDeviceFromKeys(bare)
}

func perDeviceFromKeys(raw map[string][]CLIOutput) (PerDeviceOutput, error) {
	out := make(PerDeviceOutput, len(raw))
	for key, outputs := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, &MalformedResponseError{URL: "operation response", Reason: "non-numeric device id " + strconv.Quote(key), Err: err}
		}
		out[DeviceID(id)] = outputs
	}

	return out, nil
}
