package pb

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/loop-guard/internal/domain/guard"
)

// Keys of the settings Struct.
const (
	FieldThreshold          = "threshold"
	FieldWarnOncePerProcess = "warn_once_per_process"
	FieldEnableStackTrace   = "enable_stack_trace"
	FieldEnableLoopBreak    = "enable_loop_break"
	FieldAlerted            = "alerted"
	FieldSession            = "session"
	FieldUpdatedAt          = "updated_at"
	FieldLastActor          = "last_actor"
	FieldHostname           = "hostname"
	FieldUsername           = "username"
)

// errThresholdMissing is returned when a settings Struct has no threshold.
var errThresholdMissing = errors.New("threshold is missing")

// SettingsToStruct converts a snapshot into its wire form. The threshold is
// sent as a decimal string because Struct numbers are doubles.
func SettingsToStruct(snapshot *domain.Snapshot) (*structpb.Struct, error) {
	if snapshot == nil {
		return &structpb.Struct{}, nil
	}

	fields := map[string]any{
		FieldThreshold:          strconv.FormatUint(snapshot.Threshold, 10),
		FieldWarnOncePerProcess: snapshot.WarnOncePerProcess,
		FieldEnableStackTrace:   snapshot.StackTraceEnabled,
		FieldEnableLoopBreak:    snapshot.BreakOnOverflow,
		FieldAlerted:            snapshot.Alerted,
	}

	if snapshot.Session != uuid.Nil {
		fields[FieldSession] = snapshot.Session.String()
	}

	if !snapshot.UpdatedAt.IsZero() {
		fields[FieldUpdatedAt] = snapshot.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}

	if snapshot.LastActor != nil {
		fields[FieldLastActor] = map[string]any{
			FieldHostname: snapshot.LastActor.Hostname,
			FieldUsername: snapshot.LastActor.Username,
		}
	}

	result, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build settings struct: %w", err)
	}

	return result, nil
}

// SettingsFromStruct converts the wire form back into a snapshot.
func SettingsFromStruct(s *structpb.Struct) (*domain.Snapshot, error) {
	fields := s.GetFields()

	raw, ok := fields[FieldThreshold]
	if !ok {
		return nil, errThresholdMissing
	}

	threshold, err := strconv.ParseUint(raw.GetStringValue(), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse threshold: %w", err)
	}

	snapshot := &domain.Snapshot{
		Threshold:          threshold,
		WarnOncePerProcess: fields[FieldWarnOncePerProcess].GetBoolValue(),
		StackTraceEnabled:  fields[FieldEnableStackTrace].GetBoolValue(),
		BreakOnOverflow:    fields[FieldEnableLoopBreak].GetBoolValue(),
		Alerted:            fields[FieldAlerted].GetBoolValue(),
	}

	if session := fields[FieldSession].GetStringValue(); session != "" {
		if snapshot.Session, err = uuid.Parse(session); err != nil {
			return nil, fmt.Errorf("parse session: %w", err)
		}
	}

	if updatedAt := fields[FieldUpdatedAt].GetStringValue(); updatedAt != "" {
		if snapshot.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return nil, fmt.Errorf("parse updated_at: %w", err)
		}
	}

	if actor := fields[FieldLastActor].GetStructValue(); actor != nil {
		snapshot.LastActor = &domain.Actor{
			Hostname: actor.GetFields()[FieldHostname].GetStringValue(),
			Username: actor.GetFields()[FieldUsername].GetStringValue(),
		}
	}

	return snapshot, nil
}
