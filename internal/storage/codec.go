package storage

import (
	"encoding/json"
	"errors"

	"alphachip/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeModel(m model.ModelSnapshot) ([]byte, error) {
	return json.Marshal(m)
}

func DecodeModel(data []byte) (model.ModelSnapshot, error) {
	var snapshot model.ModelSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return model.ModelSnapshot{}, err
	}
	if err := checkVersion(snapshot.VersionedRecord); err != nil {
		return model.ModelSnapshot{}, err
	}
	return snapshot, nil
}

func EncodeChipState(s model.ChipState) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeChipState(data []byte) (model.ChipState, error) {
	var state model.ChipState
	if err := json.Unmarshal(data, &state); err != nil {
		return model.ChipState{}, err
	}
	if err := checkVersion(state.VersionedRecord); err != nil {
		return model.ChipState{}, err
	}
	return state, nil
}

func EncodeRewardHistory(history []float64) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeRewardHistory(data []byte) ([]float64, error) {
	var history []float64
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func checkVersion(record model.VersionedRecord) error {
	if record.SchemaVersion > CurrentSchemaVersion || record.CodecVersion > CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}

// Stamp fills in the current schema and codec versions.
func Stamp() model.VersionedRecord {
	return model.VersionedRecord{
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
	}
}
