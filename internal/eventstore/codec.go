package eventstore

import (
	"encoding/json"
	"fmt"
)

// correctionWire and changeWire are the on-disk envelope for every typed
// sum-type field above: the variant's field name plus its JSON-marshaled
// body. json.Unmarshal cannot populate an interface-typed struct field on
// its own — it has nowhere to recover the concrete type from — so each
// *CorrectedPayload and *ChangedPayload gets a hand-written
// MarshalJSON/UnmarshalJSON pair that switches on this envelope's Kind.
type correctionWire struct {
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value"`
}

func marshalCorrection(kind string, v any) (json.RawMessage, error) {
	value, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal correction value: %w", err)
	}
	return json.Marshal(correctionWire{Kind: kind, Value: value})
}

func (p GatheringCorrectedPayload) MarshalJSON() ([]byte, error) {
	wire, err := marshalCorrection(p.Correction.gatheringField(), p.Correction)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		SignalID   string          `json:"signal_id"`
		Correction json.RawMessage `json:"correction"`
	}{p.SignalID, wire})
}

func (p *GatheringCorrectedPayload) UnmarshalJSON(data []byte) error {
	var wire struct {
		SignalID   string         `json:"signal_id"`
		Correction correctionWire `json:"correction"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	p.SignalID = wire.SignalID
	switch wire.Correction.Kind {
	case "title":
		var v GatheringCorrectionTitle
		if err := json.Unmarshal(wire.Correction.Value, &v); err != nil {
			return err
		}
		p.Correction = v
	case "starts_at":
		var v GatheringCorrectionStartsAt
		if err := json.Unmarshal(wire.Correction.Value, &v); err != nil {
			return err
		}
		p.Correction = v
	case "ends_at":
		var v GatheringCorrectionEndsAt
		if err := json.Unmarshal(wire.Correction.Value, &v); err != nil {
			return err
		}
		p.Correction = v
	case "action_url":
		var v GatheringCorrectionActionURL
		if err := json.Unmarshal(wire.Correction.Value, &v); err != nil {
			return err
		}
		p.Correction = v
	default:
		return fmt.Errorf("%w: gathering correction kind %q", ErrUnknownEventType, wire.Correction.Kind)
	}
	return nil
}

func (p AidCorrectedPayload) MarshalJSON() ([]byte, error) {
	wire, err := marshalCorrection(p.Correction.aidField(), p.Correction)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		SignalID   string          `json:"signal_id"`
		Correction json.RawMessage `json:"correction"`
	}{p.SignalID, wire})
}

func (p *AidCorrectedPayload) UnmarshalJSON(data []byte) error {
	var wire struct {
		SignalID   string         `json:"signal_id"`
		Correction correctionWire `json:"correction"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	p.SignalID = wire.SignalID
	switch wire.Correction.Kind {
	case "title":
		var v AidCorrectionTitle
		if err := json.Unmarshal(wire.Correction.Value, &v); err != nil {
			return err
		}
		p.Correction = v
	case "availability":
		var v AidCorrectionAvailability
		if err := json.Unmarshal(wire.Correction.Value, &v); err != nil {
			return err
		}
		p.Correction = v
	default:
		return fmt.Errorf("%w: aid correction kind %q", ErrUnknownEventType, wire.Correction.Kind)
	}
	return nil
}

func (p NeedCorrectedPayload) MarshalJSON() ([]byte, error) {
	wire, err := marshalCorrection(p.Correction.needField(), p.Correction)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		SignalID   string          `json:"signal_id"`
		Correction json.RawMessage `json:"correction"`
	}{p.SignalID, wire})
}

func (p *NeedCorrectedPayload) UnmarshalJSON(data []byte) error {
	var wire struct {
		SignalID   string         `json:"signal_id"`
		Correction correctionWire `json:"correction"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	p.SignalID = wire.SignalID
	switch wire.Correction.Kind {
	case "title":
		var v NeedCorrectionTitle
		if err := json.Unmarshal(wire.Correction.Value, &v); err != nil {
			return err
		}
		p.Correction = v
	case "what_needed":
		var v NeedCorrectionWhatNeeded
		if err := json.Unmarshal(wire.Correction.Value, &v); err != nil {
			return err
		}
		p.Correction = v
	default:
		return fmt.Errorf("%w: need correction kind %q", ErrUnknownEventType, wire.Correction.Kind)
	}
	return nil
}

func (p NoticeCorrectedPayload) MarshalJSON() ([]byte, error) {
	wire, err := marshalCorrection(p.Correction.noticeField(), p.Correction)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		SignalID   string          `json:"signal_id"`
		Correction json.RawMessage `json:"correction"`
	}{p.SignalID, wire})
}

func (p *NoticeCorrectedPayload) UnmarshalJSON(data []byte) error {
	var wire struct {
		SignalID   string         `json:"signal_id"`
		Correction correctionWire `json:"correction"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	p.SignalID = wire.SignalID
	switch wire.Correction.Kind {
	case "title":
		var v NoticeCorrectionTitle
		if err := json.Unmarshal(wire.Correction.Value, &v); err != nil {
			return err
		}
		p.Correction = v
	case "effective_date":
		var v NoticeCorrectionEffectiveDate
		if err := json.Unmarshal(wire.Correction.Value, &v); err != nil {
			return err
		}
		p.Correction = v
	default:
		return fmt.Errorf("%w: notice correction kind %q", ErrUnknownEventType, wire.Correction.Kind)
	}
	return nil
}

func (p TensionCorrectedPayload) MarshalJSON() ([]byte, error) {
	wire, err := marshalCorrection(p.Correction.tensionField(), p.Correction)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		SignalID   string          `json:"signal_id"`
		Correction json.RawMessage `json:"correction"`
	}{p.SignalID, wire})
}

func (p *TensionCorrectedPayload) UnmarshalJSON(data []byte) error {
	var wire struct {
		SignalID   string         `json:"signal_id"`
		Correction correctionWire `json:"correction"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	p.SignalID = wire.SignalID
	switch wire.Correction.Kind {
	case "title":
		var v TensionCorrectionTitle
		if err := json.Unmarshal(wire.Correction.Value, &v); err != nil {
			return err
		}
		p.Correction = v
	case "what_would_help":
		var v TensionCorrectionWhatWouldHelp
		if err := json.Unmarshal(wire.Correction.Value, &v); err != nil {
			return err
		}
		p.Correction = v
	default:
		return fmt.Errorf("%w: tension correction kind %q", ErrUnknownEventType, wire.Correction.Kind)
	}
	return nil
}

func (p SourceChangedPayload) MarshalJSON() ([]byte, error) {
	wire, err := marshalCorrection(p.Change.sourceField(), p.Change)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		SourceID string          `json:"source_id"`
		Change   json.RawMessage `json:"change"`
	}{p.SourceID, wire})
}

func (p *SourceChangedPayload) UnmarshalJSON(data []byte) error {
	var wire struct {
		SourceID string         `json:"source_id"`
		Change   correctionWire `json:"change"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	p.SourceID = wire.SourceID
	switch wire.Change.Kind {
	case "active":
		var v SourceChangeActive
		if err := json.Unmarshal(wire.Change.Value, &v); err != nil {
			return err
		}
		p.Change = v
	case "weight":
		var v SourceChangeWeight
		if err := json.Unmarshal(wire.Change.Value, &v); err != nil {
			return err
		}
		p.Change = v
	default:
		return fmt.Errorf("%w: source change kind %q", ErrUnknownEventType, wire.Change.Kind)
	}
	return nil
}

func (p SituationChangedPayload) MarshalJSON() ([]byte, error) {
	wire, err := marshalCorrection(p.Change.situationField(), p.Change)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		SituationID string          `json:"situation_id"`
		Change      json.RawMessage `json:"change"`
	}{p.SituationID, wire})
}

func (p *SituationChangedPayload) UnmarshalJSON(data []byte) error {
	var wire struct {
		SituationID string         `json:"situation_id"`
		Change      correctionWire `json:"change"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	p.SituationID = wire.SituationID
	switch wire.Change.Kind {
	case "arc":
		var v SituationChangeArc
		if err := json.Unmarshal(wire.Change.Value, &v); err != nil {
			return err
		}
		p.Change = v
	case "temperature":
		var v SituationChangeTemperature
		if err := json.Unmarshal(wire.Change.Value, &v); err != nil {
			return err
		}
		p.Change = v
	case "clarity":
		var v SituationChangeClarity
		if err := json.Unmarshal(wire.Change.Value, &v); err != nil {
			return err
		}
		p.Change = v
	default:
		return fmt.Errorf("%w: situation change kind %q", ErrUnknownEventType, wire.Change.Kind)
	}
	return nil
}
