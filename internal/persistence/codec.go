package persistence

import (
	"bytes"
	"encoding/gob"

	"github.com/fanfold/fanfold/pkg/batch"
)

func init() {
	// Payload shapes that cross the store boundary. PlanOutcome carries its
	// own GobEncode/GobDecode; the rest are plain structs and maps.
	gob.Register(batch.PlanOutcome{})
	gob.Register(batch.SkipResult{})
	gob.Register(batch.WorkerReport{})
	gob.Register(batch.WorkerFailure{})
	gob.Register(batch.ReportSummary{})
	gob.Register(batch.CursorWindow{})
	gob.Register(map[string]any{})
	gob.Register([]any{})
}

// EncodeValue serializes arbitrary Go values using encoding/gob.
// Callers must ensure that values are gob-encodable.
func EncodeValue(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	// Encode as interface{} so payloads decode back into interface{}
	// without the caller knowing the concrete type.
	var iv = v
	if err := enc.Encode(&iv); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeValue is the inverse of EncodeValue.
func DecodeValue(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var iv any
	dec := gob.NewDecoder(bytes.NewBuffer(data))
	if err := dec.Decode(&iv); err != nil {
		return nil, err
	}
	return iv, nil
}
