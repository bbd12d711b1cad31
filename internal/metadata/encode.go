package metadata

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

func NewReport(files []*FileReport) *Report {
	return &Report{Schema: SchemaVersion, Files: files}
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding json report: %w", err)
	}
	return nil
}

func WriteMsgpack(w io.Writer, r *Report) error {
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding msgpack report: %w", err)
	}
	return nil
}

// ReadMsgpack decodes a report written by WriteMsgpack. Reports of another
// schema version are rejected.
func ReadMsgpack(r io.Reader) (*Report, error) {
	var report Report
	if err := msgpack.NewDecoder(r).Decode(&report); err != nil {
		return nil, fmt.Errorf("decoding msgpack report: %w", err)
	}
	if report.Schema != SchemaVersion {
		return nil, fmt.Errorf("unsupported report schema %d (want %d)", report.Schema, SchemaVersion)
	}
	return &report, nil
}
