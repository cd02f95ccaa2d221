package fileutils

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// DecodeModelJSON decodes a single JSON object from model output into v. Markdown code fences and
// prose around the object are tolerated. Decode errors from the object itself are returned
// wrapped, so *json.UnmarshalTypeError and errors returned by v's UnmarshalJSON stay reachable with
// errors.As; an object cut off before its end yields io.ErrUnexpectedEOF.
func DecodeModelJSON(outputText string, v any) error {
	s := stripCodeFence(strings.TrimSpace(outputText))
	if s == "" {
		return io.ErrUnexpectedEOF
	}
	if s[0] != '{' {
		start := strings.IndexByte(s, '{')
		if start == -1 {
			return fmt.Errorf("no JSON object found in model output (len=%d)", len(s))
		}
		s = s[start:]
	}
	if err := json.NewDecoder(strings.NewReader(s)).Decode(v); err != nil {
		if err == io.ErrUnexpectedEOF {
			return err
		}
		return fmt.Errorf("decode model JSON (len=%d): %w", len(s), err)
	}
	return nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl != -1 {
		s = s[nl+1:] // language tag
	} else {
		s = ""
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
