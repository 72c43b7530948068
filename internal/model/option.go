package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Score is the raw text of an option score. Keeping the text instead of a
// float preserves partial input such as "0." while an editor is open.
// The zero value means no score.
type Score string

// ScoreFromFloat formats f with the shortest exact representation
func ScoreFromFloat(f float64) Score {
	return Score(strconv.FormatFloat(f, 'f', -1, 64))
}

// IsSet reports whether a score was given
func (s Score) IsSet() bool {
	return s != ""
}

// Float parses the score; ok is false when unset or not a number
func (s Score) Float() (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(string(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// MarshalJSON writes canonical numbers as JSON numbers and anything else
// ("0.", "1.50") as a string so the typed text survives.
func (s Score) MarshalJSON() ([]byte, error) {
	if s == "" {
		return []byte("null"), nil
	}
	if f, ok := s.Float(); ok && ScoreFromFloat(f) == s {
		return []byte(s), nil
	}
	return json.Marshal(string(s))
}

// UnmarshalJSON accepts a number, a string or null
func (s *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*s = Score(strings.TrimSpace(raw))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("score: %w", err)
		}
		*s = Score(n.String())
	}
	return nil
}

// OptionRecord is the canonical option shape
type OptionRecord struct {
	Text           string `json:"text" bson:"text"`
	Score          Score  `json:"score,omitempty" bson:"score,omitempty"`
	AnnotationText string `json:"annotationText,omitempty" bson:"annotationText,omitempty"`
}

// Blank reports whether the record has no usable text
func (o OptionRecord) Blank() bool {
	return strings.TrimSpace(o.Text) == ""
}

// UnmarshalJSON also reads the older "referralText" key for annotations
func (o *OptionRecord) UnmarshalJSON(data []byte) error {
	var aux struct {
		Text           string  `json:"text"`
		Score          Score   `json:"score"`
		AnnotationText *string `json:"annotationText"`
		ReferralText   *string `json:"referralText"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	o.Text = aux.Text
	o.Score = aux.Score
	o.AnnotationText = ""
	switch {
	case aux.AnnotationText != nil:
		o.AnnotationText = *aux.AnnotationText
	case aux.ReferralText != nil:
		o.AnnotationText = *aux.ReferralText
	}
	return nil
}

// LegacyOption is one element of the legacy option list: either a plain
// label or a full record. Only the reconciler should look inside.
type LegacyOption struct {
	Label  string
	Record *OptionRecord
}

// LabelOption wraps a plain label
func LabelOption(label string) LegacyOption {
	return LegacyOption{Label: label}
}

// RecordOption wraps a record
func RecordOption(r OptionRecord) LegacyOption {
	return LegacyOption{Record: &r}
}

// LabelOptions wraps a list of plain labels
func LabelOptions(labels ...string) []LegacyOption {
	out := make([]LegacyOption, len(labels))
	for i, l := range labels {
		out[i] = LabelOption(l)
	}
	return out
}

// IsRecord reports whether the element arrived as a record
func (o LegacyOption) IsRecord() bool {
	return o.Record != nil
}

// Text returns the label, or the record text for record elements
func (o LegacyOption) Text() string {
	if o.Record != nil {
		return o.Record.Text
	}
	return o.Label
}

func (o LegacyOption) MarshalJSON() ([]byte, error) {
	if o.Record != nil {
		return json.Marshal(o.Record)
	}
	return json.Marshal(o.Label)
}

func (o *LegacyOption) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*o = LegacyOption{}
	switch {
	case len(data) == 0:
		return fmt.Errorf("option: empty value")
	case data[0] == '"':
		return json.Unmarshal(data, &o.Label)
	case data[0] == '{':
		var r OptionRecord
		if err := json.Unmarshal(data, &r); err != nil {
			return err
		}
		o.Record = &r
		return nil
	case bytes.Equal(data, []byte("null")):
		// null is a record with nothing in it; the reconciler fills the text
		o.Record = &OptionRecord{}
		return nil
	default:
		return fmt.Errorf("option: unsupported JSON value %s", data)
	}
}

func (o LegacyOption) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if o.Record != nil {
		return bson.MarshalValue(*o.Record)
	}
	return bson.MarshalValue(o.Label)
}

func (o *LegacyOption) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	*o = LegacyOption{}
	switch t {
	case bsontype.String:
		o.Label = bson.RawValue{Type: t, Value: data}.StringValue()
		return nil
	case bsontype.EmbeddedDocument:
		var r OptionRecord
		if err := bson.Unmarshal(data, &r); err != nil {
			return err
		}
		o.Record = &r
		return nil
	case bsontype.Null, bsontype.Undefined:
		o.Record = &OptionRecord{}
		return nil
	default:
		return fmt.Errorf("option: unsupported BSON type %s", t)
	}
}
