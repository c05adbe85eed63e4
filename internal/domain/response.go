// Response aggregate for board items.
//
// Each request carries a denormalized "response" document: who has joined in
// (prayed / offered help), the derived participant count, and the optional
// fulfillment testimony. The document is a discriminated union keyed by the
// request's board type; exactly one variant is populated. Both variants share
// the Participation core, so the toggle/fulfill transitions are written once
// and the invariants (count == len(participants), no duplicates, message only
// while fulfilled) are enforced in one place, unit-testable without a
// database.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

// Participation is the shared mutable core of a response variant: the unique,
// sorted participant set, the count derived from it, the fulfillment message,
// and the last mutation timestamp.
type Participation struct {
	Count         int        `json:"count"`
	Participants  []string   `json:"participants,omitempty"`
	Message       *string    `json:"message,omitempty"`
	LastUpdatedAt *time.Time `json:"last_updated_at,omitempty"`
}

// Has reports whether userID is a current participant.
func (p *Participation) Has(userID string) bool {
	i := sort.SearchStrings(p.Participants, userID)
	return i < len(p.Participants) && p.Participants[i] == userID
}

// Toggle flips userID's membership, keeps the set sorted and unique,
// recomputes Count, and stamps LastUpdatedAt. It reports whether the user is
// a participant after the call.
func (p *Participation) Toggle(userID string, now time.Time) bool {
	i := sort.SearchStrings(p.Participants, userID)
	joined := false
	if i < len(p.Participants) && p.Participants[i] == userID {
		p.Participants = append(p.Participants[:i], p.Participants[i+1:]...)
	} else {
		p.Participants = append(p.Participants, "")
		copy(p.Participants[i+1:], p.Participants[i:])
		p.Participants[i] = userID
		joined = true
	}
	p.Count = len(p.Participants)
	t := now.UTC()
	p.LastUpdatedAt = &t
	return joined
}

// PrayerResponse is the response variant for prayer requests: Count is the
// prayer count and Participants the who-has-prayed set.
type PrayerResponse struct {
	Participation
}

// NeedResponse is the response variant for material needs: Count is the
// helper count and Participants the who-has-offered set.
type NeedResponse struct {
	Participation
}

// ResponseState is the JSON column stored per request. Exactly one variant is
// non-nil, matching the owning request's board type.
type ResponseState struct {
	Prayer *PrayerResponse `json:"prayer,omitempty"`
	Need   *NeedResponse   `json:"need,omitempty"`
}

// NewResponseState returns an empty aggregate for the given board type.
func NewResponseState(t BoardType) ResponseState {
	switch t {
	case BoardNeed:
		return ResponseState{Need: &NeedResponse{}}
	default:
		return ResponseState{Prayer: &PrayerResponse{}}
	}
}

// Kind returns the board type this aggregate belongs to.
func (s *ResponseState) Kind() BoardType {
	if s.Need != nil {
		return BoardNeed
	}
	return BoardPrayer
}

// Active returns the populated variant's participation core, initializing the
// prayer variant for zero-value documents read from legacy rows.
func (s *ResponseState) Active() *Participation {
	if s.Need != nil {
		return &s.Need.Participation
	}
	if s.Prayer == nil {
		s.Prayer = &PrayerResponse{}
	}
	return &s.Prayer.Participation
}

// SetMessage attaches the fulfillment testimony to the active variant.
func (s *ResponseState) SetMessage(msg string, now time.Time) {
	p := s.Active()
	p.Message = &msg
	t := now.UTC()
	p.LastUpdatedAt = &t
}

// ClearMessage drops the testimony, restoring the message-implies-fulfilled
// invariant when a request is reopened.
func (s *ResponseState) ClearMessage(now time.Time) {
	p := s.Active()
	p.Message = nil
	t := now.UTC()
	p.LastUpdatedAt = &t
}

// Value implements driver.Valuer so GORM can store the aggregate as a JSON
// TEXT column.
func (s ResponseState) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner. NULL and empty values decode to the zero
// aggregate so rows created before the column existed remain readable.
func (s *ResponseState) Scan(src any) error {
	if src == nil {
		*s = ResponseState{}
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("response state: unsupported column type %T", src)
	}
	if len(b) == 0 {
		*s = ResponseState{}
		return nil
	}
	return json.Unmarshal(b, s)
}

// StringList is a JSON-encoded list of strings stored in a TEXT column
// (used for user role names).
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		if len(v) == 0 {
			*l = nil
			return nil
		}
		return json.Unmarshal(v, l)
	case string:
		if v == "" {
			*l = nil
			return nil
		}
		return json.Unmarshal([]byte(v), l)
	}
	return errors.New("string list: unsupported column type")
}
