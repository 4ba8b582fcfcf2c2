package clientsession

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// payload is the plaintext sealed into the cookie.
type payload struct {
	ID                  string     `json:"id"`
	CreationTime        int64      `json:"creationTime"`
	LastAccessedTime    int64      `json:"lastAccessedTime"`
	MaxInactiveInterval int        `json:"maxInactiveInterval"`
	Attributes          Attributes `json:"attributes"`
}

// rawPayload mirrors payload with pointers so missing fields are detectable.
type rawPayload struct {
	ID                  *string         `json:"id"`
	CreationTime        *int64          `json:"creationTime"`
	LastAccessedTime    *int64          `json:"lastAccessedTime"`
	MaxInactiveInterval *int            `json:"maxInactiveInterval"`
	Attributes          json.RawMessage `json:"attributes"`
}

func marshalPayload(s *Session) ([]byte, error) {
	attrs := s.attrs
	if attrs == nil {
		attrs = Attributes{}
	}
	return json.Marshal(payload{
		ID:                  s.id,
		CreationTime:        s.createdAt.UnixMilli(),
		LastAccessedTime:    s.lastAccessedAt.UnixMilli(),
		MaxInactiveInterval: intervalSeconds(s.maxInactive),
		Attributes:          attrs,
	})
}

func unmarshalPayload(data []byte) (payload, error) {
	var raw rawPayload
	if err := json.Unmarshal(data, &raw); err != nil {
		return payload{}, errors.Join(ErrSchema, err)
	}

	switch {
	case raw.ID == nil:
		return payload{}, fmt.Errorf("%w: missing id", ErrSchema)
	case *raw.ID == "":
		return payload{}, fmt.Errorf("%w: empty id", ErrSchema)
	case raw.CreationTime == nil:
		return payload{}, fmt.Errorf("%w: missing creationTime", ErrSchema)
	case raw.LastAccessedTime == nil:
		return payload{}, fmt.Errorf("%w: missing lastAccessedTime", ErrSchema)
	case raw.MaxInactiveInterval == nil:
		return payload{}, fmt.Errorf("%w: missing maxInactiveInterval", ErrSchema)
	case *raw.LastAccessedTime < *raw.CreationTime:
		return payload{}, fmt.Errorf("%w: lastAccessedTime precedes creationTime", ErrSchema)
	}

	attrs := Attributes{}
	trimmed := bytes.TrimSpace(raw.Attributes)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return payload{}, fmt.Errorf("%w: attributes must be an object", ErrSchema)
	}
	if err := unmarshalValues(trimmed, &attrs); err != nil {
		return payload{}, errors.Join(ErrSchema, err)
	}

	return payload{
		ID:                  *raw.ID,
		CreationTime:        *raw.CreationTime,
		LastAccessedTime:    *raw.LastAccessedTime,
		MaxInactiveInterval: *raw.MaxInactiveInterval,
		Attributes:          attrs,
	}, nil
}

// unmarshalValues decodes JSON keeping numbers as json.Number so integer
// attributes survive a round trip without float rounding.
func unmarshalValues(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after attributes object")
	}
	return nil
}

func intervalSeconds(d time.Duration) int {
	return int(d / time.Second)
}
