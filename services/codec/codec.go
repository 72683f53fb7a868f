package codec

import (
	// Go Internal Packages
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	// Local Packages
	errors "fraud-stream/errors"
	models "fraud-stream/models"
)

// payload is the wire shape of a transaction event. userId may be a string or an integer.
type payload struct {
	UserID    json.RawMessage `json:"userId"`
	Amount    json.RawMessage `json:"amount"`
	Timestamp *string         `json:"timestamp"`
}

// timestampLayouts are the ISO8601 forms accepted, tried in order. Values without
// an offset are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// Codec turns raw event payloads into transactions.
type Codec struct {
	now    func() time.Time
	strict bool
}

type Option func(*Codec)

// WithClock uses now as the ingestion time for payloads without a usable timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// WithStrictTimestamps rejects payloads whose timestamp cannot be parsed. Without
// it such payloads fall back to the ingestion time, which is all processing-time
// persistence needs.
func WithStrictTimestamps(strict bool) Option {
	return func(c *Codec) { c.strict = strict }
}

func NewCodec(opts ...Option) *Codec {
	c := &Codec{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Decode parses raw into a transaction. Every failure is a *errors.DecodeError.
func (c *Codec) Decode(raw []byte) (models.Transaction, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return models.Transaction{}, errors.NewDecodeError("malformed payload", err)
	}

	userID, err := decodeUserID(p.UserID)
	if err != nil {
		return models.Transaction{}, err
	}

	amount, err := decodeAmount(p.Amount)
	if err != nil {
		return models.Transaction{}, err
	}

	ts := c.now()
	if p.Timestamp != nil && *p.Timestamp != "" {
		parsed, err := parseTimestamp(*p.Timestamp)
		switch {
		case err == nil:
			ts = parsed
		case c.strict:
			return models.Transaction{}, errors.NewDecodeError("timestamp is not ISO8601", err)
		}
	}

	return models.Transaction{UserID: userID, Amount: amount, Timestamp: ts}, nil
}

func decodeUserID(raw json.RawMessage) (string, error) {
	if isAbsent(raw) {
		return "", errors.NewDecodeError("userId is missing", nil)
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", errors.NewDecodeError("userId is not a string", err)
		}
		if s == "" {
			return "", errors.NewDecodeError("userId is empty", nil)
		}
		return s, nil
	}

	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return "", errors.NewDecodeError("userId must be a string or an integer", err)
	}
	return strconv.FormatInt(n, 10), nil
}

func decodeAmount(raw json.RawMessage) (int64, error) {
	if isAbsent(raw) {
		return 0, errors.NewDecodeError("amount is missing", nil)
	}

	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, errors.NewDecodeError("amount must be an integer", err)
	}
	if n < 0 {
		return 0, errors.NewDecodeError("amount cannot be negative", nil)
	}
	return n, nil
}

func parseTimestamp(v string) (time.Time, error) {
	var err error
	for _, layout := range timestampLayouts {
		var ts time.Time
		if ts, err = time.Parse(layout, v); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, err
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
