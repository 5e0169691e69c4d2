// Package receipt turns an order's line list into the scannable
// confirmation payload printed on claim slips. Generation is pure and
// deterministic: the same lines always produce the same payload, so the
// regular and pre-order halves of a split checkout never share content.
package receipt

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"

	"github.com/campuswear/uniform-orderflow/internal/orders"
)

type payload struct {
	Version int               `json:"v"`
	Lines   []orders.LineItem `json:"lines"`
	Digest  string            `json:"digest"`
}

// Generate encodes the line list as a base64 JSON payload carrying a
// digest of its own content.
func Generate(lines []orders.LineItem) string {
	body, _ := json.Marshal(lines)
	sum := sha256.Sum256(body)

	p := payload{
		Version: 1,
		Lines:   lines,
		Digest:  hex.EncodeToString(sum[:8]),
	}
	raw, _ := json.Marshal(p)
	return base64.StdEncoding.EncodeToString(raw)
}

// Verify decodes a payload and checks its digest against the embedded
// line list. Used by the claim desk scanner flow.
func Verify(encoded string) ([]orders.LineItem, bool) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, false
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false
	}
	body, _ := json.Marshal(p.Lines)
	sum := sha256.Sum256(body)
	if hex.EncodeToString(sum[:8]) != p.Digest {
		return nil, false
	}
	return p.Lines, true
}
