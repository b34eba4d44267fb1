package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Signer produces HMAC-SHA256 signatures over request parameters as required
// by the SIGNED endpoint security type.
type Signer struct {
	apiKey string
	secret string
}

func NewSigner(apiKey, secret string) *Signer {
	return &Signer{apiKey: apiKey, secret: secret}
}

// APIKey returns the key sent in the X-MBX-APIKEY header.
func (s *Signer) APIKey() string { return s.apiKey }

func (s *Signer) sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignQuery adds a timestamp (when missing) and the signature to the query
// values, returning the encoded query string for a signed REST call.
func (s *Signer) SignQuery(q url.Values) string {
	if q.Get("timestamp") == "" {
		q.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	}
	encoded := q.Encode()
	return encoded + "&signature=" + s.sign(encoded)
}

// SignParams adds apiKey, timestamp and signature to a websocket API request
// parameter map. The signature payload is the parameters sorted by key and
// joined as an HTTP query string.
func (s *Signer) SignParams(params map[string]any) map[string]any {
	out := make(map[string]any, len(params)+3)
	for k, v := range params {
		out[k] = v
	}
	out["apiKey"] = s.apiKey
	if _, ok := out["timestamp"]; !ok {
		out["timestamp"] = time.Now().UnixMilli()
	}

	keys := make([]string, 0, len(out))
	for k := range out {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, url.QueryEscape(fmt.Sprint(out[k]))))
	}
	out["signature"] = s.sign(strings.Join(pairs, "&"))
	return out
}
