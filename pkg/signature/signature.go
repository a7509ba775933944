package signature

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

const (
	// TokenHeader carries the session token on signed requests
	TokenHeader = "User-Token"
	// AuthHeaderName carries "<scheme> <ts> <signature>"
	AuthHeaderName = "X-Auth-Token"
	// Scheme is the tag that opens the auth header value
	Scheme = "Ccxc-Auth"

	// passSalt keys the client-side password hash
	passSalt = "ccxcccxc-ccxcccxc"
)

// HMACSHA1Base64 returns base64(HMAC-SHA1(key, content)) with standard padding.
func HMACSHA1Base64(content, key string) string {
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(content))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// UnsignedString builds the exact string that is signed for a request.
func UnsignedString(token string, ts int64, body []byte) string {
	return "token=" + token + "&ts=" + strconv.FormatInt(ts, 10) + "&bodyString=" + string(body)
}

// Generate signs a request body for the given session token and secret.
// body must be the bytes that are transmitted.
func Generate(token, secret string, ts int64, body []byte) string {
	return HMACSHA1Base64(UnsignedString(token, ts, body), secret)
}

// AuthHeader formats the X-Auth-Token header value
func AuthHeader(ts int64, sig string) string {
	return fmt.Sprintf("%s %d %s", Scheme, ts, sig)
}

// PassHash hashes a plaintext password before it is sent to the backend.
func PassHash(password string) string {
	return HMACSHA1Base64(password, passSalt)
}

// CanonicalJSON serialises a request body the way a browser JSON.stringify
// would: no HTML escaping and no trailing newline. A nil body, including
// a nil pointer, map or interface, becomes {}.
func CanonicalJSON(v any) ([]byte, error) {
	if isNil(v) {
		return []byte("{}"), nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		if len(raw) == 0 {
			return []byte("{}"), nil
		}
		return raw, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
