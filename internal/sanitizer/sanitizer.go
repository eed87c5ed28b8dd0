package sanitizer

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// salt makes hashes stable within a process so log lines can be correlated,
// without letting them be compared across runs.
var salt = newSalt()

func newSalt() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "rowmap"
	}
	return hex.EncodeToString(buf)
}

var sensitiveParams = map[string]struct{}{
	"access_token":     {},
	"api_key":          {},
	"apikey":           {},
	"auth":             {},
	"key":              {},
	"password":         {},
	"secret":           {},
	"sig":              {},
	"signature":        {},
	"token":            {},
	"x-amz-credential": {},
	"x-amz-signature":  {},
}

// URL returns raw with its userinfo password and the values of credential-like
// query parameters replaced by [S256:hash]. Values that are not URLs are returned unchanged.
func URL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	var secrets []any
	if u.User != nil {
		if password, ok := u.User.Password(); ok {
			secrets = append(secrets, password)
		}
	}
	for name, values := range u.Query() {
		if _, ok := sensitiveParams[strings.ToLower(name)]; !ok {
			continue
		}
		for _, v := range values {
			secrets = append(secrets, v, url.QueryEscape(v))
		}
	}

	return string(Redact([]byte(raw), secrets))
}

// Redact replaces every occurrence of the given string values in data with [S256:hash].
// Longer values win when they overlap.
func Redact(data []byte, redactValues []any) []byte {
	return redactOutput(data, redactValues, salt)
}

func redactOutput(data []byte, redactValues []any, salt string) []byte {
	if len(redactValues) == 0 || len(data) == 0 {
		return data
	}

	targets := buildRedactionTargets(redactValues, salt)
	if len(targets) == 0 {
		return data
	}

	var out []byte
	for index := 0; index < len(data); {
		target := matchRedactionTargetAt(data, index, targets)
		if target == nil {
			if out != nil {
				out = append(out, data[index])
			}
			index++
			continue
		}

		if out == nil {
			out = make([]byte, 0, len(data))
			out = append(out, data[:index]...)
		}

		out = append(out, target.Replacement...)
		index += len(target.Needle)
	}

	if out != nil {
		return out
	}
	return data
}

func matchRedactionTargetAt(data []byte, index int, targets []redactionTarget) *redactionTarget {
	remaining := data[index:]
	for targetIndex := range targets {
		target := &targets[targetIndex]
		if bytes.HasPrefix(remaining, target.Needle) {
			return target
		}
	}
	return nil
}

func hashToken(secret, salt string) []byte {
	sum := sha256.Sum256([]byte(salt + secret))
	return []byte("[S256:" + hex.EncodeToString(sum[:8]) + "]")
}

type redactionTarget struct {
	Secret      string
	Needle      []byte
	Replacement []byte
}

func buildRedactionTargets(redactValues []any, salt string) []redactionTarget {
	unique := make(map[string]struct{}, len(redactValues))
	for _, value := range redactValues {
		secret, ok := value.(string)
		if !ok || secret == "" {
			continue
		}
		unique[secret] = struct{}{}
	}

	targets := make([]redactionTarget, 0, len(unique))
	for secret := range unique {
		targets = append(targets, redactionTarget{
			Secret:      secret,
			Needle:      []byte(secret),
			Replacement: hashToken(secret, salt),
		})
	}

	sort.Slice(targets, func(i, j int) bool {
		if len(targets[i].Needle) != len(targets[j].Needle) {
			return len(targets[i].Needle) > len(targets[j].Needle)
		}
		return targets[i].Secret < targets[j].Secret
	})

	return targets
}
