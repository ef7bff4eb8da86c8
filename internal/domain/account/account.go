// Package account defines chat users, their per-tenant language and the
// credentials used to link them to the external account service.
package account

import (
	"crypto/hmac"
	"crypto/md5" //nolint:gosec // password derivation must match accounts already issued by the service
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrLinkFailed is returned when neither registration nor login yields a key.
var ErrLinkFailed = errors.New("account: link failed")

// Language is a user's preferred content language.
type Language string

const (
	LanguageZH Language = "zh"
	LanguageEN Language = "en"
)

// DefaultLanguage applies when a user has no subscription in the tenant.
const DefaultLanguage = LanguageZH

// ParseLanguage accepts the language codes a user can switch to.
func ParseLanguage(code string) (Language, bool) {
	switch Language(strings.ToLower(strings.TrimSpace(code))) {
	case LanguageZH:
		return LanguageZH, true
	case LanguageEN:
		return LanguageEN, true
	}
	return "", false
}

// User is the chat user behind an inbound event.
type User struct {
	ID       int64
	Username string // without the leading "@"
}

// DisplayName returns the stored form of the username ("@name" or "").
func (u User) DisplayName() string {
	if u.Username == "" {
		return ""
	}
	return "@" + u.Username
}

// Identity is the combined view of a user's tenant-scoped language and
// globally shared external key. ExternalKey is empty when the user is not
// linked yet.
type Identity struct {
	Language    Language
	ExternalKey string
}

// Linked reports whether the user has an external key.
func (i Identity) Linked() bool { return i.ExternalKey != "" }

const (
	usernamePrefix = "tg"
	passwordSuffix = "Aa1!" // satisfies the service's complexity policy
	passwordHexLen = 12
)

// Result codes returned by the external account service.
const (
	CodeOK                = 0
	CodeAlreadyRegistered = 1013
)

// Reply is the decoded answer of a register or login call.
type Reply struct {
	Code    int
	Message string
	Key     string // data.userkey
}

// Success reports whether the reply carries a usable key.
func (r Reply) Success() bool { return r.Code == CodeOK && r.Key != "" }

// Credentials are the derived login for the external account service.
type Credentials struct {
	Username string
	Password string
}

// DeriveCredentials returns the username and password for a user id. The
// result depends only on the id and the shared secret, so the same external
// account is reached from every tenant and nothing needs to be stored.
func DeriveCredentials(userID int64, secret string) Credentials {
	id := strconv.FormatInt(userID, 10)
	sum := md5.Sum([]byte(id + "-" + secret)) //nolint:gosec // see import
	return Credentials{
		Username: usernamePrefix + id,
		Password: hex.EncodeToString(sum[:])[:passwordHexLen] + passwordSuffix,
	}
}

// Sign returns the hex HMAC-SHA256 of body serialized as k=v pairs joined by
// "&" in lexicographic key order.
func Sign(body map[string]string, secret string) string {
	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%s=%s", k, body[k])
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(pairs, "&")))
	return hex.EncodeToString(mac.Sum(nil))
}
