package twitter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	gotwitter "github.com/dghubble/go-twitter/twitter"
)

// Kind tags why a Twitter operation failed.
type Kind int

const (
	KindUpstream Kind = iota
	KindAuth
	KindNotFound
	KindRateLimited
	KindMalformed
	KindMissingText
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not-found"
	case KindRateLimited:
		return "rate-limited"
	case KindMalformed:
		return "malformed"
	case KindMissingText:
		return "missing-text"
	case KindInvalidInput:
		return "invalid-input"
	default:
		return "upstream"
	}
}

// Op names the user-facing operation, which picks the wording of the reply.
type Op string

const (
	OpStatus Op = "status"
	OpUser   Op = "user"
	OpPost   Op = "post"
)

type Error struct {
	Kind Kind
	Op   Op
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("twitter: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("twitter: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(op Op, kind Kind, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the tagged kind of err, or KindUpstream for untagged errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}

const (
	msgAuth          = "Could not authenticate with Twitter. Are the API keys configured properly?"
	msgRateLimited   = "Twitter rate limit reached, try again later."
	msgMalformed     = "Twitter sent a response I could not read."
	msgMissingText   = "I couldn't find the tweet text. :/"
	msgInvalidStatus = "You have input an invalid user."
	msgInvalidUser   = "You have inputted an invalid user."
	msgPostFailed    = "Could not post to Twitter."
)

// Message maps err to the sentence shown in chat.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		e = &Error{Kind: KindUpstream, Op: OpStatus, Err: err}
	}
	switch e.Kind {
	case KindAuth:
		return msgAuth
	case KindRateLimited:
		return msgRateLimited
	case KindMalformed:
		return msgMalformed
	case KindMissingText:
		return msgMissingText
	}
	switch e.Op {
	case OpUser:
		return msgInvalidUser
	case OpPost:
		return msgPostFailed
	default:
		return msgInvalidStatus
	}
}

// API error codes, see developer.twitter.com/en/support/twitter-api/error-troubleshooting.
var apiCodeKinds = map[int]Kind{
	32:  KindAuth,
	89:  KindAuth,
	99:  KindAuth,
	135: KindAuth,
	215: KindAuth,
	88:  KindRateLimited,
	17:  KindNotFound,
	34:  KindNotFound,
	50:  KindNotFound,
	63:  KindNotFound,
	144: KindNotFound,
	179: KindNotFound,
}

// classify tags an error returned by go-twitter using the API error codes first, then the
// HTTP status, then the decode failure type.
func classify(op Op, resp *http.Response, err error) error {
	if err == nil && (resp == nil || resp.StatusCode < 300) {
		return nil
	}
	var apiErr gotwitter.APIError
	if errors.As(err, &apiErr) {
		for _, d := range apiErr.Errors {
			if k, ok := apiCodeKinds[d.Code]; ok {
				return newError(op, k, err)
			}
		}
	}
	if resp != nil && resp.StatusCode >= 300 {
		if err == nil {
			err = fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return newError(op, KindAuth, err)
		case http.StatusNotFound:
			return newError(op, KindNotFound, err)
		case http.StatusTooManyRequests:
			return newError(op, KindRateLimited, err)
		}
		return newError(op, KindUpstream, err)
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return newError(op, KindMalformed, err)
	}
	return newError(op, KindUpstream, err)
}
