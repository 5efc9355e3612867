// Package twitter fetches statuses and profiles from Twitter and posts on behalf of the bot account.
//
// Every operation returns either the chat reply or a *Error tagged with a Kind; Message turns the
// error into the sentence shown to the user.
package twitter

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
)

const (
	// MaxStatusLength is the longest status Twitter accepts, in characters.
	MaxStatusLength = 280
	// DefaultAccountLabel names the bot account in the post confirmation.
	DefaultAccountLabel = "M17"

	defaultTimelineCount = 20
	maxTimelineCount     = 200
	msgNotOperator       = "You are not a channel operator."
)

// Caller is who invoked a command and which privileges the host granted them.
type Caller struct {
	Nick     string
	Operator bool
	Admin    bool
}

// Bridge runs the Twitter commands. The authenticated API is built on first use and kept until a
// call fails with KindAuth, after which the next call dials again.
type Bridge struct {
	creds Credentials
	dial  Dialer
	label string
	log   *log.Entry

	mu  sync.Mutex
	api API
}

type Option func(*Bridge)

func WithDialer(d Dialer) Option {
	return func(b *Bridge) {
		if d != nil {
			b.dial = d
		}
	}
}

func WithAccountLabel(label string) Option {
	return func(b *Bridge) {
		if label = strings.TrimSpace(label); label != "" {
			b.label = label
		}
	}
}

func WithLogger(entry *log.Entry) Option {
	return func(b *Bridge) {
		if entry != nil {
			b.log = entry
		}
	}
}

// New validates creds and returns a Bridge. Missing credentials are a configuration error.
func New(creds Credentials, opts ...Option) (*Bridge, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	b := &Bridge{
		creds: creds,
		dial:  OAuthDialer(nil),
		label: DefaultAccountLabel,
		log:   log.NewEntry(log.StandardLogger()),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func (b *Bridge) client() (API, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.api != nil {
		return b.api, nil
	}
	api, err := b.dial(b.creds)
	if err != nil {
		if KindOf(err) == KindUpstream {
			err = newError(OpStatus, KindAuth, err)
		}
		return nil, err
	}
	b.api = api
	return api, nil
}

// observe drops the cached client when err says the credentials were rejected.
func (b *Bridge) observe(err error) error {
	if err != nil && KindOf(err) == KindAuth {
		b.mu.Lock()
		b.api = nil
		b.mu.Unlock()
		b.log.WithError(err).Warn("twitter rejected credentials, dropping cached client")
	}
	return err
}

// FetchStatus answers "twit <arg>": a numeric arg is a status id, otherwise "<handle> [n]" picks the
// n-th most recent status of handle (1-based, default 1).
func (b *Bridge) FetchStatus(arg string) (string, error) {
	parts := strings.Fields(arg)
	if len(parts) == 0 {
		return "", newError(OpStatus, KindInvalidInput, errors.New("no handle or status id"))
	}
	if isDigits(parts[0]) {
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return "", newError(OpStatus, KindInvalidInput, err)
		}
		return b.FetchStatusByID(id)
	}
	handle := strings.TrimPrefix(parts[0], "@")
	index := 0
	if len(parts) > 1 && isDigits(parts[1]) {
		n, err := strconv.Atoi(parts[1])
		if err != nil || n < 1 {
			return "", newError(OpStatus, KindInvalidInput, errors.New("timeline index must be 1 or more"))
		}
		index = n - 1
	}
	return b.fetchTimelineEntry(handle, index)
}

// FetchStatusByID answers both "twit <id>" and pasted status links.
func (b *Bridge) FetchStatusByID(id int64) (string, error) {
	api, err := b.client()
	if err != nil {
		return "", err
	}
	s, err := api.Status(id)
	if err != nil {
		return "", b.observe(err)
	}
	return formatStatus(s)
}

func (b *Bridge) fetchTimelineEntry(handle string, index int) (string, error) {
	if index >= maxTimelineCount {
		return "", newError(OpStatus, KindNotFound, errors.New("timeline index beyond the last 200 statuses"))
	}
	api, err := b.client()
	if err != nil {
		return "", err
	}
	count := defaultTimelineCount
	if index+1 > count {
		count = index + 1
	}
	statuses, err := api.Timeline(handle, count)
	if err != nil {
		return "", b.observe(err)
	}
	if index >= len(statuses) {
		return "", newError(OpStatus, KindNotFound, errors.New("timeline has "+strconv.Itoa(len(statuses))+" statuses"))
	}
	return formatStatus(&statuses[index])
}

// UserInfo answers "twitinfo <handle>". A leading @ is ignored.
func (b *Bridge) UserInfo(handle string) (string, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return "", newError(OpUser, KindInvalidInput, errors.New("no handle"))
	}
	api, err := b.client()
	if err != nil {
		return "", err
	}
	p, err := api.User(handle)
	if err != nil {
		return "", b.observe(err)
	}
	return formatProfile(handle, p), nil
}

// Post answers "tweet <message>". Only channel operators who are also bot admins may post; an
// operator without admin rights gets no reply at all. The caller's nick is signed onto the status.
func (b *Bridge) Post(c Caller, msg string) (string, error) {
	if !c.Operator {
		return msgNotOperator, nil
	}
	if !c.Admin {
		return "", nil
	}
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return "", newError(OpPost, KindInvalidInput, errors.New("empty message"))
	}
	update := msg + " ^" + c.Nick
	if n := utf8.RuneCountInString(update); n > MaxStatusLength {
		return "Please shorten the length of your message by: " + strconv.Itoa(n-MaxStatusLength) + " characters.", nil
	}
	api, err := b.client()
	if err != nil {
		return "", err
	}
	me, err := api.Me()
	if err != nil {
		return "", b.observe(err)
	}
	if err := api.Update(update); err != nil {
		return "", b.observe(err)
	}
	b.log.WithFields(log.Fields{"account": me.Handle, "nick": c.Nick}).Info("posted status")
	return "Successfully posted to " + b.label + " twitter account.", nil
}
