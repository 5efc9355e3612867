package plugintwitter

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Hafuunano/Protocol-ConvertTool/protocol"
	"github.com/stretchr/testify/require"

	"github.com/kc1awv/Plugin-Collections/lib/twitter"
	"github.com/kc1awv/Plugin-Collections/middlewares/passive"
)

// fakeCtx records what a handler said back.
type fakeCtx struct {
	text  string
	user  string
	group string
	nick  string

	replies []string
	sent    []string
}

func (f *fakeCtx) PlainText() string      { return f.text }
func (f *fakeCtx) UserID() string         { return f.user }
func (f *fakeCtx) GroupID() string        { return f.group }
func (f *fakeCtx) SenderNickname() string { return f.nick }

func (f *fakeCtx) Reply(m protocol.Message) error {
	var b strings.Builder
	for _, seg := range m {
		if s, ok := seg.Data["text"].(string); ok {
			b.WriteString(s)
		}
	}
	f.replies = append(f.replies, b.String())
	return nil
}

func (f *fakeCtx) SendPlainMessage(text string) error {
	f.sent = append(f.sent, text)
	return nil
}

func groupMsg(group, text string) *fakeCtx {
	return &fakeCtx{text: text, user: "42", group: group, nick: "KC1AWV"}
}

type stubAPI struct {
	posted []string
}

func (s *stubAPI) Status(id int64) (*twitter.Status, error) {
	if id != statusID {
		return nil, &twitter.Error{Kind: twitter.KindNotFound, Op: twitter.OpStatus}
	}
	return &twitter.Status{ID: id, Handle: "kc1awv", FullText: "hello"}, nil
}

func (s *stubAPI) Timeline(string, int) ([]twitter.Status, error) { return nil, nil }

func (s *stubAPI) User(handle string) (*twitter.Profile, error) {
	return &twitter.Profile{Handle: handle, Name: "M17 Project", ID: 7, Friends: 12, Followers: 3400}, nil
}

func (s *stubAPI) Me() (*twitter.Profile, error) { return &twitter.Profile{Handle: "m17_project"}, nil }

func (s *stubAPI) Update(text string) error {
	s.posted = append(s.posted, text)
	return nil
}

const (
	statusID   = 381982018927853568
	statusLink = "https://twitter.com/kc1awv/status/381982018927853568"
	statusLine = "@kc1awv: hello <" + statusLink + ">"
)

func resetBridge() {
	bridgeMu.Lock()
	bridge, bridgeErr, bridgeFailed = nil, nil, time.Time{}
	bridgeMu.Unlock()
}

func useLoader(t *testing.T, load func() (*twitter.Bridge, error)) {
	t.Helper()
	prev := loadBridge
	loadBridge = load
	resetBridge()
	t.Cleanup(func() {
		loadBridge = prev
		resetBridge()
	})
}

func useAPI(t *testing.T, api twitter.API) {
	t.Helper()
	b, err := twitter.New(
		twitter.Credentials{ConsumerKey: "a", ConsumerSecret: "b", AccessToken: "c", AccessTokenSecret: "d"},
		twitter.WithDialer(func(twitter.Credentials) (twitter.API, error) { return api, nil }),
	)
	require.NoError(t, err)
	useLoader(t, func() (*twitter.Bridge, error) { return b, nil })
}

func useStore(t *testing.T) *passive.Store {
	t.Helper()
	s, err := passive.Open(filepath.Join(t.TempDir(), "passive.db"))
	require.NoError(t, err)
	prev := passiveStore
	passiveStore = func() *passive.Store { return s }
	t.Cleanup(func() { passiveStore = prev })
	return s
}

func TestHandleMessage_Routing(t *testing.T) {
	useAPI(t, &stubAPI{})
	useStore(t)

	tests := []struct {
		name    string
		text    string
		sent    []string
		replies []string
	}{
		{name: "twit by id", text: ".twit 381982018927853568", sent: []string{statusLine}},
		{name: "twit with link", text: ".twit " + statusLink, sent: []string{statusLine}},
		{name: "bare link", text: "look " + statusLink, sent: []string{statusLine}},
		{name: "link after another command", text: "!wow " + statusLink, sent: []string{statusLine}},
		{name: "link without scheme after command", text: ".see twitter.com/kc1awv/status/381982018927853568", sent: []string{statusLine}},
		{name: "twitinfo", text: ".twitinfo @m17_project", replies: []string{
			"@m17_project: M17 Project. ID: 7. Friend Count: 12. Followers: 3,400. Favourites: 0. Location: . Description: ",
		}},
		{name: "twit unknown id", text: ".twit 1", replies: []string{"You have input an invalid user."}},
		{name: "tweet is not handled here", text: ".tweet " + statusLink},
		{name: "twitauto is not handled here", text: ".twitauto off"},
		{name: "plain chat", text: "good morning"},
		{name: "other command", text: ".duid 3122790"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := groupMsg("1001", tt.text)
			handleMessage(ctx)
			require.Equal(t, tt.sent, ctx.sent)
			require.Equal(t, tt.replies, ctx.replies)
		})
	}
}

func TestHandleMessage_PassiveSwitch(t *testing.T) {
	useAPI(t, &stubAPI{})
	s := useStore(t)
	require.NoError(t, s.Set("1001", false, "42"))

	ctx := groupMsg("1001", "!wow "+statusLink)
	handleMessage(ctx)
	require.Empty(t, ctx.sent)
	require.Empty(t, ctx.replies)

	ctx = groupMsg("1002", "!wow "+statusLink)
	handleMessage(ctx)
	require.Equal(t, []string{statusLine}, ctx.sent)

	// Explicit .twit ignores the switch.
	ctx = groupMsg("1001", ".twit "+statusLink)
	handleMessage(ctx)
	require.Equal(t, []string{statusLine}, ctx.sent)
}

func TestHandleTweet(t *testing.T) {
	api := &stubAPI{}
	useAPI(t, api)

	ctx := groupMsg("1001", ".tweet Hello World!")
	handleTweet(ctx, hostGranted)
	require.Equal(t, []string{"Successfully posted to M17 twitter account."}, ctx.replies)
	require.Equal(t, []string{"Hello World! ^KC1AWV"}, api.posted)

	ctx = groupMsg("1001", ".tweet "+strings.Repeat("a", twitter.MaxStatusLength))
	handleTweet(ctx, hostGranted)
	require.Equal(t, []string{"Please shorten the length of your message by: 8 characters."}, ctx.replies)
	require.Len(t, api.posted, 1)

	ctx = groupMsg("1001", ".tweet hi")
	handleTweet(ctx, twitter.Caller{Operator: true})
	require.Empty(t, ctx.replies, "operator without admin rights gets no reply")

	ctx = groupMsg("1001", ".tweet hi")
	handleTweet(ctx, twitter.Caller{})
	require.Equal(t, []string{"You are not a channel operator."}, ctx.replies)
	require.Len(t, api.posted, 1)

	ctx = groupMsg("1001", ".twit hi")
	handleTweet(ctx, hostGranted)
	require.Empty(t, ctx.replies)
}

func TestHandleTweet_BridgeUnavailable(t *testing.T) {
	useLoader(t, func() (*twitter.Bridge, error) {
		return nil, &twitter.Error{Kind: twitter.KindAuth, Op: twitter.OpPost, Err: errors.New("no keys")}
	})
	ctx := groupMsg("1001", ".tweet hi")
	handleTweet(ctx, hostGranted)
	require.Equal(t, []string{"Could not authenticate with Twitter. Are the API keys configured properly?"}, ctx.replies)
}

func TestHandleAutoExpand(t *testing.T) {
	s := useStore(t)

	ctx := groupMsg("1001", ".twitauto off")
	handleAutoExpand(ctx)
	require.Equal(t, []string{"Tweet link expansion is off for this group."}, ctx.replies)
	on, err := s.Enabled("1001")
	require.NoError(t, err)
	require.False(t, on)

	ctx = groupMsg("1001", ".twitauto ON")
	handleAutoExpand(ctx)
	require.Equal(t, []string{"Tweet link expansion is on for this group."}, ctx.replies)
	on, err = s.Enabled("1001")
	require.NoError(t, err)
	require.True(t, on)

	ctx = groupMsg("1001", ".twitauto maybe")
	handleAutoExpand(ctx)
	require.Equal(t, []string{"Usage: .twitauto on|off"}, ctx.replies)

	ctx = groupMsg("", ".twitauto off")
	handleAutoExpand(ctx)
	require.Equal(t, []string{"Use .twitauto in a group."}, ctx.replies)

	ctx = groupMsg("1001", "hello")
	handleAutoExpand(ctx)
	require.Empty(t, ctx.replies)
}

func TestGetBridge_RetriesAfterFailure(t *testing.T) {
	calls := 0
	fail := true
	b, err := twitter.New(
		twitter.Credentials{ConsumerKey: "a", ConsumerSecret: "b", AccessToken: "c", AccessTokenSecret: "d"},
		twitter.WithDialer(func(twitter.Credentials) (twitter.API, error) { return &stubAPI{}, nil }),
	)
	require.NoError(t, err)
	useLoader(t, func() (*twitter.Bridge, error) {
		calls++
		if fail {
			return nil, errors.New("config unreadable")
		}
		return b, nil
	})

	_, err = getBridge()
	require.Error(t, err)
	_, err = getBridge()
	require.Error(t, err)
	require.Equal(t, 1, calls, "failure is reused inside the retry window")

	fail = false
	bridgeMu.Lock()
	bridgeFailed = time.Now().Add(-retryAfter)
	bridgeMu.Unlock()

	got, err := getBridge()
	require.NoError(t, err)
	require.Same(t, b, got)
	_, err = getBridge()
	require.NoError(t, err)
	require.Equal(t, 2, calls, "success is kept")
}
