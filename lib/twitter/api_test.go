package twitter

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// redirect sends every request to the test server regardless of the host go-twitter targets.
type redirect struct {
	target *url.URL
	next   http.RoundTripper
}

func (r redirect) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = r.target.Scheme
	req.URL.Host = r.target.Host
	req.Host = r.target.Host
	return r.next.RoundTrip(req)
}

func newRESTAPI(t *testing.T, h http.HandlerFunc) API {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	api, err := OAuthDialer(&http.Client{Transport: redirect{target: u, next: http.DefaultTransport}})(testCreds)
	require.NoError(t, err)
	return api
}

func TestOAuthDialer_MissingCredentials(t *testing.T) {
	_, err := OAuthDialer(nil)(Credentials{})
	require.Equal(t, KindAuth, KindOf(err))
}

func TestRESTStatus(t *testing.T) {
	api := newRESTAPI(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/1.1/statuses/show.json", r.URL.Path)
		require.Equal(t, "381982018927853568", r.URL.Query().Get("id"))
		require.Equal(t, "extended", r.URL.Query().Get("tweet_mode"))
		require.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "OAuth "))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 381982018927853568,
			"id_str": "381982018927853568",
			"full_text": "pic https://t.co/p link https://t.co/l",
			"user": {"screen_name": "kc1awv"},
			"entities": {
				"media": [{"url": "https://t.co/p", "media_url": "http://pbs.twimg.com/media/p.jpg"}],
				"urls": [{"url": "https://t.co/l", "expanded_url": "https://kc1awv.net"}]
			}
		}`))
	})
	s, err := api.Status(381982018927853568)
	require.NoError(t, err)
	require.Equal(t, "kc1awv", s.Handle)
	got, err := formatStatus(s)
	require.NoError(t, err)
	require.Equal(t, "@kc1awv: pic http://pbs.twimg.com/media/p.jpg link https://kc1awv.net <https://twitter.com/kc1awv/status/381982018927853568>", got)
}

func TestRESTTimelineAndUser(t *testing.T) {
	api := newRESTAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/1.1/statuses/user_timeline.json":
			require.Equal(t, "m17_project", r.URL.Query().Get("screen_name"))
			require.Equal(t, "20", r.URL.Query().Get("count"))
			_, _ = w.Write([]byte(`[{"id": 2, "full_text": "b", "user": {"screen_name": "m17_project"}},
				{"id": 1, "full_text": "a", "user": {"screen_name": "m17_project"}}]`))
		case "/1.1/users/show.json":
			_, _ = w.Write([]byte(`{"id": 99, "screen_name": "m17_project", "name": "M17", "friends_count": 10,
				"followers_count": 2048, "favourites_count": 5, "location": "", "description": "open radio"}`))
		default:
			http.NotFound(w, r)
		}
	})
	tl, err := api.Timeline("m17_project", 20)
	require.NoError(t, err)
	require.Len(t, tl, 2)
	require.Equal(t, "b", tl[0].FullText)

	p, err := api.User("m17_project")
	require.NoError(t, err)
	require.Equal(t, 2048, p.Followers)
	require.Equal(t, int64(99), p.ID)
}

func TestRESTUpdate(t *testing.T) {
	var posted string
	api := newRESTAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/1.1/account/verify_credentials.json":
			_, _ = w.Write([]byte(`{"id": 1, "screen_name": "m17_project"}`))
		case "/1.1/statuses/update.json":
			require.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, r.ParseForm())
			posted = r.PostForm.Get("status")
			_, _ = w.Write([]byte(`{"id": 5, "text": "ok", "user": {"screen_name": "m17_project"}}`))
		}
	})
	me, err := api.Me()
	require.NoError(t, err)
	require.Equal(t, "m17_project", me.Handle)
	require.NoError(t, api.Update("hello ^kc1awv"))
	require.Equal(t, "hello ^kc1awv", posted)
}

func TestRESTErrorClassification(t *testing.T) {
	cases := []struct {
		status int
		body   string
		kind   Kind
	}{
		{http.StatusNotFound, `{"errors":[{"code":144,"message":"No status found with that ID."}]}`, KindNotFound},
		{http.StatusUnauthorized, `{"errors":[{"code":32,"message":"Could not authenticate you."}]}`, KindAuth},
		{http.StatusTooManyRequests, `{"errors":[{"code":88,"message":"Rate limit exceeded"}]}`, KindRateLimited},
		{http.StatusUnauthorized, `not json`, KindAuth},
		{http.StatusServiceUnavailable, `{"errors":[{"code":130,"message":"Over capacity"}]}`, KindUpstream},
		{http.StatusOK, `{"id": "one"}`, KindMalformed},
		{http.StatusOK, `{"id": 1, "user": `, KindMalformed},
	}
	for _, tc := range cases {
		api := newRESTAPI(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(tc.body))
		})
		_, err := api.Status(1)
		require.Error(t, err, "status=%d body=%s", tc.status, tc.body)
		require.Equal(t, tc.kind, KindOf(err), "status=%d body=%s", tc.status, tc.body)
	}
}

func TestClassifyTransportError(t *testing.T) {
	err := classify(OpUser, nil, errors.New("dial tcp: connection refused"))
	require.Equal(t, KindUpstream, KindOf(err))
	require.Equal(t, "You have inputted an invalid user.", Message(err))
	require.NoError(t, classify(OpUser, &http.Response{StatusCode: 200}, nil))
}

func TestMessageUntagged(t *testing.T) {
	require.Equal(t, "You have input an invalid user.", Message(errors.New("boom")))
	require.Equal(t, "Could not post to Twitter.", Message(newError(OpPost, KindUpstream, nil)))
}
