package twitter

import (
	"context"
	"errors"
	"net/http"

	gotwitter "github.com/dghubble/go-twitter/twitter"
	"github.com/dghubble/oauth1"
)

// Link is one shortened URL inside a status and what it stands for.
type Link struct {
	Short string
	Long  string
}

// Status is the slice of a tweet the replies need.
type Status struct {
	ID       int64
	Handle   string
	FullText string
	Text     string
	Media    []Link
	URLs     []Link
}

// Profile is the slice of a user object the replies need.
type Profile struct {
	Handle      string
	Name        string
	ID          int64
	Friends     int
	Followers   int
	Favourites  int
	Location    string
	Description string
}

// API is the set of Twitter calls the bridge makes. Errors are already tagged with a Kind.
type API interface {
	Status(id int64) (*Status, error)
	Timeline(handle string, count int) ([]Status, error)
	User(handle string) (*Profile, error)
	Me() (*Profile, error)
	Update(text string) error
}

// Credentials are the four OAuth1 strings of the bot account.
type Credentials struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

// Validate reports missing credentials as an auth error.
func (c Credentials) Validate() error {
	if c.ConsumerKey == "" || c.ConsumerSecret == "" || c.AccessToken == "" || c.AccessTokenSecret == "" {
		return newError(OpStatus, KindAuth, errors.New("consumer key/secret and access token/secret are required"))
	}
	return nil
}

// Dialer builds an authenticated API from credentials.
type Dialer func(Credentials) (API, error)

// OAuthDialer signs requests with OAuth1 on top of base (nil means http.DefaultClient).
func OAuthDialer(base *http.Client) Dialer {
	return func(creds Credentials) (API, error) {
		if err := creds.Validate(); err != nil {
			return nil, err
		}
		ctx := context.Background()
		if base != nil {
			ctx = context.WithValue(ctx, oauth1.HTTPClient, base)
		}
		cfg := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
		httpClient := cfg.Client(ctx, oauth1.NewToken(creds.AccessToken, creds.AccessTokenSecret))
		return &restAPI{client: gotwitter.NewClient(httpClient)}, nil
	}
}

// restAPI implements API over the v1.1 REST endpoints.
type restAPI struct {
	client *gotwitter.Client
}

const tweetModeExtended = "extended"

func (a *restAPI) Status(id int64) (*Status, error) {
	tweet, resp, err := a.client.Statuses.Show(id, &gotwitter.StatusShowParams{TweetMode: tweetModeExtended})
	if err := classify(OpStatus, resp, err); err != nil {
		return nil, err
	}
	return toStatus(tweet)
}

func (a *restAPI) Timeline(handle string, count int) ([]Status, error) {
	tweets, resp, err := a.client.Timelines.UserTimeline(&gotwitter.UserTimelineParams{
		ScreenName: handle,
		Count:      count,
		TweetMode:  tweetModeExtended,
	})
	if err := classify(OpStatus, resp, err); err != nil {
		return nil, err
	}
	out := make([]Status, 0, len(tweets))
	for i := range tweets {
		s, err := toStatus(&tweets[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, nil
}

func (a *restAPI) User(handle string) (*Profile, error) {
	user, resp, err := a.client.Users.Show(&gotwitter.UserShowParams{ScreenName: handle})
	if err := classify(OpUser, resp, err); err != nil {
		return nil, err
	}
	return toProfile(OpUser, user)
}

func (a *restAPI) Me() (*Profile, error) {
	user, resp, err := a.client.Accounts.VerifyCredentials(&gotwitter.AccountVerifyParams{})
	if err := classify(OpPost, resp, err); err != nil {
		return nil, err
	}
	return toProfile(OpPost, user)
}

func (a *restAPI) Update(text string) error {
	_, resp, err := a.client.Statuses.Update(text, nil)
	return classify(OpPost, resp, err)
}

func toStatus(t *gotwitter.Tweet) (*Status, error) {
	if t == nil || t.User == nil || t.ID == 0 {
		return nil, newError(OpStatus, KindMalformed, errors.New("status without id or user"))
	}
	s := &Status{
		ID:       t.ID,
		Handle:   t.User.ScreenName,
		FullText: t.FullText,
		Text:     t.Text,
	}
	if t.Entities != nil {
		for _, m := range t.Entities.Media {
			s.Media = append(s.Media, Link{Short: m.URL, Long: m.MediaURL})
		}
		for _, u := range t.Entities.Urls {
			s.URLs = append(s.URLs, Link{Short: u.URL, Long: u.ExpandedURL})
		}
	}
	return s, nil
}

func toProfile(op Op, u *gotwitter.User) (*Profile, error) {
	if u == nil || u.ScreenName == "" {
		return nil, newError(op, KindMalformed, errors.New("user without screen name"))
	}
	return &Profile{
		Handle:      u.ScreenName,
		Name:        u.Name,
		ID:          u.ID,
		Friends:     u.FriendsCount,
		Followers:   u.FollowersCount,
		Favourites:  u.FavouritesCount,
		Location:    u.Location,
		Description: u.Description,
	}, nil
}
