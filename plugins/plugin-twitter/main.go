// Package plugintwitter shows tweets and profiles in chat and lets admins tweet from the bot account.
//
//	.twit <handle> [n] | .twit <status id>   show a tweet (pasted status links are expanded too)
//	.twitinfo <handle>                         show a profile
//	.tweet <message>                           post, group admins who are also bot super admins only
//	.twitauto on|off                           toggle pasted-link expansion for this group, super admins only
//
// OAuth keys are read from data/config/plugin-twitter/config.yaml, TWITTER_* env vars, or SSM Parameter Store.
package plugintwitter

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/Hafuunano/Core-SkillAction/types"
	"github.com/Hafuunano/Protocol-ConvertTool/protocol"

	"github.com/kc1awv/Plugin-Collections/lib/database/config"
	"github.com/kc1awv/Plugin-Collections/lib/logging"
	"github.com/kc1awv/Plugin-Collections/lib/twitter"
	"github.com/kc1awv/Plugin-Collections/middlewares/passive"
)

const pluginName = "plugin-twitter"

// Meta and registration (required: use WithMeta(Meta) then chain).
var Meta = types.NewPluginEngine("plugin-twitter-001", pluginName, "skill", true)
var p = protocol.Engine.WithMeta(Meta)

var logger = logging.Plugin(pluginName)

// retryAfter is how long a failed bridge setup is reused before config and credentials are read again.
const retryAfter = time.Minute

var (
	bridgeMu     sync.Mutex
	bridge       *twitter.Bridge
	bridgeErr    error
	bridgeFailed time.Time
)

// hostGranted is what the host chain on .tweet has already checked.
var hostGranted = twitter.Caller{Operator: true, Admin: true}

// chatContext is the part of protocol.Context the handlers use.
type chatContext interface {
	PlainText() string
	UserID() string
	GroupID() string
	SenderNickname() string
	Reply(protocol.Message) error
	SendPlainMessage(string) error
}

func init() {
	// Everyone: .twit, .twitinfo and pasted status links.
	p.OnMessage().Func(Plugin)
	// Posting needs both the group admin role and bot super admin.
	p.OnMessage().IsOnlyAdmin().IsOnlySuperAdmin().Func(func(ctx protocol.Context) {
		handleTweet(ctx, hostGranted)
	})
	// Super admin only: .twitauto on|off
	p.OnMessage().IsOnlySuperAdmin().Func(func(ctx protocol.Context) {
		handleAutoExpand(ctx)
	})
}

// Init is optional. Host may call it once at startup so bad credentials show up in the log early.
func Init() {
	if _, err := getBridge(); err != nil {
		logger.WithError(err).Error("twitter plugin disabled until config is fixed")
	}
}

// loadBridge is swapped in tests.
var loadBridge = func() (*twitter.Bridge, error) {
	cfg, err := twitter.LoadConfig(context.Background(), config.DataDir(), pluginName, os.Getenv, twitter.DefaultGetterFactory)
	if err != nil {
		return nil, err
	}
	return twitter.New(cfg.Credentials(),
		twitter.WithAccountLabel(cfg.AccountLabel),
		twitter.WithLogger(logger),
	)
}

// getBridge returns the shared bridge. A setup failure is returned for retryAfter, then setup runs again.
func getBridge() (*twitter.Bridge, error) {
	bridgeMu.Lock()
	defer bridgeMu.Unlock()
	if bridge != nil {
		return bridge, nil
	}
	if bridgeErr != nil && time.Since(bridgeFailed) < retryAfter {
		return nil, bridgeErr
	}
	b, err := loadBridge()
	if err != nil {
		bridgeErr, bridgeFailed = err, time.Now()
		return nil, err
	}
	bridge, bridgeErr = b, nil
	return bridge, nil
}

// Plugin is the required entry. Host calls it for each message with a protocol.Context.
func Plugin(ctx protocol.Context) {
	handleMessage(ctx)
}

// passiveStore is swapped in tests.
var passiveStore = func() *passive.Store {
	s, err := passive.DefaultStore()
	if err != nil {
		logger.WithError(err).Warn("passive settings unavailable, expanding everywhere")
		return nil
	}
	return s
}
