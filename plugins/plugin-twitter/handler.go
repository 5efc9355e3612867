package plugintwitter

import (
	"strings"

	"github.com/Hafuunano/Protocol-ConvertTool/protocol"
	log "github.com/sirupsen/logrus"

	"github.com/kc1awv/Plugin-Collections/lib/command"
	"github.com/kc1awv/Plugin-Collections/lib/logging"
	"github.com/kc1awv/Plugin-Collections/lib/twitter"
	"github.com/kc1awv/Plugin-Collections/middlewares/passive"
)

// handleMessage routes .twit and .twitinfo. Any other message, prefixed or not, is checked for a pasted
// status link; .tweet and .twitauto are left to their own handlers.
func handleMessage(ctx chatContext) {
	text := ctx.PlainText()
	name, arg, ok := command.Parse(text)
	if ok {
		switch name {
		case "twit":
			entry := logging.Request(logger, name, ctx.UserID())
			if _, id, found := twitter.MatchStatusURL(arg); found {
				sayStatus(ctx, entry, func(b *twitter.Bridge) (string, error) { return b.FetchStatusByID(id) })
				return
			}
			sayStatus(ctx, entry, func(b *twitter.Bridge) (string, error) { return b.FetchStatus(arg) })
			return
		case "twitinfo":
			sayProfile(ctx, logging.Request(logger, name, ctx.UserID()), arg)
			return
		case "tweet", "twitauto":
			return
		}
	}
	_, id, found := twitter.MatchStatusURL(text)
	if !found {
		return
	}
	passive.Gate(passiveStore(), ctx.GroupID(), func() {
		entry := logging.Request(logger, "link", ctx.UserID())
		sayStatus(ctx, entry, func(b *twitter.Bridge) (string, error) { return b.FetchStatusByID(id) })
	})
}

func sayProfile(ctx chatContext, entry *log.Entry, handle string) {
	b, err := getBridge()
	if err == nil {
		var reply string
		if reply, err = b.UserInfo(handle); err == nil {
			replyText(ctx, reply)
			return
		}
	}
	entry.WithError(err).WithField("kind", twitter.KindOf(err)).Warn("twitinfo failed")
	replyText(ctx, twitter.Message(err))
}

// sayStatus posts a status line to the channel, or replies to the caller with the failure sentence.
func sayStatus(ctx chatContext, entry *log.Entry, fetch func(*twitter.Bridge) (string, error)) {
	b, err := getBridge()
	if err == nil {
		var line string
		if line, err = fetch(b); err == nil {
			_ = ctx.SendPlainMessage(line)
			return
		}
	}
	entry.WithError(err).WithField("kind", twitter.KindOf(err)).Warn("status fetch failed")
	replyText(ctx, twitter.Message(err))
}

// handleTweet handles ".tweet <message>" for a caller holding the given privileges. In chat the host only
// calls it for group admins who are super admins, so non-operators get no reply there.
func handleTweet(ctx chatContext, granted twitter.Caller) {
	arg, ok := command.Match(ctx.PlainText(), "tweet")
	if !ok {
		return
	}
	entry := logging.Request(logger, "tweet", ctx.UserID())
	b, err := getBridge()
	if err != nil {
		entry.WithError(err).Warn("tweet unavailable")
		replyText(ctx, twitter.Message(err))
		return
	}
	reply, err := b.Post(twitter.Caller{Nick: nick(ctx), Operator: granted.Operator, Admin: granted.Admin}, arg)
	if err != nil {
		entry.WithError(err).WithField("kind", twitter.KindOf(err)).Error("tweet failed")
		reply = twitter.Message(err)
	}
	if reply != "" {
		replyText(ctx, reply)
	}
}

// handleAutoExpand handles ".twitauto on|off" for the current group.
func handleAutoExpand(ctx chatContext) {
	arg, ok := command.Match(ctx.PlainText(), "twitauto")
	if !ok {
		return
	}
	groupID := ctx.GroupID()
	if groupID == "" {
		replyText(ctx, "Use .twitauto in a group.")
		return
	}
	var enabled bool
	switch strings.ToLower(arg) {
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		replyText(ctx, "Usage: .twitauto on|off")
		return
	}
	s := passiveStore()
	if s == nil {
		replyText(ctx, "Settings storage is unavailable.")
		return
	}
	if err := s.Set(groupID, enabled, ctx.UserID()); err != nil {
		logger.WithError(err).WithField("group", groupID).Error("saving passive setting failed")
		replyText(ctx, "Could not save the setting.")
		return
	}
	state := "off"
	if enabled {
		state = "on"
	}
	replyText(ctx, "Tweet link expansion is "+state+" for this group.")
}

func nick(ctx chatContext) string {
	if n := ctx.SenderNickname(); n != "" {
		return n
	}
	return ctx.UserID()
}

func replyText(ctx chatContext, text string) {
	_ = ctx.Reply(protocol.Message{
		protocol.Segment{Type: protocol.SegmentTypeText, Data: map[string]any{"text": text}},
	})
}
