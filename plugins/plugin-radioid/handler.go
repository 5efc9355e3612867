package pluginradioid

import (
	"context"
	"errors"

	"github.com/Hafuunano/Protocol-ConvertTool/protocol"

	"github.com/kc1awv/Plugin-Collections/lib/command"
	"github.com/kc1awv/Plugin-Collections/lib/logging"
	"github.com/kc1awv/Plugin-Collections/lib/radioid"
)

const lookupFailed = "RadioID lookup failed, try again later."

// chatContext is the part of protocol.Context the handler uses.
type chatContext interface {
	PlainText() string
	UserID() string
	Reply(protocol.Message) error
}

// handleLookup handles ".<command> <arg>" for every command in radioid.Queries.
func handleLookup(ctx chatContext) {
	name, arg, ok := command.Parse(ctx.PlainText())
	if !ok {
		return
	}
	q, ok := radioid.Find(name)
	if !ok {
		return
	}
	entry := logging.Request(logger, name, ctx.UserID())
	reply, err := getClient().Lookup(context.Background(), q.Command, arg)
	switch {
	case errors.Is(err, radioid.ErrMissingArgument):
		reply = "Usage: ." + q.Usage
	case err != nil:
		entry.WithError(err).Error("lookup failed")
		reply = lookupFailed
	default:
		entry.WithField("arg", arg).Debug("lookup answered")
	}
	replyText(ctx, reply)
}

func replyText(ctx chatContext, text string) {
	_ = ctx.Reply(protocol.Message{
		protocol.Segment{Type: protocol.SegmentTypeText, Data: map[string]any{"text": text}},
	})
}
