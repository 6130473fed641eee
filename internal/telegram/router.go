package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/autoreply-bot/internal/autoreply"
	"github.com/ykvlv/autoreply-bot/internal/clock"
	"github.com/ykvlv/autoreply-bot/internal/domain"
	"github.com/ykvlv/autoreply-bot/internal/stats"
)

// Sender is the part of *tgbotapi.BotAPI the router needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type handlerFunc func(ctx context.Context, msg *tgbotapi.Message, args string) (string, error)

type command struct {
	usage string
	run   handlerFunc
}

// Router wires Telegram updates to the auto-reply session and owner commands.
type Router struct {
	bot      Sender
	log      *zap.Logger
	session  *autoreply.Session
	stats    *stats.Service
	activity *ActivityPresence
	clock    clock.Clock
	tzName   string
	helpText string
	botName  string
	commands map[string]command
}

// Options carries the presentation settings of a Router.
type Options struct {
	TZName   string
	HelpText string
	BotName  string // without @; stripped from "/cmd@name"
}

// NewRouter creates a new Telegram router.
func NewRouter(bot Sender, log *zap.Logger, session *autoreply.Session, st *stats.Service,
	activity *ActivityPresence, c clock.Clock, opts Options) *Router {
	r := &Router{
		bot:      bot,
		log:      log,
		session:  session,
		stats:    st,
		activity: activity,
		clock:    c,
		tzName:   opts.TZName,
		helpText: opts.HelpText,
		botName:  strings.ToLower(opts.BotName),
	}
	r.commands = map[string]command{
		"/start":           {run: r.handleStart},
		"/help":            {run: r.handleHelp},
		"/status":          {run: r.handleStatus},
		"/on":              {run: r.handleOn},
		"/off":             {run: r.handleOff},
		"/set":             {usage: "/set <message>", run: r.handleSet},
		"/custom":          {usage: "/custom HH:MM-HH:MM <category>\nExample: /custom 09:00-17:00 work", run: r.handleCustom},
		"/customedit":      {usage: "/customedit <rule_id> HH:MM-HH:MM\nExample: /customedit a1b2c3d4 08:30-17:30", run: r.handleCustomEdit},
		"/listcustom":      {run: r.handleListCustom},
		"/removecustom":    {usage: "/removecustom <rule_id|category>\nExample: /removecustom work", run: r.handleRemoveCustom},
		"/customremoveall": {run: r.handleCustomRemoveAll},
		"/customon":        {run: r.handleCustomOn},
		"/customoff":       {run: r.handleCustomOff},
		"/temp":            {usage: "/temp <category> [duration]\nExample: /temp lunch 45m", run: r.handleTemp},
		"/listtemp":        {run: r.handleListTemp},
		"/tempreset":       {run: r.handleTempReset},
		"/confirm":         {run: r.handleConfirm},
		"/cancel":          {run: r.handleCancel},
		"/stats":           {usage: "/stats today | /stats week", run: r.handleStats},
		"/categories":      {run: r.handleCategories},
	}
	return r
}

// HandleUpdate routes a single update. A panic in a handler is logged and
// swallowed so one bad update never stops the loop.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("update handler panicked",
				zap.Int("update_id", upd.UpdateID),
				zap.Any("panic", p),
				zap.Stack("stack"),
			)
		}
	}()

	msg := upd.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}

	if r.isSelfChannel(msg) {
		r.activity.Touch()
		if strings.HasPrefix(strings.TrimSpace(msg.Text), "/") {
			r.handleCommand(ctx, msg)
		}
		return
	}
	r.autoReply(ctx, msg)
}

// isSelfChannel is the owner's private chat with the bot, the only place
// commands are accepted.
func (r *Router) isSelfChannel(msg *tgbotapi.Message) bool {
	return r.session.IsOwner(msg.From.ID) && msg.Chat.ID == msg.From.ID
}

func (r *Router) autoReply(ctx context.Context, msg *tgbotapi.Message) {
	in := autoreply.Incoming{
		SenderID: msg.From.ID,
		ChatID:   msg.Chat.ID,
		Private:  msg.Chat.IsPrivate(),
		FromBot:  msg.From.IsBot,
		Text:     msg.Text,
	}
	d, err := r.session.HandleIncoming(ctx, in)
	if err != nil {
		r.log.Error("auto-reply decision failed", zap.Int64("sender", in.SenderID), zap.Error(err))
		if errors.Is(err, domain.ErrCorruptState) {
			r.sendText(r.session.OwnerID(), fmt.Sprintf(corruptFmt, err))
		}
		return
	}
	if !d.Reply {
		r.log.Debug("no auto-reply", zap.Int64("sender", in.SenderID), zap.String("reason", string(d.Skip)))
		return
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, d.Resolution.Message)
	reply.ReplyToMessageID = msg.MessageID
	if _, err := r.bot.Send(reply); err != nil {
		r.log.Error("send auto-reply failed", zap.Int64("sender", in.SenderID), zap.Error(err))
		return
	}
	r.session.MarkReplied(in.SenderID)
	r.log.Info("auto-replied",
		zap.Int64("sender", in.SenderID),
		zap.String("source", d.Resolution.Source.String()),
		zap.String("category", d.Resolution.Category),
	)
}

func (r *Router) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	name, args := splitCommand(msg.Text, r.botName)
	cmd, ok := r.commands[name]
	if !ok {
		r.sendText(msg.Chat.ID, fmt.Sprintf(unknownCommandFmt, name))
		return
	}
	text, err := cmd.run(ctx, msg, args)
	if err != nil {
		text = r.errorText(name, cmd.usage, err)
	}
	r.sendText(msg.Chat.ID, text)
}

// splitCommand returns the lowercased command without any @botname suffix
// and the trimmed remainder.
func splitCommand(text, botName string) (name, args string) {
	text = strings.TrimSpace(text)
	name, args, _ = strings.Cut(text, " ")
	if i := strings.IndexAny(name, "\n\t"); i >= 0 {
		args = name[i+1:] + " " + args
		name = name[:i]
	}
	name = strings.ToLower(name)
	if at := strings.IndexByte(name, '@'); at >= 0 {
		if botName == "" || name[at+1:] == botName {
			name = name[:at]
		}
	}
	return name, strings.TrimSpace(args)
}

// errorText maps the error taxonomy onto a reply. Corruption and storage
// failures are logged; validation and not-found are the owner's to fix.
func (r *Router) errorText(name, usage string, err error) string {
	var amb *domain.AmbiguousRuleError
	switch {
	case errors.As(err, &amb):
		return ambiguousText(amb)
	case errors.Is(err, domain.ErrValidation):
		text := "❌ " + reason(err, domain.ErrValidation)
		if usage != "" {
			text += "\n\nUsage: " + usage
		}
		return text
	case errors.Is(err, domain.ErrNotFound):
		return "ℹ️ Not found: " + reason(err, domain.ErrNotFound)
	case errors.Is(err, domain.ErrCorruptState):
		r.log.Error("corrupt state", zap.String("command", name), zap.Error(err))
		return fmt.Sprintf(corruptFmt, reason(err, domain.ErrCorruptState))
	default:
		r.log.Error("command failed", zap.String("command", name), zap.Error(err))
		return tryAgainText
	}
}

// reason drops the error class prefix from err's message.
func reason(err, class error) string {
	return strings.ReplaceAll(err.Error(), class.Error()+": ", "")
}

func (r *Router) sendText(chatID int64, text string) {
	if _, err := r.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		r.log.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
