package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ykvlv/autoreply-bot/internal/autoreply"
	"github.com/ykvlv/autoreply-bot/internal/domain"
)

// --- Core commands ---

func (r *Router) handleStart(ctx context.Context, msg *tgbotapi.Message, _ string) (string, error) {
	st, err := r.session.Controls.Ensure(ctx)
	if err != nil {
		return "", err
	}
	res, err := r.session.Resolver.Resolve(ctx)
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName)
	return fmt.Sprintf(startFmt,
		name,
		r.session.OwnerID(),
		onOff(st.AutoReplyEnabled),
		onOff(st.CustomRulesEnabled),
		r.presenceWord(ctx),
		res.Source,
		res.Message,
	), nil
}

func (r *Router) handleHelp(context.Context, *tgbotapi.Message, string) (string, error) {
	return r.helpText, nil
}

func (r *Router) handleStatus(ctx context.Context, _ *tgbotapi.Message, _ string) (string, error) {
	st, err := r.session.Controls.State(ctx)
	if err != nil {
		return "", err
	}
	res, err := r.session.Resolver.Resolve(ctx)
	if err != nil {
		return "", err
	}

	online := r.session.OwnerOnline(ctx)
	icon, word := "🔴", "AWAY"
	if online {
		icon, word = "🟢", "ONLINE"
	}
	seen := "No activity recorded yet"
	if last := r.activity.LastSeen(); !last.IsZero() {
		seen = "Last active " + domain.FormatRemaining(r.clock.Now().Sub(last)) + " ago"
	}

	kind, extra := "Default", ""
	switch res.Source {
	case autoreply.SourceOverride:
		kind = "Temporary (" + res.Category + ")"
		extra = "\nTemporary mode: 🟢 " + res.Category
	case autoreply.SourceRule:
		kind = "Time-based (" + res.Category + ")"
		extra = "\nActive rule: " + res.Category + " " + res.Rule.Window()
	}

	return fmt.Sprintf(statusFmt,
		icon, word, seen,
		onOff(st.AutoReplyEnabled),
		onOff(st.CustomRulesEnabled),
		kind, res.Message, extra,
		domain.FormatRemaining(r.session.Cooldown.Window()),
		r.session.Cooldown.Len(),
	), nil
}

func (r *Router) handleOn(ctx context.Context, _ *tgbotapi.Message, _ string) (string, error) {
	changed, err := r.session.Controls.SetAutoReply(ctx, true)
	if err != nil {
		return "", err
	}
	if !changed {
		return onAlreadyText, nil
	}
	st, err := r.session.Controls.State(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(onText, st.DefaultMessage), nil
}

func (r *Router) handleOff(ctx context.Context, _ *tgbotapi.Message, _ string) (string, error) {
	changed, err := r.session.Controls.SetAutoReply(ctx, false)
	if err != nil {
		return "", err
	}
	if !changed {
		return offAlreadyText, nil
	}
	return offText, nil
}

func (r *Router) handleSet(ctx context.Context, _ *tgbotapi.Message, args string) (string, error) {
	if err := r.session.Controls.SetDefaultMessage(ctx, args); err != nil {
		return "", err
	}
	return fmt.Sprintf(setFmt, strings.TrimSpace(args)), nil
}

// --- Time rules ---

func (r *Router) handleCustom(ctx context.Context, _ *tgbotapi.Message, args string) (string, error) {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: expected a time range and a category", domain.ErrValidation)
	}
	start, end, err := domain.ParseRange(parts[0])
	if err != nil {
		return "", err
	}
	rule, err := r.session.Rules.Add(ctx, parts[1], start, end)
	if err != nil {
		return "", err
	}
	msg, _ := domain.CategoryMessage(rule.Category)
	text := fmt.Sprintf(customAddedFmt, rule.Category, rule.Window(), r.tzName, rule.ShortID(), msg)

	same, err := r.session.Rules.ByCategory(ctx, rule.Category)
	if err == nil && len(same) > 1 {
		text += fmt.Sprintf(customCountFmt, len(same), rule.Category)
	}
	return text, nil
}

func (r *Router) handleCustomEdit(ctx context.Context, _ *tgbotapi.Message, args string) (string, error) {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: expected a rule id and a time range", domain.ErrValidation)
	}
	start, end, err := domain.ParseRange(parts[1])
	if err != nil {
		return "", err
	}
	before, err := r.session.Rules.Edit(ctx, parts[0], start, end)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(customEditedFmt, before.Category, before.ShortID(), before.Window(), domain.FormatRange(start, end)), nil
}

func (r *Router) handleListCustom(ctx context.Context, _ *tgbotapi.Message, _ string) (string, error) {
	rules, err := r.session.Rules.List(ctx)
	if err != nil {
		return "", err
	}
	if len(rules) == 0 {
		return noRulesText, nil
	}
	return listRulesText(rules, r.tzName), nil
}

// handleRemoveCustom treats the argument as a rule id first and falls back to
// a category when no rule id matches.
func (r *Router) handleRemoveCustom(ctx context.Context, _ *tgbotapi.Message, args string) (string, error) {
	ident := strings.TrimSpace(args)
	if ident == "" || len(strings.Fields(ident)) != 1 {
		return "", fmt.Errorf("%w: expected one rule id or category", domain.ErrValidation)
	}

	if _, err := domain.ValidateRuleIDPrefix(ident); err == nil {
		rule, err := r.session.Rules.Find(ctx, ident)
		switch {
		case err == nil:
			if err := r.session.Gate.Request(ctx, domain.ActionDeleteRule, rule.ID); err != nil {
				return "", err
			}
			return fmt.Sprintf(removeRuleFmt, rule.Category, rule.Window(), rule.ShortID()) + r.confirmHint(), nil
		case !errors.Is(err, domain.ErrRuleNotFound):
			return "", err
		}
	}

	category := strings.ToLower(ident)
	if !domain.IsCategory(category) {
		return "", fmt.Errorf("%w: %q is neither a rule id nor a category", domain.ErrUnknownCategory, ident)
	}
	rules, err := r.session.Rules.ByCategory(ctx, category)
	if err != nil {
		return "", err
	}
	if len(rules) == 0 {
		return fmt.Sprintf(removeNothingFmt, ident), nil
	}
	if err := r.session.Gate.Request(ctx, domain.ActionDeleteCategory, category); err != nil {
		return "", err
	}
	var lines []string
	for _, rule := range sortByStart(rules) {
		lines = append(lines, "  "+ruleLine(rule))
	}
	return fmt.Sprintf(removeCategoryFmt, plural(len(rules), "rule"), category, strings.Join(lines, "\n")) + r.confirmHint(), nil
}

func (r *Router) handleCustomRemoveAll(ctx context.Context, _ *tgbotapi.Message, _ string) (string, error) {
	rules, err := r.session.Rules.List(ctx)
	if err != nil {
		return "", err
	}
	if len(rules) == 0 {
		return "", domain.ErrNoRules
	}
	if err := r.session.Gate.Request(ctx, domain.ActionDeleteAll, ""); err != nil {
		return "", err
	}
	return fmt.Sprintf(removeAllFmt, plural(len(rules), "time rule")) + r.confirmHint(), nil
}

func (r *Router) confirmHint() string {
	return fmt.Sprintf(confirmHintFmt, domain.FormatRemaining(r.session.Gate.TTL()))
}

func (r *Router) handleCustomOn(ctx context.Context, _ *tgbotapi.Message, _ string) (string, error) {
	changed, err := r.session.Controls.SetCustomRules(ctx, true)
	if errors.Is(err, domain.ErrOverrideActive) {
		ov, err := r.session.Temp.Status(ctx)
		if err != nil {
			return "", err
		}
		category := ""
		if ov != nil {
			category = ov.Category
		}
		return fmt.Sprintf(customOnBlocked, category), nil
	}
	if err != nil {
		return "", err
	}
	if !changed {
		return customOnAlready, nil
	}
	rules, err := r.session.Rules.List(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(customOnFmt, len(rules)), nil
}

func (r *Router) handleCustomOff(ctx context.Context, _ *tgbotapi.Message, _ string) (string, error) {
	changed, err := r.session.Controls.SetCustomRules(ctx, false)
	if err != nil {
		return "", err
	}
	if !changed {
		return customOffAlready, nil
	}
	return customOffText, nil
}

// --- Confirmation ---

func (r *Router) handleConfirm(ctx context.Context, _ *tgbotapi.Message, _ string) (string, error) {
	res, err := r.session.Gate.Confirm(ctx)
	if errors.Is(err, domain.ErrNothingPending) {
		return confirmNothing, nil
	}
	if err != nil {
		return "", err
	}
	if res.Status == autoreply.ConfirmExpired {
		return confirmExpired, nil
	}
	if res.Affected == 0 {
		return confirmZero, nil
	}
	n := int(res.Affected)
	switch res.Action {
	case domain.ActionDeleteRule:
		short := res.Target
		if len(short) > domain.ShortIDLen {
			short = short[:domain.ShortIDLen]
		}
		return fmt.Sprintf(removedRuleFmt, short), nil
	case domain.ActionDeleteCategory:
		return fmt.Sprintf(removedCatFmt, plural(n, "rule"), res.Target), nil
	default:
		return fmt.Sprintf(removedAllFmt, plural(n, "time rule")), nil
	}
}

func (r *Router) handleCancel(ctx context.Context, _ *tgbotapi.Message, _ string) (string, error) {
	_, err := r.session.Gate.Cancel(ctx)
	if errors.Is(err, domain.ErrNothingPending) {
		return cancelNothing, nil
	}
	if err != nil {
		return "", err
	}
	return cancelledText, nil
}

// --- Temporary mode ---

func (r *Router) handleTemp(ctx context.Context, _ *tgbotapi.Message, args string) (string, error) {
	parts := strings.Fields(args)
	if len(parts) == 0 || len(parts) > 2 {
		return "", fmt.Errorf("%w: expected a category and an optional duration", domain.ErrValidation)
	}
	var ttl time.Duration
	if len(parts) == 2 {
		d, err := domain.ParseDurationHuman(parts[1])
		if err != nil {
			return "", err
		}
		ttl = d
	}
	res, err := r.session.Temp.Activate(ctx, parts[0], ttl)
	if err != nil {
		return "", err
	}
	ov := res.Override
	msg, _ := domain.CategoryMessage(ov.Category)
	if res.Switched {
		return fmt.Sprintf(tempSwitchedFmt, ov.Category, msg, r.expiryLine(&ov)), nil
	}
	return fmt.Sprintf(tempActivatedFmt,
		ov.Category, msg, r.expiryLine(&ov),
		len(ov.SavedRules),
		onOff(ov.SavedRulesEnabled),
	), nil
}

func (r *Router) handleListTemp(ctx context.Context, _ *tgbotapi.Message, _ string) (string, error) {
	ov, err := r.session.Temp.Status(ctx)
	if err != nil {
		return "", err
	}
	if ov == nil {
		return tempInactive, nil
	}
	msg, ok := domain.CategoryMessage(ov.Category)
	if !ok {
		return "", fmt.Errorf("%w: temporary category %q", domain.ErrCorruptState, ov.Category)
	}
	return fmt.Sprintf(tempStatusFmt, ov.Category, msg, r.expiryLine(ov), len(ov.SavedRules), onOff(ov.SavedRulesEnabled)), nil
}

func (r *Router) handleTempReset(ctx context.Context, _ *tgbotapi.Message, _ string) (string, error) {
	res, err := r.session.Temp.Reset(ctx)
	if errors.Is(err, domain.ErrNoOverride) {
		return tempNotActive, nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(tempResetFmt, res.Restored, onOff(res.CustomRulesEnabled)), nil
}

func (r *Router) expiryLine(ov *domain.TempOverride) string {
	if ov.ExpiresAt == nil {
		return tempUntilReset
	}
	return fmt.Sprintf(tempExpiresInFmt, domain.FormatRemaining(ov.ExpiresAt.Sub(r.clock.Now())))
}

// --- Stats & categories ---

func (r *Router) handleStats(ctx context.Context, _ *tgbotapi.Message, args string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(args)) {
	case "", "today":
		day, err := r.stats.Today(ctx)
		if err != nil {
			return "", err
		}
		if day.Total == 0 {
			return statsTodayEmpty, nil
		}
		text := fmt.Sprintf(statsTodayFmt, day.Date, day.Total, day.Unique)
		if day.Top != nil {
			text += fmt.Sprintf(statsTopFmt, day.Top.RecipientID, day.Top.Count)
		}
		return text, nil
	case "week":
		w, err := r.stats.Week(ctx)
		if err != nil {
			return "", err
		}
		if w.Total == 0 {
			return statsWeekEmpty, nil
		}
		var b strings.Builder
		fmt.Fprintf(&b, statsWeekFmt, w.From, w.To, w.Total, w.Unique)
		for _, d := range w.Days {
			fmt.Fprintf(&b, "\n• %s: %s", d.Date, plural(d.Total, "message"))
		}
		return b.String(), nil
	default:
		return "", fmt.Errorf("%w: unknown period %q", domain.ErrValidation, args)
	}
}

func (r *Router) handleCategories(context.Context, *tgbotapi.Message, string) (string, error) {
	return categoriesText(), nil
}

func (r *Router) presenceWord(ctx context.Context) string {
	if r.session.OwnerOnline(ctx) {
		return "🟢 Online"
	}
	return "🔴 Away"
}
