package telegram

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ykvlv/autoreply-bot/internal/domain"
)

// UI texts in English
const (
	unknownCommandFmt = "❌ Unknown command: %s\n\nUse /help to see available commands."
	tryAgainText      = "⚠️ Something went wrong while talking to storage. Please try again."
	corruptFmt        = "⚠️ Stored data is inconsistent: %s\nCheck the logs; nothing was substituted."

	startFmt = "🤖 Auto-reply bot\n\n" +
		"👤 Owner: %s\n" +
		"🆔 ID: %d\n" +
		"📊 Auto-reply: %s\n" +
		"🎯 Custom rules: %s\n" +
		"👁️ Status: %s\n\n" +
		"Current message (%s):\n%s\n\n" +
		"Quick commands:\n" +
		"• /help - full command list\n" +
		"• /status - check your status\n" +
		"• /custom HH:MM-HH:MM category - add a time rule\n" +
		"• /stats today - today's stats"

	statusFmt = "%s You are %s\n%s\n\n" +
		"Auto-reply: %s\n" +
		"Custom rules: %s\n" +
		"Current message: %s\n%s%s\n\n" +
		"• Cooldown: %s per user\n" +
		"• Users in cooldown: %d"

	onText = "✅ Auto-reply ENABLED\n\nCurrent message (default):\n%s\n\n" +
		"Replies go out while you are away.\n💡 Use /customon to enable time rules."
	onAlreadyText  = "⚠️ Auto-reply is already enabled."
	offText        = "🔴 Auto-reply DISABLED\n\nCustom rules were disabled as well.\nUse /on to enable auto-reply again."
	offAlreadyText = "⚠️ Auto-reply is already disabled."
	setFmt         = "✅ Default message set and auto-reply enabled!\n\nNew default message:\n%s"

	customAddedFmt = "✅ Time rule added\n\n" +
		"Category: %s\n" +
		"Time: %s %s\n" +
		"Rule ID: %s\n" +
		"Message: %s"
	customCountFmt  = "\n\n📊 You now have %d rules for %s."
	customEditedFmt = "✅ Time rule updated\n\n" +
		"Category: %s\n" +
		"Rule ID: %s\n" +
		"Old time: %s\n" +
		"New time: %s"

	noRulesText = "📋 No custom time rules yet.\n\nUse /custom HH:MM-HH:MM category to add one.\nExample: /custom 09:00-17:00 work"

	confirmHintFmt = "\n\nThis action cannot be undone.\n\nReply with:\n• /confirm to proceed\n• /cancel to abort\n\n⏱️ Expires in %s."
	removeRuleFmt  = "⚠️ Confirmation required\n\nYou are about to remove this time rule:\n" +
		"Category: %s\nTime: %s\nRule ID: %s"
	removeCategoryFmt = "⚠️ Confirmation required\n\nYou are about to remove ALL %s for %s:\n%s"
	removeAllFmt      = "⚠️ DANGER: confirmation required\n\nYou are about to remove ALL %s."
	removeNothingFmt  = "❌ No rules found for rule ID or category %q.\n\nUse /listcustom to see your rules."

	confirmNothing   = "ℹ️ No pending action to confirm."
	confirmExpired   = "⏱️ Confirmation expired.\n\nThe pending action was dropped. Run the command again if needed."
	confirmZero      = "ℹ️ No rules were found to remove."
	removedRuleFmt   = "✅ Time rule %s removed."
	removedCatFmt    = "✅ Removed %s for %s."
	removedAllFmt    = "✅ Removed %s.\nYour default message is used for all auto-replies now."
	cancelNothing    = "ℹ️ No pending action to cancel."
	cancelledText    = "🚫 Action cancelled. No changes were made."
	customOnFmt      = "✅ Custom rules enabled\n\n📊 Rules: %d"
	customOnAlready  = "ℹ️ Custom rules are already enabled."
	customOnBlocked  = "⚠️ Cannot enable custom rules\n\nTemporary mode is active with %s.\nRun /tempreset first."
	customOffText    = "✅ Custom rules disabled\n\nOnly the default message is used now.\nRe-enable with /customon."
	customOffAlready = "ℹ️ Custom rules are already disabled."

	tempActivatedFmt = "✅ Temporary mode activated\n\n" +
		"Category: %s\nMessage: %s\n%s\n" +
		"🔒 Custom rules: deactivated\n" +
		"📊 Saved %d rule(s) for restoration\n" +
		"💾 Saved custom rules state: %s\n\n" +
		"Use /tempreset to restore normal operation."
	tempSwitchedFmt = "🔄 Temporary mode updated\n\nCategory: %s\nMessage: %s\n%s\n" +
		"Custom rules stay deactivated. Use /tempreset to restore normal operation."
	tempInactive     = "ℹ️ Temporary mode is not active.\n\nUse /temp <category> to activate it."
	tempStatusFmt    = "📋 Temporary mode\n\nStatus: 🟢 Active\nCategory: %s\nMessage: %s\n%s\n💾 Saved state:\n• Saved rules: %d\n• Custom rules were: %s"
	tempResetFmt     = "✅ Temporary mode deactivated\n\n🔄 Restored:\n• %d custom time rule(s)\n• Custom rules: %s"
	tempNotActive    = "ℹ️ There is no active temporary mode to reset."
	tempUntilReset   = "⏱️ Until /tempreset"
	tempExpiresInFmt = "⏱️ Expires in %s"

	statsTodayEmpty = "📊 Today's stats\n\nNo auto-replied messages yet today."
	statsTodayFmt   = "📊 Today's statistics\n\n📅 Date: %s\n💬 Total messages: %d\n👥 Unique users: %d"
	statsTopFmt     = "\n🏆 Top user: %d (%d messages)"
	statsWeekEmpty  = "📊 Weekly stats\n\nNo auto-replied messages in the last 7 days."
	statsWeekFmt    = "📊 Last 7 days (%s to %s)\n\n💬 Total messages: %d\n👥 Unique users: %d\n\n📈 Daily breakdown:"
)

func onOff(b bool) string {
	if b {
		return "🟢 Enabled"
	}
	return "🔴 Disabled"
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func ruleLine(r domain.TimeRule) string {
	line := fmt.Sprintf("• %s [%s]", r.Window(), r.ShortID())
	if r.Wraps() {
		line += " 🌙 overnight"
	}
	return line
}

// sortByStart returns a copy of rules ordered by window start.
func sortByStart(rules []domain.TimeRule) []domain.TimeRule {
	out := append([]domain.TimeRule(nil), rules...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// listRulesText groups rules by category (sorted), each group by start time.
func listRulesText(rules []domain.TimeRule, tz string) string {
	byCat := make(map[string][]domain.TimeRule)
	for _, r := range rules {
		byCat[r.Category] = append(byCat[r.Category], r)
	}
	cats := make([]string, 0, len(byCat))
	for c := range byCat {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	var b strings.Builder
	fmt.Fprintf(&b, "📋 Your custom time rules (%s):\n", tz)
	for _, c := range cats {
		group := sortByStart(byCat[c])
		fmt.Fprintf(&b, "\n🔷 %s (%s)\n", c, plural(len(group), "rule"))
		for _, r := range group {
			b.WriteString("  " + ruleLine(r) + "\n")
		}
	}
	fmt.Fprintf(&b, "\nTotal: %s\nCategories: %d\n", plural(len(rules), "rule"), len(cats))
	b.WriteString("\n💡 /removecustom <rule_id|category> to remove, /customedit <rule_id> HH:MM-HH:MM to edit.")
	return b.String()
}

func ambiguousText(e *domain.AmbiguousRuleError) string {
	var b strings.Builder
	fmt.Fprintf(&b, "❌ Ambiguous rule ID\n\nMultiple rules match %s:\n", e.Prefix)
	for i, r := range e.Candidates {
		if i == 5 {
			break
		}
		fmt.Fprintf(&b, "• %s - %s %s\n", r.ShortID(), r.Category, r.Window())
	}
	b.WriteString("\nPlease provide more characters to identify the rule.")
	return b.String()
}

func categoriesText() string {
	var b strings.Builder
	b.WriteString("📂 Available categories\n")
	for _, g := range domain.CategoryGroups {
		fmt.Fprintf(&b, "\n%s:\n", g.Name)
		for _, k := range g.Keys {
			msg, _ := domain.CategoryMessage(k)
			fmt.Fprintf(&b, "• %s - %s\n", k, msg)
		}
	}
	b.WriteString("\nUse with /custom HH:MM-HH:MM <category> or /temp <category>.")
	return b.String()
}
