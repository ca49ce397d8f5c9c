package config

import "github.com/spf13/viper"

// Default values for configuration
const (
	DefaultLogLevel = "info"

	DefaultStorageBackend = "json"
	DefaultDataDir        = "/data"
	DefaultUsersFile      = "user_stats.json"
	DefaultAdminsFile     = "admins.json"
	DefaultSQLitePath     = "storage.db"
	DefaultBoltPath       = "storage.bolt"

	DefaultChannelURL    = "https://t.me/rolex9au"
	DefaultFreeSpinURL   = "https://rolex9au.com/RFROLEX9BOT"
	DefaultFreeCreditURL = "https://rolex9au.com/RFROLEX9BOT"
	DefaultFreeSpinImage = "public/free_spin.jpg"
	DefaultHotTipsImage  = "public/hot_game_tips.jpg"
)

const defaultFreeSpinText = `🎖 ROLEX9 Welcomes You to The Pinnacle of Online Gaming.

🎁 Sign up today and instantly claim your complimentary A$199.99 bonus — no deposit required.
🎡 Return daily to spin our exclusive Prize Wheel and secure rewards of up to A$999.
🚀 Amplify your winnings with a 100% first-deposit match, doubling your funds for maximum impact from day one.
👑 Step into our VIP realm — enjoy meticulously tailored perks, unlock weekly rewards up to A$1,099, and experience seamless, transparent bonuses combined with premium, high-stakes gameplay.

💎 At ROLEX9, we deliver elite-level entertainment for Australian players. Play boldly. Win exceptionally. 🎰✨`

const defaultHotTipsText = `ROLEX9: Big Rewards. No Nonsense. 🎉

🔥 Welcome Bonus A$99 FREE — No deposit required.
🎰 Spin the Wheel Daily: Win up to A$199.
💎 Random Second Withdraw — exclusive to ROLEX9.
👑 VIP experience: daily perks + weekly rewards up to A$8,888.

✨ Elite games. Transparent bonuses. Instant payouts.
🚀 ROLEX9 — Your Instant WIN Destination!`

// DefaultCommands is the command menu published to Telegram on startup.
var DefaultCommands = []CommandConfig{
	{Command: "start", Description: "Show the main menu"},
	{Command: "stats", Description: "Show how many users started the bot"},
	{Command: "setadmin", Description: "Add an administrator (admin only)"},
	{Command: "removeadmin", Description: "Remove an administrator (admin only)"},
	{Command: "listadmins", Description: "List administrators (admin only)"},
	{Command: "data", Description: "Show stored admins and users (admin only)"},
	{Command: "mailing", Description: "Reply to a message to mail it to all users (admin only)"},
	{Command: "test_mailing", Description: "Show mailing diagnostics"},
}

// setDefaults registers every default on v. Keys without a default are not
// picked up from the environment by viper.AutomaticEnv, so even required keys
// get an empty default.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", false)

	v.SetDefault("telegram.token", "")

	v.SetDefault("storage.backend", DefaultStorageBackend)
	v.SetDefault("storage.data_dir", DefaultDataDir)
	v.SetDefault("storage.users_file", DefaultUsersFile)
	v.SetDefault("storage.admins_file", DefaultAdminsFile)
	v.SetDefault("storage.sqlite_path", DefaultSQLitePath)
	v.SetDefault("storage.bolt_path", DefaultBoltPath)

	v.SetDefault("promo.channel_url", DefaultChannelURL)
	v.SetDefault("promo.free_spin_url", DefaultFreeSpinURL)
	v.SetDefault("promo.free_credit_url", DefaultFreeCreditURL)
	v.SetDefault("promo.free_spin_image", DefaultFreeSpinImage)
	v.SetDefault("promo.hot_tips_image", DefaultHotTipsImage)
	v.SetDefault("promo.free_spin_trigger", "GET FREE SPIN")
	v.SetDefault("promo.hot_tips_trigger", "HOT GAME TIPS")
	v.SetDefault("promo.free_spin_button", "GET FREE SPIN ON ROLEX9 🎰")
	v.SetDefault("promo.hot_tips_button", "HOT GAME TIPS CHANNEL 🍒")
	v.SetDefault("promo.free_spin_text", defaultFreeSpinText)
	v.SetDefault("promo.free_spin_web_label", "CHECK FREE SPIN ON WEB 🎁")
	v.SetDefault("promo.channel_label", "TELEGRAM CHANNEL ❤️")
	v.SetDefault("promo.hot_tips_text", defaultHotTipsText)
	v.SetDefault("promo.free_credit_label", "FREE CREDIT GIFT 🎁")
	v.SetDefault("promo.hot_channel_label", "HOT CHANNEL 🤑")

	v.SetDefault("messages.menu_title", "Main Menu")
	v.SetDefault("messages.fallback_reply", "Please use the bottom buttons to interact, or send /start to view the main menu.")
	v.SetDefault("messages.general_error", "❌ An error occurred. Please try again later.")
	v.SetDefault("messages.not_authorized", "❌ Access denied. Only administrators can use this command.")
	v.SetDefault("messages.invalid_user_id", "❌ Invalid user ID. Please provide a valid number.")
	v.SetDefault("messages.stats_fmt", "📊 <b>Statistics</b>\n\nTotal users started: %d")
	v.SetDefault("messages.bootstrap_fmt", "✅ You have been set as the first administrator!\nYour User ID: %d")
	v.SetDefault("messages.setadmin_denied", "❌ Access denied. Only administrators can add new admins.")
	v.SetDefault("messages.setadmin_usage", "Usage: /setadmin <user_id>\n\nExample: /setadmin 123456789\n\nTo get a user's ID, ask them to message @userinfobot")
	v.SetDefault("messages.admin_added_fmt", "✅ User %d has been added as an administrator.")
	v.SetDefault("messages.removeadmin_usage", "Usage: /removeadmin <user_id>\n\nExample: /removeadmin 123456789")
	v.SetDefault("messages.last_admin", "❌ Cannot remove the last administrator.")
	v.SetDefault("messages.admin_removed_fmt", "✅ User %d has been removed from administrators.")
	v.SetDefault("messages.not_an_admin_fmt", "❌ User %d is not an administrator.")
	v.SetDefault("messages.no_admins", "📋 No administrators found.")
	v.SetDefault("messages.admins_header", "📋 <b>Administrators:</b>\n\n")
	v.SetDefault("messages.data_admins_header", "👑 <b>Admins:</b>\n")
	v.SetDefault("messages.data_no_admins", "• No admins found\n")
	v.SetDefault("messages.data_users_fmt", "\n👥 <b>Users (Total: %d):</b>\n")
	v.SetDefault("messages.data_no_users", "• No users found\n")
	v.SetDefault("messages.data_more_fmt", "\n... and %d more users\n")
	v.SetDefault("messages.mailing_usage", "📤 <b>How to use /mailing:</b>\n\n1. Send or forward the post you want to mail\n2. Reply to that message with /mailing\n\nOr simply forward a post to this bot (it will auto-detect and mail it).")
	v.SetDefault("messages.forward_denied", "❌ Access denied. Only administrators can mail messages.\n\n💡 Tip: If you're the first user, send /setadmin to become an administrator.")
	v.SetDefault("messages.no_recipients", "❌ No users found to mail to (excluding yourself).")
	v.SetDefault("messages.empty_content", "❌ Cannot mail: the message has no content (photo, video, document, or text).\n\nForward a message with content, or reply to one with /mailing.")
	v.SetDefault("messages.mailing_start_fmt", "📤 Mailing to %d users...\nPlease wait...")
	v.SetDefault("messages.mailing_result_fmt", "📥 Mailing completed!\n\n✅ Success: %d\n❌ Failed: %d\n📝 Total: %d")

	v.SetDefault("messages.mailing_cancelled", "⚠️ Mailing interrupted before all users were reached.")
	v.SetDefault("messages.diagnostics_header", "🔍 <b>Debug Info:</b>\n\n")
	v.SetDefault("messages.diag_not_admin", "❌ You are not an admin. Send /setadmin first.")
	v.SetDefault("messages.diag_not_forwarded", "⚠️ This message is not forwarded. You can:\n1. Forward a post (auto-mailing)\n2. Reply to a message with /mailing")
	v.SetDefault("messages.diag_ready", "✅ You should be able to mail! Try forwarding a post.")

	v.SetDefault("commands", DefaultCommands)

	v.SetDefault("scheduler.tasks", map[string]any{
		"store_maintenance": map[string]any{"enabled": true, "schedule": "0 0 4 * * *"},
		"audience_gauge":    map[string]any{"enabled": true, "schedule": "0 */5 * * * *"},
	})

	v.SetDefault("http.addr", ":8080")
}
