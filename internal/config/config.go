// Package config provides configuration loading, validation, and management
// for the promo bot. It handles reading from YAML files and BOT_* environment
// variables, setting default values, and validating configuration parameters.
package config

import (
	"errors"

	"github.com/go-telegram/bot/models"
)

// ErrConfiguration wraps every configuration loading or validation failure.
var ErrConfiguration = errors.New("configuration error")

// Config defines the application configuration for all components of the bot.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Promo     PromoConfig     `mapstructure:"promo"`
	Messages  MessagesConfig  `mapstructure:"messages"`
	Commands  []CommandConfig `mapstructure:"commands"  validate:"dive"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	HTTP      HTTPConfig      `mapstructure:"http"`
}

// LoggerConfig controls log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot credential. BotInfo is filled at runtime.
type TelegramConfig struct {
	Token   string       `mapstructure:"token" validate:"required"`
	BotInfo *models.User `mapstructure:"-"`
}

// StorageConfig selects the record store backend and its file locations.
type StorageConfig struct {
	Backend    string `mapstructure:"backend"     validate:"oneof=json sqlite bolt memory"`
	DataDir    string `mapstructure:"data_dir"    validate:"required_if=Backend json"`
	UsersFile  string `mapstructure:"users_file"  validate:"required_if=Backend json"`
	AdminsFile string `mapstructure:"admins_file" validate:"required_if=Backend json"`
	SQLitePath string `mapstructure:"sqlite_path" validate:"required_if=Backend sqlite"`
	BoltPath   string `mapstructure:"bolt_path"   validate:"required_if=Backend bolt"`
}

// PromoConfig holds the promotional links, images, triggers and copy.
type PromoConfig struct {
	ChannelURL    string `mapstructure:"channel_url"     validate:"required,url"`
	FreeSpinURL   string `mapstructure:"free_spin_url"   validate:"required,url"`
	FreeCreditURL string `mapstructure:"free_credit_url" validate:"required,url"`

	FreeSpinImage string `mapstructure:"free_spin_image"`
	HotTipsImage  string `mapstructure:"hot_tips_image"`

	// Triggers are matched case-insensitively as substrings of plain text.
	FreeSpinTrigger string `mapstructure:"free_spin_trigger" validate:"required"`
	HotTipsTrigger  string `mapstructure:"hot_tips_trigger"  validate:"required"`

	// Reply keyboard labels; each must contain its trigger.
	FreeSpinButton string `mapstructure:"free_spin_button" validate:"required"`
	HotTipsButton  string `mapstructure:"hot_tips_button"  validate:"required"`

	FreeSpinText     string `mapstructure:"free_spin_text"      validate:"required"`
	FreeSpinWebLabel string `mapstructure:"free_spin_web_label" validate:"required"`
	ChannelLabel     string `mapstructure:"channel_label"       validate:"required"`

	HotTipsText     string `mapstructure:"hot_tips_text"     validate:"required"`
	FreeCreditLabel string `mapstructure:"free_credit_label" validate:"required"`
	HotChannelLabel string `mapstructure:"hot_channel_label" validate:"required"`
}

// MessagesConfig holds all user-facing replies. Fields ending in Fmt are
// fmt format strings.
type MessagesConfig struct {
	MenuTitle     string `mapstructure:"menu_title"     validate:"required"`
	FallbackReply string `mapstructure:"fallback_reply" validate:"required"`
	GeneralError  string `mapstructure:"general_error"  validate:"required"`
	NotAuthorized string `mapstructure:"not_authorized" validate:"required"`
	InvalidUserID string `mapstructure:"invalid_user_id" validate:"required"`

	StatsFmt string `mapstructure:"stats_fmt" validate:"required"`

	BootstrapFmt     string `mapstructure:"bootstrap_fmt"      validate:"required"`
	SetAdminDenied   string `mapstructure:"setadmin_denied"    validate:"required"`
	SetAdminUsage    string `mapstructure:"setadmin_usage"     validate:"required"`
	AdminAddedFmt    string `mapstructure:"admin_added_fmt"    validate:"required"`
	RemoveAdminUsage string `mapstructure:"removeadmin_usage"  validate:"required"`
	LastAdmin        string `mapstructure:"last_admin"         validate:"required"`
	AdminRemovedFmt  string `mapstructure:"admin_removed_fmt"  validate:"required"`
	NotAnAdminFmt    string `mapstructure:"not_an_admin_fmt"   validate:"required"`
	NoAdmins         string `mapstructure:"no_admins"          validate:"required"`
	AdminsHeader     string `mapstructure:"admins_header"      validate:"required"`

	DataAdminsHeader string `mapstructure:"data_admins_header" validate:"required"`
	DataNoAdmins     string `mapstructure:"data_no_admins"     validate:"required"`
	DataUsersFmt     string `mapstructure:"data_users_fmt"     validate:"required"`
	DataNoUsers      string `mapstructure:"data_no_users"      validate:"required"`
	DataMoreFmt      string `mapstructure:"data_more_fmt"      validate:"required"`

	MailingUsage     string `mapstructure:"mailing_usage"      validate:"required"`
	ForwardDenied    string `mapstructure:"forward_denied"     validate:"required"`
	NoRecipients     string `mapstructure:"no_recipients"      validate:"required"`
	EmptyContent     string `mapstructure:"empty_content"      validate:"required"`
	MailingStartFmt  string `mapstructure:"mailing_start_fmt"  validate:"required"`
	MailingResultFmt string `mapstructure:"mailing_result_fmt" validate:"required"`
	MailingCancelled string `mapstructure:"mailing_cancelled"  validate:"required"`

	DiagnosticsHeader string `mapstructure:"diagnostics_header"  validate:"required"`
	DiagNotAdmin      string `mapstructure:"diag_not_admin"      validate:"required"`
	DiagNotForwarded  string `mapstructure:"diag_not_forwarded"  validate:"required"`
	DiagReady         string `mapstructure:"diag_ready"          validate:"required"`
}

// CommandConfig describes one entry of the bot's published command menu.
type CommandConfig struct {
	Command     string `mapstructure:"command"     validate:"required"`
	Description string `mapstructure:"description" validate:"required"`
}

// SchedulerConfig maps task names to their schedule.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig is a cron schedule (seconds field supported) plus an enable flag.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// HTTPConfig configures the health and metrics listener. An empty Addr
// disables it.
type HTTPConfig struct {
	Addr string `mapstructure:"addr" validate:"omitempty,hostname_port"`
}
