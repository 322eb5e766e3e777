package telegram

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
)

// Fixed replies used by the registry
const (
	UnknownCommandReply = "❌ Unknown command: /%s\n\nUse /help to see available commands."
	GenericErrorReply   = "❌ Something went wrong. Please try again."
)

// CommandContext contains all data for command execution
type CommandContext struct {
	Ctx        context.Context
	User       interface{} // Generic user (application can cast to specific type)
	TelegramID int64
	ChatID     int64
	ChatType   string
	Command    string
	Args       string
	RawMessage string
	Bot        Sender // Sender for replies
}

// Reply sends a plain text reply to the originating chat
func (c *CommandContext) Reply(text string) error {
	return c.Bot.SendMessage(c.ChatID, text)
}

// ReplyWithOptions sends a formatted reply to the originating chat
func (c *CommandContext) ReplyWithOptions(text string, opts MessageOptions) error {
	_, err := c.Bot.SendMessageWithOptions(c.ChatID, text, opts)
	return err
}

// ArgFields splits the arguments on whitespace
func (c *CommandContext) ArgFields() []string {
	return strings.Fields(c.Args)
}

// CommandHandler is a function that handles a command
type CommandHandler func(ctx *CommandContext) error

// CommandMiddleware wraps command handlers with additional logic
type CommandMiddleware func(next CommandHandler) CommandHandler

// ErrorFormatter maps a handler error to a user-facing reply.
// Returning false falls back to the generic reply.
type ErrorFormatter func(err error) (string, bool)

// CommandConfig defines a command registration
type CommandConfig struct {
	Name        string              // Primary command name (e.g., "analyse")
	Aliases     []string            // Alternative names (e.g., ["analyze"])
	Description string              // Help text
	Usage       string              // Usage example (e.g., "/analyse <ticker>")
	Handler     CommandHandler      // Command handler function
	Middleware  []CommandMiddleware // Command-specific middleware
	Hidden      bool                // Don't show in /help
	Category    string              // Command category (e.g., "Watchlist", "Research")
}

// CommandRegistry manages command registration and routing
type CommandRegistry struct {
	commands       map[string]*CommandConfig // command name -> config
	middleware     []CommandMiddleware       // Global middleware
	bot            Sender
	errorFormatter ErrorFormatter
	log            *logger.Logger
}

// NewCommandRegistry creates a new command registry
func NewCommandRegistry(bot Sender, log *logger.Logger) *CommandRegistry {
	return &CommandRegistry{
		commands:   make(map[string]*CommandConfig),
		middleware: make([]CommandMiddleware, 0),
		bot:        bot,
		log:        log.With("component", "command_registry"),
	}
}

// Register registers a command with the registry.
// Names and aliases are matched case-insensitively.
func (cr *CommandRegistry) Register(config CommandConfig) {
	if config.Name == "" {
		cr.log.Errorw("Cannot register command without name")
		return
	}
	if config.Handler == nil {
		cr.log.Errorw("Cannot register command without handler", "command", config.Name)
		return
	}

	config.Name = strings.ToLower(config.Name)
	cr.commands[config.Name] = &config
	cr.log.Debugw("Registered command",
		"name", config.Name,
		"aliases", config.Aliases,
		"category", config.Category,
	)

	for _, alias := range config.Aliases {
		cr.commands[strings.ToLower(alias)] = &config
	}
}

// MustRegister registers a command and panics on error (for init-time registration)
func (cr *CommandRegistry) MustRegister(config CommandConfig) {
	if config.Name == "" || config.Handler == nil {
		panic(fmt.Sprintf("invalid command config: name=%s handler=%v", config.Name, config.Handler != nil))
	}
	cr.Register(config)
}

// Use adds global middleware (applied to all commands)
func (cr *CommandRegistry) Use(middleware CommandMiddleware) {
	cr.middleware = append(cr.middleware, middleware)
}

// SetErrorFormatter installs the mapping from handler errors to replies
func (cr *CommandRegistry) SetErrorFormatter(f ErrorFormatter) {
	cr.errorFormatter = f
}

// Handle routes command to registered handler.
// Handler errors are logged and answered; only a failed reply is returned.
func (cr *CommandRegistry) Handle(ctx context.Context, usr interface{}, msg *Message) error {
	command := strings.ToLower(strings.TrimSpace(msg.Command))

	var telegramID int64
	if msg.From != nil {
		telegramID = msg.From.ID
	}
	chatID := msg.Chat.ID

	config, exists := cr.commands[command]
	if !exists {
		cr.log.Warnw("Unknown command",
			"command", command,
			"telegram_id", telegramID,
		)
		return cr.bot.SendMessage(chatID, fmt.Sprintf(UnknownCommandReply, command))
	}

	cmdCtx := &CommandContext{
		Ctx:        ctx,
		User:       usr,
		TelegramID: telegramID,
		ChatID:     chatID,
		ChatType:   msg.Chat.Type,
		Command:    config.Name,
		Args:       strings.TrimSpace(msg.Arguments),
		RawMessage: msg.Text,
		Bot:        cr.bot,
	}

	handler := config.Handler

	// Command-specific middleware wraps first so global middleware stays outermost
	for i := len(config.Middleware) - 1; i >= 0; i-- {
		handler = config.Middleware[i](handler)
	}
	for i := len(cr.middleware) - 1; i >= 0; i-- {
		handler = cr.middleware[i](handler)
	}

	if err := handler(cmdCtx); err != nil {
		cr.log.Errorw("Command execution failed",
			"command", config.Name,
			"telegram_id", telegramID,
			"error", err,
		)
		return cr.bot.SendMessage(chatID, cr.FormatError(err))
	}

	return nil
}

// FormatError converts a handler error into the reply shown to the user
func (cr *CommandRegistry) FormatError(err error) string {
	var valErr *errors.ValidationError
	if errors.As(err, &valErr) {
		return fmt.Sprintf("❌ %s", valErr.Message)
	}
	if cr.errorFormatter != nil {
		if text, ok := cr.errorFormatter(err); ok {
			return text
		}
	}
	return GenericErrorReply
}

// GetCommands returns all registered commands sorted by name (for /help)
func (cr *CommandRegistry) GetCommands(includeHidden bool) []*CommandConfig {
	commands := make([]*CommandConfig, 0, len(cr.commands))

	for name, config := range cr.commands {
		if name != config.Name {
			continue
		}
		if config.Hidden && !includeHidden {
			continue
		}
		commands = append(commands, config)
	}

	sort.Slice(commands, func(i, j int) bool {
		return commands[i].Name < commands[j].Name
	})
	return commands
}

// GetCommandsByCategory returns commands grouped by category
func (cr *CommandRegistry) GetCommandsByCategory(includeHidden bool) map[string][]*CommandConfig {
	commands := cr.GetCommands(includeHidden)
	grouped := make(map[string][]*CommandConfig)

	for _, cmd := range commands {
		category := cmd.Category
		if category == "" {
			category = "General"
		}
		grouped[category] = append(grouped[category], cmd)
	}

	return grouped
}

// HasCommand checks if command is registered
func (cr *CommandRegistry) HasCommand(command string) bool {
	command = strings.ToLower(strings.TrimSpace(command))
	_, exists := cr.commands[command]
	return exists
}
