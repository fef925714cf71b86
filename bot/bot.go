package bot

import (
	"fmt"
	"log"
	"sync/atomic"

	"automod-bot/automation"
	"automod-bot/commands"
	"automod-bot/detector"
	"automod-bot/model"
	"automod-bot/platform"
	"automod-bot/scheduler"
	"automod-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

// Bot ties the Discord session to the automation engine, the task scheduler
// and the auto-moderation driver.
type Bot struct {
	Session            *discordgo.Session
	Engine             *automation.Engine
	Scheduler          *scheduler.Scheduler
	AutoMod            *detector.AutoModerator
	Adapter            *platform.Adapter
	RegisteredCommands []*discordgo.ApplicationCommand
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	DB                 *sqlx.DB
	config             atomic.Value // *model.Config
	done               chan struct{}
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

func (b *Bot) Done() <-chan struct{} {
	return b.done
}

// New builds the bot and wires the automation core to the session adapter.
func New(cfg *model.Config, db *sqlx.DB) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages | discordgo.IntentsGuildMessageReactions |
		discordgo.IntentMessageContent
	dg.StateEnabled = false

	adapter := platform.NewAdapter(dg)
	channelLogger := &utils.ChannelLogger{Session: dg, ChannelID: cfg.LogChannelID}

	store := automation.NewStore(db)
	if err := store.LoadPersisted(); err != nil {
		log.Printf("Error loading persisted rules: %v", err)
	}
	dispatcher := automation.NewDispatcher(adapter, adapter, channelLogger)

	b := &Bot{
		Session:   dg,
		Engine:    automation.NewEngine(store, dispatcher),
		Scheduler: scheduler.New(adapter, channelLogger, db, cfg.Scheduler),
		AutoMod:   detector.NewAutoModerator(adapter, cfg.Automod),
		Adapter:   adapter,
		DB:        db,
		done:      make(chan struct{}),
	}
	b.config.Store(cfg)
	return b, nil
}

// Close shuts the bot down gracefully: scheduler first so no task fires into
// a closed session.
func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	close(b.done)
	b.Scheduler.Stop()
	b.Session.Close()
}

// RefreshCommands overwrites the guild's slash commands with the current set.
func (b *Bot) RefreshCommands(guildID string) {
	cmds := commands.Generate()
	log.Printf("Registering %d commands for guild %s...", len(cmds), guildID)
	registeredCmds, err := b.Session.ApplicationCommandBulkOverwrite(b.Session.State.User.ID, guildID, cmds)
	if err != nil {
		log.Printf("cannot update commands for guild '%s': %v", guildID, err)
		return
	}
	b.RegisteredCommands = append(b.RegisteredCommands, registeredCmds...)
}
