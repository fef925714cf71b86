package bot

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"automod-bot/utils"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) Run() {
	err := b.Session.Open()
	if err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}

	log.Println("Registering commands for all guilds...")
	b.RegisteredCommands = make([]*discordgo.ApplicationCommand, 0)
	guilds, err := b.Session.UserGuilds(100, "", "", false)
	if err != nil {
		log.Printf("Could not fetch guilds: %v", err)
	} else {
		for _, guild := range guilds {
			b.RefreshCommands(guild.ID)
		}
	}

	b.Scheduler.Start()

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	utils.LogInfo(b.Session, b.GetConfig().LogChannelID, "System", "Startup", "Bot has started successfully.")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
}
