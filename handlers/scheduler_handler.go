package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"automod-bot/bot"
	"automod-bot/model"
	"automod-bot/utils"
	"automod-bot/utils/database"

	"github.com/bwmarrin/discordgo"
)

// HandleScheduleTaskCommand manages deferred tasks from a slash command.
func HandleScheduleTaskCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(i)
	action := optionString(opts, "action")

	switch action {
	case "submit":
		handleTaskSubmit(s, i, b, opts)
	case "status":
		handleTaskStatus(s, i, b, opts)
	case "list":
		handleTaskList(s, i, b)
	case "history":
		handleTaskHistory(s, i, b)
	case "cancel":
		handleTaskCancel(s, i, b, opts)
	default:
		respondError(s, i, fmt.Sprintf("Unknown action: `%s`.", action))
	}
}

func handleTaskSubmit(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	taskType := optionString(opts, "task_type")
	if taskType == "" {
		respondError(s, i, "task_type is required.")
		return
	}

	var payload map[string]any
	if raw := optionString(opts, "payload"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			respondError(s, i, "Payload must be valid JSON.")
			return
		}
	}

	var taskID string
	var err error
	if runAtRaw := optionString(opts, "run_at"); runAtRaw != "" {
		var runAt time.Time
		runAt, err = utils.ParseTimestamp(runAtRaw)
		if err != nil {
			respondError(s, i, fmt.Sprintf("Invalid run_at: %v", err))
			return
		}
		taskID, err = b.Scheduler.Submit(taskType, payload, runAt)
	} else if delayRaw := optionString(opts, "delay"); delayRaw != "" {
		var delay time.Duration
		delay, err = utils.ParseDuration(delayRaw)
		if err != nil {
			respondError(s, i, fmt.Sprintf("Invalid delay: %v", err))
			return
		}
		taskID, err = b.Scheduler.SubmitAfter(taskType, payload, delay)
	} else {
		respondError(s, i, "Either run_at or delay is required.")
		return
	}

	if err != nil {
		respondError(s, i, fmt.Sprintf("Could not schedule task: %v", err))
		return
	}

	task, _ := b.Scheduler.Get(taskID)
	utils.SendEphemeralResponse(s, i, fmt.Sprintf("Scheduled task `%s` (%s) for %s.",
		taskID, taskType, task.RunAt.Format(time.RFC3339)))
}

func handleTaskStatus(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	taskID := optionString(opts, "task_id")
	if taskID == "" {
		respondError(s, i, "task_id is required.")
		return
	}
	task, err := b.Scheduler.Get(taskID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respondError(s, i, fmt.Sprintf("No task with id `%s`.", taskID))
		} else {
			respondError(s, i, fmt.Sprintf("Could not fetch task: %v", err))
		}
		return
	}

	msg := fmt.Sprintf("Task `%s` (%s): **%s**, runs at %s", task.ID, task.Type, task.Status,
		task.RunAt.Format(time.RFC3339))
	if task.Result != "" {
		msg += "\nResult: " + task.Result
	}
	if task.Error != "" {
		msg += "\nError: " + task.Error
	}
	utils.SendEphemeralResponse(s, i, msg)
}

func handleTaskList(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	tasks := b.Scheduler.List()
	if len(tasks) == 0 {
		utils.SendEphemeralResponse(s, i, "No scheduled tasks.")
		return
	}
	var sb strings.Builder
	for _, task := range tasks {
		fmt.Fprintf(&sb, "ID: %s, Type: `%s`, Status: %s, Run at: %s\n",
			task.ID, task.Type, task.Status, task.RunAt.Format(time.RFC3339))
	}
	utils.SendEphemeralResponse(s, i, sb.String())
}

func handleTaskHistory(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	tasks, err := database.LoadTaskHistory(b.DB, 20)
	if err != nil {
		respondError(s, i, fmt.Sprintf("Could not load task history: %v", err))
		return
	}
	if len(tasks) == 0 {
		utils.SendEphemeralResponse(s, i, "No completed or failed tasks on record.")
		return
	}
	var sb strings.Builder
	for _, task := range tasks {
		fmt.Fprintf(&sb, "ID: %s, Type: `%s`, Status: %s", task.ID, task.Type, task.Status)
		if task.Error != "" {
			fmt.Fprintf(&sb, ", Error: %s", task.Error)
		}
		sb.WriteString("\n")
	}
	utils.SendEphemeralResponse(s, i, sb.String())
}

func handleTaskCancel(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	taskID := optionString(opts, "task_id")
	if taskID == "" {
		respondError(s, i, "task_id is required.")
		return
	}
	if err := b.Scheduler.Cancel(taskID); err != nil {
		respondError(s, i, fmt.Sprintf("Could not cancel task: %v", err))
		return
	}
	utils.SendEphemeralResponse(s, i, fmt.Sprintf("Cancelled task `%s`.", taskID))
}
