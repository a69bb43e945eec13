package main

import (
	"context"
	"errors"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mrmailer/mrmailer/internal/bot"
	"github.com/mrmailer/mrmailer/internal/service"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   `send "<command>"`,
	Short: "Run one chat command and print the reply",
	Example: `  mrmailer send "!apply hr@acme.io | role: Backend Engineer | desc: https://jobs.acme.io/42"
  mrmailer send "!pitch founder@startup.io | extra: they sell furniture online"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer a.Close()

	h := bot.NewHandler(a.mailer, a.cfg.Chat, a.log)
	msg := bot.Message{
		ChannelID: a.cfg.Chat.ChannelID,
		Author:    "cli",
		Content:   strings.Join(args, " "),
	}

	out, err := h.HandleMessage(ctx, msg, bot.WriterReplier{W: cmd.OutOrStdout()})
	if err != nil {
		return err
	}

	switch out.Status() {
	case service.StatusIgnored:
		return errors.New("not a command, expected: !pitch|!apply <recipient> | role: ... | desc: ... | extra: ...")
	case service.StatusFailed:
		return errCommandFailed
	}
	return nil
}

var errCommandFailed = errors.New("command failed")
