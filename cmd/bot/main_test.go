package main

import (
	"errors"
	"testing"
)

func TestCommands(t *testing.T) {
	for _, name := range []string{"run", "migrate"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("want subcommand %q, got %v err=%v", name, cmd, err)
		}
	}
	if rootCmd.RunE == nil {
		t.Fatalf("root command must run the bot")
	}
}

func TestSetup_MissingConfigIsStartupError(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("OWNER_ID", "")

	_, _, err := setup()
	if !errors.Is(err, errStartup) {
		t.Fatalf("want startup error, got %v", err)
	}
}
