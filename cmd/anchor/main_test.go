package main

import "testing"

func TestRootCommandRegistersEverySubcommand(t *testing.T) {
	want := []string{
		"login", "ssh-login", "list", "sys", "create", "favorite",
		"init", "clone", "status", "add", "commit", "push", "pull",
		"fetch", "log", "reset", "remote", "config", "diff", "checkout",
		"branch", "clean", "show", "merge", "restore", "gc", "blame",
		"reflog",
	}

	have := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}

	for _, name := range want {
		if !have[name] {
			t.Errorf("expected subcommand %q to be registered", name)
		}
	}
}
