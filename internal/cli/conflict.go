package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/topfiveapp/topfive/internal/lifecycle"
)

// resolveConflict drives a pending capacity conflict to completion. The
// resolve flag wins when set; otherwise an interactive chooser runs on a
// TTY. Without either, the conflict is cancelled and the options are
// printed. Returns the ID of the task that ended up written, or "" when
// cancelled.
func resolveConflict(ctx context.Context, session *lifecycle.Session, conflict *lifecycle.Conflict, resolve, replaceID string) (string, error) {
	switch resolve {
	case "urgent":
		return session.ResolveMoveToUrgent(ctx)
	case "replace":
		if replaceID == "" {
			if err := session.CancelConflict(); err != nil {
				return "", err
			}
			return "", fmt.Errorf("--resolve replace requires --replace-id")
		}
		victimID, err := matchSlotHolder(conflict, replaceID)
		if err != nil {
			cancelErr := session.CancelConflict()
			if cancelErr != nil {
				return "", cancelErr
			}
			return "", err
		}
		return session.ResolveReplace(ctx, victimID)
	case "cancel":
		return "", session.CancelConflict()
	case "":
	default:
		if err := session.CancelConflict(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("unknown --resolve value %q (urgent, replace, cancel)", resolve)
	}

	if isatty.IsTerminal(os.Stdout.Fd()) {
		return resolveConflictPrompt(ctx, session, conflict)
	}

	// Non-interactive and no flag: cancel and explain
	if err := session.CancelConflict(); err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("all 5 Top 5 slots are taken; current slot holders:\n")
	for _, t := range conflict.SlotHolders {
		fmt.Fprintf(&b, "  %s  %s\n", shortID(t.ID), truncate(t.Text, 50))
	}
	b.WriteString("re-run with --resolve urgent, or --resolve replace --replace-id <id>")
	return "", fmt.Errorf("%s", b.String())
}

// matchSlotHolder resolves a full or shortened ID against the conflict's
// slot holders.
func matchSlotHolder(conflict *lifecycle.Conflict, id string) (string, error) {
	var match string
	for _, t := range conflict.SlotHolders {
		if t.ID == id || strings.HasPrefix(t.ID, id) {
			if match != "" {
				return "", fmt.Errorf("ambiguous id %q", id)
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%q is not one of the current Top 5", id)
	}
	return match, nil
}
