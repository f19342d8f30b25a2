package cli

import (
	"context"
	"errors"
	"fmt"

	"guestsnap/internal/client/client"
)

// Delete removes uploads by magic-delete token. With no tokens given,
// every upload recorded locally for the event is deleted. Matched local
// records are removed only for tokens the server confirmed.
func (a *App) Delete(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		records, err := a.uploads.ListByEvent(ctx, a.config.EventID)
		if err != nil {
			return err
		}
		for _, r := range records {
			tokens = append(tokens, r.DeleteID)
		}
	}
	if len(tokens) == 0 {
		fmt.Fprintln(a.out, "nothing to delete")
		return nil
	}

	if _, err := a.api.Register(ctx, a.config.EventID, a.config.GuestName); err != nil {
		return fmt.Errorf("failed to register guest session: %w", err)
	}

	result, err := a.api.MagicDelete(ctx, a.config.EventID, tokens)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			fmt.Fprintln(a.out, "no pictures matched the given tokens")
			return nil
		}
		return err
	}

	if _, err := a.uploads.DeleteByDeleteIDs(ctx, a.config.EventID, result.DeletedIDs); err != nil {
		fmt.Fprintf(a.out, "warning: could not prune local records: %v\n", err)
	}

	fmt.Fprintf(a.out, "deleted %d picture(s)\n", result.DeletedCount)
	if !result.Success {
		fmt.Fprintln(a.out, "some storage files could not be removed; the gallery entries are gone")
	}
	return nil
}
