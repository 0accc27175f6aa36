package vote

import (
	"context"
	"database/sql"
	"fmt"

	"blobqueue/db"
	"blobqueue/model"
)

// RecordInTx applies a ballot to the ledger and the suggestion's tally inside tx.
// Nothing is written when the ballot does not change the reviewer's standing intent.
func RecordInTx(ctx context.Context, tx *sql.Tx, b Ballot) (Delta, error) {
	prev, err := db.GetVoteInTx(ctx, tx, b.Suggestion, b.Reviewer, b.Pool)
	if err != nil {
		return Delta{}, fmt.Errorf("load vote: %w", err)
	}
	if prev == nil {
		prev = &model.VoteEntry{SuggestionIdx: b.Suggestion, ReviewerID: b.Reviewer, Pool: b.Pool}
	}

	next, d := Apply(*prev, b.Direction, b.Action)
	if d.IsZero() {
		return d, nil
	}

	next.VotedAt = b.At
	if err := db.UpsertVoteInTx(ctx, tx, &next); err != nil {
		return Delta{}, fmt.Errorf("upsert vote: %w", err)
	}
	if err := db.UpdateTallyInTx(ctx, tx, b.Suggestion, d.Up, d.Down); err != nil {
		return Delta{}, fmt.Errorf("update tally: %w", err)
	}
	return d, nil
}
