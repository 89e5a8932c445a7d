package repository

import (
	"context"
	"time"

	"keypool/internal/domain/waitlist"
	"keypool/internal/infra"
	"keypool/internal/infra/db"

	"github.com/google/uuid"
)

// WaitlistRepository owns waitlist_entries. Uniqueness per (item, user) is
// the primary key; join is a DO NOTHING upsert so it stays idempotent.
type WaitlistRepository struct{}

func NewWaitlistRepository() *WaitlistRepository {
	return &WaitlistRepository{}
}

// Join inserts the waiter and reports whether a new row was created.
func (r *WaitlistRepository) Join(ctx context.Context, tx db.DBTX, itemID, userID uuid.UUID, now time.Time) (bool, error) {
	tag, err := tx.Exec(ctx, `
		INSERT INTO waitlist_entries (item_id, user_id, joined_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (item_id, user_id) DO NOTHING`,
		itemID, userID, now)
	if err != nil {
		return false, infra.WrapRepoErr("failed to join waitlist", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *WaitlistRepository) Leave(ctx context.Context, tx db.DBTX, itemID, userID uuid.UUID) (int64, error) {
	tag, err := tx.Exec(ctx, `
		DELETE FROM waitlist_entries WHERE item_id = $1 AND user_id = $2`,
		itemID, userID)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to leave waitlist", err)
	}
	return tag.RowsAffected(), nil
}

func (r *WaitlistRepository) LeaveAll(ctx context.Context, tx db.DBTX, userID uuid.UUID) (int64, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM waitlist_entries WHERE user_id = $1`, userID)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to leave all waitlists", err)
	}
	return tag.RowsAffected(), nil
}

func (r *WaitlistRepository) ListByItem(ctx context.Context, tx db.DBTX, itemID uuid.UUID) ([]waitlist.Entry, error) {
	rows, err := tx.Query(ctx, `
		SELECT item_id, user_id, joined_at
		FROM waitlist_entries
		WHERE item_id = $1
		ORDER BY joined_at`,
		itemID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list waitlist", err)
	}
	defer rows.Close()

	var entries []waitlist.Entry
	for rows.Next() {
		var e waitlist.Entry
		if err := rows.Scan(&e.ItemID, &e.UserID, &e.JoinedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan waitlist entry", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate waitlist", err)
	}
	return entries, nil
}

// ClearItem deletes every waiter for the item in one statement.
func (r *WaitlistRepository) ClearItem(ctx context.Context, tx db.DBTX, itemID uuid.UUID) (int64, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM waitlist_entries WHERE item_id = $1`, itemID)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to clear waitlist", err)
	}
	return tag.RowsAffected(), nil
}

func (r *WaitlistRepository) CountByItem(ctx context.Context, tx db.DBTX, itemID uuid.UUID) (int, error) {
	var count int
	err := tx.QueryRow(ctx, `
		SELECT COUNT(*)::int FROM waitlist_entries WHERE item_id = $1`, itemID).Scan(&count)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count waitlist", err)
	}
	return count, nil
}

// MembershipRepository reads priority tiers maintained by the external
// membership system. Users without a row get the lowest ordinal.
type MembershipRepository struct{}

func NewMembershipRepository() *MembershipRepository {
	return &MembershipRepository{}
}

func (r *MembershipRepository) TiersOf(ctx context.Context, tx db.DBTX, userIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	tiers := make(map[uuid.UUID]int, len(userIDs))
	if len(userIDs) == 0 {
		return tiers, nil
	}

	rows, err := tx.Query(ctx, `
		SELECT user_id, tier FROM membership_tiers WHERE user_id = ANY($1)`,
		userIDs)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to read membership tiers", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var tier int
		if err := rows.Scan(&id, &tier); err != nil {
			return nil, infra.WrapRepoErr("failed to scan membership tier", err)
		}
		tiers[id] = tier
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate membership tiers", err)
	}
	return tiers, nil
}
