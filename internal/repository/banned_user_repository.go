package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/flight-slot-booking/internal/model"
)

// BannedUserRepo provides data access to the banned_users table. It is
// the concrete ban gate implementation consulted during admission and
// the backing store for the admin ban endpoints.
type BannedUserRepo struct {
    db *sql.DB
}

// NewBannedUserRepo returns a BannedUserRepo bound to the given database.
func NewBannedUserRepo(db *sql.DB) *BannedUserRepo { return &BannedUserRepo{db: db} }

// IsBanned reports whether the identity code is actively banned: a ban
// row exists with no expiry, or with an expiry still in the future.
// Expired bans are kept but no longer block registration.
func (r *BannedUserRepo) IsBanned(ctx context.Context, vatsimCID string) (bool, error) {
    const q = `SELECT COUNT(*) FROM banned_users
               WHERE vatsim_cid = ? AND (banned_until IS NULL OR banned_until > UTC_TIMESTAMP())`
    var n int
    if err := r.db.QueryRowContext(ctx, q, vatsimCID).Scan(&n); err != nil {
        return false, err
    }
    return n > 0, nil
}

// Ban inserts a ban record and assigns a generated id back to the struct.
// BannedAt defaults to now when unset.
func (r *BannedUserRepo) Ban(ctx context.Context, b *model.BannedUser) error {
    if b.ID == "" {
        b.ID = uuid.NewString()
    }
    if b.BannedAt.IsZero() {
        b.BannedAt = time.Now().UTC()
    }
    const q = `INSERT INTO banned_users (id, vatsim_cid, name, email, reason, banned_at, banned_until)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
    _, err := r.db.ExecContext(ctx, q,
        b.ID, b.VatsimCID, b.Name, b.Email, b.Reason, b.BannedAt.UTC(), b.BannedUntil)
    return err
}

// Unban removes a ban record by id. It returns ErrBanNotFound when no
// row was deleted.
func (r *BannedUserRepo) Unban(ctx context.Context, id string) error {
    res, err := r.db.ExecContext(ctx, `DELETE FROM banned_users WHERE id = ?`, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrBanNotFound
    }
    return nil
}

// List returns all ban records ordered by ban time descending (newest
// first), including expired ones.
func (r *BannedUserRepo) List(ctx context.Context) ([]model.BannedUser, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT id, vatsim_cid, name, email, reason, banned_at, banned_until
         FROM banned_users ORDER BY banned_at DESC`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    bans := make([]model.BannedUser, 0)
    for rows.Next() {
        var b model.BannedUser
        var until sql.NullTime
        if err := rows.Scan(&b.ID, &b.VatsimCID, &b.Name, &b.Email, &b.Reason, &b.BannedAt, &until); err != nil {
            return nil, err
        }
        if until.Valid {
            u := until.Time
            b.BannedUntil = &u
        }
        bans = append(bans, b)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return bans, nil
}
