package model

import "time"

// BannedUser is a ban record consulted by the admission controller's ban
// gate.  A ban is active when BannedUntil is nil (permanent) or still in
// the future; expired bans are kept for bookkeeping but no longer block
// registration.
//
// Fields:
//  ID          – primary key identifier (UUID).
//  VatsimCID   – identity code the ban applies to.
//  Name        – name of the banned registrant at ban time.
//  Email       – email recorded with the ban.
//  Reason      – why the ban was issued.
//  BannedAt    – when the ban was issued.
//  BannedUntil – optional expiry; nil means permanent.
type BannedUser struct {
    ID          string     // banned_users.id
    VatsimCID   string     // banned_users.vatsim_cid
    Name        string     // banned_users.name
    Email       string     // banned_users.email
    Reason      string     // banned_users.reason
    BannedAt    time.Time  // banned_users.banned_at
    BannedUntil *time.Time // banned_users.banned_until (nullable)
}

// Active reports whether the ban blocks registration at the given instant.
func (b *BannedUser) Active(now time.Time) bool {
    if b.BannedUntil == nil {
        return true
    }
    return b.BannedUntil.After(now)
}
