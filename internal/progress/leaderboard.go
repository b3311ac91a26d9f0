package progress

import (
	"context"
	"sort"

	"github.com/studyhub/studyhub/internal/user"
)

type Entry struct {
	UserID        string `json:"user_id"`
	UserName      string `json:"user_name"`
	TotalProgress int    `json:"total_progress"`
}

// Leaderboard ranks all users by mean subject completion percentage,
// descending. A user with no tracked subjects ranks with 0. This is a full
// recompute over a snapshot on every call; ties keep store order (stable sort).
func Leaderboard(ctx context.Context, users user.Store) ([]Entry, error) {
	all, err := users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(all))
	for _, u := range all {
		out = append(out, Entry{
			UserID:        u.ID,
			UserName:      u.Name,
			TotalProgress: u.OverallProgress(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalProgress > out[j].TotalProgress
	})
	return out, nil
}
