package game

import (
	"sort"

	"github.com/Thamizhanban2006/code-clash/internal/store"
)

const (
	correctBonusPoints = 100
	timeBonusPoints    = 50
	partialMaxPoints   = 50
)

// computeLeaderboard ranks the room's online players. Non-submitters are
// charged the full game duration. Score = 100 for a fully correct solution,
// plus up to 50 for speed (correct solutions only), plus up to 50 partial
// credit for the passed fraction. Ties break by faster submission.
func computeLeaderboard(room *store.Room) []store.LeaderboardEntry {
	entries := make([]store.LeaderboardEntry, 0, len(room.Players))

	for _, p := range room.OnlinePlayers() {
		timeTaken := room.GameDuration
		if p.SubmittedAt != nil && room.GameStartTime != nil {
			timeTaken = int(p.SubmittedAt.Sub(*room.GameStartTime).Seconds())
		}

		correctBonus := 0
		if p.TotalTests > 0 && p.TestsPassed == p.TotalTests {
			correctBonus = correctBonusPoints
		}
		timeBonus := 0
		if correctBonus > 0 && room.GameDuration > 0 {
			timeBonus = timeBonusPoints * (room.GameDuration - timeTaken) / room.GameDuration
			if timeBonus < 0 {
				timeBonus = 0
			}
		}
		partialCredit := 0
		if p.TotalTests > 0 {
			partialCredit = p.TestsPassed * partialMaxPoints / p.TotalTests
		}

		entries = append(entries, store.LeaderboardEntry{
			PlayerID:    p.SocketID,
			PlayerName:  p.Name,
			TestsPassed: p.TestsPassed,
			TotalTests:  p.TotalTests,
			TimeTaken:   timeTaken,
			Score:       correctBonus + timeBonus + partialCredit,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].TimeTaken < entries[j].TimeTaken
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries
}
