package stats

import "jogapp-api/internal/common"

// DayJog is the minimal projection of one jog due on the rollup day
type DayJog struct {
	UserID    common.UserID
	Completed bool
}

// DayOutcome is one user's completion outcome for the rollup day
type DayOutcome struct {
	Total        int
	Completed    int
	CompletedAll bool
}

// RollupDay folds a day's jogs per user into completion outcomes. Users with
// zero jogs due do not appear in the result: an empty day is not a streak
// break.
func RollupDay(jogs []DayJog) map[common.UserID]DayOutcome {
	outcomes := make(map[common.UserID]DayOutcome)
	for _, j := range jogs {
		o := outcomes[j.UserID]
		o.Total++
		if j.Completed {
			o.Completed++
		}
		outcomes[j.UserID] = o
	}
	for userID, o := range outcomes {
		o.CompletedAll = o.Total > 0 && o.Completed == o.Total
		outcomes[userID] = o
	}
	return outcomes
}

// NextStreak computes the new current and best streak after a day's outcome
func NextStreak(current, best int64, completedAll bool) (newCurrent, newBest int64) {
	if completedAll {
		newCurrent = current + 1
	} else {
		newCurrent = 0
	}
	newBest = best
	if newCurrent > newBest {
		newBest = newCurrent
	}
	return newCurrent, newBest
}
