package model

// TaskStats is the summary shown on the dashboard and the tasks page.
type TaskStats struct {
	Total   int `json:"total"`
	Todo    int `json:"todo"`
	Done    int `json:"done"`
	Today   int `json:"today"`
	Overdue int `json:"overdue"`
}

// HabitStats summarises a user's habits.  TodayCompleted counts habits whose
// week view marks today as done.
type HabitStats struct {
	TotalHabits    int `json:"totalHabits"`
	TodayCompleted int `json:"todayCompleted"`
	MaxStreak      int `json:"maxStreak"`
	TotalPoints    int `json:"totalPoints"`
}

// SummarizeHabits derives HabitStats from habits carrying their week view.
func SummarizeHabits(habits []*Habit, today string, totalPoints int) HabitStats {
	st := HabitStats{TotalHabits: len(habits), TotalPoints: totalPoints}
	for _, h := range habits {
		if h.DoneOn(today) {
			st.TodayCompleted++
		}
		st.MaxStreak = max(st.MaxStreak, h.StreakDays)
	}
	return st
}
