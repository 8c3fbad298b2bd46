// internal/report/csv.go
//
// CSV renderings of the report views. Field layouts are fixed:
//   aggregate: report_date,users_count,games_count,correct_guesses
//   detail:    game_id,username,word,started_at,guesses_count,win (YES/NO)
//   user:      game_id,date,words_tried,correct

package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// WriteDailyCSV renders a daily report. With detail=false a single
// aggregate row is written; with detail=true one row per game.
func WriteDailyCSV(w io.Writer, rep *Daily, detail bool) error {
	cw := csv.NewWriter(w)

	if detail {
		if err := cw.Write([]string{"game_id", "username", "word", "started_at", "guesses_count", "win"}); err != nil {
			return err
		}
		for _, g := range rep.Games {
			win := "NO"
			if g.Win {
				win = "YES"
			}
			if err := cw.Write([]string{
				g.GameID,
				g.Username,
				g.Word,
				g.StartedAt.Format(time.RFC3339),
				strconv.Itoa(g.GuessesCount),
				win,
			}); err != nil {
				return err
			}
		}
	} else {
		if err := cw.Write([]string{"report_date", "users_count", "games_count", "correct_guesses"}); err != nil {
			return err
		}
		if err := cw.Write([]string{
			rep.Date,
			strconv.Itoa(rep.UsersCount),
			strconv.Itoa(rep.GamesCount),
			strconv.Itoa(rep.CorrectGuesses),
		}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteUserCSV renders a per-user report, one row per game.
func WriteUserCSV(w io.Writer, rows []UserRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"game_id", "date", "words_tried", "correct"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			r.GameID,
			r.Date,
			strconv.Itoa(r.WordsTried),
			strconv.FormatBool(r.Correct),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
