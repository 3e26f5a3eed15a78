package dashboard

import (
	"github.com/Veraticus/budgly/internal/analytics"
	"github.com/Veraticus/budgly/internal/model"
	"github.com/Veraticus/budgly/internal/streak"
	"github.com/Veraticus/budgly/internal/timewindow"
)

// View is one fully derived dashboard.
type View struct {
	Period   timewindow.Period
	Snapshot analytics.Snapshot
	Streaks  streak.Data
	Cards    []Rendered
}

// Compose runs the engine and streak calculator over txns and lays the resulting
// cards out in the order of ids.
func Compose(engine *analytics.Engine, period timewindow.Period, f Formatter, txns []model.Transaction, ids []string) View {
	snap := engine.ComputePeriod(period, txns)
	streaks := streak.Calculate(txns, engine.Windows())
	specs := BuildCards(BuildContext{
		Formatter:  f,
		PeriodText: period.Text(),
		Snapshot:   snap,
		Streaks:    streaks,
	})
	return View{
		Period:   period,
		Snapshot: snap,
		Streaks:  streaks,
		Cards:    Assemble(ids, specs),
	}
}
