package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/edvall/cascade/datarecording"
	"github.com/edvall/cascade/dispatch"
	"github.com/edvall/cascade/monitoring"
)

// Attack is raised once per demo round.
type Attack struct {
	Power int
}

// Damage is derived from each Attack that gets past the shield.
type Damage struct {
	Amount int
}

// Heal is scheduled whenever hit points run low.
type Heal struct {
	Amount int
}

// BattleWorld is the state the demo handlers fight over.
type BattleWorld struct {
	HP       int
	Shielded bool
	Healed   int
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a small combat simulation on the dispatch engine.",
	Long: `demo drives a battle through the scheduler: every round sends an ` +
		`Attack, shields cancel some of them, the rest turn into Damage, ` +
		`and low hit points trigger delayed Heal events. Use --monitor to ` +
		`watch the run over HTTP and --record to keep a SQLite trace.`,
	Run: runDemo,
}

func init() {
	demoCmd.Flags().Int("rounds", 20, "number of attack rounds to send")
	demoCmd.Flags().Bool("monitor", false, "serve the monitoring API")
	demoCmd.Flags().Bool("record", false, "record a dispatch trace")
	demoCmd.Flags().Bool("verbose", false, "log every dispatched event")

	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, _ []string) {
	rounds, _ := cmd.Flags().GetInt("rounds")
	withMonitor, _ := cmd.Flags().GetBool("monitor")
	withRecord, _ := cmd.Flags().GetBool("record")
	verbose, _ := cmd.Flags().GetBool("verbose")

	s := buildDemoScheduler()

	if verbose {
		logger := log.New(os.Stderr, "demo ", 0)
		s.AcceptHook(dispatch.NewEventLogger(logger))
	}

	if withRecord {
		writer := datarecording.NewSQLiteWriter("")
		writer.Init()
		s.AcceptHook(datarecording.NewDispatchRecorder(writer))
		defer writer.Flush()
	}

	var bar *monitoring.ProgressBar
	var monitor *monitoring.Monitor
	if withMonitor {
		monitor = monitoring.NewMonitor()
		monitor.RegisterScheduler("demo", s)
		monitor.StartServer()

		bar = monitor.CreateProgressBar("rounds", uint64(rounds))
	}

	damageObserver := dispatch.Observe[Damage](s)

	world := BattleWorld{HP: 100}
	for i := 0; i < rounds; i++ {
		world.Shielded = i%3 == 0

		dispatch.Send(s, Attack{Power: i%5 + 1})
		for s.Step(&world) {
		}

		if bar != nil {
			bar.IncrementFinished(1)
		}
	}

	if monitor != nil {
		monitor.CompleteProgressBar(bar)
	}

	totalDamage := 0
	for {
		amount, ok := dispatch.MapNext(damageObserver,
			func(d *Damage) int { return d.Amount })
		if !ok {
			break
		}
		totalDamage += amount
	}

	fmt.Printf("HP %d, healed %d, damage taken %d\n",
		world.HP, world.Healed, totalDamage)

	for name, stat := range s.Stats() {
		fmt.Printf("%s: dispatched %d, published %d, "+
			"cancelled %d, dropped %d\n",
			name, stat.Dispatched, stat.Published,
			stat.Cancelled, stat.Dropped)
	}
}

func buildDemoScheduler() *dispatch.Scheduler[BattleWorld] {
	s := dispatch.NewScheduler[BattleWorld]()

	// The shield runs first and cancels the whole attack.
	dispatch.AddSystemWithPriority(s, dispatch.WithWorld(
		func(_ *Attack, w *BattleWorld) error {
			if w.Shielded {
				return dispatch.ErrBreak
			}
			return nil
		}), 0)

	dispatch.AddSystemWithPriority(s, dispatch.WithContext[BattleWorld](
		func(a *Attack, ctx *dispatch.Context) error {
			dispatch.SendImmediate(ctx, Damage{Amount: 2 * a.Power})
			return nil
		}), 1)

	dispatch.AddSystem(s, dispatch.WithWorldAndContext(
		func(d *Damage, w *BattleWorld, ctx *dispatch.Context) error {
			w.HP -= d.Amount
			if w.HP < 50 {
				dispatch.SendDelayed(ctx, Heal{Amount: 25})
			}
			return nil
		}))

	dispatch.AddSystem(s, dispatch.WithWorld(
		func(h *Heal, w *BattleWorld) error {
			w.HP += h.Amount
			w.Healed += h.Amount
			return nil
		}))

	return s
}
