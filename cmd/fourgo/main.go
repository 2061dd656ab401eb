// fourgo trains and plays the four-in-a-row agents: see the usage for the list of commands.
package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/janpfeifer/fourGo/internal/learner"
	"github.com/janpfeifer/fourGo/internal/policies"
	"github.com/janpfeifer/fourGo/internal/profilers"
	. "github.com/janpfeifer/fourGo/internal/state"
	"github.com/janpfeifer/fourGo/internal/ui/spinning"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	"os"
	"strconv"
	"time"
)

var (
	flagGame      = flag.String("game", Drop4Name, "Game of new agents: \"drop4\" or \"push4\".")
	flagEvaluator = flag.String("evaluator", "consecutive",
		"Evaluator configuration of new agents, e.g. \"consecutive\", \"lines\", \"simple\" or \"cnn,hidden1_nodes=100\".")

	flagStepSize   = flag.Float64("step_size", learner.DefaultConfig().StepSize, "Step size (α) of new agents.")
	flagDiscount   = flag.Float64("discount", learner.DefaultConfig().Discount, "Discount (γ) of new agents.")
	flagDepth      = flag.Int("depth", learner.DefaultConfig().Depth, "Search depth of new agents.")
	flagBatchDepth = flag.Int("batch_depth", learner.DefaultConfig().BatchDepth, "Depth of the batched leaves of new agents.")
	flagLambda     = flag.Float64("lambda", learner.DefaultConfig().Lambda, "Eligibility trace decay (λ) of new agents.")
	flagEpsilon    = flag.Float64("epsilon", policies.DefaultEpsilon, "Exploration rate of the ε-greedy policy of new agents.")
	flagGreedy     = flag.Bool("greedy", false, "New agents use the greedy policy: no exploration.")

	flagHuman       = flag.String("human", "red", "Side of the human in \"play\": \"red\" or \"yellow\".")
	flagAI          = flag.String("ai", "", "Player configuration of the AI in \"play\", e.g. \"composite,depth=4\". Defaults to the agent's greedy player.")
	flagColor       = flag.Bool("color", true, "Use colors in \"play\".")
	flagClearScreen = flag.Bool("clear", false, "Clear the screen before each board in \"play\".")

	flagParallelism = flag.Int("parallelism", 0, "Number of simultaneous matches in \"compare\". If <= 0, the number of CPUs.")

	flagEvaluatorCheck = flag.String("evaluator_check", "", "If set, agent files whose evaluator variant differs are rejected.")
)

const usage = `Usage: fourgo [flags] <command> <args...>

Commands:
  create <out> [evaluator_config]            Creates a new agent and saves it to <out>.
  self-play <agent> <N> [reference]          Trains <agent> with N matches against itself. If a reference agent is
                                             given, one match against it is played after each iteration.
  train-against <agent> <opponent> <N>       Trains <agent> with N matches against <opponent>, which is not updated.
  play <agent>                               Plays interactively against <agent>. Enter "z" to undo a move.
  compare <agent1> <agent2> [games] [depth]  Plays <games> (default 100) matches between the agents with searches of
                                             depth <depth> (default 4), and prints [draws, wins, losses] for each.

Flags:
`

// command describes the positional arguments of a command.
type command struct {
	minArgs, maxArgs int
}

var commands = map[string]command{
	"create":        {1, 2},
	"self-play":     {2, 3},
	"train-against": {3, 3},
	"play":          {1, 1},
	"compare":       {2, 4},
}

func main() {
	klog.InitFlags(nil)
	flag.Usage = func() {
		_, _ = fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	// Capture Control+C.
	ctx, cancel := context.WithCancel(context.Background())
	spinning.SafeInterrupt(cancel, 5*time.Second)
	defer cancel()

	must.M(profilers.Setup(ctx))
	defer profilers.OnQuit()

	must.M(run(ctx, flag.Arg(0), flag.Args()[1:]))
}

// run executes the command with its positional arguments.
func run(ctx context.Context, name string, args []string) error {
	cmd, found := commands[name]
	if !found {
		return errors.Errorf("unknown command %q, see -help", name)
	}
	if len(args) < cmd.minArgs || len(args) > cmd.maxArgs {
		return errors.Errorf("command %q takes between %d and %d arguments, got %d, see -help",
			name, cmd.minArgs, cmd.maxArgs, len(args))
	}
	if name == "create" {
		return create(args)
	}

	record, err := learner.LoadRecord(args[0], *flagEvaluatorCheck)
	if err != nil {
		return err
	}
	switch record.Game {
	case Drop4Name:
		return runGame[*Drop4, int](ctx, name, args, record, NewDrop4)
	case Push4Name:
		return runGame[*Push4, Pos](ctx, name, args, record, NewPush4)
	}
	return errors.Errorf("agent %q has unknown game %q", args[0], record.Game)
}

// runGame executes the commands that work on an existing agent, for the agent's game.
func runGame[B Game[B, A], A comparable](ctx context.Context, name string, args []string, record *learner.Record,
	newBoard func() B) error {
	l, err := learner.FromRecord[B, A](record, newBoard)
	if err != nil {
		return errors.WithMessagef(err, "failed to restore agent %q", args[0])
	}
	klog.Infof("Agent %s: %s", l.ID, l)
	switch name {
	case "self-play":
		return selfPlay(ctx, l, args)
	case "train-against":
		return trainAgainst(ctx, l, args)
	case "play":
		return play(ctx, l)
	case "compare":
		return compare(ctx, l, args)
	}
	return errors.Errorf("unknown command %q", name)
}

// parseCount parses a positional argument that must be a positive integer.
func parseCount(arg, name string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s %q", name, arg)
	}
	if n <= 0 {
		return 0, errors.Errorf("invalid %s %d, it must be > 0", name, n)
	}
	return n, nil
}

// loadAgent loads another agent of the same game, used as opponent or reference.
// Its evaluator variant is not checked.
func loadAgent[B Game[B, A], A comparable](path string, newBoard func() B) (*learner.Learner[B, A], error) {
	record, err := learner.LoadRecord(path, "")
	if err != nil {
		return nil, err
	}
	l, err := learner.FromRecord[B, A](record, newBoard)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to restore agent %q", path)
	}
	klog.Infof("Agent %s (%s): %s", l.ID, path, l)
	return l, nil
}

// save the agent to path.
func save[B Game[B, A], A comparable](l *learner.Learner[B, A], path string) error {
	record, err := l.Record()
	if err != nil {
		return err
	}
	if err = record.Save(path); err != nil {
		return err
	}
	klog.Infof("Agent %s saved to %q", l.ID, path)
	return nil
}
