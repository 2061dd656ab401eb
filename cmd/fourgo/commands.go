package main

import (
	"context"
	"fmt"
	"github.com/aybabtme/uniplot/histogram"
	"github.com/janpfeifer/fourGo/internal/ai"
	_ "github.com/janpfeifer/fourGo/internal/ai/evaluators"
	"github.com/janpfeifer/fourGo/internal/learner"
	"github.com/janpfeifer/fourGo/internal/players"
	"github.com/janpfeifer/fourGo/internal/policies"
	. "github.com/janpfeifer/fourGo/internal/state"
	"github.com/janpfeifer/fourGo/internal/ui/cli"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"k8s.io/klog/v2"
	"lukechampine.com/frand"
	"os"
	"time"
)

// learnerConfig returns the hyperparameters of new agents, from the flags.
func learnerConfig() learner.Config {
	return learner.Config{
		StepSize:   *flagStepSize,
		Discount:   *flagDiscount,
		Depth:      *flagDepth,
		BatchDepth: *flagBatchDepth,
		Lambda:     *flagLambda,
	}
}

// newPolicy returns the policy of new agents, from the flags.
func newPolicy() (policies.Policy, error) {
	if *flagGreedy {
		return policies.Greedy{}, nil
	}
	return policies.NewEpsilonGreedy(*flagEpsilon)
}

// create implements the "create" command.
func create(args []string) error {
	config := *flagEvaluator
	if len(args) > 1 {
		config = args[1]
	}
	switch *flagGame {
	case Drop4Name:
		return createAgent[*Drop4, int](args[0], config, NewDrop4)
	case Push4Name:
		return createAgent[*Push4, Pos](args[0], config, NewPush4)
	}
	return errors.Errorf("unknown -game=%q, valid values are %q or %q", *flagGame, Drop4Name, Push4Name)
}

func createAgent[B Game[B, A], A comparable](path, config string, newBoard func() B) error {
	evaluator, err := ai.New(config, *flagGame)
	if err != nil {
		return err
	}
	policy, err := newPolicy()
	if err != nil {
		return err
	}
	l, err := learner.New[B, A](*flagGame, newBoard, evaluator, policy, learnerConfig())
	if err != nil {
		return err
	}
	klog.Infof("Created agent %s: %s", l.ID, l)
	return save(l, path)
}

// selfPlay implements the "self-play" command.
func selfPlay[B Game[B, A], A comparable](ctx context.Context, l *learner.Learner[B, A], args []string) error {
	n, err := parseCount(args[1], "number of iterations")
	if err != nil {
		return err
	}
	var reference players.Player[B, A]
	if len(args) > 2 {
		ref, err := loadAgent[B, A](args[2], l.NewBoard)
		if err != nil {
			return err
		}
		reference = ref.GreedyPlayer()
	}

	start := time.Now()
	lengths := make([]float64, 0, n)
	var referenceScores players.Scores
	for iteration := range n {
		if ctx.Err() != nil {
			klog.Warningf("Interrupted after %d iterations", iteration)
			break
		}
		final := l.SelfPlay()
		lengths = append(lengths, float64(final.MoveNumber()))
		klog.V(1).Infof("Iteration %d: self-play %s after %d moves", iteration, final.GameState(), final.MoveNumber())
		if reference == nil {
			continue
		}
		state, side := playOnce(l.NewBoard(), l.GreedyPlayer(), reference)
		referenceScores.Add(state, side)
		reward := state.Reward(side)
		l.Scores = append(l.Scores, reward)
		fmt.Printf("Iteration %d: reference match as %s: %s, score %+g\n", iteration, side, state, reward)
	}
	klog.Infof("%d self-play matches in %s", len(lengths), time.Since(start))
	if reference != nil {
		fmt.Printf("Reference matches [draws, wins, losses]: %v\n", referenceScores)
	}
	if len(lengths) > 0 {
		fmt.Println("Match lengths:")
		if err = histogram.Fprint(os.Stdout, histogram.Hist(10, lengths), histogram.Linear(40)); err != nil {
			klog.Warningf("Failed to print histogram: %v", err)
		}
	}
	return save(l, args[0])
}

// playOnce plays one match of player against opponent, with player's side chosen at random.
// It returns the final state and the side of player.
func playOnce[B Game[B, A], A comparable](board B, player, opponent players.Player[B, A]) (GameState, Player) {
	side := Players[frand.Intn(NumPlayers)]
	red, yellow := player, opponent
	if side == Yellow {
		red, yellow = opponent, player
	}
	_, final := players.PlayMatch(board, red, yellow)
	return final.GameState(), side
}

// trainAgainst implements the "train-against" command.
func trainAgainst[B Game[B, A], A comparable](ctx context.Context, l *learner.Learner[B, A], args []string) error {
	n, err := parseCount(args[2], "number of iterations")
	if err != nil {
		return err
	}
	opponent, err := loadAgent[B, A](args[1], l.NewBoard)
	if err != nil {
		return err
	}
	opponentPlayer := opponent.GreedyPlayer()
	var scores players.Scores
	firstScore := len(l.Scores)
	start := time.Now()
	for iteration := range n {
		if ctx.Err() != nil {
			klog.Warningf("Interrupted after %d iterations", iteration)
			break
		}
		final, side := l.PlayAgainst(opponentPlayer)
		scores.Add(final.GameState(), side)
		klog.V(1).Infof("Iteration %d: as %s, %s after %d moves", iteration, side, final.GameState(), final.MoveNumber())
	}
	newScores := l.Scores[firstScore:]
	fmt.Printf("%d matches against %s in %s: [draws, wins, losses]=%v, mean score %.3f\n",
		scores.Total(), opponent.ID, time.Since(start), scores, lo.Sum(newScores)/float64(max(len(newScores), 1)))
	return save(l, args[0])
}

// play implements the "play" command.
func play[B Game[B, A], A comparable](ctx context.Context, l *learner.Learner[B, A]) error {
	human, err := ParsePlayer(*flagHuman)
	if err != nil {
		return errors.WithMessage(err, "invalid -human")
	}
	opponent := l.GreedyPlayer()
	if *flagAI != "" {
		opponent, err = players.New[B, A](*flagAI, l.Evaluator, l.Policy)
		if err != nil {
			return err
		}
	}
	klog.Infof("Human plays %s against %s", human, opponent)
	ui, err := cli.New(*flagColor, *flagClearScreen)
	if err != nil {
		return err
	}
	defer func() { _ = ui.Close() }()
	_, err = cli.Play(ctx, ui, l.NewBoard(), human, opponent)
	return err
}
